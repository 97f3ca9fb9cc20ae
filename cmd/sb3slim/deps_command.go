package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"sb3slim/internal/deps"
	"sb3slim/internal/media/ffmpeg"
)

type depReport struct {
	Name      string `json:"name"`
	Command   string `json:"command"`
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Detail    string `json:"detail,omitempty"`
}

func newDepsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Report external tools used for transcoding",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			status := deps.CheckFFmpeg(cfg.FFmpegBinary())
			report := depReport{
				Name:      status.Name,
				Command:   status.Command,
				Available: status.Available,
				Detail:    status.Detail,
			}
			if status.Available {
				report.Version, report.Detail = probeVersion(cmd.Context(), status.Command, report.Detail)
			}

			if jsonOut {
				return writeJSON(cmd, []depReport{report})
			}
			rows := [][]string{{report.Name, report.Command, yesNo(report.Available), report.Version, report.Detail}}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(cols("Dependency", "Command", "Available", "Version", "Detail"), rows))
			if !report.Available {
				fmt.Fprintln(cmd.OutOrStdout(), "Audio assets will be copied unchanged until ffmpeg is installed.")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the report as JSON")
	return cmd
}

// probeVersion loads the audio engine once to confirm the binary runs.
func probeVersion(ctx context.Context, binary, detail string) (string, string) {
	engine := ffmpeg.New(binary)
	defer engine.Close()
	if err := engine.Load(ctx); err != nil {
		return "", err.Error()
	}
	return engine.Version(), detail
}
