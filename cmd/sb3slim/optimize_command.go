package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"sb3slim/internal/fileutil"
	"sb3slim/internal/logging"
	"sb3slim/internal/metrics"
	"sb3slim/internal/pipeline"
	"sb3slim/internal/services"
)

type failureSummary struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

type optimizeSummary struct {
	Input       string           `json:"input"`
	Output      string           `json:"output"`
	RunID       string           `json:"run_id"`
	Stats       pipeline.Stats   `json:"stats"`
	Counts      pipeline.Counts  `json:"counts"`
	Rewritten   int              `json:"rewritten_references"`
	Failures    []failureSummary `json:"failures,omitempty"`
	EngineError string           `json:"engine_error,omitempty"`
}

func newOptimizeCommand(ctx *commandContext) *cobra.Command {
	var (
		outputPath  string
		force       bool
		jsonOut     bool
		metricsFile string
		noCache     bool
	)

	cmd := &cobra.Command{
		Use:   "optimize <project.sb3>",
		Short: "Re-encode every asset of a Scratch project and write a smaller copy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			input := args[0]
			if !force && !strings.EqualFold(filepath.Ext(input), ".sb3") {
				return services.Wrap(services.ErrValidation, "optimize", "validate input",
					fmt.Sprintf("%s is not an .sb3 file (use --force to process it anyway)", input), nil)
			}
			output := strings.TrimSpace(outputPath)
			if output == "" {
				output = cfg.OutputPath(input)
			}
			if samePath(input, output) {
				return services.Wrap(services.ErrValidation, "optimize", "validate output",
					"output path must differ from the input", nil)
			}

			data, err := os.ReadFile(input)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}

			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}
			recorder := metrics.New()

			var reporter pipeline.Reporter
			if !jsonOut {
				stderr := cmd.ErrOrStderr()
				reporter = newProgressView(stderr, isTerminal(stderr)).report
			}

			rt, err := buildRuntime(cmd.Context(), cfg, logger, buildOptions{
				useCache: !noCache,
				reporter: reporter,
				metrics:  recorder,
			})
			if err != nil {
				return err
			}
			defer rt.Close()

			result, runErr := rt.pipeline.Run(cmd.Context(), data)
			if metricsFile != "" {
				if err := recorder.WriteTextfile(metricsFile); err != nil {
					logger.Warn("metrics export failed", logging.Error(err))
				}
			}
			if runErr != nil {
				return runErr
			}

			if err := fileutil.WriteFileAtomic(output, result.Archive, 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}

			summary := optimizeSummary{
				Input:       input,
				Output:      output,
				RunID:       result.RunID,
				Stats:       result.Stats,
				Counts:      result.Counts,
				Rewritten:   result.Rewritten,
				EngineError: result.EngineError,
			}
			for _, f := range result.Failures {
				summary.Failures = append(summary.Failures, failureSummary{Path: f.Path, Error: f.Err.Error()})
			}
			if jsonOut {
				return writeJSON(cmd, summary)
			}
			printSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output archive path (default: <input>_TURBO.sb3)")
	cmd.Flags().BoolVar(&force, "force", false, "Process inputs without an .sb3 extension")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the run summary as JSON")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write Prometheus textfile metrics to this path")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the transcode cache for this run")
	return cmd
}

func printSummary(out io.Writer, s optimizeSummary) {
	p := message.NewPrinter(language.English)
	rows := [][]string{
		{"Original", p.Sprintf("%d", s.Stats.OriginalSize), humanBytes(s.Stats.OriginalSize)},
		{"Optimized", p.Sprintf("%d", s.Stats.NewSize), humanBytes(s.Stats.NewSize)},
		{"Saved", p.Sprintf("%d", s.Stats.Saved), humanBytes(s.Stats.Saved)},
	}
	fmt.Fprintln(out, renderTable([]column{{title: ""}, {title: "Bytes", numeric: true}, {title: "Size", numeric: true}}, rows))
	fmt.Fprintf(out, "Saved %s (%.1f%% reduction)\n", s.Stats.SavedLabel(), s.Stats.Percent)
	fmt.Fprintf(out, "Assets: %d optimized, %d cached, %d unchanged, %d kept after errors, %d duplicates merged\n",
		s.Counts.Optimized, s.Counts.Cached, s.Counts.Passthrough, s.Counts.Fallback, s.Counts.Deduplicated)
	if s.EngineError != "" {
		fmt.Fprintf(out, "Audio engine unavailable: %s\n", s.EngineError)
	}
	for _, f := range s.Failures {
		fmt.Fprintf(out, "  kept %s: %s\n", f.Path, f.Error)
	}
	fmt.Fprintf(out, "Wrote %s\n", s.Output)
}

func humanBytes(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}
	return humanize.IBytes(uint64(n))
}

func samePath(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return a == b
	}
	return absA == absB
}
