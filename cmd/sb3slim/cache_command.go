package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"sb3slim/internal/transcodecache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the transcode cache",
	}
	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	return cacheCmd
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache size and entry count",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}
			cache, err := openCache(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer cache.Close()

			stats, err := cache.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, stats)
			}
			rows := [][]string{
				{"Path", stats.Path},
				{"Enabled", yesNo(cfg.Cache.Enabled)},
				{"Codec", cfg.Cache.Compression},
				{"Entries", fmt.Sprintf("%d / %d", stats.Entries, cfg.Cache.MaxEntries)},
				{"Payload", humanize.IBytes(uint64(stats.Bytes))},
				{"On disk", humanize.IBytes(uint64(stats.StoredBytes))},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(cols("Cache", "Value"), rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print stats as JSON")
	return cmd
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove cached transcodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if all {
				if err := transcodecache.Remove(cfg.Paths.CacheDir); err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed cache database in %s\n", cfg.Paths.CacheDir)
				return nil
			}

			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}
			cache, err := openCache(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer cache.Close()
			removed, err := cache.Clear(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Removed %d cached entries\n", removed)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Delete the cache database files, including ones from older versions")
	return cmd
}
