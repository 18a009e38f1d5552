package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aquacoord/aqua/internal/config"
	"github.com/aquacoord/aqua/internal/render"
	"github.com/aquacoord/aqua/internal/storage/sqlite"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "initialize aqua in the current directory",
	Long: `Create a .aqua/ directory and its embedded database (spec.md §6 on-disk
layout). Safe to run again against an already-initialized project; the
schema and migrations are idempotent.`,
	Run: func(cmd *cobra.Command, args []string) {
		dir := dbFlag
		if dir == "" {
			cwd, err := os.Getwd()
			if err != nil {
				render.FatalErr(err)
			}
			dir = filepath.Join(cwd, aquaDirName)
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			render.FatalErr(err)
		}
		if err := os.MkdirAll(filepath.Join(dir, "sessions"), 0o755); err != nil {
			render.FatalErr(err)
		}

		store, err := sqlite.Open(context.Background(), filepath.Join(dir, "aqua.db"), sqlite.Options{})
		if err != nil {
			render.FatalErr(err)
		}
		defer store.Close()

		cfg := config.Defaults()
		render.Result(map[string]interface{}{"initialized": true, "path": dir}, func() {
			render.Line("%s aqua initialized at %s", render.Green("✓"), dir)
			render.Line("  dead_threshold=%ds claim_timeout=%ds lease_seconds=%ds max_retries=%d",
				cfg.DeadThresholdSeconds, cfg.ClaimTimeoutSeconds, cfg.LeaseSeconds, cfg.MaxRetries)
		})
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
