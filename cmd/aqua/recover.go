package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aquacoord/aqua/internal/render"
)

var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "run one opportunistic recovery sweep",
	Long: `Evicts agents whose heartbeat is stale and whose pid is no longer
alive, abandons tasks claimed past claim_timeout, and re-queues anything
abandoned that's still under its retry cap (spec.md §4 C7 run_recovery).
Any agent may run this at any time; it is idempotent and safe to call
concurrently with other agents' work.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		dir := requireAquaDir()
		c, closeFn := openCoordinator(ctx, dir)
		defer closeFn()

		summary, err := c.RunRecovery(ctx)
		if err != nil {
			render.FatalErr(err)
		}

		render.Result(summary, func() {
			render.Line("%s recovery: %d dead, %d unresponsive, %d stale claims, %d requeued",
				render.Green("✓"), len(summary.DeadAgents), len(summary.Unresponsive), summary.StaleTasks, summary.RequeuedTasks)
		})
	},
}

func init() {
	rootCmd.AddCommand(recoverCmd)
}
