package main

import (
	"context"
	"math/rand"
	"time"

	"github.com/spf13/cobra"

	"github.com/aquacoord/aqua/internal/debug"
	"github.com/aquacoord/aqua/internal/render"
)

// daemonCmd is the optional loop spec.md §9 allows: "implementers may
// optionally offer a daemon mode that loops run_recovery with jittered
// sleeps." It is stateless between iterations — each tick opens nothing
// extra beyond the Coordinator, and a crash of the daemon itself loses
// no coordination state, since all of it lives in the database.
var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "loop recovery sweeps with jittered sleeps until interrupted",
	Run: func(cmd *cobra.Command, args []string) {
		interval, _ := cmd.Flags().GetDuration("interval")
		jitter, _ := cmd.Flags().GetDuration("jitter")

		dir := requireAquaDir()
		ctx := cmd.Context()

		for {
			c, closeFn := openCoordinator(ctx, dir)
			summary, err := c.RunRecovery(ctx)
			closeFn()
			if err != nil {
				debug.Logf("daemon: recovery sweep failed: %v\n", err)
			} else if !render.QuietMode {
				render.Line("%s recovery: %d dead, %d unresponsive, %d stale, %d requeued",
					render.Cyan("·"), len(summary.DeadAgents), len(summary.Unresponsive), summary.StaleTasks, summary.RequeuedTasks)
			}

			sleep := interval
			if jitter > 0 {
				sleep += time.Duration(rand.Int63n(int64(jitter)))
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(sleep):
			}
		}
	},
}

func init() {
	daemonCmd.Flags().Duration("interval", 30*time.Second, "base sleep between recovery sweeps")
	daemonCmd.Flags().Duration("jitter", 5*time.Second, "additional random sleep added to each interval")
	rootCmd.AddCommand(daemonCmd)
}
