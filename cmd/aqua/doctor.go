package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aquacoord/aqua/internal/render"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "read-only diagnostic report",
	Long: `Reports schema version, leader state, stale claims, and
unhealthy agents without changing anything. Run "aqua recover" to act
on what doctor finds.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		dir := requireAquaDir()
		c, closeFn := openCoordinator(ctx, dir)
		defer closeFn()

		d, err := c.Diagnose(ctx)
		if err != nil {
			render.FatalErr(err)
		}

		render.Result(d, func() {
			render.Line("schema version: %d", d.SchemaVersion)
			if d.HasLeader {
				render.Line("leader: %s (term %d)", d.LeaderAgentID, d.LeaderTerm)
			} else {
				render.Line("leader: %s", render.Yellow("none elected"))
			}
			if len(d.DeadAgents) == 0 {
				render.Line("dead agents: %s", render.Green("none"))
			} else {
				render.Line("dead agents: %s", render.Red(d.DeadAgents))
			}
			if len(d.Unresponsive) == 0 {
				render.Line("unresponsive agents: %s", render.Green("none"))
			} else {
				render.Line("unresponsive agents: %s", render.Yellow(d.Unresponsive))
			}
			if d.StaleTasks == 0 {
				render.Line("stale claims: %s", render.Green("none"))
			} else {
				render.Line("stale claims: %s", render.Yellow(d.StaleTasks))
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
