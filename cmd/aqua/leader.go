package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aquacoord/aqua/internal/render"
)

var leaderCmd = &cobra.Command{
	Use:   "leader",
	Short: "leader election commands",
}

var leaderElectCmd = &cobra.Command{
	Use:   "elect",
	Short: "attempt to become (or renew as) leader",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		dir := requireAquaDir()
		c, closeFn := openCoordinator(ctx, dir)
		defer closeFn()

		agentID := currentAgentID(ctx, c, dir)
		l, won, err := c.TryBecomeLeader(ctx, agentID)
		if err != nil {
			render.FatalErr(err)
		}

		render.Result(map[string]interface{}{"won": won, "leader": l}, func() {
			if won {
				render.Line("%s %s is leader, term %d, lease until %s", render.Green("✓"), l.AgentID, l.Term, l.LeaseExpiresAt.Format("15:04:05"))
			} else {
				render.Line("%s lost election; %s holds term %d until %s", render.Yellow("-"), l.AgentID, l.Term, l.LeaseExpiresAt.Format("15:04:05"))
			}
		})
	},
}

var leaderStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "print the current leader record",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		dir := requireAquaDir()
		c, closeFn := openCoordinator(ctx, dir)
		defer closeFn()

		l, err := c.Store.GetLeader(ctx)
		if err != nil {
			render.FatalErr(err)
		}

		render.Result(l, func() {
			if l == nil {
				render.Line("no leader elected")
				return
			}
			render.Line("%s  term=%d  lease_expires=%s", l.AgentID, l.Term, l.LeaseExpiresAt.Format("15:04:05"))
		})
	},
}

func init() {
	leaderCmd.AddCommand(leaderElectCmd)
	leaderCmd.AddCommand(leaderStatusCmd)
	rootCmd.AddCommand(leaderCmd)
}
