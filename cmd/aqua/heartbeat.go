package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aquacoord/aqua/internal/render"
)

var heartbeatCmd = &cobra.Command{
	Use:   "heartbeat",
	Short: "refresh this agent's liveness timestamp",
	Run: func(cmd *cobra.Command, args []string) {
		progress, _ := cmd.Flags().GetString("progress")

		ctx := context.Background()
		dir := requireAquaDir()
		c, closeFn := openCoordinator(ctx, dir)
		defer closeFn()

		agentID := currentAgentID(ctx, c, dir)
		if err := c.Heartbeat(ctx, agentID, progress); err != nil {
			render.FatalErr(err)
		}

		render.Result(map[string]interface{}{"agent_id": agentID, "beat": true}, func() {
			render.Line("%s heartbeat recorded for %s", render.Green("✓"), agentID)
		})
	},
}

func init() {
	heartbeatCmd.Flags().String("progress", "", "optional progress note to record alongside the heartbeat")
	rootCmd.AddCommand(heartbeatCmd)
}
