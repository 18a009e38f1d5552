package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aquacoord/aqua/internal/render"
)

var leaveCmd = &cobra.Command{
	Use:   "leave",
	Short: "unregister this agent",
	Run: func(cmd *cobra.Command, args []string) {
		force, _ := cmd.Flags().GetBool("force")

		ctx := context.Background()
		dir := requireAquaDir()
		c, closeFn := openCoordinator(ctx, dir)
		defer closeFn()

		agentID := currentAgentID(ctx, c, dir)
		if err := c.Leave(ctx, agentID, force); err != nil {
			render.FatalErr(err)
		}

		render.Result(map[string]interface{}{"left": true, "agent_id": agentID}, func() {
			render.Line("%s %s left", render.Green("✓"), agentID)
		})
	},
}

func init() {
	leaveCmd.Flags().Bool("force", false, "abandon any held task instead of refusing to leave")
	rootCmd.AddCommand(leaveCmd)
}
