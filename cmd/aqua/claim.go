package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aquacoord/aqua/internal/render"
)

var claimCmd = &cobra.Command{
	Use:   "claim [task-id]",
	Short: "claim the next eligible pending task, or a specific one by id",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		dir := requireAquaDir()
		c, closeFn := openCoordinator(ctx, dir)
		defer closeFn()

		agentID := currentAgentID(ctx, c, dir)

		if len(args) == 1 {
			task, err := c.ClaimSpecificTask(ctx, agentID, args[0])
			if err != nil {
				render.FatalErr(err)
			}
			render.Result(task, func() {
				render.Line("%s claimed %s %q", render.Green("✓"), task.ID, task.Title)
			})
			return
		}

		result, err := c.ClaimNextTask(ctx, agentID)
		if err != nil {
			render.FatalErr(err)
		}
		render.Result(result, func() {
			suffix := ""
			if result.MatchedRole {
				suffix = " (role match)"
			}
			render.Line("%s claimed %s %q%s", render.Green("✓"), result.Task.ID, result.Task.Title, suffix)
		})
	},
}

func init() {
	rootCmd.AddCommand(claimCmd)
}
