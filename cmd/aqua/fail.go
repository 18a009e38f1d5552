package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aquacoord/aqua/internal/render"
)

var failCmd = &cobra.Command{
	Use:   "fail <error>",
	Short: "mark the caller's current task failed for this attempt",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		dir := requireAquaDir()
		c, closeFn := openCoordinator(ctx, dir)
		defer closeFn()

		agentID := currentAgentID(ctx, c, dir)
		task, err := c.FailTask(ctx, agentID, args[0])
		if err != nil {
			render.FatalErr(err)
		}

		render.Result(task, func() {
			status := string(task.Status)
			render.Line("%s %s %s (retry %d/%d)", render.Yellow("!"), task.ID, status, task.RetryCount, task.MaxRetries)
		})
	},
}

func init() {
	rootCmd.AddCommand(failCmd)
}
