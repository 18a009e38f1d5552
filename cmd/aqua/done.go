package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aquacoord/aqua/internal/render"
)

var doneCmd = &cobra.Command{
	Use:   "done",
	Short: "mark the caller's current task complete",
	Run: func(cmd *cobra.Command, args []string) {
		result, _ := cmd.Flags().GetString("result")

		ctx := context.Background()
		dir := requireAquaDir()
		c, closeFn := openCoordinator(ctx, dir)
		defer closeFn()

		agentID := currentAgentID(ctx, c, dir)
		task, err := c.CompleteTask(ctx, agentID, result)
		if err != nil {
			render.FatalErr(err)
		}

		render.Result(task, func() {
			render.Line("%s %s done", render.Green("✓"), task.ID)
		})
	},
}

func init() {
	doneCmd.Flags().String("result", "", "free-form completion note")
	rootCmd.AddCommand(doneCmd)
}
