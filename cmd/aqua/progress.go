package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aquacoord/aqua/internal/render"
)

var progressCmd = &cobra.Command{
	Use:   "progress <note>",
	Short: "checkpoint a progress note on the caller's current task",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		dir := requireAquaDir()
		c, closeFn := openCoordinator(ctx, dir)
		defer closeFn()

		agentID := currentAgentID(ctx, c, dir)
		if err := c.Progress(ctx, agentID, args[0]); err != nil {
			render.FatalErr(err)
		}

		render.Result(map[string]interface{}{"progress": true}, func() {
			render.Line("%s progress recorded", render.Green("✓"))
		})
	},
}

func init() {
	rootCmd.AddCommand(progressCmd)
}
