package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aquacoord/aqua/internal/render"
	"github.com/aquacoord/aqua/internal/storage"
	"github.com/aquacoord/aqua/internal/types"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "list tasks",
	Run: func(cmd *cobra.Command, args []string) {
		status, _ := cmd.Flags().GetString("status")
		claimedBy, _ := cmd.Flags().GetString("claimed-by")
		createdBy, _ := cmd.Flags().GetString("created-by")
		tag, _ := cmd.Flags().GetString("tag")
		counts, _ := cmd.Flags().GetBool("counts")

		ctx := context.Background()
		dir := requireAquaDir()
		c, closeFn := openCoordinator(ctx, dir)
		defer closeFn()

		if counts {
			breakdown, err := c.Store.TaskCounts(ctx)
			if err != nil {
				render.FatalErr(err)
			}
			render.Result(breakdown, func() {
				for _, st := range []types.TaskStatus{types.TaskPending, types.TaskClaimed, types.TaskDone, types.TaskFailed, types.TaskAbandoned} {
					render.Line("%-9s  %d", st, breakdown[st])
				}
			})
			return
		}

		filter := storage.TaskFilter{
			Status:    types.TaskStatus(status),
			ClaimedBy: claimedBy,
			CreatedBy: createdBy,
			Tag:       tag,
		}
		tasks, err := c.Store.ListTasks(ctx, filter)
		if err != nil {
			render.FatalErr(err)
		}

		render.Result(tasks, func() {
			if len(tasks) == 0 {
				render.Line("no tasks")
				return
			}
			for _, t := range tasks {
				render.Line("%s  [%-9s]  p%-2d  %s", t.ID, t.Status, t.Priority, t.Title)
			}
		})
	},
}

func init() {
	tasksCmd.Flags().String("status", "", "filter by status: pending, claimed, done, failed, abandoned")
	tasksCmd.Flags().String("claimed-by", "", "filter by claiming agent id")
	tasksCmd.Flags().String("created-by", "", "filter by creating agent id")
	tasksCmd.Flags().String("tag", "", "filter by task tag")
	tasksCmd.Flags().Bool("counts", false, "print a status breakdown instead of listing tasks")
	rootCmd.AddCommand(tasksCmd)
}
