package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aquacoord/aqua/internal/render"
	"github.com/aquacoord/aqua/internal/types"
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "create a new pending task",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		title := args[0]
		desc, _ := cmd.Flags().GetString("description")
		priority, _ := cmd.Flags().GetInt("priority")
		tagsRaw, _ := cmd.Flags().GetString("tags")
		dependsRaw, _ := cmd.Flags().GetString("depends-on")
		taskContext, _ := cmd.Flags().GetString("context")

		var tags, dependsOn types.StringSet
		if tagsRaw != "" {
			tags = types.StringSet(strings.Split(tagsRaw, ","))
		}
		if dependsRaw != "" {
			dependsOn = types.StringSet(strings.Split(dependsRaw, ","))
		}

		ctx := context.Background()
		dir := requireAquaDir()
		c, closeFn := openCoordinator(ctx, dir)
		defer closeFn()

		agentID := currentAgentID(ctx, c, dir)
		task, err := c.AddTask(ctx, title, desc, priority, agentID, tags, dependsOn, taskContext)
		if err != nil {
			render.FatalErr(err)
		}

		render.Result(task, func() {
			render.Line("%s created task %s %q (priority %d)", render.Green("✓"), task.ID, task.Title, task.Priority)
		})
	},
}

func init() {
	addCmd.Flags().String("description", "", "longer task description")
	addCmd.Flags().Int("priority", types.DefaultPriority, "priority 1 (lowest) to 10 (highest)")
	addCmd.Flags().String("tags", "", "comma-separated tags; an agent whose role matches a tag is offered this task first")
	addCmd.Flags().String("depends-on", "", "comma-separated task ids that must be done first")
	addCmd.Flags().String("context", "", "free-form context blob for the claiming agent")
	rootCmd.AddCommand(addCmd)
}
