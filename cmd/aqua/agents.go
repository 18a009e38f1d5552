package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aquacoord/aqua/internal/render"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "list registered agents",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		dir := requireAquaDir()
		c, closeFn := openCoordinator(ctx, dir)
		defer closeFn()

		agents, err := c.Store.ListAgents(ctx)
		if err != nil {
			render.FatalErr(err)
		}

		render.Result(agents, func() {
			if len(agents) == 0 {
				render.Line("no agents")
				return
			}
			for _, a := range agents {
				task := a.CurrentTaskID
				if task == "" {
					task = "-"
				}
				render.Line("%-20s  %-7s  %-7s  task=%-12s  role=%q", a.Name, a.Type, a.Status, task, a.Role)
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(agentsCmd)
}
