package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aquacoord/aqua/internal/errs"
	"github.com/aquacoord/aqua/internal/identity"
	"github.com/aquacoord/aqua/internal/render"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "print the resolved identity for this terminal",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		dir := requireAquaDir()
		c, closeFn := openCoordinator(ctx, dir)
		defer closeFn()

		id := identity.Resolve(dir)
		agent, err := c.Store.GetAgent(ctx, id)
		if err != nil {
			if errs.Kind(err) == "NotFound" {
				render.Result(map[string]interface{}{"agent_id": id, "joined": false}, func() {
					render.Line("%s (not joined)", id)
				})
				return
			}
			render.FatalErr(err)
		}

		render.Result(agent, func() {
			render.Line("%s  %s  role=%q  status=%s", agent.ID, agent.Name, agent.Role, agent.Status)
		})
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
