package main

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aquacoord/aqua/internal/identity"
	"github.com/aquacoord/aqua/internal/namegen"
	"github.com/aquacoord/aqua/internal/render"
	"github.com/aquacoord/aqua/internal/types"
)

var joinCmd = &cobra.Command{
	Use:   "join [name]",
	Short: "register this process as an agent, generating a memorable name if none is given",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := namegen.Generate()
		if len(args) == 1 {
			name = args[0]
		}
		atype, _ := cmd.Flags().GetString("type")
		role, _ := cmd.Flags().GetString("role")
		capsRaw, _ := cmd.Flags().GetString("capabilities")

		var caps types.StringSet
		if capsRaw != "" {
			caps = types.StringSet(strings.Split(capsRaw, ","))
		}

		ctx := context.Background()
		dir := requireAquaDir()
		c, closeFn := openCoordinator(ctx, dir)
		defer closeFn()

		agent, err := c.Join(ctx, name, types.AgentType(atype), os.Getpid(), caps, role)
		if err != nil {
			render.FatalErr(err)
		}

		if session := identity.CurrentSessionName(); session != "" {
			_ = identity.BindSession(dir, session, agent.ID)
		}

		render.Result(agent, func() {
			render.Line("%s joined as %s (%s)", render.Green("✓"), agent.Name, agent.ID)
		})
	},
}

func init() {
	joinCmd.Flags().String("type", string(types.AgentGeneric), "agent type: claude, codex, gemini, or generic")
	joinCmd.Flags().String("role", "", "advisory role tag used for preferential task claiming")
	joinCmd.Flags().String("capabilities", "", "comma-separated capability tags")
	rootCmd.AddCommand(joinCmd)
}
