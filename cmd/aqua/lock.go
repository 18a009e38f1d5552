package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/aquacoord/aqua/internal/render"
)

var lockCmd = &cobra.Command{
	Use:   "lock <path>",
	Short: "advisory-lock a file path for this agent",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		dir := requireAquaDir()
		c, closeFn := openCoordinator(ctx, dir)
		defer closeFn()

		agentID := currentAgentID(ctx, c, dir)
		if err := c.Store.LockFile(ctx, args[0], agentID); err != nil {
			render.FatalErr(err)
		}

		render.Result(map[string]interface{}{"locked": true, "path": args[0]}, func() {
			render.Line("%s locked %s", render.Green("✓"), args[0])
		})
	},
}

var unlockCmd = &cobra.Command{
	Use:   "unlock <path>",
	Short: "release an advisory file lock held by this agent",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		dir := requireAquaDir()
		c, closeFn := openCoordinator(ctx, dir)
		defer closeFn()

		agentID := currentAgentID(ctx, c, dir)
		if err := c.Store.UnlockFile(ctx, args[0], agentID); err != nil {
			render.FatalErr(err)
		}

		render.Result(map[string]interface{}{"unlocked": true, "path": args[0]}, func() {
			render.Line("%s unlocked %s", render.Green("✓"), args[0])
		})
	},
}

var locksCmd = &cobra.Command{
	Use:   "locks",
	Short: "list advisory file locks",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		dir := requireAquaDir()
		c, closeFn := openCoordinator(ctx, dir)
		defer closeFn()

		locks, err := c.Store.ListLocks(ctx)
		if err != nil {
			render.FatalErr(err)
		}

		render.Result(locks, func() {
			if len(locks) == 0 {
				render.Line("no locks held")
				return
			}
			for _, l := range locks {
				render.Line("%-40s  %s  since %s", l.FilePath, l.AgentID, l.LockedAt.Format("15:04:05"))
			}
		})
	},
}

func init() {
	rootCmd.AddCommand(lockCmd, unlockCmd, locksCmd)
}
