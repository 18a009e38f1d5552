package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/aquacoord/aqua/internal/render"
	"github.com/aquacoord/aqua/internal/types"
)

var msgCmd = &cobra.Command{
	Use:   "msg",
	Short: "inter-agent messaging",
}

var msgSendCmd = &cobra.Command{
	Use:   "send <content>",
	Short: "send a message, broadcast by default",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		to, _ := cmd.Flags().GetString("to")
		mtype, _ := cmd.Flags().GetString("type")

		ctx := context.Background()
		dir := requireAquaDir()
		c, closeFn := openCoordinator(ctx, dir)
		defer closeFn()

		agentID := currentAgentID(ctx, c, dir)
		m := &types.Message{
			FromAgent:   agentID,
			ToAgent:     to,
			Content:     args[0],
			MessageType: mtype,
			CreatedAt:   time.Now().UTC(),
		}
		id, err := c.SendMessage(ctx, m)
		if err != nil {
			render.FatalErr(err)
		}

		render.Result(map[string]interface{}{"id": id}, func() {
			kind := "broadcast"
			if to != "" {
				kind = "to " + to
			}
			render.Line("%s sent message %d (%s)", render.Green("✓"), id, kind)
		})
	},
}

var msgInboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "list messages addressed to this agent (direct + broadcast)",
	Run: func(cmd *cobra.Command, args []string) {
		unreadOnly, _ := cmd.Flags().GetBool("unread")

		ctx := context.Background()
		dir := requireAquaDir()
		c, closeFn := openCoordinator(ctx, dir)
		defer closeFn()

		agentID := currentAgentID(ctx, c, dir)
		msgs, err := c.Inbox(ctx, agentID, unreadOnly)
		if err != nil {
			render.FatalErr(err)
		}

		render.Result(msgs, func() {
			if len(msgs) == 0 {
				render.Line("no messages")
				return
			}
			for _, m := range msgs {
				mark := " "
				if m.ReadAt != nil {
					mark = render.Cyan("r")
				}
				render.Line("[%s] #%d  %s: %s", mark, m.ID, m.FromAgent, m.Content)
			}
		})
	},
}

var msgReadCmd = &cobra.Command{
	Use:   "read <message-id>",
	Short: "mark a message read for this agent",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		dir := requireAquaDir()
		c, closeFn := openCoordinator(ctx, dir)
		defer closeFn()

		agentID := currentAgentID(ctx, c, dir)
		id := parseInt64OrFatal(args[0])
		if err := c.Store.MarkMessageRead(ctx, id, agentID); err != nil {
			render.FatalErr(err)
		}

		render.Result(map[string]interface{}{"read": true}, func() {
			render.Line("%s marked %d read", render.Green("✓"), id)
		})
	},
}

func init() {
	msgSendCmd.Flags().String("to", "", "recipient agent id; empty means broadcast to all agents")
	msgSendCmd.Flags().String("type", "info", "message type tag")
	msgInboxCmd.Flags().Bool("unread", false, "only show unread messages")
	msgCmd.AddCommand(msgSendCmd, msgInboxCmd, msgReadCmd)
	rootCmd.AddCommand(msgCmd)
}
