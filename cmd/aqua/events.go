package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/aquacoord/aqua/internal/render"
	"github.com/aquacoord/aqua/internal/storage"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "query the append-only event log",
	Run: func(cmd *cobra.Command, args []string) {
		eventType, _ := cmd.Flags().GetString("type")
		agentID, _ := cmd.Flags().GetString("agent")
		taskID, _ := cmd.Flags().GetString("task")
		sinceMin, _ := cmd.Flags().GetInt("since-minutes")
		limit, _ := cmd.Flags().GetInt("limit")

		ctx := context.Background()
		dir := requireAquaDir()
		c, closeFn := openCoordinator(ctx, dir)
		defer closeFn()

		filter := storage.EventFilter{
			EventType: eventType,
			AgentID:   agentID,
			TaskID:    taskID,
			Limit:     limit,
		}
		if sinceMin > 0 {
			filter.Since = time.Now().UTC().Add(-time.Duration(sinceMin) * time.Minute)
		}

		events, err := c.Store.ListEvents(ctx, filter)
		if err != nil {
			render.FatalErr(err)
		}

		render.Result(events, func() {
			if len(events) == 0 {
				render.Line("no events")
				return
			}
			for _, e := range events {
				render.Line("%s  %-18s  agent=%-12s  task=%s", e.Timestamp.Format(time.RFC3339), e.EventType, e.AgentID, e.TaskID)
			}
		})
	},
}

func init() {
	eventsCmd.Flags().String("type", "", "filter by event type")
	eventsCmd.Flags().String("agent", "", "filter by agent id")
	eventsCmd.Flags().String("task", "", "filter by task id")
	eventsCmd.Flags().Int("since-minutes", 0, "only events in the last N minutes")
	eventsCmd.Flags().Int("limit", 100, "max events returned")
	rootCmd.AddCommand(eventsCmd)
}
