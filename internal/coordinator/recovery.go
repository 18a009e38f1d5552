package coordinator

import (
	"context"
	"strconv"
	"time"

	"github.com/aquacoord/aqua/internal/types"
)

// RecoverySummary is the structured result of a recovery sweep (spec.md
// §4 C7 "Returns a structured summary", scenario S3).
type RecoverySummary struct {
	DeadAgents    []string `json:"dead_agents"`
	Unresponsive  []string `json:"unresponsive"`
	StaleTasks    int      `json:"stale_tasks"`
	RequeuedTasks int      `json:"requeued_tasks"`
}

func durationSeconds(d time.Duration) string { return strconv.Itoa(int(d.Seconds())) }

func itoa(n int) string { return strconv.Itoa(n) }

// RecoverDeadAgents applies the liveness rule from spec.md §4.6: an
// agent is dead when its heartbeat is older than dead_threshold AND its
// recorded pid is not alive. A stale heartbeat with a live pid is merely
// flagged unresponsive (an event, not a state transition) so a slow but
// running agent is never evicted (spec.md §8 testable property 7).
// Every dead agent's claimed task is abandoned and its file locks are
// released as part of the same sweep.
func (c *Coordinator) RecoverDeadAgents(ctx context.Context) ([]string, []string, error) {
	agents, err := c.Store.ListAgents(ctx)
	if err != nil {
		return nil, nil, err
	}

	threshold := c.Cfg.DeadThreshold()
	nowT := now()
	var dead, unresponsive []string

	for _, a := range agents {
		if a.Status == types.AgentDead {
			continue
		}
		age := nowT.Sub(a.LastHeartbeatAt)
		if age <= threshold {
			continue
		}
		if processAlive(a.PID) {
			unresponsive = append(unresponsive, a.ID)
			c.logEvent(ctx, types.EventAgentUnresponsive, a.ID, "", types.StringMap{"heartbeat_age_seconds": durationSeconds(age)})
			continue
		}

		if a.HasCurrentTask() {
			// Per spec.md §7: recovery swallows per-task failures (e.g. the
			// task already completed independently) so one bad row can't
			// halt the sweep.
			if err := c.Store.AbandonTask(ctx, a.CurrentTaskID, "agent died"); err == nil {
				_ = c.Store.ClearCurrentTask(ctx, a.ID)
				c.logEvent(ctx, types.EventTaskAbandoned, a.ID, a.CurrentTaskID, types.StringMap{"reason": "agent died"})
			}
		}
		_ = c.Store.ReleaseLocksForAgent(ctx, a.ID)
		if err := c.Store.MarkAgentStatus(ctx, a.ID, types.AgentDead); err != nil {
			continue
		}
		dead = append(dead, a.ID)
		c.logEvent(ctx, types.EventAgentDied, a.ID, "", nil)
	}
	return dead, unresponsive, nil
}

// RecoverStaleTasks abandons claimed tasks whose claim has outlived
// claim_timeout regardless of the claiming agent's liveness (spec.md §4
// C7 "enumerating claimed tasks whose claimed_at exceeds claim_timeout").
// Returns the count abandoned.
func (c *Coordinator) RecoverStaleTasks(ctx context.Context) (int, error) {
	stale, err := c.Store.ListAbandonedCandidates(ctx, c.Cfg.ClaimTimeout())
	if err != nil {
		return 0, err
	}
	count := 0
	for _, t := range stale {
		if err := c.Store.AbandonTask(ctx, t.ID, "claim timed out"); err != nil {
			continue // swallowed: one stuck row shouldn't halt the sweep (spec.md §7)
		}
		if t.ClaimedBy != "" {
			_ = c.Store.ClearCurrentTask(ctx, t.ClaimedBy)
		}
		c.logEvent(ctx, types.EventTaskAbandoned, t.ClaimedBy, t.ID, types.StringMap{"reason": "claim timed out"})
		count++
	}
	return count, nil
}

// RunRecovery runs the full opportunistic sweep (spec.md §4 C7
// run_recovery): dead-agent eviction, stale-claim timeout, then
// re-queuing everything abandoned that's still under its retry cap.
// Order matters — both prior phases can produce fresh `abandoned` rows
// that this pass's requeue should pick up in the same invocation.
func (c *Coordinator) RunRecovery(ctx context.Context) (*RecoverySummary, error) {
	dead, unresponsive, err := c.RecoverDeadAgents(ctx)
	if err != nil {
		return nil, err
	}
	stale, err := c.RecoverStaleTasks(ctx)
	if err != nil {
		return nil, err
	}
	requeued, err := c.Store.RequeueAbandoned(ctx)
	if err != nil {
		return nil, err
	}
	if requeued > 0 {
		c.logEvent(ctx, types.EventTaskRequeued, "", "", types.StringMap{"count": itoa(requeued)})
	}
	return &RecoverySummary{
		DeadAgents:    dead,
		Unresponsive:  unresponsive,
		StaleTasks:    stale,
		RequeuedTasks: requeued,
	}, nil
}
