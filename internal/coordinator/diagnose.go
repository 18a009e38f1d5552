package coordinator

import (
	"context"

	"github.com/aquacoord/aqua/internal/types"
)

// Diagnosis is the read-only result of classifying liveness and claim
// staleness without applying any of it (spec.md §12 `aqua doctor`: "a
// read-only diagnostic pass... without mutating anything, distinct from
// recover which applies the recovery sweep. Both share the same
// detection logic").
type Diagnosis struct {
	SchemaVersion int
	LeaderAgentID string
	LeaderTerm    int64
	HasLeader     bool
	DeadAgents    []string
	Unresponsive  []string
	StaleTasks    int
}

// Diagnose runs the same detection rules as RunRecovery but never writes:
// no agent is marked dead, no task is abandoned, no lock is released.
func (c *Coordinator) Diagnose(ctx context.Context) (*Diagnosis, error) {
	d := &Diagnosis{}

	version, err := c.Store.SchemaVersion(ctx)
	if err != nil {
		return nil, err
	}
	d.SchemaVersion = version

	leader, err := c.Store.GetLeader(ctx)
	if err != nil {
		return nil, err
	}
	if leader != nil {
		d.HasLeader = true
		d.LeaderAgentID = leader.AgentID
		d.LeaderTerm = leader.Term
	}

	agents, err := c.Store.ListAgents(ctx)
	if err != nil {
		return nil, err
	}
	threshold := c.Cfg.DeadThreshold()
	nowT := now()
	for _, a := range agents {
		if a.Status == types.AgentDead {
			continue
		}
		age := nowT.Sub(a.LastHeartbeatAt)
		if age <= threshold {
			continue
		}
		if processAlive(a.PID) {
			d.Unresponsive = append(d.Unresponsive, a.ID)
		} else {
			d.DeadAgents = append(d.DeadAgents, a.ID)
		}
	}

	stale, err := c.Store.ListAbandonedCandidates(ctx, c.Cfg.ClaimTimeout())
	if err != nil {
		return nil, err
	}
	d.StaleTasks = len(stale)

	return d, nil
}
