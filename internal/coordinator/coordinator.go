// Package coordinator is the thin orchestration layer (spec.md §4 C7):
// claim/complete/fail wrapping the task queue (C5) and agent registry
// (C6), term fencing against the leader module (C4), and the recovery
// sweep (C4+C5+C6 combined). It is the only package that wires those
// three together; storage/sqlite never calls across entity boundaries
// itself.
package coordinator

import (
	"context"
	"fmt"
	"time"

	"github.com/aquacoord/aqua/internal/config"
	"github.com/aquacoord/aqua/internal/errs"
	"github.com/aquacoord/aqua/internal/idgen"
	"github.com/aquacoord/aqua/internal/storage"
	"github.com/aquacoord/aqua/internal/types"
)

// Coordinator bundles a Store with the tunables from spec.md §6. One
// instance is built per CLI invocation and discarded afterward — the
// core keeps no state across calls (spec.md §9 "Global mutable state").
type Coordinator struct {
	Store storage.Store
	Cfg   config.Config
}

// New builds a Coordinator over an already-opened store.
func New(store storage.Store, cfg config.Config) *Coordinator {
	return &Coordinator{Store: store, Cfg: cfg}
}

func now() time.Time { return time.Now().UTC() }

// currentTerm reads the leader term in effect right now, used to stamp
// claim_term as a fencing token (spec.md §4 C7 "Reads current leader term
// before each claim"). Absence of any elected leader fences to term 0.
func (c *Coordinator) currentTerm(ctx context.Context) (int64, error) {
	l, err := c.Store.GetLeader(ctx)
	if err != nil {
		return 0, err
	}
	if l == nil {
		return 0, nil
	}
	return l.Term, nil
}

// Join registers a new agent (spec.md §4 C6 join, §6 `aqua join`).
func (c *Coordinator) Join(ctx context.Context, name string, atype types.AgentType, pid int, capabilities types.StringSet, role string) (*types.Agent, error) {
	if !types.ValidAgentType(atype) {
		return nil, fmt.Errorf("join: %w: unknown agent type %q", errs.ErrSchemaError, atype)
	}
	if existing, err := c.Store.GetAgentByName(ctx, name); err == nil && existing != nil {
		return nil, fmt.Errorf("join: %w", errs.ErrNameConflict)
	}
	t := now()
	a := &types.Agent{
		ID:              idgen.NewAgentID(name),
		Name:            name,
		Type:            atype,
		PID:             pid,
		Status:          types.AgentActive,
		LastHeartbeatAt: t,
		RegisteredAt:    t,
		Capabilities:    capabilities,
		Role:            role,
	}
	if err := c.Store.JoinAgent(ctx, a); err != nil {
		return nil, err
	}
	c.logEvent(ctx, types.EventAgentJoined, a.ID, "", nil)
	return a, nil
}

// Leave removes an agent's registration (spec.md §4 C6 leave). If the
// agent still holds a task and force is false, Leave refuses; with
// force, the held task is abandoned first so recovery doesn't need to
// wait out the claim timeout.
func (c *Coordinator) Leave(ctx context.Context, agentID string, force bool) error {
	a, err := c.Store.GetAgent(ctx, agentID)
	if err != nil {
		return err
	}
	if a.HasCurrentTask() {
		if !force {
			return fmt.Errorf("leave: agent holds task %s: %w", a.CurrentTaskID, errs.ErrNoCurrentTask)
		}
		if err := c.Store.AbandonTask(ctx, a.CurrentTaskID, "agent left with --force"); err != nil && err != errs.ErrClaimFailed {
			return err
		}
		c.logEvent(ctx, types.EventTaskAbandoned, agentID, a.CurrentTaskID, types.StringMap{"reason": "agent left"})
	}
	if err := c.Store.ReleaseLocksForAgent(ctx, agentID); err != nil {
		return err
	}
	if err := c.Store.LeaveAgent(ctx, agentID); err != nil {
		return err
	}
	c.logEvent(ctx, types.EventAgentLeft, agentID, "", nil)
	return nil
}

// Heartbeat refreshes liveness (spec.md §4 C6). Callers invoke this at
// the start of any substantive operation; it never changes any other
// row (spec.md §8 testable property 9, idempotent heartbeat).
func (c *Coordinator) Heartbeat(ctx context.Context, agentID, progress string) error {
	return c.Store.Heartbeat(ctx, agentID, progress)
}

// AddTask creates a new pending task (spec.md §4 C5, §6 `aqua add`).
func (c *Coordinator) AddTask(ctx context.Context, title, description string, priority int, createdBy string, tags, dependsOn types.StringSet, taskContext string) (*types.Task, error) {
	if priority == 0 {
		priority = types.DefaultPriority
	}
	if err := types.ValidatePriority(priority); err != nil {
		return nil, err
	}
	t := now()
	task := &types.Task{
		ID:          idgen.NewTaskID(title),
		Title:       title,
		Description: description,
		Status:      types.TaskPending,
		Priority:    priority,
		CreatedBy:   createdBy,
		CreatedAt:   t,
		UpdatedAt:   t,
		MaxRetries:  c.Cfg.MaxRetries,
		Tags:        tags,
		Context:     taskContext,
		Version:     1,
		DependsOn:   dependsOn,
	}
	if err := c.Store.AddTask(ctx, task); err != nil {
		return nil, err
	}
	c.logEvent(ctx, types.EventTaskCreated, createdBy, task.ID, types.StringMap{"title": title})
	return task, nil
}

// ClaimResult pairs a claimed task with whether it matched the agent's
// advisory role preference (spec.md §4.5 "Role-aware selection").
type ClaimResult struct {
	Task        *types.Task
	MatchedRole bool
}

// ClaimNextTask claims the highest-priority eligible pending task for
// agentID (spec.md §4 C5, C7). When the agent has a role, role-tagged
// pending tasks are preferred; absent a role match, any eligible task is
// returned and MatchedRole is false (spec.md §4.5, an Open Question in
// §9 left as policy for the caller — aqua reports the signal but does
// not refuse the fallback task on the agent's behalf).
//
// A successful claim is paired, in the same call, with setting the
// agent's current_task_id (spec.md §9 "Two-write atomicity").
func (c *Coordinator) ClaimNextTask(ctx context.Context, agentID string) (*ClaimResult, error) {
	if err := c.Heartbeat(ctx, agentID, ""); err != nil {
		return nil, err
	}
	agent, err := c.Store.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	term, err := c.currentTerm(ctx)
	if err != nil {
		return nil, err
	}

	matchedRole := false
	var task *types.Task
	if agent.Role != "" {
		task, err = c.Store.ClaimNextTask(ctx, agentID, term, []string{agent.Role})
		if err == nil {
			matchedRole = true
		} else if err != errs.ErrClaimFailed {
			return nil, err
		}
	}
	if task == nil {
		task, err = c.Store.ClaimNextTask(ctx, agentID, term, nil)
		if err != nil {
			return nil, err
		}
	}

	if err := c.Store.SetCurrentTask(ctx, agentID, task.ID); err != nil {
		return nil, err
	}
	c.logEvent(ctx, types.EventTaskClaimed, agentID, task.ID, types.StringMap{"claim_term": fmt.Sprintf("%d", term)})
	return &ClaimResult{Task: task, MatchedRole: matchedRole}, nil
}

// ClaimSpecificTask claims a named task for agentID (spec.md §6 `aqua
// claim <id>`), rejecting with DependencyUnmet before ClaimFailed so
// callers can tell "not ready yet" from "already taken".
func (c *Coordinator) ClaimSpecificTask(ctx context.Context, agentID, taskID string) (*types.Task, error) {
	if err := c.Heartbeat(ctx, agentID, ""); err != nil {
		return nil, err
	}
	term, err := c.currentTerm(ctx)
	if err != nil {
		return nil, err
	}
	task, err := c.Store.ClaimSpecificTask(ctx, agentID, taskID, term)
	if err != nil {
		return nil, err
	}
	if err := c.Store.SetCurrentTask(ctx, agentID, task.ID); err != nil {
		return nil, err
	}
	c.logEvent(ctx, types.EventTaskClaimed, agentID, task.ID, types.StringMap{"claim_term": fmt.Sprintf("%d", term)})
	return task, nil
}

// CompleteTask marks agentID's current task done and clears it (spec.md
// §6 `aqua done`).
func (c *Coordinator) CompleteTask(ctx context.Context, agentID, result string) (*types.Task, error) {
	if err := c.Heartbeat(ctx, agentID, ""); err != nil {
		return nil, err
	}
	agent, err := c.Store.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if !agent.HasCurrentTask() {
		return nil, errs.ErrNoCurrentTask
	}
	taskID := agent.CurrentTaskID
	if err := c.Store.CompleteTask(ctx, taskID, agentID, result); err != nil {
		return nil, err
	}
	if err := c.Store.ClearCurrentTask(ctx, agentID); err != nil {
		return nil, err
	}
	c.logEvent(ctx, types.EventTaskCompleted, agentID, taskID, types.StringMap{"result": result})
	return c.Store.GetTask(ctx, taskID)
}

// FailTask marks agentID's current task failed for this attempt and
// clears it (spec.md §6 `aqua fail`). Failure never auto-requeues;
// that's RequeueAbandoned's job, and failed tasks aren't abandoned.
func (c *Coordinator) FailTask(ctx context.Context, agentID, errMsg string) (*types.Task, error) {
	if err := c.Heartbeat(ctx, agentID, ""); err != nil {
		return nil, err
	}
	agent, err := c.Store.GetAgent(ctx, agentID)
	if err != nil {
		return nil, err
	}
	if !agent.HasCurrentTask() {
		return nil, errs.ErrNoCurrentTask
	}
	taskID := agent.CurrentTaskID
	if err := c.Store.FailTask(ctx, taskID, agentID, errMsg); err != nil {
		return nil, err
	}
	if err := c.Store.ClearCurrentTask(ctx, agentID); err != nil {
		return nil, err
	}
	c.logEvent(ctx, types.EventTaskFailed, agentID, taskID, types.StringMap{"error": errMsg})
	return c.Store.GetTask(ctx, taskID)
}

// Progress checkpoints agentID's current task without changing its
// status (spec.md §4.5 "a separate path sets the task's context field").
func (c *Coordinator) Progress(ctx context.Context, agentID, note string) error {
	if err := c.Heartbeat(ctx, agentID, note); err != nil {
		return err
	}
	agent, err := c.Store.GetAgent(ctx, agentID)
	if err != nil {
		return err
	}
	if !agent.HasCurrentTask() {
		return errs.ErrNoCurrentTask
	}
	return c.Store.SetTaskProgress(ctx, agent.CurrentTaskID, note)
}

// SendMessage heartbeats agentID, then records the message (spec.md §4.6
// heartbeat-on-substantive-operation; §6 `aqua msg send`).
func (c *Coordinator) SendMessage(ctx context.Context, m *types.Message) (int64, error) {
	if err := c.Heartbeat(ctx, m.FromAgent, ""); err != nil {
		return 0, err
	}
	return c.Store.SendMessage(ctx, m)
}

// Inbox heartbeats agentID, then lists messages addressed to it (spec.md
// §4.6 heartbeat-on-substantive-operation; §6 `aqua msg inbox`). Every
// returned message that was unread for agentID is then marked read for
// agentID only; the returned ReadAt values reflect the state before this
// fetch.
func (c *Coordinator) Inbox(ctx context.Context, agentID string, unreadOnly bool) ([]*types.Message, error) {
	if err := c.Heartbeat(ctx, agentID, ""); err != nil {
		return nil, err
	}
	msgs, err := c.Store.Inbox(ctx, agentID, unreadOnly)
	if err != nil {
		return nil, err
	}
	for _, m := range msgs {
		if m.ReadAt == nil {
			if err := c.Store.MarkMessageRead(ctx, m.ID, agentID); err != nil {
				return nil, err
			}
		}
	}
	return msgs, nil
}

// TryBecomeLeader attempts election/renewal with the configured lease
// (spec.md §4 C4).
func (c *Coordinator) TryBecomeLeader(ctx context.Context, agentID string) (*types.Leader, bool, error) {
	l, won, err := c.Store.TryBecomeLeader(ctx, agentID, c.Cfg.LeaseDuration())
	if err != nil {
		return nil, false, err
	}
	if won {
		c.logEvent(ctx, types.EventLeaderElected, agentID, "", types.StringMap{"term": fmt.Sprintf("%d", l.Term)})
	}
	return l, won, nil
}

func (c *Coordinator) logEvent(ctx context.Context, eventType, agentID, taskID string, detail types.StringMap) {
	_ = c.Store.AppendEvent(ctx, &types.Event{
		Timestamp: now(),
		EventType: eventType,
		AgentID:   agentID,
		TaskID:    taskID,
		Detail:    detail,
	})
}
