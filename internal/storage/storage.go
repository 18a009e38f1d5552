// Package storage defines the durable-store contract that the coordination
// kernel is built on (spec.md §4 C1 Durable Store). internal/storage/sqlite
// provides the only implementation, but callers (the coordinator, cmd/aqua)
// depend on this interface so the backing engine stays an implementation
// detail.
package storage

import (
	"context"
	"time"

	"github.com/aquacoord/aqua/internal/types"
)

// TaskFilter narrows ListTasks results. Zero values mean "no filter" on
// that dimension.
type TaskFilter struct {
	Status    types.TaskStatus
	ClaimedBy string
	CreatedBy string
	Tag       string
}

// EventFilter narrows ListEvents results (spec.md §4.8).
type EventFilter struct {
	EventType string
	AgentID   string
	TaskID    string
	Since     time.Time
	Until     time.Time
	Limit     int
}

// Store is the full durable-store contract. SQLiteStorage is the sole
// implementation; the interface exists so the coordinator and CLI never
// import database/sql or the sqlite package directly.
type Store interface {
	Close() error

	// Agents (C6).
	JoinAgent(ctx context.Context, a *types.Agent) error
	LeaveAgent(ctx context.Context, agentID string) error
	Heartbeat(ctx context.Context, agentID string, progress string) error
	GetAgent(ctx context.Context, agentID string) (*types.Agent, error)
	GetAgentByName(ctx context.Context, name string) (*types.Agent, error)
	ListAgents(ctx context.Context) ([]*types.Agent, error)
	SetCurrentTask(ctx context.Context, agentID, taskID string) error
	ClearCurrentTask(ctx context.Context, agentID string) error
	MarkAgentStatus(ctx context.Context, agentID string, status types.AgentStatus) error

	// Tasks (C5).
	AddTask(ctx context.Context, t *types.Task) error
	GetTask(ctx context.Context, taskID string) (*types.Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]*types.Task, error)
	ClaimNextTask(ctx context.Context, agentID string, term int64, capableTags []string) (*types.Task, error)
	ClaimSpecificTask(ctx context.Context, agentID, taskID string, term int64) (*types.Task, error)
	CompleteTask(ctx context.Context, taskID, agentID, result string) error
	FailTask(ctx context.Context, taskID, agentID, errMsg string) error
	AbandonTask(ctx context.Context, taskID, reason string) error
	RequeueAbandoned(ctx context.Context) (int, error)
	SetTaskProgress(ctx context.Context, taskID, progress string) error
	ListAbandonedCandidates(ctx context.Context, claimTimeout time.Duration) ([]*types.Task, error)
	TaskCounts(ctx context.Context) (map[types.TaskStatus]int, error)

	// Leader election (C4).
	TryBecomeLeader(ctx context.Context, agentID string, leaseDuration time.Duration) (*types.Leader, bool, error)
	GetLeader(ctx context.Context) (*types.Leader, error)
	RenewLease(ctx context.Context, agentID string, term int64, leaseDuration time.Duration) error

	// Messages (spec.md §3 Message, scenario S6).
	SendMessage(ctx context.Context, m *types.Message) (int64, error)
	Inbox(ctx context.Context, agentID string, unreadOnly bool) ([]*types.Message, error)
	MarkMessageRead(ctx context.Context, messageID int64, agentID string) error
	ListMessages(ctx context.Context, limit int) ([]*types.Message, error)

	// Events (C8).
	AppendEvent(ctx context.Context, e *types.Event) error
	ListEvents(ctx context.Context, filter EventFilter) ([]*types.Event, error)

	// File locks (spec.md §3 File lock, advisory only).
	LockFile(ctx context.Context, path, agentID string) error
	UnlockFile(ctx context.Context, path, agentID string) error
	ListLocks(ctx context.Context) ([]*types.FileLock, error)
	ReleaseLocksForAgent(ctx context.Context, agentID string) error

	// Config (ambient, §10.3).
	SetConfig(ctx context.Context, key, value string) error
	GetConfig(ctx context.Context, key string) (string, error)
	GetAllConfig(ctx context.Context) (map[string]string, error)

	// SchemaVersion reports the applied schema_version row (§12 `aqua
	// doctor`).
	SchemaVersion(ctx context.Context) (int, error)
}
