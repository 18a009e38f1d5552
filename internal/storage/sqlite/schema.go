package sqlite

// schema is the initial DDL, applied once at Open time with
// CREATE TABLE IF NOT EXISTS so it is safe to run against an already
// initialized store. Adapted from the teacher's schema.go: CHECK
// constraints in place of application-side enums, an append-only events
// table, and a generic config table.
const schema = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS config (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS agents (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL UNIQUE,
	type              TEXT NOT NULL CHECK (type IN ('claude','codex','gemini','generic')),
	pid               INTEGER NOT NULL DEFAULT 0,
	status            TEXT NOT NULL CHECK (status IN ('active','idle','dead')) DEFAULT 'active',
	last_heartbeat_at DATETIME NOT NULL,
	registered_at     DATETIME NOT NULL,
	current_task_id   TEXT,
	capabilities      TEXT NOT NULL DEFAULT '',
	metadata          TEXT NOT NULL DEFAULT '',
	last_progress     TEXT NOT NULL DEFAULT '',
	role              TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_agents_status ON agents(status);

CREATE TABLE IF NOT EXISTS tasks (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL CHECK (status IN ('pending','claimed','done','failed','abandoned')) DEFAULT 'pending',
	priority     INTEGER NOT NULL DEFAULT 5 CHECK (priority BETWEEN 1 AND 10),
	created_by   TEXT NOT NULL DEFAULT '',
	claimed_by   TEXT,
	claim_term   INTEGER NOT NULL DEFAULT 0,
	created_at   DATETIME NOT NULL,
	updated_at   DATETIME NOT NULL,
	claimed_at   DATETIME,
	completed_at DATETIME,
	result       TEXT NOT NULL DEFAULT '',
	error        TEXT NOT NULL DEFAULT '',
	retry_count  INTEGER NOT NULL DEFAULT 0,
	max_retries  INTEGER NOT NULL DEFAULT 3,
	tags         TEXT NOT NULL DEFAULT '',
	context      TEXT NOT NULL DEFAULT '',
	version      INTEGER NOT NULL DEFAULT 1,
	depends_on   TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_tasks_status_priority ON tasks(status, priority, created_at);
CREATE INDEX IF NOT EXISTS idx_tasks_claimed_by ON tasks(claimed_by);

CREATE TABLE IF NOT EXISTS leader (
	id               INTEGER PRIMARY KEY CHECK (id = 1),
	agent_id         TEXT NOT NULL,
	term             INTEGER NOT NULL,
	lease_expires_at DATETIME NOT NULL,
	elected_at       DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	from_agent   TEXT NOT NULL,
	to_agent     TEXT,
	content      TEXT NOT NULL,
	message_type TEXT NOT NULL DEFAULT 'note',
	created_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_to_agent ON messages(to_agent, created_at);

-- message_reads tracks per-recipient read state independently of the
-- sender's copy of a message, so a broadcast message (to_agent NULL) can
-- be read by several agents without clobbering one shared read_at column.
CREATE TABLE IF NOT EXISTS message_reads (
	message_id INTEGER NOT NULL,
	agent_id   TEXT NOT NULL,
	read_at    DATETIME NOT NULL,
	PRIMARY KEY (message_id, agent_id)
);

CREATE TABLE IF NOT EXISTS events (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	timestamp  DATETIME NOT NULL,
	event_type TEXT NOT NULL,
	agent_id   TEXT NOT NULL DEFAULT '',
	task_id    TEXT NOT NULL DEFAULT '',
	detail     TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(timestamp);
CREATE INDEX IF NOT EXISTS idx_events_type ON events(event_type);
CREATE INDEX IF NOT EXISTS idx_events_agent ON events(agent_id);
CREATE INDEX IF NOT EXISTS idx_events_task ON events(task_id);

CREATE TABLE IF NOT EXISTS file_locks (
	file_path TEXT PRIMARY KEY,
	agent_id  TEXT NOT NULL,
	locked_at DATETIME NOT NULL
);
`
