package journal

// Schema contains the SQL statements to create the journal schema.
const Schema = `
-- Transitions table: one row per health state change
CREATE TABLE IF NOT EXISTS transitions (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    occurred_at DATETIME NOT NULL,
    from_state  TEXT NOT NULL,
    to_state    TEXT NOT NULL,
    reachable   TEXT NOT NULL,
    unreachable TEXT NOT NULL
);

-- Actions table: one row per configuration apply attempt
CREATE TABLE IF NOT EXISTS actions (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    occurred_at DATETIME NOT NULL,
    edge        TEXT NOT NULL,
    path        TEXT NOT NULL,
    commands    INTEGER NOT NULL,
    ok          BOOLEAN NOT NULL,
    detail      TEXT NOT NULL DEFAULT ''
);

-- Indexes for newest-first reads
CREATE INDEX IF NOT EXISTS idx_transitions_occurred ON transitions(occurred_at);
CREATE INDEX IF NOT EXISTS idx_actions_occurred ON actions(occurred_at);
`

// defaultLimit caps history queries when the caller passes none.
const defaultLimit = 50

// maxLimit bounds history queries however large the request.
const maxLimit = 500
