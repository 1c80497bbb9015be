package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create exchanges",
		SQL: `
			CREATE TABLE exchanges (
				id                TEXT PRIMARY KEY,
				conversation_key  TEXT NOT NULL DEFAULT '',
				provider          TEXT NOT NULL,
				model             TEXT NOT NULL,
				prompt            TEXT NOT NULL,
				reply             TEXT NOT NULL,
				parent_message_id TEXT NOT NULL DEFAULT '',
				duration_ms       INTEGER NOT NULL DEFAULT 0,
				created_at        TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_exchanges_key ON exchanges (conversation_key, created_at);
		`,
	},
}
