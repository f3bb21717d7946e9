package sqlite

// DBFileName is the database file created in DataDir.
const DBFileName = "gomarket.db"

// Schema DDL. Statements are idempotent so Attach can run them against an
// existing database.
const (
	createKV = `CREATE TABLE IF NOT EXISTS kv (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TEXT NOT NULL
);`
)

// pragmas run once per connection pool on Attach.
var pragmas = []string{
	`PRAGMA journal_mode = WAL;`,
	`PRAGMA busy_timeout = 5000;`,
}

// schemaDDL lists all CREATE statements in dependency order.
var schemaDDL = []string{
	createKV,
}

// Queries against the kv table.
const (
	selectValue = `SELECT value FROM kv WHERE key = ?`
	upsertValue = `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	deleteAll = `DELETE FROM kv`
)
