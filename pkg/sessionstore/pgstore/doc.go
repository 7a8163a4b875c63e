// Package pgstore stores session data in a PostgreSQL table through pgx/v5.
//
// The table has one row per session:
//
//	CREATE TABLE sessions (
//	    id         TEXT PRIMARY KEY,
//	    data       BYTEA NOT NULL,
//	    written_at BIGINT NOT NULL
//	);
//
// written_at holds unix seconds of the last write. GC deletes every row of
// the table that is too old regardless of session name, so give each session
// name its own table.
//
// A Store either wraps an existing pool (Config.DB) or opens its own on the
// first Open from ConnectionString, Username and Password. A Store is safe to
// share between sessions and goroutines.
package pgstore
