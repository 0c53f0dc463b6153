package db

import (
	"database/sql"
)

// MigrateUp creates the posting store schema.
// The unique index on identity_key backs the cross-run duplicate check.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS postings (
    id           BIGSERIAL PRIMARY KEY,
    identity_key TEXT NOT NULL UNIQUE,
    title        TEXT NOT NULL,
    company      TEXT NOT NULL,
    location     TEXT NOT NULL DEFAULT '',
    url          TEXT NOT NULL DEFAULT '',
    date_posted  TIMESTAMPTZ NOT NULL,
    role_type    VARCHAR(20) NOT NULL,
    source       TEXT NOT NULL,
    posted       BOOLEAN NOT NULL DEFAULT FALSE,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`); err != nil {
		return err
	}

	indexes := []string{
		// ORDER BY date_posted DESC is used by every listing query.
		`CREATE INDEX IF NOT EXISTS idx_postings_date_posted ON postings(date_posted DESC)`,
		// Per-source listing and stats.
		`CREATE INDEX IF NOT EXISTS idx_postings_source ON postings(source)`,
		// Unposted scan for announcement catch-up.
		`CREATE INDEX IF NOT EXISTS idx_postings_posted ON postings(posted) WHERE posted = FALSE`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	return nil
}

// MigrateDown drops the posting store schema.
// Use with caution: this deletes all stored postings.
func MigrateDown(db *sql.DB) error {
	dropStatements := []string{
		`DROP INDEX IF EXISTS idx_postings_posted`,
		`DROP INDEX IF EXISTS idx_postings_source`,
		`DROP INDEX IF EXISTS idx_postings_date_posted`,
		`DROP TABLE IF EXISTS postings CASCADE`,
	}

	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}

	return nil
}
