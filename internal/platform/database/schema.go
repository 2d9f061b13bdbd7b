package database

import (
	"context"
	"fmt"

	"activitylog/internal/platform/config"
)

// Existing activity_log.db files depend on this exact layout.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS activities (
    id INTEGER PRIMARY KEY,
    name TEXT UNIQUE COLLATE NOCASE
);
CREATE TABLE IF NOT EXISTS sessions (
    id           INTEGER PRIMARY KEY,
    activity_id  INTEGER NOT NULL,
    start_ts     TEXT NOT NULL,
    end_ts       TEXT NOT NULL,
    duration_sec REAL NOT NULL,
    FOREIGN KEY(activity_id) REFERENCES activities(id) ON DELETE CASCADE
);
CREATE TABLE IF NOT EXISTS daily_totals (
    date        TEXT NOT NULL,
    activity_id INTEGER NOT NULL,
    seconds     REAL NOT NULL DEFAULT 0,
    PRIMARY KEY (date, activity_id),
    FOREIGN KEY(activity_id) REFERENCES activities(id) ON DELETE CASCADE
);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS activities (
    id   BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS activities_name_nocase ON activities (lower(name));
CREATE TABLE IF NOT EXISTS sessions (
    id           BIGSERIAL PRIMARY KEY,
    activity_id  BIGINT NOT NULL REFERENCES activities(id) ON DELETE CASCADE,
    start_ts     TEXT NOT NULL,
    end_ts       TEXT NOT NULL,
    duration_sec DOUBLE PRECISION NOT NULL
);
CREATE TABLE IF NOT EXISTS daily_totals (
    date        TEXT NOT NULL,
    activity_id BIGINT NOT NULL REFERENCES activities(id) ON DELETE CASCADE,
    seconds     DOUBLE PRECISION NOT NULL DEFAULT 0,
    PRIMARY KEY (date, activity_id)
);
`

func (db *DB) Migrate(ctx context.Context) error {
	ddl := sqliteSchema
	if db.driver == config.DriverPostgres {
		ddl = postgresSchema
	}
	if _, err := db.pool.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
