package db

import (
	"context"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect opens a pool for driver ("postgres" or "mysql") and checks that the
// server answers.
func Connect(ctx context.Context, driver, connString string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driver, connString)
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate creates the tables the API needs if they are missing.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	stmts, err := schema(db.DriverName())
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func schema(driver string) ([]string, error) {
	switch driver {
	case "postgres":
		return postgresSchema, nil
	case "mysql":
		return mysqlSchema, nil
	}
	return nil, fmt.Errorf("migrate: unsupported driver %q", driver)
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS tasks (
		id           VARCHAR(24) PRIMARY KEY,
		seq          BIGSERIAL,
		title        TEXT NOT NULL,
		start_date   DATE NULL,
		end_date     DATE NULL,
		status       VARCHAR(32) NOT NULL,
		platform     TEXT NOT NULL,
		content_type TEXT NOT NULL,
		campaign     TEXT NOT NULL,
		caption      TEXT NOT NULL,
		post_url     TEXT NOT NULL,
		url          TEXT NOT NULL,
		video_url    TEXT NOT NULL,
		comments     TEXT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_start ON tasks (start_date)`,
	`CREATE TABLE IF NOT EXISTS task_events (
		id               BIGSERIAL PRIMARY KEY,
		event_name       VARCHAR(64) NOT NULL,
		event_time       TIMESTAMPTZ NOT NULL,
		task_id          VARCHAR(24) NOT NULL,
		session_id       VARCHAR(128) NULL,
		platform         VARCHAR(16) NOT NULL,
		app_version      VARCHAR(64) NOT NULL,
		request_id       VARCHAR(64) NOT NULL,
		source_event_key VARCHAR(128) NULL UNIQUE,
		properties       JSONB NOT NULL
	)`,
}

var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS tasks (
		id           VARCHAR(24) PRIMARY KEY,
		seq          BIGINT NOT NULL AUTO_INCREMENT UNIQUE,
		title        TEXT NOT NULL,
		start_date   DATE NULL,
		end_date     DATE NULL,
		status       VARCHAR(32) NOT NULL,
		platform     TEXT NOT NULL,
		content_type TEXT NOT NULL,
		campaign     TEXT NOT NULL,
		caption      TEXT NOT NULL,
		post_url     TEXT NOT NULL,
		url          TEXT NOT NULL,
		video_url    TEXT NOT NULL,
		comments     TEXT NOT NULL,
		created_at   TIMESTAMP(6) NOT NULL,
		updated_at   TIMESTAMP(6) NOT NULL,
		INDEX idx_tasks_start (start_date)
	)`,
	`CREATE TABLE IF NOT EXISTS task_events (
		id               BIGINT PRIMARY KEY AUTO_INCREMENT,
		event_name       VARCHAR(64) NOT NULL,
		event_time       TIMESTAMP(6) NOT NULL,
		task_id          VARCHAR(24) NOT NULL,
		session_id       VARCHAR(128) NULL,
		platform         VARCHAR(16) NOT NULL,
		app_version      VARCHAR(64) NOT NULL,
		request_id       VARCHAR(64) NOT NULL,
		source_event_key VARCHAR(128) NULL UNIQUE,
		properties       JSON NOT NULL
	)`,
}
