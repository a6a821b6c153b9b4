package activity

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// Event names written by the task handlers.
const (
	TaskCreated       = "task_created"
	TaskUpdated       = "task_updated"
	TaskStatusChanged = "task_status_changed"
	TaskDeleted       = "task_deleted"
)

// Envelope is what we store with every event.
type Envelope struct {
	SessionID  string
	Platform   string
	AppVersion string
	RequestID  string
}

// FromRequest extracts event envelope fields from request headers.
func FromRequest(r *http.Request) Envelope {
	platform := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Platform")))
	switch platform {
	case "web", "cli", "ios", "android":
	default:
		platform = "unknown"
	}

	return Envelope{
		SessionID:  strings.TrimSpace(r.Header.Get("X-Session-Id")),
		Platform:   platform,
		AppVersion: strings.TrimSpace(r.Header.Get("X-App-Version")),
		RequestID:  strings.TrimSpace(r.Header.Get("X-Request-Id")),
	}
}

// SourceEventKeyFromRequest returns the client-provided idempotency key, if any.
// If present and duplicated, the insert is ignored.
func SourceEventKeyFromRequest(r *http.Request) string {
	k := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if k != "" {
		return k
	}
	return strings.TrimSpace(r.Header.Get("X-Source-Event-Key"))
}

// Logger records task activity. Implementations must not fail the caller's
// request: errors are returned for logging only.
type Logger interface {
	Log(ctx context.Context, env Envelope, eventName, taskID string, props any, sourceEventKey string) error
}

// Nop discards events.
type Nop struct{}

func (Nop) Log(context.Context, Envelope, string, string, any, string) error { return nil }

// SQLLogger appends events to the task_events table.
type SQLLogger struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSQLLogger(db *sqlx.DB) *SQLLogger {
	return &SQLLogger{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// Log inserts one event. Props are caller-sanitised; raw captions and
// comments never go in here.
func (l *SQLLogger) Log(ctx context.Context, env Envelope, eventName, taskID string, props any, sourceEventKey string) error {
	if eventName == "" {
		return nil
	}

	b, err := json.Marshal(props)
	if err != nil {
		return err
	}

	// One request can emit several events; scope the key per event so they do
	// not swallow each other.
	var key sql.NullString
	if sourceEventKey != "" {
		key = sql.NullString{String: sourceEventKey + ":" + eventName, Valid: true}
	}

	_, err = l.db.ExecContext(ctx, l.insertSQL(key.Valid),
		eventName, l.now(),
		taskID, nullIfEmpty(env.SessionID),
		env.Platform, env.AppVersion, env.RequestID,
		key,
		string(b),
	)
	return err
}

func (l *SQLLogger) insertSQL(dedupe bool) string {
	insert := "INSERT INTO"
	suffix := ""
	if dedupe {
		if l.db.DriverName() == "mysql" {
			insert = "INSERT IGNORE INTO"
		} else {
			suffix = " ON CONFLICT (source_event_key) DO NOTHING"
		}
	}
	return l.db.Rebind(insert + ` task_events (
		event_name, event_time,
		task_id, session_id,
		platform, app_version, request_id,
		source_event_key,
		properties
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)` + suffix)
}

func nullIfEmpty(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
