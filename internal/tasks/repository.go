package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"content-planner/internal/model"
)

// ErrNotFound is returned when no task has the requested id.
var ErrNotFound = errors.New("task not found")

// Repository persists task records.
type Repository interface {
	List(ctx context.Context) ([]model.Task, error)
	Get(ctx context.Context, id string) (model.Task, error)
	Create(ctx context.Context, draft model.Task) (model.Task, error)
	// Update applies patch and returns the record before and after the change.
	Update(ctx context.Context, id string, patch model.Patch) (before, after model.Task, err error)
	Delete(ctx context.Context, id string) error
}

// SQLRepository stores tasks in postgres or mysql.
type SQLRepository struct {
	db    *sqlx.DB
	now   func() time.Time
	newID func() string
}

func NewRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{
		db:    db,
		now:   func() time.Time { return time.Now().UTC() },
		newID: NewID,
	}
}

// NewID returns a fresh task id: a 24 character hex object id.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// ValidID reports whether id has the shape NewID produces.
func ValidID(id string) bool {
	return primitive.IsValidObjectID(id)
}

type taskRow struct {
	ID          string       `db:"id"`
	Title       string       `db:"title"`
	StartDate   sql.NullTime `db:"start_date"`
	EndDate     sql.NullTime `db:"end_date"`
	Status      string       `db:"status"`
	Platform    string       `db:"platform"`
	ContentType string       `db:"content_type"`
	Campaign    string       `db:"campaign"`
	Caption     string       `db:"caption"`
	PostURL     string       `db:"post_url"`
	URL         string       `db:"url"`
	VideoURL    string       `db:"video_url"`
	Comments    string       `db:"comments"`
	CreatedAt   time.Time    `db:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at"`
}

const taskColumns = `id, title, start_date, end_date, status, platform, content_type,
	campaign, caption, post_url, url, video_url, comments, created_at, updated_at`

func rowFromTask(t model.Task) taskRow {
	return taskRow{
		ID:          t.ID,
		Title:       t.Title,
		StartDate:   nullDate(t.Start),
		EndDate:     nullDate(t.End),
		Status:      string(t.Status),
		Platform:    t.Platform,
		ContentType: t.ContentType,
		Campaign:    t.Campaign,
		Caption:     t.Caption,
		PostURL:     t.PostURL,
		URL:         t.URL,
		VideoURL:    t.VideoURL,
		Comments:    t.Comments,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func (r taskRow) task() model.Task {
	return model.Task{
		ID:          r.ID,
		Title:       r.Title,
		Start:       dateFromNull(r.StartDate),
		End:         dateFromNull(r.EndDate),
		Status:      model.Status(r.Status),
		Platform:    r.Platform,
		ContentType: r.ContentType,
		Campaign:    r.Campaign,
		Caption:     r.Caption,
		PostURL:     r.PostURL,
		URL:         r.URL,
		VideoURL:    r.VideoURL,
		Comments:    r.Comments,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

func nullDate(d *model.Date) sql.NullTime {
	if d == nil || d.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: d.Time, Valid: true}
}

func dateFromNull(t sql.NullTime) *model.Date {
	if !t.Valid {
		return nil
	}
	d := model.DateOf(t.Time)
	return &d
}

// List returns every task, earliest start first; undated tasks go last and
// ties keep creation order.
func (r *SQLRepository) List(ctx context.Context) ([]model.Task, error) {
	var rows []taskRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT `+taskColumns+`
		FROM tasks
		ORDER BY start_date IS NULL, start_date, seq
	`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	out := make([]model.Task, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.task())
	}
	return out, nil
}

func (r *SQLRepository) Get(ctx context.Context, id string) (model.Task, error) {
	var row taskRow
	err := r.db.GetContext(ctx, &row, r.db.Rebind(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, ErrNotFound
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("get task %s: %w", id, err)
	}
	return row.task(), nil
}

// Create stores draft under a new id. Any id on the draft is ignored.
func (r *SQLRepository) Create(ctx context.Context, draft model.Task) (model.Task, error) {
	t := draft.Clone()
	t.ID = r.newID()
	t.CreatedAt = r.now()
	t.UpdatedAt = t.CreatedAt

	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (:id, :title, :start_date, :end_date, :status, :platform, :content_type,
			:campaign, :caption, :post_url, :url, :video_url, :comments, :created_at, :updated_at)
	`, rowFromTask(t))
	if err != nil {
		return model.Task{}, fmt.Errorf("insert task: %w", err)
	}
	return t, nil
}

// Update merges patch into the stored record. Concurrent updates are not
// versioned: the last one to commit wins.
func (r *SQLRepository) Update(ctx context.Context, id string, patch model.Patch) (model.Task, model.Task, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return model.Task{}, model.Task{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var row taskRow
	err = tx.GetContext(ctx, &row, tx.Rebind(`SELECT `+taskColumns+` FROM tasks WHERE id = ? FOR UPDATE`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, model.Task{}, ErrNotFound
	}
	if err != nil {
		return model.Task{}, model.Task{}, fmt.Errorf("load task %s: %w", id, err)
	}

	before := row.task()
	after := patch.Apply(before)
	after.UpdatedAt = r.now()

	_, err = tx.NamedExecContext(ctx, `
		UPDATE tasks SET
			title = :title,
			start_date = :start_date,
			end_date = :end_date,
			status = :status,
			platform = :platform,
			content_type = :content_type,
			campaign = :campaign,
			caption = :caption,
			post_url = :post_url,
			url = :url,
			video_url = :video_url,
			comments = :comments,
			updated_at = :updated_at
		WHERE id = :id
	`, rowFromTask(after))
	if err != nil {
		return model.Task{}, model.Task{}, fmt.Errorf("update task %s: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return model.Task{}, model.Task{}, fmt.Errorf("commit: %w", err)
	}
	return before, after, nil
}

func (r *SQLRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM tasks WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
