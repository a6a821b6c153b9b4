package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"content-planner/internal/model"
	"content-planner/internal/store"
)

// ErrCancelled is returned when the user declines a prompt or confirmation.
var ErrCancelled = errors.New("cancelled")

// ErrNoTask means the store holds no task with the requested id.
var ErrNoTask = errors.New("no such task")

const (
	TitlePrompt   = "Write the task title"
	DeleteConfirm = "Are you sure you want to delete this task?"
)

// Editor drives create, edit and delete on top of a store.
type Editor struct {
	store *store.Store
}

func New(s *store.Store) *Editor {
	return &Editor{store: s}
}

// Open loads the task with id into a new draft.
func (e *Editor) Open(id string) (*Draft, error) {
	t, ok := e.store.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoTask, id)
	}
	return newDraft(t), nil
}

// Save sends the whole draft as the update and refreshes it from the server's
// answer.
func (e *Editor) Save(ctx context.Context, d *Draft) (model.Task, error) {
	updated, err := e.store.Update(ctx, d.ID, model.PatchFrom(d.task))
	if err != nil {
		return model.Task{}, err
	}
	d.task = updated.Clone()
	d.changed = map[string]bool{}
	return updated, nil
}

// Delete asks c for confirmation and then deletes id.
func (e *Editor) Delete(ctx context.Context, id string, c Confirmer) error {
	if _, ok := e.store.Get(id); !ok {
		return fmt.Errorf("%w: %s", ErrNoTask, id)
	}
	ok, err := c.Confirm(DeleteConfirm)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCancelled
	}
	return e.store.Delete(ctx, id)
}

// CreateOn asks p for a title and creates a Not Ready task starting on day.
// An empty answer cancels without touching the store.
func (e *Editor) CreateOn(ctx context.Context, day model.Date, p Prompter) (model.Task, error) {
	title, err := p.Prompt(TitlePrompt)
	if err != nil {
		return model.Task{}, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Task{}, ErrCancelled
	}

	return e.store.Create(ctx, model.Task{
		Title:  title,
		Start:  model.DatePtr(day),
		Status: model.DefaultStatus,
	})
}
