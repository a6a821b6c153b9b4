package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"content-planner/internal/model"
)

// ErrOperationFailed is the single outcome every failed store operation
// reports. Use errors.As with *OpError for details.
var ErrOperationFailed = errors.New("operation failed")

// OpError records which operation failed and why.
type OpError struct {
	Op  string
	ID  string
	Err error
}

func (e *OpError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.ID, e.Err)
}

// Unwrap exposes both ErrOperationFailed and the cause to errors.Is.
func (e *OpError) Unwrap() []error { return []error{ErrOperationFailed, e.Err} }

// TaskAPI is the Remote Task API as the store sees it.
type TaskAPI interface {
	List(ctx context.Context) ([]model.Task, error)
	Create(ctx context.Context, draft model.Task) (model.Task, error)
	Update(ctx context.Context, id string, patch model.Patch) (model.Task, error)
	Delete(ctx context.Context, id string) error
}

type Option func(*Store)

// WithOnChange registers fn to run after every change to the local tasks.
// It gets a copy and runs without the store lock held.
func WithOnChange(fn func([]model.Task)) Option {
	return func(s *Store) { s.onChange = fn }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// Store is the client-side mirror of the server's tasks. The server is the
// source of truth: local state only changes after a call succeeds, and the
// response that completes last wins.
type Store struct {
	api      TaskAPI
	log      *log.Logger
	onChange func([]model.Task)

	mu    sync.RWMutex
	tasks []model.Task
}

func New(api TaskAPI, opts ...Option) *Store {
	s := &Store{api: api, log: log.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List fetches every task and replaces local state.
func (s *Store) List(ctx context.Context) error {
	fetched, err := s.api.List(ctx)
	if err != nil {
		return s.fail("list", "", err)
	}

	next := make([]model.Task, 0, len(fetched))
	seen := make(map[string]int, len(fetched))
	for _, t := range fetched {
		if i, ok := seen[t.ID]; ok && t.ID != "" {
			next[i] = t.Clone()
			continue
		}
		seen[t.ID] = len(next)
		next = append(next, t.Clone())
	}

	s.mu.Lock()
	s.tasks = next
	s.mu.Unlock()
	s.changed()
	return nil
}

// Create sends draft to the server and appends the record it returns.
func (s *Store) Create(ctx context.Context, draft model.Task) (model.Task, error) {
	draft = draft.Clone()
	draft.ID = ""

	created, err := s.api.Create(ctx, draft)
	if err != nil {
		return model.Task{}, s.fail("create", "", err)
	}
	if created.ID == "" {
		return model.Task{}, s.fail("create", "", errors.New("server returned a task without id"))
	}

	s.mu.Lock()
	if i := s.indexLocked(created.ID); i >= 0 {
		s.tasks[i] = created.Clone()
	} else {
		s.tasks = append(s.tasks, created.Clone())
	}
	s.mu.Unlock()
	s.changed()
	return created, nil
}

// Update sends patch for id and replaces the local entry with the server's
// record. When no local entry has that id nothing changes locally. A record
// for another id is a failure.
func (s *Store) Update(ctx context.Context, id string, patch model.Patch) (model.Task, error) {
	updated, err := s.api.Update(ctx, id, patch)
	if err != nil {
		return model.Task{}, s.fail("update", id, err)
	}
	if updated.ID != id {
		return model.Task{}, s.fail("update", id, fmt.Errorf("server returned task %q", updated.ID))
	}

	s.mu.Lock()
	i := s.indexLocked(id)
	if i >= 0 {
		s.tasks[i] = updated.Clone()
	}
	s.mu.Unlock()
	if i >= 0 {
		s.changed()
	}
	return updated, nil
}

// Delete removes id on the server first and locally only once that worked.
func (s *Store) Delete(ctx context.Context, id string) error {
	if err := s.api.Delete(ctx, id); err != nil {
		return s.fail("delete", id, err)
	}

	s.mu.Lock()
	i := s.indexLocked(id)
	if i >= 0 {
		s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
	}
	s.mu.Unlock()
	if i >= 0 {
		s.changed()
	}
	return nil
}

// Tasks returns a copy of the local sequence.
func (s *Store) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.tasks)
}

func (s *Store) Get(id string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.tasks[i].Clone(), true
	}
	return model.Task{}, false
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

func (s *Store) indexLocked(id string) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) changed() {
	if s.onChange != nil {
		s.onChange(s.Tasks())
	}
}

func (s *Store) fail(op, id string, err error) error {
	if id == "" {
		s.log.Printf("[WARN] %s tasks: %v", op, err)
	} else {
		s.log.Printf("[WARN] %s task %s: %v", op, id, err)
	}
	return &OpError{Op: op, ID: id, Err: err}
}

func cloneAll(in []model.Task) []model.Task {
	out := make([]model.Task, len(in))
	for i, t := range in {
		out[i] = t.Clone()
	}
	return out
}
