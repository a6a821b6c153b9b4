package editor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"

	"content-planner/internal/model"
	"content-planner/internal/store"
)

// fakeAPI keeps tasks in a slice and records the last patch it saw.
type fakeAPI struct {
	tasks     []model.Task
	nextID    string
	lastPatch model.Patch
	deleted   []string
	creates   int
	failNext  error
}

func (f *fakeAPI) List(context.Context) ([]model.Task, error) { return f.tasks, nil }

func (f *fakeAPI) Create(_ context.Context, d model.Task) (model.Task, error) {
	f.creates++
	if err := f.takeFail(); err != nil {
		return model.Task{}, err
	}
	d.ID = f.nextID
	f.tasks = append(f.tasks, d)
	return d, nil
}

func (f *fakeAPI) Update(_ context.Context, id string, p model.Patch) (model.Task, error) {
	if err := f.takeFail(); err != nil {
		return model.Task{}, err
	}
	f.lastPatch = p
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks[i] = p.Apply(t)
			return f.tasks[i], nil
		}
	}
	return model.Task{}, errors.New("http 404: task not found")
}

func (f *fakeAPI) Delete(_ context.Context, id string) error {
	if err := f.takeFail(); err != nil {
		return err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) takeFail() error {
	err := f.failNext
	f.failNext = nil
	return err
}

func setup(t *testing.T, tasks ...model.Task) (*Editor, *store.Store, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{tasks: tasks, nextID: "new1"}
	s := store.New(api, store.WithLogger(log.New(io.Discard, "", 0)))
	if err := s.List(context.Background()); err != nil {
		t.Fatal(err)
	}
	return New(s), s, api
}

func reel() model.Task {
	return model.Task{ID: "a1", Title: "Reel", Start: model.DatePtr(model.MustDate("2024-06-03")), Status: model.StatusNotReady}
}

func TestDraftSetValidates(t *testing.T) {
	t.Parallel()

	e, _, _ := setup(t, reel())
	d, err := e.Open("a1")
	if err != nil {
		t.Fatal(err)
	}

	if err := d.Set("platform", "linkedin"); err != nil {
		t.Fatalf("Set platform failed: %v", err)
	}
	if got, _ := d.Get("platform"); got != "LinkedIn" {
		t.Errorf("expected canonical option, got %q", got)
	}
	if err := d.Set("Platform", "MySpace"); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue for unknown platform, got %v", err)
	}
	if err := d.Set("status", "Done"); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue for bad status, got %v", err)
	}
	if err := d.Set("title", "  "); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue for empty title, got %v", err)
	}
	if err := d.Set("end", "June 5th"); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue for bad date, got %v", err)
	}
	if err := d.Set("start", ""); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue for clearing start, got %v", err)
	}
	if err := d.Set("hashtags", "#x"); !errors.Is(err, ErrUnknownField) {
		t.Errorf("expected ErrUnknownField, got %v", err)
	}

	if err := d.Set("Image URL", "cdn.example.com/a.png"); err != nil {
		t.Fatalf("Set by label failed: %v", err)
	}
	if err := d.Set("end", "2024-06-05"); err != nil {
		t.Fatal(err)
	}
	if got := d.Task(); got.PostURL != "cdn.example.com/a.png" || got.End.String() != "2024-06-05" {
		t.Errorf("unexpected draft %+v", got)
	}
	if got := d.Changed(); strings.Join(got, ",") != "end,platform,postUrl" {
		t.Errorf("unexpected changed keys %v", got)
	}
}

func TestDraftEditsStayLocal(t *testing.T) {
	t.Parallel()

	e, s, api := setup(t, reel())
	d, _ := e.Open("a1")
	if err := d.Set("comments", "needs new hook"); err != nil {
		t.Fatal(err)
	}

	if got, _ := s.Get("a1"); got.Comments != "" {
		t.Error("store changed before save")
	}
	if api.lastPatch != (model.Patch{}) {
		t.Error("server called before save")
	}
}

func TestSaveSendsFullDraft(t *testing.T) {
	t.Parallel()

	e, s, api := setup(t, reel())
	d, _ := e.Open("a1")
	_ = d.Set("status", "approved")
	_ = d.Set("comments", "ship it\n")

	got, err := e.Save(context.Background(), d)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if got.Status != model.StatusApproved || got.Comments != "ship it\n" {
		t.Errorf("unexpected saved task %+v", got)
	}

	p := api.lastPatch
	if p.Title == nil || *p.Title != "Reel" || p.Start == nil || p.Platform == nil {
		t.Errorf("expected every field in the patch, got %+v", p)
	}
	if stored, _ := s.Get("a1"); stored.Status != model.StatusApproved {
		t.Errorf("store not updated: %+v", stored)
	}
	if d.Dirty() {
		t.Error("draft should be clean after save")
	}
}

func TestSaveClearsEnd(t *testing.T) {
	t.Parallel()

	task := reel()
	task.End = model.DatePtr(model.MustDate("2024-06-06"))
	e, s, api := setup(t, task)

	d, _ := e.Open("a1")
	if err := d.Set("end", ""); err != nil {
		t.Fatalf("clearing end failed: %v", err)
	}
	if got, _ := d.Get("end"); got != "" || !d.Dirty() {
		t.Errorf("expected cleared dirty draft, got %q dirty=%v", got, d.Dirty())
	}

	if _, err := e.Save(context.Background(), d); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if p := api.lastPatch; p.End == nil || !p.End.IsZero() {
		t.Errorf("expected the patch to clear end, got %v", p.End)
	}
	if stored, _ := s.Get("a1"); stored.End != nil || stored.Start == nil {
		t.Errorf("unexpected stored dates start=%v end=%v", stored.Start, stored.End)
	}
}

func TestSaveFailureKeepsDraft(t *testing.T) {
	t.Parallel()

	e, s, api := setup(t, reel())
	d, _ := e.Open("a1")
	_ = d.Set("title", "Reel v2")
	api.failNext = errors.New("connection reset")

	if _, err := e.Save(context.Background(), d); !errors.Is(err, store.ErrOperationFailed) {
		t.Fatalf("expected ErrOperationFailed, got %v", err)
	}
	if !d.Dirty() || d.Task().Title != "Reel v2" {
		t.Error("draft lost on failed save")
	}
	if stored, _ := s.Get("a1"); stored.Title != "Reel" {
		t.Errorf("store changed on failure: %+v", stored)
	}
}

func TestOpenUnknown(t *testing.T) {
	t.Parallel()

	e, _, _ := setup(t)
	if _, err := e.Open("nope"); !errors.Is(err, ErrNoTask) {
		t.Errorf("expected ErrNoTask, got %v", err)
	}
}

func TestDeleteConfirmation(t *testing.T) {
	t.Parallel()

	e, s, api := setup(t, reel())

	var asked string
	no := ConfirmFunc(func(msg string) (bool, error) {
		asked = msg
		return false, nil
	})
	if err := e.Delete(context.Background(), "a1", no); !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
	if asked != DeleteConfirm {
		t.Errorf("unexpected confirmation %q", asked)
	}
	if len(api.deleted) != 0 || s.Len() != 1 {
		t.Error("declined delete must not reach the server")
	}

	if err := e.Delete(context.Background(), "a1", AlwaysYes); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if s.Len() != 0 || len(api.deleted) != 1 {
		t.Errorf("expected task removed, store=%d deleted=%v", s.Len(), api.deleted)
	}
}

func TestDeleteFailure(t *testing.T) {
	t.Parallel()

	e, s, api := setup(t, reel())
	api.failNext = errors.New("http 500: db error")

	if err := e.Delete(context.Background(), "a1", AlwaysYes); !errors.Is(err, store.ErrOperationFailed) {
		t.Fatalf("expected ErrOperationFailed, got %v", err)
	}
	if s.Len() != 1 {
		t.Error("task removed despite failed delete")
	}
}

func TestCreateOn(t *testing.T) {
	t.Parallel()

	e, s, _ := setup(t, reel())
	day := model.MustDate("2024-06-01")

	var asked string
	p := PromptFunc(func(msg string) (string, error) {
		asked = msg
		return "  Post A ", nil
	})
	got, err := e.CreateOn(context.Background(), day, p)
	if err != nil {
		t.Fatalf("CreateOn failed: %v", err)
	}
	if asked != TitlePrompt {
		t.Errorf("unexpected prompt %q", asked)
	}
	if got.ID != "new1" || got.Title != "Post A" || got.Status != model.StatusNotReady || !got.Start.Equal(day.Time) {
		t.Errorf("unexpected created task %+v", got)
	}
	tasks := s.Tasks()
	if len(tasks) != 2 || tasks[1].ID != "new1" {
		t.Errorf("expected new task appended, got %+v", tasks)
	}
}

func TestCreateOnCancelled(t *testing.T) {
	t.Parallel()

	day := model.MustDate("2024-06-01")
	for name, p := range map[string]Prompter{
		"empty":  Answer("   "),
		"cancel": PromptFunc(func(string) (string, error) { return "", ErrCancelled }),
	} {
		e, s, api := setup(t)
		if _, err := e.CreateOn(context.Background(), day, p); !errors.Is(err, ErrCancelled) {
			t.Errorf("%s: expected ErrCancelled, got %v", name, err)
		}
		if api.creates != 0 || s.Len() != 0 {
			t.Errorf("%s: cancelled prompt must not create", name)
		}
	}
}

func TestLinePrompter(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := NewLinePrompter(strings.NewReader("Post A\ny\nnope\n"), &out)

	title, err := p.Prompt(TitlePrompt)
	if err != nil || title != "Post A" {
		t.Fatalf("Prompt = %q, %v", title, err)
	}
	if ok, err := p.Confirm(DeleteConfirm); err != nil || !ok {
		t.Errorf("expected yes, got %v %v", ok, err)
	}
	if ok, _ := p.Confirm(DeleteConfirm); ok {
		t.Error("expected no")
	}
	if _, err := p.Prompt(TitlePrompt); !errors.Is(err, ErrCancelled) {
		t.Errorf("expected ErrCancelled at EOF, got %v", err)
	}
	if ok, err := p.Confirm(DeleteConfirm); ok || err != nil {
		t.Errorf("expected quiet no at EOF, got %v %v", ok, err)
	}
	if !strings.HasPrefix(out.String(), TitlePrompt+": ") {
		t.Errorf("unexpected prompt output %q", out.String())
	}
}

func TestFields(t *testing.T) {
	t.Parallel()

	status, ok := FieldByKey("Status")
	if !ok || status.Kind != KindSelect || len(status.Options) != 4 || status.Options[0] != "Not Ready" {
		t.Errorf("unexpected status field %+v", status)
	}
	if f, ok := FieldByKey("video url"); !ok || f.Key != "videourl" {
		t.Errorf("expected lookup by label, got %+v", f)
	}
	if KindTextarea.String() != "textarea" {
		t.Errorf("unexpected kind name %q", KindTextarea)
	}
}
