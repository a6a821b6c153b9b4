package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"content-planner/internal/model"
)

func TestListAndHeaders(t *testing.T) {
	t.Parallel()

	var gotAuth, gotPlatform, gotRequestID, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPlatform = r.Header.Get("X-Platform")
		gotRequestID = r.Header.Get("X-Request-Id")
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`[{"_id":"a1","title":"Reel","start":"2024-06-03","status":"Approved"}]`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", "tok", time.Second)
	got, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a1" || got[0].Status != model.StatusApproved {
		t.Errorf("unexpected tasks %+v", got)
	}
	if gotPath != "/api/tasks" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer tok" || gotPlatform != "cli" || gotRequestID == "" {
		t.Errorf("unexpected headers auth=%q platform=%q request_id=%q", gotAuth, gotPlatform, gotRequestID)
	}
}

func TestListNullBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`null`))
	}))
	defer srv.Close()

	got, err := New(srv.URL, "", 0).List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}

func TestCreateSendsDraftWithoutID(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/tasks" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		if _, ok := body["_id"]; ok {
			t.Error("draft must not carry an id")
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"_id":"new1","title":"Post A","start":"2024-06-01","status":"Not Ready"}`))
	}))
	defer srv.Close()

	start := model.NewDate(2024, 6, 1)
	got, err := New(srv.URL, "", 0).Create(context.Background(), model.Task{ID: "local", Title: "Post A", Start: &start})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if got.ID != "new1" || got.Start.String() != "2024-06-01" {
		t.Errorf("unexpected created task %+v", got)
	}
}

func TestUpdateSendsPatch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/tasks/a1" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		if string(raw) != `{"status":"Approved"}` {
			t.Errorf("unexpected body %s", raw)
		}
		_, _ = w.Write([]byte(`{"_id":"a1","title":"Reel","status":"Approved"}`))
	}))
	defer srv.Close()

	approved := model.StatusApproved
	got, err := New(srv.URL, "", 0).Update(context.Background(), "a1", model.Patch{Status: &approved})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got.Status != model.StatusApproved {
		t.Errorf("unexpected status %q", got.Status)
	}
}

func TestDeleteStatusError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Request-Id", "rid-9")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"task not found"}`))
	}))
	defer srv.Close()

	err := New(srv.URL, "", 0).Delete(context.Background(), "missing")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Code != http.StatusNotFound || se.Message != "task not found" || se.RequestID != "rid-9" {
		t.Errorf("unexpected error %+v", se)
	}
	if se.Error() != "http 404: task not found" {
		t.Errorf("unexpected message %q", se.Error())
	}
}

func TestTransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	if _, err := New(url, "", time.Second).List(context.Background()); err == nil {
		t.Fatal("expected transport error")
	}
	if _, err := New("not a url", "", 0).List(context.Background()); err == nil {
		t.Fatal("expected error for bad base url")
	}
}

func TestDeleteTruncatedBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Promise more than is sent so the connection drops mid-body.
		w.Header().Set("Content-Length", "64")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	err := New(srv.URL, "", time.Second).Delete(context.Background(), "a1")
	if err == nil {
		t.Fatal("expected a read error for a truncated body")
	}
	var se *StatusError
	if errors.As(err, &se) {
		t.Errorf("expected a read error, got status error %v", se)
	}
}

func TestBaseURLPrefixKept(t *testing.T) {
	t.Parallel()

	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	if _, err := New(srv.URL+"/planner", "", 0).List(context.Background()); err != nil {
		t.Fatal(err)
	}
	if gotPath != "/planner/api/tasks" {
		t.Errorf("unexpected path %q", gotPath)
	}
}
