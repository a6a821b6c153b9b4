package tasks

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"content-planner/internal/activity"
	"content-planner/internal/model"
)

// Routes registers the /api/tasks endpoints on mux. wrap is applied to every
// handler (auth, for instance); pass nil for none.
func Routes(mux *http.ServeMux, repo Repository, events activity.Logger, wrap func(http.HandlerFunc) http.HandlerFunc) {
	if wrap == nil {
		wrap = func(h http.HandlerFunc) http.HandlerFunc { return h }
	}
	if events == nil {
		events = activity.Nop{}
	}

	mux.HandleFunc("GET /api/tasks", wrap(ListTasksHandler(repo)))
	mux.HandleFunc("POST /api/tasks", wrap(CreateTaskHandler(repo, events)))
	mux.HandleFunc("GET /api/tasks/{id}", wrap(GetTaskHandler(repo)))
	mux.HandleFunc("PUT /api/tasks/{id}", wrap(UpdateTaskHandler(repo, events)))
	mux.HandleFunc("DELETE /api/tasks/{id}", wrap(DeleteTaskHandler(repo, events)))
}

// -------------------------------
// HANDLERS
// -------------------------------

func ListTasksHandler(repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := repo.List(r.Context())
		if err != nil {
			log.Printf("[WARN] list tasks: %v", err)
			writeErr(w, http.StatusInternalServerError, "db error")
			return
		}
		if result == nil {
			result = []model.Task{}
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func GetTaskHandler(repo Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if !ValidID(id) {
			writeErr(w, http.StatusNotFound, ErrNotFound.Error())
			return
		}

		t, err := repo.Get(r.Context(), id)
		if err != nil {
			writeRepoErr(w, "get", id, err)
			return
		}
		writeJSON(w, http.StatusOK, t)
	}
}

func CreateTaskHandler(repo Repository, events activity.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body model.Task
		if err := decodeBody(w, r, &body); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid json")
			return
		}

		draft, err := normalizeDraft(body)
		if err != nil {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}

		created, err := repo.Create(r.Context(), draft)
		if err != nil {
			log.Printf("[WARN] create task: %v", err)
			writeErr(w, http.StatusInternalServerError, "db error")
			return
		}

		logEvent(r, events, activity.TaskCreated, created.ID, eventProps(created))

		writeJSON(w, http.StatusCreated, created)
	}
}

func UpdateTaskHandler(repo Repository, events activity.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if !ValidID(id) {
			writeErr(w, http.StatusNotFound, ErrNotFound.Error())
			return
		}

		var body model.Patch
		if err := decodeBody(w, r, &body); err != nil {
			writeErr(w, http.StatusBadRequest, "invalid json")
			return
		}

		patch, err := validatePatch(body)
		if err != nil {
			writeErr(w, http.StatusBadRequest, err.Error())
			return
		}

		before, after, err := repo.Update(r.Context(), id, patch)
		if err != nil {
			writeRepoErr(w, "update", id, err)
			return
		}

		logEvent(r, events, activity.TaskUpdated, id, eventProps(after))
		if before.Status != after.Status {
			logEvent(r, events, activity.TaskStatusChanged, id, map[string]any{
				"status_before": before.Status,
				"status_after":  after.Status,
			})
		}

		writeJSON(w, http.StatusOK, after)
	}
}

func DeleteTaskHandler(repo Repository, events activity.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if !ValidID(id) {
			writeErr(w, http.StatusNotFound, ErrNotFound.Error())
			return
		}

		if err := repo.Delete(r.Context(), id); err != nil {
			writeRepoErr(w, "delete", id, err)
			return
		}

		logEvent(r, events, activity.TaskDeleted, id, map[string]any{})

		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}

func logEvent(r *http.Request, events activity.Logger, name, taskID string, props map[string]any) {
	env := activity.FromRequest(r)
	if err := events.Log(r.Context(), env, name, taskID, props, activity.SourceEventKeyFromRequest(r)); err != nil {
		log.Printf("[WARN] activity %s task_id=%s: %v", name, taskID, err)
	}
}

func writeRepoErr(w http.ResponseWriter, op, id string, err error) {
	if errors.Is(err, ErrNotFound) {
		writeErr(w, http.StatusNotFound, ErrNotFound.Error())
		return
	}
	log.Printf("[WARN] %s task_id=%s: %v", op, id, err)
	writeErr(w, http.StatusInternalServerError, "db error")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
