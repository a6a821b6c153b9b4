package tasks

import (
	"errors"
	"strings"

	"content-planner/internal/model"
)

// maxBodyBytes caps request bodies; a task is a handful of short strings.
const maxBodyBytes = 1 << 20

var (
	errTitleRequired = errors.New("title is required")
	errInvalidStatus = errors.New("invalid status")
)

// normalizeDraft validates a create request and fills server defaults.
func normalizeDraft(t model.Task) (model.Task, error) {
	t.ID = ""
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return model.Task{}, errTitleRequired
	}
	if t.Status == "" {
		t.Status = model.DefaultStatus
	}
	if !t.Status.Valid() {
		return model.Task{}, errInvalidStatus
	}
	if t.Start != nil && t.Start.IsZero() {
		t.Start = nil
	}
	if t.End != nil && t.End.IsZero() {
		t.End = nil
	}
	return t, nil
}

// validatePatch rejects patches that would leave the record invalid.
func validatePatch(p model.Patch) (model.Patch, error) {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return model.Patch{}, errTitleRequired
		}
		p.Title = &title
	}
	if p.Status != nil && !p.Status.Valid() {
		return model.Patch{}, errInvalidStatus
	}
	return p, nil
}

// eventProps is what goes into the activity log for a task. No free text.
func eventProps(t model.Task) map[string]any {
	return map[string]any{
		"status":    t.Status,
		"platform":  t.Platform,
		"has_start": t.Start != nil,
		"has_end":   t.End != nil,
		"has_media": t.PostURL != "" || t.VideoURL != "",
	}
}
