package editor

import (
	"errors"
	"fmt"
	"strings"

	"content-planner/internal/model"
)

var (
	ErrUnknownField = errors.New("unknown field")
	ErrInvalidValue = errors.New("invalid value")
)

// Draft is a task being edited. Changes stay local until Editor.Save.
type Draft struct {
	ID      string
	task    model.Task
	changed map[string]bool
}

func newDraft(t model.Task) *Draft {
	return &Draft{ID: t.ID, task: t.Clone(), changed: map[string]bool{}}
}

// Task returns the draft's current contents.
func (d *Draft) Task() model.Task { return d.task.Clone() }

// Dirty reports whether any field was set since the draft was opened.
func (d *Draft) Dirty() bool { return len(d.changed) > 0 }

// Changed lists the keys set since the draft was opened, in field order.
func (d *Draft) Changed() []string {
	var out []string
	for _, f := range Fields {
		if d.changed[f.Key] {
			out = append(out, f.Key)
		}
	}
	return out
}

// Get returns the text form of a field.
func (d *Draft) Get(key string) (string, error) {
	f, ok := FieldByKey(key)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	t := &d.task
	switch f.Key {
	case "title":
		return t.Title, nil
	case "start":
		return dateText(t.Start), nil
	case "end":
		return dateText(t.End), nil
	case "status":
		return string(t.Status), nil
	default:
		return *d.stringField(f.Key), nil
	}
}

// Set edits one field. Select values must be one of the field's options and
// dates must parse; nothing is sent to the server.
func (d *Draft) Set(key, value string) error {
	f, ok := FieldByKey(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, key)
	}
	if f.Kind != KindTextarea {
		value = strings.TrimSpace(value)
	}
	if value == "" && f.Required {
		return fmt.Errorf("%w: %s is required", ErrInvalidValue, f.Label)
	}

	t := &d.task
	switch f.Kind {
	case KindDate:
		if value == "" {
			// Only optional dates get here; Save sends the clear.
			t.End = nil
			break
		}
		day, err := model.ParseDate(value)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidValue, err)
		}
		if f.Key == "start" {
			t.Start = &day
		} else {
			t.End = &day
		}
	case KindSelect:
		if value != "" {
			opt, ok := f.option(value)
			if !ok {
				return fmt.Errorf("%w: %s must be one of %s", ErrInvalidValue, f.Label, strings.Join(f.Options, ", "))
			}
			value = opt
		}
		if f.Key == "status" {
			t.Status = model.Status(value)
		} else {
			*d.stringField(f.Key) = value
		}
	default:
		if f.Key == "title" {
			t.Title = value
		} else {
			*d.stringField(f.Key) = value
		}
	}
	d.changed[f.Key] = true
	return nil
}

func (d *Draft) stringField(key string) *string {
	t := &d.task
	switch key {
	case "platform":
		return &t.Platform
	case "contentType":
		return &t.ContentType
	case "campaign":
		return &t.Campaign
	case "caption":
		return &t.Caption
	case "postUrl":
		return &t.PostURL
	case "url":
		return &t.URL
	case "videourl":
		return &t.VideoURL
	case "comments":
		return &t.Comments
	case "title":
		return &t.Title
	}
	panic("editor: no string field " + key)
}

func dateText(d *model.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}
