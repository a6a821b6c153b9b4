package editor

import (
	"strings"

	"content-planner/internal/model"
)

type Kind int

const (
	KindText Kind = iota
	KindSelect
	KindDate
	KindTextarea
)

func (k Kind) String() string {
	switch k {
	case KindSelect:
		return "select"
	case KindDate:
		return "date"
	case KindTextarea:
		return "textarea"
	default:
		return "text"
	}
}

// Field describes one editable task field.
type Field struct {
	Key     string
	Label   string
	Kind    Kind
	Options []string
	// Required fields cannot be set to an empty value.
	Required bool
}

// Platforms offered by the platform select.
var Platforms = []string{"Instagram", "Facebook", "LinkedIn"}

// Fields lists every editable field in display order. Keys match the JSON
// names of model.Task.
var Fields = []Field{
	{Key: "title", Label: "Title", Kind: KindText, Required: true},
	{Key: "start", Label: "Start", Kind: KindDate, Required: true},
	{Key: "end", Label: "End", Kind: KindDate},
	{Key: "status", Label: "Status", Kind: KindSelect, Options: statusOptions(), Required: true},
	{Key: "platform", Label: "Platform", Kind: KindSelect, Options: Platforms},
	{Key: "contentType", Label: "Content Type", Kind: KindText},
	{Key: "campaign", Label: "Campaign", Kind: KindText},
	{Key: "caption", Label: "Caption", Kind: KindTextarea},
	{Key: "postUrl", Label: "Image URL", Kind: KindText},
	{Key: "url", Label: "Post URL", Kind: KindText},
	{Key: "videourl", Label: "Video URL", Kind: KindText},
	{Key: "comments", Label: "Comments", Kind: KindTextarea},
}

func statusOptions() []string {
	out := make([]string, len(model.Statuses))
	for i, s := range model.Statuses {
		out[i] = string(s)
	}
	return out
}

// FieldByKey finds a field by key or label, ignoring case and spaces.
func FieldByKey(key string) (Field, bool) {
	k := normalizeKey(key)
	for _, f := range Fields {
		if normalizeKey(f.Key) == k || normalizeKey(f.Label) == k {
			return f, true
		}
	}
	return Field{}, false
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", ""))
}

// option returns the canonical spelling of v among f.Options.
func (f Field) option(v string) (string, bool) {
	for _, o := range f.Options {
		if strings.EqualFold(o, v) {
			return o, true
		}
	}
	return "", false
}
