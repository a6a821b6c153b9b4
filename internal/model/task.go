package model

import "time"

// Status is the approval state of a planned post. It drives the colour a task
// is drawn with on the calendar.
type Status string

const (
	StatusNotReady           Status = "Not Ready"
	StatusWaitingForApproval Status = "Waiting for Approval"
	StatusCorrection         Status = "Correction"
	StatusApproved           Status = "Approved"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{
	StatusNotReady,
	StatusWaitingForApproval,
	StatusCorrection,
	StatusApproved,
}

// DefaultStatus is assigned to tasks created without one.
const DefaultStatus = StatusNotReady

func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

func (s Status) String() string { return string(s) }

// Task is a single content-calendar entry.
//
// The id is assigned by the API on creation and never changes afterwards. The
// JSON key is "_id" to stay wire compatible with existing planner clients.
type Task struct {
	ID          string    `json:"_id,omitempty"`
	Title       string    `json:"title"`
	Start       *Date     `json:"start,omitempty"`
	End         *Date     `json:"end,omitempty"`
	Status      Status    `json:"status,omitempty"`
	Platform    string    `json:"platform,omitempty"`
	ContentType string    `json:"contentType,omitempty"`
	Campaign    string    `json:"campaign,omitempty"`
	Caption     string    `json:"caption,omitempty"`
	PostURL     string    `json:"postUrl,omitempty"`
	URL         string    `json:"url,omitempty"`
	VideoURL    string    `json:"videourl,omitempty"`
	Comments    string    `json:"comments,omitempty"`
	CreatedAt   time.Time `json:"createdAt,omitzero"`
	UpdatedAt   time.Time `json:"updatedAt,omitzero"`
}

// Clone returns a copy that shares no pointers with t.
func (t Task) Clone() Task {
	out := t
	if t.Start != nil {
		d := *t.Start
		out.Start = &d
	}
	if t.End != nil {
		d := *t.End
		out.End = &d
	}
	return out
}

// Covers reports whether the task is shown on day. End is exclusive, the way
// day-grid calendars treat all-day ranges; a task without end covers only its
// start day.
func (t Task) Covers(day Date) bool {
	if t.Start == nil {
		return false
	}
	if day.Before(t.Start.Time) {
		return false
	}
	if t.End == nil || !t.End.After(t.Start.Time) {
		return day.Equal(t.Start.Time)
	}
	return day.Before(t.End.Time)
}
