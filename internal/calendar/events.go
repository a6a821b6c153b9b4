package calendar

import "content-planner/internal/model"

// Event is a task as the month grid sees it.
type Event struct {
	ID     string
	Title  string
	Start  model.Date
	End    model.Date // zero when the task has no end
	Status model.Status
	Color  Color
}

// Events projects tasks onto calendar events. Tasks without a start date have
// nowhere to go on the grid and are skipped.
func Events(tasks []model.Task) []Event {
	out := make([]Event, 0, len(tasks))
	for _, t := range tasks {
		if t.Start == nil || t.Start.IsZero() {
			continue
		}
		ev := Event{
			ID:     t.ID,
			Title:  t.Title,
			Start:  *t.Start,
			Status: t.Status,
			Color:  StatusColor(t.Status),
		}
		if t.End != nil {
			ev.End = *t.End
		}
		out = append(out, ev)
	}
	return out
}

// Covers reports whether ev is drawn on day. End is exclusive.
func (ev Event) Covers(day model.Date) bool {
	t := model.Task{Start: &ev.Start}
	if !ev.End.IsZero() {
		t.End = &ev.End
	}
	return t.Covers(day)
}

// On returns the events covering day, in input order.
func On(events []Event, day model.Date) []Event {
	var out []Event
	for _, ev := range events {
		if ev.Covers(day) {
			out = append(out, ev)
		}
	}
	return out
}
