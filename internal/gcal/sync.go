package gcal

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	plannercal "content-planner/internal/calendar"
	"content-planner/internal/model"
)

// TaskIDProperty is the private extended property linking an event to its task.
const TaskIDProperty = "planner_task_id"

// ErrNoStart is returned for tasks that have no day to sit on.
var ErrNoStart = errors.New("task has no start date")

// Google's fixed event colour ids.
var colorIDs = map[plannercal.Color]string{
	plannercal.Orange: "6",  // Tangerine
	plannercal.Blue:   "9",  // Blueberry
	plannercal.Red:    "11", // Tomato
	plannercal.Green:  "10", // Basil
	plannercal.Gray:   "8",  // Graphite
}

// EventAPI is the slice of the Calendar API that Sync needs.
type EventAPI interface {
	FindByTaskID(ctx context.Context, taskID string) (*calendar.Event, error)
	Insert(ctx context.Context, ev *calendar.Event) (*calendar.Event, error)
	Patch(ctx context.Context, eventID string, patch *calendar.Event) (*calendar.Event, error)
}

// CalendarClient is EventAPI over one Google calendar.
type CalendarClient struct {
	srv        *calendar.Service
	calendarID string
}

// Open finds the calendar whose summary is name. Extra options (an endpoint,
// for instance) go to the service constructor.
func Open(ctx context.Context, httpClient *http.Client, name string, opts ...option.ClientOption) (*CalendarClient, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	srv, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Calendar client: %w", err)
	}

	list, err := srv.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve calendar list: %w", err)
	}
	for _, item := range list.Items {
		if item.Summary == name {
			return &CalendarClient{srv: srv, calendarID: item.Id}, nil
		}
	}
	return nil, fmt.Errorf("calendar '%s' not found", name)
}

func (c *CalendarClient) FindByTaskID(ctx context.Context, taskID string) (*calendar.Event, error) {
	events, err := c.srv.Events.List(c.calendarID).
		PrivateExtendedProperty(TaskIDProperty + "=" + taskID).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	if len(events.Items) > 0 {
		return events.Items[0], nil
	}
	return nil, nil
}

func (c *CalendarClient) Insert(ctx context.Context, ev *calendar.Event) (*calendar.Event, error) {
	return c.srv.Events.Insert(c.calendarID, ev).Context(ctx).Do()
}

func (c *CalendarClient) Patch(ctx context.Context, eventID string, patch *calendar.Event) (*calendar.Event, error) {
	return c.srv.Events.Patch(c.calendarID, eventID, patch).Context(ctx).Do()
}

// ToEvent converts a task into an all-day event. The task end is exclusive,
// which is also how the Calendar API reads all-day end dates.
func ToEvent(t model.Task) (*calendar.Event, error) {
	if t.Start == nil || t.Start.IsZero() {
		return nil, ErrNoStart
	}
	end := t.Start.AddDays(1)
	if t.End != nil && t.End.After(t.Start.Time) {
		end = *t.End
	}

	return &calendar.Event{
		Summary:     t.Title,
		Description: description(t),
		Start:       &calendar.EventDateTime{Date: t.Start.String()},
		End:         &calendar.EventDateTime{Date: end.String()},
		ColorId:     colorIDs[plannercal.StatusColor(t.Status)],
		ExtendedProperties: &calendar.EventExtendedProperties{
			Private: map[string]string{TaskIDProperty: t.ID},
		},
	}, nil
}

func description(t model.Task) string {
	var lines []string
	add := func(label, v string) {
		if v != "" {
			lines = append(lines, label+": "+v)
		}
	}
	add("Status", string(t.Status))
	add("Platform", t.Platform)
	add("Content type", t.ContentType)
	add("Campaign", t.Campaign)
	add("Image", linkOrEmpty(t.PostURL))
	add("Post", linkOrEmpty(t.URL))
	add("Video", linkOrEmpty(t.VideoURL))
	if t.Caption != "" {
		lines = append(lines, "", t.Caption)
	}
	if t.Comments != "" {
		lines = append(lines, "", "Comments:", t.Comments)
	}
	return strings.Join(lines, "\n")
}

func linkOrEmpty(v string) string {
	if _, ok := plannercal.LinkLabel(v); ok {
		return plannercal.Href(v)
	}
	return v
}

// needsPatch returns the fields of target that differ from existing, or nil
// when the event is current.
func needsPatch(existing, target *calendar.Event) *calendar.Event {
	patch := &calendar.Event{}
	changed := false

	if existing.Summary != target.Summary {
		patch.Summary = target.Summary
		changed = true
	}
	if existing.Description != target.Description {
		patch.Description = target.Description
		changed = true
	}
	if existing.ColorId != target.ColorId {
		patch.ColorId = target.ColorId
		changed = true
	}
	if day(existing.Start) != day(target.Start) || day(existing.End) != day(target.End) {
		patch.Start = target.Start
		patch.End = target.End
		changed = true
	}

	if !changed {
		return nil
	}
	return patch
}

func day(dt *calendar.EventDateTime) string {
	if dt == nil {
		return ""
	}
	return dt.Date
}

type Result struct {
	Created   int
	Updated   int
	Unchanged int
	Skipped   int
	Failed    int
}

func (r Result) String() string {
	return fmt.Sprintf("%d created, %d updated, %d unchanged, %d skipped, %d failed",
		r.Created, r.Updated, r.Unchanged, r.Skipped, r.Failed)
}

// Sync mirrors tasks into the calendar. Undated tasks are skipped; a failure
// on one task is logged and counted, and the rest carry on. The returned error
// joins every failure.
func Sync(ctx context.Context, api EventAPI, tasks []model.Task) (Result, error) {
	var res Result
	var errs []error

	for _, t := range tasks {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		target, err := ToEvent(t)
		if errors.Is(err, ErrNoStart) {
			res.Skipped++
			continue
		}

		existing, err := api.FindByTaskID(ctx, t.ID)
		if err != nil {
			res.Failed++
			errs = append(errs, fmt.Errorf("find event for task %s: %w", t.ID, err))
			log.Printf("[WARN] gcal find task_id=%s: %v", t.ID, err)
			continue
		}

		if existing == nil {
			if _, err := api.Insert(ctx, target); err != nil {
				res.Failed++
				errs = append(errs, fmt.Errorf("insert event for task %s: %w", t.ID, err))
				log.Printf("[WARN] gcal insert task_id=%s: %v", t.ID, err)
				continue
			}
			res.Created++
			continue
		}

		patch := needsPatch(existing, target)
		if patch == nil {
			res.Unchanged++
			continue
		}
		if _, err := api.Patch(ctx, existing.Id, patch); err != nil {
			res.Failed++
			errs = append(errs, fmt.Errorf("patch event for task %s: %w", t.ID, err))
			log.Printf("[WARN] gcal patch task_id=%s: %v", t.ID, err)
			continue
		}
		res.Updated++
	}
	return res, errors.Join(errs...)
}
