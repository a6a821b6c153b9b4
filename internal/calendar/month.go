package calendar

import (
	"fmt"
	"strings"
	"time"

	"content-planner/internal/model"
)

// Month is one page of the calendar.
type Month struct {
	Year      int
	Month     time.Month
	WeekStart time.Weekday
}

func NewMonth(year int, month time.Month, weekStart time.Weekday) Month {
	// Normalise overflow such as month 13.
	first := model.NewDate(year, month, 1)
	return Month{Year: first.Year(), Month: first.Month(), WeekStart: weekStart}
}

// MonthOf returns the month containing day.
func MonthOf(day model.Date, weekStart time.Weekday) Month {
	return NewMonth(day.Year(), day.Month(), weekStart)
}

// ParseMonth reads "YYYY-MM".
func ParseMonth(s string, weekStart time.Weekday) (Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: want YYYY-MM", s)
	}
	return NewMonth(t.Year(), t.Month(), weekStart), nil
}

// ParseWeekday accepts English day names ("sunday", "Mon").
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if s == name || (len(s) >= 3 && strings.HasPrefix(name, s)) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("invalid weekday %q", s)
}

func (m Month) First() model.Date { return model.NewDate(m.Year, m.Month, 1) }

// Last is the last day of the month.
func (m Month) Last() model.Date { return model.NewDate(m.Year, m.Month+1, 0) }

func (m Month) Days() int { return m.Last().Day() }

func (m Month) Contains(day model.Date) bool {
	return day.Year() == m.Year && day.Month() == m.Month
}

func (m Month) Next() Month { return NewMonth(m.Year, m.Month+1, m.WeekStart) }

func (m Month) Prev() Month { return NewMonth(m.Year, m.Month-1, m.WeekStart) }

func (m Month) String() string { return fmt.Sprintf("%s %d", m.Month, m.Year) }

// Weeks lays the month out in full weeks starting on WeekStart. Days of the
// neighbouring months fill the first and last rows.
func (m Month) Weeks() [][]model.Date {
	first := m.First()
	offset := (int(first.Weekday()) - int(m.WeekStart) + 7) % 7
	day := first.AddDays(-offset)
	last := m.Last()

	var weeks [][]model.Date
	for !day.After(last.Time) {
		week := make([]model.Date, 7)
		for i := range week {
			week[i] = day
			day = day.AddDays(1)
		}
		weeks = append(weeks, week)
	}
	return weeks
}

// Weekdays returns the column headings in grid order.
func (m Month) Weekdays() []time.Weekday {
	out := make([]time.Weekday, 7)
	for i := range out {
		out[i] = time.Weekday((int(m.WeekStart) + i) % 7)
	}
	return out
}
