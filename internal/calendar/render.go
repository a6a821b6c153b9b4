package calendar

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"content-planner/internal/model"
)

type RenderOptions struct {
	// Color paints event titles with their status colour.
	Color bool
	// CellWidth is the width of one day column, separator included.
	CellWidth int
	// MaxPerDay limits the titles listed in one cell; the rest collapse into
	// "+N more".
	MaxPerDay int
	// Today gets its day number bracketed when it falls in the month.
	Today model.Date
}

func (o RenderOptions) withDefaults() RenderOptions {
	if o.CellWidth < 6 {
		o.CellWidth = 14
	}
	if o.MaxPerDay <= 0 {
		o.MaxPerDay = 3
	}
	return o
}

// Render writes m as a text grid. Every event is listed on each day it
// covers; days outside the month stay empty.
func Render(w io.Writer, m Month, events []Event, opts RenderOptions) error {
	opts = opts.withDefaults()
	width := opts.CellWidth * 7
	var b strings.Builder

	title := m.String()
	if pad := (width - len(title)) / 2; pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	b.WriteString(title)
	b.WriteByte('\n')

	for _, d := range m.Weekdays() {
		b.WriteString(cell(d.String()[:3], opts.CellWidth))
	}
	b.WriteByte('\n')
	rule := strings.Repeat("-", width)
	b.WriteString(rule)
	b.WriteByte('\n')

	for _, week := range m.Weeks() {
		cells := make([][]string, 7)
		rows := 0
		for i, day := range week {
			if !m.Contains(day) {
				continue
			}
			cells[i] = dayLines(day, On(events, day), opts)
			rows = max(rows, len(cells[i]))
		}
		for r := 0; r < rows; r++ {
			for i := range week {
				if r < len(cells[i]) {
					b.WriteString(cells[i][r])
				} else {
					b.WriteString(strings.Repeat(" ", opts.CellWidth))
				}
			}
			b.WriteByte('\n')
		}
		b.WriteString(rule)
		b.WriteByte('\n')
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// dayLines returns the padded lines of one day cell.
func dayLines(day model.Date, events []Event, opts RenderOptions) []string {
	num := fmt.Sprintf("%2d", day.Day())
	if !opts.Today.IsZero() && day.Equal(opts.Today.Time) {
		num = "[" + strings.TrimSpace(num) + "]"
	}
	lines := []string{cell(num, opts.CellWidth)}

	shown := events
	if len(shown) > opts.MaxPerDay {
		shown = shown[:opts.MaxPerDay-1]
	}
	for _, ev := range shown {
		text := cell(truncate(ev.Title, opts.CellWidth-1), opts.CellWidth)
		if opts.Color {
			text = ev.Color.Paint(text)
		}
		lines = append(lines, text)
	}
	if hidden := len(events) - len(shown); hidden > 0 {
		lines = append(lines, cell(fmt.Sprintf("+%d more", hidden), opts.CellWidth))
	}
	return lines
}

// cell pads s to width runes.
func cell(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

// List writes one line per task: start day, status, title, platform, id.
func List(w io.Writer, tasks []model.Task, color bool) error {
	if len(tasks) == 0 {
		_, err := fmt.Fprintln(w, "no tasks")
		return err
	}
	for _, t := range tasks {
		start := "----------"
		if t.Start != nil {
			start = t.Start.String()
		}
		status := fmt.Sprintf("[%s]", statusLabel(t.Status))
		if color {
			status = StatusColor(t.Status).Paint(status)
		}
		line := fmt.Sprintf("%s  %s %s", start, status, t.Title)
		if t.Platform != "" {
			line += " (" + t.Platform + ")"
		}
		if _, err := fmt.Fprintf(w, "%s  %s\n", line, t.ID); err != nil {
			return err
		}
	}
	return nil
}

func statusLabel(s model.Status) string {
	if s == "" {
		return "-"
	}
	return string(s)
}

// Detail writes every field of t, labelling link values by host.
func Detail(w io.Writer, t model.Task, color bool) error {
	status := statusLabel(t.Status)
	if color {
		status = StatusColor(t.Status).Paint(status)
	}

	rows := [][2]string{
		{"ID", t.ID},
		{"Title", t.Title},
		{"Start", dateLabel(t.Start)},
		{"End", dateLabel(t.End)},
		{"Status", status},
		{"Platform", t.Platform},
		{"Content Type", t.ContentType},
		{"Campaign", t.Campaign},
		{"Caption", t.Caption},
		{"Image URL", linkText(t.PostURL)},
		{"Post URL", linkText(t.URL)},
		{"Video URL", linkText(t.VideoURL)},
		{"Comments", t.Comments},
	}

	var b strings.Builder
	for _, r := range rows {
		v := r[1]
		if v == "" {
			v = "-"
		}
		fmt.Fprintf(&b, "%-13s %s\n", r[0]+":", v)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func dateLabel(d *model.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

// linkText shows a link as "label <href>", anything else as is.
func linkText(v string) string {
	label, ok := LinkLabel(v)
	if !ok {
		return v
	}
	return fmt.Sprintf("%s <%s>", label, Href(v))
}
