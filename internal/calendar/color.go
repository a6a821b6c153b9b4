package calendar

import "content-planner/internal/model"

// Color is the display colour of an event.
type Color string

const (
	Orange Color = "orange"
	Blue   Color = "blue"
	Red    Color = "red"
	Green  Color = "green"
	Gray   Color = "gray"
)

var statusColors = map[model.Status]Color{
	model.StatusNotReady:           Orange,
	model.StatusWaitingForApproval: Blue,
	model.StatusCorrection:         Red,
	model.StatusApproved:           Green,
}

// StatusColor maps a task status to its colour. Unknown or empty statuses are
// gray.
func StatusColor(s model.Status) Color {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return Gray
}

// ANSI is the terminal escape sequence for c. Orange has no basic ANSI code,
// so it uses the 256-colour palette.
func (c Color) ANSI() string {
	switch c {
	case Orange:
		return "\x1b[38;5;208m"
	case Blue:
		return "\x1b[34m"
	case Red:
		return "\x1b[31m"
	case Green:
		return "\x1b[32m"
	default:
		return "\x1b[90m"
	}
}

const ansiReset = "\x1b[0m"

// Paint wraps s in c's escape sequence.
func (c Color) Paint(s string) string {
	return c.ANSI() + s + ansiReset
}
