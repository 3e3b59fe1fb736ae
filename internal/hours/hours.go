// Package hours parses and evaluates daily active windows of the form
// "HH:MM-HH:MM". Windows are shared by auto-reply rules and office-hours
// configuration.
package hours

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Window is a daily time-of-day range. Start is inclusive, End exclusive.
// When Start > End the window wraps midnight ("22:00-06:00" covers 23:30
// and 01:00 but not 12:00). Start == End is a zero-length window that
// matches nothing.
type Window struct {
	Start int // minutes since midnight
	End   int
}

// Parse parses "HH:MM-HH:MM" in 24-hour time into a Window.
func Parse(s string) (Window, error) {
	start, end, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return Window{}, fmt.Errorf("hours: %q: want HH:MM-HH:MM", s)
	}
	startMin, err := parseClock(start)
	if err != nil {
		return Window{}, fmt.Errorf("hours: %q: %w", s, err)
	}
	endMin, err := parseClock(end)
	if err != nil {
		return Window{}, fmt.Errorf("hours: %q: %w", s, err)
	}
	return Window{Start: startMin, End: endMin}, nil
}

// Contains reports whether the instant's local time-of-day falls inside the
// window.
func (w Window) Contains(t time.Time) bool {
	return w.ContainsMinute(t.Hour()*60 + t.Minute())
}

// ContainsMinute reports whether a minute-of-day falls inside the window.
func (w Window) ContainsMinute(m int) bool {
	if w.Start == w.End {
		return false
	}
	if w.Start < w.End {
		return m >= w.Start && m < w.End
	}
	// Wraps midnight.
	return m >= w.Start || m < w.End
}

// String renders the window back to "HH:MM-HH:MM".
func (w Window) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", w.Start/60, w.Start%60, w.End/60, w.End%60)
}

// parseClock parses "HH:MM" into minutes since midnight.
func parseClock(s string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("bad clock %q", s)
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("bad hour %q", h)
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("bad minute %q", m)
	}
	return hour*60 + minute, nil
}
