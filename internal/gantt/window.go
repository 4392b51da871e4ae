// Package gantt maps task date ranges onto a timeline window and draws the
// dependency lines between task rows.
package gantt

import (
	"fmt"
	"strings"
	"time"

	"github.com/joshharrison/ganttboard/internal/model"
)

// TimeRange names a timeline window relative to an anchor date.
type TimeRange string

const (
	RangeWeek    TimeRange = "week"
	RangeMonth   TimeRange = "month"
	RangeQuarter TimeRange = "quarter"
	RangeYear    TimeRange = "year"
)

// ParseTimeRange accepts week, month, quarter or year, case-insensitively.
// Empty input stays empty and selects the configured window.
func ParseTimeRange(s string) (TimeRange, error) {
	switch r := TimeRange(strings.ToLower(strings.TrimSpace(s))); r {
	case "", RangeWeek, RangeMonth, RangeQuarter, RangeYear:
		return r, nil
	default:
		return "", fmt.Errorf("unknown time range %q (use week, month, quarter, year)", s)
	}
}

// Window is the visible span of the timeline. Positions are expressed as a
// percentage of End minus Start.
type Window struct {
	Start model.Date `json:"start"`
	End   model.Date `json:"end"`
}

// DefaultWindow is the reference window, 2024-01-01 to 2024-01-31.
func DefaultWindow() Window {
	return Window{Start: model.NewDate(2024, time.January, 1), End: model.NewDate(2024, time.January, 31)}
}

// Days is the window length in days. It is negative for an inverted window.
func (w Window) Days() float64 {
	return w.Start.DaysUntil(w.End)
}

// Position is where a bar sits on the timeline, in percent of the window.
type Position struct {
	OffsetPct float64 `json:"offset_pct"`
	WidthPct  float64 `json:"width_pct"`
}

// Position maps a date range onto the window. Values are not clamped:
// ranges outside the window give negative or >100 offsets and an end
// before start gives a negative width. A zero-length window maps
// everything to the zero Position.
func (w Window) Position(start, end model.Date) Position {
	days := w.Days()
	if days == 0 {
		return Position{}
	}
	return Position{
		OffsetPct: w.Start.DaysUntil(start) / days * 100,
		WidthPct:  start.DaysUntil(end) / days * 100,
	}
}

// Contains reports whether d falls within the window, bounds included.
func (w Window) Contains(d model.Date) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

// Ticks returns the header dates from Start to End, step days apart.
// A step below 1 is treated as 1.
func (w Window) Ticks(step int) []model.Date {
	if step < 1 {
		step = 1
	}
	var out []model.Date
	for d := w.Start; !d.After(w.End); d = d.AddDays(step) {
		out = append(out, d)
	}
	return out
}

// WindowFor resolves a time range around anchor: the seven days starting at
// anchor, or the calendar month, quarter or year containing it.
func WindowFor(r TimeRange, anchor model.Date) (Window, error) {
	y, m, _ := anchor.Date()
	switch r {
	case RangeWeek:
		return Window{Start: anchor, End: anchor.AddDays(6)}, nil
	case RangeMonth, "":
		start := model.NewDate(y, m, 1)
		return Window{Start: start, End: model.DateOf(start.AddDate(0, 1, -1))}, nil
	case RangeQuarter:
		qm := time.Month((int(m)-1)/3*3 + 1)
		start := model.NewDate(y, qm, 1)
		return Window{Start: start, End: model.DateOf(start.AddDate(0, 3, -1))}, nil
	case RangeYear:
		return Window{Start: model.NewDate(y, time.January, 1), End: model.NewDate(y, time.December, 31)}, nil
	default:
		return Window{}, fmt.Errorf("unknown time range %q", r)
	}
}
