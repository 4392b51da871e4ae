package gantt

import (
	"math"
	"testing"

	"github.com/joshharrison/ganttboard/internal/model"
)

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 0.01 {
		t.Errorf("%s: expected %.2f, got %.4f", name, want, got)
	}
}

func TestPosition_ReferenceExample(t *testing.T) {
	w := DefaultWindow()
	p := w.Position(model.MustDate("2024-01-08"), model.MustDate("2024-01-12"))
	approx(t, "offset", p.OffsetPct, 23.33)
	approx(t, "width", p.WidthPct, 13.33)
}

func TestPosition_InsideWindowStaysInBounds(t *testing.T) {
	w := DefaultWindow()
	for _, tc := range [][2]string{
		{"2024-01-01", "2024-01-31"},
		{"2024-01-01", "2024-01-01"},
		{"2024-01-15", "2024-01-25"},
		{"2024-01-30", "2024-01-31"},
	} {
		p := w.Position(model.MustDate(tc[0]), model.MustDate(tc[1]))
		if p.OffsetPct < 0 {
			t.Errorf("%v: negative offset %.2f", tc, p.OffsetPct)
		}
		if p.OffsetPct+p.WidthPct > 100+1e-9 {
			t.Errorf("%v: offset+width %.2f exceeds 100", tc, p.OffsetPct+p.WidthPct)
		}
	}
}

func TestPosition_NoClamping(t *testing.T) {
	w := DefaultWindow()

	before := w.Position(model.MustDate("2023-12-15"), model.MustDate("2023-12-20"))
	if before.OffsetPct >= 0 {
		t.Errorf("expected negative offset for range before window, got %.2f", before.OffsetPct)
	}

	after := w.Position(model.MustDate("2024-02-10"), model.MustDate("2024-02-12"))
	if after.OffsetPct <= 100 {
		t.Errorf("expected offset > 100 for range after window, got %.2f", after.OffsetPct)
	}

	inverted := w.Position(model.MustDate("2024-01-12"), model.MustDate("2024-01-08"))
	approx(t, "inverted width", inverted.WidthPct, -13.33)

	point := w.Position(model.MustDate("2024-01-10"), model.MustDate("2024-01-10"))
	if point.WidthPct != 0 {
		t.Errorf("expected zero width for zero-length range, got %.2f", point.WidthPct)
	}
}

func TestPosition_ZeroLengthWindow(t *testing.T) {
	d := model.MustDate("2024-01-10")
	w := Window{Start: d, End: d}
	if p := w.Position(d, d.AddDays(3)); p != (Position{}) {
		t.Errorf("expected zero position, got %+v", p)
	}
}

func TestTicks(t *testing.T) {
	ticks := DefaultWindow().Ticks(2)
	if len(ticks) != 16 {
		t.Fatalf("expected 16 ticks, got %d", len(ticks))
	}
	if ticks[0].String() != "2024-01-01" || ticks[15].String() != "2024-01-31" {
		t.Errorf("unexpected tick bounds %s..%s", ticks[0], ticks[15])
	}
	if n := len(DefaultWindow().Ticks(0)); n != 31 {
		t.Errorf("expected step 0 to act as 1 (31 ticks), got %d", n)
	}
}

func TestWindowFor(t *testing.T) {
	anchor := model.MustDate("2024-02-14")
	cases := []struct {
		r          TimeRange
		start, end string
	}{
		{RangeWeek, "2024-02-14", "2024-02-20"},
		{RangeMonth, "2024-02-01", "2024-02-29"},
		{RangeQuarter, "2024-01-01", "2024-03-31"},
		{RangeYear, "2024-01-01", "2024-12-31"},
	}
	for _, tc := range cases {
		w, err := WindowFor(tc.r, anchor)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.r, err)
		}
		if w.Start.String() != tc.start || w.End.String() != tc.end {
			t.Errorf("%s: expected %s..%s, got %s..%s", tc.r, tc.start, tc.end, w.Start, w.End)
		}
	}

	if _, err := WindowFor("fortnight", anchor); err == nil {
		t.Error("expected error for unknown range")
	}
}

func TestWindowFor_MonthMatchesDefault(t *testing.T) {
	w, err := WindowFor(RangeMonth, model.MustDate("2024-01-20"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w != DefaultWindow() {
		t.Errorf("expected January window %v, got %v", DefaultWindow(), w)
	}
}

func TestParseTimeRange(t *testing.T) {
	if r, err := ParseTimeRange(" Quarter "); err != nil || r != RangeQuarter {
		t.Errorf("expected quarter, got %q (%v)", r, err)
	}
	if r, err := ParseTimeRange(""); err != nil || r != "" {
		t.Errorf("expected empty range to stay empty, got %q (%v)", r, err)
	}
	if _, err := ParseTimeRange("decade"); err == nil {
		t.Error("expected error for decade")
	}
}

func TestContains(t *testing.T) {
	w := DefaultWindow()
	if !w.Contains(model.MustDate("2024-01-31")) {
		t.Error("end bound should be contained")
	}
	if w.Contains(model.MustDate("2024-02-01")) {
		t.Error("2024-02-01 should not be contained")
	}
}
