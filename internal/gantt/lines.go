package gantt

import "github.com/joshharrison/ganttboard/internal/model"

const (
	// RowHeight is the height of one task row in pixels.
	RowHeight = 64
	// FromAnchorPct and ToAnchorPct are the horizontal line anchors, in
	// percent of the chart width.
	FromAnchorPct = 75.0
	ToAnchorPct   = 25.0
)

// LineStyle is how a dependency line is stroked.
type LineStyle string

const (
	StyleSolid  LineStyle = "solid"
	StyleDashed LineStyle = "dashed"
)

// Line connects a dependency's row to the row of the task that depends on it.
type Line struct {
	FromID   string    `json:"from_id"`
	ToID     string    `json:"to_id"`
	FromRow  int       `json:"from_row"`
	ToRow    int       `json:"to_row"`
	X1       float64   `json:"x1"` // percent
	Y1       float64   `json:"y1"` // pixels
	X2       float64   `json:"x2"`
	Y2       float64   `json:"y2"`
	Critical bool      `json:"critical"`
	Style    LineStyle `json:"style"`
}

// Edge is a dependency that could not be drawn because one end is not in
// the visible list.
type Edge struct {
	FromID string `json:"from_id"`
	ToID   string `json:"to_id"`
}

// RowY is the vertical center of row r.
func RowY(r int) float64 {
	return float64(r*RowHeight) + RowHeight/2
}

// Lines draws one line per distinct dependency whose both ends are visible.
// tasks is the visible list in row order. Dependencies outside it are
// skipped and returned as hidden edges. critical may be nil.
func Lines(tasks []model.Task, critical func(id string) bool) ([]Line, []Edge) {
	if critical == nil {
		critical = func(string) bool { return false }
	}
	rows := make(map[string]int, len(tasks))
	for i, t := range tasks {
		if _, dup := rows[t.ID]; !dup {
			rows[t.ID] = i
		}
	}

	var (
		lines  []Line
		hidden []Edge
	)
	for i, t := range tasks {
		for _, dep := range t.DependsOn() {
			j, ok := rows[dep]
			if !ok {
				hidden = append(hidden, Edge{FromID: dep, ToID: t.ID})
				continue
			}
			l := Line{
				FromID:  dep,
				ToID:    t.ID,
				FromRow: j,
				ToRow:   i,
				X1:      FromAnchorPct,
				Y1:      RowY(j),
				X2:      ToAnchorPct,
				Y2:      RowY(i),
				Style:   StyleDashed,
			}
			if critical(dep) && critical(t.ID) {
				l.Critical = true
				l.Style = StyleSolid
			}
			lines = append(lines, l)
		}
	}
	return lines, hidden
}
