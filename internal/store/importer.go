package store

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// IsDashboardExport reports whether data looks like a dashboard JSON export
// rather than a RawDataset file.
func IsDashboardExport(data []byte) bool {
	if !gjson.ValidBytes(data) {
		return false
	}
	return gjson.GetBytes(data, "tasks.0.startDate").Exists() ||
		gjson.GetBytes(data, "tasks.0.dueDate").Exists() ||
		gjson.GetBytes(data, "projects.0.startDate").Exists()
}

// ImportDashboard converts a dashboard export into a Dataset. The export
// uses camelCase keys, display-cased enums ("In Progress"), assignees
// that are either a name or an {id, name} object, and milestones nested
// under their project. Nested milestone ids are prefixed with the project
// id so they stay unique.
func ImportDashboard(data []byte) (Dataset, error) {
	if !gjson.ValidBytes(data) {
		return Dataset{}, fmt.Errorf("invalid JSON")
	}
	doc := gjson.ParseBytes(data)

	var raw RawDataset
	doc.Get("projects").ForEach(func(_, p gjson.Result) bool {
		raw.Projects = append(raw.Projects, RawProject{
			ID:          p.Get("id").String(),
			Name:        p.Get("name").String(),
			Description: p.Get("description").String(),
			StartDate:   p.Get("startDate").String(),
			EndDate:     p.Get("endDate").String(),
			Progress:    int(p.Get("progress").Int()),
			Status:      normalizeProjectStatus(p.Get("status").String()),
			Priority:    normalizeEnum(p.Get("priority").String()),
			TeamSize:    int(firstOf(p, "teamMembers", "team", "teamSize").Int()),
			Manager:     p.Get("manager").String(),
			Budget:      int(p.Get("budget").Int()),
			Spent:       int(p.Get("spent").Int()),
		})
		projectID := p.Get("id").String()
		p.Get("milestones").ForEach(func(_, m gjson.Result) bool {
			raw.Milestones = append(raw.Milestones, RawMilestone{
				ID:        projectID + "-" + m.Get("id").String(),
				ProjectID: projectID,
				Title:     firstOf(m, "title", "name").String(),
				Due:       firstOf(m, "date", "dueDate", "due").String(),
				Completed: m.Get("completed").Bool(),
			})
			return true
		})
		return true
	})

	doc.Get("tasks").ForEach(func(_, t gjson.Result) bool {
		rt := RawTask{
			ID:             t.Get("id").String(),
			Name:           firstOf(t, "name", "title").String(),
			ProjectID:      t.Get("projectId").String(),
			Project:        t.Get("project").String(),
			Description:    t.Get("description").String(),
			StartDate:      firstOf(t, "startDate", "createdDate").String(),
			EndDate:        firstOf(t, "endDate", "dueDate").String(),
			Assignee:       assigneeName(t.Get("assignee")),
			Priority:       normalizeEnum(t.Get("priority").String()),
			Status:         normalizeTaskStatus(t.Get("status").String()),
			Critical:       t.Get("critical").Bool(),
			EstimatedHours: int(t.Get("estimatedHours").Int()),
			CompletedHours: int(t.Get("completedHours").Int()),
		}
		if p := t.Get("progress"); p.Exists() {
			rt.Progress = int(p.Int())
		} else if rt.EstimatedHours > 0 {
			rt.Progress = rt.CompletedHours * 100 / rt.EstimatedHours
		}
		t.Get("dependencies").ForEach(func(_, d gjson.Result) bool {
			rt.Dependencies = append(rt.Dependencies, d.String())
			return true
		})
		t.Get("tags").ForEach(func(_, tag gjson.Result) bool {
			rt.Tags = append(rt.Tags, tag.String())
			return true
		})
		raw.Tasks = append(raw.Tasks, rt)
		return true
	})

	firstOf(doc, "members", "team").ForEach(func(_, m gjson.Result) bool {
		rm := RawMember{
			ID:     m.Get("id").String(),
			Name:   m.Get("name").String(),
			Email:  m.Get("email").String(),
			Role:   m.Get("role").String(),
			Status: normalizeEnum(m.Get("status").String()),
		}
		m.Get("skills").ForEach(func(_, s gjson.Result) bool {
			rm.Skills = append(rm.Skills, s.String())
			return true
		})
		raw.Members = append(raw.Members, rm)
		return true
	})

	// Tasks in the export may reference their project by name only.
	byName := make(map[string]string, len(raw.Projects))
	for _, p := range raw.Projects {
		byName[p.Name] = p.ID
	}
	for i := range raw.Tasks {
		if raw.Tasks[i].ProjectID == "" {
			raw.Tasks[i].ProjectID = byName[raw.Tasks[i].Project]
		}
	}

	return raw.Dataset()
}

func firstOf(r gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if v := r.Get(p); v.Exists() {
			return v
		}
	}
	return gjson.Result{}
}

func assigneeName(a gjson.Result) string {
	if a.IsObject() {
		return a.Get("name").String()
	}
	return a.String()
}

// normalizeEnum maps display values ("In Progress") to wire values
// ("in-progress").
func normalizeEnum(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}

func normalizeTaskStatus(s string) string {
	switch v := normalizeEnum(s); v {
	case "todo", "":
		return "pending"
	case "review":
		return "in-progress"
	default:
		return v
	}
}

func normalizeProjectStatus(s string) string {
	switch v := normalizeEnum(s); v {
	case "":
		return "planning"
	case "active":
		return "in-progress"
	default:
		return v
	}
}
