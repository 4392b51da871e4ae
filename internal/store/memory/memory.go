package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/joshharrison/ganttboard/internal/model"
	"github.com/joshharrison/ganttboard/internal/store"
)

// Store is an in-memory Repository. It hands out copies so callers can
// never reach the backing slices.
type Store struct {
	mu       sync.RWMutex
	projects []model.Project
	tasks    []model.Task
	members  []model.Member
	marks    []model.Milestone
}

// New creates a Store holding a copy of ds.
func New(ds store.Dataset) *Store {
	s := &Store{}
	s.Replace(ds)
	return s
}

// NewFixtures creates a Store seeded with the built-in demo data.
func NewFixtures() *Store {
	return New(store.FixtureDataset())
}

// Replace swaps the whole dataset.
func (s *Store) Replace(ds store.Dataset) {
	projects := append([]model.Project(nil), ds.Projects...)
	tasks := model.CloneTasks(ds.Tasks)
	members := make([]model.Member, len(ds.Members))
	for i, m := range ds.Members {
		members[i] = m.Clone()
	}

	marks := append([]model.Milestone(nil), ds.Milestones...)

	s.mu.Lock()
	s.projects, s.tasks, s.members, s.marks = projects, tasks, members, marks
	s.mu.Unlock()
}

func (s *Store) ListProjects(ctx context.Context) ([]model.Project, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Project(nil), s.projects...), nil
}

func (s *Store) GetProject(ctx context.Context, id string) (model.Project, error) {
	if err := ctx.Err(); err != nil {
		return model.Project{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.projects {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Project{}, fmt.Errorf("project %s: %w", id, store.ErrNotFound)
}

func (s *Store) ListTasks(ctx context.Context) ([]model.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CloneTasks(s.tasks), nil
}

func (s *Store) ListMembers(ctx context.Context) ([]model.Member, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Member, len(s.members))
	for i, m := range s.members {
		out[i] = m.Clone()
	}
	return out, nil
}

func (s *Store) ListMilestones(ctx context.Context) ([]model.Milestone, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Milestone(nil), s.marks...), nil
}

var _ store.Repository = (*Store)(nil)
