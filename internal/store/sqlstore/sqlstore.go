// Package sqlstore is a MySQL-backed store.Repository.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/joshharrison/ganttboard/internal/model"
	"github.com/joshharrison/ganttboard/internal/store"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id          VARCHAR(64)  NOT NULL PRIMARY KEY,
		name        VARCHAR(255) NOT NULL,
		description TEXT,
		start_date  DATE         NOT NULL,
		end_date    DATE         NOT NULL,
		progress    INT          NOT NULL DEFAULT 0,
		status      VARCHAR(32)  NOT NULL,
		priority    VARCHAR(16)  NOT NULL DEFAULT '',
		team_size   INT          NOT NULL DEFAULT 0,
		manager     VARCHAR(128) NOT NULL DEFAULT '',
		budget      INT          NOT NULL DEFAULT 0,
		spent       INT          NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id              VARCHAR(64)  NOT NULL PRIMARY KEY,
		name            VARCHAR(255) NOT NULL,
		project_id      VARCHAR(64)  NOT NULL,
		description     TEXT,
		start_date      DATE         NOT NULL,
		end_date        DATE         NOT NULL,
		progress        INT          NOT NULL DEFAULT 0,
		assignee        VARCHAR(128) NOT NULL DEFAULT '',
		priority        VARCHAR(16)  NOT NULL,
		status          VARCHAR(32)  NOT NULL,
		critical        BOOLEAN      NOT NULL DEFAULT FALSE,
		tags            TEXT,
		estimated_hours INT          NOT NULL DEFAULT 0,
		completed_hours INT          NOT NULL DEFAULT 0,
		INDEX idx_tasks_project (project_id)
	)`,
	`CREATE TABLE IF NOT EXISTS task_dependencies (
		task_id    VARCHAR(64) NOT NULL,
		depends_on VARCHAR(64) NOT NULL,
		PRIMARY KEY (task_id, depends_on)
	)`,
	`CREATE TABLE IF NOT EXISTS members (
		id     VARCHAR(64)  NOT NULL PRIMARY KEY,
		name   VARCHAR(255) NOT NULL,
		email  VARCHAR(255) NOT NULL DEFAULT '',
		role   VARCHAR(128) NOT NULL DEFAULT '',
		status VARCHAR(16)  NOT NULL DEFAULT '',
		skills TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS milestones (
		id         VARCHAR(64)  NOT NULL PRIMARY KEY,
		project_id VARCHAR(64)  NOT NULL,
		title      VARCHAR(255) NOT NULL,
		due_date   DATE         NOT NULL,
		completed  BOOLEAN      NOT NULL DEFAULT FALSE,
		INDEX idx_milestones_project (project_id)
	)`,
}

// addedColumns are columns introduced after a table's first release. Migrate
// adds them to tables created before they existed.
var addedColumns = []struct{ table, column, ddl string }{
	{"projects", "spent", "INT NOT NULL DEFAULT 0"},
}

// Store reads projects, tasks and members from MySQL.
type Store struct {
	db *sql.DB
}

// NormalizeDSN parses dsn and forces the options the store relies on:
// DATE columns scanned as time.Time in UTC.
func NormalizeDSN(dsn string) (*mysql.Config, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	return cfg, nil
}

// Open connects to MySQL and verifies the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := NormalizeDSN(dsn)
	if err != nil {
		return nil, err
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("mysql connector: %w", err)
	}
	db := sql.OpenDB(connector)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql at %s: %w", cfg.Addr, err)
	}
	return &Store{db: db}, nil
}

// New wraps an existing handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the tables if they do not exist and adds any missing
// columns to older ones.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	for _, c := range addedColumns {
		var n int
		err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM information_schema.COLUMNS
			WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND COLUMN_NAME = ?`, c.table, c.column).Scan(&n)
		if err != nil {
			return fmt.Errorf("migrate: inspect %s.%s: %w", c.table, c.column, err)
		}
		if n > 0 {
			continue
		}
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", c.table, c.column, c.ddl)); err != nil {
			return fmt.Errorf("migrate: add %s.%s: %w", c.table, c.column, err)
		}
	}
	return nil
}

// Seed upserts every record of ds in one transaction.
func (s *Store) Seed(ctx context.Context, ds store.Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer tx.Rollback()

	for _, p := range ds.Projects {
		_, err := tx.ExecContext(ctx, `REPLACE INTO projects
			(id, name, description, start_date, end_date, progress, status, priority, team_size, manager, budget, spent)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.Name, p.Description, p.Start.Time, p.End.Time, p.Progress, string(p.Status),
			string(p.Priority), p.TeamSize, p.Manager, p.Budget, p.Spent)
		if err != nil {
			return fmt.Errorf("seed project %s: %w", p.ID, err)
		}
	}
	for _, t := range ds.Tasks {
		_, err := tx.ExecContext(ctx, `REPLACE INTO tasks
			(id, name, project_id, description, start_date, end_date, progress, assignee, priority, status,
			 critical, tags, estimated_hours, completed_hours)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Name, t.ProjectID, t.Description, t.Start.Time, t.End.Time, t.Progress, t.Assignee,
			string(t.Priority), string(t.Status), t.Critical, strings.Join(t.Tags, ","), t.EstimatedHours, t.CompletedHours)
		if err != nil {
			return fmt.Errorf("seed task %s: %w", t.ID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM task_dependencies WHERE task_id = ?`, t.ID); err != nil {
			return fmt.Errorf("seed task %s deps: %w", t.ID, err)
		}
		for _, dep := range t.DependsOn() {
			if _, err := tx.ExecContext(ctx, `INSERT INTO task_dependencies (task_id, depends_on) VALUES (?, ?)`, t.ID, dep); err != nil {
				return fmt.Errorf("seed task %s dep %s: %w", t.ID, dep, err)
			}
		}
	}
	for _, m := range ds.Members {
		_, err := tx.ExecContext(ctx, `REPLACE INTO members (id, name, email, role, status, skills) VALUES (?, ?, ?, ?, ?, ?)`,
			m.ID, m.Name, m.Email, m.Role, string(m.Status), strings.Join(m.Skills, ","))
		if err != nil {
			return fmt.Errorf("seed member %s: %w", m.ID, err)
		}
	}
	for _, m := range ds.Milestones {
		_, err := tx.ExecContext(ctx, `REPLACE INTO milestones (id, project_id, title, due_date, completed) VALUES (?, ?, ?, ?, ?)`,
			m.ID, m.ProjectID, m.Title, m.Due.Time, m.Completed)
		if err != nil {
			return fmt.Errorf("seed milestone %s: %w", m.ID, err)
		}
	}
	return tx.Commit()
}

const projectColumns = `id, name, COALESCE(description, ''), start_date, end_date, progress, status, priority, team_size, manager, budget, spent`

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (model.Project, error) {
	var (
		p          model.Project
		start, end time.Time
		status     string
		priority   string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &start, &end, &p.Progress, &status, &priority,
		&p.TeamSize, &p.Manager, &p.Budget, &p.Spent); err != nil {
		return model.Project{}, err
	}
	p.Start, p.End = model.DateOf(start), model.DateOf(end)
	p.Status, p.Priority = model.ProjectStatus(status), model.Priority(priority)
	return p, nil
}

func (s *Store) ListProjects(ctx context.Context) ([]model.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY start_date, id`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) GetProject(ctx context.Context, id string) (model.Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Project{}, fmt.Errorf("project %s: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return model.Project{}, fmt.Errorf("get project %s: %w", id, err)
	}
	return p, nil
}

func (s *Store) ListTasks(ctx context.Context) ([]model.Task, error) {
	deps, err := s.dependencies(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT t.id, t.name, t.project_id, COALESCE(p.name, ''),
		COALESCE(t.description, ''), t.start_date, t.end_date, t.progress, t.assignee, t.priority, t.status,
		t.critical, COALESCE(t.tags, ''), t.estimated_hours, t.completed_hours
		FROM tasks t LEFT JOIN projects p ON p.id = t.project_id
		ORDER BY t.project_id, t.start_date, t.id`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var out []model.Task
	for rows.Next() {
		var (
			t                          model.Task
			start, end                 time.Time
			priority, status, tagsList string
		)
		if err := rows.Scan(&t.ID, &t.Name, &t.ProjectID, &t.Project, &t.Description, &start, &end, &t.Progress,
			&t.Assignee, &priority, &status, &t.Critical, &tagsList, &t.EstimatedHours, &t.CompletedHours); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		t.Start, t.End = model.DateOf(start), model.DateOf(end)
		t.Priority, t.Status = model.Priority(priority), model.Status(status)
		t.Tags = splitList(tagsList)
		t.Dependencies = deps[t.ID]
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) dependencies(ctx context.Context) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT task_id, depends_on FROM task_dependencies ORDER BY task_id, depends_on`)
	if err != nil {
		return nil, fmt.Errorf("list dependencies: %w", err)
	}
	defer rows.Close()

	deps := make(map[string][]string)
	for rows.Next() {
		var taskID, dependsOn string
		if err := rows.Scan(&taskID, &dependsOn); err != nil {
			return nil, fmt.Errorf("scan dependency: %w", err)
		}
		deps[taskID] = append(deps[taskID], dependsOn)
	}
	return deps, rows.Err()
}

func (s *Store) ListMembers(ctx context.Context) ([]model.Member, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, email, role, status, COALESCE(skills, '') FROM members ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var out []model.Member
	for rows.Next() {
		var (
			m              model.Member
			status, skills string
		)
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Role, &status, &skills); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		m.Status = model.MemberStatus(status)
		m.Skills = splitList(skills)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) ListMilestones(ctx context.Context) ([]model.Milestone, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, project_id, title, due_date, completed FROM milestones
		ORDER BY project_id, due_date, id`)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	defer rows.Close()

	var out []model.Milestone
	for rows.Next() {
		var (
			m   model.Milestone
			due time.Time
		)
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.Title, &due, &m.Completed); err != nil {
			return nil, fmt.Errorf("scan milestone: %w", err)
		}
		m.Due = model.DateOf(due)
		out = append(out, m)
	}
	return out, rows.Err()
}

// splitList splits a comma-separated column, dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

var _ store.Repository = (*Store)(nil)
