// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package workspace

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrProjectNotFound   = errors.New("project not found")
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrWorkspaceExists   = errors.New("workspace already exists")
	ErrInvalidPath       = errors.New("invalid path")
	ErrInvalidName       = errors.New("invalid name")
)

// =============================================================================
// TYPES
// =============================================================================

// Project is a source repository registered with workdeck.
type Project struct {
	ID        string
	Name      string
	Path      string
	CreatedAt time.Time
}

// Workspace is a per-branch clone of a project.
type Workspace struct {
	ID        string
	ProjectID string
	Branch    string
	Path      string
	CreatedAt time.Time
}

// Schema is the project/workspace database schema.
const Schema = `
CREATE TABLE IF NOT EXISTS projects (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL UNIQUE,
	path       TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS workspaces (
	id         TEXT PRIMARY KEY,
	project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
	branch     TEXT NOT NULL,
	path       TEXT NOT NULL UNIQUE,
	created_at INTEGER NOT NULL,
	UNIQUE (project_id, branch)
);
CREATE INDEX IF NOT EXISTS idx_workspaces_project ON workspaces(project_id);
`

// =============================================================================
// STORE
// =============================================================================

// Store persists projects and workspaces in SQLite.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if needed) the database at path.
func OpenStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// AddProject registers a project. The path must be an existing directory.
func (s *Store) AddProject(ctx context.Context, name, path string) (Project, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Project{}, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Project{}, fmt.Errorf("%w: %v", ErrInvalidPath, err)
	}
	if !info.IsDir() {
		return Project{}, fmt.Errorf("%w: %s is not a directory", ErrInvalidPath, abs)
	}

	p := Project{
		ID:        uuid.New().String(),
		Name:      name,
		Path:      abs,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO projects (id, name, path, created_at) VALUES (?, ?, ?, ?)",
		p.ID, p.Name, p.Path, p.CreatedAt.Unix())
	if err != nil {
		return Project{}, fmt.Errorf("failed to add project: %w", err)
	}
	return p, nil
}

// Project returns one project by id.
func (s *Store) Project(ctx context.Context, id string) (Project, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, path, created_at FROM projects WHERE id = ?", id)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Project{}, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	return p, err
}

// ListProjects returns all projects ordered by name.
func (s *Store) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, path, created_at FROM projects ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var out []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// RemoveProject deletes a project and its workspace rows.
func (s *Store) RemoveProject(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM workspaces WHERE project_id = ?", id); err != nil {
		return fmt.Errorf("failed to remove workspaces: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to remove project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	return tx.Commit()
}

// AddWorkspace records a workspace that now exists on disk.
func (s *Store) AddWorkspace(ctx context.Context, projectID, branch, path string) (Workspace, error) {
	w := Workspace{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Branch:    branch,
		Path:      path,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO workspaces (id, project_id, branch, path, created_at) VALUES (?, ?, ?, ?, ?)",
		w.ID, w.ProjectID, w.Branch, w.Path, w.CreatedAt.Unix())
	if err != nil {
		return Workspace{}, fmt.Errorf("failed to add workspace: %w", err)
	}
	return w, nil
}

// Workspace returns one workspace by id.
func (s *Store) Workspace(ctx context.Context, id string) (Workspace, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, project_id, branch, path, created_at FROM workspaces WHERE id = ?", id)
	w, err := scanWorkspace(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Workspace{}, fmt.Errorf("%w: %s", ErrWorkspaceNotFound, id)
	}
	return w, err
}

// WorkspaceByPath returns the workspace cloned at path.
func (s *Store) WorkspaceByPath(ctx context.Context, path string) (Workspace, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, project_id, branch, path, created_at FROM workspaces WHERE path = ?", path)
	w, err := scanWorkspace(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Workspace{}, fmt.Errorf("%w: %s", ErrWorkspaceNotFound, path)
	}
	return w, err
}

// ListWorkspaces returns the workspaces of a project ordered by branch.
func (s *Store) ListWorkspaces(ctx context.Context, projectID string) ([]Workspace, error) {
	return s.queryWorkspaces(ctx,
		"SELECT id, project_id, branch, path, created_at FROM workspaces WHERE project_id = ? ORDER BY branch",
		projectID)
}

// AllWorkspaces returns every workspace ordered by path.
func (s *Store) AllWorkspaces(ctx context.Context) ([]Workspace, error) {
	return s.queryWorkspaces(ctx,
		"SELECT id, project_id, branch, path, created_at FROM workspaces ORDER BY path")
}

func (s *Store) queryWorkspaces(ctx context.Context, query string, args ...any) ([]Workspace, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspaces: %w", err)
	}
	defer rows.Close()

	var out []Workspace
	for rows.Next() {
		w, err := scanWorkspace(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// DeleteWorkspace removes a workspace row.
func (s *Store) DeleteWorkspace(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM workspaces WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrWorkspaceNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (Project, error) {
	var p Project
	var created int64
	if err := row.Scan(&p.ID, &p.Name, &p.Path, &created); err != nil {
		return Project{}, err
	}
	p.CreatedAt = time.Unix(created, 0).UTC()
	return p, nil
}

func scanWorkspace(row scanner) (Workspace, error) {
	var w Workspace
	var created int64
	if err := row.Scan(&w.ID, &w.ProjectID, &w.Branch, &w.Path, &created); err != nil {
		return Workspace{}, err
	}
	w.CreatedAt = time.Unix(created, 0).UTC()
	return w, nil
}
