// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package deck

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/workdeck/internal/config"
	"github.com/jeranaias/workdeck/internal/tasks"
	"github.com/jeranaias/workdeck/internal/ui/styles"
	"github.com/jeranaias/workdeck/internal/workspace"
)

type fakeCatalog struct {
	projects   []workspace.Project
	workspaces map[string][]workspace.Workspace
	err        error
}

func (f *fakeCatalog) ListProjects(ctx context.Context) ([]workspace.Project, error) {
	return f.projects, f.err
}

func (f *fakeCatalog) ListWorkspaces(ctx context.Context, projectID string) ([]workspace.Workspace, error) {
	return f.workspaces[projectID], nil
}

func (f *fakeCatalog) CreateWorkspace(ctx context.Context, projectID, branch, origin string) (*tasks.Future, error) {
	return nil, errors.New("read-only catalog")
}

func (f *fakeCatalog) DeleteWorkspace(ctx context.Context, workspaceID, origin string) (*tasks.Future, error) {
	return nil, errors.New("read-only catalog")
}

func (f *fakeCatalog) RemoveProject(ctx context.Context, projectID, origin string) (*tasks.Future, error) {
	return nil, errors.New("read-only catalog")
}

func newTestModel(t *testing.T, catalog Workspaces) (Model, *tasks.Engine) {
	t.Helper()
	engine := tasks.New()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = engine.Wait(ctx)
	})
	m := New(engine, catalog, styles.NewTheme(), config.Default().UI)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(Model), engine
}

func press(t *testing.T, m Model, k string) Model {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	updated, _ := m.Update(msg)
	return updated.(Model)
}

func settle(t *testing.T, f *tasks.Future) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	select {
	case <-f.Done():
	case <-ctx.Done():
		t.Fatal("task never settled")
	}
}

func submitFailing(engine *tasks.Engine, msg string) *tasks.Future {
	return engine.Submit(tasks.Options{
		Kind:  tasks.KindDeleteWorkspace,
		Title: "Delete feature",
		Lane:  tasks.LaneHeavy,
		Body: func(ctx context.Context, c tasks.Controls) (any, error) {
			return nil, errors.New(msg)
		},
	})
}

func TestToggleDrawer(t *testing.T) {
	m, engine := newTestModel(t, nil)
	if engine.IsDrawerOpen() {
		t.Fatal("drawer starts closed")
	}

	m = press(t, m, "t")
	if !engine.IsDrawerOpen() {
		t.Error("t should open the drawer")
	}
	if !strings.Contains(m.View(), "Running (0)") {
		t.Error("open drawer should render")
	}

	m = press(t, m, "t")
	if engine.IsDrawerOpen() {
		t.Error("t should close the drawer")
	}
	if strings.Contains(m.View(), "Running (0)") {
		t.Error("closed drawer should not render")
	}
}

func TestFailureShowsInDrawer(t *testing.T) {
	m, engine := newTestModel(t, nil)
	settle(t, submitFailing(engine, "disk full"))

	updated, cmd := m.Update(EngineChangedMsg{})
	m = updated.(Model)
	if cmd == nil {
		t.Error("engine changes should keep listening")
	}

	view := m.View()
	for _, want := range []string{"disk full", "[r] retry", "Failed: 1"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestRetrySelected(t *testing.T) {
	m, engine := newTestModel(t, nil)
	f := submitFailing(engine, "disk full")
	settle(t, f)
	m.refresh()

	m = press(t, m, "r")
	old, _ := engine.Task(f.TaskID())
	if old.Retryable {
		t.Error("retried task should lose its retry entry")
	}
	if _, ok := engine.Retry(f.TaskID()); ok {
		t.Error("second retry should be refused")
	}
	if sel, ok := m.drawer.Selected(); !ok || sel.ID == f.TaskID() {
		t.Error("selection should move to the new attempt")
	}
}

func TestViewNewestToast(t *testing.T) {
	m, engine := newTestModel(t, nil)
	engine.CloseDrawer()
	f := submitFailing(engine, "boom")
	settle(t, f)
	engine.CloseDrawer()

	m = press(t, m, "enter")
	if got := engine.FocusedTaskID(); got != f.TaskID() {
		t.Errorf("focused = %q, want %q", got, f.TaskID())
	}
	if !engine.IsDrawerOpen() {
		t.Error("viewing a task opens the drawer")
	}
	if sel, _ := m.drawer.Selected(); sel.ID != f.TaskID() {
		t.Error("viewed task should be selected")
	}
}

func TestDismissNewestToast(t *testing.T) {
	m, engine := newTestModel(t, nil)
	settle(t, submitFailing(engine, "first"))
	settle(t, submitFailing(engine, "second"))

	press(t, m, "x")
	toasts := engine.Toasts()
	if len(toasts) != 1 || toasts[0].Message != "first" {
		t.Errorf("expected only the older toast to remain, got %+v", toasts)
	}
}

func TestHideRecent(t *testing.T) {
	m, engine := newTestModel(t, nil)
	settle(t, submitFailing(engine, "gone soon"))
	m.refresh()

	m = press(t, m, "h")
	if !engine.IsDrawerOpen() {
		t.Fatal("failure should have opened the drawer")
	}
	if strings.Contains(m.drawer.View(), "gone soon") {
		t.Error("finished tasks should be hidden")
	}
}

func TestProjectsListed(t *testing.T) {
	catalog := &fakeCatalog{
		projects: []workspace.Project{{ID: "p1", Name: "api", Path: "/src/api"}},
		workspaces: map[string][]workspace.Workspace{
			"p1": {{ID: "w1", ProjectID: "p1", Branch: "feature", Path: "/ws/api/feature"}},
		},
	}
	m, _ := newTestModel(t, catalog)

	msg := m.loadProjects()()
	updated, _ := m.Update(msg)
	view := updated.(Model).View()
	for _, want := range []string{"api", "/src/api", "feature"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestProjectsError(t *testing.T) {
	m, _ := newTestModel(t, &fakeCatalog{err: errors.New("database locked")})
	updated, _ := m.Update(m.loadProjects()())
	if !strings.Contains(updated.(Model).View(), "database locked") {
		t.Error("catalog errors should be shown")
	}
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t, nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
