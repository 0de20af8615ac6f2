package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/tgienger/kanban/internal/app"
	"github.com/tgienger/kanban/internal/config"
	"github.com/tgienger/kanban/internal/models"
	"github.com/tgienger/kanban/internal/store"
	"github.com/tgienger/kanban/internal/ui/views"
)

func newTestApp(t *testing.T) (*App, *app.App) {
	t.Helper()
	a := app.NewWithStorage(&config.Config{Env: config.EnvProd}, zerolog.Nop(), store.NewMemoryStorage())
	ui := NewApp(a, NewMemorySettings())
	ui.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return ui, a
}

// send updates ui with msg and feeds back any window size the resulting
// command reports, the way the program loop would
func send(t *testing.T, ui *App, msg tea.Msg) {
	t.Helper()
	_, cmd := ui.Update(msg)
	deliver(ui, cmd)
}

func deliver(ui *App, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			deliver(ui, c)
		}
	case tea.WindowSizeMsg:
		ui.Update(msg)
	}
}

func TestApp_SwitchesViews(t *testing.T) {
	ui, _ := newTestApp(t)

	tests := []struct {
		msg  tea.Msg
		view View
		want string
	}{
		{views.OpenTask{TaskID: "3"}, ViewTask, "API integration"},
		{views.BackToBoard{}, ViewBoard, "To Do"},
		{views.OpenChat{TaskID: "3"}, ViewChat, "Chat"},
		{views.OpenSettings{}, ViewSettings, "Team Members"},
		{views.BackToBoard{}, ViewBoard, "Done"},
	}
	for _, tt := range tests {
		send(t, ui, tt.msg)
		if ui.currentView != tt.view {
			t.Fatalf("after %T view = %d, want %d", tt.msg, ui.currentView, tt.view)
		}
		if !strings.Contains(ui.View(), tt.want) {
			t.Errorf("after %T view does not show %q", tt.msg, tt.want)
		}
	}
}

func TestApp_BoardFollowsStoreWhileHidden(t *testing.T) {
	ui, a := newTestApp(t)
	send(t, ui, views.OpenSettings{})

	a.Tasks.Create("Added while away", models.ColumnTodo, models.PriorityLow, "")
	send(t, ui, views.StoreChanged{})
	send(t, ui, views.BackToBoard{})

	if !strings.Contains(ui.View(), "Added while away") {
		t.Error("board missed a change made while hidden")
	}
}

func TestMemorySettings(t *testing.T) {
	s := NewMemorySettings()
	if v, err := s.GetSetting("last_column"); err != nil || v != "" {
		t.Fatalf("GetSetting() = %q, %v", v, err)
	}
	if err := s.SetSetting("last_column", "done"); err != nil {
		t.Fatal(err)
	}
	if v, _ := s.GetSetting("last_column"); v != "done" {
		t.Errorf("GetSetting() = %q, want done", v)
	}
}
