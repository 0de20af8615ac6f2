package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tgienger/kanban/internal/app"
	"github.com/tgienger/kanban/internal/ui/views"
)

// Currently active view
type View int

const (
	ViewBoard View = iota
	ViewTask
	ViewChat
	ViewSettings
)

type App struct {
	app         *app.App
	settings    views.Settings
	currentView View
	board       *views.BoardView
	current     tea.Model // the view shown when not on the board
	width       int
	height      int
}

// NewApp creates the board application over the session's stores
func NewApp(a *app.App, settings views.Settings) *App {
	return &App{
		app:         a,
		settings:    settings,
		currentView: ViewBoard,
		board:       views.NewBoardView(a.Tasks, a.Chat, settings),
	}
}

func (a *App) Init() tea.Cmd {
	return a.board.Init()
}

// open switches to v and sizes it to the window
func (a *App) open(view View, v tea.Model) tea.Cmd {
	a.currentView = view
	a.current = v
	return tea.Batch(
		v.Init(),
		func() tea.Msg {
			return tea.WindowSizeMsg{Width: a.width, Height: a.height}
		},
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		// Always update the board size since it persists
		a.board.Update(msg)

	case views.StoreChanged:
		// The board is kept current even while hidden
		a.board.Update(msg)

	case views.OpenTask:
		a.app.Log.Debug().Str("task", msg.TaskID).Msg("open task")
		return a, a.open(ViewTask, views.NewTaskView(a.app.Tasks, a.app.Chat, a.app.Lists, msg.TaskID))

	case views.OpenChat:
		return a, a.open(ViewChat, views.NewChatView(a.app.Tasks, a.app.Chat, msg.TaskID))

	case views.OpenSettings:
		return a, a.open(ViewSettings, views.NewSettingsView(a.app.Lists, a.app.Tasks))

	case views.BackToBoard:
		a.currentView = ViewBoard
		a.current = nil
		return a, nil
	}

	if a.currentView == ViewBoard || a.current == nil {
		// the board already saw these above
		switch msg.(type) {
		case tea.WindowSizeMsg, views.StoreChanged:
			return a, nil
		}
		_, cmd := a.board.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.current, cmd = a.current.Update(msg)
	return a, cmd
}

func (a *App) View() string {
	if a.currentView != ViewBoard && a.current != nil {
		return a.current.View()
	}
	return a.board.View()
}

// Run shows the board until the user quits. Store changes are delivered to the
// program as views.StoreChanged messages.
func Run(a *app.App, settings views.Settings) error {
	if settings == nil {
		settings = NewMemorySettings()
	}

	p := tea.NewProgram(NewApp(a, settings), tea.WithAltScreen())

	// Listeners run on the mutating goroutine; Send blocks until the
	// program reads it, so hand off instead of calling it inline
	changed := func() { go p.Send(views.StoreChanged{}) }
	a.Tasks.OnChange(changed)
	a.Chat.OnChange(changed)
	a.Lists.OnChange(changed)

	a.Log.Info().Msg("board opened")
	_, err := p.Run()
	if err != nil {
		a.Log.Error().Err(err).Msg("board exited with error")
		return err
	}
	a.Log.Info().Msg("board closed")
	return nil
}

// MemorySettings keeps view settings for the life of the process
type MemorySettings struct {
	mu     sync.Mutex
	values map[string]string
}

func NewMemorySettings() *MemorySettings {
	return &MemorySettings{values: make(map[string]string)}
}

func (m *MemorySettings) GetSetting(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *MemorySettings) SetSetting(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}
