package views

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/kanban/internal/models"
	"github.com/tgienger/kanban/internal/store"
	"github.com/tgienger/kanban/internal/ui/keys"
	"github.com/tgienger/kanban/internal/ui/styles"
)

const threadListWidth = 34

// ChatView lists task threads by recent activity next to the selected conversation
type ChatView struct {
	tasks  *store.TaskStore
	chat   *store.ChatStore
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	threads []models.Task
	cursor  int
	scrollY int

	messages viewport.Model
	input    textinput.Model
	typing   bool
	status   string
}

// NewChatView opens the chat; a non-empty taskID starts with that thread selected and the input focused
func NewChatView(tasks *store.TaskStore, chat *store.ChatStore, taskID string) *ChatView {
	input := textinput.New()
	input.Placeholder = "Message..."
	input.CharLimit = 2000

	v := &ChatView{
		tasks:    tasks,
		chat:     chat,
		styles:   styles.NewStyles(),
		keys:     keys.DefaultKeyMap(),
		messages: viewport.New(60, 10),
		input:    input,
	}
	v.refresh()
	if i := slices.IndexFunc(v.threads, func(t models.Task) bool { return t.ID == taskID }); i >= 0 {
		v.cursor = i
		v.typing = true
		v.input.Focus()
	}
	v.loadThread()
	return v
}

func (v *ChatView) Init() tea.Cmd {
	if v.typing {
		return textinput.Blink
	}
	return nil
}

// refresh re-ranks threads while keeping the selected task under the cursor
func (v *ChatView) refresh() {
	var selected string
	if t, ok := v.selected(); ok {
		selected = t.ID
	}
	v.threads = v.chat.Rank(v.tasks.Tasks())
	if i := slices.IndexFunc(v.threads, func(t models.Task) bool { return t.ID == selected }); i >= 0 {
		v.cursor = i
	}
	if v.cursor >= len(v.threads) {
		v.cursor = max(0, len(v.threads)-1)
	}
	if len(v.threads) == 0 {
		v.typing = false
		v.input.Blur()
	}
	v.ensureVisible()
}

func (v *ChatView) selected() (models.Task, bool) {
	if len(v.threads) == 0 {
		return models.Task{}, false
	}
	return v.threads[v.cursor], true
}

func (v *ChatView) visibleThreads() int {
	return max(1, (v.height-6)/2)
}

func (v *ChatView) ensureVisible() {
	visible := v.visibleThreads()
	if v.cursor < v.scrollY {
		v.scrollY = v.cursor
	}
	if v.cursor >= v.scrollY+visible {
		v.scrollY = v.cursor - visible + 1
	}
}

// loadThread fills the viewport with the selected thread, scrolled to the newest message
func (v *ChatView) loadThread() {
	task, ok := v.selected()
	if !ok {
		v.messages.SetContent(v.styles.TitleMuted.Render("No tasks to talk about"))
		return
	}
	thread := v.chat.ByTask(task.ID)
	if len(thread) == 0 {
		v.messages.SetContent(v.styles.TitleMuted.Render("No messages yet"))
		return
	}
	s := v.styles
	lines := make([]string, 0, len(thread)*3)
	for _, m := range thread {
		author := s.HelpKey.Render(m.Author)
		if m.Author == models.LocalAuthor {
			author = s.ColumnTitle.UnsetMarginBottom().Render(m.Author)
		}
		lines = append(lines,
			author+" "+s.TitleMuted.Render(m.CreatedAt.Local().Format(time.Kitchen)),
			lipgloss.NewStyle().Width(v.messages.Width).Render(m.Text),
			"",
		)
	}
	v.messages.SetContent(strings.Join(lines, "\n"))
	v.messages.GotoBottom()
}

// Update handles messages
func (v *ChatView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		contentWidth := styles.ContentWidth(v.width)
		v.messages.Width = max(contentWidth-threadListWidth-6, 20)
		v.messages.Height = max(v.height-9, 3)
		v.input.Width = v.messages.Width - 4
		v.ensureVisible()
		v.loadThread()
		return v, nil

	case StoreChanged:
		v.refresh()
		v.loadThread()
		return v, nil

	case tea.KeyMsg:
		if v.typing {
			return v.updateTyping(msg)
		}
		return v.updateBrowsing(msg)
	}

	return v, nil
}

func (v *ChatView) updateBrowsing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v.status = ""

	switch {
	case msg.String() == "ctrl+c":
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back), msg.String() == "q":
		return v, back

	case key.Matches(msg, v.keys.Up):
		if v.cursor > 0 {
			v.cursor--
			v.ensureVisible()
			v.loadThread()
		}

	case key.Matches(msg, v.keys.Down):
		if v.cursor < len(v.threads)-1 {
			v.cursor++
			v.ensureVisible()
			v.loadThread()
		}

	case msg.String() == "pgup", msg.String() == "pgdown":
		var cmd tea.Cmd
		v.messages, cmd = v.messages.Update(msg)
		return v, cmd

	case key.Matches(msg, v.keys.Enter), key.Matches(msg, v.keys.Tab), msg.String() == "i":
		if _, ok := v.selected(); ok {
			v.typing = true
			v.input.Focus()
			return v, textinput.Blink
		}
	}

	return v, nil
}

func (v *ChatView) updateTyping(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back), key.Matches(msg, v.keys.Tab):
		v.typing = false
		v.input.Blur()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		task, ok := v.selected()
		if !ok {
			return v, nil
		}
		if _, res := v.chat.Send(task.ID, v.input.Value(), ""); res.Changed() {
			v.input.Reset()
			v.refresh()
			v.loadThread()
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// View renders the view
func (v *ChatView) View() string {
	s := v.styles

	header := s.Header.Render(s.Title.Render("Chat") + "  " +
		s.TitleMuted.Render(fmt.Sprintf("%d messages", v.chat.Len())))

	body := lipgloss.JoinHorizontal(lipgloss.Top, v.renderThreads(), v.renderConversation())

	status := ""
	if err := v.chat.SaveErr(); err != nil {
		status = s.StatusError.Render(saveStatus(err))
	}

	help := helpLine(s, "↑↓", "thread", "↵", "write", "esc", "back")
	if v.typing {
		help = helpLine(s, "↵", "send", "esc", "stop typing")
	}

	return styles.CenterView(lipgloss.JoinVertical(lipgloss.Left, header, body, status, help), v.width, v.height)
}

func (v *ChatView) renderThreads() string {
	s := v.styles
	width := threadListWidth - 4
	var lines []string

	end := min(len(v.threads), v.scrollY+v.visibleThreads())
	for i := v.scrollY; i < end; i++ {
		t := v.threads[i]
		preview := s.TitleMuted.Render("no messages")
		if last, ok := v.chat.LastForTask(t.ID); ok {
			preview = s.TitleMuted.Render(styles.Truncate(last.Author+": "+last.Text, width-4))
		}
		title := styles.Truncate(t.Title, width-4)
		if i == v.cursor {
			title = s.ListSelected.Render(title)
		} else {
			title = s.ListItem.Render(title)
		}
		lines = append(lines, title, "  "+preview)
	}
	if len(lines) == 0 {
		lines = append(lines, s.TitleMuted.Render("No tasks"))
	}

	style := s.Column
	if !v.typing {
		style = s.ColumnFocused
	}
	return style.Width(width).Height(max(v.height-6, 3)).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (v *ChatView) renderConversation() string {
	s := v.styles
	title := ""
	if task, ok := v.selected(); ok {
		title = s.ColumnTitle.Render(styles.Truncate(task.Title, v.messages.Width))
	}

	inputStyle := s.Input
	if v.typing {
		inputStyle = s.InputFocused
	}

	style := s.Column
	if v.typing {
		style = s.ColumnFocused
	}
	return style.Width(v.messages.Width).Render(lipgloss.JoinVertical(lipgloss.Left,
		title,
		v.messages.View(),
		inputStyle.Width(v.messages.Width-2).Render(v.input.View()),
	))
}
