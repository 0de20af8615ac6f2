package views

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/kanban/internal/models"
	"github.com/tgienger/kanban/internal/store"
	"github.com/tgienger/kanban/internal/ui/keys"
	"github.com/tgienger/kanban/internal/ui/styles"
)

const lastColumnSetting = "last_column"

// cardHeight is the rows one card takes including its spacing
const cardHeight = 3

// BoardView shows the three columns side by side
type BoardView struct {
	tasks    *store.TaskStore
	chat     *store.ChatStore
	settings Settings
	styles   *styles.Styles
	keys     keys.KeyMap

	width  int
	height int

	columns [][]models.Task // indexed like models.Columns
	focus   int
	cursor  []int
	scrollY []int

	// Task creation
	creating    bool
	newTitle    textinput.Model
	newDesc     textinput.Model
	newPriority models.Priority
	focusIdx    int // 0=title, 1=desc, 2=priority, 3=create

	// Delete confirmation
	confirmingDelete bool
	deleteTargetID   string
	deleteTargetName string

	showHelpPopup bool
	status        string
}

// NewBoardView creates the board, restoring the last focused column
func NewBoardView(tasks *store.TaskStore, chat *store.ChatStore, settings Settings) *BoardView {
	newTitle := textinput.New()
	newTitle.Placeholder = "Task title"
	newTitle.CharLimit = 200

	newDesc := textinput.New()
	newDesc.Placeholder = "Description (optional)"
	newDesc.CharLimit = 1000

	v := &BoardView{
		tasks:    tasks,
		chat:     chat,
		settings: settings,
		styles:   styles.NewStyles(),
		keys:     keys.DefaultKeyMap(),
		columns:  make([][]models.Task, len(models.Columns)),
		cursor:   make([]int, len(models.Columns)),
		scrollY:  make([]int, len(models.Columns)),
		newTitle: newTitle,
		newDesc:  newDesc,
	}

	if last, err := settings.GetSetting(lastColumnSetting); err == nil {
		if i := slices.Index(models.Columns, models.Column(last)); i >= 0 {
			v.focus = i
		}
	}
	v.refresh()
	return v
}

func (v *BoardView) Init() tea.Cmd {
	return nil
}

// refresh re-reads the columns from the store and keeps cursors in range
func (v *BoardView) refresh() {
	for i, col := range models.Columns {
		v.columns[i] = slices.Collect(v.tasks.ByColumn(col))
		if v.cursor[i] >= len(v.columns[i]) {
			v.cursor[i] = max(0, len(v.columns[i])-1)
		}
	}
	v.ensureVisible()
}

// selectTask moves focus to the task with id, wherever it now lives
func (v *BoardView) selectTask(id string) {
	for i, col := range v.columns {
		if j := slices.IndexFunc(col, func(t models.Task) bool { return t.ID == id }); j >= 0 {
			v.setFocus(i)
			v.cursor[i] = j
			v.ensureVisible()
			return
		}
	}
}

func (v *BoardView) selected() (models.Task, bool) {
	col := v.columns[v.focus]
	if len(col) == 0 {
		return models.Task{}, false
	}
	return col[v.cursor[v.focus]], true
}

func (v *BoardView) setFocus(i int) {
	if i == v.focus {
		return
	}
	v.focus = i
	v.settings.SetSetting(lastColumnSetting, string(models.Columns[i]))
}

func (v *BoardView) visibleCards() int {
	return max(1, (v.height-8)/cardHeight)
}

func (v *BoardView) ensureVisible() {
	visible := v.visibleCards()
	for i := range v.columns {
		if v.cursor[i] < v.scrollY[i] {
			v.scrollY[i] = v.cursor[i]
		}
		if v.cursor[i] >= v.scrollY[i]+visible {
			v.scrollY[i] = v.cursor[i] - visible + 1
		}
	}
}

// Update handles messages
func (v *BoardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.ensureVisible()
		return v, nil

	case StoreChanged:
		v.refresh()
		return v, nil

	case tea.KeyMsg:
		// Handle help popup first - any key closes it
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		if v.creating {
			return v.updateCreating(msg)
		}

		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *BoardView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v.status = ""

	switch {
	case key.Matches(msg, v.keys.Quit):
		return v, tea.Quit

	case key.Matches(msg, v.keys.Left):
		v.setFocus(max(0, v.focus-1))
		return v, nil

	case key.Matches(msg, v.keys.Right):
		v.setFocus(min(len(models.Columns)-1, v.focus+1))
		return v, nil

	case key.Matches(msg, v.keys.Up):
		if v.cursor[v.focus] > 0 {
			v.cursor[v.focus]--
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.Down):
		if v.cursor[v.focus] < len(v.columns[v.focus])-1 {
			v.cursor[v.focus]++
			v.ensureVisible()
		}
		return v, nil

	case key.Matches(msg, v.keys.MoveLeft), key.Matches(msg, v.keys.MoveRight):
		task, ok := v.selected()
		if !ok {
			return v, nil
		}
		to := task.Column.Next()
		if key.Matches(msg, v.keys.MoveLeft) {
			to = task.Column.Prev()
		}
		if to == task.Column {
			return v, nil
		}
		v.status = resultStatus(v.tasks.Move(task.ID, to), "move")
		v.refresh()
		v.selectTask(task.ID)
		return v, nil

	case key.Matches(msg, v.keys.Block):
		if task, ok := v.selected(); ok {
			blocked := !task.Blocked
			v.status = resultStatus(v.tasks.Patch(task.ID, models.TaskPatch{Blocked: &blocked}), "block")
			v.refresh()
		}
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if task, ok := v.selected(); ok {
			return v, func() tea.Msg { return OpenTask{TaskID: task.ID} }
		}
		return v, nil

	case key.Matches(msg, v.keys.Chat):
		task, _ := v.selected()
		return v, func() tea.Msg { return OpenChat{TaskID: task.ID} }

	case key.Matches(msg, v.keys.Settings):
		return v, func() tea.Msg { return OpenSettings{} }

	case key.Matches(msg, v.keys.New):
		v.startNewTask()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Delete):
		if task, ok := v.selected(); ok {
			v.confirmingDelete = true
			v.deleteTargetID = task.ID
			v.deleteTargetName = task.Title
		}
		return v, nil

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true
		return v, nil
	}

	return v, nil
}

func (v *BoardView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.status = resultStatus(v.tasks.Remove(v.deleteTargetID), "delete")
		v.confirmingDelete = false
		v.refresh()
		return v, nil
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *BoardView) startNewTask() {
	v.creating = true
	v.focusIdx = 0
	v.newPriority = models.PriorityMedium
	v.newTitle.Reset()
	v.newDesc.Reset()
	v.updateFocus()
}

func (v *BoardView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		return v, nil

	case key.Matches(msg, v.keys.Save):
		return v, v.saveNewTask()

	case msg.String() == "shift+tab":
		v.focusIdx = (v.focusIdx + 3) % 4
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Tab):
		v.focusIdx = (v.focusIdx + 1) % 4
		v.updateFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter):
		if v.focusIdx < 3 {
			v.focusIdx++
			v.updateFocus()
			return v, nil
		}
		return v, v.saveNewTask()
	}

	var cmd tea.Cmd
	switch v.focusIdx {
	case 0:
		v.newTitle, cmd = v.newTitle.Update(msg)
	case 1:
		v.newDesc, cmd = v.newDesc.Update(msg)
	case 2:
		switch msg.String() {
		case " ", "right", "l":
			v.newPriority = v.newPriority.Next()
		case "left", "h":
			v.newPriority = v.newPriority.Next().Next()
		}
	}
	return v, cmd
}

func (v *BoardView) updateFocus() {
	v.newTitle.Blur()
	v.newDesc.Blur()
	switch v.focusIdx {
	case 0:
		v.newTitle.Focus()
	case 1:
		v.newDesc.Focus()
	}
}

// saveNewTask adds the task to the focused column; an empty title keeps the form open
func (v *BoardView) saveNewTask() tea.Cmd {
	title := strings.TrimSpace(v.newTitle.Value())
	if title == "" {
		v.focusIdx = 0
		v.updateFocus()
		return nil
	}

	task, res := v.tasks.Create(title, models.Columns[v.focus], v.newPriority, v.newDesc.Value())
	v.creating = false
	v.status = resultStatus(res, "create")
	v.refresh()
	if res.Changed() {
		v.selectTask(task.ID)
	}
	return nil
}

// View renders the view
func (v *BoardView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}
	if v.confirmingDelete {
		return confirmDialog(v.styles, v.width, v.height, "Delete Task?", v.deleteTargetName)
	}
	if v.creating {
		return v.renderCreateForm()
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		v.renderHeader(),
		v.renderColumns(),
		v.renderStatus(),
		v.renderHelp(),
	)
	return styles.CenterView(content, v.width, v.height)
}

func (v *BoardView) renderHeader() string {
	s := v.styles
	return s.Header.Render(
		s.Title.Render("Project Tracker") + "  " + s.TitleMuted.Render(fmt.Sprintf("%d tasks", v.tasks.Len())),
	)
}

func (v *BoardView) renderColumns() string {
	contentWidth := styles.ContentWidth(v.width)
	// two border columns and two padding columns per board column
	colWidth := max(contentWidth/len(models.Columns)-4, 12)

	rendered := make([]string, len(models.Columns))
	for i, col := range models.Columns {
		rendered[i] = v.renderColumn(i, col, colWidth)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (v *BoardView) renderColumn(i int, col models.Column, width int) string {
	s := v.styles
	tasks := v.columns[i]

	lines := []string{s.ColumnTitle.Render(fmt.Sprintf("%s (%d)", col.Title(), len(tasks)))}
	if len(tasks) == 0 {
		lines = append(lines, s.TitleMuted.Render("No tasks"))
	}

	visible := v.visibleCards()
	end := min(len(tasks), v.scrollY[i]+visible)
	for j := v.scrollY[i]; j < end; j++ {
		selected := i == v.focus && j == v.cursor[i]
		lines = append(lines, v.renderCard(tasks[j], selected, width), "")
	}
	if end < len(tasks) {
		lines = append(lines, s.TitleMuted.Render(fmt.Sprintf("↓ %d more", len(tasks)-end)))
	}

	style := s.Column
	if i == v.focus {
		style = s.ColumnFocused
	}
	return style.Width(width).Height(v.height - 6).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (v *BoardView) renderCard(task models.Task, selected bool, width int) string {
	s := v.styles

	titleStyle := s.Card
	if selected {
		titleStyle = s.CardSelected
	}
	title := titleStyle.Width(width).Render(styles.Truncate(task.Title, width-2))

	meta := []string{styles.PriorityBadge(task.Priority)}
	if task.Blocked {
		meta = append(meta, s.Blocked.Render("blocked"))
	}
	if task.Assignee != "" {
		meta = append(meta, "@"+task.Assignee)
	}
	if n := len(task.Comments); n > 0 {
		meta = append(meta, fmt.Sprintf("✎%d", n))
	}
	if n := len(task.Attachments); n > 0 {
		meta = append(meta, fmt.Sprintf("⎘%d", n))
	}
	if _, ok := v.chat.LastForTask(task.ID); ok {
		meta = append(meta, "✉")
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, s.CardMeta.Render(strings.Join(meta, " ")))
}

func (v *BoardView) renderStatus() string {
	if v.status != "" {
		return v.styles.StatusError.Render(v.status)
	}
	if msg := saveStatus(v.tasks.SaveErr()); msg != "" {
		return v.styles.StatusError.Render(msg)
	}
	return ""
}

func (v *BoardView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth > 0 && contentWidth < 80 {
		return helpLine(v.styles, "?", "help")
	}
	return helpLine(v.styles,
		"←→", "column", "↑↓", "task", "<>", "move", "↵", "open", "n", "new",
		"b", "blocked", "d", "del", "c", "chat", "s", "settings", "q", "quit",
	)
}

func (v *BoardView) renderHelpPopup() string {
	s := v.styles
	items := []string{
		s.HelpKey.Render("←/→ h/l") + "  switch column",
		s.HelpKey.Render("↑/↓ k/j") + "  select task",
		s.HelpKey.Render("< >    ") + "  move task to previous/next column",
		s.HelpKey.Render("↵      ") + "  open task",
		s.HelpKey.Render("n      ") + "  new task in this column",
		s.HelpKey.Render("b      ") + "  toggle blocked",
		s.HelpKey.Render("d      ") + "  delete task",
		s.HelpKey.Render("c      ") + "  chat",
		s.HelpKey.Render("s      ") + "  team members and projects",
		s.HelpKey.Render("q      ") + "  quit",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, items...)...,
	)
	return popup(s, v.width, v.height, content)
}

func (v *BoardView) renderCreateForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	titleStyle, descStyle, btnStyle := s.Input, s.Input, s.Button
	priorityLabel := styles.PriorityStyle(v.newPriority).Render(string(v.newPriority))
	switch v.focusIdx {
	case 0:
		titleStyle = s.InputFocused
	case 1:
		descStyle = s.InputFocused
	case 2:
		priorityLabel = "◀ " + priorityLabel + " ▶"
	case 3:
		btnStyle = s.ButtonFocused
	}

	// Dynamic input width based on content width
	inputWidth := clamp(contentWidth-10, 20, 60)

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("New Task in "+models.Columns[v.focus].Title()),
		"",
		"Title:",
		titleStyle.Width(inputWidth).Render(v.newTitle.View()),
		"",
		"Description:",
		descStyle.Width(inputWidth).Render(v.newDesc.View()),
		"",
		"Priority: "+priorityLabel,
		"",
		btnStyle.Render(" Create "),
		"",
		s.TitleMuted.Render("Tab: next • Space: priority • Ctrl+S: save • Esc: cancel"),
	)
	return popup(s, v.width, v.height, form)
}
