package views

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/kanban/internal/models"
	"github.com/tgienger/kanban/internal/store"
	"github.com/tgienger/kanban/internal/ui/keys"
	"github.com/tgienger/kanban/internal/ui/styles"
)

// taskMode is what the detail view is currently collecting input for
type taskMode int

const (
	taskModeView taskMode = iota
	taskModeEdit
	taskModeComment
	taskModeAttach
)

// TaskView is the detail panel of one task
type TaskView struct {
	tasks  *store.TaskStore
	chat   *store.ChatStore
	lists  *store.ListStore
	styles *styles.Styles
	keys   keys.KeyMap

	width  int
	height int

	taskID string
	task   models.Task
	gone   bool

	mode         taskMode
	attachCursor int

	// Editing
	editTitle textinput.Model
	editDesc  textarea.Model
	editFocus int // 0=title, 1=desc

	commentInput textarea.Model

	attachName  textinput.Model
	attachURL   textinput.Model
	attachFocus int // 0=name, 1=url

	confirmingDelete bool
	showHelpPopup    bool
	status           string
}

// NewTaskView opens the detail view for taskID
func NewTaskView(tasks *store.TaskStore, chat *store.ChatStore, lists *store.ListStore, taskID string) *TaskView {
	editTitle := textinput.New()
	editTitle.Placeholder = "Task title"
	editTitle.CharLimit = 200

	editDesc := textarea.New()
	editDesc.Placeholder = "Description"
	editDesc.CharLimit = 1000
	editDesc.SetWidth(50)
	editDesc.SetHeight(3)
	editDesc.ShowLineNumbers = false

	commentInput := textarea.New()
	commentInput.Placeholder = "Add a comment..."
	commentInput.CharLimit = 2000
	commentInput.SetWidth(50)
	commentInput.SetHeight(3)
	commentInput.ShowLineNumbers = false

	attachName := textinput.New()
	attachName.Placeholder = "Name"
	attachName.CharLimit = 200

	attachURL := textinput.New()
	attachURL.Placeholder = "https://..."
	attachURL.CharLimit = 2000

	v := &TaskView{
		tasks:        tasks,
		chat:         chat,
		lists:        lists,
		styles:       styles.NewStyles(),
		keys:         keys.DefaultKeyMap(),
		taskID:       taskID,
		editTitle:    editTitle,
		editDesc:     editDesc,
		commentInput: commentInput,
		attachName:   attachName,
		attachURL:    attachURL,
	}
	v.refresh()
	return v
}

func (v *TaskView) Init() tea.Cmd {
	return nil
}

func (v *TaskView) refresh() {
	task, ok := v.tasks.Get(v.taskID)
	if !ok {
		v.gone = true
		v.mode = taskModeView
		v.confirmingDelete = false
		return
	}
	v.task = task
	if v.attachCursor >= len(task.Attachments) {
		v.attachCursor = max(0, len(task.Attachments)-1)
	}
}

func back() tea.Msg { return BackToBoard{} }

// Update handles messages
func (v *TaskView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		inputWidth := clamp(styles.ContentWidth(v.width)-10, 20, 60)
		v.editDesc.SetWidth(inputWidth)
		v.commentInput.SetWidth(inputWidth)
		return v, nil

	case StoreChanged:
		v.refresh()
		return v, nil

	case tea.KeyMsg:
		if v.showHelpPopup {
			v.showHelpPopup = false
			return v, nil
		}

		// A task removed elsewhere leaves nothing to act on
		if v.gone {
			if key.Matches(msg, v.keys.Quit) && msg.String() == "ctrl+c" {
				return v, tea.Quit
			}
			return v, back
		}

		if v.confirmingDelete {
			return v.updateConfirmDelete(msg)
		}

		switch v.mode {
		case taskModeEdit:
			return v.updateEditing(msg)
		case taskModeComment:
			return v.updateCommenting(msg)
		case taskModeAttach:
			return v.updateAttaching(msg)
		}
		return v.updateNormal(msg)
	}

	return v, nil
}

func (v *TaskView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	v.status = ""
	id := v.task.ID

	switch {
	case msg.String() == "ctrl+c":
		return v, tea.Quit

	case key.Matches(msg, v.keys.Back), msg.String() == "q":
		return v, back

	case key.Matches(msg, v.keys.Help):
		v.showHelpPopup = true

	case key.Matches(msg, v.keys.Up):
		if v.attachCursor > 0 {
			v.attachCursor--
		}

	case key.Matches(msg, v.keys.Down):
		if v.attachCursor < len(v.task.Attachments)-1 {
			v.attachCursor++
		}

	case key.Matches(msg, v.keys.MoveLeft):
		v.status = resultStatus(v.tasks.Move(id, v.task.Column.Prev()), "move")

	case key.Matches(msg, v.keys.MoveRight):
		v.status = resultStatus(v.tasks.Move(id, v.task.Column.Next()), "move")

	case key.Matches(msg, v.keys.Block):
		blocked := !v.task.Blocked
		v.status = resultStatus(v.tasks.Patch(id, models.TaskPatch{Blocked: &blocked}), "block")

	case msg.String() == "r":
		p := v.task.Priority.Next()
		v.status = resultStatus(v.tasks.Patch(id, models.TaskPatch{Priority: &p}), "priority")

	case msg.String() == "a":
		name := cycleName(v.task.Assignee, v.lists.Members())
		v.status = resultStatus(v.tasks.Patch(id, models.TaskPatch{Assignee: &name}), "assignee")

	case msg.String() == "p":
		name := cycleName(v.task.Project, v.lists.Projects())
		v.status = resultStatus(v.tasks.Patch(id, models.TaskPatch{Project: &name}), "project")

	case key.Matches(msg, v.keys.Edit):
		v.mode = taskModeEdit
		v.editFocus = 0
		v.editTitle.SetValue(v.task.Title)
		v.editDesc.SetValue(v.task.Description)
		v.updateEditFocus()
		return v, textinput.Blink

	case key.Matches(msg, v.keys.Chat):
		v.mode = taskModeComment
		v.commentInput.Reset()
		v.commentInput.Focus()
		return v, textarea.Blink

	case msg.String() == "u":
		v.mode = taskModeAttach
		v.attachFocus = 0
		v.attachName.Reset()
		v.attachURL.Reset()
		v.updateAttachFocus()
		return v, textinput.Blink

	case msg.String() == "x":
		if len(v.task.Attachments) > 0 {
			att := v.task.Attachments[v.attachCursor]
			v.status = resultStatus(v.tasks.RemoveAttachment(id, att.ID), "remove attachment")
		}

	case msg.String() == "t":
		return v, func() tea.Msg { return OpenChat{TaskID: id} }

	case key.Matches(msg, v.keys.Delete):
		v.confirmingDelete = true
	}

	v.refresh()
	return v, nil
}

// cycleName steps to the next entry of names, with "" (unset) before the first.
// A name that is no longer listed restarts the cycle.
func cycleName(current string, names []string) string {
	i := slices.Index(names, current)
	if current == "" || i < 0 {
		if len(names) == 0 {
			return ""
		}
		if current == "" {
			return names[0]
		}
		return ""
	}
	if i == len(names)-1 {
		return ""
	}
	return names[i+1]
}

func (v *TaskView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		if res := v.tasks.Remove(v.task.ID); res.Changed() {
			return v, back
		}
		v.refresh()
		return v, nil
	case "n", "N", "esc":
		v.confirmingDelete = false
	}
	return v, nil
}

func (v *TaskView) updateEditing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.mode = taskModeView
		return v, nil

	case key.Matches(msg, v.keys.Save):
		title := strings.TrimSpace(v.editTitle.Value())
		if title == "" {
			v.editFocus = 0
			v.updateEditFocus()
			return v, nil
		}
		desc := v.editDesc.Value()
		v.status = resultStatus(v.tasks.Patch(v.task.ID, models.TaskPatch{Title: &title, Description: &desc}), "edit")
		v.mode = taskModeView
		v.refresh()
		return v, nil

	case key.Matches(msg, v.keys.Tab), msg.String() == "shift+tab":
		v.editFocus = 1 - v.editFocus
		v.updateEditFocus()
		return v, nil
	}

	var cmd tea.Cmd
	if v.editFocus == 0 {
		v.editTitle, cmd = v.editTitle.Update(msg)
	} else {
		v.editDesc, cmd = v.editDesc.Update(msg)
	}
	return v, cmd
}

func (v *TaskView) updateEditFocus() {
	v.editTitle.Blur()
	v.editDesc.Blur()
	if v.editFocus == 0 {
		v.editTitle.Focus()
	} else {
		v.editDesc.Focus()
	}
}

func (v *TaskView) updateCommenting(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.mode = taskModeView
		v.commentInput.Blur()
		return v, nil

	case key.Matches(msg, v.keys.Save):
		_, res := v.tasks.AppendComment(v.task.ID, v.commentInput.Value())
		if res == store.Rejected {
			// blank comment, keep typing
			return v, nil
		}
		v.status = resultStatus(res, "comment")
		v.mode = taskModeView
		v.commentInput.Blur()
		v.refresh()
		return v, nil
	}

	var cmd tea.Cmd
	v.commentInput, cmd = v.commentInput.Update(msg)
	return v, cmd
}

func (v *TaskView) updateAttaching(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.mode = taskModeView
		return v, nil

	case key.Matches(msg, v.keys.Tab), msg.String() == "shift+tab":
		v.attachFocus = 1 - v.attachFocus
		v.updateAttachFocus()
		return v, nil

	case key.Matches(msg, v.keys.Enter), key.Matches(msg, v.keys.Save):
		if v.attachFocus == 0 && key.Matches(msg, v.keys.Enter) {
			v.attachFocus = 1
			v.updateAttachFocus()
			return v, nil
		}
		_, res := v.tasks.AppendAttachment(v.task.ID, v.attachName.Value(), v.attachURL.Value())
		if res == store.Rejected {
			return v, nil
		}
		v.status = resultStatus(res, "attach")
		v.mode = taskModeView
		v.refresh()
		v.attachCursor = max(0, len(v.task.Attachments)-1)
		return v, nil
	}

	var cmd tea.Cmd
	if v.attachFocus == 0 {
		v.attachName, cmd = v.attachName.Update(msg)
	} else {
		v.attachURL, cmd = v.attachURL.Update(msg)
	}
	return v, cmd
}

func (v *TaskView) updateAttachFocus() {
	v.attachName.Blur()
	v.attachURL.Blur()
	if v.attachFocus == 0 {
		v.attachName.Focus()
	} else {
		v.attachURL.Focus()
	}
}

// View renders the view
func (v *TaskView) View() string {
	s := v.styles
	if v.gone {
		content := lipgloss.JoinVertical(lipgloss.Center,
			s.Title.Render("Task removed"),
			"",
			s.TitleMuted.Render("Press any key to return to the board"),
		)
		return popup(s, v.width, v.height, content)
	}
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}
	if v.confirmingDelete {
		return confirmDialog(s, v.width, v.height, "Delete Task?", v.task.Title)
	}

	switch v.mode {
	case taskModeEdit:
		return v.renderEditForm()
	case taskModeAttach:
		return v.renderAttachForm()
	}

	sections := []string{v.renderDetails(), "", v.renderAttachments(), "", v.renderComments()}
	if v.mode == taskModeComment {
		inputWidth := clamp(styles.ContentWidth(v.width)-10, 20, 60)
		sections = append(sections, "", s.InputFocused.Width(inputWidth).Render(v.commentInput.View()),
			s.TitleMuted.Render("Ctrl+S: post • Esc: cancel"))
	}
	sections = append(sections, "", v.renderStatus(), v.renderHelp())

	return styles.CenterView(lipgloss.JoinVertical(lipgloss.Left, sections...), v.width, v.height)
}

func (v *TaskView) renderDetails() string {
	s := v.styles
	t := v.task

	title := s.Title.Render(t.Title)
	if t.Blocked {
		title += "  " + s.Blocked.Render("BLOCKED")
	}

	assignee := v.refName(t.Assignee, v.lists.HasMember(t.Assignee))
	project := v.refName(t.Project, v.lists.HasProject(t.Project))

	desc := t.Description
	if desc == "" {
		desc = s.TitleMuted.Render("No description")
	}

	chatLine := s.TitleMuted.Render("no messages")
	if last, ok := v.chat.LastForTask(t.ID); ok {
		chatLine = fmt.Sprintf("%s: %s", last.Author, styles.Truncate(last.Text, 50))
	}

	row := func(label, value string) string {
		return s.TitleMuted.Render(fmt.Sprintf("%-10s", label)) + value
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		s.Header.Render(title),
		"",
		row("Column", t.Column.Title()),
		row("Priority", styles.PriorityStyle(t.Priority).Render(string(t.Priority))),
		row("Assignee", assignee),
		row("Project", project),
		row("Created", t.CreatedAt.Local().Format(time.DateTime)),
		row("Chat", chatLine),
		"",
		desc,
	)
}

// refName renders a reference name, marking ones no longer in their list
func (v *TaskView) refName(name string, listed bool) string {
	if name == "" {
		return v.styles.TitleMuted.Render("none")
	}
	if !listed {
		return v.styles.Stale.Render(name + " (removed)")
	}
	return name
}

func (v *TaskView) renderAttachments() string {
	s := v.styles
	lines := []string{s.ColumnTitle.Render(fmt.Sprintf("Attachments (%d)", len(v.task.Attachments)))}
	for i, a := range v.task.Attachments {
		line := fmt.Sprintf("%s  %s", a.Name, s.TitleMuted.Render(a.URL))
		if i == v.attachCursor {
			lines = append(lines, s.ListSelected.Render(line))
		} else {
			lines = append(lines, s.ListItem.Render(line))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (v *TaskView) renderComments() string {
	s := v.styles
	lines := []string{s.ColumnTitle.Render(fmt.Sprintf("Comments (%d)", len(v.task.Comments)))}
	for _, c := range v.task.Comments {
		lines = append(lines,
			s.HelpKey.Render(c.Author)+" "+s.TitleMuted.Render(c.CreatedAt.Local().Format(time.DateTime)),
			s.ListItem.Render(c.Text),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (v *TaskView) renderStatus() string {
	if v.status != "" {
		return v.styles.StatusError.Render(v.status)
	}
	return v.styles.StatusError.Render(saveStatus(v.tasks.SaveErr()))
}

func (v *TaskView) renderHelp() string {
	if w := styles.ContentWidth(v.width); w > 0 && w < 80 {
		return helpLine(v.styles, "?", "help")
	}
	return helpLine(v.styles,
		"e", "edit", "c", "comment", "u", "attach", "a", "assignee", "p", "project",
		"r", "priority", "<>", "move", "t", "chat", "esc", "back",
	)
}

func (v *TaskView) renderHelpPopup() string {
	s := v.styles
	items := []string{
		s.HelpKey.Render("e      ") + "  edit title and description",
		s.HelpKey.Render("c      ") + "  add comment",
		s.HelpKey.Render("u      ") + "  add attachment",
		s.HelpKey.Render("↑/↓ x  ") + "  select and remove attachment",
		s.HelpKey.Render("a      ") + "  cycle assignee",
		s.HelpKey.Render("p      ") + "  cycle project",
		s.HelpKey.Render("r      ") + "  cycle priority",
		s.HelpKey.Render("b      ") + "  toggle blocked",
		s.HelpKey.Render("< >    ") + "  move to previous/next column",
		s.HelpKey.Render("t      ") + "  open chat thread",
		s.HelpKey.Render("d      ") + "  delete task",
		s.HelpKey.Render("esc    ") + "  back to board",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, items...)...,
	)
	return popup(s, v.width, v.height, content)
}

func (v *TaskView) renderEditForm() string {
	s := v.styles
	inputWidth := clamp(styles.ContentWidth(v.width)-10, 20, 60)

	titleStyle, descStyle := s.Input, s.Input
	if v.editFocus == 0 {
		titleStyle = s.InputFocused
	} else {
		descStyle = s.InputFocused
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Edit Task"),
		"",
		"Title:",
		titleStyle.Width(inputWidth).Render(v.editTitle.View()),
		"",
		"Description:",
		descStyle.Width(inputWidth).Render(v.editDesc.View()),
		"",
		s.TitleMuted.Render("Tab: next • Ctrl+S: save • Esc: cancel"),
	)
	return popup(s, v.width, v.height, form)
}

func (v *TaskView) renderAttachForm() string {
	s := v.styles
	inputWidth := clamp(styles.ContentWidth(v.width)-10, 20, 60)

	nameStyle, urlStyle := s.Input, s.Input
	if v.attachFocus == 0 {
		nameStyle = s.InputFocused
	} else {
		urlStyle = s.InputFocused
	}

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("Attach Link"),
		"",
		"Name:",
		nameStyle.Width(inputWidth).Render(v.attachName.View()),
		"",
		"URL:",
		urlStyle.Width(inputWidth).Render(v.attachURL.View()),
		"",
		s.TitleMuted.Render("Tab: next • Enter: save • Esc: cancel"),
	)
	return popup(s, v.width, v.height, form)
}
