package views

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/kanban/internal/store"
	"github.com/tgienger/kanban/internal/ui/keys"
	"github.com/tgienger/kanban/internal/ui/styles"
)

type nameItem struct {
	name  string
	usage int
}

func (i nameItem) Title() string { return i.name }
func (i nameItem) Description() string {
	switch i.usage {
	case 0:
		return "not used"
	case 1:
		return "1 task"
	}
	return fmt.Sprintf("%d tasks", i.usage)
}
func (i nameItem) FilterValue() string { return i.name }

type nameDelegate struct {
	styles *styles.Styles
	width  int
}

func (d nameDelegate) Height() int                               { return 2 }
func (d nameDelegate) Spacing() int                              { return 1 }
func (d nameDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d nameDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	n, ok := item.(nameItem)
	if !ok {
		return
	}

	width := max(d.width-4, 20)

	titleStyle := d.styles.ListItem.Width(width)
	descStyle := d.styles.ListItem.Foreground(styles.Current.ForegroundDim).Width(width)
	if index == m.Index() {
		titleStyle = d.styles.ListSelected.Width(width)
		descStyle = d.styles.ListSelected.Foreground(styles.Current.ForegroundDim).Width(width)
	}

	fmt.Fprintf(w, "%s\n%s", titleStyle.Render(n.Title()), descStyle.Render(n.Description()))
}

// settingsTab selects which reference list is being edited
type settingsTab int

const (
	tabMembers settingsTab = iota
	tabProjects
)

func (t settingsTab) noun() string {
	if t == tabProjects {
		return "Project"
	}
	return "Team Member"
}

// SettingsView edits the team member and project lists
type SettingsView struct {
	lists    *store.ListStore
	tasks    *store.TaskStore
	list     list.Model
	delegate *nameDelegate
	styles   *styles.Styles
	keys     keys.KeyMap
	width    int
	height   int
	tab      settingsTab

	creating bool
	newName  textinput.Model

	confirmingDelete bool
	deleteTargetName string

	showHelpPopup bool
	status        string
}

func NewSettingsView(lists *store.ListStore, tasks *store.TaskStore) *SettingsView {
	s := styles.NewStyles()

	newName := textinput.New()
	newName.Placeholder = "Name"
	newName.CharLimit = 100

	delegate := &nameDelegate{styles: s, width: 80}

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.Styles.Title = s.Title
	l.SetShowHelp(false)

	v := &SettingsView{
		lists:    lists,
		tasks:    tasks,
		list:     l,
		delegate: delegate,
		styles:   s,
		keys:     keys.DefaultKeyMap(),
		newName:  newName,
	}
	v.refresh()
	return v
}

func (v *SettingsView) Init() tea.Cmd {
	return nil
}

// refresh reloads the active list with a usage count per name
func (v *SettingsView) refresh() {
	names := v.lists.Members()
	v.list.Title = "Team Members"
	if v.tab == tabProjects {
		names = v.lists.Projects()
		v.list.Title = "Projects"
	}

	usage := make(map[string]int)
	for _, t := range v.tasks.Tasks() {
		if v.tab == tabProjects {
			usage[t.Project]++
		} else {
			usage[t.Assignee]++
		}
	}

	items := make([]list.Item, len(names))
	for i, n := range names {
		items[i] = nameItem{name: n, usage: usage[n]}
	}
	v.list.SetItems(items)
}

func (v *SettingsView) add(name string) store.Result {
	if v.tab == tabProjects {
		return v.lists.AddProject(name)
	}
	return v.lists.AddMember(name)
}

func (v *SettingsView) remove(name string) store.Result {
	if v.tab == tabProjects {
		return v.lists.RemoveProject(name)
	}
	return v.lists.RemoveMember(name)
}

func (v *SettingsView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		// Use content width (capped at MaxWidth) for internal layout
		contentWidth := styles.ContentWidth(msg.Width)
		v.delegate.width = contentWidth
		v.list.SetSize(contentWidth-4, msg.Height-7)
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

		// Let the list own keys while the filter prompt is open
		if v.list.FilterState() == list.Filtering {
			break
		}

		v.status = ""
		switch {
		case msg.String() == "ctrl+c":
			return v, tea.Quit
		case key.Matches(msg, v.keys.Back), msg.String() == "q":
			if v.list.FilterState() == list.FilterApplied {
				v.list.ResetFilter()
				return v, nil
			}
			return v, back
		case key.Matches(msg, v.keys.Tab):
			v.tab = 1 - v.tab
			v.list.ResetFilter()
			v.list.Select(0)
			v.refresh()
			return v, nil
		case key.Matches(msg, v.keys.New):
			v.creating = true
			v.newName.Reset()
			v.newName.Focus()
			return v, textinput.Blink
		case key.Matches(msg, v.keys.Help):
			v.showHelpPopup = true
			return v, nil
		case key.Matches(msg, v.keys.Delete):
			if item, ok := v.list.SelectedItem().(nameItem); ok {
				v.confirmingDelete = true
				v.deleteTargetName = item.name
			}
			return v, nil
		}
	}

	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

func (v *SettingsView) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		v.confirmingDelete = false
		v.status = resultStatus(v.remove(v.deleteTargetName), "remove")
		v.refresh()
		return v, nil
	case "n", "N", "esc":
		v.confirmingDelete = false
		return v, nil
	}
	return v, nil
}

func (v *SettingsView) updateCreating(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.keys.Back):
		v.creating = false
		return v, nil

	case key.Matches(msg, v.keys.Enter), key.Matches(msg, v.keys.Save):
		name := strings.TrimSpace(v.newName.Value())
		if name == "" {
			return v, nil
		}
		res := v.add(name)
		v.creating = false
		if res == store.Rejected {
			v.status = fmt.Sprintf("%q is already listed", name)
		}
		v.refresh()
		return v, nil
	}

	var cmd tea.Cmd
	v.newName, cmd = v.newName.Update(msg)
	return v, cmd
}

// View renders the view
func (v *SettingsView) View() string {
	if v.showHelpPopup {
		return v.renderHelpPopup()
	}

	if v.confirmingDelete {
		return confirmDialog(v.styles, v.width, v.height, "Remove "+v.tab.noun()+"?", v.deleteTargetName)
	}

	if v.creating {
		return v.renderCreateForm()
	}

	body := v.list.View()
	if len(v.list.Items()) == 0 {
		body = v.renderEmpty()
	}

	status := v.styles.StatusError.Render(v.status)
	if v.status == "" {
		status = v.styles.StatusError.Render(saveStatus(v.lists.SaveErr()))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, v.renderTabs(), body, status, v.renderHelp())
	return styles.CenterView(content, v.width, v.height)
}

func (v *SettingsView) renderTabs() string {
	s := v.styles
	members, projects := s.Button, s.Button
	if v.tab == tabProjects {
		projects = s.ButtonFocused
	} else {
		members = s.ButtonFocused
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		members.Render(fmt.Sprintf("Team (%d)", len(v.lists.Members()))),
		" ",
		projects.Render(fmt.Sprintf("Projects (%d)", len(v.lists.Projects()))),
	)
}

func (v *SettingsView) renderEmpty() string {
	s := v.styles
	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		s.Title.Render("Nothing here"),
		s.TitleMuted.Render(fmt.Sprintf("Press 'n' to add a %s", strings.ToLower(v.tab.noun()))),
	)
}

func (v *SettingsView) renderCreateForm() string {
	s := v.styles
	contentWidth := styles.ContentWidth(v.width)

	// Dynamic input width based on content width
	inputWidth := clamp(contentWidth-6, 20, 50)

	form := lipgloss.JoinVertical(lipgloss.Left,
		s.Title.Render("New "+v.tab.noun()),
		"",
		"Name:",
		s.InputFocused.Width(inputWidth).Render(v.newName.View()),
		"",
		s.TitleMuted.Render("Enter: save • Esc: cancel"),
	)
	return popup(s, v.width, v.height, form)
}

func (v *SettingsView) renderHelp() string {
	contentWidth := styles.ContentWidth(v.width)
	// At narrow widths, show hint to press ? for help
	if contentWidth > 0 && contentWidth < 50 {
		return helpLine(v.styles, "?", "help")
	}
	return helpLine(v.styles, "tab", "switch list", "n", "add", "d", "remove", "/", "filter", "esc", "back")
}

func (v *SettingsView) renderHelpPopup() string {
	s := v.styles
	helpItems := []string{
		s.HelpKey.Render("tab") + "    switch between team and projects",
		s.HelpKey.Render("n") + "      add name",
		s.HelpKey.Render("d") + "      remove name; tasks keep it",
		s.HelpKey.Render("/") + "      filter",
		s.HelpKey.Render("esc") + "    back to board",
		"",
		s.TitleMuted.Render("Press any key to close"),
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		append([]string{s.Title.Render("Keyboard Shortcuts"), ""}, helpItems...)...,
	)
	return popup(s, v.width, v.height, content)
}
