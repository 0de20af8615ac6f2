package views

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/tgienger/kanban/internal/models"
	"github.com/tgienger/kanban/internal/store"
)

// mapSettings is an in-memory Settings
type mapSettings map[string]string

func (m mapSettings) GetSetting(key string) (string, error) { return m[key], nil }
func (m mapSettings) SetSetting(key, value string) error    { m[key] = value; return nil }

type fixture struct {
	tasks *store.TaskStore
	chat  *store.ChatStore
	lists *store.ListStore
}

// newFixture returns stores holding the seeded board
func newFixture() fixture {
	storage := store.NewMemoryStorage()
	return fixture{
		tasks: store.NewTaskStore(storage),
		chat:  store.NewChatStore(storage),
		lists: store.NewListStore(storage),
	}
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
	ctrlS = tea.KeyMsg{Type: tea.KeyCtrlS}
)

var window = tea.WindowSizeMsg{Width: 120, Height: 40}

// press feeds keys to m in order and returns the command from the last one
func press(t *testing.T, m tea.Model, keys ...tea.KeyMsg) tea.Cmd {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(k)
	}
	return cmd
}

func msgOf(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, lo, hi, want int
	}{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
	}
	for _, tt := range tests {
		if got := clamp(tt.val, tt.lo, tt.hi); got != tt.want {
			t.Errorf("clamp(%d, %d, %d) = %d, want %d", tt.val, tt.lo, tt.hi, got, tt.want)
		}
	}
}

func TestResultStatus(t *testing.T) {
	if got := resultStatus(store.Applied, "move"); got != "" {
		t.Errorf("Applied status = %q, want empty", got)
	}
	if got := resultStatus(store.NotFound, "move"); !strings.Contains(got, "no longer exists") {
		t.Errorf("NotFound status = %q", got)
	}
}

func TestCycleName(t *testing.T) {
	names := []string{"Alex", "Jordan"}
	tests := []struct {
		current string
		want    string
	}{
		{"", "Alex"},
		{"Alex", "Jordan"},
		{"Jordan", ""},
		{"Gone", ""},
	}
	for _, tt := range tests {
		if got := cycleName(tt.current, names); got != tt.want {
			t.Errorf("cycleName(%q) = %q, want %q", tt.current, got, tt.want)
		}
	}
	if got := cycleName("", nil); got != "" {
		t.Errorf("cycleName with no names = %q, want empty", got)
	}
}

func TestBoardView_Columns(t *testing.T) {
	f := newFixture()
	v := NewBoardView(f.tasks, f.chat, mapSettings{})
	v.Update(window)

	counts := f.tasks.CountByColumn()
	for i, col := range models.Columns {
		if len(v.columns[i]) != counts[col] {
			t.Errorf("column %s shows %d tasks, store has %d", col, len(v.columns[i]), counts[col])
		}
	}
	if !strings.Contains(v.View(), "Design homepage layout") {
		t.Error("board does not render seeded task")
	}
}

func TestBoardView_RestoresLastColumn(t *testing.T) {
	f := newFixture()
	settings := mapSettings{lastColumnSetting: string(models.ColumnDone)}
	v := NewBoardView(f.tasks, f.chat, settings)
	if v.focus != 2 {
		t.Fatalf("focus = %d, want 2", v.focus)
	}

	press(t, v, runes("h"))
	if v.focus != 1 {
		t.Fatalf("focus after left = %d, want 1", v.focus)
	}
	if settings[lastColumnSetting] != string(models.ColumnInProgress) {
		t.Errorf("saved column = %q, want in-progress", settings[lastColumnSetting])
	}
}

func TestBoardView_CreateTask(t *testing.T) {
	f := newFixture()
	v := NewBoardView(f.tasks, f.chat, mapSettings{})
	v.Update(window)
	press(t, v, runes("l")) // in-progress
	before := f.tasks.Len()

	press(t, v, runes("n"), runes("Ship it"), tab, runes("soon"), ctrlS)

	if v.creating {
		t.Fatal("form still open after save")
	}
	if f.tasks.Len() != before+1 {
		t.Fatalf("Len() = %d, want %d", f.tasks.Len(), before+1)
	}
	task, ok := v.selected()
	if !ok || task.Title != "Ship it" {
		t.Fatalf("selected = %+v, want the new task", task)
	}
	if task.Column != models.ColumnInProgress || task.Priority != models.PriorityMedium || task.Description != "soon" {
		t.Errorf("created %+v", task)
	}
}

func TestBoardView_CreateTaskNeedsTitle(t *testing.T) {
	f := newFixture()
	v := NewBoardView(f.tasks, f.chat, mapSettings{})
	before := f.tasks.Len()

	press(t, v, runes("n"), runes("   "), ctrlS)

	if !v.creating {
		t.Fatal("form closed on blank title")
	}
	if f.tasks.Len() != before {
		t.Fatalf("blank title created a task")
	}

	press(t, v, esc)
	if v.creating {
		t.Fatal("esc did not close the form")
	}
}

func TestBoardView_MoveFollowsTask(t *testing.T) {
	f := newFixture()
	v := NewBoardView(f.tasks, f.chat, mapSettings{})

	press(t, v, runes(">"))

	task, _ := f.tasks.Get("1")
	if task.Column != models.ColumnInProgress {
		t.Fatalf("task 1 column = %s, want in-progress", task.Column)
	}
	if sel, _ := v.selected(); sel.ID != "1" {
		t.Errorf("selection = %q, want task 1", sel.ID)
	}

	// Moving left out of the first column is a no-op
	press(t, v, runes("<"), runes("<"))
	task, _ = f.tasks.Get("1")
	if task.Column != models.ColumnTodo {
		t.Fatalf("task 1 column = %s, want todo", task.Column)
	}
}

func TestBoardView_ToggleBlocked(t *testing.T) {
	f := newFixture()
	v := NewBoardView(f.tasks, f.chat, mapSettings{})

	press(t, v, runes("b"))
	if task, _ := f.tasks.Get("1"); !task.Blocked {
		t.Fatal("task not blocked")
	}
	press(t, v, runes("b"))
	if task, _ := f.tasks.Get("1"); task.Blocked {
		t.Fatal("task still blocked")
	}
}

func TestBoardView_DeleteConfirm(t *testing.T) {
	f := newFixture()
	v := NewBoardView(f.tasks, f.chat, mapSettings{})

	press(t, v, runes("d"), runes("n"))
	if _, ok := f.tasks.Get("1"); !ok {
		t.Fatal("declined delete removed the task")
	}

	press(t, v, runes("d"), runes("y"))
	if _, ok := f.tasks.Get("1"); ok {
		t.Fatal("confirmed delete kept the task")
	}
	if sel, _ := v.selected(); sel.ID != "2" {
		t.Errorf("selection = %q, want task 2", sel.ID)
	}
}

func TestBoardView_Navigation(t *testing.T) {
	f := newFixture()
	v := NewBoardView(f.tasks, f.chat, mapSettings{})

	if msg, ok := msgOf(press(t, v, runes("j"), enter)).(OpenTask); !ok || msg.TaskID != "2" {
		t.Errorf("enter = %#v, want OpenTask for 2", msg)
	}
	if msg, ok := msgOf(press(t, v, runes("c"))).(OpenChat); !ok || msg.TaskID != "2" {
		t.Errorf("c = %#v, want OpenChat for 2", msg)
	}
	if _, ok := msgOf(press(t, v, runes("s"))).(OpenSettings); !ok {
		t.Error("s did not open settings")
	}
}

func TestBoardView_RefreshesOnStoreChange(t *testing.T) {
	f := newFixture()
	v := NewBoardView(f.tasks, f.chat, mapSettings{})

	f.tasks.Create("From elsewhere", models.ColumnDone, models.PriorityLow, "")
	v.Update(StoreChanged{})

	if len(v.columns[2]) != 2 {
		t.Fatalf("done column has %d tasks, want 2", len(v.columns[2]))
	}
	v.Update(window)
	if !strings.Contains(v.View(), "6 tasks") {
		t.Error("header does not count the new task")
	}
}

func TestTaskView_CycleFields(t *testing.T) {
	f := newFixture()
	v := NewTaskView(f.tasks, f.chat, f.lists, "1")

	press(t, v, runes("a"), runes("p"), runes("r"))

	task, _ := f.tasks.Get("1")
	if task.Assignee != "Jordan" {
		t.Errorf("Assignee = %q, want Jordan", task.Assignee)
	}
	if task.Project != "Mobile App" {
		t.Errorf("Project = %q, want Mobile App", task.Project)
	}
	if task.Priority != models.PriorityLow {
		t.Errorf("Priority = %q, want low", task.Priority)
	}
}

func TestTaskView_StaleNames(t *testing.T) {
	f := newFixture()
	f.lists.RemoveMember("Alex")
	v := NewTaskView(f.tasks, f.chat, f.lists, "1")
	v.Update(window)

	if !strings.Contains(v.View(), "Alex (removed)") {
		t.Error("removed member is not marked")
	}
	if task, _ := f.tasks.Get("1"); task.Assignee != "Alex" {
		t.Errorf("Assignee = %q, stale name should be kept", task.Assignee)
	}
}

func TestTaskView_Comment(t *testing.T) {
	f := newFixture()
	v := NewTaskView(f.tasks, f.chat, f.lists, "1")

	press(t, v, runes("c"), ctrlS)
	if v.mode != taskModeComment {
		t.Fatal("blank comment closed the input")
	}

	press(t, v, runes("looks good"), ctrlS)
	if v.mode != taskModeView {
		t.Fatal("comment input still open")
	}
	task, _ := f.tasks.Get("1")
	if len(task.Comments) != 1 || task.Comments[0].Text != "looks good" || task.Comments[0].Author != models.LocalAuthor {
		t.Fatalf("Comments = %+v", task.Comments)
	}
}

func TestTaskView_Attachments(t *testing.T) {
	f := newFixture()
	v := NewTaskView(f.tasks, f.chat, f.lists, "1")

	press(t, v, runes("u"), runes("design"), enter, runes("https://example.com/design"), enter)
	press(t, v, runes("u"), runes("notes"), enter, enter)

	task, _ := f.tasks.Get("1")
	if len(task.Attachments) != 2 {
		t.Fatalf("Attachments = %+v", task.Attachments)
	}
	if task.Attachments[0].URL != "https://example.com/design" {
		t.Errorf("URL = %q", task.Attachments[0].URL)
	}
	if v.attachCursor != 1 {
		t.Fatalf("attachCursor = %d, want 1", v.attachCursor)
	}

	press(t, v, runes("k"), runes("x"))
	task, _ = f.tasks.Get("1")
	if len(task.Attachments) != 1 || task.Attachments[0].Name != "notes" {
		t.Fatalf("Attachments after remove = %+v", task.Attachments)
	}
}

func TestTaskView_Edit(t *testing.T) {
	f := newFixture()
	v := NewTaskView(f.tasks, f.chat, f.lists, "2")

	press(t, v, runes("e"), runes("!"), tab, runes("details"), ctrlS)

	task, _ := f.tasks.Get("2")
	if task.Title != "Set up project repo!" || task.Description != "details" {
		t.Fatalf("task = %+v", task)
	}
}

func TestTaskView_Delete(t *testing.T) {
	f := newFixture()
	v := NewTaskView(f.tasks, f.chat, f.lists, "3")

	cmd := press(t, v, runes("d"), runes("y"))
	if _, ok := f.tasks.Get("3"); ok {
		t.Fatal("task not removed")
	}
	if _, ok := msgOf(cmd).(BackToBoard); !ok {
		t.Error("delete did not return to the board")
	}
}

func TestTaskView_RemovedElsewhere(t *testing.T) {
	f := newFixture()
	v := NewTaskView(f.tasks, f.chat, f.lists, "3")

	f.tasks.Remove("3")
	v.Update(StoreChanged{})
	if !v.gone {
		t.Fatal("view did not notice removal")
	}
	if _, ok := msgOf(press(t, v, runes("r"))).(BackToBoard); !ok {
		t.Error("key on removed task did not return to the board")
	}
}

func TestChatView_SendToOpenThread(t *testing.T) {
	f := newFixture()
	v := NewChatView(f.tasks, f.chat, "4")
	v.Update(window)

	if !v.typing {
		t.Fatal("opening a thread should focus the input")
	}

	press(t, v, runes("hello"), enter)

	thread := f.chat.ByTask("4")
	if len(thread) != 1 || thread[0].Text != "hello" || thread[0].Author != models.LocalAuthor {
		t.Fatalf("thread = %+v", thread)
	}
	if v.input.Value() != "" {
		t.Errorf("input = %q, want cleared", v.input.Value())
	}
	// the thread with the newest message ranks first and stays selected
	if sel, _ := v.selected(); sel.ID != "4" || v.cursor != 0 {
		t.Errorf("selected %q at %d, want 4 at 0", sel.ID, v.cursor)
	}
}

func TestChatView_BlankMessage(t *testing.T) {
	f := newFixture()
	v := NewChatView(f.tasks, f.chat, "1")

	press(t, v, runes("  "), enter)
	if f.chat.Len() != 0 {
		t.Fatalf("blank message sent")
	}
}

func TestChatView_Browse(t *testing.T) {
	f := newFixture()
	f.chat.Send("5", "done?", "Morgan")
	v := NewChatView(f.tasks, f.chat, "")
	v.Update(window)

	if v.typing {
		t.Fatal("input focused without a thread")
	}
	if sel, _ := v.selected(); sel.ID != "5" {
		t.Fatalf("first thread = %q, want 5", sel.ID)
	}
	if !strings.Contains(v.View(), "done?") {
		t.Error("last message not shown")
	}

	press(t, v, enter)
	if !v.typing {
		t.Fatal("enter did not focus the input")
	}
	press(t, v, esc)
	if v.typing {
		t.Fatal("esc did not leave the input")
	}
	if _, ok := msgOf(press(t, v, esc)).(BackToBoard); !ok {
		t.Error("esc did not return to the board")
	}
}

func TestSettingsView_AddAndRemove(t *testing.T) {
	f := newFixture()
	v := NewSettingsView(f.lists, f.tasks)
	v.Update(window)

	press(t, v, runes("n"), runes("Riley"), enter)
	if !f.lists.HasMember("Riley") {
		t.Fatal("member not added")
	}

	press(t, v, runes("n"), runes("Riley"), enter)
	if !strings.Contains(v.status, "already listed") {
		t.Errorf("status = %q, want duplicate notice", v.status)
	}

	press(t, v, tab)
	if v.tab != tabProjects {
		t.Fatal("tab did not switch lists")
	}
	press(t, v, runes("d"), runes("y"))
	if f.lists.HasProject(models.DefaultProjects[0]) {
		t.Fatalf("project %q not removed", models.DefaultProjects[0])
	}
	// tasks keep the removed name
	if task, _ := f.tasks.Get("1"); task.Project != models.DefaultProjects[0] {
		t.Errorf("Project = %q", task.Project)
	}
}

func TestSettingsView_Usage(t *testing.T) {
	f := newFixture()
	v := NewSettingsView(f.lists, f.tasks)

	item, ok := v.list.Items()[0].(nameItem)
	if !ok || item.name != "Alex" || item.usage != 1 {
		t.Fatalf("first item = %+v", item)
	}
	if item.Description() != "1 task" {
		t.Errorf("Description() = %q", item.Description())
	}
}
