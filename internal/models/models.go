package models

import "time"

// LocalAuthor is the author recorded for comments and messages written on this device
const LocalAuthor = "You"

// Column is one of the fixed workflow stages of the board
type Column string

const (
	ColumnTodo       Column = "todo"
	ColumnInProgress Column = "in-progress"
	ColumnDone       Column = "done"
)

// Columns lists the board columns in workflow order
var Columns = []Column{ColumnTodo, ColumnInProgress, ColumnDone}

// Valid reports whether c is one of the board columns
func (c Column) Valid() bool {
	switch c {
	case ColumnTodo, ColumnInProgress, ColumnDone:
		return true
	}
	return false
}

// Title returns the display name of the column
func (c Column) Title() string {
	switch c {
	case ColumnTodo:
		return "To Do"
	case ColumnInProgress:
		return "In Progress"
	case ColumnDone:
		return "Done"
	}
	return string(c)
}

// Next returns the column after c, or c when it is the last one
func (c Column) Next() Column {
	for i, col := range Columns {
		if col == c && i < len(Columns)-1 {
			return Columns[i+1]
		}
	}
	return c
}

// Prev returns the column before c, or c when it is the first one
func (c Column) Prev() Column {
	for i, col := range Columns {
		if col == c && i > 0 {
			return Columns[i-1]
		}
	}
	return c
}

// Priority is the urgency of a task
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists priorities from lowest to highest
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Next cycles through the priorities, wrapping after high
func (p Priority) Next() Priority {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	}
	return PriorityLow
}

// Comment is an immutable note on a task
type Comment struct {
	ID        string    `json:"id" yaml:"id"`
	Text      string    `json:"text" yaml:"text"`
	Author    string    `json:"author" yaml:"author"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
}

// Attachment references external content by locator; no binary data is kept
type Attachment struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	URL       string    `json:"url" yaml:"url"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
}

// Task is a single card on the board. Assignee and Project are plain names and may
// refer to entries that no longer exist in the reference lists.
type Task struct {
	ID          string       `json:"id" yaml:"id"`
	Title       string       `json:"title" yaml:"title"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Priority    Priority     `json:"priority" yaml:"priority"`
	Column      Column       `json:"columnId" yaml:"column"`
	Assignee    string       `json:"assignee,omitempty" yaml:"assignee,omitempty"`
	Project     string       `json:"project,omitempty" yaml:"project,omitempty"`
	Blocked     bool         `json:"blocked,omitempty" yaml:"blocked,omitempty"`
	Comments    []Comment    `json:"comments" yaml:"comments"`
	Attachments []Attachment `json:"attachments" yaml:"attachments"`
	CreatedAt   time.Time    `json:"createdAt" yaml:"created_at"`
}

// TaskPatch describes a partial task update. Nil fields are left untouched; a pointer
// to the zero value clears an optional field.
type TaskPatch struct {
	Title       *string
	Description *string
	Priority    *Priority
	Column      *Column
	Assignee    *string
	Project     *string
	Blocked     *bool
}

// Empty reports whether the patch sets no field
func (p TaskPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Priority == nil &&
		p.Column == nil && p.Assignee == nil && p.Project == nil && p.Blocked == nil
}

// ChatMessage belongs to a task thread by id only
type ChatMessage struct {
	ID        string    `json:"id" yaml:"id"`
	TaskID    string    `json:"taskId" yaml:"task_id"`
	Text      string    `json:"text" yaml:"text"`
	Author    string    `json:"author" yaml:"author"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
}
