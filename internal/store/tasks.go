package store

import (
	"iter"
	"slices"
	"strings"
	"sync"

	"github.com/tgienger/kanban/internal/models"
)

// TaskStore owns the task collection. Comments and attachments live inside their task
// and go away with it.
type TaskStore struct {
	mu    sync.RWMutex
	tasks []models.Task
	p     persister
	opts  options
}

// NewTaskStore loads the task collection from storage, falling back to the seed board
// when nothing usable is stored
func NewTaskStore(storage Storage, opts ...Option) *TaskStore {
	o := newOptions(opts)
	s := &TaskStore{
		p:    persister{storage: storage, key: TasksKey, log: o.log},
		opts: o,
	}

	tasks, ok := load[models.Task](storage, TasksKey, o.log)
	if ok {
		s.tasks = normalizeTasks(tasks, o)
	} else {
		s.tasks = models.SeedTasks(o.now())
	}
	o.log.Debug().Int("tasks", len(s.tasks)).Bool("seeded", !ok).Msg("task store loaded")
	return s
}

// normalizeTasks fills what older or hand-edited data may lack and drops repeated ids
func normalizeTasks(in []models.Task, o options) []models.Task {
	out := make([]models.Task, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, t := range in {
		if t.ID == "" || seen[t.ID] {
			o.log.Warn().Str("id", t.ID).Msg("dropping task with missing or duplicate id")
			continue
		}
		seen[t.ID] = true

		if !t.Priority.Valid() {
			t.Priority = models.PriorityMedium
		}
		if !t.Column.Valid() {
			t.Column = models.ColumnTodo
		}
		if t.Comments == nil {
			t.Comments = []models.Comment{}
		}
		if t.Attachments == nil {
			t.Attachments = []models.Attachment{}
		}
		out = append(out, t)
	}
	return out
}

// OnChange registers fn to run after every applied mutation
func (s *TaskStore) OnChange(fn func()) {
	s.p.onChange(fn)
}

// mutate runs fn against the current snapshot and, when it applies, swaps in and
// saves the snapshot fn returned
func (s *TaskStore) mutate(fn func(cur []models.Task) ([]models.Task, Result)) Result {
	s.mu.Lock()
	next, res := fn(s.tasks)
	if res == Applied {
		s.tasks = next
		s.p.save(next)
	}
	s.mu.Unlock()

	if res == Applied {
		s.p.notify()
	}
	return res
}

// update applies fn to a copy of the task with id and replaces it in a new snapshot
func (s *TaskStore) update(id string, fn func(t *models.Task) Result) Result {
	return s.mutate(func(cur []models.Task) ([]models.Task, Result) {
		i := indexOf(cur, id)
		if i < 0 {
			return nil, NotFound
		}
		t := cur[i]
		if res := fn(&t); res != Applied {
			return nil, res
		}
		next := slices.Clone(cur)
		next[i] = t
		return next, Applied
	})
}

func indexOf(tasks []models.Task, id string) int {
	return slices.IndexFunc(tasks, func(t models.Task) bool { return t.ID == id })
}

// Create appends a new task. An empty priority means medium.
func (s *TaskStore) Create(title string, column models.Column, priority models.Priority, description string) (models.Task, Result) {
	title = strings.TrimSpace(title)
	if priority == "" {
		priority = models.PriorityMedium
	}
	if title == "" || !column.Valid() || !priority.Valid() {
		return models.Task{}, Rejected
	}

	task := models.Task{
		ID:          s.opts.newID(),
		Title:       title,
		Description: strings.TrimSpace(description),
		Priority:    priority,
		Column:      column,
		Comments:    []models.Comment{},
		Attachments: []models.Attachment{},
		CreatedAt:   s.opts.now(),
	}
	res := s.mutate(func(cur []models.Task) ([]models.Task, Result) {
		if indexOf(cur, task.ID) >= 0 {
			s.opts.log.Error().Str("id", task.ID).Msg("generated task id already in use")
			return nil, Rejected
		}
		next := make([]models.Task, len(cur), len(cur)+1)
		copy(next, cur)
		return append(next, task), Applied
	})
	if res != Applied {
		return models.Task{}, res
	}
	return task, res
}

// Move places the task in another column. Tasks have no position within a column.
func (s *TaskStore) Move(id string, to models.Column) Result {
	if !to.Valid() {
		return Rejected
	}
	return s.update(id, func(t *models.Task) Result {
		t.Column = to
		return Applied
	})
}

// Remove deletes the task together with its comments and attachments. Chat messages
// that reference it are left in place.
func (s *TaskStore) Remove(id string) Result {
	return s.mutate(func(cur []models.Task) ([]models.Task, Result) {
		i := indexOf(cur, id)
		if i < 0 {
			return nil, NotFound
		}
		next := make([]models.Task, 0, len(cur)-1)
		next = append(next, cur[:i]...)
		next = append(next, cur[i+1:]...)
		return next, Applied
	})
}

// Patch merges the fields set in p into the task
func (s *TaskStore) Patch(id string, p models.TaskPatch) Result {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return Rejected
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return Rejected
	}
	if p.Column != nil && !p.Column.Valid() {
		return Rejected
	}

	return s.update(id, func(t *models.Task) Result {
		if p.Title != nil {
			t.Title = strings.TrimSpace(*p.Title)
		}
		if p.Description != nil {
			t.Description = strings.TrimSpace(*p.Description)
		}
		if p.Priority != nil {
			t.Priority = *p.Priority
		}
		if p.Column != nil {
			t.Column = *p.Column
		}
		if p.Assignee != nil {
			t.Assignee = strings.TrimSpace(*p.Assignee)
		}
		if p.Project != nil {
			t.Project = strings.TrimSpace(*p.Project)
		}
		if p.Blocked != nil {
			t.Blocked = *p.Blocked
		}
		return Applied
	})
}

// AppendComment adds a comment by the local user to the end of the task's thread
func (s *TaskStore) AppendComment(id, text string) (models.Comment, Result) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Comment{}, Rejected
	}

	c := models.Comment{
		ID:        s.opts.newID(),
		Text:      text,
		Author:    models.LocalAuthor,
		CreatedAt: s.opts.now(),
	}
	res := s.update(id, func(t *models.Task) Result {
		t.Comments = append(slices.Clone(t.Comments), c)
		return Applied
	})
	if res != Applied {
		return models.Comment{}, res
	}
	return c, res
}

// AppendAttachment records a named reference on the task
func (s *TaskStore) AppendAttachment(id, name, url string) (models.Attachment, Result) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Attachment{}, Rejected
	}

	a := models.Attachment{
		ID:        s.opts.newID(),
		Name:      name,
		URL:       url,
		CreatedAt: s.opts.now(),
	}
	res := s.update(id, func(t *models.Task) Result {
		t.Attachments = append(slices.Clone(t.Attachments), a)
		return Applied
	})
	if res != Applied {
		return models.Attachment{}, res
	}
	return a, res
}

// RemoveAttachment drops one attachment from the task
func (s *TaskStore) RemoveAttachment(id, attachmentID string) Result {
	return s.update(id, func(t *models.Task) Result {
		i := slices.IndexFunc(t.Attachments, func(a models.Attachment) bool { return a.ID == attachmentID })
		if i < 0 {
			return NotFound
		}
		t.Attachments = slices.Delete(slices.Clone(t.Attachments), i, i+1)
		return Applied
	})
}

// ByColumn yields the tasks in column, in collection order, from the snapshot current
// at the time of the call
func (s *TaskStore) ByColumn(column models.Column) iter.Seq[models.Task] {
	s.mu.RLock()
	snapshot := s.tasks
	s.mu.RUnlock()

	return func(yield func(models.Task) bool) {
		for _, t := range snapshot {
			if t.Column == column && !yield(t) {
				return
			}
		}
	}
}

// Tasks returns the current snapshot
func (s *TaskStore) Tasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.tasks)
}

// Get returns the task with id
func (s *TaskStore) Get(id string) (models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := indexOf(s.tasks, id); i >= 0 {
		return s.tasks[i], true
	}
	return models.Task{}, false
}

func (s *TaskStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// CountByColumn returns the number of tasks in each column
func (s *TaskStore) CountByColumn() map[models.Column]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[models.Column]int, len(models.Columns))
	for _, t := range s.tasks {
		counts[t.Column]++
	}
	return counts
}

// SaveErr returns the error from the most recent save, nil once a save succeeds
func (s *TaskStore) SaveErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.p.saveErr
}

// Flush rewrites the snapshot if the last save failed
func (s *TaskStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.p.saveErr == nil {
		return nil
	}
	return s.p.save(s.tasks)
}
