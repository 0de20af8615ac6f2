package store

import (
	"slices"
	"strings"
	"sync"

	"github.com/tgienger/kanban/internal/models"
)

// ChatStore keeps chat messages apart from tasks: threads are read across all tasks
// by recency, and a task's removal does not touch its messages.
type ChatStore struct {
	mu       sync.RWMutex
	messages []models.ChatMessage
	p        persister
	opts     options
}

func NewChatStore(storage Storage, opts ...Option) *ChatStore {
	o := newOptions(opts)
	s := &ChatStore{
		p:    persister{storage: storage, key: ChatKey, log: o.log},
		opts: o,
	}

	messages, ok := load[models.ChatMessage](storage, ChatKey, o.log)
	if !ok {
		messages = []models.ChatMessage{}
	}
	s.messages = messages
	o.log.Debug().Int("messages", len(s.messages)).Msg("chat store loaded")
	return s
}

func (s *ChatStore) OnChange(fn func()) {
	s.p.onChange(fn)
}

// Send appends a message to the task's thread. An empty author means the local user.
// An empty task id is rejected like blank text; any other id is accepted without
// checking the task store.
func (s *ChatStore) Send(taskID, text, author string) (models.ChatMessage, Result) {
	text = strings.TrimSpace(text)
	if text == "" || taskID == "" {
		return models.ChatMessage{}, Rejected
	}
	if author == "" {
		author = models.LocalAuthor
	}

	msg := models.ChatMessage{
		ID:        s.opts.newID(),
		TaskID:    taskID,
		Text:      text,
		Author:    author,
		CreatedAt: s.opts.now(),
	}

	s.mu.Lock()
	next := make([]models.ChatMessage, len(s.messages), len(s.messages)+1)
	copy(next, s.messages)
	s.messages = append(next, msg)
	s.p.save(s.messages)
	s.mu.Unlock()

	s.p.notify()
	return msg, Applied
}

// ByTask returns the task's thread in the order messages were sent
func (s *ChatStore) ByTask(taskID string) []models.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var thread []models.ChatMessage
	for _, m := range s.messages {
		if m.TaskID == taskID {
			thread = append(thread, m)
		}
	}
	return thread
}

// LastForTask returns the most recently sent message for the task
func (s *ChatStore) LastForTask(taskID string) (models.ChatMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].TaskID == taskID {
			return s.messages[i], true
		}
	}
	return models.ChatMessage{}, false
}

// Rank orders tasks for the chat list: tasks with messages first, most recent last
// message first; tasks without messages keep their relative order. Equal timestamps
// fall back to send order.
func (s *ChatStore) Rank(tasks []models.Task) []models.Task {
	s.mu.RLock()
	last := make(map[string]int, len(tasks))
	for i, m := range s.messages {
		last[m.TaskID] = i
	}
	messages := s.messages
	s.mu.RUnlock()

	ranked := slices.Clone(tasks)
	slices.SortStableFunc(ranked, func(a, b models.Task) int {
		ai, aok := last[a.ID]
		bi, bok := last[b.ID]
		switch {
		case aok && bok:
			if c := messages[bi].CreatedAt.Compare(messages[ai].CreatedAt); c != 0 {
				return c
			}
			return bi - ai
		case aok:
			return -1
		case bok:
			return 1
		}
		return 0
	})
	return ranked
}

// Messages returns every stored message in send order
func (s *ChatStore) Messages() []models.ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.messages)
}

func (s *ChatStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

func (s *ChatStore) SaveErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.p.saveErr
}

// Flush rewrites the snapshot if the last save failed
func (s *ChatStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.p.saveErr == nil {
		return nil
	}
	return s.p.save(s.messages)
}
