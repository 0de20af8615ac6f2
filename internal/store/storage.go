// Package store holds the board's live state: tasks with their comments and
// attachments, per-task chat threads, and the team member and project lists.
//
// Every store keeps an immutable snapshot of its collection. A mutation builds a
// new snapshot, writes the whole collection to its storage key, then publishes it.
// Unknown ids and invalid input never raise; they are reported through Result.
package store

import (
	"encoding/json"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Storage keys, one JSON array each
const (
	TasksKey    = "kanban-tasks"
	ChatKey     = "kanban-chat-messages"
	MembersKey  = "kanban-team-members"
	ProjectsKey = "kanban-projects"
)

// Storage is a keyed blob store. Load returns "" when nothing is stored under key.
type Storage interface {
	Load(key string) (string, error)
	Save(key, value string) error
}

// Result reports what a mutation did
type Result int

const (
	// Applied means the snapshot advanced and a save was attempted
	Applied Result = iota
	// NotFound means an id did not resolve; nothing changed
	NotFound
	// Rejected means the input failed validation; nothing changed
	Rejected
)

// Changed reports whether the mutation produced a new snapshot
func (r Result) Changed() bool {
	return r == Applied
}

func (r Result) String() string {
	switch r {
	case Applied:
		return "applied"
	case NotFound:
		return "not found"
	case Rejected:
		return "rejected"
	}
	return "unknown"
}

// Option configures a store
type Option func(*options)

type options struct {
	log   zerolog.Logger
	now   func() time.Time
	newID func() string
}

// WithLogger sets the logger used for load fallbacks and save failures
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithClock replaces the timestamp source
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDs replaces the id generator
func WithIDs(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

func newOptions(opts []Option) options {
	o := options{
		log:   zerolog.Nop(),
		now:   now,
		newID: newID,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// now drops the monotonic reading so timestamps survive a JSON round trip unchanged
func now() time.Time {
	return time.Now().UTC().Round(0)
}

// newID returns a UUIDv7: clock-derived and increasing within the process
func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// load decodes the JSON array stored under key. ok is false when the key is
// absent, unreadable or corrupt, in which case the caller falls back to defaults.
func load[T any](s Storage, key string, log zerolog.Logger) (items []T, ok bool) {
	raw, err := s.Load(key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("read failed, using defaults")
		return nil, false
	}
	if raw == "" {
		log.Debug().Str("key", key).Msg("nothing stored, using defaults")
		return nil, false
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("corrupt data, using defaults")
		return nil, false
	}
	if items == nil {
		log.Warn().Str("key", key).Msg("stored value is not an array, using defaults")
		return nil, false
	}
	return items, true
}

// persister writes one collection to one key and fans out change notifications
type persister struct {
	storage Storage
	key     string
	log     zerolog.Logger

	// guarded by the owning store's lock
	saveErr error

	lmu       sync.Mutex
	listeners []func()
}

// save overwrites the key with v. A failure is kept for Flush and logged; it never
// undoes the in-memory mutation.
func (p *persister) save(v any) error {
	data, err := json.Marshal(v)
	if err == nil {
		err = p.storage.Save(p.key, string(data))
	}
	if err != nil {
		p.log.Error().Err(err).Str("key", p.key).Msg("save failed, durable copy is stale")
	}
	p.saveErr = err
	return err
}

func (p *persister) onChange(fn func()) {
	p.lmu.Lock()
	p.listeners = append(p.listeners, fn)
	p.lmu.Unlock()
}

func (p *persister) notify() {
	p.lmu.Lock()
	listeners := slices.Clone(p.listeners)
	p.lmu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

// MemoryStorage is a map-backed Storage
type MemoryStorage struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{data: make(map[string]string)}
}

func (m *MemoryStorage) Load(key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.data[key], nil
}

func (m *MemoryStorage) Save(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Keys returns the stored keys in sorted order
func (m *MemoryStorage) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.data))
}
