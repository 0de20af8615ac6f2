package store

import (
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/tgienger/kanban/internal/models"
)

// nameList is an insertion-ordered set of names saved under its own key
type nameList struct {
	names []string
	p     persister
}

func loadNameList(storage Storage, key string, defaults []string, o options) nameList {
	l := nameList{p: persister{storage: storage, key: key, log: o.log}}
	names, ok := load[string](storage, key, o.log)
	if !ok {
		l.names = slices.Clone(defaults)
		return l
	}

	l.names = make([]string, 0, len(names))
	for _, n := range names {
		if n != "" && !slices.Contains(l.names, n) {
			l.names = append(l.names, n)
		}
	}
	return l
}

func (l *nameList) add(name string) Result {
	name = strings.TrimSpace(name)
	if name == "" || slices.Contains(l.names, name) {
		return Rejected
	}
	next := make([]string, len(l.names), len(l.names)+1)
	copy(next, l.names)
	l.names = append(next, name)
	l.p.save(l.names)
	return Applied
}

func (l *nameList) remove(name string) Result {
	i := slices.Index(l.names, name)
	if i < 0 {
		return NotFound
	}
	l.names = slices.Delete(slices.Clone(l.names), i, i+1)
	l.p.save(l.names)
	return Applied
}

// ListStore holds the team members and projects offered when assigning tasks. The
// lists are advisory: removing a name leaves tasks that carry it unchanged.
type ListStore struct {
	mu       sync.RWMutex
	members  nameList
	projects nameList
}

func NewListStore(storage Storage, opts ...Option) *ListStore {
	o := newOptions(opts)
	s := &ListStore{
		members:  loadNameList(storage, MembersKey, models.DefaultTeamMembers, o),
		projects: loadNameList(storage, ProjectsKey, models.DefaultProjects, o),
	}
	o.log.Debug().
		Int("members", len(s.members.names)).
		Int("projects", len(s.projects.names)).
		Msg("reference lists loaded")
	return s
}

// OnChange registers fn to run after any change to either list
func (s *ListStore) OnChange(fn func()) {
	s.members.p.onChange(fn)
	s.projects.p.onChange(fn)
}

func (s *ListStore) apply(l *nameList, op func(*nameList, string) Result, name string) Result {
	s.mu.Lock()
	res := op(l, name)
	s.mu.Unlock()
	if res == Applied {
		l.p.notify()
	}
	return res
}

// AddMember appends name unless it is empty or already listed
func (s *ListStore) AddMember(name string) Result {
	return s.apply(&s.members, (*nameList).add, name)
}

func (s *ListStore) RemoveMember(name string) Result {
	return s.apply(&s.members, (*nameList).remove, name)
}

// AddProject appends name unless it is empty or already listed
func (s *ListStore) AddProject(name string) Result {
	return s.apply(&s.projects, (*nameList).add, name)
}

func (s *ListStore) RemoveProject(name string) Result {
	return s.apply(&s.projects, (*nameList).remove, name)
}

func (s *ListStore) Members() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.members.names)
}

func (s *ListStore) Projects() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.projects.names)
}

func (s *ListStore) HasMember(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.members.names, name)
}

func (s *ListStore) HasProject(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.projects.names, name)
}

// SaveErr returns the most recent save error of either list
func (s *ListStore) SaveErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return errors.Join(s.members.p.saveErr, s.projects.p.saveErr)
}

// Flush rewrites whichever list failed its last save
func (s *ListStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	for _, l := range []*nameList{&s.members, &s.projects} {
		if l.p.saveErr != nil {
			errs = append(errs, l.p.save(l.names))
		}
	}
	return errors.Join(errs...)
}
