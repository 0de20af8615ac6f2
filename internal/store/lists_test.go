package store

import (
	"errors"
	"reflect"
	"testing"

	"github.com/tgienger/kanban/internal/models"
)

func TestListStore_Defaults(t *testing.T) {
	s := NewListStore(NewMemoryStorage())
	if !reflect.DeepEqual(s.Members(), models.DefaultTeamMembers) {
		t.Fatalf("Members() = %v, want defaults", s.Members())
	}
	if !reflect.DeepEqual(s.Projects(), models.DefaultProjects) {
		t.Fatalf("Projects() = %v, want defaults", s.Projects())
	}

	// defaults must not be shared with the package-level slices
	s.AddMember("Riley")
	if len(models.DefaultTeamMembers) != 6 {
		t.Fatal("AddMember() modified DefaultTeamMembers")
	}
}

func TestListStore_AddMember(t *testing.T) {
	s := NewListStore(NewMemoryStorage())

	tests := []struct {
		name string
		in   string
		want Result
	}{
		{"new", "Riley", Applied},
		{"trimmed", "  Quinn ", Applied},
		{"duplicate", "Alex", Rejected},
		{"duplicate after trim", " Riley ", Rejected},
		{"case differs", "alex", Applied},
		{"blank", "   ", Rejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.AddMember(tt.in); got != tt.want {
				t.Fatalf("AddMember(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}

	members := s.Members()
	want := append(append([]string{}, models.DefaultTeamMembers...), "Riley", "Quinn", "alex")
	if !reflect.DeepEqual(members, want) {
		t.Fatalf("Members() = %v, want %v", members, want)
	}
	if !s.HasMember("Quinn") || s.HasMember("  Quinn ") {
		t.Fatal("HasMember() should match the trimmed name exactly")
	}
}

func TestListStore_RemoveProject(t *testing.T) {
	s := NewListStore(NewMemoryStorage())

	if res := s.RemoveProject("Marketing"); res != Applied {
		t.Fatalf("RemoveProject() = %v, want applied", res)
	}
	if s.HasProject("Marketing") {
		t.Fatal("Marketing still listed")
	}
	if res := s.RemoveProject("Marketing"); res != NotFound {
		t.Fatalf("second RemoveProject() = %v, want not found", res)
	}
	if res := s.RemoveProject("marketing"); res != NotFound {
		t.Fatal("removal must match exactly")
	}
	if res := s.AddProject("Marketing"); res != Applied {
		t.Fatal("a removed project can be added again")
	}
	projects := s.Projects()
	if projects[len(projects)-1] != "Marketing" {
		t.Fatalf("re-added project should be last, got %v", projects)
	}
}

func TestListStore_PersistsSeparateKeys(t *testing.T) {
	m := NewMemoryStorage()
	s := NewListStore(m)
	s.AddMember("Riley")
	s.RemoveProject("Infrastructure")

	members, _ := m.Load(MembersKey)
	if members != `["Alex","Jordan","Sam","Taylor","Morgan","Casey","Riley"]` {
		t.Fatalf("stored members = %s", members)
	}
	projects, _ := m.Load(ProjectsKey)
	if projects != `["Website Redesign","Mobile App","API Platform","Marketing"]` {
		t.Fatalf("stored projects = %s", projects)
	}

	reloaded := NewListStore(m)
	if !reflect.DeepEqual(reloaded.Members(), s.Members()) || !reflect.DeepEqual(reloaded.Projects(), s.Projects()) {
		t.Fatal("reload mismatch")
	}
}

func TestListStore_LoadDropsBlanksAndDuplicates(t *testing.T) {
	m := NewMemoryStorage()
	m.Save(MembersKey, `["Alex","","Alex","Sam"]`)
	m.Save(ProjectsKey, `not json`)

	s := NewListStore(m)
	if !reflect.DeepEqual(s.Members(), []string{"Alex", "Sam"}) {
		t.Fatalf("Members() = %v, want [Alex Sam]", s.Members())
	}
	if !reflect.DeepEqual(s.Projects(), models.DefaultProjects) {
		t.Fatalf("Projects() = %v, want defaults after corrupt data", s.Projects())
	}
}

func TestListStore_OnChangeAndFlush(t *testing.T) {
	storage := newFlakyStorage()
	s := NewListStore(storage)

	var calls int
	s.OnChange(func() { calls++ })

	storage.setFailing(true)
	s.AddProject("Payments")
	s.AddMember("Alex") // duplicate, no change
	if calls != 1 {
		t.Fatalf("listener called %d times, want 1", calls)
	}
	if !errors.Is(s.SaveErr(), errDiskFull) {
		t.Fatalf("SaveErr() = %v, want %v", s.SaveErr(), errDiskFull)
	}

	storage.setFailing(false)
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush() = %v", err)
	}
	if s.SaveErr() != nil {
		t.Fatal("SaveErr() should be nil after flush")
	}
	if !NewListStore(storage).HasProject("Payments") {
		t.Fatal("flushed project missing after reload")
	}
}
