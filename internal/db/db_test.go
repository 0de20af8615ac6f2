package db

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := New(filepath.Join(t.TempDir(), "nested", "kanban.db"))
	if err != nil {
		t.Fatalf("New() err = %v, want nil", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func TestBlobs_LoadMissing(t *testing.T) {
	database := openTestDB(t)

	got, err := database.Load("kanban-tasks")
	if err != nil {
		t.Fatalf("Load() err = %v, want nil", err)
	}
	if got != "" {
		t.Fatalf("Load() = %q, want empty", got)
	}
}

func TestBlobs_SaveOverwrites(t *testing.T) {
	database := openTestDB(t)

	if err := database.Save("kanban-projects", `["a"]`); err != nil {
		t.Fatalf("Save() err = %v", err)
	}
	if err := database.Save("kanban-projects", `["a","b"]`); err != nil {
		t.Fatalf("Save() err = %v", err)
	}

	got, err := database.Load("kanban-projects")
	if err != nil {
		t.Fatalf("Load() err = %v", err)
	}
	if got != `["a","b"]` {
		t.Fatalf("Load() = %q, want %q", got, `["a","b"]`)
	}

	blobs, err := database.ListBlobs()
	if err != nil {
		t.Fatalf("ListBlobs() err = %v", err)
	}
	if len(blobs) != 1 || blobs[0].Key != "kanban-projects" || blobs[0].Size != len(`["a","b"]`) {
		t.Fatalf("ListBlobs() = %+v, want one kanban-projects entry", blobs)
	}
}

func TestBlobs_Delete(t *testing.T) {
	database := openTestDB(t)

	if err := database.Save("kanban-chat-messages", "[]"); err != nil {
		t.Fatalf("Save() err = %v", err)
	}
	if err := database.DeleteBlob("kanban-chat-messages"); err != nil {
		t.Fatalf("DeleteBlob() err = %v", err)
	}
	got, err := database.Load("kanban-chat-messages")
	if err != nil || got != "" {
		t.Fatalf("Load() after delete = %q, %v; want empty, nil", got, err)
	}
}

func TestSettings(t *testing.T) {
	database := openTestDB(t)

	got, err := database.GetSetting("last_column")
	if err != nil || got != "" {
		t.Fatalf("GetSetting() = %q, %v; want empty, nil", got, err)
	}

	if err := database.SetSetting("last_column", "done"); err != nil {
		t.Fatalf("SetSetting() err = %v", err)
	}
	if err := database.SetSetting("last_column", "todo"); err != nil {
		t.Fatalf("SetSetting() err = %v", err)
	}
	got, err = database.GetSetting("last_column")
	if err != nil || got != "todo" {
		t.Fatalf("GetSetting() = %q, %v; want todo, nil", got, err)
	}
}

func TestNew_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kanban.db")

	first, err := New(path)
	if err != nil {
		t.Fatalf("New() err = %v", err)
	}
	if err := first.Save("kanban-team-members", `["Alex"]`); err != nil {
		t.Fatalf("Save() err = %v", err)
	}
	first.Close()

	second, err := New(path)
	if err != nil {
		t.Fatalf("New() reopen err = %v", err)
	}
	defer second.Close()

	got, err := second.Load("kanban-team-members")
	if err != nil || got != `["Alex"]` {
		t.Fatalf("Load() after reopen = %q, %v", got, err)
	}
	if second.Path() != path {
		t.Fatalf("Path() = %q, want %q", second.Path(), path)
	}
}
