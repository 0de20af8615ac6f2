package store

import (
	"reflect"
	"testing"
	"time"

	"github.com/tgienger/kanban/internal/models"
)

func TestChatStore_EmptyByDefault(t *testing.T) {
	s := NewChatStore(NewMemoryStorage())
	if s.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", s.Len())
	}
	if _, ok := s.LastForTask("1"); ok {
		t.Fatal("LastForTask() ok = true on empty store")
	}
	if got := s.ByTask("1"); len(got) != 0 {
		t.Fatalf("ByTask() = %v, want empty", got)
	}
}

func TestChatStore_SendAndByTaskKeepAppendOrder(t *testing.T) {
	clock := newManualClock()
	s := NewChatStore(NewMemoryStorage(), WithClock(clock.now))

	// all messages share a timestamp; order must still follow Send
	texts := []string{"first", "second", "third"}
	for _, text := range texts {
		if _, res := s.Send("1", text, ""); res != Applied {
			t.Fatalf("Send(%q) = %v, want applied", text, res)
		}
		s.Send("2", "other thread", "Sam")
	}

	thread := s.ByTask("1")
	if len(thread) != len(texts) {
		t.Fatalf("len(ByTask) = %d, want %d", len(thread), len(texts))
	}
	for i, m := range thread {
		if m.Text != texts[i] {
			t.Errorf("ByTask()[%d] = %q, want %q", i, m.Text, texts[i])
		}
		if m.Author != models.LocalAuthor {
			t.Errorf("Author = %q, want default %q", m.Author, models.LocalAuthor)
		}
	}

	last, ok := s.LastForTask("1")
	if !ok || last.Text != "third" {
		t.Fatalf("LastForTask() = %+v, %v; want third", last, ok)
	}
	other, _ := s.LastForTask("2")
	if other.Author != "Sam" {
		t.Fatalf("Author = %q, want Sam", other.Author)
	}
}

func TestChatStore_SendRejectsBlank(t *testing.T) {
	m := NewMemoryStorage()
	s := NewChatStore(m)

	if _, res := s.Send("1", "  \n ", ""); res != Rejected {
		t.Fatalf("Send(blank) = %v, want rejected", res)
	}
	if _, res := s.Send("", "hello", ""); res != Rejected {
		t.Fatalf("Send(no task) = %v, want rejected", res)
	}
	if s.Len() != 0 {
		t.Fatal("rejected send appended a message")
	}
	if raw, _ := m.Load(ChatKey); raw != "" {
		t.Fatal("rejected send wrote to storage")
	}
}

func TestChatStore_Rank(t *testing.T) {
	clock := newManualClock()
	s := NewChatStore(NewMemoryStorage(), WithClock(clock.now))
	base := clock.t

	tasks := []models.Task{{ID: "C"}, {ID: "A"}, {ID: "B"}, {ID: "D"}}

	clock.t = base.Add(5 * time.Second)
	s.Send("A", "at five", "")
	clock.t = base.Add(10 * time.Second)
	s.Send("B", "at ten", "")

	ranked := s.Rank(tasks)
	var got []string
	for _, task := range ranked {
		got = append(got, task.ID)
	}
	want := []string{"B", "A", "C", "D"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Rank() = %v, want %v", got, want)
	}
	if tasks[0].ID != "C" {
		t.Fatal("Rank() reordered its input")
	}
}

func TestChatStore_RankTieBreaksBySendOrder(t *testing.T) {
	clock := newManualClock()
	s := NewChatStore(NewMemoryStorage(), WithClock(clock.now))

	s.Send("A", "same instant", "")
	s.Send("B", "same instant", "")

	ranked := s.Rank([]models.Task{{ID: "A"}, {ID: "B"}})
	if ranked[0].ID != "B" {
		t.Fatalf("Rank()[0] = %s, want B (sent later)", ranked[0].ID)
	}
}

func TestChatStore_MessagesSurviveTaskRemoval(t *testing.T) {
	m := NewMemoryStorage()
	tasks := NewTaskStore(m)
	chat := NewChatStore(m)

	chat.Send("3", "status?", "")
	chat.Send("3", "blocked on review", "Sam")

	if res := tasks.Remove("3"); res != Applied {
		t.Fatalf("Remove() = %v, want applied", res)
	}
	if _, ok := tasks.Get("3"); ok {
		t.Fatal("task 3 still present")
	}
	if got := chat.ByTask("3"); len(got) != 2 {
		t.Fatalf("ByTask(3) after removal = %d messages, want 2", len(got))
	}
}

func TestChatStore_ReloadRoundTrip(t *testing.T) {
	m := NewMemoryStorage()
	s := NewChatStore(m)
	s.Send("1", "hello", "")
	s.Send("2", "hi", "Casey")

	reloaded := NewChatStore(m)
	if !reflect.DeepEqual(s.Messages(), reloaded.Messages()) {
		t.Fatalf("reload mismatch:\n got %+v\nwant %+v", reloaded.Messages(), s.Messages())
	}
}

func TestChatStore_CorruptFallsBackToEmpty(t *testing.T) {
	m := NewMemoryStorage()
	m.Save(ChatKey, "[{]")
	s := NewChatStore(m)
	if s.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", s.Len())
	}
	if _, res := s.Send("1", "fresh start", ""); res != Applied {
		t.Fatalf("Send() = %v, want applied", res)
	}
}

func TestChatStore_SaveFailureAndFlush(t *testing.T) {
	storage := newFlakyStorage()
	s := NewChatStore(storage)
	storage.setFailing(true)

	if _, res := s.Send("1", "queued", ""); res != Applied {
		t.Fatalf("Send() = %v, want applied", res)
	}
	if s.Len() != 1 || s.SaveErr() == nil {
		t.Fatal("message should be kept in memory with a pending save error")
	}

	storage.setFailing(false)
	if err := s.Flush(); err != nil {
		t.Fatalf("Flush() = %v", err)
	}
	if NewChatStore(storage).Len() != 1 {
		t.Fatal("flushed message missing after reload")
	}
}
