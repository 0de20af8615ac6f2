package models

import (
	"testing"
	"time"
)

func TestColumnNavigation(t *testing.T) {
	tests := []struct {
		col        Column
		next, prev Column
	}{
		{ColumnTodo, ColumnInProgress, ColumnTodo},
		{ColumnInProgress, ColumnDone, ColumnTodo},
		{ColumnDone, ColumnDone, ColumnInProgress},
	}
	for _, tt := range tests {
		t.Run(string(tt.col), func(t *testing.T) {
			if got := tt.col.Next(); got != tt.next {
				t.Errorf("Next() = %q, want %q", got, tt.next)
			}
			if got := tt.col.Prev(); got != tt.prev {
				t.Errorf("Prev() = %q, want %q", got, tt.prev)
			}
		})
	}
}

func TestValidity(t *testing.T) {
	for _, c := range Columns {
		if !c.Valid() {
			t.Errorf("column %q should be valid", c)
		}
	}
	if Column("backlog").Valid() {
		t.Error("unknown column reported valid")
	}
	for _, p := range Priorities {
		if !p.Valid() {
			t.Errorf("priority %q should be valid", p)
		}
	}
	if Priority("urgent").Valid() || Priority("").Valid() {
		t.Error("unknown priority reported valid")
	}
}

func TestPriorityNextCycles(t *testing.T) {
	p := PriorityLow
	for range 3 {
		p = p.Next()
	}
	if p != PriorityLow {
		t.Fatalf("three Next() calls from low = %q, want low", p)
	}
}

func TestSeedTasks(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	seed := SeedTasks(now)
	if len(seed) != 5 {
		t.Fatalf("len(SeedTasks) = %d, want 5", len(seed))
	}

	perColumn := map[Column]int{}
	for _, task := range seed {
		perColumn[task.Column]++
		if task.Comments == nil || task.Attachments == nil {
			t.Errorf("task %s has nil comments or attachments", task.ID)
		}
		if !task.CreatedAt.Equal(now) {
			t.Errorf("task %s CreatedAt = %v, want %v", task.ID, task.CreatedAt, now)
		}
	}
	want := map[Column]int{ColumnTodo: 2, ColumnInProgress: 2, ColumnDone: 1}
	for col, n := range want {
		if perColumn[col] != n {
			t.Errorf("column %s has %d seed tasks, want %d", col, perColumn[col], n)
		}
	}
}

func TestTaskPatchEmpty(t *testing.T) {
	if !(TaskPatch{}).Empty() {
		t.Error("zero patch should be empty")
	}
	blocked := true
	if (TaskPatch{Blocked: &blocked}).Empty() {
		t.Error("patch with Blocked set should not be empty")
	}
}
