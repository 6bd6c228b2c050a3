package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestTaskStoreCreateAndList(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tasks.json")

	s, err := NewTaskStore(path)
	if err != nil {
		t.Fatalf("NewTaskStore failed: %v", err)
	}

	task, err := s.Create(ctx, "buy milk")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if task.ID == "" {
		t.Error("task ID should not be empty")
	}
	if task.Title != "buy milk" {
		t.Errorf("Title = %q, want %q", task.Title, "buy milk")
	}
	if task.Completed {
		t.Error("new task should not be completed")
	}

	tasks, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("len(tasks) = %d, want 1", len(tasks))
	}
}

func TestTaskStorePersistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tasks.json")

	s, err := NewTaskStore(path)
	if err != nil {
		t.Fatalf("NewTaskStore failed: %v", err)
	}
	if _, err := s.Create(ctx, "first"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := s.Create(ctx, "second"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Reopen from disk
	reopened, err := NewTaskStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	tasks, err := reopened.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("len(tasks) after reopen = %d, want 2", len(tasks))
	}
	if tasks[0].Title != "first" || tasks[1].Title != "second" {
		t.Errorf("tasks out of order after reopen: %+v", tasks)
	}
}

func TestTaskStoreUpdate(t *testing.T) {
	ctx := context.Background()
	s, err := NewTaskStore(filepath.Join(t.TempDir(), "tasks.json"))
	if err != nil {
		t.Fatalf("NewTaskStore failed: %v", err)
	}

	task, err := s.Create(ctx, "draft report")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	done := true
	updated, err := s.Update(ctx, task.ID, nil, &done)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !updated.Completed {
		t.Error("task should be completed after update")
	}
	if updated.UpdatedAt == nil {
		t.Error("UpdatedAt should be set after update")
	}

	if _, err := s.Update(ctx, "missing-id", nil, &done); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update of missing id = %v, want ErrNotFound", err)
	}
}

func TestTaskStoreDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewTaskStore(filepath.Join(t.TempDir(), "tasks.json"))
	if err != nil {
		t.Fatalf("NewTaskStore failed: %v", err)
	}

	task, err := s.Create(ctx, "temporary")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := s.Delete(ctx, task.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	tasks, _ := s.List(ctx)
	if len(tasks) != 0 {
		t.Errorf("len(tasks) after delete = %d, want 0", len(tasks))
	}

	if err := s.Delete(ctx, task.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestTaskStoreCancelledContext(t *testing.T) {
	s, err := NewTaskStore(filepath.Join(t.TempDir(), "tasks.json"))
	if err != nil {
		t.Fatalf("NewTaskStore failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Create(ctx, "never"); err == nil {
		t.Error("Create with cancelled context should fail")
	}
}
