package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestScheduleStoreCreateAndList(t *testing.T) {
	ctx := context.Background()
	s, err := NewScheduleStore(filepath.Join(t.TempDir(), "schedule.json"))
	if err != nil {
		t.Fatalf("NewScheduleStore failed: %v", err)
	}

	r, err := s.Create(ctx, "15:04", "take medicine")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if r.ID == "" {
		t.Error("reminder ID should not be empty")
	}
	if r.Time != "15:04" || r.Message != "take medicine" {
		t.Errorf("reminder = %+v, want time 15:04 / message take medicine", r)
	}

	reminders, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(reminders) != 1 {
		t.Fatalf("len(reminders) = %d, want 1", len(reminders))
	}
}

func TestScheduleStorePersistence(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "schedule.json")

	s, err := NewScheduleStore(path)
	if err != nil {
		t.Fatalf("NewScheduleStore failed: %v", err)
	}
	if _, err := s.Create(ctx, "09:00", "standup"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	reopened, err := NewScheduleStore(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	reminders, err := reopened.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(reminders) != 1 || reminders[0].Message != "standup" {
		t.Errorf("reminders after reopen = %+v, want one standup entry", reminders)
	}
}

func TestScheduleStoreUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewScheduleStore(filepath.Join(t.TempDir(), "schedule.json"))
	if err != nil {
		t.Fatalf("NewScheduleStore failed: %v", err)
	}

	r, err := s.Create(ctx, "12:00", "lunch")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	newTime := "13:00"
	updated, err := s.Update(ctx, r.ID, &newTime, nil)
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Time != "13:00" || updated.Message != "lunch" {
		t.Errorf("updated reminder = %+v, want time 13:00 / message lunch", updated)
	}

	if err := s.Delete(ctx, r.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := s.Delete(ctx, r.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestScheduleStoreClear(t *testing.T) {
	ctx := context.Background()
	s, err := NewScheduleStore(filepath.Join(t.TempDir(), "schedule.json"))
	if err != nil {
		t.Fatalf("NewScheduleStore failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := s.Create(ctx, "10:00", "repeat"); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	reminders, _ := s.List(ctx)
	if len(reminders) != 0 {
		t.Errorf("len(reminders) after clear = %d, want 0", len(reminders))
	}
}
