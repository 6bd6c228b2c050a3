package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Gopinath21052006/NeuroTrain/pkg/types"
)

// ScheduleStore is a JSON-file backed reminder list, mirroring the task
// store layout.
type ScheduleStore struct {
	mu        sync.RWMutex
	path      string
	reminders []types.Reminder
}

// NewScheduleStore opens (or creates) the schedule store at path.
func NewScheduleStore(path string) (*ScheduleStore, error) {
	s := &ScheduleStore{path: path}
	if err := s.load(); err != nil {
		return nil, fmt.Errorf("failed to load schedule: %w", err)
	}
	return s, nil
}

// Create adds a reminder with a time expression and message.
func (s *ScheduleStore) Create(ctx context.Context, at, message string) (*types.Reminder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reminder := types.Reminder{
		ID:        uuid.New().String(),
		Time:      at,
		Message:   message,
		CreatedAt: time.Now(),
	}
	s.reminders = append(s.reminders, reminder)

	if err := s.save(); err != nil {
		s.reminders = s.reminders[:len(s.reminders)-1]
		return nil, err
	}
	return &reminder, nil
}

// List returns all reminders.
func (s *ScheduleStore) List(ctx context.Context) ([]types.Reminder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Reminder, len(s.reminders))
	copy(out, s.reminders)
	return out, nil
}

// Update changes the time and/or message of a reminder.
func (s *ScheduleStore) Update(ctx context.Context, id string, at, message *string) (*types.Reminder, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.reminders {
		if s.reminders[i].ID != id {
			continue
		}
		if at != nil {
			s.reminders[i].Time = *at
		}
		if message != nil {
			s.reminders[i].Message = *message
		}
		now := time.Now()
		s.reminders[i].UpdatedAt = &now

		if err := s.save(); err != nil {
			return nil, err
		}
		reminder := s.reminders[i]
		return &reminder, nil
	}
	return nil, ErrNotFound
}

// Delete removes a reminder by id.
func (s *ScheduleStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.reminders {
		if s.reminders[i].ID == id {
			s.reminders = append(s.reminders[:i], s.reminders[i+1:]...)
			return s.save()
		}
	}
	return ErrNotFound
}

// Clear removes all reminders.
func (s *ScheduleStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.reminders = nil
	return s.save()
}

func (s *ScheduleStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, &s.reminders)
}

func (s *ScheduleStore) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.reminders, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}
