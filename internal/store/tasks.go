package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Gopinath21052006/NeuroTrain/pkg/types"
)

// ErrNotFound is returned when a task or reminder id does not exist.
var ErrNotFound = errors.New("not found")

// TaskStore is a JSON-file backed task list. The whole list is held in
// memory and rewritten on every mutation.
type TaskStore struct {
	mu    sync.RWMutex
	path  string
	tasks []types.Task
}

// NewTaskStore opens (or creates) the task store at path.
func NewTaskStore(path string) (*TaskStore, error) {
	s := &TaskStore{path: path}
	if err := s.load(); err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	return s, nil
}

// Create adds a new task with the given title and persists it.
func (s *TaskStore) Create(ctx context.Context, title string) (*types.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task := types.Task{
		ID:        uuid.New().String(),
		Title:     title,
		Completed: false,
		CreatedAt: time.Now(),
	}
	s.tasks = append(s.tasks, task)

	if err := s.save(); err != nil {
		s.tasks = s.tasks[:len(s.tasks)-1]
		return nil, err
	}
	return &task, nil
}

// List returns all tasks.
func (s *TaskStore) List(ctx context.Context) ([]types.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Task, len(s.tasks))
	copy(out, s.tasks)
	return out, nil
}

// Update changes the title and/or completion state of a task.
func (s *TaskStore) Update(ctx context.Context, id string, title *string, completed *bool) (*types.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID != id {
			continue
		}
		if title != nil {
			s.tasks[i].Title = *title
		}
		if completed != nil {
			s.tasks[i].Completed = *completed
		}
		now := time.Now()
		s.tasks[i].UpdatedAt = &now

		if err := s.save(); err != nil {
			return nil, err
		}
		task := s.tasks[i]
		return &task, nil
	}
	return nil, ErrNotFound
}

// Delete removes a task by id.
func (s *TaskStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return s.save()
		}
	}
	return ErrNotFound
}

func (s *TaskStore) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, &s.tasks)
}

func (s *TaskStore) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s.tasks, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}
