package tasks

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/user/tareas-go/apperror"
)

// MemoryService is an in-process task repository implementing the same
// Service contract as PGService, with the same ownership and validation
// semantics. It backs the handler test suites.
type MemoryService struct {
	mu     sync.RWMutex
	nextID int
	// order preserves insertion order, matching the ORDER BY id of the
	// PostgreSQL store.
	order []int
	byID  map[int]*Task
}

// NewMemoryService creates an empty in-memory task repository.
func NewMemoryService() *MemoryService {
	return &MemoryService{
		nextID: 1,
		byID:   make(map[int]*Task),
	}
}

// List returns all tasks owned by userID in insertion order.
func (s *MemoryService) List(ctx context.Context, userID int) ([]Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := []Task{}
	for _, id := range s.order {
		if t, ok := s.byID[id]; ok && t.OwnerID == userID {
			tasks = append(tasks, *t)
		}
	}
	return tasks, nil
}

// Create persists a new task owned by userID.
func (s *MemoryService) Create(ctx context.Context, userID int, req TaskRequest) (*Task, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task := &Task{
		ID:          s.nextID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		CreatedAt:   time.Now(),
		OwnerID:     userID,
	}
	s.nextID++
	s.byID[task.ID] = task
	s.order = append(s.order, task.ID)

	copied := *task
	return &copied, nil
}

// get applies the NotFound/Forbidden distinction under a held lock.
func (s *MemoryService) get(taskID, userID int) (*Task, error) {
	t, ok := s.byID[taskID]
	if !ok {
		return nil, apperror.NewNotFoundError("task not found", nil)
	}
	if t.OwnerID != userID {
		return nil, apperror.NewForbiddenError("task belongs to another user", nil)
	}
	return t, nil
}

// Get returns the task with taskID, scoped by ownership.
func (s *MemoryService) Get(ctx context.Context, taskID, userID int) (*Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, err := s.get(taskID, userID)
	if err != nil {
		return nil, err
	}
	copied := *t
	return &copied, nil
}

// Update overwrites the three mutable fields of an owned task.
func (s *MemoryService) Update(ctx context.Context, taskID, userID int, req TaskRequest) (*Task, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.get(taskID, userID)
	if err != nil {
		return nil, err
	}
	t.Title = req.Title
	t.Description = req.Description
	t.Priority = req.Priority

	copied := *t
	return &copied, nil
}

// Delete removes an owned task.
func (s *MemoryService) Delete(ctx context.Context, taskID, userID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.get(taskID, userID); err != nil {
		return err
	}
	delete(s.byID, taskID)
	for i, id := range s.order {
		if id == taskID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Search filters the user's tasks by a case-insensitive substring match on
// title or description, mirroring the ILIKE semantics of the PostgreSQL
// store.
func (s *MemoryService) Search(ctx context.Context, userID int, query string) ([]Task, error) {
	if query == "" {
		return s.List(ctx, userID)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(query)
	tasks := []Task{}
	for _, id := range s.order {
		t, ok := s.byID[id]
		if !ok || t.OwnerID != userID {
			continue
		}
		if strings.Contains(strings.ToLower(t.Title), needle) ||
			strings.Contains(strings.ToLower(t.Description), needle) {
			tasks = append(tasks, *t)
		}
	}
	return tasks, nil
}
