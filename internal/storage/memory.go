package storage

import (
	"context"
	"sync"
	"time"

	"github.com/Novip1906/tasks-http/internal/models"
)

// MemoryStorage keeps tasks in insertion order. Ids come from a counter that
// only moves forward, so a deleted id is never handed out again.
type MemoryStorage struct {
	mu     sync.RWMutex
	tasks  []*models.Task
	nextId int64
	now    func() time.Time
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		nextId: 1,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// NewSeededMemoryStorage returns a store holding the demo tasks of user 1.
func NewSeededMemoryStorage() *MemoryStorage {
	s := NewMemoryStorage()
	createdAt := s.now()
	s.tasks = []*models.Task{
		{Id: 1, Title: "Complete project setup", Description: "Set up the full project structure", UserId: 1, CreatedAt: createdAt},
		{Id: 2, Title: "Write comprehensive tests", Description: "Create UI and API test suites", UserId: 1, CreatedAt: createdAt},
	}
	s.nextId = 3
	return s
}

func (s *MemoryStorage) ListTasks(ctx context.Context, userId int64) ([]*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]*models.Task, 0)
	for _, t := range s.tasks {
		if t.UserId == userId {
			tasks = append(tasks, clone(t))
		}
	}
	return tasks, nil
}

func (s *MemoryStorage) GetTask(ctx context.Context, userId, taskId int64) (*models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(userId, taskId)
	if i < 0 {
		return nil, ErrTaskNotFound
	}
	return clone(s.tasks[i]), nil
}

func (s *MemoryStorage) CreateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := clone(task)
	stored.Id = s.nextId
	stored.CreatedAt = s.now()
	stored.UpdatedAt = nil
	s.nextId++

	s.tasks = append(s.tasks, stored)
	return clone(stored), nil
}

func (s *MemoryStorage) UpdateTask(ctx context.Context, userId, taskId int64, patch models.TaskPatch) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(userId, taskId)
	if i < 0 {
		return nil, ErrTaskNotFound
	}

	patch.Apply(s.tasks[i], s.now())
	return clone(s.tasks[i]), nil
}

func (s *MemoryStorage) DeleteTask(ctx context.Context, userId, taskId int64) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(userId, taskId)
	if i < 0 {
		return nil, ErrTaskNotFound
	}

	deleted := s.tasks[i]
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return deleted, nil
}

func (s *MemoryStorage) Close() error {
	return nil
}

// indexOf must be called with the lock held.
func (s *MemoryStorage) indexOf(userId, taskId int64) int {
	for i, t := range s.tasks {
		if t.Id == taskId && t.UserId == userId {
			return i
		}
	}
	return -1
}

func clone(t *models.Task) *models.Task {
	c := *t
	return &c
}
