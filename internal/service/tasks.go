package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Novip1906/tasks-http/internal/contextkeys"
	appErrors "github.com/Novip1906/tasks-http/internal/errors"
	"github.com/Novip1906/tasks-http/internal/models"
	"github.com/Novip1906/tasks-http/internal/storage"
	"github.com/Novip1906/tasks-http/pkg/logging"
)

type TasksStorage interface {
	ListTasks(ctx context.Context, userId int64) ([]*models.Task, error)
	GetTask(ctx context.Context, userId, taskId int64) (*models.Task, error)
	CreateTask(ctx context.Context, task *models.Task) (*models.Task, error)
	UpdateTask(ctx context.Context, userId, taskId int64, patch models.TaskPatch) (*models.Task, error)
	DeleteTask(ctx context.Context, userId, taskId int64) (*models.Task, error)
	Close() error
}

type EventSender interface {
	SendTaskEvent(ctx context.Context, event *models.TaskEvent) error
}

type TaskIndexer interface {
	IndexTask(ctx context.Context, task *models.Task) error
	DeleteTask(ctx context.Context, taskId int64) error
	Search(ctx context.Context, userId int64, query string) ([]*models.Task, error)
}

const sideEffectTimeout = 5 * time.Second

// TasksService scopes every operation to the user found in the request
// context. events and index are optional.
type TasksService struct {
	log    *slog.Logger
	db     TasksStorage
	events EventSender
	index  TaskIndexer
	now    func() time.Time
}

func NewTasksService(log *slog.Logger, db TasksStorage, events EventSender, index TaskIndexer) *TasksService {
	return &TasksService{
		log:    log,
		db:     db,
		events: events,
		index:  index,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *TasksService) ListTasks(ctx context.Context) ([]*models.Task, error) {
	tokenClaims, err := claims(ctx)
	if err != nil {
		return nil, err
	}
	log := contextkeys.GetLogger(ctx)

	tasks, err := s.db.ListTasks(ctx, tokenClaims.UserId)
	if err != nil {
		log.Error("db error", logging.DbErr("ListTasks", err))
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	log.Debug("tasks listed", slog.Int("count", len(tasks)))
	return tasks, nil
}

func (s *TasksService) GetTask(ctx context.Context, taskId int64) (*models.Task, error) {
	tokenClaims, err := claims(ctx)
	if err != nil {
		return nil, err
	}

	task, err := s.db.GetTask(ctx, tokenClaims.UserId, taskId)
	if err != nil {
		s.logStorageErr(ctx, "GetTask", taskId, err)
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

func (s *TasksService) CreateTask(ctx context.Context, title, description string) (*models.Task, error) {
	tokenClaims, err := claims(ctx)
	if err != nil {
		return nil, err
	}
	log := contextkeys.GetLogger(ctx)

	title = processText(title)
	if title == "" {
		log.Info("empty title")
		return nil, appErrors.ErrEmptyTitle
	}

	task, err := s.db.CreateTask(ctx, &models.Task{
		Title:       title,
		Description: processText(description),
		UserId:      tokenClaims.UserId,
	})
	if err != nil {
		log.Error("db error", logging.DbErr("CreateTask", err))
		return nil, fmt.Errorf("create task: %w", err)
	}

	log.Info("task created", slog.Int64("task_id", task.Id))

	s.indexTask(ctx, task)
	s.sendEvent(ctx, &models.TaskEvent{
		Type:      models.EventCreate,
		TaskId:    task.Id,
		UserId:    tokenClaims.UserId,
		Username:  tokenClaims.Username,
		Title:     task.Title,
		Completed: task.Completed,
	})

	return task, nil
}

func (s *TasksService) UpdateTask(ctx context.Context, taskId int64, patch models.TaskPatch) (*models.Task, error) {
	tokenClaims, err := claims(ctx)
	if err != nil {
		return nil, err
	}
	log := contextkeys.GetLogger(ctx).With(slog.Int64("task_id", taskId))

	if patch.Title != nil {
		title := processText(*patch.Title)
		if title == "" {
			log.Info("empty title")
			return nil, appErrors.ErrEmptyTitle
		}
		patch.Title = &title
	}
	if patch.Description != nil {
		description := processText(*patch.Description)
		patch.Description = &description
	}

	var oldTitle string
	if patch.Title != nil && s.events != nil {
		if current, err := s.db.GetTask(ctx, tokenClaims.UserId, taskId); err == nil {
			oldTitle = current.Title
		}
	}

	task, err := s.db.UpdateTask(ctx, tokenClaims.UserId, taskId, patch)
	if err != nil {
		s.logStorageErr(ctx, "UpdateTask", taskId, err)
		return nil, fmt.Errorf("update task: %w", err)
	}

	log.Info("task updated")

	s.indexTask(ctx, task)
	event := &models.TaskEvent{
		Type:      models.EventUpdate,
		TaskId:    task.Id,
		UserId:    tokenClaims.UserId,
		Username:  tokenClaims.Username,
		Title:     task.Title,
		Completed: task.Completed,
	}
	if oldTitle != task.Title {
		event.OldTitle = oldTitle
	}
	s.sendEvent(ctx, event)

	return task, nil
}

func (s *TasksService) DeleteTask(ctx context.Context, taskId int64) error {
	tokenClaims, err := claims(ctx)
	if err != nil {
		return err
	}
	log := contextkeys.GetLogger(ctx).With(slog.Int64("task_id", taskId))

	task, err := s.db.DeleteTask(ctx, tokenClaims.UserId, taskId)
	if err != nil {
		s.logStorageErr(ctx, "DeleteTask", taskId, err)
		return fmt.Errorf("delete task: %w", err)
	}

	log.Info("task deleted")

	if s.index != nil {
		asyncCtx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		if err := s.index.DeleteTask(asyncCtx, task.Id); err != nil {
			log.Error("elasticsearch delete error", logging.Err(err))
		}
	}
	s.sendEvent(ctx, &models.TaskEvent{
		Type:      models.EventDelete,
		TaskId:    task.Id,
		UserId:    tokenClaims.UserId,
		Username:  tokenClaims.Username,
		Title:     task.Title,
		Completed: task.Completed,
	})

	return nil
}

// SearchTasks matches query against title and description. Without an index
// it filters the user's tasks from storage.
func (s *TasksService) SearchTasks(ctx context.Context, query string) ([]*models.Task, error) {
	tokenClaims, err := claims(ctx)
	if err != nil {
		return nil, err
	}
	log := contextkeys.GetLogger(ctx)

	query = processText(query)
	if query == "" {
		return nil, appErrors.ErrEmptyQuery
	}

	if s.index != nil {
		tasks, err := s.index.Search(ctx, tokenClaims.UserId, query)
		if err != nil {
			log.Error("elasticsearch search error", logging.Err(err))
			return nil, fmt.Errorf("search tasks: %w", err)
		}
		return tasks, nil
	}

	tasks, err := s.db.ListTasks(ctx, tokenClaims.UserId)
	if err != nil {
		log.Error("db error", logging.DbErr("ListTasks", err))
		return nil, fmt.Errorf("search tasks: %w", err)
	}

	needle := strings.ToLower(query)
	found := make([]*models.Task, 0)
	for _, task := range tasks {
		if strings.Contains(strings.ToLower(task.Title), needle) ||
			strings.Contains(strings.ToLower(task.Description), needle) {
			found = append(found, task)
		}
	}
	return found, nil
}

func (s *TasksService) indexTask(ctx context.Context, task *models.Task) {
	if s.index == nil {
		return
	}

	asyncCtx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()

	if err := s.index.IndexTask(asyncCtx, task); err != nil {
		contextkeys.GetLogger(ctx).Error("elasticsearch index error", slog.Int64("task_id", task.Id), logging.Err(err))
	}
}

func (s *TasksService) sendEvent(ctx context.Context, event *models.TaskEvent) {
	if s.events == nil {
		return
	}
	log := contextkeys.GetLogger(ctx)
	event.OccurredAt = s.now()

	asyncCtx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()

	if err := s.events.SendTaskEvent(asyncCtx, event); err != nil {
		log.Error("kafka error", "event-type", event.Type, logging.Err(err))
		return
	}
	log.Info("kafka event message sent", "event-type", event.Type)
}

func (s *TasksService) logStorageErr(ctx context.Context, method string, taskId int64, err error) {
	log := contextkeys.GetLogger(ctx).With(slog.Int64("task_id", taskId))
	if errors.Is(err, storage.ErrTaskNotFound) {
		log.Info("task not found")
		return
	}
	log.Error("db error", logging.DbErr(method, err))
}

func claims(ctx context.Context) (*models.TokenClaims, error) {
	tokenClaims, ok := contextkeys.GetTokenClaims(ctx)
	if !ok {
		return nil, fmt.Errorf("%w: no token claims in context", appErrors.ErrInternal)
	}
	return tokenClaims, nil
}

func processText(text string) string {
	return strings.TrimSpace(text)
}
