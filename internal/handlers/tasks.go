package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Novip1906/tasks-http/internal/contextkeys"
	"github.com/Novip1906/tasks-http/internal/models"
	"github.com/Novip1906/tasks-http/internal/storage"
	"github.com/Novip1906/tasks-http/pkg/logging"
)

type TasksService interface {
	ListTasks(ctx context.Context) ([]*models.Task, error)
	GetTask(ctx context.Context, taskId int64) (*models.Task, error)
	CreateTask(ctx context.Context, title, description string) (*models.Task, error)
	UpdateTask(ctx context.Context, taskId int64, patch models.TaskPatch) (*models.Task, error)
	DeleteTask(ctx context.Context, taskId int64) error
	SearchTasks(ctx context.Context, query string) ([]*models.Task, error)
}

type TasksHandler struct {
	tasks TasksService
}

func NewTasksHandler(tasks TasksService) *TasksHandler {
	return &TasksHandler{tasks: tasks}
}

type createTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h *TasksHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.ListTasks(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TasksHandler) Get(w http.ResponseWriter, r *http.Request) {
	taskId, ok := taskIdFromPath(w, r)
	if !ok {
		return
	}

	task, err := h.tasks.GetTask(r.Context(), taskId)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TasksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	task, err := h.tasks.CreateTask(r.Context(), req.Title, req.Description)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *TasksHandler) Update(w http.ResponseWriter, r *http.Request) {
	taskId, ok := taskIdFromPath(w, r)
	if !ok {
		return
	}

	var patch models.TaskPatch
	if err := decodeJSON(r, &patch); err != nil {
		h.fail(w, r, err)
		return
	}

	task, err := h.tasks.UpdateTask(r.Context(), taskId, patch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TasksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	taskId, ok := taskIdFromPath(w, r)
	if !ok {
		return
	}

	if err := h.tasks.DeleteTask(r.Context(), taskId); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TasksHandler) Search(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.SearchTasks(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TasksHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, _ := classify(err)
	if status == http.StatusInternalServerError {
		contextkeys.GetLogger(r.Context()).Error("request error", logging.Err(err))
	}
	writeServiceError(w, err)
}

// taskIdFromPath answers 404 itself when the id is not an integer, since
// no task can have such an id.
func taskIdFromPath(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := mux.Vars(r)["id"]
	taskId, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		contextkeys.GetLogger(r.Context()).Info("bad task id", slog.String("id", raw))
		writeServiceError(w, errors.Join(storage.ErrTaskNotFound, err))
		return 0, false
	}
	return taskId, true
}
