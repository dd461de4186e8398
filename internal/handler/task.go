package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/natthaphonb/taskhub-api/internal/payload"
	"github.com/natthaphonb/taskhub-api/internal/usecase"
	"github.com/natthaphonb/taskhub-api/internal/validation"
)

// TaskHandler serves the task registry endpoints.
type TaskHandler struct {
	taskUsecase usecase.TaskUsecase
	validate    *validation.Validator
	logger      *zerolog.Logger
}

func NewTaskHandler(
	taskUsecase usecase.TaskUsecase,
	validate *validation.Validator,
	logger *zerolog.Logger,
) *TaskHandler {
	return &TaskHandler{
		taskUsecase: taskUsecase,
		validate:    validate,
		logger:      logger,
	}
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req payload.CreateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if details := h.validate.Struct(req); details != nil {
		respondValidation(w, details)
		return
	}

	task, err := h.taskUsecase.Create(r.Context(), userIDFromContext(r.Context()), usecase.CreateTaskParams{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Status:      req.Status,
		Deadline:    req.Deadline,
	})
	if err != nil {
		h.respondTaskError(w, err, "failed to create task")
		return
	}

	respondJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.taskUsecase.ListByProject(r.Context(), userIDFromContext(r.Context()), chi.URLParam(r, "projectID"))
	if err != nil {
		h.respondTaskError(w, err, "failed to list tasks")
		return
	}

	if tasks == nil {
		tasks = []*usecase.TaskView{}
	}
	respondJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, err := h.taskUsecase.Get(r.Context(), userIDFromContext(r.Context()), chi.URLParam(r, "taskID"))
	if err != nil {
		h.respondTaskError(w, err, "failed to fetch task")
		return
	}

	respondJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req payload.UpdateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if details := h.validate.Struct(req); details != nil {
		respondValidation(w, details)
		return
	}

	task, err := h.taskUsecase.Update(r.Context(), userIDFromContext(r.Context()), chi.URLParam(r, "taskID"), usecase.UpdateTaskFields{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Status:      req.Status,
		Deadline:    req.Deadline,
	})
	if err != nil {
		h.respondTaskError(w, err, "failed to update task")
		return
	}

	respondJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req payload.UpdateTaskStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if details := h.validate.Struct(req); details != nil {
		respondValidation(w, details)
		return
	}

	task, err := h.taskUsecase.UpdateStatus(r.Context(), userIDFromContext(r.Context()), chi.URLParam(r, "taskID"), req.Status)
	if err != nil {
		h.respondTaskError(w, err, "failed to update task status")
		return
	}

	respondJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.taskUsecase.Delete(r.Context(), userIDFromContext(r.Context()), chi.URLParam(r, "taskID"))
	if err != nil {
		h.respondTaskError(w, err, "failed to delete task")
		return
	}

	respondMessage(w, http.StatusOK, "task deleted successfully")
}

func (h *TaskHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	var req payload.AddCommentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if details := h.validate.Struct(req); details != nil {
		respondValidation(w, details)
		return
	}

	comment, err := h.taskUsecase.AddComment(r.Context(), userIDFromContext(r.Context()), chi.URLParam(r, "taskID"), req.Text)
	if err != nil {
		h.respondTaskError(w, err, "failed to add comment")
		return
	}

	respondJSON(w, http.StatusCreated, comment)
}

func (h *TaskHandler) respondTaskError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, usecase.ErrTaskNotFound),
		errors.Is(err, usecase.ErrProjectNotFound):
		respondMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, usecase.ErrForbidden):
		respondMessage(w, http.StatusForbidden, err.Error())
	case errors.Is(err, usecase.ErrDeadlineInPast),
		errors.Is(err, usecase.ErrInvalidStatus),
		errors.Is(err, usecase.ErrDuplicateSerial):
		respondMessage(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg(logMsg)
		respondInternal(w)
	}
}
