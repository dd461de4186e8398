package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/natthaphonb/taskhub-api/internal/model"
	"github.com/natthaphonb/taskhub-api/internal/payload"
	"github.com/natthaphonb/taskhub-api/internal/usecase"
	"github.com/natthaphonb/taskhub-api/internal/validation"
)

// ProjectHandler serves the project registry endpoints, including the
// embedded collaborator and board lists.
type ProjectHandler struct {
	projectUsecase usecase.ProjectUsecase
	validate       *validation.Validator
	logger         *zerolog.Logger
}

func NewProjectHandler(
	projectUsecase usecase.ProjectUsecase,
	validate *validation.Validator,
	logger *zerolog.Logger,
) *ProjectHandler {
	return &ProjectHandler{
		projectUsecase: projectUsecase,
		validate:       validate,
		logger:         logger,
	}
}

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req payload.CreateProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if details := h.validate.Struct(req); details != nil {
		respondValidation(w, details)
		return
	}

	project, err := h.projectUsecase.Create(r.Context(), userIDFromContext(r.Context()), usecase.CreateProjectParams{
		Title:       req.Title,
		Description: req.Description,
		RepoLink:    req.RepoLink,
		Type:        model.ProjectType(req.Type),
	})
	if err != nil {
		h.respondProjectError(w, err, "failed to create project")
		return
	}

	respondJSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projectUsecase.List(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list projects")
		respondInternal(w)
		return
	}

	if projects == nil {
		projects = []*usecase.ProjectView{}
	}
	respondJSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	project, err := h.projectUsecase.Get(r.Context(), userIDFromContext(r.Context()), chi.URLParam(r, "projectID"))
	if err != nil {
		h.respondProjectError(w, err, "failed to fetch project")
		return
	}

	respondJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req payload.UpdateProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if details := h.validate.Struct(req); details != nil {
		respondValidation(w, details)
		return
	}

	fields := usecase.UpdateProjectFields{
		Title:       req.Title,
		Description: req.Description,
		RepoLink:    req.RepoLink,
	}
	if req.Type != nil {
		projectType := model.ProjectType(*req.Type)
		fields.Type = &projectType
	}
	if req.Status != nil {
		status := model.ProjectStatus(*req.Status)
		fields.Status = &status
	}

	project, err := h.projectUsecase.Update(r.Context(), userIDFromContext(r.Context()), chi.URLParam(r, "projectID"), fields)
	if err != nil {
		h.respondProjectError(w, err, "failed to update project")
		return
	}

	respondJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.projectUsecase.Delete(r.Context(), userIDFromContext(r.Context()), chi.URLParam(r, "projectID"))
	if err != nil {
		h.respondProjectError(w, err, "failed to delete project")
		return
	}

	respondMessage(w, http.StatusOK, "project deleted successfully")
}

func (h *ProjectHandler) AddCollaborator(w http.ResponseWriter, r *http.Request) {
	var req payload.AddCollaboratorRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if details := h.validate.Struct(req); details != nil {
		respondValidation(w, details)
		return
	}

	project, err := h.projectUsecase.AddCollaborator(
		r.Context(),
		userIDFromContext(r.Context()),
		chi.URLParam(r, "projectID"),
		req.UserID,
		model.Role(req.Role),
	)
	if err != nil {
		h.respondProjectError(w, err, "failed to add collaborator")
		return
	}

	respondJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) UpdateCollaborator(w http.ResponseWriter, r *http.Request) {
	var req payload.UpdateCollaboratorRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if details := h.validate.Struct(req); details != nil {
		respondValidation(w, details)
		return
	}

	project, err := h.projectUsecase.UpdateCollaboratorRole(
		r.Context(),
		userIDFromContext(r.Context()),
		chi.URLParam(r, "projectID"),
		chi.URLParam(r, "userID"),
		model.Role(req.Role),
	)
	if err != nil {
		h.respondProjectError(w, err, "failed to update collaborator")
		return
	}

	respondJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) RemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	project, err := h.projectUsecase.RemoveCollaborator(
		r.Context(),
		userIDFromContext(r.Context()),
		chi.URLParam(r, "projectID"),
		chi.URLParam(r, "userID"),
	)
	if err != nil {
		h.respondProjectError(w, err, "failed to remove collaborator")
		return
	}

	respondJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) AddBoard(w http.ResponseWriter, r *http.Request) {
	var req payload.BoardRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if details := h.validate.Struct(req); details != nil {
		respondValidation(w, details)
		return
	}

	project, err := h.projectUsecase.AddBoard(
		r.Context(),
		userIDFromContext(r.Context()),
		chi.URLParam(r, "projectID"),
		req.Name,
	)
	if err != nil {
		h.respondProjectError(w, err, "failed to add board")
		return
	}

	respondJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) RenameBoard(w http.ResponseWriter, r *http.Request) {
	var req payload.BoardRequest
	if err := decodeJSON(r, &req); err != nil {
		respondMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if details := h.validate.Struct(req); details != nil {
		respondValidation(w, details)
		return
	}

	project, err := h.projectUsecase.RenameBoard(
		r.Context(),
		userIDFromContext(r.Context()),
		chi.URLParam(r, "projectID"),
		chi.URLParam(r, "boardID"),
		req.Name,
	)
	if err != nil {
		h.respondProjectError(w, err, "failed to rename board")
		return
	}

	respondJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) RemoveBoard(w http.ResponseWriter, r *http.Request) {
	project, err := h.projectUsecase.RemoveBoard(
		r.Context(),
		userIDFromContext(r.Context()),
		chi.URLParam(r, "projectID"),
		chi.URLParam(r, "boardID"),
	)
	if err != nil {
		h.respondProjectError(w, err, "failed to remove board")
		return
	}

	respondJSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) respondProjectError(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, usecase.ErrProjectNotFound):
		respondMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, usecase.ErrForbidden):
		respondMessage(w, http.StatusForbidden, err.Error())
	case errors.Is(err, usecase.ErrDuplicateTitle),
		errors.Is(err, usecase.ErrInvalidRepoLink),
		errors.Is(err, usecase.ErrInvalidRole),
		errors.Is(err, usecase.ErrAlreadyCollaborator),
		errors.Is(err, usecase.ErrCannotRemoveCreator),
		errors.Is(err, usecase.ErrDuplicateBoard),
		errors.Is(err, usecase.ErrInvalidBoardName):
		respondMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, usecase.ErrCollaboratorNotFound),
		errors.Is(err, usecase.ErrBoardNotFound),
		errors.Is(err, usecase.ErrUserNotFound):
		respondMessage(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error().Err(err).Msg(logMsg)
		respondInternal(w)
	}
}
