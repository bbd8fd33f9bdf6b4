package handler

import (
	"log/slog"
	"net/http"

	"github.com/calebreed/formpulse/internal/auth"
	"github.com/calebreed/formpulse/internal/domain"
	"github.com/calebreed/formpulse/internal/service"
)

// ProjectHandler serves project CRUD. All routes require an account in
// context.
type ProjectHandler struct {
	projects service.ProjectService
	logger   *slog.Logger
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projects service.ProjectService, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, logger: logger}
}

type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Create handles POST /api/projects.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	account := auth.GetAccount(r.Context())

	var req createProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	project, err := h.projects.Create(r.Context(), account, domain.CreateProjectParams{
		AccountID:   account.ID,
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{"project": toProjectDTO(*project)})
}

// List handles GET /api/projects.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	account := auth.GetAccount(r.Context())

	projects, err := h.projects.List(r.Context(), account.ID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"projects": toProjectDTOs(projects)})
}

// Get handles GET /api/projects/{projectID}.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	account := auth.GetAccount(r.Context())

	id, err := pathUUID(r, "projectID")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	project, err := h.projects.GetByID(r.Context(), id, account.ID)
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"project": toProjectDTO(*project)})
}

type updateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsArchived  *bool   `json:"is_archived"`
}

// Update handles PATCH /api/projects/{projectID}.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	account := auth.GetAccount(r.Context())

	id, err := pathUUID(r, "projectID")
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	var req updateProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	project, err := h.projects.Update(r.Context(), domain.UpdateProjectParams{
		ID:          id,
		AccountID:   account.ID,
		Name:        req.Name,
		Description: req.Description,
		IsArchived:  req.IsArchived,
	})
	if err != nil {
		ErrorResponse(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"project": toProjectDTO(*project)})
}
