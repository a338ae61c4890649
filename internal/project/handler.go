package project

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/statuswise/pkg/middleware"
	"github.com/fkhayef/statuswise/pkg/response"
)

// Handler handles HTTP requests for project operations
type Handler struct {
	service *Service
}

// NewHandler creates a new project handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for project endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)

	return r
}

// Create handles POST /projects
// @Summary      Create a new project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        request body CreateProjectRequest true "Project creation request"
// @Success      201 {object} response.APIResponse{data=Project}
// @Failure      422 {object} response.APIResponse
// @Router       /projects [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	project, err := h.service.Create(r.Context(), principal.UserID, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, project)
}

// List handles GET /projects
// @Summary      List my projects
// @Tags         projects
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]Project}
// @Router       /projects [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	projects, err := h.service.List(r.Context(), principal.UserID)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, projects)
}

// Get handles GET /projects/{id}
// @Summary      Get project by ID
// @Tags         projects
// @Produce      json
// @Param        id path int true "Project ID"
// @Success      200 {object} response.APIResponse{data=Project}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /projects/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid project ID")
		return
	}

	project, svcErr := h.service.Get(r.Context(), principal.UserID, id)
	if svcErr != nil {
		response.FromError(w, svcErr)
		return
	}

	response.JSON(w, http.StatusOK, project)
}

// Update handles PUT /projects/{id}
// @Summary      Update a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Param        id path int true "Project ID"
// @Param        request body UpdateProjectRequest true "Project update request"
// @Success      200 {object} response.APIResponse{data=Project}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /projects/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid project ID")
		return
	}

	var req UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	project, svcErr := h.service.Update(r.Context(), principal.UserID, id, &req)
	if svcErr != nil {
		response.FromError(w, svcErr)
		return
	}

	response.JSON(w, http.StatusOK, project)
}
