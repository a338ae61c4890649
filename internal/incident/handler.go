package incident

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/statuswise/pkg/middleware"
	"github.com/fkhayef/statuswise/pkg/response"
)

// Handler handles HTTP requests for incident operations
type Handler struct {
	service *Service
}

// NewHandler creates a new incident handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for incident endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/{projectId}", h.List)
	r.Post("/{id}/resolve", h.Resolve)

	return r
}

// PublicRoutes returns the unauthenticated status page endpoints
func (h *Handler) PublicRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/{projectId}", h.PublicList)

	return r
}

// Create handles POST /incidents
// @Summary      Create a new incident
// @Tags         incidents
// @Accept       json
// @Produce      json
// @Param        request body CreateIncidentRequest true "Incident creation request"
// @Success      201 {object} response.APIResponse{data=Incident}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /incidents [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CreateIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	incident, err := h.service.Create(r.Context(), principal.UserID, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, incident)
}

// List handles GET /incidents/{projectId}
// @Summary      List incidents for a project
// @Tags         incidents
// @Produce      json
// @Param        projectId path int true "Project ID"
// @Success      200 {object} response.APIResponse{data=[]Incident}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /incidents/{projectId} [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	projectID, err := strconv.ParseInt(chi.URLParam(r, "projectId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid project ID")
		return
	}

	incidents, svcErr := h.service.List(r.Context(), principal.UserID, projectID)
	if svcErr != nil {
		response.FromError(w, svcErr)
		return
	}

	response.JSON(w, http.StatusOK, incidents)
}

// Resolve handles POST /incidents/{id}/resolve
// @Summary      Resolve an incident
// @Tags         incidents
// @Produce      json
// @Param        id path int true "Incident ID"
// @Success      200 {object} response.APIResponse{data=Incident}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /incidents/{id}/resolve [post]
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid incident ID")
		return
	}

	incident, svcErr := h.service.Resolve(r.Context(), principal.UserID, id)
	if svcErr != nil {
		response.FromError(w, svcErr)
		return
	}

	response.JSON(w, http.StatusOK, incident)
}

// PublicList handles GET /public/{projectId}
// @Summary      Public status page incidents
// @Description  List incidents of a public project without authentication
// @Tags         incidents
// @Produce      json
// @Param        projectId path int true "Project ID"
// @Success      200 {object} response.APIResponse{data=[]Incident}
// @Failure      404 {object} response.APIResponse
// @Router       /public/{projectId} [get]
func (h *Handler) PublicList(w http.ResponseWriter, r *http.Request) {
	projectID, err := strconv.ParseInt(chi.URLParam(r, "projectId"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid project ID")
		return
	}

	incidents, svcErr := h.service.PublicList(r.Context(), projectID)
	if svcErr != nil {
		response.FromError(w, svcErr)
		return
	}

	response.JSON(w, http.StatusOK, incidents)
}
