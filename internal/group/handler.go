package group

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/fkhayef/statuswise/pkg/middleware"
	"github.com/fkhayef/statuswise/pkg/response"
)

// Handler handles HTTP requests for group operations
type Handler struct {
	service      *Service
	adminEnabled bool
}

// NewHandler creates a new group handler
func NewHandler(service *Service, adminEnabled bool) *Handler {
	return &Handler{service: service, adminEnabled: adminEnabled}
}

// Routes returns the router for group endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)

	// Invitations (static segments before the {id} routes)
	r.Post("/invitations", h.Invite)
	r.Get("/invitations", h.ListInvitations)
	r.Post("/invitations/{invitationId}/respond", h.Respond)

	if h.adminEnabled {
		r.Get("/stats", h.Stats)
	}

	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)

	// Member management
	r.Put("/{id}/members/{memberId}", h.UpdateMember)
	r.Delete("/{id}/members/{memberId}", h.RemoveMember)

	return r
}

// actor resolves the authenticated principal, or writes a 401 and returns false
func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (Actor, bool) {
	principal, ok := middleware.GetPrincipal(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return Actor{}, false
	}
	return Actor{ID: principal.UserID, Email: principal.Email}, true
}

func urlID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

// Create handles POST /groups
// @Summary      Create a new group
// @Description  Create a new group and add the creator as owner
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        request body CreateGroupRequest true "Group creation request"
// @Success      201 {object} response.APIResponse{data=GroupResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /groups [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	group, err := h.service.Create(r.Context(), actor, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, group.ToResponse())
}

// List handles GET /groups
// @Summary      List my groups
// @Description  List groups where the caller holds an active membership
// @Tags         groups
// @Produce      json
// @Param        include_inactive query bool false "Include soft-deleted groups"
// @Success      200 {object} response.APIResponse{data=[]GroupSummary}
// @Router       /groups [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	includeInactive := r.URL.Query().Get("include_inactive") == "true"

	summaries, err := h.service.List(r.Context(), actor, includeInactive)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, summaries)
}

// Get handles GET /groups/{id}
// @Summary      Get group by ID
// @Description  Get a group with its active members
// @Tags         groups
// @Produce      json
// @Param        id path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=GroupResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	id, ok := urlID(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	group, members, projectsCount, err := h.service.Get(r.Context(), actor, id)
	if err != nil {
		response.FromError(w, err)
		return
	}

	resp := group.ToResponse()
	resp.MembersCount = len(members)
	resp.ProjectsCount = projectsCount
	for _, member := range members {
		resp.Members = append(resp.Members, member.ToResponse())
	}

	response.JSON(w, http.StatusOK, resp)
}

// Update handles PUT /groups/{id}
// @Summary      Update a group
// @Description  Update group fields; only provided fields are changed
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        id path int true "Group ID"
// @Param        request body UpdateGroupRequest true "Group update request"
// @Success      200 {object} response.APIResponse{data=GroupResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	id, ok := urlID(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	var req UpdateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	group, err := h.service.Update(r.Context(), actor, id, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, group.ToResponse())
}

// Delete handles DELETE /groups/{id}
// @Summary      Delete a group
// @Description  Soft-delete a group; owner only
// @Tags         groups
// @Produce      json
// @Param        id path int true "Group ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	id, ok := urlID(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid group ID")
		return
	}

	if err := h.service.Delete(r.Context(), actor, id); err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// UpdateMember handles PUT /groups/{id}/members/{memberId}
// @Summary      Update a group member
// @Description  Update a member's role or active status
// @Tags         groups
// @Accept       json
// @Produce      json
// @Param        id path int true "Group ID"
// @Param        memberId path int true "Member ID"
// @Param        request body UpdateMemberRequest true "Member update request"
// @Success      200 {object} response.APIResponse{data=MemberResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id}/members/{memberId} [put]
func (h *Handler) UpdateMember(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	groupID, ok := urlID(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid group ID")
		return
	}
	memberID, ok := urlID(r, "memberId")
	if !ok {
		response.BadRequest(w, "Invalid member ID")
		return
	}

	var req UpdateMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	member, err := h.service.UpdateMemberRole(r.Context(), actor, groupID, memberID, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, member.ToResponse())
}

// RemoveMember handles DELETE /groups/{id}/members/{memberId}
// @Summary      Remove a group member
// @Description  Soft-remove a member from the group
// @Tags         groups
// @Produce      json
// @Param        id path int true "Group ID"
// @Param        memberId path int true "Member ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{id}/members/{memberId} [delete]
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	groupID, ok := urlID(r, "id")
	if !ok {
		response.BadRequest(w, "Invalid group ID")
		return
	}
	memberID, ok := urlID(r, "memberId")
	if !ok {
		response.BadRequest(w, "Invalid member ID")
		return
	}

	if err := h.service.RemoveMember(r.Context(), actor, groupID, memberID); err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]bool{"removed": true})
}

// Invite handles POST /groups/invitations
// @Summary      Invite a user to a group
// @Description  Send a group invitation by email or user ID
// @Tags         invitations
// @Accept       json
// @Produce      json
// @Param        request body CreateInvitationRequest true "Invitation request"
// @Success      201 {object} response.APIResponse{data=InvitationResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      422 {object} response.APIResponse
// @Router       /groups/invitations [post]
func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req CreateInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	inv, err := h.service.Invite(r.Context(), actor, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, inv.ToResponse())
}

// ListInvitations handles GET /groups/invitations
// @Summary      List my invitations
// @Description  List invitations addressed to the caller
// @Tags         invitations
// @Produce      json
// @Param        status query string false "Filter by status"
// @Success      200 {object} response.APIResponse{data=[]InvitationResponse}
// @Router       /groups/invitations [get]
func (h *Handler) ListInvitations(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var status *InvitationStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := InvitationStatus(raw)
		status = &s
	}

	invitations, err := h.service.ListInvitations(r.Context(), actor, status)
	if err != nil {
		response.FromError(w, err)
		return
	}

	resp := make([]*InvitationResponse, 0, len(invitations))
	for _, inv := range invitations {
		resp = append(resp, inv.ToResponse())
	}

	response.JSON(w, http.StatusOK, resp)
}

// Respond handles POST /groups/invitations/{invitationId}/respond
// @Summary      Respond to an invitation
// @Description  Accept or decline a pending invitation
// @Tags         invitations
// @Accept       json
// @Produce      json
// @Param        invitationId path int true "Invitation ID"
// @Param        request body RespondInvitationRequest true "Response request"
// @Success      200 {object} response.APIResponse{data=InvitationResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /groups/invitations/{invitationId}/respond [post]
func (h *Handler) Respond(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	invitationID, ok := urlID(r, "invitationId")
	if !ok {
		response.BadRequest(w, "Invalid invitation ID")
		return
	}

	var req RespondInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	inv, err := h.service.Respond(r.Context(), actor, invitationID, &req)
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, inv.ToResponse())
}

// Stats handles GET /groups/stats
// @Summary      Group statistics
// @Description  Aggregate group counts for the admin dashboard
// @Tags         groups
// @Produce      json
// @Success      200 {object} response.APIResponse{data=GroupStats}
// @Router       /groups/stats [get]
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.actor(w, r); !ok {
		return
	}

	stats, err := h.service.Stats(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, stats)
}
