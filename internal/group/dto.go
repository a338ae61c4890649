package group

import "time"

// CreateGroupRequest represents the request to create a new group
type CreateGroupRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

// UpdateGroupRequest represents a partial update to a group. Only fields
// present in the request body are modified.
type UpdateGroupRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// UpdateMemberRequest represents a partial update to a member's role or status
type UpdateMemberRequest struct {
	Role     *Role `json:"role,omitempty"`
	IsActive *bool `json:"is_active,omitempty"`
}

// CreateInvitationRequest represents the request to invite a user to a group.
// Exactly one of InvitedEmail/InvitedUserID must be provided.
type CreateInvitationRequest struct {
	GroupID       int64   `json:"group_id" validate:"required"`
	InvitedEmail  *string `json:"invited_email,omitempty"`
	InvitedUserID *int64  `json:"invited_user_id,omitempty"`
	Role          Role    `json:"role"`
	Message       *string `json:"message,omitempty" validate:"omitempty,max=500"`
}

// RespondInvitationRequest represents an accept/decline response to an invitation
type RespondInvitationRequest struct {
	Status  InvitationStatus `json:"status" validate:"required"`
	Message *string          `json:"message,omitempty" validate:"omitempty,max=500"`
}

// GroupResponse represents the detailed response for a group
type GroupResponse struct {
	ID            int64             `json:"id"`
	Name          string            `json:"name"`
	Description   *string           `json:"description,omitempty"`
	OwnerID       int64             `json:"owner_id"`
	OwnerEmail    string            `json:"owner_email,omitempty"`
	IsActive      bool              `json:"is_active"`
	CreatedAt     string            `json:"created_at"`
	UpdatedAt     string            `json:"updated_at"`
	MembersCount  int               `json:"members_count"`
	ProjectsCount int               `json:"projects_count"`
	Members       []*MemberResponse `json:"members,omitempty"`
}

// MemberResponse represents a member in a group response
type MemberResponse struct {
	ID        int64   `json:"id"`
	UserID    int64   `json:"user_id"`
	UserEmail string  `json:"user_email"`
	UserName  *string `json:"user_name,omitempty"`
	Role      Role    `json:"role"`
	IsActive  bool    `json:"is_active"`
	JoinedAt  string  `json:"joined_at"`
}

// InvitationResponse represents an invitation in API responses. The token is
// never echoed back; it travels out of band to the invitee.
type InvitationResponse struct {
	ID             int64            `json:"id"`
	GroupID        int64            `json:"group_id"`
	GroupName      string           `json:"group_name,omitempty"`
	InvitedUserID  *int64           `json:"invited_user_id,omitempty"`
	InvitedEmail   *string          `json:"invited_email,omitempty"`
	InvitedByID    int64            `json:"invited_by_id"`
	InvitedByEmail string           `json:"invited_by_email,omitempty"`
	InvitedByName  *string          `json:"invited_by_name,omitempty"`
	Role           Role             `json:"role"`
	Status         InvitationStatus `json:"status"`
	Message        *string          `json:"message,omitempty"`
	ExpiresAt      string           `json:"expires_at"`
	CreatedAt      string           `json:"created_at"`
	RespondedAt    *string          `json:"responded_at,omitempty"`
}

const timeFormat = "2006-01-02T15:04:05Z"

// ToResponse converts a Group model to a GroupResponse DTO
func (g *Group) ToResponse() *GroupResponse {
	return &GroupResponse{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		OwnerID:     g.OwnerID,
		OwnerEmail:  g.OwnerEmail,
		IsActive:    g.IsActive,
		CreatedAt:   g.CreatedAt.UTC().Format(timeFormat),
		UpdatedAt:   g.UpdatedAt.UTC().Format(timeFormat),
	}
}

// ToResponse converts a GroupMember model to a MemberResponse DTO
func (m *GroupMember) ToResponse() *MemberResponse {
	return &MemberResponse{
		ID:        m.ID,
		UserID:    m.UserID,
		UserEmail: m.UserEmail,
		UserName:  m.UserName,
		Role:      m.Role,
		IsActive:  m.IsActive,
		JoinedAt:  m.JoinedAt.UTC().Format(timeFormat),
	}
}

// ToResponse converts a GroupInvitation model to an InvitationResponse DTO
func (i *GroupInvitation) ToResponse() *InvitationResponse {
	return &InvitationResponse{
		ID:             i.ID,
		GroupID:        i.GroupID,
		GroupName:      i.GroupName,
		InvitedUserID:  i.InvitedUserID,
		InvitedEmail:   i.InvitedEmail,
		InvitedByID:    i.InvitedByID,
		InvitedByEmail: i.InvitedByEmail,
		InvitedByName:  i.InvitedByName,
		Role:           i.Role,
		Status:         i.Status,
		Message:        i.Message,
		ExpiresAt:      i.ExpiresAt.UTC().Format(timeFormat),
		CreatedAt:      i.CreatedAt.UTC().Format(timeFormat),
		RespondedAt:    formatTimePtr(i.RespondedAt),
	}
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(timeFormat)
	return &s
}
