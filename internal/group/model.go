package group

import "time"

// Role represents a member's role within a group
type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// Level returns the rank of the role for permission comparisons.
// All "at least admin" style checks go through this ordering instead of
// comparing role strings at call sites.
func (r Role) Level() int {
	switch r {
	case RoleOwner:
		return 3
	case RoleAdmin:
		return 2
	case RoleMember:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether the role ranks at or above other
func (r Role) AtLeast(other Role) bool {
	return r.Level() >= other.Level()
}

// Valid reports whether the role is one of the known values
func (r Role) Valid() bool {
	return r.Level() > 0
}

// InvitationStatus represents the state of a group invitation
type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationDeclined InvitationStatus = "declined"
	InvitationExpired  InvitationStatus = "expired"
)

// Terminal reports whether the status permits no further transitions
func (s InvitationStatus) Terminal() bool {
	return s == InvitationAccepted || s == InvitationDeclined || s == InvitationExpired
}

// Valid reports whether the status is one of the known values
func (s InvitationStatus) Valid() bool {
	switch s {
	case InvitationPending, InvitationAccepted, InvitationDeclined, InvitationExpired:
		return true
	}
	return false
}

// Actor is the authenticated principal executing a group operation. Email is
// needed because invitations may target an address before the user exists.
type Actor struct {
	ID    int64
	Email string
}

// Group represents a multi-tenant group. Groups are never physically
// deleted; is_active=false marks a soft-deleted group.
type Group struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	OwnerID     int64     `json:"owner_id"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Populated from JOIN
	OwnerEmail string `json:"owner_email,omitempty"`
}

// GroupMember represents one user's standing in one group. There is at most
// one row per (group_id, user_id); removal flips is_active and a rejoin
// reactivates the same row.
type GroupMember struct {
	ID        int64     `json:"id"`
	GroupID   int64     `json:"group_id"`
	UserID    int64     `json:"user_id"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	JoinedAt  time.Time `json:"joined_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Populated from JOIN
	UserEmail string  `json:"user_email,omitempty"`
	UserName  *string `json:"user_name,omitempty"`
}

// GroupInvitation represents an invitation to join a group. Exactly one of
// InvitedUserID/InvitedEmail is set at creation. InvitationToken is populated
// only when the invitee is not a known user; known users respond through
// identity-based lookup. Invitations are never deleted, only transitioned.
type GroupInvitation struct {
	ID              int64            `json:"id"`
	GroupID         int64            `json:"group_id"`
	InvitedUserID   *int64           `json:"invited_user_id,omitempty"`
	InvitedEmail    *string          `json:"invited_email,omitempty"`
	InvitedByID     int64            `json:"invited_by_id"`
	Role            Role             `json:"role"`
	Status          InvitationStatus `json:"status"`
	Message         *string          `json:"message,omitempty"`
	InvitationToken *string          `json:"invitation_token,omitempty"`
	ExpiresAt       time.Time        `json:"expires_at"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	RespondedAt     *time.Time       `json:"responded_at,omitempty"`

	// Populated from JOIN
	GroupName      string  `json:"group_name,omitempty"`
	InvitedByEmail string  `json:"invited_by_email,omitempty"`
	InvitedByName  *string `json:"invited_by_name,omitempty"`
}

// GroupSummary is a lightweight row for group listings, carrying the
// requesting user's role and aggregate counts.
type GroupSummary struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Description   *string `json:"description,omitempty"`
	OwnerID       int64   `json:"owner_id"`
	IsActive      bool    `json:"is_active"`
	MembersCount  int     `json:"members_count"`
	ProjectsCount int     `json:"projects_count"`
	UserRole      Role    `json:"user_role"`
}

// GroupStats holds aggregate counts for the admin dashboard
type GroupStats struct {
	TotalGroups        int `json:"total_groups"`
	ActiveGroups       int `json:"active_groups"`
	TotalMembers       int `json:"total_members"`
	PendingInvitations int `json:"pending_invitations"`
}

// UserRef is the minimal view of a user needed to resolve invitations
type UserRef struct {
	ID    int64
	Email string
}
