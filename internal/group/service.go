package group

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fkhayef/statuswise/pkg/apperr"
)

// invitationTTL is how long an invitation stays respondable
const invitationTTL = 7 * 24 * time.Hour

// Store is the persistence contract the service depends on. Implemented by
// *Repository; tests supply an in-memory fake.
type Store interface {
	CreateGroupWithOwner(ctx context.Context, name string, description *string, ownerID int64) (*Group, error)
	GetGroupByID(ctx context.Context, id int64) (*Group, error)
	ActiveGroupNameExists(ctx context.Context, ownerID int64, name string, excludeID int64) (bool, error)
	UpdateGroup(ctx context.Context, group *Group) error
	ListGroupsForUser(ctx context.Context, userID int64, includeInactive bool) ([]*GroupSummary, error)
	GetActiveMembers(ctx context.Context, groupID int64) ([]*GroupMember, error)
	CountGroupProjects(ctx context.Context, groupID int64) (int, error)

	GetMembership(ctx context.Context, groupID, userID int64) (*GroupMember, error)
	GetMemberByID(ctx context.Context, groupID, memberID int64) (*GroupMember, error)
	UpdateMember(ctx context.Context, member *GroupMember) error

	GetUserByID(ctx context.Context, id int64) (*UserRef, error)
	GetUserByEmail(ctx context.Context, email string) (*UserRef, error)
	PendingInvitationExists(ctx context.Context, groupID int64, invitedUserID *int64, invitedEmail *string) (bool, error)
	CreateInvitation(ctx context.Context, inv *GroupInvitation) (*GroupInvitation, error)
	GetPendingInvitationForResponder(ctx context.Context, invitationID, userID int64, email string) (*GroupInvitation, error)
	RespondInvitation(ctx context.Context, inv *GroupInvitation, newMember *GroupMember) error
	ListInvitationsForUser(ctx context.Context, userID int64, email string, status *InvitationStatus) ([]*GroupInvitation, error)
	GetStats(ctx context.Context) (*GroupStats, error)
}

// Service handles group lifecycle, membership and invitation business logic
type Service struct {
	store  Store
	logger *zap.Logger

	// now is injectable for deterministic expiry tests
	now func() time.Time
}

// NewService creates a new group service
func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Create creates a new group and adds the creator as its OWNER member.
// Group names are unique per owner among active groups only, so a name can be
// reused after the previous group is soft-deleted.
func (s *Service) Create(ctx context.Context, actor Actor, req *CreateGroupRequest) (*Group, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.InvalidArgument("Group name must not be blank")
	}

	exists, err := s.store.ActiveGroupNameExists(ctx, actor.ID, name, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperr.Conflict("A group with this name already exists")
	}

	group, err := s.store.CreateGroupWithOwner(ctx, name, req.Description, actor.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("group created",
		zap.Int64("group_id", group.ID),
		zap.Int64("owner_id", actor.ID),
		zap.String("name", group.Name),
	)

	return group, nil
}

// List retrieves summaries of the groups where the actor holds an active
// membership
func (s *Service) List(ctx context.Context, actor Actor, includeInactive bool) ([]*GroupSummary, error) {
	return s.store.ListGroupsForUser(ctx, actor.ID, includeInactive)
}

// Get retrieves a group with its active members and project count. The actor
// must hold an active membership; otherwise the group is reported absent.
func (s *Service) Get(ctx context.Context, actor Actor, groupID int64) (*Group, []*GroupMember, int, error) {
	membership, err := s.store.GetMembership(ctx, groupID, actor.ID)
	if err != nil {
		return nil, nil, 0, err
	}
	if membership == nil {
		return nil, nil, 0, apperr.NotFound("Group not found")
	}

	group, err := s.store.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, nil, 0, err
	}
	if group == nil {
		return nil, nil, 0, apperr.NotFound("Group not found")
	}

	members, err := s.store.GetActiveMembers(ctx, groupID)
	if err != nil {
		return nil, nil, 0, err
	}

	projectsCount, err := s.store.CountGroupProjects(ctx, groupID)
	if err != nil {
		return nil, nil, 0, err
	}

	return group, members, projectsCount, nil
}

// Update modifies a group. OWNER or ADMIN role is required; changing the
// active flag is applied only for the OWNER. Only fields present in the
// request are modified, and a rename re-checks name uniqueness excluding the
// group itself.
func (s *Service) Update(ctx context.Context, actor Actor, groupID int64, req *UpdateGroupRequest) (*Group, error) {
	membership, err := s.requireRole(ctx, groupID, actor.ID, RoleAdmin, "Insufficient permissions to update group")
	if err != nil {
		return nil, err
	}

	group, err := s.store.GetGroupByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, apperr.NotFound("Group not found")
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperr.InvalidArgument("Group name must not be blank")
		}

		exists, err := s.store.ActiveGroupNameExists(ctx, group.OwnerID, name, groupID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, apperr.Conflict("A group with this name already exists")
		}
		group.Name = name
	}

	if req.Description != nil {
		group.Description = req.Description
	}

	if req.IsActive != nil && membership.Role == RoleOwner {
		group.IsActive = *req.IsActive
	}

	group.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateGroup(ctx, group); err != nil {
		return nil, err
	}

	return group, nil
}

// Delete soft-deletes a group. Only the recorded owner may delete, not merely
// an ADMIN member. Members, invitations and projects are not cascaded.
func (s *Service) Delete(ctx context.Context, actor Actor, groupID int64) error {
	group, err := s.store.GetGroupByID(ctx, groupID)
	if err != nil {
		return err
	}
	if group == nil {
		return apperr.NotFound("Group not found")
	}

	if group.OwnerID != actor.ID {
		return apperr.PermissionDenied("Only group owners can delete groups")
	}

	group.IsActive = false
	group.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateGroup(ctx, group); err != nil {
		return err
	}

	s.logger.Info("group deleted",
		zap.Int64("group_id", groupID),
		zap.Int64("owner_id", actor.ID),
	)

	return nil
}

// GetMembership retrieves a user's active membership in a group, or nil
func (s *Service) GetMembership(ctx context.Context, groupID, userID int64) (*GroupMember, error) {
	return s.store.GetMembership(ctx, groupID, userID)
}

// UpdateMemberRole updates a member's role or active flag. Rules, in order:
// the sole recorded owner may not demote themselves; only the OWNER may grant
// ADMIN or OWNER; the active flag may be toggled independently of role.
func (s *Service) UpdateMemberRole(ctx context.Context, actor Actor, groupID, memberID int64, req *UpdateMemberRequest) (*GroupMember, error) {
	actorMembership, err := s.requireRole(ctx, groupID, actor.ID, RoleAdmin, "Insufficient permissions to update member")
	if err != nil {
		return nil, err
	}

	member, err := s.store.GetMemberByID(ctx, groupID, memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, apperr.NotFound("Member not found")
	}

	if member.UserID == actor.ID && member.Role == RoleOwner {
		if req.Role != nil && *req.Role != RoleOwner {
			return nil, apperr.PermissionDenied("Owner cannot demote themselves. Transfer ownership first.")
		}
	}

	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, apperr.InvalidArgument("Invalid role %q", string(*req.Role))
		}
		if req.Role.AtLeast(RoleAdmin) && actorMembership.Role != RoleOwner {
			return nil, apperr.PermissionDenied("Only owners can promote members to admin or owner")
		}
		member.Role = *req.Role
	}

	if req.IsActive != nil {
		member.IsActive = *req.IsActive
	}

	member.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateMember(ctx, member); err != nil {
		return nil, err
	}

	return member, nil
}

// RemoveMember soft-removes a member from the group. OWNER or ADMIN role is
// required, and the owner may not remove themselves.
func (s *Service) RemoveMember(ctx context.Context, actor Actor, groupID, memberID int64) error {
	if _, err := s.requireRole(ctx, groupID, actor.ID, RoleAdmin, "Insufficient permissions to remove member"); err != nil {
		return err
	}

	member, err := s.store.GetMemberByID(ctx, groupID, memberID)
	if err != nil {
		return err
	}
	if member == nil {
		return apperr.NotFound("Member not found")
	}

	if member.UserID == actor.ID && member.Role == RoleOwner {
		return apperr.PermissionDenied("Owner cannot remove themselves. Transfer ownership first.")
	}

	member.IsActive = false
	member.UpdatedAt = s.now().UTC()
	return s.store.UpdateMember(ctx, member)
}

// Invite sends a group invitation. The actor needs OWNER or ADMIN role in an
// active group, and the target is exactly one of an email address or a user
// ID. An opaque token is generated only when the target is not a known user;
// known users respond through identity-based lookup instead.
func (s *Service) Invite(ctx context.Context, actor Actor, req *CreateInvitationRequest) (*GroupInvitation, error) {
	if req.InvitedEmail == nil && req.InvitedUserID == nil {
		return nil, apperr.InvalidArgument("Either invited_email or invited_user_id must be provided")
	}
	if req.InvitedEmail != nil && req.InvitedUserID != nil {
		return nil, apperr.InvalidArgument("Cannot provide both invited_email and invited_user_id")
	}

	role := req.Role
	if role == "" {
		role = RoleMember
	}
	if !role.Valid() {
		return nil, apperr.InvalidArgument("Invalid role %q", string(req.Role))
	}

	if _, err := s.requireRole(ctx, req.GroupID, actor.ID, RoleAdmin, "Insufficient permissions to send invitations"); err != nil {
		return nil, err
	}

	group, err := s.store.GetGroupByID(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	if group == nil || !group.IsActive {
		return nil, apperr.NotFound("Group not found")
	}

	var invitedUser *UserRef
	invitedUserID := req.InvitedUserID
	invitedEmail := req.InvitedEmail

	if req.InvitedUserID != nil {
		invitedUser, err = s.store.GetUserByID(ctx, *req.InvitedUserID)
		if err != nil {
			return nil, err
		}
		if invitedUser == nil {
			return nil, apperr.NotFound("User not found")
		}
		invitedEmail = &invitedUser.Email
	} else {
		invitedUser, err = s.store.GetUserByEmail(ctx, *req.InvitedEmail)
		if err != nil {
			return nil, err
		}
		if invitedUser != nil {
			invitedUserID = &invitedUser.ID
		}
	}

	if invitedUser != nil {
		existing, err := s.store.GetMembership(ctx, req.GroupID, invitedUser.ID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, apperr.Conflict("User is already a member of this group")
		}
	}

	pending, err := s.store.PendingInvitationExists(ctx, req.GroupID, invitedUserID, invitedEmail)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, apperr.Conflict("Invitation already pending for this user")
	}

	inv := &GroupInvitation{
		GroupID:       req.GroupID,
		InvitedUserID: invitedUserID,
		InvitedEmail:  invitedEmail,
		InvitedByID:   actor.ID,
		Role:          role,
		Status:        InvitationPending,
		Message:       trimPtr(req.Message),
		ExpiresAt:     s.now().UTC().Add(invitationTTL),
	}

	// Email-only invites need an out-of-band acceptance path
	if invitedUser == nil {
		token := uuid.NewString()
		inv.InvitationToken = &token
	}

	inv, err = s.store.CreateInvitation(ctx, inv)
	if err != nil {
		return nil, err
	}
	inv.GroupName = group.Name

	// TODO: send the invitation email once delivery is wired up
	s.logger.Info("group invitation sent",
		zap.Int64("invitation_id", inv.ID),
		zap.Int64("group_id", group.ID),
		zap.String("invited_email", derefString(invitedEmail)),
	)

	return inv, nil
}

// Respond accepts or declines a PENDING invitation. Only a principal matching
// the invited user ID or email may respond. An invitation found past its
// expiry is flipped to EXPIRED on first touch and the call fails with
// Expired; the mutation is deliberate so stale invitations do not stay
// PENDING forever. Accepting re-checks membership inside the write so a user
// who joined through another path does not get a duplicate row.
func (s *Service) Respond(ctx context.Context, actor Actor, invitationID int64, req *RespondInvitationRequest) (*GroupInvitation, error) {
	if req.Status != InvitationAccepted && req.Status != InvitationDeclined {
		return nil, apperr.InvalidArgument("Status must be accepted or declined")
	}

	inv, err := s.store.GetPendingInvitationForResponder(ctx, invitationID, actor.ID, actor.Email)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, apperr.NotFound("Invitation not found or already responded")
	}

	now := s.now().UTC()
	if !inv.ExpiresAt.IsZero() && inv.ExpiresAt.Before(now) {
		inv.Status = InvitationExpired
		inv.UpdatedAt = now
		if err := s.store.RespondInvitation(ctx, inv, nil); err != nil {
			return nil, err
		}
		return nil, apperr.Expired("Invitation has expired")
	}

	inv.Status = req.Status
	inv.RespondedAt = &now
	inv.UpdatedAt = now
	if msg := trimPtr(req.Message); msg != nil {
		inv.Message = msg
	}

	var newMember *GroupMember
	if req.Status == InvitationAccepted {
		existing, err := s.store.GetMembership(ctx, inv.GroupID, actor.ID)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			newMember = &GroupMember{
				GroupID:   inv.GroupID,
				UserID:    actor.ID,
				Role:      inv.Role,
				IsActive:  true,
				UpdatedAt: now,
			}
		}
	}

	if err := s.store.RespondInvitation(ctx, inv, newMember); err != nil {
		return nil, err
	}

	s.logger.Info("invitation responded",
		zap.Int64("invitation_id", inv.ID),
		zap.Int64("group_id", inv.GroupID),
		zap.String("status", string(inv.Status)),
	)

	return inv, nil
}

// ListInvitations retrieves invitations addressed to the actor, optionally
// filtered by status
func (s *Service) ListInvitations(ctx context.Context, actor Actor, status *InvitationStatus) ([]*GroupInvitation, error) {
	if status != nil && !status.Valid() {
		return nil, apperr.InvalidArgument("Invalid status %q", string(*status))
	}
	return s.store.ListInvitationsForUser(ctx, actor.ID, actor.Email, status)
}

// Stats retrieves aggregate group counts for the admin dashboard
func (s *Service) Stats(ctx context.Context) (*GroupStats, error) {
	return s.store.GetStats(ctx)
}

// requireRole loads the actor's active membership and enforces the minimum
// role, returning PermissionDenied with the given message on any shortfall.
// A missing membership is indistinguishable from an insufficient one.
func (s *Service) requireRole(ctx context.Context, groupID, userID int64, min Role, denied string) (*GroupMember, error) {
	membership, err := s.store.GetMembership(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}
	if membership == nil || !membership.Role.AtLeast(min) {
		return nil, apperr.PermissionDenied("%s", denied)
	}
	return membership, nil
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
