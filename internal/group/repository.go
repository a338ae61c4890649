package group

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/fkhayef/statuswise/pkg/apperr"
)

// Repository handles group data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new group repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// isUniqueViolation reports whether err is a postgres unique constraint
// violation. Constraints are the source of truth under concurrent writers;
// violations are converted to domain conflicts instead of relying on
// serializable isolation.
func isUniqueViolation(err error) bool {
	if pqErr, ok := err.(*pq.Error); ok {
		return pqErr.Code == "23505"
	}
	return false
}

// CreateGroupWithOwner inserts a group and its owner's OWNER membership in a
// single transaction. A group never exists without exactly one owner
// membership at creation time.
func (r *Repository) CreateGroupWithOwner(ctx context.Context, name string, description *string, ownerID int64) (*Group, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	groupQuery := `
		INSERT INTO groups (name, description, owner_id, is_active)
		VALUES ($1, $2, $3, TRUE)
		RETURNING id, name, description, owner_id, is_active, created_at, updated_at
	`

	group := &Group{}
	err = tx.QueryRowContext(ctx, groupQuery, name, description, ownerID).Scan(
		&group.ID,
		&group.Name,
		&group.Description,
		&group.OwnerID,
		&group.IsActive,
		&group.CreatedAt,
		&group.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("A group with this name already exists")
		}
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	memberQuery := `
		INSERT INTO group_members (group_id, user_id, role, is_active)
		VALUES ($1, $2, $3, TRUE)
	`

	if _, err := tx.ExecContext(ctx, memberQuery, group.ID, ownerID, RoleOwner); err != nil {
		return nil, fmt.Errorf("failed to create owner membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit group creation: %w", err)
	}

	return group, nil
}

// GetGroupByID retrieves a group by its ID, including inactive groups
func (r *Repository) GetGroupByID(ctx context.Context, id int64) (*Group, error) {
	query := `
		SELECT g.id, g.name, g.description, g.owner_id, g.is_active, g.created_at, g.updated_at, u.email
		FROM groups g
		JOIN users u ON g.owner_id = u.id
		WHERE g.id = $1
	`

	group := &Group{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&group.ID,
		&group.Name,
		&group.Description,
		&group.OwnerID,
		&group.IsActive,
		&group.CreatedAt,
		&group.UpdatedAt,
		&group.OwnerEmail,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	return group, nil
}

// ActiveGroupNameExists reports whether an active group with the given name
// already exists for the owner, excluding excludeID (pass 0 on creation)
func (r *Repository) ActiveGroupNameExists(ctx context.Context, ownerID int64, name string, excludeID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM groups
			WHERE owner_id = $1 AND name = $2 AND is_active AND id <> $3
		)
	`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, ownerID, name, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check group name: %w", err)
	}

	return exists, nil
}

// UpdateGroup persists name, description, active flag and updated_at
func (r *Repository) UpdateGroup(ctx context.Context, group *Group) error {
	query := `
		UPDATE groups
		SET name = $2, description = $3, is_active = $4, updated_at = $5
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, group.ID, group.Name, group.Description, group.IsActive, group.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("A group with this name already exists")
		}
		return fmt.Errorf("failed to update group: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperr.NotFound("Group not found")
	}

	return nil
}

// ListGroupsForUser retrieves summaries of the groups where the user holds an
// active membership. Inactive groups are filtered out unless includeInactive.
func (r *Repository) ListGroupsForUser(ctx context.Context, userID int64, includeInactive bool) ([]*GroupSummary, error) {
	query := `
		SELECT g.id, g.name, g.description, g.owner_id, g.is_active, gm.role,
		       (SELECT COUNT(*) FROM group_members m WHERE m.group_id = g.id AND m.is_active) AS members_count,
		       (SELECT COUNT(*) FROM projects p WHERE p.group_id = g.id) AS projects_count
		FROM groups g
		JOIN group_members gm ON g.id = gm.group_id
		WHERE gm.user_id = $1 AND gm.is_active
	`
	if !includeInactive {
		query += ` AND g.is_active`
	}
	query += ` ORDER BY g.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var summaries []*GroupSummary
	for rows.Next() {
		summary := &GroupSummary{}
		if err := rows.Scan(
			&summary.ID,
			&summary.Name,
			&summary.Description,
			&summary.OwnerID,
			&summary.IsActive,
			&summary.UserRole,
			&summary.MembersCount,
			&summary.ProjectsCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan group summary: %w", err)
		}
		summaries = append(summaries, summary)
	}

	return summaries, rows.Err()
}

// GetActiveMembers retrieves all active members of a group
func (r *Repository) GetActiveMembers(ctx context.Context, groupID int64) ([]*GroupMember, error) {
	query := `
		SELECT gm.id, gm.group_id, gm.user_id, gm.role, gm.is_active, gm.joined_at, gm.updated_at, u.email, u.name
		FROM group_members gm
		JOIN users u ON gm.user_id = u.id
		WHERE gm.group_id = $1 AND gm.is_active
		ORDER BY gm.joined_at
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	var members []*GroupMember
	for rows.Next() {
		member := &GroupMember{}
		if err := rows.Scan(
			&member.ID,
			&member.GroupID,
			&member.UserID,
			&member.Role,
			&member.IsActive,
			&member.JoinedAt,
			&member.UpdatedAt,
			&member.UserEmail,
			&member.UserName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}

	return members, rows.Err()
}

// CountGroupProjects counts the projects shared with a group
func (r *Repository) CountGroupProjects(ctx context.Context, groupID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM projects WHERE group_id = $1`
	if err := r.db.QueryRowContext(ctx, query, groupID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count projects: %w", err)
	}
	return count, nil
}

// GetMembership retrieves a user's active membership in a group. Only active
// memberships are consulted for authorization.
func (r *Repository) GetMembership(ctx context.Context, groupID, userID int64) (*GroupMember, error) {
	query := `
		SELECT id, group_id, user_id, role, is_active, joined_at, updated_at
		FROM group_members
		WHERE group_id = $1 AND user_id = $2 AND is_active
	`

	member := &GroupMember{}
	err := r.db.QueryRowContext(ctx, query, groupID, userID).Scan(
		&member.ID,
		&member.GroupID,
		&member.UserID,
		&member.Role,
		&member.IsActive,
		&member.JoinedAt,
		&member.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	return member, nil
}

// GetMemberByID retrieves a member row by its ID within a group, regardless
// of active state
func (r *Repository) GetMemberByID(ctx context.Context, groupID, memberID int64) (*GroupMember, error) {
	query := `
		SELECT id, group_id, user_id, role, is_active, joined_at, updated_at
		FROM group_members
		WHERE id = $1 AND group_id = $2
	`

	member := &GroupMember{}
	err := r.db.QueryRowContext(ctx, query, memberID, groupID).Scan(
		&member.ID,
		&member.GroupID,
		&member.UserID,
		&member.Role,
		&member.IsActive,
		&member.JoinedAt,
		&member.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return member, nil
}

// UpdateMember persists a member's role, active flag and updated_at
func (r *Repository) UpdateMember(ctx context.Context, member *GroupMember) error {
	query := `
		UPDATE group_members
		SET role = $2, is_active = $3, updated_at = $4
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, member.ID, member.Role, member.IsActive, member.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperr.NotFound("Member not found")
	}

	return nil
}

// GetUserByID retrieves the minimal user view needed for invitations
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*UserRef, error) {
	query := `SELECT id, email FROM users WHERE id = $1`

	ref := &UserRef{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&ref.ID, &ref.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return ref, nil
}

// GetUserByEmail retrieves the minimal user view by email
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*UserRef, error) {
	query := `SELECT id, email FROM users WHERE email = $1`

	ref := &UserRef{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(&ref.ID, &ref.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return ref, nil
}

// PendingInvitationExists reports whether a PENDING invitation already exists
// in the group for the given user ID or email
func (r *Repository) PendingInvitationExists(ctx context.Context, groupID int64, invitedUserID *int64, invitedEmail *string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM group_invitations
			WHERE group_id = $1 AND status = $2
			  AND (($3::bigint IS NOT NULL AND invited_user_id = $3)
			    OR ($4::varchar IS NOT NULL AND invited_email = $4))
		)
	`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, groupID, InvitationPending, invitedUserID, invitedEmail).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check pending invitations: %w", err)
	}

	return exists, nil
}

// CreateInvitation inserts a new PENDING invitation
func (r *Repository) CreateInvitation(ctx context.Context, inv *GroupInvitation) (*GroupInvitation, error) {
	query := `
		INSERT INTO group_invitations
			(group_id, invited_user_id, invited_email, invited_by_id, role, status, message, invitation_token, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		inv.GroupID,
		inv.InvitedUserID,
		inv.InvitedEmail,
		inv.InvitedByID,
		inv.Role,
		inv.Status,
		inv.Message,
		inv.InvitationToken,
		inv.ExpiresAt,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("Invitation already pending for this user")
		}
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	return inv, nil
}

// GetPendingInvitationForResponder retrieves a PENDING invitation by ID,
// restricted to the responder matching the invited user ID or email. Terminal
// invitations are filtered out, which is what makes responded/expired
// invitations look absent to a second response attempt.
func (r *Repository) GetPendingInvitationForResponder(ctx context.Context, invitationID, userID int64, email string) (*GroupInvitation, error) {
	query := `
		SELECT gi.id, gi.group_id, gi.invited_user_id, gi.invited_email, gi.invited_by_id,
		       gi.role, gi.status, gi.message, gi.invitation_token, gi.expires_at,
		       gi.created_at, gi.updated_at, gi.responded_at, g.name
		FROM group_invitations gi
		JOIN groups g ON gi.group_id = g.id
		WHERE gi.id = $1 AND gi.status = $2
		  AND (gi.invited_user_id = $3 OR gi.invited_email = $4)
	`

	inv := &GroupInvitation{}
	err := r.db.QueryRowContext(ctx, query, invitationID, InvitationPending, userID, email).Scan(
		&inv.ID,
		&inv.GroupID,
		&inv.InvitedUserID,
		&inv.InvitedEmail,
		&inv.InvitedByID,
		&inv.Role,
		&inv.Status,
		&inv.Message,
		&inv.InvitationToken,
		&inv.ExpiresAt,
		&inv.CreatedAt,
		&inv.UpdatedAt,
		&inv.RespondedAt,
		&inv.GroupName,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get invitation: %w", err)
	}

	return inv, nil
}

// RespondInvitation persists an invitation transition and, when newMember is
// non-nil, the accepted membership, in a single transaction. The membership
// insert reuses a previously removed (group_id, user_id) row by reactivating
// it: the store holds one physical row per pair.
func (r *Repository) RespondInvitation(ctx context.Context, inv *GroupInvitation, newMember *GroupMember) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	invQuery := `
		UPDATE group_invitations
		SET status = $2, message = $3, responded_at = $4, updated_at = $5
		WHERE id = $1
	`

	if _, err := tx.ExecContext(ctx, invQuery, inv.ID, inv.Status, inv.Message, inv.RespondedAt, inv.UpdatedAt); err != nil {
		return fmt.Errorf("failed to update invitation: %w", err)
	}

	if newMember != nil {
		memberQuery := `
			INSERT INTO group_members (group_id, user_id, role, is_active, updated_at)
			VALUES ($1, $2, $3, TRUE, $4)
			ON CONFLICT (group_id, user_id)
			DO UPDATE SET role = EXCLUDED.role, is_active = TRUE, updated_at = EXCLUDED.updated_at
			RETURNING id, group_id, user_id, role, is_active, joined_at, updated_at
		`

		err := tx.QueryRowContext(ctx, memberQuery,
			newMember.GroupID,
			newMember.UserID,
			newMember.Role,
			newMember.UpdatedAt,
		).Scan(
			&newMember.ID,
			&newMember.GroupID,
			&newMember.UserID,
			&newMember.Role,
			&newMember.IsActive,
			&newMember.JoinedAt,
			&newMember.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create membership: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit invitation response: %w", err)
	}

	return nil
}

// ListInvitationsForUser retrieves invitations addressed to the user by ID or
// email, optionally filtered by status
func (r *Repository) ListInvitationsForUser(ctx context.Context, userID int64, email string, status *InvitationStatus) ([]*GroupInvitation, error) {
	query := `
		SELECT gi.id, gi.group_id, gi.invited_user_id, gi.invited_email, gi.invited_by_id,
		       gi.role, gi.status, gi.message, gi.invitation_token, gi.expires_at,
		       gi.created_at, gi.updated_at, gi.responded_at, g.name, u.email, u.name
		FROM group_invitations gi
		JOIN groups g ON gi.group_id = g.id
		JOIN users u ON gi.invited_by_id = u.id
		WHERE (gi.invited_user_id = $1 OR gi.invited_email = $2)
	`
	args := []interface{}{userID, email}
	if status != nil {
		query += ` AND gi.status = $3`
		args = append(args, *status)
	}
	query += ` ORDER BY gi.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", err)
	}
	defer rows.Close()

	var invitations []*GroupInvitation
	for rows.Next() {
		inv := &GroupInvitation{}
		if err := rows.Scan(
			&inv.ID,
			&inv.GroupID,
			&inv.InvitedUserID,
			&inv.InvitedEmail,
			&inv.InvitedByID,
			&inv.Role,
			&inv.Status,
			&inv.Message,
			&inv.InvitationToken,
			&inv.ExpiresAt,
			&inv.CreatedAt,
			&inv.UpdatedAt,
			&inv.RespondedAt,
			&inv.GroupName,
			&inv.InvitedByEmail,
			&inv.InvitedByName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		invitations = append(invitations, inv)
	}

	return invitations, rows.Err()
}

// GetStats retrieves aggregate group counts for the admin dashboard
func (r *Repository) GetStats(ctx context.Context) (*GroupStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM groups),
			(SELECT COUNT(*) FROM groups WHERE is_active),
			(SELECT COUNT(*) FROM group_members WHERE is_active),
			(SELECT COUNT(*) FROM group_invitations WHERE status = $1)
	`

	stats := &GroupStats{}
	err := r.db.QueryRowContext(ctx, query, InvitationPending).Scan(
		&stats.TotalGroups,
		&stats.ActiveGroups,
		&stats.TotalMembers,
		&stats.PendingInvitations,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get group stats: %w", err)
	}

	return stats, nil
}
