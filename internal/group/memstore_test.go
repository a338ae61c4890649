package group

import (
	"context"
	"strings"
)

// memStore is an in-memory Store used to test the service without a
// database. It mirrors the repository's contracts: active-only membership
// lookups, PENDING-only responder lookups, and one physical member row per
// (group_id, user_id) pair that gets reactivated on rejoin.
type memStore struct {
	groups      map[int64]*Group
	members     map[int64]*GroupMember
	invitations map[int64]*GroupInvitation
	users       map[int64]*UserRef
	projects    map[int64]int // group id -> shared project count

	nextGroupID      int64
	nextMemberID     int64
	nextInvitationID int64
	nextUserID       int64
}

func newMemStore() *memStore {
	return &memStore{
		groups:      make(map[int64]*Group),
		members:     make(map[int64]*GroupMember),
		invitations: make(map[int64]*GroupInvitation),
		users:       make(map[int64]*UserRef),
		projects:    make(map[int64]int),
	}
}

func (m *memStore) addUser(email string) *UserRef {
	m.nextUserID++
	ref := &UserRef{ID: m.nextUserID, Email: email}
	m.users[ref.ID] = ref
	return ref
}

func (m *memStore) CreateGroupWithOwner(ctx context.Context, name string, description *string, ownerID int64) (*Group, error) {
	m.nextGroupID++
	g := &Group{
		ID:          m.nextGroupID,
		Name:        name,
		Description: description,
		OwnerID:     ownerID,
		IsActive:    true,
	}
	m.groups[g.ID] = g

	m.nextMemberID++
	m.members[m.nextMemberID] = &GroupMember{
		ID:       m.nextMemberID,
		GroupID:  g.ID,
		UserID:   ownerID,
		Role:     RoleOwner,
		IsActive: true,
	}

	copied := *g
	return &copied, nil
}

func (m *memStore) GetGroupByID(ctx context.Context, id int64) (*Group, error) {
	g, ok := m.groups[id]
	if !ok {
		return nil, nil
	}
	copied := *g
	return &copied, nil
}

func (m *memStore) ActiveGroupNameExists(ctx context.Context, ownerID int64, name string, excludeID int64) (bool, error) {
	for _, g := range m.groups {
		if g.OwnerID == ownerID && g.Name == name && g.IsActive && g.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) UpdateGroup(ctx context.Context, group *Group) error {
	copied := *group
	m.groups[group.ID] = &copied
	return nil
}

func (m *memStore) ListGroupsForUser(ctx context.Context, userID int64, includeInactive bool) ([]*GroupSummary, error) {
	var summaries []*GroupSummary
	for _, member := range m.members {
		if member.UserID != userID || !member.IsActive {
			continue
		}
		g := m.groups[member.GroupID]
		if g == nil || (!includeInactive && !g.IsActive) {
			continue
		}
		summaries = append(summaries, &GroupSummary{
			ID:            g.ID,
			Name:          g.Name,
			Description:   g.Description,
			OwnerID:       g.OwnerID,
			IsActive:      g.IsActive,
			MembersCount:  m.countActiveMembers(g.ID),
			ProjectsCount: m.projects[g.ID],
			UserRole:      member.Role,
		})
	}
	return summaries, nil
}

func (m *memStore) countActiveMembers(groupID int64) int {
	count := 0
	for _, member := range m.members {
		if member.GroupID == groupID && member.IsActive {
			count++
		}
	}
	return count
}

func (m *memStore) GetActiveMembers(ctx context.Context, groupID int64) ([]*GroupMember, error) {
	var members []*GroupMember
	for _, member := range m.members {
		if member.GroupID == groupID && member.IsActive {
			copied := *member
			if u, ok := m.users[member.UserID]; ok {
				copied.UserEmail = u.Email
			}
			members = append(members, &copied)
		}
	}
	return members, nil
}

func (m *memStore) CountGroupProjects(ctx context.Context, groupID int64) (int, error) {
	return m.projects[groupID], nil
}

func (m *memStore) GetMembership(ctx context.Context, groupID, userID int64) (*GroupMember, error) {
	for _, member := range m.members {
		if member.GroupID == groupID && member.UserID == userID && member.IsActive {
			copied := *member
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memStore) GetMemberByID(ctx context.Context, groupID, memberID int64) (*GroupMember, error) {
	member, ok := m.members[memberID]
	if !ok || member.GroupID != groupID {
		return nil, nil
	}
	copied := *member
	return &copied, nil
}

func (m *memStore) UpdateMember(ctx context.Context, member *GroupMember) error {
	copied := *member
	m.members[member.ID] = &copied
	return nil
}

func (m *memStore) GetUserByID(ctx context.Context, id int64) (*UserRef, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (m *memStore) GetUserByEmail(ctx context.Context, email string) (*UserRef, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (m *memStore) PendingInvitationExists(ctx context.Context, groupID int64, invitedUserID *int64, invitedEmail *string) (bool, error) {
	for _, inv := range m.invitations {
		if inv.GroupID != groupID || inv.Status != InvitationPending {
			continue
		}
		if invitedUserID != nil && inv.InvitedUserID != nil && *inv.InvitedUserID == *invitedUserID {
			return true, nil
		}
		if invitedEmail != nil && inv.InvitedEmail != nil && *inv.InvitedEmail == *invitedEmail {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) CreateInvitation(ctx context.Context, inv *GroupInvitation) (*GroupInvitation, error) {
	m.nextInvitationID++
	inv.ID = m.nextInvitationID
	copied := *inv
	m.invitations[inv.ID] = &copied
	return inv, nil
}

func (m *memStore) GetPendingInvitationForResponder(ctx context.Context, invitationID, userID int64, email string) (*GroupInvitation, error) {
	inv, ok := m.invitations[invitationID]
	if !ok || inv.Status != InvitationPending {
		return nil, nil
	}
	matchID := inv.InvitedUserID != nil && *inv.InvitedUserID == userID
	matchEmail := inv.InvitedEmail != nil && *inv.InvitedEmail == email
	if !matchID && !matchEmail {
		return nil, nil
	}
	copied := *inv
	return &copied, nil
}

func (m *memStore) RespondInvitation(ctx context.Context, inv *GroupInvitation, newMember *GroupMember) error {
	copied := *inv
	m.invitations[inv.ID] = &copied

	if newMember != nil {
		// Reactivate an existing (group, user) row if there is one
		for _, member := range m.members {
			if member.GroupID == newMember.GroupID && member.UserID == newMember.UserID {
				member.Role = newMember.Role
				member.IsActive = true
				member.UpdatedAt = newMember.UpdatedAt
				*newMember = *member
				return nil
			}
		}
		m.nextMemberID++
		newMember.ID = m.nextMemberID
		newMember.IsActive = true
		stored := *newMember
		m.members[newMember.ID] = &stored
	}
	return nil
}

func (m *memStore) ListInvitationsForUser(ctx context.Context, userID int64, email string, status *InvitationStatus) ([]*GroupInvitation, error) {
	var invitations []*GroupInvitation
	for _, inv := range m.invitations {
		matchID := inv.InvitedUserID != nil && *inv.InvitedUserID == userID
		matchEmail := inv.InvitedEmail != nil && *inv.InvitedEmail == email
		if !matchID && !matchEmail {
			continue
		}
		if status != nil && inv.Status != *status {
			continue
		}
		copied := *inv
		invitations = append(invitations, &copied)
	}
	return invitations, nil
}

func (m *memStore) GetStats(ctx context.Context) (*GroupStats, error) {
	stats := &GroupStats{}
	for _, g := range m.groups {
		stats.TotalGroups++
		if g.IsActive {
			stats.ActiveGroups++
		}
	}
	for _, member := range m.members {
		if member.IsActive {
			stats.TotalMembers++
		}
	}
	for _, inv := range m.invitations {
		if inv.Status == InvitationPending {
			stats.PendingInvitations++
		}
	}
	return stats, nil
}
