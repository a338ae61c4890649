package group

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleOrdering(t *testing.T) {
	assert.True(t, RoleOwner.AtLeast(RoleAdmin))
	assert.True(t, RoleOwner.AtLeast(RoleOwner))
	assert.True(t, RoleAdmin.AtLeast(RoleMember))
	assert.False(t, RoleAdmin.AtLeast(RoleOwner))
	assert.False(t, RoleMember.AtLeast(RoleAdmin))
	assert.True(t, RoleMember.AtLeast(RoleMember))

	// Unknown roles rank below everything
	assert.False(t, Role("superuser").AtLeast(RoleMember))
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleOwner.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.True(t, RoleMember.Valid())
	assert.False(t, Role("").Valid())
	assert.False(t, Role("OWNER").Valid())
}

func TestInvitationStatusTerminal(t *testing.T) {
	assert.False(t, InvitationPending.Terminal())
	assert.True(t, InvitationAccepted.Terminal())
	assert.True(t, InvitationDeclined.Terminal())
	assert.True(t, InvitationExpired.Terminal())
}

func TestInvitationStatusValid(t *testing.T) {
	for _, status := range []InvitationStatus{InvitationPending, InvitationAccepted, InvitationDeclined, InvitationExpired} {
		assert.True(t, status.Valid(), "status %q", status)
	}
	assert.False(t, InvitationStatus("").Valid())
	assert.False(t, InvitationStatus("revoked").Valid())
}
