package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRolePredicates(t *testing.T) {
	assert.False(t, IsElevated(RoleSales))
	assert.True(t, IsElevated(RoleOperations))
	assert.True(t, IsElevated(RoleManagement))
	assert.True(t, IsElevated(RoleAdmin))
	assert.False(t, IsElevated(RoleAudit))

	assert.True(t, IsReadOnly(RoleAudit))
	assert.False(t, IsReadOnly(RoleAdmin))

	assert.True(t, CanSeeAll(RoleAudit))
	assert.True(t, CanSeeAll(RoleAdmin))
	assert.False(t, CanSeeAll(RoleSales))
}

func TestRoleName(t *testing.T) {
	assert.Equal(t, "sales", RoleName(DefaultRole))
	assert.Equal(t, "admin", RoleName(RoleAdmin))
	assert.Equal(t, "unknown", RoleName(0))
	assert.False(t, IsKnown(7))
}
