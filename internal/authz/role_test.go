package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("editor")
	assert.True(t, ok)
	assert.Equal(t, RoleEditor, role)

	role, ok = ParseRole("  SUPER_ADMIN ")
	assert.True(t, ok)
	assert.Equal(t, RoleSuperAdmin, role)

	_, ok = ParseRole("wizard")
	assert.False(t, ok)

	_, ok = ParseRole("")
	assert.False(t, ok)
}

func TestRoleOrdering(t *testing.T) {
	assert.Greater(t, RoleSuperAdmin.Level(), RoleAdmin.Level())
	assert.Greater(t, RoleAdmin.Level(), RoleEditor.Level())
	assert.Greater(t, RoleEditor.Level(), RoleReporter.Level())
	assert.Greater(t, RoleReporter.Level(), RoleUser.Level())
	assert.Zero(t, Role("WIZARD").Level())
}

func TestRoleAtLeast(t *testing.T) {
	assert.True(t, RoleAdmin.AtLeast(RoleEditor))
	assert.True(t, RoleAdmin.AtLeast(RoleAdmin))
	assert.False(t, RoleReporter.AtLeast(RoleEditor))

	// Unknown roles never clear any bar, including against themselves.
	assert.False(t, Role("WIZARD").AtLeast(RoleUser))
	assert.False(t, Role("").AtLeast(Role("")))
}
