package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRolePredicates(t *testing.T) {
	assert.False(t, RoleCitizen.IsStaff())
	assert.True(t, RoleSupport.IsStaff())
	assert.True(t, RoleAdmin.IsStaff())

	assert.False(t, RoleCitizen.IsAdmin())
	assert.False(t, RoleSupport.IsAdmin())
	assert.True(t, RoleAdmin.IsAdmin())
}

func TestIsOwnerOrStaff(t *testing.T) {
	owner := Principal{AccountID: "a1", Role: RoleCitizen}
	stranger := Principal{AccountID: "a2", Role: RoleCitizen}
	support := Principal{AccountID: "a3", Role: RoleSupport}

	assert.True(t, IsOwnerOrStaff(owner, "a1"))
	assert.False(t, IsOwnerOrStaff(stranger, "a1"))
	assert.True(t, IsOwnerOrStaff(support, "a1"))
}

func TestHelpRequestStatusNext(t *testing.T) {
	next, ok := HelpRequestStatusPending.Next()
	assert.True(t, ok)
	assert.Equal(t, HelpRequestStatusInProgress, next)

	next, ok = HelpRequestStatusInProgress.Next()
	assert.True(t, ok)
	assert.Equal(t, HelpRequestStatusResolved, next)

	_, ok = HelpRequestStatusResolved.Next()
	assert.False(t, ok)
}
