package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionsForEmployee(t *testing.T) {
	perms := PermissionsFor(RoleEmployee)
	assert.Equal(t, Capabilities{
		CanViewDashboard:   true,
		CanCreateRequest:   true,
		CanViewOwnRequests: true,
	}, perms)
}

func TestPermissionsForMaintenanceTechnician(t *testing.T) {
	perms := PermissionsFor(RoleMaintenanceTechnician)
	assert.Equal(t, Capabilities{
		CanViewDashboard:   true,
		CanViewAllRequests: true,
		CanEditRequest:     true,
		CanManageAssets:    true,
	}, perms)
	assert.False(t, perms.CanCreateRequest)
	assert.False(t, perms.CanApproveReject)
}

func TestPermissionsForManagersMatchExceptUserAdmin(t *testing.T) {
	fm := PermissionsFor(RoleFacilityManager)
	om := PermissionsFor(RoleOperationsManager)
	require.Equal(t, fm, om)
	assert.True(t, fm.CanApproveReject)
	assert.True(t, fm.CanAssignTechnician)
	assert.True(t, fm.CanViewAuditLogs)
	assert.False(t, fm.CanManageUsers)
}

func TestPermissionsForAdminHasEverything(t *testing.T) {
	perms := PermissionsFor(RoleAdmin)
	assert.Equal(t, Capabilities{
		CanViewDashboard:    true,
		CanCreateRequest:    true,
		CanViewOwnRequests:  true,
		CanViewAllRequests:  true,
		CanEditRequest:      true,
		CanApproveReject:    true,
		CanAssignTechnician: true,
		CanManageAssets:     true,
		CanViewAuditLogs:    true,
		CanManageUsers:      true,
	}, perms)
}

func TestPermissionsForUnknownRoleFallsBackToEmployee(t *testing.T) {
	assert.Equal(t, PermissionsFor(RoleEmployee), PermissionsFor(Role("Contractor")))
}

func TestTerminalStatuses(t *testing.T) {
	assert.True(t, RequestStatusApproved.Terminal())
	assert.True(t, RequestStatusRejected.Terminal())
	assert.False(t, RequestStatusPending.Terminal())
	assert.False(t, RequestStatusInProgress.Terminal())
	assert.False(t, RequestStatusException.Terminal())
}
