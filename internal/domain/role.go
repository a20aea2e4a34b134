package domain

// Role enumerates the five platform roles.
type Role string

const (
	RoleEmployee              Role = "Employee"
	RoleFacilityManager       Role = "Facility Manager"
	RoleMaintenanceTechnician Role = "Maintenance Technician"
	RoleOperationsManager     Role = "Operations Manager"
	RoleAdmin                 Role = "Admin"
)

// Roles lists every defined role.
var Roles = []Role{
	RoleEmployee,
	RoleFacilityManager,
	RoleMaintenanceTechnician,
	RoleOperationsManager,
	RoleAdmin,
}

// Capabilities is the fixed set of ten permissions gating the UI and the
// service layer. The mapping from role to capabilities is static; there is
// no per-user override.
type Capabilities struct {
	CanViewDashboard    bool `json:"canViewDashboard"`
	CanCreateRequest    bool `json:"canCreateRequest"`
	CanViewOwnRequests  bool `json:"canViewOwnRequests"`
	CanViewAllRequests  bool `json:"canViewAllRequests"`
	CanEditRequest      bool `json:"canEditRequest"`
	CanApproveReject    bool `json:"canApproveReject"`
	CanAssignTechnician bool `json:"canAssignTechnician"`
	CanManageAssets     bool `json:"canManageAssets"`
	CanViewAuditLogs    bool `json:"canViewAuditLogs"`
	CanManageUsers      bool `json:"canManageUsers"`
}

var employeeCapabilities = Capabilities{
	CanViewDashboard:   true,
	CanCreateRequest:   true,
	CanViewOwnRequests: true,
}

// PermissionsFor maps a role to its capability set. It is total: an unknown
// role falls back to the least-privileged Employee vector.
func PermissionsFor(role Role) Capabilities {
	switch role {
	case RoleEmployee:
		return employeeCapabilities
	case RoleFacilityManager:
		return Capabilities{
			CanViewDashboard:    true,
			CanCreateRequest:    true,
			CanViewOwnRequests:  true,
			CanViewAllRequests:  true,
			CanEditRequest:      true,
			CanApproveReject:    true,
			CanAssignTechnician: true,
			CanManageAssets:     true,
			CanViewAuditLogs:    true,
		}
	case RoleMaintenanceTechnician:
		return Capabilities{
			CanViewDashboard:   true,
			CanViewAllRequests: true,
			CanEditRequest:     true,
			CanManageAssets:    true,
		}
	case RoleOperationsManager:
		return Capabilities{
			CanViewDashboard:    true,
			CanCreateRequest:    true,
			CanViewOwnRequests:  true,
			CanViewAllRequests:  true,
			CanEditRequest:      true,
			CanApproveReject:    true,
			CanAssignTechnician: true,
			CanManageAssets:     true,
			CanViewAuditLogs:    true,
		}
	case RoleAdmin:
		return Capabilities{
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
		}
	default:
		return employeeCapabilities
	}
}
