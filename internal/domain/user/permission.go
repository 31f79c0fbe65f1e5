package user

type Permission string

const (
	// Scan logs
	PermissionScanImport Permission = "scan.import"
	PermissionScanView   Permission = "scan.view"

	// Shift templates
	PermissionShiftView   Permission = "shift.view"
	PermissionShiftManage Permission = "shift.manage"

	// Attendance
	PermissionAttendanceViewAll Permission = "attendance.view_all"
	PermissionAttendanceAdjust  Permission = "attendance.adjust"
	PermissionReportsExport     Permission = "reports.export"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleOwner: {
		PermissionScanImport,
		PermissionScanView,
		PermissionShiftView,
		PermissionShiftManage,
		PermissionAttendanceViewAll,
		PermissionAttendanceAdjust,
		PermissionReportsExport,
	},
	RoleManager: {
		PermissionScanImport,
		PermissionScanView,
		PermissionShiftView,
		PermissionShiftManage,
		PermissionAttendanceViewAll,
		PermissionAttendanceAdjust,
		PermissionReportsExport,
	},
	RoleEmployee: {
		PermissionShiftView,
	},
	RolePending: {
		// Pending role has no permissions
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
