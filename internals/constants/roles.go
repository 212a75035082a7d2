package constants

import "fmt"

// User roles as stored in users.role
const (
	RoleSuperadmin = "superadmin"
	RoleAdmin      = "admin"
	RoleTeacher    = "teacher"
	RoleStaff      = "staff"
	RoleGuardian   = "guardian"
)

// StaffRoles may call the staff API.
var StaffRoles = []string{RoleTeacher, RoleStaff, RoleAdmin, RoleSuperadmin}

const ErrOnlyStaffCanAccess = "only teachers, staff or admins may access %s"

func RoleErrorStaff(feature string) string {
	return fmt.Sprintf(ErrOnlyStaffCanAccess, feature)
}

func IsStaffRole(role string) bool {
	for _, r := range StaffRoles {
		if r == role {
			return true
		}
	}
	return false
}
