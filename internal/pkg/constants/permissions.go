package constants

const (
	ReserveCapacity = "reserve_capacity"
	ManageProjects  = "manage_projects"
	ManageWaitlist  = "manage_waitlist"
	ManageUsers     = "manage_users"
	ManageAdmins    = "manage_admins"
)

// PermissionRoles maps each permission to the roles allowed to perform it.
var PermissionRoles = map[string][]string{
	ReserveCapacity: {Customer, Admin, Superadmin},
	ManageProjects:  {Admin, Superadmin},
	ManageWaitlist:  {Admin, Superadmin},
	ManageUsers:     {Admin, Superadmin},
	ManageAdmins:    {Superadmin},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	for _, r := range PermissionRoles[permission] {
		if r == role {
			return true
		}
	}
	return false
}
