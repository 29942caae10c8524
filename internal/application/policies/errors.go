package policies

import "errors"

var (
	ErrInvalidRole                   = errors.New("Invalid role")
	ErrOnlySuperadminsCanAssignStaff = errors.New("Only superadmins can assign admin or superadmin roles")
	ErrTargetUserNotFound            = errors.New("Target user not found")
	ErrUsersCannotModifyTheirOwnRole = errors.New("Users cannot modify their own role")
	ErrAdminsCannotModifyStaff       = errors.New("Admins cannot change the role of admins or superadmins")
	ErrMustKeepOneSuperadmin         = errors.New("There must be at least one superadmin")
)
