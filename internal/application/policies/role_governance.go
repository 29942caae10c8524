// Package policies holds the user-management rules shared by the user service and handlers.
package policies

import (
	"context"
	"errors"

	"sunshare-backend/internal/domain"
	"sunshare-backend/internal/pkg/constants"

	"gorm.io/gorm"
)

type RoleAssignment struct {
	ActorUserID  string
	ActorRole    string
	TargetUserID string
	TargetRole   string
}

// ValidateRoleAssignment returns the target user when the actor may give it TargetRole.
func ValidateRoleAssignment(ctx context.Context, db *gorm.DB, p RoleAssignment) (*domain.User, error) {
	if !constants.IsValidRole(p.TargetRole) {
		return nil, ErrInvalidRole
	}
	if constants.IsStaff(p.TargetRole) && !constants.AllowedRole(constants.ManageAdmins, p.ActorRole) {
		return nil, ErrOnlySuperadminsCanAssignStaff
	}
	if p.ActorUserID == p.TargetUserID {
		return nil, ErrUsersCannotModifyTheirOwnRole
	}

	var target domain.User
	if err := db.WithContext(ctx).Where("user_id = ?", p.TargetUserID).First(&target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTargetUserNotFound
		}
		return nil, err
	}
	if !constants.AllowedRole(constants.ManageAdmins, p.ActorRole) && constants.IsStaff(target.Role) {
		return nil, ErrAdminsCannotModifyStaff
	}
	if target.Role == constants.Superadmin && p.TargetRole != constants.Superadmin {
		var count int64
		if err := db.WithContext(ctx).Model(&domain.User{}).Where("role = ?", constants.Superadmin).Count(&count).Error; err != nil {
			return nil, err
		}
		if count <= 1 {
			return nil, ErrMustKeepOneSuperadmin
		}
	}
	return &target, nil
}
