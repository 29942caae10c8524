package policies

import (
	"context"
	"testing"

	"sunshare-backend/internal/domain"
	"sunshare-backend/internal/pkg/constants"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, role string) string {
	id := uuid.New()
	require.NoError(t, db.Create(&domain.User{
		UserID: id, UserName: id.String()[:8], Email: id.String()[:8] + "@x.io", PasswordHash: "x", Fullname: "U", Role: role,
	}).Error)
	return id.String()
}

func TestValidateRoleAssignment(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	super := seedUser(t, db, constants.Superadmin)
	admin := seedUser(t, db, constants.Admin)
	otherAdmin := seedUser(t, db, constants.Admin)
	cust := seedUser(t, db, constants.Customer)

	_, err := ValidateRoleAssignment(ctx, db, RoleAssignment{ActorUserID: admin, ActorRole: constants.Admin, TargetUserID: cust, TargetRole: "owner"})
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = ValidateRoleAssignment(ctx, db, RoleAssignment{ActorUserID: admin, ActorRole: constants.Admin, TargetUserID: cust, TargetRole: constants.Admin})
	assert.ErrorIs(t, err, ErrOnlySuperadminsCanAssignStaff)

	_, err = ValidateRoleAssignment(ctx, db, RoleAssignment{ActorUserID: super, ActorRole: constants.Superadmin, TargetUserID: super, TargetRole: constants.Admin})
	assert.ErrorIs(t, err, ErrUsersCannotModifyTheirOwnRole)

	_, err = ValidateRoleAssignment(ctx, db, RoleAssignment{ActorUserID: admin, ActorRole: constants.Admin, TargetUserID: otherAdmin, TargetRole: constants.Customer})
	assert.ErrorIs(t, err, ErrAdminsCannotModifyStaff)

	_, err = ValidateRoleAssignment(ctx, db, RoleAssignment{ActorUserID: admin, ActorRole: constants.Admin, TargetUserID: uuid.NewString(), TargetRole: constants.Customer})
	assert.ErrorIs(t, err, ErrTargetUserNotFound)

	target, err := ValidateRoleAssignment(ctx, db, RoleAssignment{ActorUserID: super, ActorRole: constants.Superadmin, TargetUserID: cust, TargetRole: constants.Admin})
	require.NoError(t, err)
	assert.Equal(t, cust, target.UserID.String())
}

func TestValidateRoleAssignment_LastSuperadmin(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	s1 := seedUser(t, db, constants.Superadmin)
	s2 := seedUser(t, db, constants.Superadmin)

	_, err := ValidateRoleAssignment(ctx, db, RoleAssignment{ActorUserID: s1, ActorRole: constants.Superadmin, TargetUserID: s2, TargetRole: constants.Admin})
	require.NoError(t, err)
	require.NoError(t, db.Model(&domain.User{}).Where("user_id = ?", s2).Update("role", constants.Admin).Error)

	// s1 is now the only superadmin
	_, err = ValidateRoleAssignment(ctx, db, RoleAssignment{ActorUserID: s2, ActorRole: constants.Superadmin, TargetUserID: s1, TargetRole: constants.Customer})
	assert.ErrorIs(t, err, ErrMustKeepOneSuperadmin)
}

func TestDestroyUserSessions(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()
	ctx := context.Background()

	require.NoError(t, rdb.Set(ctx, "session:a", "{}", 0).Err())
	require.NoError(t, rdb.Set(ctx, "session:b", "{}", 0).Err())
	require.NoError(t, rdb.Set(ctx, "session:other", "{}", 0).Err())
	require.NoError(t, rdb.SAdd(ctx, "user_sessions:u1", "a", "b").Err())

	DestroyUserSessions(ctx, rdb, "u1")
	assert.False(t, mr.Exists("session:a"))
	assert.False(t, mr.Exists("session:b"))
	assert.False(t, mr.Exists("user_sessions:u1"))
	assert.True(t, mr.Exists("session:other"))
}
