package auth

import (
	"context"
	"testing"

	"sunshare-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestVerifyUser_Nil(t *testing.T) {
	u, err := VerifyUser(nil)
	assert.Nil(t, u)
	assert.Equal(t, ErrNotAuthenticated, err)
}

func TestVerifyUser_NoUserID(t *testing.T) {
	u, err := VerifyUser(map[string]interface{}{
		"fullname": "Test",
		"email":    "a@b.com",
	})
	assert.Nil(t, u)
	assert.Equal(t, ErrNotAuthenticated, err)
}

func TestVerifyUser_Valid(t *testing.T) {
	u, err := VerifyUser(map[string]interface{}{
		"user_id":  "550e8400-e29b-41d4-a716-446655440000",
		"fullname": "Test User",
		"email":    "test@example.com",
		"role":     "customer",
	})
	require.NoError(t, err)
	assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", u.UserID)
	assert.Equal(t, "Test User", u.Fullname)
	assert.Equal(t, "customer", u.Role)
}

func TestGormUserFinder(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))
	hash, err := bcrypt.GenerateFromPassword([]byte("sunsh4re!"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&domain.User{UserName: "asha", Email: "asha@example.com", PasswordHash: string(hash), Fullname: "Asha", Role: "customer"}).Error)

	f := &GormUserFinder{DB: db}
	ctx := context.Background()

	u, err := f.FindByEmailAndPassword(ctx, " ASHA@example.com", "sunsh4re!")
	require.NoError(t, err)
	assert.Equal(t, "asha", u.UserName)

	_, err = f.FindByEmailAndPassword(ctx, "asha@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.FindByEmailAndPassword(ctx, "nobody@example.com", "sunsh4re!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.FindByEmailAndPassword(ctx, "", "x")
	assert.ErrorIs(t, err, ErrEmailPasswordRequired)
}
