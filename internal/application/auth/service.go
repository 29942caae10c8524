package auth

import (
	"context"
	"errors"
	"strings"

	"sunshare-backend/internal/domain"
	"sunshare-backend/internal/middleware"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserFinder looks up a user by credentials (GORM in production, doubles in tests).
type UserFinder interface {
	FindByEmailAndPassword(ctx context.Context, email, password string) (*domain.User, error)
}

// GormUserFinder implements UserFinder using GORM and bcrypt.
type GormUserFinder struct{ DB *gorm.DB }

// FindByEmailAndPassword returns ErrInvalidCredentials for both an unknown email and a wrong
// password so the response does not reveal which accounts exist.
func (g *GormUserFinder) FindByEmailAndPassword(ctx context.Context, email, password string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrEmailPasswordRequired
	}
	var u domain.User
	if err := g.DB.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if u.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &u, nil
}

// VerifyUser validates the raw session user and returns it for /me.
func VerifyUser(sessionUser interface{}) (*middleware.SessionUser, error) {
	m, ok := sessionUser.(map[string]interface{})
	if !ok {
		return nil, ErrNotAuthenticated
	}
	userID, _ := m["user_id"].(string)
	if userID == "" {
		return nil, ErrNotAuthenticated
	}
	out := &middleware.SessionUser{UserID: userID}
	out.Fullname, _ = m["fullname"].(string)
	out.Email, _ = m["email"].(string)
	out.Role, _ = m["role"].(string)
	return out, nil
}
