package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"sunshare-backend/internal/application/emails"
	"sunshare-backend/internal/application/policies"
	"sunshare-backend/internal/domain"
	"sunshare-backend/internal/infrastructure/persistence"
	"sunshare-backend/internal/pkg/constants"
	"sunshare-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUserNameRequired    = errors.New("Username is required and must be a non-empty string")
	ErrInvalidEmail        = errors.New("Invalid email format")
	ErrInvalidPassword     = errors.New("Invalid password format")
	ErrFullnameRequired    = errors.New("Full name is required and must be a non-empty string")
	ErrInvalidFullname     = errors.New("Full name contains invalid characters (only letters, spaces, hyphens, and apostrophes allowed)")
	ErrInvalidPhone        = errors.New("Invalid phone number")
	ErrEmailTaken          = errors.New("Email already registered")
	ErrUserNameTaken       = errors.New("Username already registered")
	ErrMissingUserID       = errors.New("Missing user ID")
	ErrInvalidUserID       = errors.New("Invalid user ID format (must be a valid UUID)")
	ErrMissingUpdateFields = errors.New("Missing update fields")
	ErrNoValidFields       = errors.New("No valid update fields provided")
	ErrUserNotFound        = errors.New("User not found")
)

const bcryptCost = 10

// Service holds DB and Redis for user operations.
type Service struct {
	DB    *gorm.DB
	Rdb   *redis.Client
	Email emails.Sender
}

type CreateUserInput struct {
	UserName string  `json:"user_name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Fullname string  `json:"fullname"`
	Phone    *string `json:"phone"`
	State    *string `json:"state"`
}

// CreateUser registers a customer account.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	userName := strings.TrimSpace(in.UserName)
	if userName == "" {
		return nil, ErrUserNameRequired
	}
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if !validation.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if !validation.IsValidPassword(in.Password) {
		return nil, ErrInvalidPassword
	}
	fullname, err := normalizeFullname(in.Fullname)
	if err != nil {
		return nil, err
	}
	if in.Phone != nil && !validation.IsValidPhone(*in.Phone) {
		return nil, ErrInvalidPhone
	}

	var existing domain.User
	if err := s.DB.WithContext(ctx).Unscoped().Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}
	if err := s.DB.WithContext(ctx).Unscoped().Where("user_name = ?", userName).First(&existing).Error; err == nil {
		return nil, ErrUserNameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		UserName:     userName,
		Email:        email,
		PasswordHash: string(hash),
		Fullname:     fullname,
		Phone:        optional(in.Phone),
		State:        optional(in.State),
		Role:         constants.Customer,
	}
	if err := s.DB.WithContext(ctx).Create(u).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	if s.Email != nil {
		if err := s.Email.SendWelcome(ctx, u.Email, firstName(u.Fullname)); err != nil {
			log.Warn().Err(err).Str("user_id", u.UserID.String()).Msg("welcome email failed")
		}
	}
	return u, nil
}

// UpdateUser applies account-setting changes: fullname, phone, state, password.
func (s *Service) UpdateUser(ctx context.Context, userID string, fields map[string]interface{}) (*domain.User, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil, ErrInvalidUserID
	}
	if len(fields) == 0 {
		return nil, ErrMissingUpdateFields
	}

	allowed := map[string]bool{"fullname": true, "phone": true, "state": true, "password": true}
	upd := make(map[string]interface{})
	for k, v := range fields {
		if allowed[k] {
			upd[k] = v
		}
	}
	if len(upd) == 0 {
		return nil, ErrNoValidFields
	}

	if v, ok := upd["password"]; ok {
		p, _ := v.(string)
		if !validation.IsValidPassword(p) {
			return nil, ErrInvalidPassword
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(p), bcryptCost)
		if err != nil {
			return nil, err
		}
		upd["password_hash"] = string(hash)
		delete(upd, "password")
	}
	if v, ok := upd["fullname"]; ok {
		fn, _ := v.(string)
		normalized, err := normalizeFullname(fn)
		if err != nil {
			return nil, err
		}
		upd["fullname"] = normalized
	}
	if v, ok := upd["phone"]; ok && v != nil {
		p, isStr := v.(string)
		if !isStr || !validation.IsValidPhone(p) {
			return nil, ErrInvalidPhone
		}
		upd["phone"] = strings.TrimSpace(p)
	}
	if v, ok := upd["state"]; ok && v != nil {
		st, _ := v.(string)
		upd["state"] = optional(&st)
	}

	result := s.DB.WithContext(ctx).Model(&domain.User{}).Where("user_id = ?", userID).Updates(upd)
	if result.Error != nil {
		return nil, fmt.Errorf("update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}

	u, err := s.ViewUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if s.Email != nil {
		if err := s.Email.SendAccountUpdated(ctx, u.Email, firstName(u.Fullname)); err != nil {
			log.Warn().Err(err).Str("user_id", userID).Msg("account updated email failed")
		}
	}
	return u, nil
}

func (s *Service) ViewUser(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

type ListUsersResult struct {
	Users      []domain.User          `json:"users"`
	Pagination persistence.Pagination `json:"pagination"`
}

// ListUsers pages through accounts for the admin console. search matches name, username or email.
func (s *Service) ListUsers(ctx context.Context, search, role string, page, limit int) (*ListUsersResult, error) {
	q := s.DB.WithContext(ctx).Model(&domain.User{})
	if role != "" {
		q = q.Where("role = ?", role)
	}
	if term := strings.TrimSpace(search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("(LOWER(fullname) LIKE ? OR LOWER(user_name) LIKE ? OR LOWER(email) LIKE ?)", like, like, like)
	}
	p := persistence.NewPageRequest(page, limit)
	windowed, total, err := persistence.Paginate(q, p, `"createdAt" DESC`)
	if err != nil {
		return nil, err
	}
	users := []domain.User{}
	if err := windowed.Find(&users).Error; err != nil {
		return nil, err
	}
	return &ListUsersResult{Users: users, Pagination: persistence.NewPagination(p, total)}, nil
}

type UpdateUserRoleInput struct {
	ActorUserID  string
	ActorRole    string
	TargetUserID string
	TargetRole   string
}

// UpdateUserRole changes the target's role after the governance checks and signs the target
// out everywhere so the new role applies on next login.
func (s *Service) UpdateUserRole(ctx context.Context, in UpdateUserRoleInput) (*domain.User, error) {
	if _, err := uuid.Parse(in.TargetUserID); err != nil {
		return nil, ErrInvalidUserID
	}
	target, err := policies.ValidateRoleAssignment(ctx, s.DB, policies.RoleAssignment{
		ActorUserID:  in.ActorUserID,
		ActorRole:    in.ActorRole,
		TargetUserID: in.TargetUserID,
		TargetRole:   in.TargetRole,
	})
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(target).Update("role", in.TargetRole).Error; err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}
	target.Role = in.TargetRole
	policies.DestroyUserSessions(ctx, s.Rdb, in.TargetUserID)
	log.Info().Str("actor_id", in.ActorUserID).Str("user_id", in.TargetUserID).Str("role", in.TargetRole).Msg("user role changed")
	return target, nil
}

func normalizeFullname(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrFullnameRequired
	}
	if !validation.IsValidFullname(trimmed) {
		return "", ErrInvalidFullname
	}
	return titleCaseAndNormalize(trimmed), nil
}

func optional(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func firstName(fullname string) string {
	if f := strings.Fields(fullname); len(f) > 0 {
		return f[0]
	}
	return ""
}

func titleCaseAndNormalize(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	var b strings.Builder
	capitalize := true
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !capitalize {
				b.WriteRune(' ')
				capitalize = true
			}
			continue
		}
		if capitalize {
			b.WriteRune(unicode.ToUpper(r))
			capitalize = false
		} else {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
