package waitlist

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sunshare-backend/internal/application/emails"
	"sunshare-backend/internal/domain"
	"sunshare-backend/internal/infrastructure/persistence"
	"sunshare-backend/internal/pkg/validation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	ErrInvalidEmail      = errors.New("Invalid email format")
	ErrFullnameRequired  = errors.New("fullname is required")
	ErrInvalidPhone      = errors.New("Invalid phone number")
	ErrAlreadyOnWaitlist = errors.New("This email is already on the waitlist")
	ErrEntryNotFound     = errors.New("Waitlist entry not found")
	ErrInvalidStatus     = errors.New("Invalid waitlist status")
)

type Service struct {
	DB    *gorm.DB
	Email emails.Sender
}

type JoinInput struct {
	Email    string          `json:"email"`
	Fullname string          `json:"fullname"`
	Phone    *string         `json:"phone"`
	State    *string         `json:"state"`
	Metadata domain.Metadata `json:"metadata"`
}

// Join adds a PENDING entry. Emails are stored lowercased, so duplicates are case-insensitive.
func (s *Service) Join(ctx context.Context, in JoinInput) (*domain.WaitlistEntry, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !validation.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	fullname := strings.TrimSpace(in.Fullname)
	if fullname == "" {
		return nil, ErrFullnameRequired
	}
	if in.Phone != nil && !validation.IsValidPhone(*in.Phone) {
		return nil, ErrInvalidPhone
	}
	if err := in.Metadata.Validate(); err != nil {
		return nil, err
	}

	var count int64
	if err := s.DB.WithContext(ctx).Model(&domain.WaitlistEntry{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("check waitlist email: %w", err)
	}
	if count > 0 {
		return nil, ErrAlreadyOnWaitlist
	}

	entry := &domain.WaitlistEntry{
		Email:    email,
		Fullname: fullname,
		Phone:    trimmed(in.Phone),
		State:    trimmed(in.State),
		Status:   domain.WaitlistPending,
		Metadata: in.Metadata,
	}
	if err := s.DB.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, fmt.Errorf("create waitlist entry: %w", err)
	}
	log.Info().Str("entry_id", entry.EntryID.String()).Msg("waitlist joined")

	if s.Email != nil {
		if err := s.Email.SendWaitlistJoined(ctx, email, firstName(fullname)); err != nil {
			log.Warn().Err(err).Str("email", email).Msg("waitlist email failed")
		}
	}
	return entry, nil
}

type ListResult struct {
	Entries    []domain.WaitlistEntry `json:"entries"`
	Pagination persistence.Pagination `json:"pagination"`
}

// List pages through entries, newest first, optionally filtered by status.
func (s *Service) List(ctx context.Context, status string, page, limit int) (*ListResult, error) {
	q := s.DB.WithContext(ctx).Model(&domain.WaitlistEntry{})
	if status != "" {
		status = strings.ToUpper(status)
		if !domain.IsValidWaitlistStatus(status) {
			return nil, ErrInvalidStatus
		}
		q = q.Where("status = ?", status)
	}
	p := persistence.NewPageRequest(page, limit)
	windowed, total, err := persistence.Paginate(q, p, `"createdAt" DESC`)
	if err != nil {
		return nil, err
	}
	entries := []domain.WaitlistEntry{}
	if err := windowed.Find(&entries).Error; err != nil {
		return nil, err
	}
	return &ListResult{Entries: entries, Pagination: persistence.NewPagination(p, total)}, nil
}

// UpdateStatus moves an entry to any status in the closed set.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*domain.WaitlistEntry, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if !domain.IsValidWaitlistStatus(status) {
		return nil, ErrInvalidStatus
	}
	var entry domain.WaitlistEntry
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(&entry).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("update waitlist status: %w", err)
	}
	entry.Status = status
	return &entry, nil
}

func trimmed(s *string) *string {
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
	if i := strings.IndexByte(fullname, ' '); i > 0 {
		return fullname[:i]
	}
	return fullname
}
