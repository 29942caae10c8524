// Package reservations lets customers claim capacity blocks of active projects.
package reservations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sunshare-backend/internal/application/economics"
	"sunshare-backend/internal/application/emails"
	"sunshare-backend/internal/domain"
	"sunshare-backend/internal/infrastructure/events"
	"sunshare-backend/internal/infrastructure/persistence"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

var (
	ErrBlockNotFound    = errors.New("Capacity block not found")
	ErrProjectNotActive = errors.New("Project is not accepting reservations")
	ErrBlockUnavailable = errors.New("Capacity block is no longer available")
)

// Customer is the session user making a reservation.
type Customer struct {
	UserID   uuid.UUID
	Email    string
	Fullname string
}

// Result is returned to the customer after a successful reservation.
type Result struct {
	Allocation domain.Allocation `json:"allocation"`
	ProjectID  uuid.UUID         `json:"project_id"`
	Kw         float64           `json:"kw"`
	Economics  economics.Result  `json:"economics"`
}

// BlockAllocatedEvent is the payload published on events.SubjectBlockAllocated.
type BlockAllocatedEvent struct {
	AllocationID uuid.UUID `json:"allocation_id"`
	BlockID      uuid.UUID `json:"capacity_block_id"`
	ProjectID    uuid.UUID `json:"project_id"`
	UserID       uuid.UUID `json:"user_id"`
	Kw           float64   `json:"kw"`
	AllocatedAt  time.Time `json:"allocated_at"`
}

type Service struct {
	Repo      persistence.AllocationRepository
	Publisher events.Publisher
	Email     emails.Sender
}

// Reserve allocates one AVAILABLE block to the customer. The database decides races:
// only the first conditional update on a block succeeds.
func (s *Service) Reserve(ctx context.Context, cust Customer, blockID uuid.UUID) (*Result, error) {
	var (
		allocation domain.Allocation
		block      *domain.CapacityBlock
		project    *domain.Project
	)
	err := s.Repo.WithinTx(ctx, func(tx persistence.AllocationRepository) error {
		var err error
		block, err = tx.FindBlock(ctx, blockID)
		if err != nil {
			if errors.Is(err, persistence.ErrNotFound) {
				return ErrBlockNotFound
			}
			return fmt.Errorf("find block: %w", err)
		}
		project, err = tx.FindProject(ctx, block.ProjectID)
		if err != nil {
			if errors.Is(err, persistence.ErrNotFound) {
				return ErrProjectNotActive
			}
			return fmt.Errorf("find project: %w", err)
		}
		if project.Status != domain.ProjectActive {
			return ErrProjectNotActive
		}

		claimed, err := tx.ClaimBlock(ctx, blockID)
		if err != nil {
			return fmt.Errorf("claim block: %w", err)
		}
		if !claimed {
			return ErrBlockUnavailable
		}

		allocation = domain.Allocation{UserID: cust.UserID, CapacityBlockID: blockID}
		if err := tx.CreateAllocation(ctx, &allocation); err != nil {
			return fmt.Errorf("create allocation: %w", err)
		}
		data, _ := json.Marshal(map[string]interface{}{
			"block_id":      blockID.String(),
			"allocation_id": allocation.AllocationID.String(),
			"kw":            block.Kw,
		})
		return tx.CreateEvent(ctx, &domain.ProjectEvent{
			ProjectID:   project.ProjectID,
			EventType:   domain.EventBlockAllocated,
			EventData:   datatypes.JSON(data),
			ActorUserID: &cust.UserID,
		})
	})
	if err != nil {
		return nil, err
	}

	result := &Result{
		Allocation: allocation,
		ProjectID:  project.ProjectID,
		Kw:         block.Kw,
		Economics:  economics.Calculate(block.Kw),
	}
	log.Info().
		Str("allocation_id", allocation.AllocationID.String()).
		Str("block_id", blockID.String()).
		Str("user_id", cust.UserID.String()).
		Float64("kw", block.Kw).
		Msg("capacity block reserved")

	s.notify(ctx, cust, project, result)
	return result, nil
}

// notify runs after commit; failures are logged and never undo the reservation.
func (s *Service) notify(ctx context.Context, cust Customer, project *domain.Project, r *Result) {
	if s.Publisher != nil {
		evt := BlockAllocatedEvent{
			AllocationID: r.Allocation.AllocationID,
			BlockID:      r.Allocation.CapacityBlockID,
			ProjectID:    project.ProjectID,
			UserID:       cust.UserID,
			Kw:           r.Kw,
			AllocatedAt:  r.Allocation.CreatedAt,
		}
		if err := s.Publisher.Publish(ctx, events.SubjectBlockAllocated, evt); err != nil {
			log.Warn().Err(err).Str("allocation_id", r.Allocation.AllocationID.String()).Msg("publish block allocated failed")
		}
	}
	if s.Email != nil && cust.Email != "" {
		details := emails.ReservationDetails{
			ProjectName:    project.Name,
			Kw:             r.Kw,
			MonthlySavings: r.Economics.MonthlySavings,
			ReservationFee: r.Economics.ReservationFee,
		}
		if err := s.Email.SendReservationConfirmed(ctx, cust.Email, cust.Fullname, details); err != nil {
			log.Warn().Err(err).Str("email", cust.Email).Msg("reservation email failed")
		}
	}
}

// ListMine returns the customer's allocations, newest first.
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID) ([]persistence.AllocationView, error) {
	return s.Repo.ListByUser(ctx, userID)
}
