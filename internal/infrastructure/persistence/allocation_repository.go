package persistence

import (
	"context"
	"errors"
	"time"

	"sunshare-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AllocationView is an allocation joined with its block and project for the customer dashboard.
type AllocationView struct {
	AllocationID uuid.UUID `json:"id"`
	BlockID      uuid.UUID `json:"capacity_block_id"`
	ProjectID    uuid.UUID `json:"project_id"`
	ProjectName  string    `json:"project_name"`
	Kw           float64   `json:"kw"`
	RatePerKwh   float64   `json:"rate_per_kwh"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AllocationRepository persists reservations of capacity blocks.
type AllocationRepository interface {
	FindBlock(ctx context.Context, blockID uuid.UUID) (*domain.CapacityBlock, error)
	// FindProject reads the block's project FOR SHARE, holding off a concurrent delete or
	// status change until the reservation commits.
	FindProject(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	// ClaimBlock flips a block from AVAILABLE to ALLOCATED only if it is still AVAILABLE
	// and its project is ACTIVE and not deleted. It reports false otherwise.
	ClaimBlock(ctx context.Context, blockID uuid.UUID) (bool, error)
	CreateAllocation(ctx context.Context, a *domain.Allocation) error
	CreateEvent(ctx context.Context, e *domain.ProjectEvent) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]AllocationView, error)
	WithinTx(ctx context.Context, fn func(tx AllocationRepository) error) error
}

type GormAllocationRepository struct {
	DB *gorm.DB
}

func (r *GormAllocationRepository) FindBlock(ctx context.Context, blockID uuid.UUID) (*domain.CapacityBlock, error) {
	var b domain.CapacityBlock
	if err := r.DB.WithContext(ctx).Where("id = ?", blockID).First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *GormAllocationRepository) FindProject(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	return findProject(r.DB.WithContext(ctx).Clauses(clause.Locking{Strength: "SHARE"}), id)
}

func (r *GormAllocationRepository) ClaimBlock(ctx context.Context, blockID uuid.UUID) (bool, error) {
	active := r.DB.Model(&domain.Project{}).Select("id").
		Where("status = ? AND deleted_at IS NULL", domain.ProjectActive)
	res := r.DB.WithContext(ctx).Model(&domain.CapacityBlock{}).
		Where("id = ? AND status = ? AND project_id IN (?)", blockID, domain.BlockAvailable, active).
		Update("status", domain.BlockAllocated)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GormAllocationRepository) CreateAllocation(ctx context.Context, a *domain.Allocation) error {
	return r.DB.WithContext(ctx).Create(a).Error
}

func (r *GormAllocationRepository) CreateEvent(ctx context.Context, e *domain.ProjectEvent) error {
	return r.DB.WithContext(ctx).Create(e).Error
}

func (r *GormAllocationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]AllocationView, error) {
	var allocations []domain.Allocation
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID).Order(`"createdAt" DESC`).Find(&allocations).Error; err != nil {
		return nil, err
	}
	if len(allocations) == 0 {
		return []AllocationView{}, nil
	}

	blockIDs := make([]uuid.UUID, 0, len(allocations))
	for _, a := range allocations {
		blockIDs = append(blockIDs, a.CapacityBlockID)
	}
	var blocks []domain.CapacityBlock
	if err := r.DB.WithContext(ctx).Where("id IN ?", blockIDs).Find(&blocks).Error; err != nil {
		return nil, err
	}
	blockByID := make(map[uuid.UUID]domain.CapacityBlock, len(blocks))
	projectIDs := make([]uuid.UUID, 0, len(blocks))
	for _, b := range blocks {
		blockByID[b.BlockID] = b
		projectIDs = append(projectIDs, b.ProjectID)
	}
	// Unscoped so a reservation on a since-retired project still shows its name.
	var projects []domain.Project
	if err := r.DB.WithContext(ctx).Unscoped().Where("id IN ?", projectIDs).Find(&projects).Error; err != nil {
		return nil, err
	}
	projectByID := make(map[uuid.UUID]domain.Project, len(projects))
	for _, p := range projects {
		projectByID[p.ProjectID] = p
	}

	out := make([]AllocationView, 0, len(allocations))
	for _, a := range allocations {
		b := blockByID[a.CapacityBlockID]
		p := projectByID[b.ProjectID]
		out = append(out, AllocationView{
			AllocationID: a.AllocationID,
			BlockID:      a.CapacityBlockID,
			ProjectID:    b.ProjectID,
			ProjectName:  p.Name,
			Kw:           b.Kw,
			RatePerKwh:   p.RatePerKwh,
			CreatedAt:    a.CreatedAt,
		})
	}
	return out, nil
}

func (r *GormAllocationRepository) WithinTx(ctx context.Context, fn func(tx AllocationRepository) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormAllocationRepository{DB: tx})
	})
}
