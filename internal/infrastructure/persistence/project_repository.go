package persistence

import (
	"context"
	"errors"
	"strings"

	"sunshare-backend/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a requested record does not exist (or is soft-deleted).
var ErrNotFound = errors.New("not found")

// ProjectFilter narrows the admin project listing. Empty fields are ignored.
type ProjectFilter struct {
	Status string
	State  string
	Search string
}

// ProjectRepository is the persistence port of the project admin service. Write methods
// are meant to be called on the repository handed to WithinTx.
type ProjectRepository interface {
	FindProjects(ctx context.Context, f ProjectFilter, p PageRequest) ([]domain.Project, int64, error)
	FindProject(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	// LockProject reads a project FOR UPDATE. Reservations take a share lock on the
	// same row, so a delete or status change waits for in-flight claims and vice versa.
	LockProject(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	CountAllocatedBlocks(ctx context.Context, projectID uuid.UUID) (int64, error)
	SpvExists(ctx context.Context, spvID string) (bool, error)
	BlocksForProjects(ctx context.Context, ids []uuid.UUID) ([]domain.CapacityBlock, error)
	FindEvents(ctx context.Context, projectID uuid.UUID) ([]domain.ProjectEvent, error)
	WithinTx(ctx context.Context, fn func(tx ProjectRepository) error) error

	CreateProject(project *domain.Project) error
	UpdateProject(project *domain.Project, updates map[string]interface{}) error
	SoftDeleteProject(project *domain.Project) error
	CreateBlock(block *domain.CapacityBlock) error
	CreateEvent(event *domain.ProjectEvent) error
}

// GormProjectRepository implements ProjectRepository on GORM.
type GormProjectRepository struct {
	DB *gorm.DB
}

// FindProjects returns one page of non-deleted projects ordered newest first, plus the total match count.
func (r *GormProjectRepository) FindProjects(ctx context.Context, f ProjectFilter, p PageRequest) ([]domain.Project, int64, error) {
	q := r.DB.WithContext(ctx).Model(&domain.Project{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.State != "" {
		q = q.Where("state = ?", f.State)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(location) LIKE ? OR LOWER(spv_id) LIKE ?)", like, like, like)
	}

	page, total, err := Paginate(q, p, `"createdAt" DESC`)
	if err != nil {
		return nil, 0, err
	}
	var projects []domain.Project
	if err := page.Find(&projects).Error; err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

func (r *GormProjectRepository) FindProject(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	return findProject(r.DB.WithContext(ctx), id)
}

func (r *GormProjectRepository) LockProject(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	return findProject(r.DB.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func findProject(q *gorm.DB, id uuid.UUID) (*domain.Project, error) {
	var project domain.Project
	if err := q.Where("id = ?", id).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &project, nil
}

// CountAllocatedBlocks counts ALLOCATED blocks regardless of their kW.
func (r *GormProjectRepository) CountAllocatedBlocks(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&domain.CapacityBlock{}).
		Where("project_id = ? AND status = ?", projectID, domain.BlockAllocated).
		Count(&n).Error
	return n, err
}

func (r *GormProjectRepository) SpvExists(ctx context.Context, spvID string) (bool, error) {
	var count int64
	// Unscoped: a retired-and-deleted project still owns its SPV id.
	err := r.DB.WithContext(ctx).Unscoped().Model(&domain.Project{}).Where("spv_id = ?", spvID).Count(&count).Error
	return count > 0, err
}

// BlocksForProjects loads the blocks of every listed project in one query.
func (r *GormProjectRepository) BlocksForProjects(ctx context.Context, ids []uuid.UUID) ([]domain.CapacityBlock, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var blocks []domain.CapacityBlock
	if err := r.DB.WithContext(ctx).Where("project_id IN ?", ids).Order(`"createdAt" ASC`).Find(&blocks).Error; err != nil {
		return nil, err
	}
	return blocks, nil
}

func (r *GormProjectRepository) FindEvents(ctx context.Context, projectID uuid.UUID) ([]domain.ProjectEvent, error) {
	var events []domain.ProjectEvent
	if err := r.DB.WithContext(ctx).Where("project_id = ?", projectID).Order(`"createdAt" DESC`).Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// WithinTx runs fn with a repository bound to one transaction.
func (r *GormProjectRepository) WithinTx(ctx context.Context, fn func(tx ProjectRepository) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormProjectRepository{DB: tx})
	})
}

func (r *GormProjectRepository) CreateProject(project *domain.Project) error {
	return r.DB.Create(project).Error
}

func (r *GormProjectRepository) UpdateProject(project *domain.Project, updates map[string]interface{}) error {
	return r.DB.Model(project).Updates(updates).Error
}

// SoftDeleteProject forces RETIRED and stamps deleted_at.
func (r *GormProjectRepository) SoftDeleteProject(project *domain.Project) error {
	if err := r.DB.Model(project).Update("status", domain.ProjectRetired).Error; err != nil {
		return err
	}
	return r.DB.Delete(project).Error
}

func (r *GormProjectRepository) CreateBlock(block *domain.CapacityBlock) error {
	return r.DB.Create(block).Error
}

func (r *GormProjectRepository) CreateEvent(event *domain.ProjectEvent) error {
	return r.DB.Create(event).Error
}
