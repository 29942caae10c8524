package projects

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"sunshare-backend/internal/application/capacity"
	"sunshare-backend/internal/domain"
	"sunshare-backend/internal/infrastructure/persistence"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
)

// Service implements the admin project back-office.
type Service struct {
	Repo persistence.ProjectRepository
}

// ProjectWithCapacity is a project augmented with its live capacity aggregate.
type ProjectWithCapacity struct {
	domain.Project
	Capacity capacity.Aggregate `json:"capacity"`
}

type ListResult struct {
	Projects   []ProjectWithCapacity  `json:"projects"`
	Pagination persistence.Pagination `json:"pagination"`
}

// ListProjects returns one page of projects, each with capacity recomputed from its blocks.
func (s *Service) ListProjects(ctx context.Context, f persistence.ProjectFilter, page, limit int) (*ListResult, error) {
	if f.Status != "" && !domain.IsValidProjectStatus(f.Status) {
		return nil, ErrInvalidStatus
	}
	p := persistence.NewPageRequest(page, limit)
	projects, total, err := s.Repo.FindProjects(ctx, f, p)
	if err != nil {
		return nil, fmt.Errorf("find projects: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(projects))
	for _, pr := range projects {
		ids = append(ids, pr.ProjectID)
	}
	blocks, err := s.Repo.BlocksForProjects(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load capacity blocks: %w", err)
	}
	byProject := capacity.GroupByProject(blocks)

	out := make([]ProjectWithCapacity, 0, len(projects))
	for _, pr := range projects {
		out = append(out, ProjectWithCapacity{
			Project:  pr,
			Capacity: capacity.Compute(byProject[pr.ProjectID], pr.TotalKw),
		})
	}
	return &ListResult{
		Projects:   out,
		Pagination: persistence.NewPagination(p, total),
	}, nil
}

func (s *Service) findProject(ctx context.Context, repo persistence.ProjectRepository, id uuid.UUID) (*domain.Project, error) {
	return notFound(repo.FindProject(ctx, id))
}

func notFound(project *domain.Project, err error) (*domain.Project, error) {
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return project, nil
}

func (s *Service) withCapacity(ctx context.Context, repo persistence.ProjectRepository, project *domain.Project) (*ProjectWithCapacity, error) {
	blocks, err := repo.BlocksForProjects(ctx, []uuid.UUID{project.ProjectID})
	if err != nil {
		return nil, err
	}
	return &ProjectWithCapacity{Project: *project, Capacity: capacity.Compute(blocks, project.TotalKw)}, nil
}

// GetProject returns a project with its capacity aggregate.
func (s *Service) GetProject(ctx context.Context, id uuid.UUID) (*ProjectWithCapacity, error) {
	project, err := s.findProject(ctx, s.Repo, id)
	if err != nil {
		return nil, err
	}
	return s.withCapacity(ctx, s.Repo, project)
}

// Availability is the public capacity view of a project that accepts reservations.
func (s *Service) Availability(ctx context.Context, id uuid.UUID) (*capacity.Aggregate, error) {
	project, err := s.findProject(ctx, s.Repo, id)
	if err != nil {
		return nil, err
	}
	if project.Status != domain.ProjectActive {
		return nil, ErrProjectNotActive
	}
	pc, err := s.withCapacity(ctx, s.Repo, project)
	if err != nil {
		return nil, err
	}
	return &pc.Capacity, nil
}

// CreateProjectInput carries the required creation fields.
type CreateProjectInput struct {
	SpvID       string
	Name        string
	TotalKw     float64
	RatePerKwh  float64
	Location    string
	State       string
	Description *string
	ActorUserID *uuid.UUID
}

// CreateProject inserts a DRAFT project and its CREATED event.
func (s *Service) CreateProject(ctx context.Context, in CreateProjectInput) (*domain.Project, error) {
	spv := strings.TrimSpace(in.SpvID)
	name := strings.TrimSpace(in.Name)
	location := strings.TrimSpace(in.Location)
	state := strings.TrimSpace(in.State)
	if spv == "" || name == "" || location == "" || state == "" {
		return nil, ErrMissingFields
	}
	if !storable(in.TotalKw) {
		return nil, ErrInvalidTotalKw
	}
	if !storable(in.RatePerKwh) {
		return nil, ErrInvalidRate
	}

	exists, err := s.Repo.SpvExists(ctx, spv)
	if err != nil {
		return nil, fmt.Errorf("check spv_id: %w", err)
	}
	if exists {
		return nil, ErrDuplicateSPV
	}

	project := &domain.Project{
		SpvID:       spv,
		Name:        name,
		TotalKw:     in.TotalKw,
		RatePerKwh:  in.RatePerKwh,
		Location:    location,
		State:       state,
		Status:      domain.ProjectDraft,
		Description: in.Description,
	}
	err = s.Repo.WithinTx(ctx, func(tx persistence.ProjectRepository) error {
		if err := tx.CreateProject(project); err != nil {
			return fmt.Errorf("create project: %w", err)
		}
		return tx.CreateEvent(newEvent(project.ProjectID, domain.EventProjectCreated, in.ActorUserID, map[string]interface{}{
			"spv_id":   project.SpvID,
			"total_kw": project.TotalKw,
		}))
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("project_id", project.ProjectID.String()).Str("spv_id", spv).Msg("project created")
	return project, nil
}

var updatableFields = map[string]bool{
	"name": true, "description": true, "location": true, "state": true,
	"total_kw": true, "rate_per_kwh": true, "status": true,
}

// UpdateProject applies whitelisted fields. Status changes must follow the lifecycle graph.
func (s *Service) UpdateProject(ctx context.Context, id uuid.UUID, fields map[string]interface{}, actor *uuid.UUID) (*ProjectWithCapacity, error) {
	updates := make(map[string]interface{})
	for k, v := range fields {
		if updatableFields[k] {
			updates[k] = v
		}
	}
	if len(updates) == 0 {
		return nil, ErrNoValidFields
	}
	if err := normalizeUpdates(updates); err != nil {
		return nil, err
	}

	var result *ProjectWithCapacity
	err := s.Repo.WithinTx(ctx, func(tx persistence.ProjectRepository) error {
		project, err := notFound(tx.LockProject(ctx, id))
		if err != nil {
			return err
		}
		from := project.Status
		to := from
		if st, ok := updates["status"].(string); ok {
			to = st
		}
		if !CanTransition(from, to) {
			return ErrInvalidTransition
		}
		totalKw := project.TotalKw
		if kw, ok := updates["total_kw"].(float64); ok {
			totalKw = kw
		}
		if to == domain.ProjectActive && !storable(totalKw) {
			return ErrActiveNeedsCapacity
		}

		if err := tx.UpdateProject(project, updates); err != nil {
			return fmt.Errorf("update project: %w", err)
		}
		if err := tx.CreateEvent(newEvent(id, domain.EventProjectUpdated, actor, updates)); err != nil {
			return err
		}
		if to != from {
			if err := tx.CreateEvent(newEvent(id, domain.EventStatusChanged, actor, map[string]interface{}{"from": from, "to": to})); err != nil {
				return err
			}
		}
		fresh, err := s.findProject(ctx, tx, id)
		if err != nil {
			return err
		}
		result, err = s.withCapacity(ctx, tx, fresh)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func normalizeUpdates(updates map[string]interface{}) error {
	for _, k := range []string{"name", "location", "state"} {
		v, ok := updates[k]
		if !ok {
			continue
		}
		s, isStr := v.(string)
		if !isStr || strings.TrimSpace(s) == "" {
			return fmt.Errorf("%w: %s must be a non-empty string", ErrInvalidField, k)
		}
		updates[k] = strings.TrimSpace(s)
	}
	if v, ok := updates["description"]; ok && v != nil {
		if _, isStr := v.(string); !isStr {
			return fmt.Errorf("%w: description must be a string", ErrInvalidField)
		}
	}
	if v, ok := updates["total_kw"]; ok {
		kw, isNum := toFloat(v)
		if !isNum {
			return fmt.Errorf("%w: total_kw must be a number", ErrInvalidField)
		}
		if !storable(kw) {
			return ErrInvalidTotalKw
		}
		updates["total_kw"] = kw
	}
	if v, ok := updates["rate_per_kwh"]; ok {
		rate, isNum := toFloat(v)
		if !isNum {
			return fmt.Errorf("%w: rate_per_kwh must be a number", ErrInvalidField)
		}
		if !storable(rate) {
			return ErrInvalidRate
		}
		updates["rate_per_kwh"] = rate
	}
	if v, ok := updates["status"]; ok {
		st, isStr := v.(string)
		if !isStr || !domain.IsValidProjectStatus(strings.ToUpper(st)) {
			return ErrInvalidStatus
		}
		updates["status"] = strings.ToUpper(st)
	}
	return nil
}

// DeleteProject soft-deletes a project that has no allocated capacity.
func (s *Service) DeleteProject(ctx context.Context, id uuid.UUID, actor *uuid.UUID) error {
	return s.Repo.WithinTx(ctx, func(tx persistence.ProjectRepository) error {
		project, err := notFound(tx.LockProject(ctx, id))
		if err != nil {
			return err
		}
		allocated, err := tx.CountAllocatedBlocks(ctx, id)
		if err != nil {
			return err
		}
		blocks, err := tx.BlocksForProjects(ctx, []uuid.UUID{id})
		if err != nil {
			return err
		}
		agg := capacity.Compute(blocks, project.TotalKw)
		if allocated > 0 || !capacity.CanDelete(agg) {
			return ErrActiveAllocations
		}
		if err := tx.SoftDeleteProject(project); err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		return tx.CreateEvent(newEvent(id, domain.EventProjectDeleted, actor, map[string]interface{}{
			"previous_status": project.Status,
			"available_kw":    agg.Available,
		}))
	})
}

// AddBlock attaches a new AVAILABLE block to a project.
func (s *Service) AddBlock(ctx context.Context, projectID uuid.UUID, kw float64, actor *uuid.UUID) (*domain.CapacityBlock, error) {
	if !storable(kw) {
		return nil, ErrInvalidBlockKw
	}
	block := &domain.CapacityBlock{ProjectID: projectID, Kw: kw, Status: domain.BlockAvailable}
	err := s.Repo.WithinTx(ctx, func(tx persistence.ProjectRepository) error {
		if _, err := s.findProject(ctx, tx, projectID); err != nil {
			return err
		}
		if err := tx.CreateBlock(block); err != nil {
			return fmt.Errorf("create block: %w", err)
		}
		return tx.CreateEvent(newEvent(projectID, domain.EventBlockAdded, actor, map[string]interface{}{
			"block_id": block.BlockID.String(),
			"kw":       kw,
		}))
	})
	if err != nil {
		return nil, err
	}
	return block, nil
}

// ListBlocks returns every block of a project.
func (s *Service) ListBlocks(ctx context.Context, projectID uuid.UUID) ([]domain.CapacityBlock, error) {
	if _, err := s.findProject(ctx, s.Repo, projectID); err != nil {
		return nil, err
	}
	blocks, err := s.Repo.BlocksForProjects(ctx, []uuid.UUID{projectID})
	if err != nil {
		return nil, err
	}
	if blocks == nil {
		blocks = []domain.CapacityBlock{}
	}
	return blocks, nil
}

// ListEvents returns the audit trail of a project, newest first.
func (s *Service) ListEvents(ctx context.Context, projectID uuid.UUID) ([]domain.ProjectEvent, error) {
	if _, err := s.findProject(ctx, s.Repo, projectID); err != nil {
		return nil, err
	}
	return s.Repo.FindEvents(ctx, projectID)
}

func newEvent(projectID uuid.UUID, eventType string, actor *uuid.UUID, data map[string]interface{}) *domain.ProjectEvent {
	b, _ := json.Marshal(data)
	return &domain.ProjectEvent{
		ProjectID:   projectID,
		EventType:   eventType,
		EventData:   datatypes.JSON(b),
		ActorUserID: actor,
	}
}

// minAmount is the smallest value a decimal(_,2) column keeps above zero.
const minAmount = 0.01

func storable(f float64) bool {
	return f >= minAmount && !math.IsInf(f, 1)
}

func toFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	}
	return 0, false
}
