package projects

import (
	"errors"
	"strings"

	projectsvc "sunshare-backend/internal/application/projects"
	"sunshare-backend/internal/infrastructure/persistence"
	"sunshare-backend/internal/middleware"
	"sunshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Handlers struct {
	Service *projectsvc.Service
}

type CreateProjectRequest struct {
	SpvID       string  `json:"spv_id"`
	Name        string  `json:"name"`
	TotalKw     float64 `json:"total_kw"`
	RatePerKwh  float64 `json:"rate_per_kwh"`
	Location    string  `json:"location"`
	State       string  `json:"state"`
	Description *string `json:"description"`
}

type AddBlockRequest struct {
	Kw float64 `json:"kw"`
}

// List GET /api/v1/admin/projects?status=&state=&search=&page=&limit=
func (h *Handlers) List(c *fiber.Ctx) error {
	filter := persistence.ProjectFilter{
		Status: strings.ToUpper(c.Query("status")),
		State:  c.Query("state"),
		Search: c.Query("search"),
	}
	res, err := h.Service.ListProjects(c.UserContext(), filter, c.QueryInt("page", 1), c.QueryInt("limit", persistence.DefaultPageLimit))
	if err != nil {
		return mapError(c, err)
	}
	return response.Success(c, "Projects retrieved", res, nil)
}

// Get GET /api/v1/admin/projects/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, ok := projectID(c)
	if !ok {
		return response.BadRequest(c, "Invalid project ID")
	}
	p, err := h.Service.GetProject(c.UserContext(), id)
	if err != nil {
		return mapError(c, err)
	}
	return response.Success(c, "Project retrieved", fiber.Map{"project": p}, nil)
}

// Create POST /api/v1/admin/projects
func (h *Handlers) Create(c *fiber.Ctx) error {
	var req CreateProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	p, err := h.Service.CreateProject(c.UserContext(), projectsvc.CreateProjectInput{
		SpvID:       req.SpvID,
		Name:        req.Name,
		TotalKw:     req.TotalKw,
		RatePerKwh:  req.RatePerKwh,
		Location:    req.Location,
		State:       req.State,
		Description: req.Description,
		ActorUserID: actorID(c),
	})
	if err != nil {
		return mapError(c, err)
	}
	return response.SuccessCreated(c, "Project created", fiber.Map{"project": p}, nil)
}

// Update PATCH /api/v1/admin/projects/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, ok := projectID(c)
	if !ok {
		return response.BadRequest(c, "Invalid project ID")
	}
	var body map[string]interface{}
	if err := c.BodyParser(&body); err != nil || len(body) == 0 {
		return response.BadRequest(c, projectsvc.ErrNoValidFields.Error())
	}
	p, err := h.Service.UpdateProject(c.UserContext(), id, body, actorID(c))
	if err != nil {
		return mapError(c, err)
	}
	return response.Success(c, "Project updated", fiber.Map{"project": p}, nil)
}

// Delete DELETE /api/v1/admin/projects/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, ok := projectID(c)
	if !ok {
		return response.BadRequest(c, "Invalid project ID")
	}
	if err := h.Service.DeleteProject(c.UserContext(), id, actorID(c)); err != nil {
		return mapError(c, err)
	}
	return response.Success(c, "Project deleted", nil, nil)
}

// ListBlocks GET /api/v1/admin/projects/:id/blocks
func (h *Handlers) ListBlocks(c *fiber.Ctx) error {
	id, ok := projectID(c)
	if !ok {
		return response.BadRequest(c, "Invalid project ID")
	}
	blocks, err := h.Service.ListBlocks(c.UserContext(), id)
	if err != nil {
		return mapError(c, err)
	}
	return response.Success(c, "Capacity blocks retrieved", fiber.Map{"blocks": blocks}, nil)
}

// AddBlock POST /api/v1/admin/projects/:id/blocks
func (h *Handlers) AddBlock(c *fiber.Ctx) error {
	id, ok := projectID(c)
	if !ok {
		return response.BadRequest(c, "Invalid project ID")
	}
	var req AddBlockRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	b, err := h.Service.AddBlock(c.UserContext(), id, req.Kw, actorID(c))
	if err != nil {
		return mapError(c, err)
	}
	return response.SuccessCreated(c, "Capacity block added", fiber.Map{"block": b}, nil)
}

// ListEvents GET /api/v1/admin/projects/:id/events
func (h *Handlers) ListEvents(c *fiber.Ctx) error {
	id, ok := projectID(c)
	if !ok {
		return response.BadRequest(c, "Invalid project ID")
	}
	events, err := h.Service.ListEvents(c.UserContext(), id)
	if err != nil {
		return mapError(c, err)
	}
	return response.Success(c, "Project events retrieved", fiber.Map{"events": events}, nil)
}

// Availability GET /api/v1/projects/:id/availability is public.
func (h *Handlers) Availability(c *fiber.Ctx) error {
	id, ok := projectID(c)
	if !ok {
		return response.BadRequest(c, "Invalid project ID")
	}
	agg, err := h.Service.Availability(c.UserContext(), id)
	if err != nil {
		return mapError(c, err)
	}
	return response.Success(c, "Availability retrieved", agg, fiber.Map{"project_id": id})
}

func projectID(c *fiber.Ctx) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params("id"))
	return id, err == nil
}

func actorID(c *fiber.Ctx) *uuid.UUID {
	u := middleware.CurrentUser(c)
	if u == nil {
		return nil
	}
	id, err := uuid.Parse(u.UserID)
	if err != nil {
		return nil
	}
	return &id
}

func mapError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, projectsvc.ErrProjectNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, projectsvc.ErrDuplicateSPV),
		errors.Is(err, projectsvc.ErrActiveAllocations):
		status = fiber.StatusConflict
	case errors.Is(err, projectsvc.ErrMissingFields),
		errors.Is(err, projectsvc.ErrInvalidTotalKw),
		errors.Is(err, projectsvc.ErrInvalidRate),
		errors.Is(err, projectsvc.ErrNoValidFields),
		errors.Is(err, projectsvc.ErrInvalidStatus),
		errors.Is(err, projectsvc.ErrInvalidTransition),
		errors.Is(err, projectsvc.ErrActiveNeedsCapacity),
		errors.Is(err, projectsvc.ErrInvalidBlockKw),
		errors.Is(err, projectsvc.ErrInvalidField):
		status = fiber.StatusBadRequest
	case errors.Is(err, projectsvc.ErrProjectNotActive):
		status = fiber.StatusNotFound
	}
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Msg("project request failed")
		return response.InternalError(c)
	}
	return response.Error(c, err.Error(), status, nil)
}
