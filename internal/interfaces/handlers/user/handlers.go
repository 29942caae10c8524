package user

import (
	"errors"

	"sunshare-backend/internal/application/policies"
	usersvc "sunshare-backend/internal/application/user"
	"sunshare-backend/internal/domain"
	"sunshare-backend/internal/infrastructure/persistence"
	"sunshare-backend/internal/middleware"
	"sunshare-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Handlers holds the user service and session config; create-user signs the new customer in.
type Handlers struct {
	Service *usersvc.Service
	Config  middleware.SessionConfig
}

type CreateUserRequest struct {
	UserName string  `json:"user_name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Fullname string  `json:"fullname"`
	Phone    *string `json:"phone"`
	State    *string `json:"state"`
}

type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// CreateUser POST /api/v1/users/create-user
func (h *Handlers) CreateUser(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Missing required fields")
	}
	if req.UserName == "" || req.Email == "" || req.Password == "" || req.Fullname == "" {
		return response.BadRequest(c, "Missing required fields")
	}

	u, err := h.Service.CreateUser(c.UserContext(), usersvc.CreateUserInput{
		UserName: req.UserName,
		Email:    req.Email,
		Password: req.Password,
		Fullname: req.Fullname,
		Phone:    req.Phone,
		State:    req.State,
	})
	if err != nil {
		return mapError(c, err)
	}

	if err := middleware.StartSession(c, h.Service.Rdb, h.Config, sessionUser(u)); err != nil {
		log.Warn().Err(err).Str("user_id", u.UserID.String()).Msg("track session failed")
	}
	return response.SuccessCreated(c, "User created successfully", fiber.Map{"user": u}, nil)
}

// UpdateUser PUT /api/v1/users/update-user updates the session user.
func (h *Handlers) UpdateUser(c *fiber.Ctx) error {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var body map[string]interface{}
	if err := c.BodyParser(&body); err != nil || len(body) == 0 {
		return response.BadRequest(c, usersvc.ErrMissingUpdateFields.Error())
	}
	u, err := h.Service.UpdateUser(c.UserContext(), actor.UserID, body)
	if err != nil {
		return mapError(c, err)
	}
	middleware.SetSessionUser(c, sessionUser(u))
	return response.Success(c, "User updated successfully", fiber.Map{"user": u}, nil)
}

// ViewUser GET /api/v1/users/view-user returns the session user.
func (h *Handlers) ViewUser(c *fiber.Ctx) error {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	u, err := h.Service.ViewUser(c.UserContext(), actor.UserID)
	if err != nil {
		return mapError(c, err)
	}
	return response.Success(c, "User found", fiber.Map{"user": u}, nil)
}

// ListUsers GET /api/v1/admin/users?search=&role=&page=&limit=
func (h *Handlers) ListUsers(c *fiber.Ctx) error {
	res, err := h.Service.ListUsers(c.UserContext(), c.Query("search"), c.Query("role"), c.QueryInt("page", 1), c.QueryInt("limit", persistence.DefaultPageLimit))
	if err != nil {
		return mapError(c, err)
	}
	return response.Success(c, "Users retrieved", res, nil)
}

// UpdateRole PATCH /api/v1/admin/users/:id/role
func (h *Handlers) UpdateRole(c *fiber.Ctx) error {
	actor := middleware.CurrentUser(c)
	if actor == nil {
		return response.Unauthorized(c, "Unauthorized")
	}
	var req UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil || req.Role == "" {
		return response.BadRequest(c, "role is required")
	}
	u, err := h.Service.UpdateUserRole(c.UserContext(), usersvc.UpdateUserRoleInput{
		ActorUserID:  actor.UserID,
		ActorRole:    actor.Role,
		TargetUserID: c.Params("id"),
		TargetRole:   req.Role,
	})
	if err != nil {
		return mapError(c, err)
	}
	return response.Success(c, "User role updated successfully", fiber.Map{"user": u}, nil)
}

func sessionUser(u *domain.User) middleware.SessionUser {
	return middleware.SessionUser{
		UserID:   u.UserID.String(),
		Fullname: u.Fullname,
		Email:    u.Email,
		Role:     u.Role,
	}
}

func mapError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, usersvc.ErrUserNameRequired),
		errors.Is(err, usersvc.ErrInvalidEmail),
		errors.Is(err, usersvc.ErrInvalidPassword),
		errors.Is(err, usersvc.ErrFullnameRequired),
		errors.Is(err, usersvc.ErrInvalidFullname),
		errors.Is(err, usersvc.ErrInvalidPhone),
		errors.Is(err, usersvc.ErrMissingUserID),
		errors.Is(err, usersvc.ErrInvalidUserID),
		errors.Is(err, usersvc.ErrMissingUpdateFields),
		errors.Is(err, usersvc.ErrNoValidFields),
		errors.Is(err, policies.ErrInvalidRole),
		errors.Is(err, policies.ErrUsersCannotModifyTheirOwnRole),
		errors.Is(err, policies.ErrMustKeepOneSuperadmin):
		status = fiber.StatusBadRequest
	case errors.Is(err, policies.ErrOnlySuperadminsCanAssignStaff),
		errors.Is(err, policies.ErrAdminsCannotModifyStaff):
		status = fiber.StatusForbidden
	case errors.Is(err, usersvc.ErrUserNotFound),
		errors.Is(err, policies.ErrTargetUserNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, usersvc.ErrEmailTaken),
		errors.Is(err, usersvc.ErrUserNameTaken):
		status = fiber.StatusConflict
	}
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("trace_id", middleware.GetTraceID(c)).Msg("user request failed")
		return response.InternalError(c)
	}
	return response.Error(c, err.Error(), status, nil)
}
