package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"backoffice/internal/errors"
	"backoffice/internal/service"
)

// UserHandler bundles the user management endpoints.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// CreateUserRequest represents a user creation request.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,email,max=255"`
}

// UpdateUserRequest represents a user update request.
type UpdateUserRequest struct {
	Name     string `json:"name" validate:"required,max=255"`
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,email,max=255"`
}

// ToggleRoleRequest identifies the (user, role) pair to flip.
type ToggleRoleRequest struct {
	UserID uint `json:"userId" validate:"required"`
	RoleID uint `json:"roleId" validate:"required"`
}

// TogglePermissionRequest identifies the (user, permission) pair to flip.
type TogglePermissionRequest struct {
	UserID       uint `json:"userId" validate:"required"`
	PermissionID uint `json:"permissionId" validate:"required"`
}

// ListUsers godoc
// @Summary List users including soft-deleted, with assignments
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.User
// @Failure 500 {object} errors.ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.svc.ListUsers(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// Stats godoc
// @Summary Account counters shared with every page
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.UserStats
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/stats [get]
func (h *UserHandler) Stats(c echo.Context) error {
	stats, err := h.svc.Stats(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// CreateUser godoc
// @Summary Create a user with a generated default password
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateUserRequest true "User data"
// @Success 201 {object} Flash
// @Failure 400 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users [post]
func (h *UserHandler) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, password, err := h.svc.CreateUser(c.Request().Context(), req.Name, req.Username, req.Email)
	if err != nil {
		c.Logger().Errorj(log.JSON{"message": "creating user", "username": req.Username, "error": err.Error()})
		return respondError(c, err)
	}

	c.Logger().Infoj(log.JSON{"message": "creating user", "id": user.ID})

	// The plaintext password appears here exactly once; never in logs.
	return c.JSON(http.StatusCreated, stickySuccessFlash(
		fmt.Sprintf("user has been created with default password %q", password),
	))
}

// UpdateUser godoc
// @Summary Update a user's name, username and email
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body UpdateUserRequest true "User data"
// @Success 200 {object} Flash
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /users/{id} [put]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.svc.UpdateUser(c.Request().Context(), id, req.Name, req.Username, req.Email)
	if err != nil {
		c.Logger().Errorj(log.JSON{"message": "updating user", "id": id, "error": err.Error()})
		return respondError(c, err)
	}

	c.Logger().Infoj(log.JSON{"message": "updating user", "id": user.ID})
	return c.JSON(http.StatusOK, successFlash("user has been updated"))
}

// DeleteUser godoc
// @Summary Soft-delete a user, or permanently remove it with force=true
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param force query bool false "Permanently remove the user and its assignments"
// @Success 200 {object} Flash
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	force, _ := strconv.ParseBool(c.QueryParam("force"))

	user, err := h.svc.DeleteUser(c.Request().Context(), id, force)
	if err != nil {
		c.Logger().Errorj(log.JSON{"message": "deleting user", "id": id, "permanently": force, "error": err.Error()})
		return respondError(c, err)
	}

	c.Logger().Infoj(log.JSON{
		"message":     "deleting user",
		"id":          user.ID,
		"name":        user.Name,
		"username":    user.Username,
		"email":       user.Email,
		"permanently": force,
	})
	return c.JSON(http.StatusOK, successFlash("user has been deleted"))
}

// RestoreUser godoc
// @Summary Clear a user's soft-delete timestamp
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} Flash
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/{id}/restore [put]
func (h *UserHandler) RestoreUser(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if _, err := h.svc.RestoreUser(c.Request().Context(), id); err != nil {
		c.Logger().Errorj(log.JSON{"message": "restoring user", "id": id, "error": err.Error()})
		return respondError(c, err)
	}

	c.Logger().Infoj(log.JSON{"message": "restoring user", "id": id})
	return c.JSON(http.StatusOK, successFlash("user has been restored"))
}

// ResetPassword godoc
// @Summary Replace a user's password with a fresh generated one
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} Flash
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/{id}/password [post]
func (h *UserHandler) ResetPassword(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	password, err := h.svc.ResetPassword(c.Request().Context(), id)
	if err != nil {
		c.Logger().Errorj(log.JSON{"message": "updating password", "id": id, "error": err.Error()})
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, errorFlash("can't update password"))
	}

	c.Logger().Infoj(log.JSON{"message": "updating password", "id": id})
	return c.JSON(http.StatusOK, stickySuccessFlash(
		fmt.Sprintf("password successfully replaced with %q", password),
	))
}

// ToggleRole godoc
// @Summary Grant the role if absent, revoke it if present
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ToggleRoleRequest true "Pair to flip"
// @Success 200 {object} Flash
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/toggle-role [post]
func (h *UserHandler) ToggleRole(c echo.Context) error {
	var req ToggleRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	outcome, role, err := h.svc.ToggleRole(c.Request().Context(), req.UserID, req.RoleID)
	if err != nil {
		c.Logger().Errorj(log.JSON{"message": "toggling role", "id": req.UserID, "roleId": req.RoleID, "error": err.Error()})
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, errorFlash("can't update role"))
	}

	c.Logger().Infoj(log.JSON{"message": "toggling role", "id": req.UserID, "role": role.Name, "outcome": string(outcome)})
	return c.JSON(http.StatusOK, successFlash("role updated"))
}

// TogglePermission godoc
// @Summary Grant the permission if absent, revoke it if present
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TogglePermissionRequest true "Pair to flip"
// @Success 200 {object} Flash
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/toggle-permission [post]
func (h *UserHandler) TogglePermission(c echo.Context) error {
	var req TogglePermissionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	outcome, permission, err := h.svc.TogglePermission(c.Request().Context(), req.UserID, req.PermissionID)
	if err != nil {
		c.Logger().Errorj(log.JSON{"message": "toggling permission", "id": req.UserID, "permissionId": req.PermissionID, "error": err.Error()})
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, errorFlash("can't update permission"))
	}

	c.Logger().Infoj(log.JSON{"message": "toggling permission", "id": req.UserID, "permission": permission.Name, "outcome": string(outcome)})
	return c.JSON(http.StatusOK, successFlash("permission updated"))
}

// EffectivePermissions godoc
// @Summary Permissions held directly or via a role bundle
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {array} model.Permission
// @Failure 404 {object} errors.ErrorResponse
// @Router /users/{id}/permissions [get]
func (h *UserHandler) EffectivePermissions(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	permissions, err := h.svc.EffectivePermissions(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, permissions)
}

// ListRoles godoc
// @Summary List roles ordered by name
// @Tags rbac
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Role
// @Router /roles [get]
func (h *UserHandler) ListRoles(c echo.Context) error {
	roles, err := h.svc.ListRoles(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, roles)
}

// ListPermissions godoc
// @Summary List permissions ordered by name
// @Tags rbac
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Permission
// @Router /permissions [get]
func (h *UserHandler) ListPermissions(c echo.Context) error {
	permissions, err := h.svc.ListPermissions(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, permissions)
}

func pathID(c echo.Context) (uint, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return uint(id), nil
}

func respondError(c echo.Context, err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
}
