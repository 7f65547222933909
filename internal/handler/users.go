package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/velora-cms/velora/internal/auth"
	"github.com/velora-cms/velora/internal/repository"
)

// AdminUserHandler serves the admin user management API. Routes using
// it must sit behind RequireSession with the admin roles.
type AdminUserHandler struct {
	Users      *repository.UserRepo
	BcryptCost int
}

func NewAdminUserHandler(users *repository.UserRepo, bcryptCost int) *AdminUserHandler {
	return &AdminUserHandler{Users: users, BcryptCost: bcryptCost}
}

type adminCreateUserReq struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role"`
	IsActive   *bool  `json:"isActive"`
	IsVerified *bool  `json:"isVerified"`
}

type adminUpdateUserReq struct {
	Name       *string `json:"name"`
	Role       *string `json:"role"`
	IsActive   *bool   `json:"isActive"`
	IsVerified *bool   `json:"isVerified"`
}

// List returns every user's safe fields, newest first.
func (h *AdminUserHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		c.Logger().Errorf("admin users: list: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch users"})
	}
	out := make([]userPart, 0, len(users))
	for i := range users {
		out = append(out, safeUser(&users[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// Create inserts a user with an explicit role.
func (h *AdminUserHandler) Create(c echo.Context) error {
	var req adminCreateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" || req.Role == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email, password and role are required"})
	}
	role, ok := auth.ParseRole(req.Role)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}

	hash, err := auth.HashPassword(req.Password, h.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create user"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Create(ctx, strings.TrimSpace(req.Name), req.Email, hash, role)
	if err != nil {
		if err == auth.ErrEmailTaken {
			return c.JSON(http.StatusConflict, echo.Map{"error": "user already exists"})
		}
		c.Logger().Errorf("admin users: create: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create user"})
	}

	if req.IsActive != nil || req.IsVerified != nil {
		u, err = h.Users.Update(ctx, u.ID, repository.UserUpdate{
			IsActive:   req.IsActive,
			IsVerified: req.IsVerified,
		})
		if err != nil {
			c.Logger().Errorf("admin users: apply flags: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create user"})
		}
	}

	return c.JSON(http.StatusCreated, safeUser(u))
}

// Update applies a partial update to a user.
func (h *AdminUserHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req adminUpdateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	upd := repository.UserUpdate{
		Name:       req.Name,
		IsActive:   req.IsActive,
		IsVerified: req.IsVerified,
	}
	if req.Role != nil {
		role, ok := auth.ParseRole(*req.Role)
		if !ok {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
		}
		upd.Role = &role
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.Update(ctx, id, upd)
	if err != nil {
		if err == auth.ErrUserNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		c.Logger().Errorf("admin users: update: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update user"})
	}
	return c.JSON(http.StatusOK, safeUser(u))
}

// Delete removes a user.
func (h *AdminUserHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		if err == auth.ErrUserNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
		}
		c.Logger().Errorf("admin users: delete: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete user"})
	}
	return c.NoContent(http.StatusNoContent)
}
