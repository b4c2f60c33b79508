package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"supplies-service/internal/apperr"
	"supplies-service/internal/middleware"
	"supplies-service/internal/model"
	"supplies-service/internal/policy"
	"supplies-service/internal/repository"
	"supplies-service/pkg/logger"
)

// CreateUserRequest is the admin user creation body; any role may be assigned
type CreateUserRequest struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	Phone      string `json:"phone"`
	NationalID string `json:"national_id" validate:"required,numeric,min=9,max=10"`
	Address    string `json:"address"`
	Role       string `json:"role" validate:"required,oneof=admin teacher parent"`
}

// UpdateProfileRequest changes the caller's own account
type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Phone    *string `json:"phone"`
	Address  *string `json:"address"`
	Password *string `json:"password" validate:"omitempty,min=6"`
}

// ListUsers returns every account
func (h *Handler) ListUsers(c echo.Context) error {
	users, err := h.store.ListUsers(c.Request().Context())
	if err != nil {
		return storeError(err, "user not found")
	}
	logger.FromEcho(c).Info("Users retrieved", zap.Int("count", len(users)))
	return c.JSON(http.StatusOK, users)
}

// CreateUser creates an account with an explicit role
func (h *Handler) CreateUser(c echo.Context) error {
	var req CreateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	role, err := model.ParseRole(req.Role)
	if err != nil {
		return apperr.Validation(err.Error())
	}

	user := &model.User{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		NationalID: req.NationalID,
		Address:    req.Address,
		Role:       role,
		Active:     true,
	}
	if err := h.store.CreateUser(c.Request().Context(), user, req.Password); err != nil {
		return storeError(err, "user not found")
	}

	logger.FromEcho(c).Info("User created",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)))
	return c.JSON(http.StatusCreated, user)
}

// GetUser returns one account
func (h *Handler) GetUser(c echo.Context) error {
	id := c.Param("id")
	if d := h.policy.CanAccess(middleware.ActorFrom(c), policy.Resource{Kind: policy.KindUser, OwnerID: id}, policy.OpRead); !d.Allowed() {
		return denied(d)
	}

	user, err := h.store.GetUser(c.Request().Context(), id)
	if err != nil {
		return storeError(err, "user not found")
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile changes the caller's own account
func (h *Handler) UpdateProfile(c echo.Context) error {
	actor := middleware.ActorFrom(c)
	if d := h.policy.CanAccess(actor, policy.Resource{Kind: policy.KindUser, OwnerID: actor.ID}, policy.OpUpdate); !d.Allowed() {
		return denied(d)
	}

	var req UpdateProfileRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.store.UpdateProfile(c.Request().Context(), actor.ID, repository.ProfileUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		Password: req.Password,
	})
	if err != nil {
		return storeError(err, "user not found")
	}

	logger.FromEcho(c).Info("Profile updated", zap.String("user_id", user.ID))
	return c.JSON(http.StatusOK, user)
}

// DeleteUser removes an account
func (h *Handler) DeleteUser(c echo.Context) error {
	id := c.Param("id")
	if err := h.store.DeleteUser(c.Request().Context(), id); err != nil {
		return storeError(err, "user not found")
	}
	logger.FromEcho(c).Info("User deleted", zap.String("user_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "user deleted"})
}
