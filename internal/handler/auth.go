package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"supplies-service/internal/apperr"
	"supplies-service/internal/middleware"
	"supplies-service/internal/model"
	"supplies-service/internal/repository"
	"supplies-service/pkg/logger"
	"supplies-service/prometheus"
)

// RegisterRequest is the self-registration body. Role is accepted but ignored.
type RegisterRequest struct {
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required,min=6"`
	Phone      string `json:"phone"`
	NationalID string `json:"national_id" validate:"required,numeric,min=9,max=10"`
	Address    string `json:"address"`
	Role       string `json:"role"`
}

// LoginRequest is the login body
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

func (h *Handler) issueToken(u *model.User) (string, error) {
	token, err := h.jwt.GenerateToken(u.ID, u.Email, string(u.Role))
	if err != nil {
		return "", apperr.Internal("failed to generate token", err)
	}
	prometheus.IncreaseActiveTokens()
	return token, nil
}

// Register creates a parent account and signs it in
func (h *Handler) Register(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.RegisterCounter.Inc()

	var req RegisterRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	if req.Role != "" && req.Role != string(model.RoleParent) {
		log.Info("Ignoring requested role on self registration", zap.String("requested_role", req.Role))
	}

	user := &model.User{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		NationalID: req.NationalID,
		Address:    req.Address,
		Role:       model.RoleParent,
		Active:     true,
	}
	if err := h.store.CreateUser(c.Request().Context(), user, req.Password); err != nil {
		return storeError(err, "user not found")
	}

	token, err := h.issueToken(user)
	if err != nil {
		return err
	}

	log.Info("User registered", zap.String("user_id", user.ID), zap.String("email", user.Email))
	return c.JSON(http.StatusCreated, AuthResponse{User: user, Token: token})
}

// Login verifies credentials and returns a token
func (h *Handler) Login(c echo.Context) error {
	log := logger.FromEcho(c)
	prometheus.LoginCounter.Inc()

	var req LoginRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	user, err := h.store.Authenticate(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrInvalidCredentials) {
			prometheus.RecordAuthError("login_failure")
			log.Warn("Login failed", zap.String("email", req.Email))
			return apperr.Unauthorized("invalid email or password")
		}
		return storeError(err, "user not found")
	}

	token, err := h.issueToken(user)
	if err != nil {
		return err
	}

	log.Info("User logged in", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return c.JSON(http.StatusOK, AuthResponse{User: user, Token: token})
}

// Profile returns the caller's account
func (h *Handler) Profile(c echo.Context) error {
	s, ok := middleware.SessionFrom(c)
	if !ok {
		return apperr.Unauthorized("authentication required")
	}

	user, err := h.store.GetUser(c.Request().Context(), s.UserID)
	if err != nil {
		return storeError(err, "user not found")
	}
	return c.JSON(http.StatusOK, user)
}

// Logout ends the session on the client side; tokens are stateless
func (h *Handler) Logout(c echo.Context) error {
	if s, ok := middleware.SessionFrom(c); ok {
		logger.FromEcho(c).Info("User logged out", zap.String("user_id", s.UserID))
	}
	prometheus.DecreaseActiveTokens()
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}
