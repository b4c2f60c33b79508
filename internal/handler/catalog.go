package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"supplies-service/internal/model"
	"supplies-service/pkg/logger"
)

// CategoryRequest creates or updates a category. Absent fields keep their value on update.
type CategoryRequest struct {
	Name         *string `json:"name"`
	Description  *string `json:"description"`
	Icon         *string `json:"icon"`
	Color        *string `json:"color"`
	DisplayOrder *int    `json:"display_order"`
	Active       *bool   `json:"active"`
}

func (r CategoryRequest) apply(cat *model.Category) {
	if r.Name != nil && strings.TrimSpace(*r.Name) != "" {
		cat.Name = strings.TrimSpace(*r.Name)
	}
	if r.Description != nil {
		cat.Description = *r.Description
	}
	if r.Icon != nil {
		cat.Icon = *r.Icon
	}
	if r.Color != nil && *r.Color != "" {
		cat.Color = *r.Color
	}
	if r.DisplayOrder != nil {
		cat.DisplayOrder = *r.DisplayOrder
	}
	if r.Active != nil {
		cat.Active = *r.Active
	}
}

// ListCategories returns all categories
func (h *Handler) ListCategories(c echo.Context) error {
	categories, err := h.store.ListCategories(c.Request().Context())
	if err != nil {
		return storeError(err, "category not found")
	}
	return c.JSON(http.StatusOK, categories)
}

// GetCategory returns one category
func (h *Handler) GetCategory(c echo.Context) error {
	category, err := h.store.GetCategory(c.Request().Context(), c.Param("id"))
	if err != nil {
		return storeError(err, "category not found")
	}
	return c.JSON(http.StatusOK, category)
}

// CreateCategory adds a category
func (h *Handler) CreateCategory(c echo.Context) error {
	var req CategoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return requiredField("name")
	}

	category := &model.Category{Active: true}
	req.apply(category)
	if err := h.store.SaveCategory(c.Request().Context(), category); err != nil {
		return storeError(err, "category not found")
	}

	logger.FromEcho(c).Info("Category created",
		zap.String("category_id", category.ID),
		zap.String("name", category.Name))
	return c.JSON(http.StatusCreated, category)
}

// UpdateCategory changes a category
func (h *Handler) UpdateCategory(c echo.Context) error {
	var req CategoryRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	category, err := h.store.GetCategory(ctx, c.Param("id"))
	if err != nil {
		return storeError(err, "category not found")
	}
	req.apply(category)
	if err := h.store.SaveCategory(ctx, category); err != nil {
		return storeError(err, "category not found")
	}

	logger.FromEcho(c).Info("Category updated", zap.String("category_id", category.ID))
	return c.JSON(http.StatusOK, category)
}

// DeleteCategory removes a category
func (h *Handler) DeleteCategory(c echo.Context) error {
	id := c.Param("id")
	if err := h.store.DeleteCategory(c.Request().Context(), id); err != nil {
		return storeError(err, "category not found")
	}
	logger.FromEcho(c).Info("Category deleted", zap.String("category_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "category deleted"})
}

// LevelRequest creates or updates a level
type LevelRequest struct {
	Name         *string `json:"name"`
	Grade        *string `json:"grade"`
	Description  *string `json:"description"`
	DisplayOrder *int    `json:"display_order"`
	Active       *bool   `json:"active"`
}

func (r LevelRequest) apply(level *model.Level) {
	if r.Name != nil && strings.TrimSpace(*r.Name) != "" {
		level.Name = strings.TrimSpace(*r.Name)
	}
	if r.Grade != nil && strings.TrimSpace(*r.Grade) != "" {
		level.Grade = strings.TrimSpace(*r.Grade)
	}
	if r.Description != nil {
		level.Description = *r.Description
	}
	if r.DisplayOrder != nil {
		level.DisplayOrder = *r.DisplayOrder
	}
	if r.Active != nil {
		level.Active = *r.Active
	}
}

// ListLevels returns levels in display order
func (h *Handler) ListLevels(c echo.Context) error {
	levels, err := h.store.ListLevels(c.Request().Context())
	if err != nil {
		return storeError(err, "level not found")
	}
	return c.JSON(http.StatusOK, levels)
}

// GetLevel returns one level
func (h *Handler) GetLevel(c echo.Context) error {
	level, err := h.store.GetLevel(c.Request().Context(), c.Param("id"))
	if err != nil {
		return storeError(err, "level not found")
	}
	return c.JSON(http.StatusOK, level)
}

// CreateLevel adds a level
func (h *Handler) CreateLevel(c echo.Context) error {
	var req LevelRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	switch {
	case req.Name == nil || strings.TrimSpace(*req.Name) == "":
		return requiredField("name")
	case req.Grade == nil || strings.TrimSpace(*req.Grade) == "":
		return requiredField("grade")
	case req.DisplayOrder == nil:
		return requiredField("display_order")
	}

	level := &model.Level{Active: true}
	req.apply(level)
	if err := h.store.SaveLevel(c.Request().Context(), level); err != nil {
		return storeError(err, "level not found")
	}

	logger.FromEcho(c).Info("Level created",
		zap.String("level_id", level.ID),
		zap.String("name", level.Name),
		zap.String("grade", level.Grade))
	return c.JSON(http.StatusCreated, level)
}

// UpdateLevel changes a level
func (h *Handler) UpdateLevel(c echo.Context) error {
	var req LevelRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	level, err := h.store.GetLevel(ctx, c.Param("id"))
	if err != nil {
		return storeError(err, "level not found")
	}
	req.apply(level)
	if err := h.store.SaveLevel(ctx, level); err != nil {
		return storeError(err, "level not found")
	}

	logger.FromEcho(c).Info("Level updated", zap.String("level_id", level.ID))
	return c.JSON(http.StatusOK, level)
}

// DeleteLevel removes a level
func (h *Handler) DeleteLevel(c echo.Context) error {
	id := c.Param("id")
	if err := h.store.DeleteLevel(c.Request().Context(), id); err != nil {
		return storeError(err, "level not found")
	}
	logger.FromEcho(c).Info("Level deleted", zap.String("level_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "level deleted"})
}
