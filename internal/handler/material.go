package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"supplies-service/internal/apperr"
	"supplies-service/internal/model"
	"supplies-service/internal/repository"
	"supplies-service/pkg/logger"
)

// MaterialRequest creates or updates a material. TagIDs replaces the tag set when present.
type MaterialRequest struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	CategoryID  *string   `json:"category_id"`
	LevelID     *string   `json:"level_id"`
	Price       *float64  `json:"price" validate:"omitempty,gte=0"`
	ImageURL    *string   `json:"image_url" validate:"omitempty,url"`
	TagIDs      *[]string `json:"tag_ids"`
	Available   *bool     `json:"available"`
}

func (r MaterialRequest) apply(m *model.Material) {
	if r.Name != nil && strings.TrimSpace(*r.Name) != "" {
		m.Name = strings.TrimSpace(*r.Name)
	}
	if r.Description != nil {
		m.Description = *r.Description
	}
	if r.CategoryID != nil && *r.CategoryID != "" {
		m.CategoryID = *r.CategoryID
	}
	if r.LevelID != nil && *r.LevelID != "" {
		m.LevelID = *r.LevelID
	}
	if r.Price != nil {
		m.Price = *r.Price
	}
	if r.ImageURL != nil {
		m.ImageURL = *r.ImageURL
	}
	if r.Available != nil {
		m.Available = *r.Available
	}
}

func (r MaterialRequest) tagIDs() []string {
	if r.TagIDs == nil {
		return nil
	}
	if *r.TagIDs == nil {
		return []string{}
	}
	return *r.TagIDs
}

func (h *Handler) listMaterials(c echo.Context, filter repository.MaterialFilter) error {
	materials, err := h.store.ListMaterials(c.Request().Context(), filter)
	if err != nil {
		return storeError(err, "material not found")
	}
	logger.FromEcho(c).Debug("Materials retrieved",
		zap.Int("count", len(materials)),
		zap.String("category_id", filter.CategoryID),
		zap.String("level_id", filter.LevelID))
	return c.JSON(http.StatusOK, materials)
}

// ListMaterials returns materials, optionally filtered by category_id, level_id or tag_id query parameters
func (h *Handler) ListMaterials(c echo.Context) error {
	return h.listMaterials(c, repository.MaterialFilter{
		CategoryID: c.QueryParam("category_id"),
		LevelID:    c.QueryParam("level_id"),
		TagID:      c.QueryParam("tag_id"),
	})
}

// MaterialsByCategory returns the materials of a category
func (h *Handler) MaterialsByCategory(c echo.Context) error {
	return h.listMaterials(c, repository.MaterialFilter{CategoryID: c.Param("id")})
}

// MaterialsByLevel returns the materials of a level
func (h *Handler) MaterialsByLevel(c echo.Context) error {
	return h.listMaterials(c, repository.MaterialFilter{LevelID: c.Param("id")})
}

// GetMaterial returns one material
func (h *Handler) GetMaterial(c echo.Context) error {
	material, err := h.store.GetMaterial(c.Request().Context(), c.Param("id"))
	if err != nil {
		return storeError(err, "material not found")
	}
	return c.JSON(http.StatusOK, material)
}

// CreateMaterial adds a material
func (h *Handler) CreateMaterial(c echo.Context) error {
	var req MaterialRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	switch {
	case req.Name == nil || strings.TrimSpace(*req.Name) == "":
		return requiredField("name")
	case req.CategoryID == nil || *req.CategoryID == "":
		return requiredField("category_id")
	case req.LevelID == nil || *req.LevelID == "":
		return requiredField("level_id")
	case req.Price == nil:
		return requiredField("price")
	}

	material := &model.Material{Available: true}
	req.apply(material)
	if err := h.store.SaveMaterial(c.Request().Context(), material, req.tagIDs()); err != nil {
		return storeError(err, "material not found")
	}

	logger.FromEcho(c).Info("Material created",
		zap.String("material_id", material.ID),
		zap.String("name", material.Name),
		zap.Float64("price", material.Price))
	return c.JSON(http.StatusCreated, material)
}

// UpdateMaterial changes a material
func (h *Handler) UpdateMaterial(c echo.Context) error {
	var req MaterialRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	material, err := h.store.GetMaterial(ctx, c.Param("id"))
	if err != nil {
		return storeError(err, "material not found")
	}
	req.apply(material)
	if material.Price < 0 {
		return apperr.Validation(model.ErrNegativePrice.Error())
	}
	if err := h.store.SaveMaterial(ctx, material, req.tagIDs()); err != nil {
		return storeError(err, "material not found")
	}

	logger.FromEcho(c).Info("Material updated", zap.String("material_id", material.ID))
	return c.JSON(http.StatusOK, material)
}

// DeleteMaterial removes a material; lists keep their line items for it
func (h *Handler) DeleteMaterial(c echo.Context) error {
	id := c.Param("id")
	if err := h.store.DeleteMaterial(c.Request().Context(), id); err != nil {
		return storeError(err, "material not found")
	}
	logger.FromEcho(c).Info("Material deleted", zap.String("material_id", id))
	return c.JSON(http.StatusOK, echo.Map{"message": "material deleted"})
}
