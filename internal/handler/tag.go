package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"supplies-service/internal/aggregate"
	"supplies-service/internal/model"
	"supplies-service/internal/policy"
	"supplies-service/internal/repository"
	"supplies-service/pkg/logger"
	"supplies-service/prometheus"
)

// TagRequest creates or updates a tag
type TagRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Color       *string `json:"color" validate:"omitempty,tagcolor"`
	Icon        *string `json:"icon"`
	Active      *bool   `json:"active"`
}

func (r TagRequest) apply(t *model.Tag) {
	if r.Name != nil && strings.TrimSpace(*r.Name) != "" {
		t.Name = strings.TrimSpace(*r.Name)
	}
	if r.Description != nil {
		t.Description = *r.Description
	}
	if r.Color != nil && *r.Color != "" {
		t.Color = *r.Color
	}
	if r.Icon != nil && *r.Icon != "" {
		t.Icon = *r.Icon
	}
	if r.Active != nil {
		t.Active = *r.Active
	}
}

// ListTags returns the active tags sorted by name
func (h *Handler) ListTags(c echo.Context) error {
	tags, err := h.store.ListActiveTags(c.Request().Context())
	if err != nil {
		return storeError(err, "tag not found")
	}
	return c.JSON(http.StatusOK, tags)
}

// GetTag returns one tag
func (h *Handler) GetTag(c echo.Context) error {
	tag, err := h.store.GetTag(c.Request().Context(), c.Param("id"))
	if err != nil {
		return storeError(err, "tag not found")
	}
	return c.JSON(http.StatusOK, tag)
}

// TagStats returns how many materials carry each tag and which active tags are unused
func (h *Handler) TagStats(c echo.Context) error {
	ctx := c.Request().Context()

	materials, err := h.store.ListMaterials(ctx, repository.MaterialFilter{})
	if err != nil {
		return storeError(err, "tag not found")
	}
	tags, err := h.store.ListAllTags(ctx)
	if err != nil {
		return storeError(err, "tag not found")
	}

	usage := aggregate.AggregateTagUsage(materials, tags)
	logger.FromEcho(c).Debug("Tag statistics computed",
		zap.Int("tags_in_use", usage.InUse),
		zap.Int("active_tags", usage.TotalActive))
	return c.JSON(http.StatusOK, usage)
}

// TagMaterials returns the materials carrying a tag
func (h *Handler) TagMaterials(c echo.Context) error {
	ctx := c.Request().Context()
	tag, err := h.store.GetTag(ctx, c.Param("id"))
	if err != nil {
		return storeError(err, "tag not found")
	}

	materials, err := h.store.ListMaterials(ctx, repository.MaterialFilter{TagID: tag.ID})
	if err != nil {
		return storeError(err, "tag not found")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"tag":       tag,
		"materials": materials,
		"total":     len(materials),
	})
}

// CreateTag adds a tag
func (h *Handler) CreateTag(c echo.Context) error {
	var req TagRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if req.Name == nil || strings.TrimSpace(*req.Name) == "" {
		return requiredField("name")
	}

	tag := &model.Tag{Active: true}
	req.apply(tag)
	if err := h.store.SaveTag(c.Request().Context(), tag); err != nil {
		return storeError(err, "tag not found")
	}

	prometheus.RecordTagOperation("create")
	logger.FromEcho(c).Info("Tag created",
		zap.String("tag_id", tag.ID),
		zap.String("name", tag.Name))
	return c.JSON(http.StatusCreated, tag)
}

// UpdateTag changes a tag
func (h *Handler) UpdateTag(c echo.Context) error {
	var req TagRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	tag, err := h.store.GetTag(ctx, c.Param("id"))
	if err != nil {
		return storeError(err, "tag not found")
	}
	req.apply(tag)
	if err := h.store.SaveTag(ctx, tag); err != nil {
		return storeError(err, "tag not found")
	}

	prometheus.RecordTagOperation("update")
	logger.FromEcho(c).Info("Tag updated", zap.String("tag_id", tag.ID))
	return c.JSON(http.StatusOK, tag)
}

// DeleteTag deactivates a tag still used by materials and deletes it otherwise
func (h *Handler) DeleteTag(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromEcho(c)

	tag, err := h.store.GetTag(ctx, c.Param("id"))
	if err != nil {
		return storeError(err, "tag not found")
	}

	refs, err := h.store.CountTagReferences(ctx, tag.ID)
	if err != nil {
		return storeError(err, "tag not found")
	}

	removal := policy.DecideTagRemoval(refs)
	if removal.Deactivate {
		if err := h.store.DeactivateTag(ctx, tag); err != nil {
			return storeError(err, "tag not found")
		}
		prometheus.RecordTagOperation("deactivate")
		log.Info("Tag deactivated", zap.String("tag_id", tag.ID), zap.Int64("materials", refs))
	} else {
		if err := h.store.DeleteTag(ctx, tag.ID); err != nil {
			return storeError(err, "tag not found")
		}
		prometheus.RecordTagOperation("delete")
		log.Info("Tag deleted", zap.String("tag_id", tag.ID))
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message":     removal.Message,
		"deactivated": removal.Deactivate,
		"materials":   removal.References,
	})
}
