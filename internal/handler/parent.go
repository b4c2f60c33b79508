package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"supplies-service/internal/aggregate"
	"supplies-service/internal/mailer"
	"supplies-service/internal/middleware"
	"supplies-service/internal/policy"
	"supplies-service/internal/repository"
	"supplies-service/pkg/logger"
	"supplies-service/prometheus"
)

// PurchasedRequest toggles the purchased state of a list item
type PurchasedRequest struct {
	Purchased   *bool      `json:"purchased" validate:"required"`
	PurchasedAt *time.Time `json:"purchased_at"`
}

// MarkPurchased records whether a parent bought a material of an official public list
func (h *Handler) MarkPurchased(c echo.Context) error {
	var req PurchasedRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	list, err := h.load(c, policy.OpMarkPurchased)
	if err != nil {
		return err
	}

	var at time.Time
	if req.PurchasedAt != nil {
		at = *req.PurchasedAt
	}
	materialID := c.Param("materialId")
	item, err := h.store.SetItemPurchased(c.Request().Context(), list, materialID, *req.Purchased, at)
	if err != nil {
		return storeError(err, policy.ReasonListNotFound)
	}

	prometheus.RecordListOperation("mark_purchased")
	logger.FromEcho(c).Info("Purchase state updated",
		zap.String("list_id", list.ID),
		zap.String("material_id", materialID),
		zap.Bool("purchased", item.Purchased))
	return c.JSON(http.StatusOK, echo.Map{
		"message":  "material purchase state updated",
		"item":     item,
		"progress": aggregate.ComputeProgress(list.Items),
		"status":   list.Status,
	})
}

// EmailRequest sends a list to a recipient
type EmailRequest struct {
	Recipient string `json:"recipient" validate:"required,email"`
	Message   string `json:"message"`
}

// EmailList sends a list by email; visibility follows the share rule
func (h *Handler) EmailList(c echo.Context) error {
	var req EmailRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	list, err := h.load(c, policy.OpEmail)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	email := mailer.ListEmail{
		From:      h.opts.MailFrom,
		Recipient: req.Recipient,
		Message:   req.Message,
		ListID:    list.ID,
		ListName:  list.Name,
		Level:     list.Level.Label(),
		Teacher:   teacherName(list),
		ShareURL:  h.shareURL(list.ID),
		Total:     aggregate.ComputeTotal(list.Items),
	}
	for _, line := range exportLines(list) {
		email.Lines = append(email.Lines, mailer.ListLine{Name: line.Name, Quantity: line.Quantity, Price: line.Price})
	}
	if s, ok := middleware.SessionFrom(c); ok {
		if sender, err := h.store.GetUser(ctx, s.UserID); err == nil {
			email.SharedBy = sender.Name
		}
	}

	if err := h.mailer.SendList(ctx, email); err != nil {
		logger.FromEcho(c).Error("Failed to send list email",
			zap.String("list_id", list.ID),
			zap.Error(err))
		return storeError(err, policy.ReasonListNotFound)
	}

	prometheus.RecordListOperation("email")
	return c.JSON(http.StatusOK, echo.Map{
		"message":   "list sent by email",
		"recipient": req.Recipient,
	})
}

// Summary folds purchase progress over every official public list
func (h *Handler) Summary(c echo.Context) error {
	lists, err := h.store.ListLists(c.Request().Context(), repository.ListFilter{OfficialPublic: true})
	if err != nil {
		return storeError(err, policy.ReasonListNotFound)
	}

	summary := aggregate.BuildParentSummary(lists)
	logger.FromEcho(c).Debug("Parent summary computed",
		zap.Int("lists", summary.TotalLists),
		zap.Int("purchased", summary.TotalPurchased))
	return c.JSON(http.StatusOK, summary)
}
