package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"supplies-service/internal/aggregate"
	"supplies-service/internal/middleware"
	"supplies-service/internal/model"
	"supplies-service/internal/policy"
	"supplies-service/internal/repository"
	"supplies-service/pkg/logger"
	"supplies-service/prometheus"
)

// ListView is a list as returned by the API, with owner and progress resolved
type ListView struct {
	*model.List
	Owner          *model.UserRef `json:"owner,omitempty"`
	Progress       int            `json:"progress"`
	PurchasedValue float64        `json:"purchased_value"`
}

func newListView(l *model.List) ListView {
	return ListView{
		List:           l,
		Owner:          l.Owner.Ref(),
		Progress:       aggregate.ComputeProgress(l.Items),
		PurchasedValue: aggregate.ComputePurchasedValue(l.Items),
	}
}

func newListViews(lists []model.List) []ListView {
	views := make([]ListView, 0, len(lists))
	for i := range lists {
		views = append(views, newListView(&lists[i]))
	}
	return views
}

// ListItemRequest is one material line in a list body
type ListItemRequest struct {
	MaterialID string `json:"material_id" validate:"required"`
	Quantity   int    `json:"quantity" validate:"gte=0"`
}

func toItems(reqs []ListItemRequest) []model.ListItem {
	l := &model.List{}
	for _, r := range reqs {
		l.AddItem(r.MaterialID, r.Quantity)
	}
	if l.Items == nil {
		return []model.ListItem{}
	}
	return l.Items
}

// CreateListRequest is the list creation body
type CreateListRequest struct {
	Name    string            `json:"name" validate:"required"`
	LevelID string            `json:"level_id" validate:"required"`
	Items   []ListItemRequest `json:"items" validate:"dive"`
	Public  bool              `json:"public"`
}

// UpdateListRequest changes list fields; Items replaces every line when present
type UpdateListRequest struct {
	Name    *string            `json:"name"`
	LevelID *string            `json:"level_id"`
	Public  *bool              `json:"public"`
	Items   *[]ListItemRequest `json:"items"`
}

// load fetches the list and applies the access decision for op
func (h *Handler) load(c echo.Context, op policy.Operation) (*model.List, error) {
	list, err := h.store.GetList(c.Request().Context(), c.Param("id"))
	if err != nil {
		return nil, storeError(err, policy.ReasonListNotFound)
	}

	actor := middleware.ActorFrom(c)
	if d := h.policy.CanAccess(actor, policy.ListResource(list), op); !d.Allowed() {
		logger.FromEcho(c).Warn("List access denied",
			zap.String("list_id", list.ID),
			zap.String("user_id", actor.ID),
			zap.String("operation", string(op)),
			zap.String("effect", d.Effect.String()))
		return nil, denied(d)
	}
	return list, nil
}

// ListLists returns the lists visible to the caller
func (h *Handler) ListLists(c echo.Context) error {
	actor := middleware.ActorFrom(c)
	scope := policy.ListScope(actor)

	filter := repository.ListFilter{}
	if !scope.All {
		filter.OwnerID = scope.OwnerID
		filter.OfficialPublic = scope.OfficialPublic
	}

	lists, err := h.store.ListLists(c.Request().Context(), filter)
	if err != nil {
		return storeError(err, policy.ReasonListNotFound)
	}

	logger.FromEcho(c).Debug("Lists retrieved",
		zap.String("user_id", actor.ID),
		zap.Int("count", len(lists)))
	return c.JSON(http.StatusOK, newListViews(lists))
}

// OfficialByLevel returns the official public lists of a level; no authentication required
func (h *Handler) OfficialByLevel(c echo.Context) error {
	lists, err := h.store.ListLists(c.Request().Context(), repository.ListFilter{
		OfficialPublic: true,
		LevelID:        c.Param("levelId"),
	})
	if err != nil {
		return storeError(err, policy.ReasonListNotFound)
	}
	return c.JSON(http.StatusOK, newListViews(lists))
}

// GetList returns one list
func (h *Handler) GetList(c echo.Context) error {
	list, err := h.load(c, policy.OpRead)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newListView(list))
}

// CreateList stores a list; its kind follows the creator's role
func (h *Handler) CreateList(c echo.Context) error {
	var req CreateListRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Name) == "" {
		return requiredField("name")
	}

	actor := middleware.ActorFrom(c)
	list := &model.List{
		Name:    strings.TrimSpace(req.Name),
		OwnerID: actor.ID,
		LevelID: req.LevelID,
		Items:   toItems(req.Items),
		Kind:    policy.NewListKind(actor.Role),
		Public:  policy.NewListPublic(actor.Role, req.Public),
	}
	if err := h.store.CreateList(c.Request().Context(), list); err != nil {
		return storeError(err, policy.ReasonListNotFound)
	}

	prometheus.RecordListOperation("create")
	logger.FromEcho(c).Info("List created",
		zap.String("list_id", list.ID),
		zap.String("owner_id", list.OwnerID),
		zap.String("kind", string(list.Kind)),
		zap.Bool("public", list.Public),
		zap.Int("items", len(list.Items)))
	return c.JSON(http.StatusCreated, newListView(list))
}

// UpdateList changes a list owned by the caller
func (h *Handler) UpdateList(c echo.Context) error {
	var req UpdateListRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	list, err := h.load(c, policy.OpUpdate)
	if err != nil {
		return err
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		list.Name = strings.TrimSpace(*req.Name)
	}
	if req.LevelID != nil && *req.LevelID != "" {
		list.LevelID = *req.LevelID
		list.Level = nil
	}
	if req.Public != nil {
		list.Public = policy.NewListPublic(middleware.ActorFrom(c).Role, *req.Public)
	}
	if req.Items != nil {
		for _, item := range *req.Items {
			if item.MaterialID == "" {
				return requiredField("material_id")
			}
		}
		list.Items = toItems(*req.Items)
	}

	if err := h.store.SaveList(c.Request().Context(), list, req.Items != nil); err != nil {
		return storeError(err, policy.ReasonListNotFound)
	}

	prometheus.RecordListOperation("update")
	logger.FromEcho(c).Info("List updated", zap.String("list_id", list.ID))
	return c.JSON(http.StatusOK, newListView(list))
}

// DeleteList removes a list owned by the caller
func (h *Handler) DeleteList(c echo.Context) error {
	list, err := h.load(c, policy.OpDelete)
	if err != nil {
		return err
	}
	if err := h.store.DeleteList(c.Request().Context(), list.ID); err != nil {
		return storeError(err, policy.ReasonListNotFound)
	}

	prometheus.RecordListOperation("delete")
	logger.FromEcho(c).Info("List deleted", zap.String("list_id", list.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "list deleted"})
}

// AddItemRequest adds a material line to a list
type AddItemRequest struct {
	MaterialID string `json:"material_id" validate:"required"`
	Quantity   int    `json:"quantity" validate:"gte=0"`
}

// AddItem merges a material into a list owned by the caller
func (h *Handler) AddItem(c echo.Context) error {
	var req AddItemRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	list, err := h.load(c, policy.OpAddItem)
	if err != nil {
		return err
	}
	if err := h.store.AddListItem(c.Request().Context(), list, req.MaterialID, req.Quantity); err != nil {
		return storeError(err, "material not found")
	}

	prometheus.RecordListOperation("add_item")
	logger.FromEcho(c).Info("Material added to list",
		zap.String("list_id", list.ID),
		zap.String("material_id", req.MaterialID))
	return c.JSON(http.StatusOK, newListView(list))
}

// RemoveItem drops a material from a list owned by the caller
func (h *Handler) RemoveItem(c echo.Context) error {
	list, err := h.load(c, policy.OpRemoveItem)
	if err != nil {
		return err
	}

	materialID := c.Param("materialId")
	if err := h.store.RemoveListItem(c.Request().Context(), list, materialID); err != nil {
		return storeError(err, policy.ReasonListNotFound)
	}

	prometheus.RecordListOperation("remove_item")
	logger.FromEcho(c).Info("Material removed from list",
		zap.String("list_id", list.ID),
		zap.String("material_id", materialID))
	return c.JSON(http.StatusOK, newListView(list))
}

// ShareResponse is the shareable summary of a list
type ShareResponse struct {
	ShareURL string  `json:"share_url"`
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Level    string  `json:"level"`
	Teacher  string  `json:"teacher"`
	Items    int     `json:"items"`
	Total    float64 `json:"total"`
}

func (h *Handler) shareURL(id string) string {
	return strings.TrimRight(h.opts.FrontendURL, "/") + "/lista/" + id
}

func teacherName(l *model.List) string {
	if l.Owner == nil {
		return ""
	}
	return l.Owner.Name
}

// Share returns the link and summary used to share a list
func (h *Handler) Share(c echo.Context) error {
	list, err := h.load(c, policy.OpShare)
	if err != nil {
		return err
	}

	prometheus.RecordListOperation("share")
	return c.JSON(http.StatusOK, ShareResponse{
		ShareURL: h.shareURL(list.ID),
		ID:       list.ID,
		Name:     list.Name,
		Level:    list.Level.Label(),
		Teacher:  teacherName(list),
		Items:    len(list.Items),
		Total:    aggregate.ComputeTotal(list.Items),
	})
}

// ExportLine is one line of an exported list
type ExportLine struct {
	MaterialID string  `json:"material_id"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
	Subtotal   float64 `json:"subtotal"`
	Purchased  bool    `json:"purchased"`
}

// ExportResponse is a printable rendition of a list
type ExportResponse struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Level   string       `json:"level"`
	Teacher string       `json:"teacher"`
	Items   []ExportLine `json:"items"`
	Total   float64      `json:"total"`
}

func exportLines(l *model.List) []ExportLine {
	lines := make([]ExportLine, 0, len(l.Items))
	for _, item := range l.Items {
		line := ExportLine{
			MaterialID: item.MaterialID,
			Quantity:   item.Quantity,
			Purchased:  item.Purchased,
		}
		if item.Material != nil {
			line.Name = item.Material.Name
			line.Price = item.Material.Price
		}
		line.Subtotal = line.Price * float64(line.Quantity)
		lines = append(lines, line)
	}
	return lines
}

// Export returns the list with per-line subtotals
func (h *Handler) Export(c echo.Context) error {
	list, err := h.load(c, policy.OpExport)
	if err != nil {
		return err
	}

	prometheus.RecordListOperation("export")
	return c.JSON(http.StatusOK, ExportResponse{
		ID:      list.ID,
		Name:    list.Name,
		Level:   list.Level.Label(),
		Teacher: teacherName(list),
		Items:   exportLines(list),
		Total:   aggregate.ComputeTotal(list.Items),
	})
}

