package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"supplies-service/internal/aggregate"
	"supplies-service/internal/model"
	"supplies-service/prometheus"
)

// ErrItemNotInList is returned when a list has no line for the material
var ErrItemNotInList = &ReferenceError{Field: "material_id", Message: "material not found in list"}

// ListFilter narrows list collections. The zero value matches every list.
type ListFilter struct {
	OwnerID        string
	OfficialPublic bool
	LevelID        string
}

func (s *Store) listQuery(ctx context.Context) *gorm.DB {
	return s.conn(ctx).
		Preload("Owner").
		Preload("Level").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Items.Material")
}

// ListLists returns lists with owner, level and line items resolved, newest first
func (s *Store) ListLists(ctx context.Context, filter ListFilter) ([]model.List, error) {
	defer prometheus.TrackDBOperation("list.list")()

	q := s.listQuery(ctx)
	if filter.OwnerID != "" {
		q = q.Where("owner_id = ?", filter.OwnerID)
	}
	if filter.OfficialPublic {
		q = q.Where("kind = ? AND public = ?", model.ListKindOfficial, true)
	}
	if filter.LevelID != "" {
		q = q.Where("level_id = ?", filter.LevelID)
	}

	var lists []model.List
	err := q.Order("created_at DESC").Find(&lists).Error
	return lists, err
}

// GetList loads a list with everything resolved
func (s *Store) GetList(ctx context.Context, id string) (*model.List, error) {
	defer prometheus.TrackDBOperation("list.get")()

	var l model.List
	if err := s.listQuery(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &l, nil
}

// resolveItems attaches materials to line items. With strict set, unknown materials are an error;
// otherwise they stay nil and count as free.
func (s *Store) resolveItems(ctx context.Context, items []model.ListItem, strict bool) error {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.MaterialID)
	}
	materials, err := s.loadMaterials(ctx, ids)
	if err != nil {
		return err
	}
	for i := range items {
		m, ok := materials[items[i].MaterialID]
		if !ok && strict {
			return ErrUnknownMaterial
		}
		items[i].Material = m
	}
	return nil
}

// writeItems replaces the stored line items of the list
func writeItems(tx *gorm.DB, l *model.List) error {
	if err := tx.Where("list_id = ?", l.ID).Delete(&model.ListItem{}).Error; err != nil {
		return err
	}
	if len(l.Items) == 0 {
		return nil
	}
	for i := range l.Items {
		l.Items[i].ListID = l.ID
		l.Items[i].Position = i
	}
	return tx.Omit(clause.Associations).Create(&l.Items).Error
}

// CreateList stores a new list and its line items; the total is computed from material prices
func (s *Store) CreateList(ctx context.Context, l *model.List) error {
	defer prometheus.TrackDBOperation("list.create")()

	if ok, err := s.exists(ctx, &model.Level{}, l.LevelID); err != nil {
		return err
	} else if !ok {
		return ErrUnknownLevel
	}
	if err := s.resolveItems(ctx, l.Items, true); err != nil {
		return err
	}
	l.Total = aggregate.ComputeTotal(l.Items)

	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(l).Error; err != nil {
			return err
		}
		return writeItems(tx, l)
	})
	if err != nil {
		return translate(err)
	}
	return s.reload(ctx, l)
}

// SaveList writes list fields. With replaceItems the line items are rewritten and new materials must exist.
func (s *Store) SaveList(ctx context.Context, l *model.List, replaceItems bool) error {
	defer prometheus.TrackDBOperation("list.save")()

	if ok, err := s.exists(ctx, &model.Level{}, l.LevelID); err != nil {
		return err
	} else if !ok {
		return ErrUnknownLevel
	}
	if replaceItems {
		if err := s.resolveItems(ctx, l.Items, true); err != nil {
			return err
		}
	}
	l.Total = aggregate.ComputeTotal(l.Items)
	l.Status = model.StatusForProgress(aggregate.ComputeProgress(l.Items))

	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(l).Error; err != nil {
			return err
		}
		if !replaceItems {
			return nil
		}
		return writeItems(tx, l)
	})
	if err != nil {
		return translate(err)
	}
	return s.reload(ctx, l)
}

// AddListItem merges a material into the list
func (s *Store) AddListItem(ctx context.Context, l *model.List, materialID string, quantity int) error {
	if ok, err := s.exists(ctx, &model.Material{}, materialID); err != nil {
		return err
	} else if !ok {
		return ErrUnknownMaterial
	}
	l.AddItem(materialID, quantity)
	// materials of existing lines may have been removed since; only the new one must exist
	if err := s.resolveItems(ctx, l.Items, false); err != nil {
		return err
	}
	return s.saveItems(ctx, l, "list.add_item")
}

// RemoveListItem drops the material's line from the list
func (s *Store) RemoveListItem(ctx context.Context, l *model.List, materialID string) error {
	if !l.RemoveItem(materialID) {
		return ErrItemNotInList
	}
	return s.saveItems(ctx, l, "list.remove_item")
}

func (s *Store) saveItems(ctx context.Context, l *model.List, operation string) error {
	defer prometheus.TrackDBOperation(operation)()

	l.Total = aggregate.ComputeTotal(l.Items)
	l.Status = model.StatusForProgress(aggregate.ComputeProgress(l.Items))

	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(l).Omit(clause.Associations).Updates(map[string]interface{}{
			"total":  l.Total,
			"status": l.Status,
		}).Error; err != nil {
			return err
		}
		return writeItems(tx, l)
	})
	if err != nil {
		return translate(err)
	}
	return s.reload(ctx, l)
}

// SetItemPurchased toggles the purchased state of a line item and re-derives the list status
func (s *Store) SetItemPurchased(ctx context.Context, l *model.List, materialID string, purchased bool, at time.Time) (*model.ListItem, error) {
	defer prometheus.TrackDBOperation("list.mark_purchased")()

	item := l.FindItem(materialID)
	if item == nil {
		return nil, ErrItemNotInList
	}
	item.MarkPurchased(purchased, at)
	l.Status = model.StatusForProgress(aggregate.ComputeProgress(l.Items))

	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.ListItem{}).Where("id = ?", item.ID).Updates(map[string]interface{}{
			"purchased":    item.Purchased,
			"purchased_at": item.PurchasedAt,
		}).Error; err != nil {
			return err
		}
		return tx.Model(l).Omit(clause.Associations).Update("status", l.Status).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return item, nil
}

// DeleteList removes a list and its line items
func (s *Store) DeleteList(ctx context.Context, id string) error {
	defer prometheus.TrackDBOperation("list.delete")()

	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("list_id = ?", id).Delete(&model.ListItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.List{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *Store) reload(ctx context.Context, l *model.List) error {
	fresh, err := s.GetList(ctx, l.ID)
	if err != nil {
		return err
	}
	*l = *fresh
	return nil
}
