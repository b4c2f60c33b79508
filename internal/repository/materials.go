package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"supplies-service/internal/model"
	"supplies-service/prometheus"
)

var (
	ErrUnknownCategory = &ReferenceError{Field: "category_id", Message: "category not found"}
	ErrUnknownLevel    = &ReferenceError{Field: "level_id", Message: "level not found"}
	ErrUnknownTag      = &ReferenceError{Field: "tag_ids", Message: "one or more tags were not found"}
	ErrUnknownMaterial = &ReferenceError{Field: "material_id", Message: "material not found"}
)

// MaterialFilter narrows material listings
type MaterialFilter struct {
	CategoryID string
	LevelID    string
	TagID      string
}

func (s *Store) materialQuery(ctx context.Context) *gorm.DB {
	return s.conn(ctx).
		Preload("Category").
		Preload("Level").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") })
}

// ListMaterials returns materials with category, level and tags resolved
func (s *Store) ListMaterials(ctx context.Context, filter MaterialFilter) ([]model.Material, error) {
	defer prometheus.TrackDBOperation("material.list")()

	q := s.materialQuery(ctx)
	if filter.CategoryID != "" {
		q = q.Where("materials.category_id = ?", filter.CategoryID)
	}
	if filter.LevelID != "" {
		q = q.Where("materials.level_id = ?", filter.LevelID)
	}
	if filter.TagID != "" {
		q = q.Joins("JOIN material_tags ON material_tags.material_id = materials.id").
			Where("material_tags.tag_id = ?", filter.TagID)
	}

	var materials []model.Material
	err := q.Order("materials.name ASC").Find(&materials).Error
	return materials, err
}

// GetMaterial loads a material with its references
func (s *Store) GetMaterial(ctx context.Context, id string) (*model.Material, error) {
	defer prometheus.TrackDBOperation("material.get")()

	var m model.Material
	if err := s.materialQuery(ctx).First(&m, "materials.id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (s *Store) loadTags(ctx context.Context, ids []string) ([]model.Tag, error) {
	ids = uniqueStrings(ids)
	if len(ids) == 0 {
		return []model.Tag{}, nil
	}
	var tags []model.Tag
	if err := s.conn(ctx).Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, err
	}
	if len(tags) != len(ids) {
		return nil, ErrUnknownTag
	}
	return tags, nil
}

func (s *Store) checkMaterialRefs(ctx context.Context, m *model.Material) error {
	if ok, err := s.exists(ctx, &model.Category{}, m.CategoryID); err != nil {
		return err
	} else if !ok {
		return ErrUnknownCategory
	}
	if ok, err := s.exists(ctx, &model.Level{}, m.LevelID); err != nil {
		return err
	} else if !ok {
		return ErrUnknownLevel
	}
	return nil
}

// SaveMaterial creates or updates a material. A nil tagIDs keeps the current tags.
func (s *Store) SaveMaterial(ctx context.Context, m *model.Material, tagIDs []string) error {
	defer prometheus.TrackDBOperation("material.save")()

	if err := s.checkMaterialRefs(ctx, m); err != nil {
		return err
	}

	var tags []model.Tag
	if tagIDs != nil {
		var err error
		if tags, err = s.loadTags(ctx, tagIDs); err != nil {
			return err
		}
	}

	creating := m.ID == ""
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		m.Category, m.Level = nil, nil
		if creating {
			if err := tx.Omit(clause.Associations).Create(m).Error; err != nil {
				return err
			}
		} else if err := tx.Omit(clause.Associations).Save(m).Error; err != nil {
			return err
		}

		if tagIDs == nil {
			return nil
		}
		assoc := tx.Model(m).Association("Tags")
		if len(tags) == 0 {
			if err := assoc.Clear(); err != nil {
				return err
			}
		} else if err := assoc.Replace(tags); err != nil {
			return err
		}
		m.Tags = tags
		return nil
	})
	if err != nil {
		return translate(err)
	}

	saved, err := s.GetMaterial(ctx, m.ID)
	if err != nil {
		return err
	}
	*m = *saved
	return nil
}

// DeleteMaterial removes a material and its tag links. Lists keep their line items.
func (s *Store) DeleteMaterial(ctx context.Context, id string) error {
	defer prometheus.TrackDBOperation("material.delete")()

	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		m := model.Material{ID: id}
		res := tx.Select("Tags").Delete(&m)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// loadMaterials resolves materials by id
func (s *Store) loadMaterials(ctx context.Context, ids []string) (map[string]*model.Material, error) {
	ids = uniqueStrings(ids)
	found := make(map[string]*model.Material, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	var materials []model.Material
	if err := s.conn(ctx).Where("id IN ?", ids).Find(&materials).Error; err != nil {
		return nil, err
	}
	for i := range materials {
		found[materials[i].ID] = &materials[i]
	}
	return found, nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
