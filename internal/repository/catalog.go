package repository

import (
	"context"

	"supplies-service/internal/model"
	"supplies-service/prometheus"
)

var (
	ErrCategoryNameTaken = &ConflictError{Field: "name", Message: "a category with this name already exists"}
	ErrLevelTaken        = &ConflictError{Field: "name", Message: "a level with this name or grade already exists"}
)

// ListCategories returns all categories in display order
func (s *Store) ListCategories(ctx context.Context) ([]model.Category, error) {
	defer prometheus.TrackDBOperation("category.list")()

	var categories []model.Category
	err := s.conn(ctx).Order("display_order ASC").Order("name ASC").Find(&categories).Error
	return categories, err
}

// GetCategory loads a category by id
func (s *Store) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	defer prometheus.TrackDBOperation("category.get")()

	var c model.Category
	if err := s.conn(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

// SaveCategory creates or updates a category, keeping names unique
func (s *Store) SaveCategory(ctx context.Context, c *model.Category) error {
	defer prometheus.TrackDBOperation("category.save")()

	if taken, err := s.taken(ctx, &model.Category{}, "name", c.Name, c.ID); err != nil {
		return err
	} else if taken {
		return ErrCategoryNameTaken
	}

	if c.ID == "" {
		return translate(s.conn(ctx).Create(c).Error)
	}
	return translate(s.conn(ctx).Save(c).Error)
}

// DeleteCategory removes a category
func (s *Store) DeleteCategory(ctx context.Context, id string) error {
	defer prometheus.TrackDBOperation("category.delete")()

	res := s.conn(ctx).Delete(&model.Category{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListLevels returns all levels sorted by display order
func (s *Store) ListLevels(ctx context.Context) ([]model.Level, error) {
	defer prometheus.TrackDBOperation("level.list")()

	var levels []model.Level
	err := s.conn(ctx).Order("display_order ASC").Find(&levels).Error
	return levels, err
}

// GetLevel loads a level by id
func (s *Store) GetLevel(ctx context.Context, id string) (*model.Level, error) {
	defer prometheus.TrackDBOperation("level.get")()

	var l model.Level
	if err := s.conn(ctx).First(&l, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &l, nil
}

// SaveLevel creates or updates a level; name and grade are each unique
func (s *Store) SaveLevel(ctx context.Context, l *model.Level) error {
	defer prometheus.TrackDBOperation("level.save")()

	for column, value := range map[string]string{"name": l.Name, "grade": l.Grade} {
		taken, err := s.taken(ctx, &model.Level{}, column, value, l.ID)
		if err != nil {
			return err
		}
		if taken {
			return ErrLevelTaken
		}
	}

	if l.ID == "" {
		return translate(s.conn(ctx).Create(l).Error)
	}
	return translate(s.conn(ctx).Save(l).Error)
}

// DeleteLevel removes a level
func (s *Store) DeleteLevel(ctx context.Context, id string) error {
	defer prometheus.TrackDBOperation("level.delete")()

	res := s.conn(ctx).Delete(&model.Level{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
