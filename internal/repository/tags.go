package repository

import (
	"context"

	"supplies-service/internal/model"
	"supplies-service/prometheus"
)

var ErrTagNameTaken = &ConflictError{Field: "name", Message: "a tag with this name already exists"}

// ListActiveTags returns the active tags sorted by name
func (s *Store) ListActiveTags(ctx context.Context) ([]model.Tag, error) {
	defer prometheus.TrackDBOperation("tag.list")()

	var tags []model.Tag
	err := s.conn(ctx).Where("active = ?", true).Order("name ASC").Find(&tags).Error
	return tags, err
}

// ListAllTags returns every tag, inactive ones included
func (s *Store) ListAllTags(ctx context.Context) ([]model.Tag, error) {
	defer prometheus.TrackDBOperation("tag.list_all")()

	var tags []model.Tag
	err := s.conn(ctx).Order("name ASC").Find(&tags).Error
	return tags, err
}

// GetTag loads a tag by id
func (s *Store) GetTag(ctx context.Context, id string) (*model.Tag, error) {
	defer prometheus.TrackDBOperation("tag.get")()

	var t model.Tag
	if err := s.conn(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &t, nil
}

// SaveTag creates or updates a tag. Names are unique ignoring case.
func (s *Store) SaveTag(ctx context.Context, t *model.Tag) error {
	defer prometheus.TrackDBOperation("tag.save")()

	if taken, err := s.taken(ctx, &model.Tag{}, "name_key", model.NameKey(t.Name), t.ID); err != nil {
		return err
	} else if taken {
		return ErrTagNameTaken
	}

	if t.ID == "" {
		return translate(s.conn(ctx).Create(t).Error)
	}
	return translate(s.conn(ctx).Save(t).Error)
}

// CountTagReferences returns how many materials carry the tag
func (s *Store) CountTagReferences(ctx context.Context, tagID string) (int64, error) {
	defer prometheus.TrackDBOperation("tag.count_refs")()

	var count int64
	err := s.conn(ctx).Table("material_tags").Where("tag_id = ?", tagID).Count(&count).Error
	return count, err
}

// DeactivateTag soft-deletes a tag
func (s *Store) DeactivateTag(ctx context.Context, t *model.Tag) error {
	defer prometheus.TrackDBOperation("tag.deactivate")()

	if err := s.conn(ctx).Model(t).Update("active", false).Error; err != nil {
		return err
	}
	t.Active = false
	return nil
}

// DeleteTag hard-deletes a tag
func (s *Store) DeleteTag(ctx context.Context, id string) error {
	defer prometheus.TrackDBOperation("tag.delete")()

	res := s.conn(ctx).Delete(&model.Tag{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
