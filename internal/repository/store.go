// Package repository is the Entity Store: gorm-backed persistence for users,
// the catalog (categories, levels, tags, materials) and supply lists.
package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint would be violated
	ErrDuplicate = errors.New("duplicate record")
	// ErrInvalidReference is returned when a referenced record does not exist
	ErrInvalidReference = errors.New("invalid reference")
)

// ConflictError names the unique field that collided
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Unwrap() error { return ErrDuplicate }

// ReferenceError names the reference that failed to resolve
type ReferenceError struct {
	Field   string
	Message string
}

func (e *ReferenceError) Error() string { return e.Message }

func (e *ReferenceError) Unwrap() error { return ErrInvalidReference }

// Store wraps the gorm connection
type Store struct {
	db *gorm.DB
}

// New creates a store on an open connection
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Ping checks that the database answers
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// translate maps gorm errors to the store's sentinel errors
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}

// taken reports whether another row of model has column = value
func (s *Store) taken(ctx context.Context, model interface{}, column string, value interface{}, excludeID string) (bool, error) {
	q := s.conn(ctx).Model(model).Where(column+" = ?", value)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) exists(ctx context.Context, model interface{}, id string) (bool, error) {
	return s.taken(ctx, model, "id", id, "")
}
