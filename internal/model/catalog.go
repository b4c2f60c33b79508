package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultCategoryColor = "#3498db"
	DefaultTagColor      = "#007bff"
	DefaultTagIcon       = "tag"
)

// Category groups materials (notebooks, art, ...)
type Category struct {
	ID           string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name         string    `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	Description  string    `json:"description" gorm:"type:text"`
	Icon         string    `json:"icon" gorm:"type:varchar(60)"`
	Color        string    `json:"color" gorm:"type:varchar(10)"`
	DisplayOrder int       `json:"display_order" gorm:"default:0"`
	Active       bool      `json:"active" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.Color == "" {
		c.Color = DefaultCategoryColor
	}
	return nil
}

// Level is a grade level. Name and grade label are each unique; DisplayOrder sorts.
type Level struct {
	ID           string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name         string    `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	Grade        string    `json:"grade" gorm:"type:varchar(100);uniqueIndex;not null"`
	Description  string    `json:"description" gorm:"type:text"`
	DisplayOrder int       `json:"display_order" gorm:"not null;index"`
	Active       bool      `json:"active" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (l *Level) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}

// Label renders "name - grade" for share and export payloads
func (l *Level) Label() string {
	if l == nil {
		return ""
	}
	return l.Name + " - " + l.Grade
}

var ErrInvalidTagColor = errors.New("color must be a hex code like #abc or #aabbcc")

// Tag labels materials. NameKey holds the case-insensitive unique index.
type Tag struct {
	ID          string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(100);not null"`
	NameKey     string    `json:"-" gorm:"type:varchar(100);uniqueIndex;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Color       string    `json:"color" gorm:"type:varchar(10);not null"`
	Icon        string    `json:"icon" gorm:"type:varchar(60)"`
	Active      bool      `json:"active" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Color == "" {
		t.Color = DefaultTagColor
	}
	if t.Icon == "" {
		t.Icon = DefaultTagIcon
	}
	return nil
}

func (t *Tag) BeforeSave(tx *gorm.DB) error {
	if t.Color == "" {
		t.Color = DefaultTagColor
	}
	if !ValidTagColor(t.Color) {
		return ErrInvalidTagColor
	}
	t.NameKey = NameKey(t.Name)
	return nil
}

var ErrNegativePrice = errors.New("price must not be negative")

// Material is a purchasable supply
type Material struct {
	ID          string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(150);not null"`
	Description string    `json:"description" gorm:"type:text"`
	CategoryID  string    `json:"category_id" gorm:"type:varchar(36);index;not null"`
	Category    *Category `json:"category,omitempty"`
	LevelID     string    `json:"level_id" gorm:"type:varchar(36);index;not null"`
	Level       *Level    `json:"level,omitempty"`
	Price       float64   `json:"price" gorm:"not null;default:0"`
	ImageURL    string    `json:"image_url" gorm:"type:varchar(500)"`
	Tags        []Tag     `json:"tags" gorm:"many2many:material_tags;"`
	Available   bool      `json:"available" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (m *Material) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

func (m *Material) BeforeSave(tx *gorm.DB) error {
	if m.Price < 0 {
		return fmt.Errorf("material %q: %w", m.Name, ErrNegativePrice)
	}
	return nil
}

// TagIDs lists the ids of the attached tags
func (m *Material) TagIDs() []string {
	ids := make([]string, 0, len(m.Tags))
	for _, t := range m.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}
