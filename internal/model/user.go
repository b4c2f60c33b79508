package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account. Email and national id are globally unique.
type User struct {
	ID         string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name       string    `json:"name" gorm:"type:varchar(150);not null"`
	Email      string    `json:"email" gorm:"type:varchar(150);uniqueIndex;not null"`
	Password   string    `json:"-" gorm:"type:varchar(255);not null"`
	Phone      string    `json:"phone,omitempty" gorm:"type:varchar(40)"`
	NationalID string    `json:"national_id" gorm:"type:varchar(20);uniqueIndex;not null"`
	Address    string    `json:"address,omitempty" gorm:"type:varchar(255)"`
	Role       Role      `json:"role" gorm:"type:varchar(20);not null;default:'parent'"`
	Active     bool      `json:"active" gorm:"default:true"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.Role == "" {
		u.Role = RoleParent
	}
	return nil
}

// UserRef is the populated owner of a list
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// Ref returns the public projection of the user
func (u *User) Ref() *UserRef {
	if u == nil {
		return nil
	}
	return &UserRef{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
