package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"supplies-service/internal/model"
	"supplies-service/prometheus"
)

var (
	// ErrInvalidCredentials is returned by Authenticate for any mismatch
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrEmailTaken      = &ConflictError{Field: "email", Message: "a user with this email already exists"}
	ErrNationalIDTaken = &ConflictError{Field: "national_id", Message: "a user with this national id already exists"}
)

// NormalizeEmail lowercases and trims an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HashPassword hashes a password with bcrypt; each hash carries its own salt
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// CreateUser stores a new user, hashing the plain password
func (s *Store) CreateUser(ctx context.Context, u *model.User, password string) error {
	defer prometheus.TrackDBOperation("user.create")()

	u.Email = NormalizeEmail(u.Email)
	u.NationalID = strings.TrimSpace(u.NationalID)

	if taken, err := s.taken(ctx, &model.User{}, "email", u.Email, ""); err != nil {
		return err
	} else if taken {
		return ErrEmailTaken
	}
	if taken, err := s.taken(ctx, &model.User{}, "national_id", u.NationalID, ""); err != nil {
		return err
	} else if taken {
		return ErrNationalIDTaken
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.Password = hashed

	if err := s.conn(ctx).Create(u).Error; err != nil {
		return s.userConflict(ctx, u, translate(err))
	}
	return nil
}

// userConflict names the unique field behind a duplicate insert, which happens when a
// concurrent registration wins between the lookups and the insert
func (s *Store) userConflict(ctx context.Context, u *model.User, err error) error {
	if !errors.Is(err, ErrDuplicate) {
		return err
	}
	if taken, lookupErr := s.taken(ctx, &model.User{}, "email", u.Email, ""); lookupErr == nil && taken {
		return ErrEmailTaken
	}
	if taken, lookupErr := s.taken(ctx, &model.User{}, "national_id", u.NationalID, ""); lookupErr == nil && taken {
		return ErrNationalIDTaken
	}
	return err
}

// Authenticate checks an email and password pair
func (s *Store) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	defer prometheus.TrackDBOperation("user.authenticate")()

	var u model.User
	err := s.conn(ctx).Where("email = ?", NormalizeEmail(email)).First(&u).Error
	if err != nil {
		if errors.Is(translate(err), ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !u.Active {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &u, nil
}

// GetUser loads a user by id
func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	defer prometheus.TrackDBOperation("user.get")()

	var u model.User
	if err := s.conn(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// ListUsers returns every user, newest first
func (s *Store) ListUsers(ctx context.Context) ([]model.User, error) {
	defer prometheus.TrackDBOperation("user.list")()

	var users []model.User
	if err := s.conn(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// ProfileUpdate holds the optional fields of a profile change
type ProfileUpdate struct {
	Name     *string
	Email    *string
	Phone    *string
	Address  *string
	Password *string
}

// UpdateProfile applies the given fields to the user
func (s *Store) UpdateProfile(ctx context.Context, id string, upd ProfileUpdate) (*model.User, error) {
	defer prometheus.TrackDBOperation("user.update")()

	u, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil && strings.TrimSpace(*upd.Name) != "" {
		u.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Email != nil && NormalizeEmail(*upd.Email) != "" && NormalizeEmail(*upd.Email) != u.Email {
		email := NormalizeEmail(*upd.Email)
		if taken, err := s.taken(ctx, &model.User{}, "email", email, u.ID); err != nil {
			return nil, err
		} else if taken {
			return nil, ErrEmailTaken
		}
		u.Email = email
	}
	if upd.Phone != nil {
		u.Phone = *upd.Phone
	}
	if upd.Address != nil {
		u.Address = *upd.Address
	}
	if upd.Password != nil && *upd.Password != "" {
		hashed, err := HashPassword(*upd.Password)
		if err != nil {
			return nil, err
		}
		u.Password = hashed
	}

	if err := s.conn(ctx).Save(u).Error; err != nil {
		return nil, translate(err)
	}
	return u, nil
}

// DeleteUser removes a user
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	defer prometheus.TrackDBOperation("user.delete")()

	res := s.conn(ctx).Delete(&model.User{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
