package repository

import (
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"supplies-service/internal/model"
	"supplies-service/pkg/database"
)

func TestUserConflictNamesTheField(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:user_conflict?mode=memory&cache=shared"), database.GormConfig(gormlogger.Silent))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	s := New(db)
	ctx := t.Context()
	existing := &model.User{Name: "Ana", Email: "ana@example.com", NationalID: "123456789", Role: model.RoleParent, Active: true}
	if err := s.CreateUser(ctx, existing, "secret123"); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	// inserts that skip the lookups, as a registration racing the first one would
	tests := []struct {
		name string
		user *model.User
		want error
	}{
		{"same email", &model.User{Name: "B", Email: existing.Email, NationalID: "987654321", Password: "x"}, ErrEmailTaken},
		{"same national id", &model.User{Name: "C", Email: "c@example.com", NationalID: existing.NationalID, Password: "x"}, ErrNationalIDTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			insertErr := translate(db.Create(tt.user).Error)
			if !errors.Is(insertErr, ErrDuplicate) {
				t.Fatalf("insert error = %v, want a duplicate", insertErr)
			}
			if got := s.userConflict(ctx, tt.user, insertErr); got != tt.want {
				t.Fatalf("userConflict() = %v, want %v", got, tt.want)
			}
		})
	}

	other := errors.New("connection reset")
	if got := s.userConflict(ctx, existing, other); got != other {
		t.Fatalf("userConflict() = %v, want the original error", got)
	}
}
