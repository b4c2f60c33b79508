// Package testutil provides sqlite-backed stores for tests.
package testutil

import (
	"fmt"
	"regexp"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"supplies-service/internal/model"
	"supplies-service/internal/repository"
	"supplies-service/pkg/database"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_]`)

// DB opens a fresh in-memory database named after the test and migrates all models
func DB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", unsafeName.ReplaceAllString(t.Name(), "_"))
	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig(gormlogger.Silent))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	// one connection keeps the in-memory database alive and serializes access
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Store returns a repository on a fresh database
func Store(t *testing.T) *repository.Store {
	t.Helper()
	return repository.New(DB(t))
}

// Fixtures holds a small seeded catalog
type Fixtures struct {
	Admin    *model.User
	Teacher  *model.User
	Teacher2 *model.User
	Parent   *model.User
	Category *model.Category
	Level    *model.Level
	Level2   *model.Level
	Tag      *model.Tag
	Pencil   *model.Material
	Notebook *model.Material
}

// Password is the password of every fixture user
const Password = "secret123"

// Seed fills the store with users of every role, a category, two levels, a tag and two materials
func Seed(t *testing.T, s *repository.Store) *Fixtures {
	t.Helper()
	ctx := t.Context()
	f := &Fixtures{}

	mkUser := func(name, email, nationalID string, role model.Role) *model.User {
		u := &model.User{Name: name, Email: email, NationalID: nationalID, Role: role, Active: true}
		if err := s.CreateUser(ctx, u, Password); err != nil {
			t.Fatalf("create user %s: %v", email, err)
		}
		return u
	}
	f.Admin = mkUser("Admin", "admin@example.com", "100000001", model.RoleAdmin)
	f.Teacher = mkUser("Ana Teacher", "teacher@example.com", "100000002", model.RoleTeacher)
	f.Teacher2 = mkUser("Beto Teacher", "teacher2@example.com", "100000003", model.RoleTeacher)
	f.Parent = mkUser("Carla Parent", "parent@example.com", "100000004", model.RoleParent)

	f.Category = &model.Category{Name: "Cuadernos", Active: true}
	if err := s.SaveCategory(ctx, f.Category); err != nil {
		t.Fatalf("create category: %v", err)
	}

	f.Level = &model.Level{Name: "Primero", Grade: "1ro Básico", DisplayOrder: 1, Active: true}
	if err := s.SaveLevel(ctx, f.Level); err != nil {
		t.Fatalf("create level: %v", err)
	}
	f.Level2 = &model.Level{Name: "Segundo", Grade: "2do Básico", DisplayOrder: 2, Active: true}
	if err := s.SaveLevel(ctx, f.Level2); err != nil {
		t.Fatalf("create level: %v", err)
	}

	f.Tag = &model.Tag{Name: "Básico", Color: "#28a745", Active: true}
	if err := s.SaveTag(ctx, f.Tag); err != nil {
		t.Fatalf("create tag: %v", err)
	}

	f.Pencil = &model.Material{Name: "Lápiz", CategoryID: f.Category.ID, LevelID: f.Level.ID, Price: 0.5, Available: true}
	if err := s.SaveMaterial(ctx, f.Pencil, []string{f.Tag.ID}); err != nil {
		t.Fatalf("create material: %v", err)
	}
	f.Notebook = &model.Material{Name: "Cuaderno", CategoryID: f.Category.ID, LevelID: f.Level.ID, Price: 2.25, Available: true}
	if err := s.SaveMaterial(ctx, f.Notebook, nil); err != nil {
		t.Fatalf("create material: %v", err)
	}

	return f
}
