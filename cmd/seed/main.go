// Command seed creates the administrator account, the default education levels
// and the default tags. Records that already exist are left untouched.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"supplies-service/internal/model"
	"supplies-service/internal/repository"
	"supplies-service/pkg/config"
	"supplies-service/pkg/database"
	"supplies-service/pkg/logger"
)

var defaultLevels = []model.Level{
	{Name: "Materno", Grade: "Materno", Description: "Educación preescolar", DisplayOrder: 1},
	{Name: "Preescolar", Grade: "Kinder", Description: "Educación preescolar", DisplayOrder: 2},
	{Name: "Preparatoria", Grade: "Preparatoria", Description: "Educación preescolar", DisplayOrder: 3},
	{Name: "Primero", Grade: "1°", Description: "Primer grado de educación primaria", DisplayOrder: 4},
	{Name: "Segundo", Grade: "2°", Description: "Segundo grado de educación primaria", DisplayOrder: 5},
	{Name: "Tercero", Grade: "3°", Description: "Tercer grado de educación primaria", DisplayOrder: 6},
	{Name: "Cuarto", Grade: "4°", Description: "Cuarto grado de educación primaria", DisplayOrder: 7},
	{Name: "Quinto", Grade: "5°", Description: "Quinto grado de educación primaria", DisplayOrder: 8},
	{Name: "Sexto", Grade: "6°", Description: "Sexto grado de educación primaria", DisplayOrder: 9},
	{Name: "Sétimo", Grade: "7°", Description: "Educación secundaria", DisplayOrder: 10},
	{Name: "Octavo", Grade: "8°", Description: "Educación secundaria", DisplayOrder: 11},
	{Name: "Noveno", Grade: "9°", Description: "Educación secundaria", DisplayOrder: 12},
	{Name: "Décimo", Grade: "10°", Description: "Educación diversificada", DisplayOrder: 13},
	{Name: "Undécimo", Grade: "11°", Description: "Educación diversificada", DisplayOrder: 14},
	{Name: "Duodécimo", Grade: "12°", Description: "Educación diversificada", DisplayOrder: 15},
}

var defaultTags = []model.Tag{
	{Name: "Básico", Description: "Material indispensable", Color: "#28a745", Icon: "check-circle"},
	{Name: "Opcional", Description: "Material recomendado", Color: "#6c757d", Icon: "plus-circle"},
	{Name: "Urgente", Description: "Comprar cuanto antes", Color: "#dc3545", Icon: "exclamation-triangle"},
	{Name: "Arte", Description: "Materiales de arte", Color: "#e83e8c", Icon: "palette"},
	{Name: "Ciencias", Description: "Materiales de ciencias", Color: "#007bff", Icon: "flask"},
	{Name: "Matemáticas", Description: "Materiales de matemáticas", Color: "#17a2b8", Icon: "calculator"},
	{Name: "Deportes", Description: "Educación física", Color: "#fd7e14", Icon: "basketball"},
	{Name: "Tecnología", Description: "Materiales de tecnología", Color: "#6f42c1", Icon: "laptop"},
}

// AdminAccount is the administrator created by the seed
type AdminAccount struct {
	Name       string
	Email      string
	Password   string
	NationalID string
}

func adminFromEnv() AdminAccount {
	return AdminAccount{
		Name:       getEnv("SEED_ADMIN_NAME", "Administrador"),
		Email:      getEnv("SEED_ADMIN_EMAIL", "admin@school-supplies.local"),
		Password:   getEnv("SEED_ADMIN_PASSWORD", "admin123"),
		NationalID: getEnv("SEED_ADMIN_NATIONAL_ID", "100000000"),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// Result counts what the seed created
type Result struct {
	AdminCreated bool
	Levels       int
	Tags         int
}

// Seed creates whatever is missing
func Seed(ctx context.Context, store *repository.Store, admin AdminAccount) (Result, error) {
	var res Result
	log := logger.FromContext(ctx)

	user := &model.User{
		Name:       admin.Name,
		Email:      admin.Email,
		NationalID: admin.NationalID,
		Role:       model.RoleAdmin,
		Active:     true,
	}
	switch err := store.CreateUser(ctx, user, admin.Password); {
	case err == nil:
		res.AdminCreated = true
		log.Info("Admin user created", zap.String("email", user.Email))
	case errors.Is(err, repository.ErrDuplicate):
		log.Info("Admin user already exists", zap.String("email", admin.Email))
	default:
		return res, fmt.Errorf("create admin: %w", err)
	}

	for _, tmpl := range defaultLevels {
		level := tmpl
		level.Active = true
		switch err := store.SaveLevel(ctx, &level); {
		case err == nil:
			res.Levels++
		case errors.Is(err, repository.ErrDuplicate):
		default:
			return res, fmt.Errorf("create level %s: %w", level.Name, err)
		}
	}

	for _, tmpl := range defaultTags {
		tag := tmpl
		tag.Active = true
		switch err := store.SaveTag(ctx, &tag); {
		case err == nil:
			res.Tags++
		case errors.Is(err, repository.ErrDuplicate):
		default:
			return res, fmt.Errorf("create tag %s: %w", tag.Name, err)
		}
	}

	log.Info("Seed finished",
		zap.Bool("admin_created", res.AdminCreated),
		zap.Int("levels_created", res.Levels),
		zap.Int("tags_created", res.Tags))
	return res, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	if err := logger.InitLogger(&logger.LogConfig{
		Level:       cfg.Log.Level,
		Environment: cfg.Server.Env,
		ServiceName: config.ServiceName + "-seed",
	}); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer func() { _ = log.Sync() }()

	db, err := database.Connect(&cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}

	ctx := logger.WithContext(context.Background(), log)
	if _, err := Seed(ctx, repository.New(db), adminFromEnv()); err != nil {
		log.Fatal("Seed failed", zap.Error(err))
	}
}
