package main

import (
	"testing"

	"supplies-service/internal/model"
	"supplies-service/internal/testutil"
)

func TestSeedIsIdempotent(t *testing.T) {
	store := testutil.Store(t)
	admin := AdminAccount{Name: "Root", Email: "root@example.com", Password: "secret123", NationalID: "123456789"}

	first, err := Seed(t.Context(), store, admin)
	if err != nil {
		t.Fatalf("Seed() error = %v", err)
	}
	if !first.AdminCreated || first.Levels != len(defaultLevels) || first.Tags != len(defaultTags) {
		t.Fatalf("first run = %+v", first)
	}

	second, err := Seed(t.Context(), store, admin)
	if err != nil {
		t.Fatalf("second Seed() error = %v", err)
	}
	if second.AdminCreated || second.Levels != 0 || second.Tags != 0 {
		t.Fatalf("second run = %+v, want nothing created", second)
	}

	user, err := store.Authenticate(t.Context(), admin.Email, admin.Password)
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if user.Role != model.RoleAdmin {
		t.Fatalf("role = %q, want admin", user.Role)
	}

	levels, err := store.ListLevels(t.Context())
	if err != nil {
		t.Fatalf("ListLevels() error = %v", err)
	}
	if levels[0].Name != "Materno" || levels[len(levels)-1].Name != "Duodécimo" {
		t.Fatalf("levels out of order: first %q last %q", levels[0].Name, levels[len(levels)-1].Name)
	}
}
