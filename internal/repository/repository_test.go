package repository_test

import (
	"errors"
	"testing"
	"time"

	"supplies-service/internal/model"
	"supplies-service/internal/repository"
	"supplies-service/internal/testutil"
)

func TestCreateUserUniqueness(t *testing.T) {
	s := testutil.Store(t)
	ctx := t.Context()

	first := &model.User{Name: "Ana", Email: "Ana@Example.com", NationalID: "123456789"}
	if err := s.CreateUser(ctx, first, "pw123456"); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if first.Email != "ana@example.com" || first.Role != model.RoleParent {
		t.Fatalf("unexpected stored user: %+v", first)
	}
	if first.Password == "pw123456" {
		t.Fatalf("password stored in clear")
	}

	err := s.CreateUser(ctx, &model.User{Name: "B", Email: "ana@example.com", NationalID: "987654321"}, "pw")
	if !errors.Is(err, repository.ErrEmailTaken) || !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("expected duplicate email, got %v", err)
	}

	err = s.CreateUser(ctx, &model.User{Name: "C", Email: "c@example.com", NationalID: "123456789"}, "pw")
	if !errors.Is(err, repository.ErrNationalIDTaken) {
		t.Fatalf("expected duplicate national id, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	s := testutil.Store(t)
	f := testutil.Seed(t, s)
	ctx := t.Context()

	u, err := s.Authenticate(ctx, " TEACHER@example.com", testutil.Password)
	if err != nil || u.ID != f.Teacher.ID {
		t.Fatalf("Authenticate() = %v, %v", u, err)
	}
	if _, err := s.Authenticate(ctx, "teacher@example.com", "wrong"); !errors.Is(err, repository.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := s.Authenticate(ctx, "ghost@example.com", "x"); !errors.Is(err, repository.ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	s := testutil.Store(t)
	f := testutil.Seed(t, s)
	ctx := t.Context()

	name, phone := "Carla P.", "555-1234"
	u, err := s.UpdateProfile(ctx, f.Parent.ID, repository.ProfileUpdate{Name: &name, Phone: &phone})
	if err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}
	if u.Name != name || u.Phone != phone || u.Email != f.Parent.Email {
		t.Fatalf("unexpected profile: %+v", u)
	}

	taken := "teacher@example.com"
	if _, err := s.UpdateProfile(ctx, f.Parent.ID, repository.ProfileUpdate{Email: &taken}); !errors.Is(err, repository.ErrEmailTaken) {
		t.Fatalf("expected duplicate email, got %v", err)
	}
}

func TestLevelUniqueness(t *testing.T) {
	s := testutil.Store(t)
	f := testutil.Seed(t, s)
	ctx := t.Context()

	dupGrade := &model.Level{Name: "Otro", Grade: f.Level.Grade, DisplayOrder: 9}
	if err := s.SaveLevel(ctx, dupGrade); !errors.Is(err, repository.ErrLevelTaken) {
		t.Fatalf("expected duplicate grade, got %v", err)
	}

	// updating a level with its own values is not a conflict
	f.Level.Description = "first grade"
	if err := s.SaveLevel(ctx, f.Level); err != nil {
		t.Fatalf("SaveLevel() error = %v", err)
	}

	levels, err := s.ListLevels(ctx)
	if err != nil || len(levels) != 2 || levels[0].ID != f.Level.ID {
		t.Fatalf("ListLevels() = %v, %v", levels, err)
	}
}

func TestTagNamesAreCaseInsensitive(t *testing.T) {
	s := testutil.Store(t)
	testutil.Seed(t, s)

	err := s.SaveTag(t.Context(), &model.Tag{Name: "  BÁSICO "})
	if !errors.Is(err, repository.ErrTagNameTaken) {
		t.Fatalf("expected duplicate tag name, got %v", err)
	}

	err = s.SaveTag(t.Context(), &model.Tag{Name: "urgente", Color: "blue"})
	if !errors.Is(err, model.ErrInvalidTagColor) {
		t.Fatalf("expected invalid color, got %v", err)
	}
}

func TestTagReferencesAndDeactivation(t *testing.T) {
	s := testutil.Store(t)
	f := testutil.Seed(t, s)
	ctx := t.Context()

	refs, err := s.CountTagReferences(ctx, f.Tag.ID)
	if err != nil || refs != 1 {
		t.Fatalf("CountTagReferences() = %d, %v", refs, err)
	}

	if err := s.DeactivateTag(ctx, f.Tag); err != nil {
		t.Fatalf("DeactivateTag() error = %v", err)
	}
	active, err := s.ListActiveTags(ctx)
	if err != nil || len(active) != 0 {
		t.Fatalf("ListActiveTags() = %v, %v", active, err)
	}

	if err := s.DeleteTag(ctx, "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMaterialTagsAndFilters(t *testing.T) {
	s := testutil.Store(t)
	f := testutil.Seed(t, s)
	ctx := t.Context()

	m, err := s.GetMaterial(ctx, f.Pencil.ID)
	if err != nil {
		t.Fatalf("GetMaterial() error = %v", err)
	}
	if m.Category == nil || m.Level == nil || len(m.Tags) != 1 {
		t.Fatalf("expected resolved references: %+v", m)
	}

	tagged, err := s.ListMaterials(ctx, repository.MaterialFilter{TagID: f.Tag.ID})
	if err != nil || len(tagged) != 1 || tagged[0].ID != f.Pencil.ID {
		t.Fatalf("ListMaterials(tag) = %v, %v", tagged, err)
	}

	byLevel, err := s.ListMaterials(ctx, repository.MaterialFilter{LevelID: f.Level2.ID})
	if err != nil || len(byLevel) != 0 {
		t.Fatalf("ListMaterials(level2) = %v, %v", byLevel, err)
	}

	// an empty tag set clears the links
	if err := s.SaveMaterial(ctx, m, []string{}); err != nil {
		t.Fatalf("SaveMaterial() error = %v", err)
	}
	if refs, _ := s.CountTagReferences(ctx, f.Tag.ID); refs != 0 {
		t.Fatalf("expected no references, got %d", refs)
	}

	bad := &model.Material{Name: "X", CategoryID: "nope", LevelID: f.Level.ID}
	if err := s.SaveMaterial(ctx, bad, nil); !errors.Is(err, repository.ErrUnknownCategory) {
		t.Fatalf("expected unknown category, got %v", err)
	}
	badTag := &model.Material{Name: "X", CategoryID: f.Category.ID, LevelID: f.Level.ID}
	if err := s.SaveMaterial(ctx, badTag, []string{"missing"}); !errors.Is(err, repository.ErrUnknownTag) {
		t.Fatalf("expected unknown tag, got %v", err)
	}
}

func TestListLifecycle(t *testing.T) {
	s := testutil.Store(t)
	f := testutil.Seed(t, s)
	ctx := t.Context()

	l := &model.List{
		Name:    "Primero A",
		OwnerID: f.Teacher.ID,
		LevelID: f.Level.ID,
		Kind:    model.ListKindOfficial,
		Public:  true,
	}
	l.AddItem(f.Pencil.ID, 4)
	l.AddItem(f.Notebook.ID, 0)

	if err := s.CreateList(ctx, l); err != nil {
		t.Fatalf("CreateList() error = %v", err)
	}
	if l.Total != 4*0.5+2.25 || l.Status != model.ListStatusPending {
		t.Fatalf("unexpected list after create: total=%v status=%s", l.Total, l.Status)
	}
	if l.Owner == nil || l.Level == nil || len(l.Items) != 2 || l.Items[0].Material == nil {
		t.Fatalf("expected resolved list: %+v", l)
	}

	// merging into an existing line grows the quantity and the total
	if err := s.AddListItem(ctx, l, f.Pencil.ID, 2); err != nil {
		t.Fatalf("AddListItem() error = %v", err)
	}
	if len(l.Items) != 2 || l.FindItem(f.Pencil.ID).Quantity != 6 || l.Total != 6*0.5+2.25 {
		t.Fatalf("unexpected list after add: %+v", l)
	}

	item, err := s.SetItemPurchased(ctx, l, f.Notebook.ID, true, time.Time{})
	if err != nil || !item.Purchased || item.PurchasedAt == nil {
		t.Fatalf("SetItemPurchased() = %+v, %v", item, err)
	}
	stored, err := s.GetList(ctx, l.ID)
	if err != nil || stored.Status != model.ListStatusInProgress || !stored.FindItem(f.Notebook.ID).Purchased {
		t.Fatalf("unexpected stored list: %+v, %v", stored, err)
	}

	if err := s.RemoveListItem(ctx, stored, f.Pencil.ID); err != nil {
		t.Fatalf("RemoveListItem() error = %v", err)
	}
	if stored.Total != 2.25 || stored.Status != model.ListStatusCompleted {
		t.Fatalf("unexpected list after removal: total=%v status=%s", stored.Total, stored.Status)
	}
	if err := s.RemoveListItem(ctx, stored, f.Pencil.ID); !errors.Is(err, repository.ErrItemNotInList) {
		t.Fatalf("expected item not in list, got %v", err)
	}

	if err := s.DeleteList(ctx, l.ID); err != nil {
		t.Fatalf("DeleteList() error = %v", err)
	}
	if _, err := s.GetList(ctx, l.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListFilters(t *testing.T) {
	s := testutil.Store(t)
	f := testutil.Seed(t, s)
	ctx := t.Context()

	mk := func(owner string, public bool, level string) {
		l := &model.List{Name: "L", OwnerID: owner, LevelID: level, Kind: model.ListKindOfficial, Public: public}
		if err := s.CreateList(ctx, l); err != nil {
			t.Fatalf("CreateList() error = %v", err)
		}
	}
	mk(f.Teacher.ID, true, f.Level.ID)
	mk(f.Teacher.ID, false, f.Level.ID)
	mk(f.Teacher2.ID, true, f.Level2.ID)

	all, _ := s.ListLists(ctx, repository.ListFilter{})
	own, _ := s.ListLists(ctx, repository.ListFilter{OwnerID: f.Teacher.ID})
	public, _ := s.ListLists(ctx, repository.ListFilter{OfficialPublic: true})
	level, _ := s.ListLists(ctx, repository.ListFilter{OfficialPublic: true, LevelID: f.Level.ID})

	if len(all) != 3 || len(own) != 2 || len(public) != 2 || len(level) != 1 {
		t.Fatalf("unexpected counts: all=%d own=%d public=%d level=%d", len(all), len(own), len(public), len(level))
	}
}

func TestDeletedMaterialCountsAsFree(t *testing.T) {
	s := testutil.Store(t)
	f := testutil.Seed(t, s)
	ctx := t.Context()

	l := &model.List{Name: "L", OwnerID: f.Teacher.ID, LevelID: f.Level.ID, Kind: model.ListKindOfficial}
	l.AddItem(f.Pencil.ID, 1)
	l.AddItem(f.Notebook.ID, 1)
	if err := s.CreateList(ctx, l); err != nil {
		t.Fatalf("CreateList() error = %v", err)
	}

	if err := s.DeleteMaterial(ctx, f.Notebook.ID); err != nil {
		t.Fatalf("DeleteMaterial() error = %v", err)
	}
	stored, err := s.GetList(ctx, l.ID)
	if err != nil || len(stored.Items) != 2 || stored.FindItem(f.Notebook.ID).Material != nil {
		t.Fatalf("expected dangling line item: %+v, %v", stored, err)
	}

	// adding recomputes the total without the removed material
	if err := s.AddListItem(ctx, stored, f.Pencil.ID, 1); err != nil {
		t.Fatalf("AddListItem() error = %v", err)
	}
	if stored.Total != 1.0 {
		t.Fatalf("Total = %v, want 1", stored.Total)
	}
}
