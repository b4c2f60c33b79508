package model

import (
	"errors"
	"testing"
	"time"
)

func TestParseRole(t *testing.T) {
	for _, in := range []string{"admin", "Teacher", " parent "} {
		if _, err := ParseRole(in); err != nil {
			t.Fatalf("expected %q to parse: %v", in, err)
		}
	}
	if _, err := ParseRole("principal"); err == nil {
		t.Fatalf("expected unknown role to fail")
	}
}

func TestValidTagColor(t *testing.T) {
	valid := []string{"#abc", "#ABC", "#a1b2c3", "#000000"}
	invalid := []string{"", "abc", "#ab", "#abcd", "#abcdefab", "#ggg", "#12345"}
	for _, c := range valid {
		if !ValidTagColor(c) {
			t.Fatalf("expected %q valid", c)
		}
	}
	for _, c := range invalid {
		if ValidTagColor(c) {
			t.Fatalf("expected %q invalid", c)
		}
	}
}

func TestTagBeforeSave(t *testing.T) {
	tag := &Tag{Name: "  Urgente ", Color: "#dc3545"}
	if err := tag.BeforeSave(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tag.NameKey != "urgente" {
		t.Fatalf("expected normalized key, got %q", tag.NameKey)
	}

	bad := &Tag{Name: "x", Color: "red"}
	if err := bad.BeforeSave(nil); !errors.Is(err, ErrInvalidTagColor) {
		t.Fatalf("expected invalid color error, got %v", err)
	}

	empty := &Tag{Name: "y"}
	if err := empty.BeforeSave(nil); err != nil || empty.Color != DefaultTagColor {
		t.Fatalf("expected default color, got %q (%v)", empty.Color, err)
	}
}

func TestMaterialRejectsNegativePrice(t *testing.T) {
	m := &Material{Name: "Lápiz", Price: -1}
	if err := m.BeforeSave(nil); !errors.Is(err, ErrNegativePrice) {
		t.Fatalf("expected negative price error, got %v", err)
	}
}

func TestStatusForProgress(t *testing.T) {
	cases := map[int]ListStatus{0: ListStatusPending, 1: ListStatusInProgress, 99: ListStatusInProgress, 100: ListStatusCompleted}
	for in, want := range cases {
		if got := StatusForProgress(in); got != want {
			t.Fatalf("StatusForProgress(%d) = %s, want %s", in, got, want)
		}
	}
}

func TestListAddAndRemoveItems(t *testing.T) {
	l := &List{}
	l.AddItem("m1", 0)
	l.AddItem("m2", 3)
	l.AddItem("m1", 2)

	if len(l.Items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(l.Items))
	}
	if l.FindItem("m1").Quantity != 3 {
		t.Fatalf("expected merged quantity 3, got %d", l.FindItem("m1").Quantity)
	}

	if !l.RemoveItem("m1") {
		t.Fatalf("expected removal")
	}
	if l.RemoveItem("missing") {
		t.Fatalf("expected no change for missing material")
	}
	if len(l.Items) != 1 || l.Items[0].MaterialID != "m2" || l.Items[0].Position != 0 {
		t.Fatalf("unexpected items after removal: %+v", l.Items)
	}
}

func TestMarkPurchased(t *testing.T) {
	item := &ListItem{MaterialID: "m1", Quantity: 1}
	at := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	item.MarkPurchased(true, at)
	if !item.Purchased || item.PurchasedAt == nil || !item.PurchasedAt.Equal(at) {
		t.Fatalf("expected purchase date %v, got %+v", at, item.PurchasedAt)
	}
	item.MarkPurchased(false, at)
	if item.Purchased || item.PurchasedAt != nil {
		t.Fatalf("expected purchase date cleared")
	}
	item.MarkPurchased(true, time.Time{})
	if item.PurchasedAt == nil {
		t.Fatalf("expected default purchase date")
	}
}

func TestOfficialPublic(t *testing.T) {
	if (&List{Kind: ListKindOfficial}).OfficialPublic() {
		t.Fatalf("private official list is not visible to parents")
	}
	if !(&List{Kind: ListKindOfficial, Public: true}).OfficialPublic() {
		t.Fatalf("expected official public list")
	}
	if (&List{Kind: ListKindPersonal, Public: true}).OfficialPublic() {
		t.Fatalf("personal list is never official")
	}
}
