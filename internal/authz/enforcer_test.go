package authz

import "testing"

func setupEnforcer(t *testing.T) *Enforcer {
	t.Helper()
	enforcer, err := NewEnforcer()
	if err != nil {
		t.Fatalf("NewEnforcer() error = %v", err)
	}
	return enforcer
}

func assertAllowed(t *testing.T, e *Enforcer, role, object, action string, want bool) {
	t.Helper()
	got, err := e.Allowed(role, object, action)
	if err != nil {
		t.Fatalf("Allowed(%s, %s, %s) error = %v", role, object, action, err)
	}
	if got != want {
		t.Errorf("Allowed(%s, %s, %s) = %v, want %v", role, object, action, got, want)
	}
}

func TestCatalogGates(t *testing.T) {
	e := setupEnforcer(t)
	for _, object := range []string{"category", "level", "material"} {
		assertAllowed(t, e, "teacher", object, "create", true)
		assertAllowed(t, e, "admin", object, "update", true)
		assertAllowed(t, e, "parent", object, "delete", false)
	}
}

func TestTagGates(t *testing.T) {
	e := setupEnforcer(t)
	assertAllowed(t, e, "parent", "tag", "read", true)
	assertAllowed(t, e, "teacher", "tag", "create", true)
	assertAllowed(t, e, "teacher", "tag", "delete", false)
	assertAllowed(t, e, "admin", "tag", "delete", true)
	assertAllowed(t, e, "parent", "tag", "update", false)
}

func TestListGates(t *testing.T) {
	e := setupEnforcer(t)
	assertAllowed(t, e, "parent", "list", "create", false)
	assertAllowed(t, e, "parent", "list", "mark_purchased", true)
	assertAllowed(t, e, "teacher", "list", "mark_purchased", false)
	assertAllowed(t, e, "admin", "list", "mark_purchased", false)
	assertAllowed(t, e, "admin", "list", "update", true)
	assertAllowed(t, e, "admin", "summary", "read", false)
	assertAllowed(t, e, "parent", "summary", "read", true)
}

func TestUnknownRole(t *testing.T) {
	e := setupEnforcer(t)
	assertAllowed(t, e, "", "list", "read", false)
	assertAllowed(t, e, "janitor", "list", "read", false)
}

func TestRoleInheritance(t *testing.T) {
	e := setupEnforcer(t)
	roles := e.RolesFor("admin")
	if len(roles) != 1 || roles[0] != "teacher" {
		t.Fatalf("expected admin to inherit teacher, got %v", roles)
	}
}

func TestMalformedPolicy(t *testing.T) {
	if _, err := NewEnforcerFromStrings(embeddedModel, "p, teacher, list"); err == nil {
		t.Fatalf("expected malformed policy to fail")
	}
}
