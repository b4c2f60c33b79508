// Package policy decides whether an actor may perform an operation on a resource.
//
// Role gates come from the casbin enforcer in internal/authz. Ownership and
// visibility rules that depend on the resource's attributes are evaluated here.
// Every decision is synchronous and carries a stable reason string.
package policy

import (
	"fmt"

	"supplies-service/internal/authz"
	"supplies-service/internal/model"
)

// Kind is the kind of resource being accessed
type Kind string

const (
	KindUser     Kind = "user"
	KindCategory Kind = "category"
	KindLevel    Kind = "level"
	KindMaterial Kind = "material"
	KindTag      Kind = "tag"
	KindList     Kind = "list"
	KindSummary  Kind = "summary"
)

// Operation is what the actor wants to do
type Operation string

const (
	OpRead          Operation = "read"
	OpList          Operation = "list"
	OpCreate        Operation = "create"
	OpUpdate        Operation = "update"
	OpDelete        Operation = "delete"
	OpAddItem       Operation = "add_item"
	OpRemoveItem    Operation = "remove_item"
	OpMarkPurchased Operation = "mark_purchased"
	OpShare         Operation = "share"
	OpExport        Operation = "export"
	OpEmail         Operation = "email"
)

// Effect is the outcome of a decision
type Effect int

const (
	Allow Effect = iota
	Deny
	// Hide denies while reporting the resource as absent
	Hide
)

func (e Effect) String() string {
	switch e {
	case Allow:
		return "allow"
	case Hide:
		return "hide"
	default:
		return "deny"
	}
}

// Stable reasons returned with decisions
const (
	ReasonAllowed           = "allowed"
	ReasonUnauthenticated   = "authentication required"
	ReasonRoleDenied        = "your role does not allow this operation"
	ReasonListNotVisible    = "you do not have permission to view this list"
	ReasonListNotFound      = "list not found"
	ReasonNotOfficialPublic = "only official public lists can be marked as purchased"
	ReasonShareDenied       = "you do not have permission to share this list"
	ReasonNotSelf           = "you can only update your own profile"
	ReasonPolicyError       = "authorization check failed"
)

// Decision is the result of CanAccess
type Decision struct {
	Effect Effect
	Reason string
}

// Allowed reports whether the operation may proceed
func (d Decision) Allowed() bool { return d.Effect == Allow }

func allow() Decision              { return Decision{Effect: Allow, Reason: ReasonAllowed} }
func deny(reason string) Decision { return Decision{Effect: Deny, Reason: reason} }
func hide(reason string) Decision { return Decision{Effect: Hide, Reason: reason} }

// Actor is the caller. A zero Actor is anonymous.
type Actor struct {
	ID   string
	Role model.Role
}

// Authenticated reports whether the actor carries an identity
func (a Actor) Authenticated() bool { return a.ID != "" && a.Role != "" }

func (a Actor) staff() bool { return a.Role == model.RoleTeacher || a.Role == model.RoleAdmin }

// Resource describes the target. OwnerID is the list creator or, for users, the user itself.
type Resource struct {
	Kind     Kind
	OwnerID  string
	ListKind model.ListKind
	Public   bool
}

// ListResource describes a stored list
func ListResource(l *model.List) Resource {
	return Resource{Kind: KindList, OwnerID: l.OwnerID, ListKind: l.Kind, Public: l.Public}
}

func (r Resource) officialPublic() bool {
	return r.ListKind == model.ListKindOfficial && r.Public
}

// Policy evaluates access decisions
type Policy struct {
	gates *authz.Enforcer
}

// New creates a policy backed by the given role gates
func New(gates *authz.Enforcer) *Policy {
	return &Policy{gates: gates}
}

// CanAccess decides whether actor may perform op on res
func (p *Policy) CanAccess(actor Actor, res Resource, op Operation) Decision {
	if publicRead(res.Kind, op) {
		return allow()
	}
	if !actor.Authenticated() {
		return deny(ReasonUnauthenticated)
	}
	if res.Kind == KindUser && (op == OpRead || op == OpUpdate) {
		return selfService(actor, res, op)
	}

	ok, err := p.gates.Allowed(string(actor.Role), string(res.Kind), string(op))
	if err != nil {
		return deny(ReasonPolicyError)
	}
	if !ok {
		return deny(ReasonRoleDenied)
	}

	if res.Kind == KindList {
		return listRule(actor, res, op)
	}
	return allow()
}

// publicRead covers the catalog, which anyone may browse
func publicRead(kind Kind, op Operation) bool {
	if op != OpRead && op != OpList {
		return false
	}
	switch kind {
	case KindCategory, KindLevel, KindMaterial:
		return true
	}
	return false
}

func selfService(actor Actor, res Resource, op Operation) Decision {
	if op == OpRead {
		return allow()
	}
	if res.OwnerID == actor.ID {
		return allow()
	}
	return deny(ReasonNotSelf)
}

func listRule(actor Actor, res Resource, op Operation) Decision {
	owner := res.OwnerID == actor.ID

	switch op {
	case OpList, OpCreate:
		return allow()

	case OpRead:
		switch {
		case actor.Role == model.RoleAdmin:
			return allow()
		case actor.Role == model.RoleTeacher && owner:
			return allow()
		case actor.Role == model.RoleParent && res.officialPublic():
			return allow()
		}
		return deny(ReasonListNotVisible)

	case OpUpdate, OpDelete, OpAddItem, OpRemoveItem:
		// no admin bypass: a foreign list looks absent to everyone
		if actor.staff() && owner {
			return allow()
		}
		return hide(ReasonListNotFound)

	case OpMarkPurchased:
		if actor.Role == model.RoleParent && res.officialPublic() {
			return allow()
		}
		return deny(ReasonNotOfficialPublic)

	case OpShare, OpExport, OpEmail:
		switch {
		case actor.Role == model.RoleAdmin:
			return allow()
		case actor.staff() && owner:
			return allow()
		case actor.Role == model.RoleParent && res.officialPublic():
			return allow()
		}
		return deny(ReasonShareDenied)
	}

	return deny(ReasonRoleDenied)
}

// NewListKind derives the kind of a list from its creator's role
func NewListKind(role model.Role) model.ListKind {
	if role == model.RoleTeacher || role == model.RoleAdmin {
		return model.ListKindOfficial
	}
	return model.ListKindPersonal
}

// NewListPublic honors the requested public flag only for teacher and admin creators.
// Evaluated on its own, independent of NewListKind.
func NewListPublic(role model.Role, requested bool) bool {
	if role != model.RoleTeacher && role != model.RoleAdmin {
		return false
	}
	return requested
}

// Scope is the filter applied when listing lists
type Scope struct {
	// All is true when no filter applies
	All bool
	// OwnerID restricts to lists created by this user
	OwnerID string
	// OfficialPublic restricts to official lists marked public
	OfficialPublic bool
}

// ListScope returns which lists the actor sees in collection reads
func ListScope(actor Actor) Scope {
	switch actor.Role {
	case model.RoleAdmin:
		return Scope{All: true}
	case model.RoleTeacher:
		return Scope{OwnerID: actor.ID}
	default:
		return Scope{OfficialPublic: true}
	}
}

// TagRemoval is the outcome of deleting a tag
type TagRemoval struct {
	Deactivate bool
	References int64
	Message    string
}

// DecideTagRemoval soft-deletes tags still referenced by materials and removes the rest
func DecideTagRemoval(references int64) TagRemoval {
	if references > 0 {
		return TagRemoval{
			Deactivate: true,
			References: references,
			Message:    fmt.Sprintf("tag deactivated; it was used by %d material(s)", references),
		}
	}
	return TagRemoval{Message: "tag deleted"}
}
