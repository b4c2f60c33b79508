package model

import (
	"fmt"
	"regexp"
	"strings"
)

// Role is the authorization role of a user
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleParent  Role = "parent"
)

// ParseRole accepts the three known roles, case-insensitively
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleTeacher, RoleParent:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// ListKind tells official lists (teacher/admin authored) from personal ones
type ListKind string

const (
	ListKindOfficial ListKind = "official"
	ListKindPersonal ListKind = "personal"
)

// ListStatus tracks purchase progress of a list
type ListStatus string

const (
	ListStatusPending    ListStatus = "pending"
	ListStatusInProgress ListStatus = "in_progress"
	ListStatusCompleted  ListStatus = "completed"
)

// StatusForProgress maps a purchase percentage to a list status
func StatusForProgress(percent int) ListStatus {
	switch {
	case percent <= 0:
		return ListStatusPending
	case percent >= 100:
		return ListStatusCompleted
	default:
		return ListStatusInProgress
	}
}

var tagColorPattern = regexp.MustCompile(`^#([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// ValidTagColor reports whether s is a 3 or 6 digit hex color
func ValidTagColor(s string) bool {
	return tagColorPattern.MatchString(s)
}

// NameKey normalizes a name for case-insensitive uniqueness
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
