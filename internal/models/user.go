package models

import (
	"fmt"
	"strings"
	"time"
)

// Role is the closed set of principals known to the submission service.
//
// Authorization code switches on Role exhaustively; an unrecognized role is an
// explicit denial, never a silent fall-through.
type Role string

const (
	// RoleArtist submits releases and may only see or change its own.
	RoleArtist Role = "artist"
	// RoleLabelManager reviews submissions with full visibility and approval authority.
	RoleLabelManager Role = "label_manager"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleArtist, RoleLabelManager:
		return true
	default:
		return false
	}
}

// ParseRole converts a stored or user-supplied role string into a Role.
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleArtist:
		return RoleArtist, nil
	case RoleLabelManager:
		return RoleLabelManager, nil
	default:
		return "", fmt.Errorf("unknown role: %q", s)
	}
}

// User is an authenticated principal issued by the identity layer.
//
// Users are immutable once issued apart from display name and bookkeeping
// timestamps; in particular the role never changes.
type User struct {
	id          string
	sequence    int
	email       string
	displayName string
	role        Role
	apiToken    string
	createdAt   time.Time
	updatedAt   time.Time
	deletedAt   *time.Time
}

// NewUser creates a User with the given sequence, email, display name and role.
func NewUser(sequence int, email, displayName string, role Role) *User {
	now := time.Now()
	return &User{
		sequence:    sequence,
		email:       email,
		displayName: displayName,
		role:        role,
		createdAt:   now,
		updatedAt:   now,
	}
}

func (u *User) ID() string            { return u.id }
func (u *User) SetID(id string)       { u.id = id }
func (u *User) Sequence() int         { return u.sequence }
func (u *User) Email() string         { return u.email }
func (u *User) DisplayName() string   { return u.displayName }
func (u *User) Role() Role            { return u.role }
func (u *User) APIToken() string      { return u.apiToken }
func (u *User) SetAPIToken(t string)  { u.apiToken = t }
func (u *User) CreatedAt() time.Time  { return u.createdAt }
func (u *User) UpdatedAt() time.Time  { return u.updatedAt }
func (u *User) DeletedAt() *time.Time { return u.deletedAt }

func (u *User) SetDisplayName(name string) { u.displayName = name }
func (u *User) SetCreatedAt(t time.Time)   { u.createdAt = t }
func (u *User) SetUpdatedAt(t time.Time)   { u.updatedAt = t }
func (u *User) SetDeletedAt(t *time.Time)  { u.deletedAt = t }

// Validate checks required fields and role membership.
func (u *User) Validate() error {
	if u.email == "" {
		return fmt.Errorf("user email is required")
	}
	if u.displayName == "" {
		return fmt.Errorf("user display name is required")
	}
	if !u.role.Valid() {
		return fmt.Errorf("invalid role: %q", u.role)
	}
	return nil
}
