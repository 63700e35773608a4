package auth

import (
	"slices"

	"github.com/jrsteele09/go-notes-server/users"
)

type PrincipalKind int

const (
	Anonymous PrincipalKind = iota
	Persisted               // a stored user
	Ephemeral               // built from a signup token, never stored
)

// Principal is the actor behind one request. It is built once per request
// and never changed afterwards.
type Principal struct {
	Kind        PrincipalKind
	ID          string // empty unless Persisted
	Username    string
	Email       string
	Phone       string
	Active      bool
	Staff       bool
	Superuser   bool
	Permissions []string
	Rnd         int64

	user *users.User
}

func AnonymousPrincipal() *Principal {
	return &Principal{Kind: Anonymous}
}

func PersistedPrincipal(u *users.User) *Principal {
	return &Principal{
		Kind:        Persisted,
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Phone:       u.Phone,
		Active:      u.Active,
		Staff:       u.Staff,
		Superuser:   u.Superuser,
		Permissions: slices.Clone(u.Permissions),
		Rnd:         u.Rnd(),
		user:        u,
	}
}

// EphemeralPrincipal carries the profile of a signup token.
func EphemeralPrincipal(username, email, phone string) *Principal {
	return &Principal{
		Kind:     Ephemeral,
		Username: username,
		Email:    email,
		Phone:    phone,
		Active:   true,
	}
}

func (p *Principal) IsAuthenticated() bool {
	return p != nil && p.Kind != Anonymous
}

func (p *Principal) IsPersisted() bool {
	return p != nil && p.Kind == Persisted
}

// User returns a copy of the stored user, or nil for anonymous and ephemeral principals.
func (p *Principal) User() *users.User {
	if !p.IsPersisted() || p.user == nil {
		return nil
	}
	return p.user.Clone()
}

// HasPerm reports whether the principal holds perm. Active superusers hold every permission.
func (p *Principal) HasPerm(perm string) bool {
	if p == nil || !p.Active {
		return false
	}
	return p.Superuser || slices.Contains(p.Permissions, perm)
}
