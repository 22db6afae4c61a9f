package perm

import "github.com/google/uuid"

// Principal is an authenticatable party making a request. Two variants exist:
// User for authenticated accounts and Anonymous for everyone else. The caller
// selects the variant based on session presence; capability checks never
// special-case anonymity internally.
type Principal interface {
	// Can reports whether the principal holds the capability.
	Can(flag Permission) bool

	// IsAdministrator is shorthand for Can(Admin).
	IsAdministrator() bool
}

// User is an authenticated principal. A user without a role denies every
// capability, same as Anonymous.
type User struct {
	ID        uuid.UUID
	Role      *Role
	Confirmed bool
}

func (u User) Can(flag Permission) bool {
	if u.Role == nil {
		return false
	}
	return u.Role.Has(flag)
}

func (u User) IsAdministrator() bool {
	return u.Can(Admin)
}

// Anonymous is the unauthenticated principal. It denies every capability,
// including administration.
type Anonymous struct{}

func (Anonymous) Can(Permission) bool   { return false }
func (Anonymous) IsAdministrator() bool { return false }
