package perm

// Role is a named bundle of permission flags assigned to users.
// Exactly one role in a deployment should be the default, applied to
// newly registered accounts.
type Role struct {
	Name        string
	Default     bool
	Permissions Permission
}

// Has reports whether the role holds the given flag.
func (r *Role) Has(flag Permission) bool {
	return r.Permissions.Has(flag)
}

// Add grants the given flags. Granting an already-held flag is a no-op.
func (r *Role) Add(flags ...Permission) {
	for _, f := range flags {
		r.Permissions |= f
	}
}

// Remove revokes the given flags. Revoking an absent flag is a no-op.
// Note that revoking an aliased flag revokes its alias too.
func (r *Role) Remove(flags ...Permission) {
	for _, f := range flags {
		r.Permissions &^= f
	}
}

// Reset clears all permissions.
func (r *Role) Reset() {
	r.Permissions = 0
}
