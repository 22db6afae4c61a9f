package perm

import "errors"

// Domain errors for catalog loading and role seeding.
var (
	// ErrEmptyCatalog is returned when a catalog source yields no roles.
	ErrEmptyCatalog = errors.New("perm.empty_catalog")

	// ErrNoDefaultRole is returned when a catalog names no default role.
	ErrNoDefaultRole = errors.New("perm.no_default_role")

	// ErrMultipleDefaultRoles is returned when a catalog names more than one
	// default role.
	ErrMultipleDefaultRoles = errors.New("perm.multiple_default_roles")

	// ErrUnknownFlag is returned when a catalog source references a flag name
	// outside the fixed capability set.
	ErrUnknownFlag = errors.New("perm.unknown_flag")
)
