package perm

import "context"

// RoleStore is the persistence surface Seed drives. Implementations live with
// the application's storage layer; an in-memory version is provided for tests
// and single-process setups.
type RoleStore interface {
	// FindRole returns the named role, or ok=false if absent.
	FindRole(ctx context.Context, name string) (Role, bool, error)

	// SaveRole inserts or updates a role keyed by its name.
	SaveRole(ctx context.Context, role Role) error
}

// Seed reconciles the store with the catalog: each catalog role is found or
// created, its permissions reset and re-granted from the catalog list, and
// the default flag set on exactly the catalog's default role.
//
// Seed is idempotent - running it any number of times converges to the same
// roles, bitmasks, and single default, and never duplicates a role.
//
// Non-default roles are saved before the default. When a re-seed moves the
// default to another role, this clears the previous default's flag first, so
// stores enforcing a single default row never observe two at once.
func Seed(ctx context.Context, store RoleStore, source CatalogSource) error {
	catalog, err := source.Load(ctx)
	if err != nil {
		return err
	}
	if err := catalog.Validate(); err != nil {
		return err
	}

	for name, flags := range catalog.Roles {
		if name == catalog.DefaultRole {
			continue
		}
		if err := seedRole(ctx, store, name, flags, false); err != nil {
			return err
		}
	}

	return seedRole(ctx, store, catalog.DefaultRole, catalog.Roles[catalog.DefaultRole], true)
}

func seedRole(ctx context.Context, store RoleStore, name string, flags []Permission, isDefault bool) error {
	role, ok, err := store.FindRole(ctx, name)
	if err != nil {
		return err
	}
	if !ok {
		role = Role{Name: name}
	}

	role.Reset()
	role.Add(flags...)
	role.Default = isDefault

	return store.SaveRole(ctx, role)
}

// MemoryRoleStore is a RoleStore backed by a map. Suitable for tests and
// processes that do not persist roles.
type MemoryRoleStore struct {
	roles map[string]Role
}

// NewMemoryRoleStore creates an empty in-memory role store.
func NewMemoryRoleStore() *MemoryRoleStore {
	return &MemoryRoleStore{roles: make(map[string]Role)}
}

func (s *MemoryRoleStore) FindRole(ctx context.Context, name string) (Role, bool, error) {
	role, ok := s.roles[name]
	return role, ok, nil
}

func (s *MemoryRoleStore) SaveRole(ctx context.Context, role Role) error {
	s.roles[role.Name] = role
	return nil
}

// Roles returns a snapshot of all stored roles.
func (s *MemoryRoleStore) Roles() []Role {
	out := make([]Role, 0, len(s.roles))
	for _, r := range s.roles {
		out = append(out, r)
	}
	return out
}
