package perm_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/blogkit/pkg/perm"
)

func TestSeed_DefaultCatalog(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store := perm.NewMemoryRoleStore()
	source := perm.NewInMemCatalogSource(perm.DefaultCatalog())

	require.NoError(t, perm.Seed(ctx, store, source))

	user, ok, err := store.FindRole(ctx, "User")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, user.Default)
	assert.Equal(t, perm.Follow|perm.Comment|perm.Write, user.Permissions)

	moderator, ok, err := store.FindRole(ctx, "Moderator")
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, moderator.Default)
	assert.Equal(t, perm.Follow|perm.Comment|perm.Write|perm.Moderate, moderator.Permissions)

	admin, ok, err := store.FindRole(ctx, "Administrator")
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, admin.Default)
	assert.Equal(t, perm.Follow|perm.Comment|perm.Write|perm.Moderate|perm.Admin, admin.Permissions)
	assert.True(t, admin.Has(perm.Admin))
}

func TestSeed_Idempotent(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store := perm.NewMemoryRoleStore()
	source := perm.NewInMemCatalogSource(perm.DefaultCatalog())

	require.NoError(t, perm.Seed(ctx, store, source))
	first := store.Roles()

	require.NoError(t, perm.Seed(ctx, store, source))
	second := store.Roles()

	assert.Len(t, second, 3, "re-seeding must not duplicate roles")
	assert.ElementsMatch(t, first, second)

	defaults := 0
	for _, r := range second {
		if r.Default {
			defaults++
			assert.Equal(t, "User", r.Name)
		}
	}
	assert.Equal(t, 1, defaults, "exactly one default role")
}

func TestSeed_ReconcilesDriftedRole(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store := perm.NewMemoryRoleStore()

	// Pre-existing role with drifted bits and a stray default flag.
	drifted := perm.Role{Name: "Moderator", Default: true}
	drifted.Add(perm.Admin)
	require.NoError(t, store.SaveRole(ctx, drifted))

	require.NoError(t, perm.Seed(ctx, store, perm.NewInMemCatalogSource(perm.DefaultCatalog())))

	moderator, ok, err := store.FindRole(ctx, "Moderator")
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, moderator.Default)
	assert.False(t, moderator.Has(perm.Admin))
	assert.Equal(t, perm.Follow|perm.Comment|perm.Write|perm.Moderate, moderator.Permissions)
}

// singleDefaultStore rejects a save that would produce two default roles at
// once, mirroring the database's partial unique index on the default flag.
type singleDefaultStore struct {
	*perm.MemoryRoleStore
}

func (s *singleDefaultStore) SaveRole(ctx context.Context, role perm.Role) error {
	if role.Default {
		for _, r := range s.Roles() {
			if r.Default && r.Name != role.Name {
				return fmt.Errorf("two default roles: %s and %s", r.Name, role.Name)
			}
		}
	}
	return s.MemoryRoleStore.SaveRole(ctx, role)
}

func TestSeed_ChangedDefaultRole(t *testing.T) {
	t.Parallel()

	ctx := t.Context()
	store := &singleDefaultStore{perm.NewMemoryRoleStore()}

	require.NoError(t, perm.Seed(ctx, store, perm.NewInMemCatalogSource(perm.DefaultCatalog())))

	moved := perm.DefaultCatalog()
	moved.DefaultRole = "Moderator"
	require.NoError(t, perm.Seed(ctx, store, perm.NewInMemCatalogSource(moved)),
		"moving the default must clear the old flag before setting the new one")

	defaults := 0
	for _, r := range store.Roles() {
		if r.Default {
			defaults++
			assert.Equal(t, "Moderator", r.Name)
		}
	}
	assert.Equal(t, 1, defaults, "exactly one default role after the move")

	user, ok, err := store.FindRole(ctx, "User")
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, user.Default)
}

func TestCatalog_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		catalog perm.Catalog
		wantErr error
	}{
		{
			name:    "valid",
			catalog: perm.DefaultCatalog(),
			wantErr: nil,
		},
		{
			name:    "empty",
			catalog: perm.Catalog{},
			wantErr: perm.ErrEmptyCatalog,
		},
		{
			name: "no default",
			catalog: perm.Catalog{
				Roles: map[string][]perm.Permission{"User": {perm.Follow}},
			},
			wantErr: perm.ErrNoDefaultRole,
		},
		{
			name: "default not in roles",
			catalog: perm.Catalog{
				Roles:       map[string][]perm.Permission{"User": {perm.Follow}},
				DefaultRole: "Ghost",
			},
			wantErr: perm.ErrNoDefaultRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.catalog.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFileCatalogSource(t *testing.T) {
	t.Parallel()

	write := func(t *testing.T, body string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "roles.yaml")
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
		return path
	}

	t.Run("valid file", func(t *testing.T) {
		t.Parallel()

		path := write(t, `
default: User
roles:
  User: [follow, comment, write]
  Moderator: [follow, comment, write, moderate]
  Administrator: [follow, comment, write, moderate, admin]
`)
		catalog, err := perm.NewFileCatalogSource(path).Load(t.Context())
		require.NoError(t, err)
		assert.Equal(t, "User", catalog.DefaultRole)
		assert.Len(t, catalog.Roles, 3)

		store := perm.NewMemoryRoleStore()
		require.NoError(t, perm.Seed(t.Context(), store, perm.NewFileCatalogSource(path)))
		admin, ok, err := store.FindRole(t.Context(), "Administrator")
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, admin.Has(perm.Admin))
	})

	t.Run("unknown flag", func(t *testing.T) {
		t.Parallel()

		path := write(t, `
default: User
roles:
  User: [follow, teleport]
`)
		_, err := perm.NewFileCatalogSource(path).Load(t.Context())
		assert.ErrorIs(t, err, perm.ErrUnknownFlag)
	})

	t.Run("missing default", func(t *testing.T) {
		t.Parallel()

		path := write(t, `
roles:
  User: [follow]
`)
		_, err := perm.NewFileCatalogSource(path).Load(t.Context())
		assert.ErrorIs(t, err, perm.ErrNoDefaultRole)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := perm.NewFileCatalogSource(filepath.Join(t.TempDir(), "nope.yaml")).Load(t.Context())
		assert.Error(t, err)
	})
}
