package perm

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Catalog maps role names to the permission flags they are granted during
// seeding. The DefaultRole receives new accounts.
type Catalog struct {
	Roles       map[string][]Permission
	DefaultRole string
}

// DefaultCatalog returns the fixed role catalog of the platform:
//
//	User          follow|comment|write (default role)
//	Moderator     User + moderate
//	Administrator Moderator + admin
func DefaultCatalog() Catalog {
	return Catalog{
		Roles: map[string][]Permission{
			"User":          {Follow, Comment, Write},
			"Moderator":     {Follow, Comment, Write, Moderate},
			"Administrator": {Follow, Comment, Write, Moderate, Admin},
		},
		DefaultRole: "User",
	}
}

// Validate checks catalog consistency: at least one role, and the default
// role present in the role map.
func (c Catalog) Validate() error {
	if len(c.Roles) == 0 {
		return ErrEmptyCatalog
	}
	if c.DefaultRole == "" {
		return ErrNoDefaultRole
	}
	if _, ok := c.Roles[c.DefaultRole]; !ok {
		return fmt.Errorf("%w: %q not in catalog", ErrNoDefaultRole, c.DefaultRole)
	}
	return nil
}

// CatalogSource provides the role catalog used for seeding. Implementations
// must be safe for concurrent use.
type CatalogSource interface {
	// Load returns the catalog.
	Load(ctx context.Context) (Catalog, error)
}

// inMemCatalogSource serves a catalog from memory with defensive copies.
type inMemCatalogSource struct {
	mu      sync.RWMutex
	catalog Catalog
}

// NewInMemCatalogSource creates a CatalogSource serving a copy of the given
// catalog, so later mutations of the input do not leak into seeding.
func NewInMemCatalogSource(c Catalog) CatalogSource {
	roles := make(map[string][]Permission, len(c.Roles))
	for name, flags := range c.Roles {
		cp := make([]Permission, len(flags))
		copy(cp, flags)
		roles[name] = cp
	}
	return &inMemCatalogSource{catalog: Catalog{Roles: roles, DefaultRole: c.DefaultRole}}
}

func (s *inMemCatalogSource) Load(ctx context.Context) (Catalog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if err := s.catalog.Validate(); err != nil {
		return Catalog{}, err
	}
	return s.catalog, nil
}

// catalogFile is the YAML document shape accepted by NewFileCatalogSource:
//
//	default: User
//	roles:
//	  User: [follow, comment, write]
//	  Moderator: [follow, comment, write, moderate]
type catalogFile struct {
	Default string              `yaml:"default"`
	Roles   map[string][]string `yaml:"roles"`
}

// flagsByName resolves the YAML flag spelling to capability bits.
var flagsByName = map[string]Permission{
	"follow":   Follow,
	"comment":  Comment,
	"write":    Write,
	"moderate": Moderate,
	"admin":    Admin,
}

// fileCatalogSource loads the catalog from a YAML file on every call, so a
// re-seed picks up edits without a process restart.
type fileCatalogSource struct {
	path string
}

// NewFileCatalogSource creates a CatalogSource reading a YAML role catalog
// from the given path. The file is parsed on each Load.
func NewFileCatalogSource(path string) CatalogSource {
	return &fileCatalogSource{path: path}
}

func (s *fileCatalogSource) Load(ctx context.Context) (Catalog, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return Catalog{}, err
	}

	var doc catalogFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Catalog{}, err
	}

	catalog := Catalog{
		Roles:       make(map[string][]Permission, len(doc.Roles)),
		DefaultRole: doc.Default,
	}
	for name, flagNames := range doc.Roles {
		flags := make([]Permission, 0, len(flagNames))
		for _, fn := range flagNames {
			flag, ok := flagsByName[fn]
			if !ok {
				return Catalog{}, fmt.Errorf("%w: %q in role %q", ErrUnknownFlag, fn, name)
			}
			flags = append(flags, flag)
		}
		catalog.Roles[name] = flags
	}

	if err := catalog.Validate(); err != nil {
		return Catalog{}, err
	}
	return catalog, nil
}
