package perm

// Permission is a bitmask of capability flags. The zero value grants nothing.
type Permission uint32

// Capability flags composing role bitmasks.
//
// Follow and Comment deliberately share bit value 1. The upstream permission
// catalog assigned both capabilities the same bit, which makes them
// inseparable: a role that can follow can always comment and vice versa.
// The aliasing is kept as-is so that persisted bitmasks from existing
// deployments keep their meaning. Do not renumber without a data migration.
const (
	Follow   Permission = 0x01
	Comment  Permission = 0x01
	Write    Permission = 0x04
	Moderate Permission = 0x08
	Admin    Permission = 0x10
)

// allFlags lists every distinct flag once, in ascending bit order.
// Follow and Comment alias the same bit, so only one of them appears.
var allFlags = []Permission{Follow, Write, Moderate, Admin}

// Flags returns the distinct capability flags of the catalog in ascending
// bit order. Aliased flags appear once.
func Flags() []Permission {
	out := make([]Permission, len(allFlags))
	copy(out, allFlags)
	return out
}

// Has reports whether p contains every bit of flag.
func (p Permission) Has(flag Permission) bool {
	return p&flag == flag
}

// String renders the bitmask as a pipe-separated flag list, e.g.
// "follow|write". Unknown bits are ignored. The zero mask renders as "none".
func (p Permission) String() string {
	if p == 0 {
		return "none"
	}
	names := map[Permission]string{
		Follow:   "follow",
		Write:    "write",
		Moderate: "moderate",
		Admin:    "admin",
	}
	s := ""
	for _, f := range allFlags {
		if !p.Has(f) {
			continue
		}
		if s != "" {
			s += "|"
		}
		s += names[f]
	}
	if s == "" {
		return "none"
	}
	return s
}
