// Package perm implements bitmask-based role permissions for the blogging
// platform.
//
// A Permission is a single capability bit; a Role bundles permissions under a
// unique name. Checks are pure integer operations that never fail: a role
// either holds a bit or it does not. Persistence is the caller's concern -
// the package only mutates in-memory Role values and offers an idempotent
// Seed helper that drives any RoleStore implementation.
//
// # Usage
//
//	role := perm.Role{Name: "User"}
//	role.Add(perm.Follow, perm.Comment, perm.Write)
//
//	if role.Has(perm.Write) {
//	    // allow publishing
//	}
//
// Authorization decisions for request handling go through the Principal
// interface, which has two variants: an authenticated User carrying a Role,
// and Anonymous, which denies every capability including administration.
//
// # Known catalog defect
//
// Follow and Comment share bit value 1, inherited from the upstream catalog.
// The two capabilities are therefore indistinguishable in a bitmask: granting
// one grants both. This is preserved for compatibility rather than silently
// corrected; see the flag constants for details.
package perm
