package domain

import (
	"slices"
	"strings"
)

// Permission is a capability tag drawn from a fixed vocabulary.
type Permission string

const (
	PermissionAdmin            Permission = "ADMIN"
	PermissionUser             Permission = "USER"
	PermissionItemCreate       Permission = "ITEMCREATE"
	PermissionItemUpdate       Permission = "ITEMUPDATE"
	PermissionItemDelete       Permission = "ITEMDELETE"
	PermissionPermissionUpdate Permission = "PERMISSIONUPDATE"
	PermissionPermissionDelete Permission = "PERMISSIONDELETE"
)

// AllPermissions lists the vocabulary in display order.
var AllPermissions = []Permission{
	PermissionAdmin,
	PermissionUser,
	PermissionItemCreate,
	PermissionItemUpdate,
	PermissionItemDelete,
	PermissionPermissionUpdate,
	PermissionPermissionDelete,
}

// Valid reports whether p is part of the vocabulary.
func (p Permission) Valid() bool {
	return slices.Contains(AllPermissions, p)
}

// Permissions is a set of permissions held by a user.
type Permissions []Permission

// Has reports whether p is in the set.
func (ps Permissions) Has(p Permission) bool {
	return slices.Contains(ps, p)
}

// Intersects reports whether the set shares at least one permission with required.
func (ps Permissions) Intersects(required ...Permission) bool {
	for _, r := range required {
		if ps.Has(r) {
			return true
		}
	}
	return false
}

// Strings returns the permissions as plain strings.
func (ps Permissions) Strings() []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = string(p)
	}
	return out
}

// Encode joins the set with spaces for storage.
func (ps Permissions) Encode() string {
	return strings.Join(ps.Strings(), " ")
}

// DecodePermissions parses the space-delimited storage form.
func DecodePermissions(s string) Permissions {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return Permissions{}
	}
	out := make(Permissions, len(fields))
	for i, f := range fields {
		out[i] = Permission(f)
	}
	return out
}

// ParsePermissions validates raw values against the vocabulary and collapses
// duplicates, keeping vocabulary order. It returns the first unknown value.
func ParsePermissions(raw []string) (Permissions, string, bool) {
	seen := make(map[Permission]bool, len(raw))
	for _, r := range raw {
		p := Permission(strings.ToUpper(strings.TrimSpace(r)))
		if !p.Valid() {
			return nil, r, false
		}
		seen[p] = true
	}

	out := make(Permissions, 0, len(seen))
	for _, p := range AllPermissions {
		if seen[p] {
			out = append(out, p)
		}
	}
	return out, "", true
}
