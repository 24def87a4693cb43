package authz

import (
	"fmt"
	"strings"
)

// Permission is an identifier from the closed permission catalog. Values are
// defined at build time and never created at runtime. A permission ending in
// "*" is a grant-side wildcard; it is never valid as a requirement.
type Permission string

// Catalog of permissions.
const (
	PermUsersRead   Permission = "users:read"
	PermUsersWrite  Permission = "users:write"
	PermUsersDelete Permission = "users:delete"

	PermItemsRead  Permission = "items:read"
	PermItemsWrite Permission = "items:write"

	PermTenantRead  Permission = "tenant:read"
	PermTenantAdmin Permission = "tenant:admin"

	PermAdminDashboard Permission = "admin:dashboard"

	// PermUsersAll is a grant-only wildcard covering every users:* permission.
	PermUsersAll Permission = "users:*"
)

// ErrUnknownPermission indicates a value outside the closed catalog. Passing
// one to Parse is a programming error at the call site, not a denial reason.
var ErrUnknownPermission = fmt.Errorf("authz: unknown permission")

var catalog = map[Permission]struct{}{
	PermUsersRead:      {},
	PermUsersWrite:     {},
	PermUsersDelete:    {},
	PermItemsRead:      {},
	PermItemsWrite:     {},
	PermTenantRead:     {},
	PermTenantAdmin:    {},
	PermAdminDashboard: {},
}

// Parse validates a raw permission string against the catalog. Wildcards are
// rejected: a required permission is never a wildcard.
func Parse(raw string) (Permission, error) {
	p := Permission(strings.TrimSpace(raw))
	if _, ok := catalog[p]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPermission, raw)
	}
	return p, nil
}

// IsWildcard reports whether p is a grant-side wildcard.
func (p Permission) IsWildcard() bool {
	return strings.HasSuffix(string(p), "*")
}

// Matches reports whether a granted permission satisfies a required one.
// Exact equality always matches. A granted wildcard matches any requirement
// sharing its prefix. Matching is one-directional: the required side is never
// treated as a wildcard.
func Matches(granted, required Permission) bool {
	if granted == required {
		return true
	}
	if granted.IsWildcard() {
		return strings.HasPrefix(string(required), strings.TrimSuffix(string(granted), "*"))
	}
	return false
}

// All returns every requirable permission in the catalog.
func All() []Permission {
	perms := make([]Permission, 0, len(catalog))
	for p := range catalog {
		perms = append(perms, p)
	}
	return perms
}
