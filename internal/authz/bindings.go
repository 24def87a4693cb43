package authz

// Bindings maps a role name to the set of permissions it grants. Bindings are
// built once at startup and never mutated afterwards; changing them means
// redeploying the process.
type Bindings map[string][]Permission

// DefaultBindings returns the production role -> permission mapping.
func DefaultBindings() Bindings {
	return Bindings{
		"admin": {
			PermUsersRead,
			PermUsersWrite,
			PermUsersDelete,
			PermItemsRead,
			PermItemsWrite,
			PermTenantRead,
			PermTenantAdmin,
			PermAdminDashboard,
		},
		"user": {
			PermUsersRead,
			PermItemsRead,
			PermItemsWrite,
		},
		"support": {
			PermUsersAll,
			PermTenantRead,
		},
	}
}

// PermissionsFor unions the grants of every named role. Unknown role names
// contribute nothing; a stale role reference must not mask a genuine
// "no permissions" denial, so it is silently ignored rather than an error.
func (b Bindings) PermissionsFor(roles []string) map[Permission]struct{} {
	granted := make(map[Permission]struct{})
	for _, role := range roles {
		for _, p := range b[role] {
			granted[p] = struct{}{}
		}
	}
	return granted
}
