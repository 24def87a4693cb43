package authz

import "sort"

// Policy is a pure contextual predicate gating a permission beyond role
// membership. Implementations never perform I/O and never panic; anything
// they cannot positively allow is a deny.
type Policy interface {
	Name() string
	Allows(p Principal, tenant *Tenant, resourceOwnerID *int64) bool
}

// TenantIsolationPolicy allows access only within the principal's own tenant.
type TenantIsolationPolicy struct{}

// Name identifies the policy in decisions and audit entries.
func (TenantIsolationPolicy) Name() string { return "tenant_isolation" }

// Allows is true iff a tenant is present and matches the principal's tenant.
func (TenantIsolationPolicy) Allows(p Principal, tenant *Tenant, _ *int64) bool {
	return tenant != nil && p.TenantID == tenant.ID
}

// SelfAccessPolicy allows a principal to target only itself.
type SelfAccessPolicy struct{}

// Name identifies the policy in decisions and audit entries.
func (SelfAccessPolicy) Name() string { return "self_access" }

// Allows is true iff a resource owner is present and equals the principal.
func (SelfAccessPolicy) Allows(p Principal, _ *Tenant, resourceOwnerID *int64) bool {
	return resourceOwnerID != nil && p.ID == *resourceOwnerID
}

// Registry maps each permission to its ordered policy list. A permission
// absent from the registry is a configuration error and always denies. A
// permission present with an empty list is a deliberate global permission:
// RBAC only, no contextual policies.
type Registry map[Permission][]Policy

// NewRegistry builds a registry from the given entries, normalising every
// policy list into precedence order.
func NewRegistry(entries map[Permission][]Policy) Registry {
	reg := make(Registry, len(entries))
	for perm, policies := range entries {
		ordered := make([]Policy, len(policies))
		copy(ordered, policies)
		sortPolicies(ordered)
		reg[perm] = ordered
	}
	return reg
}

// DefaultRegistry returns the production permission -> policy mapping.
func DefaultRegistry() Registry {
	return NewRegistry(map[Permission][]Policy{
		PermUsersRead:   {TenantIsolationPolicy{}, SelfAccessPolicy{}},
		PermUsersWrite:  {TenantIsolationPolicy{}, SelfAccessPolicy{}},
		PermUsersDelete: {TenantIsolationPolicy{}},
		PermItemsRead:   {TenantIsolationPolicy{}},
		PermItemsWrite:  {TenantIsolationPolicy{}},
		PermTenantRead:  {TenantIsolationPolicy{}},
		PermTenantAdmin: {TenantIsolationPolicy{}},

		// Global permission: any principal holding a matching grant may use
		// it, with or without tenant context.
		PermAdminDashboard: {},
	})
}

// Unregistered returns every catalog permission the registry has no entry
// for, sorted. Such permissions always deny; surfacing the gap at startup
// beats discovering it request by request.
func (r Registry) Unregistered() []Permission {
	var missing []Permission
	for _, p := range All() {
		if _, ok := r[p]; !ok {
			missing = append(missing, p)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing
}

// sortPolicies places tenant isolation ahead of everything else, keeping the
// registration order otherwise. Isolation must short-circuit before any
// ownership check can leak information about foreign-tenant resources.
func sortPolicies(policies []Policy) {
	sort.SliceStable(policies, func(i, j int) bool {
		return isIsolation(policies[i]) && !isIsolation(policies[j])
	})
}

func isIsolation(p Policy) bool {
	_, ok := p.(TenantIsolationPolicy)
	return ok
}
