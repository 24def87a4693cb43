package authz

// Decision is the immutable outcome of one authorization attempt.
type Decision struct {
	Allowed bool
	Reason  Reason
	// Policy names the denying policy when Reason is ReasonPolicyDenied.
	Policy string
}

// Resolver combines role aggregation, permission matching and ordered policy
// evaluation into a single deny-by-default decision. It holds only immutable
// state and performs no I/O, so a single instance is safe for unlimited
// concurrent use.
type Resolver struct {
	bindings Bindings
	registry Registry
}

// NewResolver constructs a Resolver over the given bindings and registry.
func NewResolver(bindings Bindings, registry Registry) *Resolver {
	return &Resolver{bindings: bindings, registry: registry}
}

// Resolve decides whether the principal may exercise the required permission
// in the given tenant/resource context. Every exit path carries a reason;
// identical inputs always produce identical output.
func (r *Resolver) Resolve(p Principal, required Permission, tenant *Tenant, resourceOwnerID *int64) Decision {
	granted := r.bindings.PermissionsFor(p.Roles)
	if len(granted) == 0 {
		return Decision{Reason: ReasonUserHasNoPermissions}
	}

	matched := false
	for g := range granted {
		if Matches(g, required) {
			matched = true
			break
		}
	}
	if !matched {
		return Decision{Reason: ReasonPermissionDenied}
	}

	// Fail closed on misconfiguration: a permission nobody registered must
	// never default to allow.
	policies, registered := r.registry[required]
	if !registered {
		return Decision{Reason: ReasonPermissionNotRegistered}
	}

	if len(policies) > 0 && tenant == nil {
		return Decision{Reason: ReasonTenantRequired}
	}

	for _, policy := range policies {
		if !policy.Allows(p, tenant, resourceOwnerID) {
			return Decision{Reason: ReasonPolicyDenied, Policy: policy.Name()}
		}
	}

	return Decision{Allowed: true, Reason: ReasonPermissionGranted}
}
