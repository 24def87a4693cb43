package authz

import "testing"

func intPtr(v int64) *int64 { return &v }

func TestResolveAdminAllowedEverywhere(t *testing.T) {
	r := NewResolver(DefaultBindings(), DefaultRegistry())
	admin := Principal{ID: 1, TenantID: 10, Roles: []string{"admin"}}
	tenant := &Tenant{ID: 10, Name: "Acme"}

	for _, perm := range []Permission{PermUsersDelete, PermItemsWrite, PermTenantAdmin} {
		d := r.Resolve(admin, perm, tenant, intPtr(99))
		if !d.Allowed {
			t.Fatalf("admin denied %s: reason=%s policy=%s", perm, d.Reason, d.Policy)
		}
		if d.Reason != ReasonPermissionGranted {
			t.Fatalf("expected permission_granted, got %s", d.Reason)
		}
	}

	// users:read carries the self-access policy, so the owner must be the
	// admin itself here.
	if d := r.Resolve(admin, PermUsersRead, tenant, intPtr(admin.ID)); !d.Allowed {
		t.Fatalf("admin denied own record: reason=%s policy=%s", d.Reason, d.Policy)
	}
}

func TestResolveSelfAccessHasNoRoleBypass(t *testing.T) {
	// Policies apply after RBAC: even an all-granting role cannot reach
	// another principal's record through a self-access-gated permission.
	r := NewResolver(DefaultBindings(), DefaultRegistry())
	admin := Principal{ID: 1, TenantID: 10, Roles: []string{"admin"}}

	d := r.Resolve(admin, PermUsersRead, &Tenant{ID: 10}, intPtr(99))
	if d.Allowed {
		t.Fatal("admin must not bypass self-access")
	}
	if d.Reason != ReasonPolicyDenied || d.Policy != "self_access" {
		t.Fatalf("expected policy_denied/self_access, got %s/%s", d.Reason, d.Policy)
	}
}

func TestResolveNoRoles(t *testing.T) {
	r := NewResolver(DefaultBindings(), DefaultRegistry())
	nobody := Principal{ID: 2, TenantID: 10}

	d := r.Resolve(nobody, PermUsersRead, &Tenant{ID: 10}, nil)
	if d.Allowed {
		t.Fatal("principal without roles must be denied")
	}
	if d.Reason != ReasonUserHasNoPermissions {
		t.Fatalf("expected user_has_no_permissions, got %s", d.Reason)
	}
}

func TestResolveUnknownRoleIgnored(t *testing.T) {
	r := NewResolver(DefaultBindings(), DefaultRegistry())
	p := Principal{ID: 2, TenantID: 10, Roles: []string{"ghost-role"}}

	d := r.Resolve(p, PermUsersRead, &Tenant{ID: 10}, nil)
	if d.Reason != ReasonUserHasNoPermissions {
		t.Fatalf("unknown role must resolve to empty grant set, got %s", d.Reason)
	}
}

func TestResolveMissingGrant(t *testing.T) {
	r := NewResolver(DefaultBindings(), DefaultRegistry())
	user := Principal{ID: 3, TenantID: 10, Roles: []string{"user"}}

	d := r.Resolve(user, PermUsersDelete, &Tenant{ID: 10}, nil)
	if d.Allowed {
		t.Fatal("user role must not delete users")
	}
	if d.Reason != ReasonPermissionDenied {
		t.Fatalf("expected permission_denied, got %s", d.Reason)
	}
}

func TestResolveUnregisteredPermissionDenies(t *testing.T) {
	// RBAC grants the permission but no policy list exists for it. That must
	// fail closed even for a grant-holding principal.
	bindings := Bindings{"ops": {Permission("reports:read")}}
	r := NewResolver(bindings, NewRegistry(nil))
	p := Principal{ID: 4, TenantID: 10, Roles: []string{"ops"}}

	d := r.Resolve(p, Permission("reports:read"), &Tenant{ID: 10}, nil)
	if d.Allowed {
		t.Fatal("unregistered permission must deny")
	}
	if d.Reason != ReasonPermissionNotRegistered {
		t.Fatalf("expected permission_not_registered, got %s", d.Reason)
	}
}

func TestResolveTenantRequired(t *testing.T) {
	r := NewResolver(DefaultBindings(), DefaultRegistry())
	user := Principal{ID: 5, TenantID: 10, Roles: []string{"user"}}

	d := r.Resolve(user, PermItemsRead, nil, nil)
	if d.Allowed {
		t.Fatal("policy-gated permission without tenant must deny")
	}
	if d.Reason != ReasonTenantRequired {
		t.Fatalf("expected tenant_required, got %s", d.Reason)
	}
}

func TestResolveGlobalPermissionWithoutTenant(t *testing.T) {
	// admin:dashboard has an empty policy list: RBAC only, valid with or
	// without tenant context.
	r := NewResolver(DefaultBindings(), DefaultRegistry())
	admin := Principal{ID: 6, TenantID: 10, Roles: []string{"admin"}}

	if d := r.Resolve(admin, PermAdminDashboard, nil, nil); !d.Allowed {
		t.Fatalf("admin dashboard without tenant denied: %s", d.Reason)
	}
	if d := r.Resolve(admin, PermAdminDashboard, &Tenant{ID: 99}, nil); !d.Allowed {
		t.Fatalf("admin dashboard with foreign tenant denied: %s", d.Reason)
	}
}

func TestResolveTenantIsolation(t *testing.T) {
	r := NewResolver(DefaultBindings(), DefaultRegistry())
	user := Principal{ID: 7, TenantID: 10, Roles: []string{"user"}}

	d := r.Resolve(user, PermItemsRead, &Tenant{ID: 11}, nil)
	if d.Allowed {
		t.Fatal("cross-tenant access must deny")
	}
	if d.Reason != ReasonPolicyDenied {
		t.Fatalf("expected policy_denied, got %s", d.Reason)
	}
	if d.Policy != "tenant_isolation" {
		t.Fatalf("expected tenant_isolation, got %s", d.Policy)
	}
}

func TestResolveSelfAccess(t *testing.T) {
	r := NewResolver(DefaultBindings(), DefaultRegistry())
	user := Principal{ID: 8, TenantID: 10, Roles: []string{"user"}}
	tenant := &Tenant{ID: 10}

	if d := r.Resolve(user, PermUsersRead, tenant, intPtr(8)); !d.Allowed {
		t.Fatalf("self read denied: %s %s", d.Reason, d.Policy)
	}

	d := r.Resolve(user, PermUsersRead, tenant, intPtr(9))
	if d.Allowed {
		t.Fatal("reading another user must deny")
	}
	if d.Policy != "self_access" {
		t.Fatalf("expected self_access, got %s", d.Policy)
	}

	// Absent owner is a deny, not a skip.
	if d := r.Resolve(user, PermUsersRead, tenant, nil); d.Allowed {
		t.Fatal("missing resource owner must deny")
	}
}

func TestResolveIsolationDeniesBeforeSelfAccess(t *testing.T) {
	// Cross-tenant self-lookup: both policies fail, the reported policy must
	// be the isolation one regardless of registration order.
	r := NewResolver(DefaultBindings(), NewRegistry(map[Permission][]Policy{
		PermUsersRead: {SelfAccessPolicy{}, TenantIsolationPolicy{}},
	}))
	user := Principal{ID: 9, TenantID: 10, Roles: []string{"user"}}

	d := r.Resolve(user, PermUsersRead, &Tenant{ID: 11}, intPtr(42))
	if d.Allowed {
		t.Fatal("cross-tenant access must deny")
	}
	if d.Policy != "tenant_isolation" {
		t.Fatalf("expected tenant_isolation to report first, got %s", d.Policy)
	}
}

func TestResolveWildcardGrant(t *testing.T) {
	r := NewResolver(DefaultBindings(), DefaultRegistry())
	support := Principal{ID: 11, TenantID: 10, Roles: []string{"support"}}
	tenant := &Tenant{ID: 10}

	if d := r.Resolve(support, PermUsersDelete, tenant, nil); !d.Allowed {
		t.Fatalf("users:* must cover users:delete, got %s %s", d.Reason, d.Policy)
	}
	if d := r.Resolve(support, PermItemsRead, tenant, nil); d.Allowed {
		t.Fatal("users:* must not cover items:read")
	}
}

func TestResolveDeterministic(t *testing.T) {
	r := NewResolver(DefaultBindings(), DefaultRegistry())
	user := Principal{ID: 12, TenantID: 10, Roles: []string{"user", "support"}}
	tenant := &Tenant{ID: 11}

	first := r.Resolve(user, PermUsersWrite, tenant, intPtr(5))
	for i := 0; i < 50; i++ {
		if got := r.Resolve(user, PermUsersWrite, tenant, intPtr(5)); got != first {
			t.Fatalf("resolution not deterministic: %+v vs %+v", got, first)
		}
	}
}
