package authz

import "testing"

type spyPolicy struct {
	name  string
	calls *[]string
	allow bool
}

func (p spyPolicy) Name() string { return p.name }

func (p spyPolicy) Allows(Principal, *Tenant, *int64) bool {
	*p.calls = append(*p.calls, p.name)
	return p.allow
}

func TestNewRegistryOrdersIsolationFirst(t *testing.T) {
	var calls []string
	reg := NewRegistry(map[Permission][]Policy{
		PermUsersRead: {
			spyPolicy{name: "first", calls: &calls, allow: true},
			TenantIsolationPolicy{},
			spyPolicy{name: "second", calls: &calls, allow: true},
		},
	})

	policies := reg[PermUsersRead]
	if len(policies) != 3 {
		t.Fatalf("expected 3 policies, got %d", len(policies))
	}
	if policies[0].Name() != "tenant_isolation" {
		t.Fatalf("isolation must sort first, got %s", policies[0].Name())
	}
	// Stable: remaining policies keep registration order.
	if policies[1].Name() != "first" || policies[2].Name() != "second" {
		t.Fatalf("non-isolation order changed: %s, %s", policies[1].Name(), policies[2].Name())
	}
}

func TestResolveStopsAtFirstDenyingPolicy(t *testing.T) {
	var calls []string
	bindings := Bindings{"r": {PermItemsRead}}
	reg := NewRegistry(map[Permission][]Policy{
		PermItemsRead: {
			spyPolicy{name: "gate", calls: &calls, allow: false},
			spyPolicy{name: "never", calls: &calls, allow: true},
		},
	})
	r := NewResolver(bindings, reg)

	d := r.Resolve(Principal{ID: 1, TenantID: 1, Roles: []string{"r"}}, PermItemsRead, &Tenant{ID: 1}, nil)
	if d.Allowed || d.Policy != "gate" {
		t.Fatalf("expected deny by gate, got %+v", d)
	}
	if len(calls) != 1 || calls[0] != "gate" {
		t.Fatalf("evaluation must stop at first deny, calls=%v", calls)
	}
}

func TestRegistryUnregistered(t *testing.T) {
	if missing := DefaultRegistry().Unregistered(); len(missing) != 0 {
		t.Fatalf("default registry must cover the whole catalog, missing %v", missing)
	}

	reg := DefaultRegistry()
	delete(reg, PermItemsWrite)
	delete(reg, PermAdminDashboard)
	missing := reg.Unregistered()
	if len(missing) != 2 || missing[0] != PermAdminDashboard || missing[1] != PermItemsWrite {
		t.Fatalf("expected sorted [admin:dashboard items:write], got %v", missing)
	}
}

func TestTenantIsolationPolicy(t *testing.T) {
	p := Principal{ID: 1, TenantID: 7}
	pol := TenantIsolationPolicy{}
	if !pol.Allows(p, &Tenant{ID: 7}, nil) {
		t.Fatal("own tenant must be allowed")
	}
	if pol.Allows(p, &Tenant{ID: 8}, nil) {
		t.Fatal("foreign tenant must be denied")
	}
	if pol.Allows(p, nil, nil) {
		t.Fatal("missing tenant must be denied")
	}
}

func TestSelfAccessPolicy(t *testing.T) {
	p := Principal{ID: 3, TenantID: 7}
	owner := int64(3)
	other := int64(4)
	pol := SelfAccessPolicy{}
	if !pol.Allows(p, nil, &owner) {
		t.Fatal("self must be allowed")
	}
	if pol.Allows(p, nil, &other) {
		t.Fatal("other user must be denied")
	}
	if pol.Allows(p, nil, nil) {
		t.Fatal("absent owner must be denied")
	}
}
