package authz

// Principal describes the already-authenticated actor. It is supplied by the
// authentication layer and treated as a read-only value.
type Principal struct {
	ID       int64
	TenantID int64
	Roles    []string
}

// Tenant is the resolved tenant context for a request.
type Tenant struct {
	ID   int64
	Name string
}
