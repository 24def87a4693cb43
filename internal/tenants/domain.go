package tenants

import "time"

// Tenant is an isolation boundary owning users and items.
type Tenant struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// DashboardStats summarises a tenant for its dashboard.
type DashboardStats struct {
	Users int64 `json:"users"`
	Items int64 `json:"items"`
}

// AdminStats summarises the whole deployment for the global admin dashboard.
type AdminStats struct {
	Tenants int64 `json:"tenants"`
	Users   int64 `json:"users"`
}
