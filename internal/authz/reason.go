package authz

// Reason is the machine-readable outcome code attached to every decision.
// Denials surface a stable, enumerable code, never an internal detail.
type Reason string

const (
	ReasonPermissionGranted       Reason = "permission_granted"
	ReasonUserHasNoPermissions    Reason = "user_has_no_permissions"
	ReasonPermissionDenied        Reason = "permission_denied"
	ReasonPermissionNotRegistered Reason = "permission_not_registered"
	ReasonTenantRequired          Reason = "tenant_required"
	ReasonPolicyDenied            Reason = "policy_denied"
)
