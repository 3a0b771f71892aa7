// internal/guard/errors.go
package guard

import "fmt"

// ValidationError marks caller-fixable input problems (missing or
// malformed tenant identifiers). Maps to a 400.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// AuthorizationError is an access denial from AssertAccess. Maps to a
// 403 and is never retried automatically.
type AuthorizationError struct {
	PrincipalID string
	TenantID    string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("principal %s is not authorized for tenant %s", e.PrincipalID, e.TenantID)
}

// TenantGuardError covers tenant-scoping violations: a write with no
// property id, or rows leaking across tenants. Always logged as a
// security incident; in the leak case the whole response is aborted
// rather than stripped down.
type TenantGuardError struct {
	Op       string
	TenantID string
	Detail   string
}

func (e *TenantGuardError) Error() string {
	return fmt.Sprintf("tenant guard: %s (tenant %s): %s", e.Op, e.TenantID, e.Detail)
}
