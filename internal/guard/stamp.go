// internal/guard/stamp.go
package guard

// PropertyIDField is the tenant ownership column every scoped table
// carries.
const PropertyIDField = "property_id"

// StampTenant forces the verified tenant id into a write payload,
// overwriting whatever the caller supplied. Tenant ids arriving in
// request bodies are never trusted for writes.
func StampTenant(payload map[string]any, tenantID string) map[string]any {
	if payload == nil {
		payload = make(map[string]any)
	}
	payload[PropertyIDField] = tenantID
	return payload
}

// RequireTenantFilter rejects a scoped read whose filter is missing or
// mis-scoped. It catches the handler that forgot to scope a query before
// the query runs, instead of relying on code review.
func RequireTenantFilter(filter map[string]any, tenantID string) error {
	if tenantID == "" {
		return &ValidationError{Field: PropertyIDField, Reason: "must not be empty"}
	}
	got, ok := filter[PropertyIDField]
	if !ok {
		return &TenantGuardError{
			Op:       "scoped read",
			TenantID: tenantID,
			Detail:   "query has no tenant filter",
		}
	}
	if got != tenantID {
		return &TenantGuardError{
			Op:       "scoped read",
			TenantID: tenantID,
			Detail:   "query filter is scoped to a different tenant",
		}
	}
	return nil
}
