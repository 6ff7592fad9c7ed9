package domain

// Tenant identifies an isolation boundary (user or organisation).
type Tenant string

// TenantGlobal is the anonymous tenant; it bypasses tenant scoping.
const TenantGlobal Tenant = "global"

// IsGlobal returns true for the anonymous tenant or an unset tenant.
func (t Tenant) IsGlobal() bool {
	return t == "" || t == TenantGlobal
}

// String returns the string representation.
func (t Tenant) String() string {
	if t == "" {
		return string(TenantGlobal)
	}
	return string(t)
}
