// Package types contains shared types used across multiple packages to avoid import cycles.
package types

// Record is a single catalog row as returned by the remote API.
// No schema is enforced: fields of interest are read by name and every
// other field is passed through untouched.
type Record map[string]any

// Get returns the value stored under field and whether it is present and non-nil.
func (r Record) Get(field string) (any, bool) {
	v, ok := r[field]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

// String returns the string form of field, or "" when the field is missing or null.
func (r Record) String(field string) string {
	v, ok := r.Get(field)
	if !ok {
		return ""
	}
	return ToString(v)
}
