package domain

// Principal is the authenticated identity resolved from a verified token.
// It is immutable and lives for the duration of one request.
type Principal struct {
	UserID    string
	Email     string
	Role      Role
	CompanyID string // empty when the user has no company
}

// HasRole reports whether the principal's role is in the allowed set.
func (p Principal) HasRole(allowed ...Role) bool {
	for _, r := range allowed {
		if p.Role == r {
			return true
		}
	}
	return false
}
