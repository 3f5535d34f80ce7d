package model

// RoleAdmin is the role required for every mutating catalog operation.
const RoleAdmin = "admin"

// Actor is the authenticated entity behind a request, as resolved by the
// external identity service. The identity service owns the full user record;
// only the fields this service acts on are kept.
type Actor struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// IsAdmin reports whether the actor may invoke mutating operations.
func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}
