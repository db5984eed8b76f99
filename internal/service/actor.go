package service

import "github.com/gsmp/mentorship-backend/internal/model"

// Actor is the authenticated caller of a catalog operation.
type Actor struct {
	ID   int
	Role model.Role
}

// IsAdmin reports whether the actor may write to the catalog.
func (a Actor) IsAdmin() bool {
	return a.Role == model.RoleAdmin
}

func requireAdmin(a Actor) error {
	if !a.IsAdmin() {
		return ErrForbidden
	}
	return nil
}
