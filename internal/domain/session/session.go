package session

import (
	"swipehire/internal/common"
)

type Role string

const (
	RoleDeveloper Role = "developer"
	RoleCompany   Role = "company"
)

// Session identifies the actor behind a single engine call. It is built per
// request (or per real-time connection) and passed explicitly.
type Session struct {
	ActorID common.UUID
	Role    Role
}

func New(actorID string, role Role) (Session, error) {
	id, err := common.ParseUUID(actorID)
	if err != nil {
		return Session{}, common.NewValidationError("invalid actor", map[string]string{"actor_id": "invalid identifier"})
	}
	if !role.Valid() {
		return Session{}, common.NewValidationError("invalid actor", map[string]string{"role": "role must be developer or company"})
	}
	return Session{ActorID: id, Role: role}, nil
}

func (r Role) Valid() bool {
	return r == RoleDeveloper || r == RoleCompany
}

func (s Session) IsDeveloper() bool {
	return s.Role == RoleDeveloper
}

func (s Session) IsCompany() bool {
	return s.Role == RoleCompany
}
