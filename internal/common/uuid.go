package common

import (
	"regexp"

	"github.com/google/uuid"
)

// UUID is an opaque identifier. Generated ids are RFC 4122 strings; ids
// issued by other services only have to match actorIDPattern.
type UUID string

var actorIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

func NewUUID() UUID {
	return UUID(uuid.NewString())
}

func ParseUUID(value string) (UUID, error) {
	if !actorIDPattern.MatchString(value) {
		return "", NewError(CodeValidation, "invalid identifier", nil)
	}
	return UUID(value), nil
}

func (u UUID) String() string {
	return string(u)
}

func (u UUID) IsZero() bool {
	return u == ""
}
