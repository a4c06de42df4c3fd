package app

import (
	"swipehire/internal/common"
	"swipehire/internal/domain/session"
	"swipehire/internal/notify"
)

// Notifier receives committed changes. Implementations must not block the
// caller; notify.Notifier publishes asynchronously.
type Notifier interface {
	Notify(change notify.Change)
}

const stateRemoved = "removed"

func requireRole(sess session.Session, role session.Role) error {
	if sess.ActorID.IsZero() {
		return common.NewError(common.CodeUnauthorized, "unauthorized", nil)
	}
	if sess.Role != role {
		return common.NewError(common.CodeForbidden, "action requires role "+string(role), nil)
	}
	return nil
}

// ownID resolves an optional id in a request to the session's own id and
// refuses ids belonging to someone else.
func ownID(sess session.Session, requested common.UUID, field string) (common.UUID, error) {
	if requested.IsZero() || requested == sess.ActorID {
		return sess.ActorID, nil
	}
	return "", common.NewError(common.CodeForbidden, field+" does not match the session", nil)
}
