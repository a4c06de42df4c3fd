package app

import (
	"context"
	"log/slog"

	"swipehire/internal/common"
	"swipehire/internal/domain/connection"
	"swipehire/internal/domain/session"
	"swipehire/internal/metrics"
	"swipehire/internal/notify"
	"swipehire/internal/observability"
)

// ConnectionResult is the outcome of a swipe or response. Both fields are
// zero when the move recorded nothing.
type ConnectionResult struct {
	Connection *connection.Connection `json:"connection,omitempty"`
	Removed    bool                   `json:"removed,omitempty"`
}

type ConnectionService struct {
	repo     connection.Repository
	notifier Notifier
	logger   *slog.Logger
	metrics  *metrics.Collector
}

func NewConnectionService(repo connection.Repository, notifier Notifier, logger *slog.Logger, collector *metrics.Collector) *ConnectionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConnectionService{repo: repo, notifier: notifier, logger: logger, metrics: collector}
}

func (s *ConnectionService) Swipe(ctx context.Context, sess session.Session, targetID common.UUID, direction connection.Move) (*ConnectionResult, error) {
	if err := requireRole(sess, session.RoleDeveloper); err != nil {
		return nil, err
	}
	if direction != connection.MoveSwipeRight && direction != connection.MoveSwipeLeft {
		return nil, common.NewValidationError("invalid direction", map[string]string{"direction": "direction must be right or left"})
	}
	pair, err := connection.NewPair(sess.ActorID, targetID)
	if err != nil {
		return nil, err
	}
	return s.move(ctx, sess.ActorID, pair, direction)
}

// Respond answers a pending request. actorID must be the session's own id.
func (s *ConnectionService) Respond(ctx context.Context, sess session.Session, actorID, targetID common.UUID, action connection.Move) (*ConnectionResult, error) {
	if err := requireRole(sess, session.RoleDeveloper); err != nil {
		return nil, err
	}
	actor, err := ownID(sess, actorID, "actor_id")
	if err != nil {
		return nil, err
	}
	switch action {
	case connection.MoveAccept, connection.MoveReject, connection.MoveCancelRequest:
	default:
		return nil, common.NewValidationError("invalid action", map[string]string{"action": "action must be accept, reject or cancelRequest"})
	}
	pair, err := connection.NewPair(actor, targetID)
	if err != nil {
		return nil, err
	}
	return s.move(ctx, actor, pair, action)
}

func (s *ConnectionService) ListFor(ctx context.Context, sess session.Session, developerID common.UUID) (connection.Board, error) {
	if err := requireRole(sess, session.RoleDeveloper); err != nil {
		return connection.Board{}, err
	}
	developerID, err := ownID(sess, developerID, "developer_id")
	if err != nil {
		return connection.Board{}, err
	}
	items, err := s.repo.ListByMember(ctx, developerID)
	if err != nil {
		return connection.Board{}, err
	}
	return connection.Partition(developerID, items), nil
}

func (s *ConnectionService) move(ctx context.Context, actor common.UUID, pair connection.Pair, move connection.Move) (*ConnectionResult, error) {
	current, err := s.load(ctx, pair)
	if err != nil {
		return nil, err
	}
	result, err := s.commit(ctx, actor, pair, current, move)
	if common.Is(err, common.CodeConflict) {
		fresh, readErr := s.load(ctx, pair)
		if readErr != nil {
			return nil, readErr
		}
		if current != nil && fresh == nil {
			return nil, common.NewError(common.CodeNotFound, "connection no longer exists", nil)
		}
		// a lost insert is decided again on the winner's record: the
		// counter-swipe of a concurrent request becomes a match
		if current == nil || sameState(current, fresh) {
			current = fresh
			result, err = s.commit(ctx, actor, pair, current, move)
		}
	}
	if err != nil {
		if common.Is(err, common.CodeConflict) {
			s.metrics.IncConflicts()
		}
		return nil, err
	}
	if result.Connection == nil {
		return result, nil
	}

	from := "none"
	if current != nil {
		from = string(current.State)
	}
	to := string(result.Connection.State)
	if result.Removed {
		to = stateRemoved
	}
	s.metrics.IncTransitions()
	observability.FromContext(ctx, s.logger).Info("connection.transition",
		slog.String("pair", pair.String()),
		slog.String("actor_id", actor.String()),
		slog.String("move", string(move)),
		slog.String("from", from),
		slog.String("to", to),
		slog.Int64("version", result.Connection.Version),
	)
	if s.notifier != nil {
		s.notifier.Notify(notify.Change{
			Entity:    "connection/" + pair.String(),
			State:     to,
			Version:   result.Connection.Version,
			CreatedAt: result.Connection.CreatedAt,
			Actors:    []common.UUID{pair.Low, pair.High},
		})
	}
	return result, nil
}

func (s *ConnectionService) commit(ctx context.Context, actor common.UUID, pair connection.Pair, current *connection.Connection, move connection.Move) (*ConnectionResult, error) {
	outcome, err := connection.Next(current, actor, move)
	if err != nil {
		return nil, err
	}
	switch outcome.Effect {
	case connection.EffectCreate:
		created, err := s.repo.Create(ctx, connection.Connection{Pair: pair, RequesterID: outcome.RequesterID, State: outcome.Next})
		if err != nil {
			return nil, err
		}
		return &ConnectionResult{Connection: created}, nil
	case connection.EffectUpdate:
		next := *current
		next.State = outcome.Next
		next.RequesterID = outcome.RequesterID
		updated, err := s.repo.Update(ctx, next, current.Version)
		if err != nil {
			return nil, err
		}
		return &ConnectionResult{Connection: updated}, nil
	case connection.EffectRemove:
		if err := s.repo.Delete(ctx, pair, current.Version); err != nil {
			return nil, err
		}
		removed := *current
		removed.Version = current.Version + 1
		return &ConnectionResult{Connection: &removed, Removed: true}, nil
	default:
		return &ConnectionResult{}, nil
	}
}

// load returns nil without error when the pair has no record.
func (s *ConnectionService) load(ctx context.Context, pair connection.Pair) (*connection.Connection, error) {
	current, err := s.repo.Get(ctx, pair)
	if common.Is(err, common.CodeNotFound) {
		return nil, nil
	}
	return current, err
}

func sameState(a, b *connection.Connection) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.State == b.State && a.RequesterID == b.RequesterID
}
