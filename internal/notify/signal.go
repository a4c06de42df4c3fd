// Package notify carries "state changed" signals to every session of an
// affected actor. Signals are invalidation hints, never payloads: receivers
// re-query authoritative state. Delivery is at-most-once and unordered.
package notify

import (
	"context"

	"swipehire/internal/common"
)

const EventStateChanged = "state-changed"

type Signal struct {
	Type    string      `json:"type"`
	ActorID common.UUID `json:"actorId"`
}

func NewSignal(actorID common.UUID) Signal {
	return Signal{Type: EventStateChanged, ActorID: actorID}
}

type Publisher interface {
	Publish(ctx context.Context, signal Signal) error
}
