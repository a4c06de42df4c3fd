package connection

import (
	"swipehire/internal/common"
)

type Move string

const (
	MoveSwipeRight    Move = "swipeRight"
	MoveSwipeLeft     Move = "swipeLeft"
	MoveAccept        Move = "accept"
	MoveReject        Move = "reject"
	MoveCancelRequest Move = "cancelRequest"
)

type Effect int

const (
	EffectNone Effect = iota
	EffectCreate
	EffectUpdate
	EffectRemove
)

type Outcome struct {
	Effect      Effect
	Next        State
	RequesterID common.UUID
}

func ParseResponse(value string) (Move, error) {
	switch Move(value) {
	case MoveAccept, MoveReject, MoveCancelRequest:
		return Move(value), nil
	default:
		return "", common.NewValidationError("invalid action", map[string]string{"action": "action must be accept, reject or cancelRequest"})
	}
}

func ParseDirection(value string) (Move, error) {
	switch value {
	case "right", string(MoveSwipeRight):
		return MoveSwipeRight, nil
	case "left", string(MoveSwipeLeft):
		return MoveSwipeLeft, nil
	default:
		return "", common.NewValidationError("invalid direction", map[string]string{"direction": "direction must be right or left"})
	}
}

// Next decides what a move by actor does to the pair's current record
// (nil when the pair has no relationship).
func Next(current *Connection, actor common.UUID, move Move) (Outcome, error) {
	if current == nil {
		switch move {
		case MoveSwipeRight:
			return Outcome{Effect: EffectCreate, Next: StateRequested, RequesterID: actor}, nil
		case MoveSwipeLeft:
			return Outcome{Effect: EffectNone}, nil
		default:
			return Outcome{}, common.NewError(common.CodeNotFound, "connection request not found", nil)
		}
	}
	if !current.Pair.Contains(actor) {
		return Outcome{}, common.NewValidationError("actor is not part of this connection", nil)
	}
	if current.State == StateMatched {
		return Outcome{}, common.NewError(common.CodeInvalidTransition, "developers are already matched", nil)
	}
	isRequester := current.RequesterID == actor
	switch move {
	case MoveSwipeRight, MoveAccept:
		if isRequester {
			return Outcome{}, common.NewError(common.CodeInvalidTransition, "connection already requested", nil)
		}
		return Outcome{Effect: EffectUpdate, Next: StateMatched, RequesterID: current.RequesterID}, nil
	case MoveSwipeLeft, MoveReject:
		return Outcome{Effect: EffectRemove}, nil
	case MoveCancelRequest:
		if !isRequester {
			return Outcome{}, common.NewError(common.CodeInvalidTransition, "only the requester can cancel a request", nil)
		}
		return Outcome{Effect: EffectRemove}, nil
	default:
		return Outcome{}, common.NewValidationError("invalid action", map[string]string{"action": "unknown action " + string(move)})
	}
}
