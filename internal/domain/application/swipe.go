package application

import "swipehire/internal/common"

// Direction is a developer's swipe on a job card.
type Direction string

const (
	DirectionRight Direction = "right"
	DirectionLeft  Direction = "left"
	DirectionHold  Direction = "hold"
)

func ParseDirection(value string) (Direction, error) {
	switch Direction(value) {
	case DirectionRight, DirectionLeft, DirectionHold:
		return Direction(value), nil
	default:
		return "", common.NewValidationError("invalid direction", map[string]string{"direction": "direction must be right, left or hold"})
	}
}

// InitialStatus is the status a swipe creates when the developer has no
// application for the job yet. Left creates nothing.
func (d Direction) InitialStatus() (Status, bool) {
	switch d {
	case DirectionRight:
		return StatusApplied, true
	case DirectionHold:
		return StatusOnHold, true
	default:
		return "", false
	}
}
