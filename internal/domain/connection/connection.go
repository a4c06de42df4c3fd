package connection

import (
	"context"
	"time"

	"swipehire/internal/common"
)

type State string

const (
	StateRequested State = "requested"
	StateMatched   State = "matched"
)

// Pair is an unordered pair of developers stored in canonical order so that
// (A, B) and (B, A) address the same record.
type Pair struct {
	Low  common.UUID `json:"low"`
	High common.UUID `json:"high"`
}

func NewPair(a, b common.UUID) (Pair, error) {
	if a.IsZero() || b.IsZero() {
		return Pair{}, common.NewValidationError("invalid pair", map[string]string{"target_id": "both developers are required"})
	}
	if a == b {
		return Pair{}, common.NewValidationError("cannot connect with yourself", map[string]string{"target_id": "must differ from actor"})
	}
	if b < a {
		a, b = b, a
	}
	return Pair{Low: a, High: b}, nil
}

func (p Pair) Contains(id common.UUID) bool {
	return p.Low == id || p.High == id
}

// Other returns the member of the pair that is not id.
func (p Pair) Other(id common.UUID) common.UUID {
	if p.Low == id {
		return p.High
	}
	return p.Low
}

func (p Pair) String() string {
	return p.Low.String() + ":" + p.High.String()
}

type Connection struct {
	Pair        Pair        `json:"pair"`
	RequesterID common.UUID `json:"requesterId"`
	State       State       `json:"state"`
	Version     int64       `json:"version"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Repository stores connections keyed by canonical pair. Create fails with
// CodeConflict when the pair already has a record; Update and Delete are
// compare-and-swap on Version.
type Repository interface {
	Get(ctx context.Context, pair Pair) (*Connection, error)
	Create(ctx context.Context, conn Connection) (*Connection, error)
	Update(ctx context.Context, conn Connection, expectedVersion int64) (*Connection, error)
	Delete(ctx context.Context, pair Pair, expectedVersion int64) error
	ListByMember(ctx context.Context, developerID common.UUID) ([]Connection, error)
}
