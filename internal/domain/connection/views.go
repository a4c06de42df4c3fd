package connection

import (
	"sort"
	"time"

	"swipehire/internal/common"
)

// View is a connection as seen by one of its members.
type View struct {
	CounterpartID common.UUID `json:"developerId"`
	RequesterID   common.UUID `json:"requesterId"`
	State         State       `json:"state"`
	Matched       bool        `json:"matched"`
	UpdatedAt     time.Time   `json:"updatedAt"`
}

type Board struct {
	ConnectionRequests []View `json:"connectionRequests"`
	Requested          []View `json:"requested"`
	Matched            []View `json:"matched"`
}

// Partition splits the actor's connections into three disjoint views.
// Records that do not involve the actor, duplicates and half-written
// records (a request without a valid requester) are dropped.
func Partition(actor common.UUID, items []Connection) Board {
	board := Board{ConnectionRequests: []View{}, Requested: []View{}, Matched: []View{}}
	latest := make(map[Pair]Connection, len(items))
	for _, item := range items {
		if !item.Pair.Contains(actor) {
			continue
		}
		current, ok := latest[item.Pair]
		if !ok || item.Version > current.Version {
			latest[item.Pair] = item
		}
	}
	ordered := make([]Connection, 0, len(latest))
	for _, item := range latest {
		ordered = append(ordered, item)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].UpdatedAt.Equal(ordered[j].UpdatedAt) {
			return ordered[i].UpdatedAt.After(ordered[j].UpdatedAt)
		}
		return ordered[i].Pair.String() < ordered[j].Pair.String()
	})
	for _, item := range ordered {
		view := View{
			CounterpartID: item.Pair.Other(actor),
			RequesterID:   item.RequesterID,
			State:         item.State,
			Matched:       item.State == StateMatched,
			UpdatedAt:     item.UpdatedAt,
		}
		switch item.State {
		case StateMatched:
			board.Matched = append(board.Matched, view)
		case StateRequested:
			if !item.Pair.Contains(item.RequesterID) {
				continue
			}
			if item.RequesterID == actor {
				board.Requested = append(board.Requested, view)
			} else {
				board.ConnectionRequests = append(board.ConnectionRequests, view)
			}
		}
	}
	return board
}
