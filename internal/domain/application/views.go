package application

import (
	"sort"

	"swipehire/internal/common"
)

// JobBoard is the company view of one job. OnHold records are developer
// bookmarks and never appear here.
type JobBoard struct {
	Applied      []Application `json:"applied"`
	UnderProcess []Application `json:"underProcess"`
	Hired        []Application `json:"hired"`
	Rejected     []Application `json:"rejected"`
}

type Bucket string

const (
	BucketApplied      Bucket = "applied"
	BucketUnderProcess Bucket = "underProcess"
	BucketHired        Bucket = "hired"
	BucketRejected     Bucket = "rejected"
	BucketOnHold       Bucket = "onHold"
)

func ParseBucket(value string) (Bucket, error) {
	bucket := Bucket(value)
	if value == "" || Status(bucket).Valid() {
		return bucket, nil
	}
	return "", common.NewValidationError("invalid bucket", map[string]string{"bucket": "bucket must be applied, underProcess, hired, rejected or onHold"})
}

type DeveloperBoard struct {
	Applied      []Application `json:"appliedApplications"`
	UnderProcess []Application `json:"underProcessApplications"`
	Hired        []Application `json:"hiredApplications"`
	Rejected     []Application `json:"rejectedApplications"`
	OnHold       []Application `json:"onHoldApplications"`
}

// Coalesce keeps one record per key, preferring the highest version, and
// orders the result by last update, newest first.
func Coalesce(items []Application) []Application {
	latest := make(map[Key]Application, len(items))
	for _, item := range items {
		current, ok := latest[item.Key()]
		if !ok || item.Version > current.Version {
			latest[item.Key()] = item
		}
	}
	out := make([]Application, 0, len(latest))
	for _, item := range latest {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastUpdated.Equal(out[j].LastUpdated) {
			return out[i].LastUpdated.After(out[j].LastUpdated)
		}
		return out[i].Key().String() < out[j].Key().String()
	})
	return out
}

func PartitionForJob(items []Application) JobBoard {
	board := JobBoard{
		Applied:      []Application{},
		UnderProcess: []Application{},
		Hired:        []Application{},
		Rejected:     []Application{},
	}
	for _, item := range Coalesce(items) {
		switch item.Status {
		case StatusApplied:
			board.Applied = append(board.Applied, item)
		case StatusUnderProcess:
			board.UnderProcess = append(board.UnderProcess, item)
		case StatusHired:
			board.Hired = append(board.Hired, item)
		case StatusRejected:
			board.Rejected = append(board.Rejected, item)
		}
	}
	return board
}

// PartitionForDeveloper groups a developer's applications. A non-empty
// bucket leaves every other group empty.
func PartitionForDeveloper(items []Application, bucket Bucket) DeveloperBoard {
	board := DeveloperBoard{
		Applied:      []Application{},
		UnderProcess: []Application{},
		Hired:        []Application{},
		Rejected:     []Application{},
		OnHold:       []Application{},
	}
	for _, item := range Coalesce(items) {
		if bucket != "" && Status(bucket) != item.Status {
			continue
		}
		switch item.Status {
		case StatusApplied:
			board.Applied = append(board.Applied, item)
		case StatusUnderProcess:
			board.UnderProcess = append(board.UnderProcess, item)
		case StatusHired:
			board.Hired = append(board.Hired, item)
		case StatusRejected:
			board.Rejected = append(board.Rejected, item)
		case StatusOnHold:
			board.OnHold = append(board.OnHold, item)
		}
	}
	return board
}
