package application

import (
	"context"
	"time"

	"swipehire/internal/common"
	"swipehire/internal/domain/job"
)

type Status string

const (
	StatusApplied      Status = "applied"
	StatusOnHold       Status = "onHold"
	StatusUnderProcess Status = "underProcess"
	StatusHired        Status = "hired"
	StatusRejected     Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusApplied, StatusOnHold, StatusUnderProcess, StatusHired, StatusRejected:
		return true
	default:
		return false
	}
}

// Key is the identity of an application. At most one record exists per key.
type Key struct {
	DeveloperID common.UUID `json:"developerId"`
	JobID       common.UUID `json:"jobId"`
}

func (k Key) String() string {
	return k.DeveloperID.String() + "/" + k.JobID.String()
}

type Application struct {
	DeveloperID common.UUID  `json:"developerId"`
	JobID       common.UUID  `json:"jobId"`
	CompanyID   common.UUID  `json:"companyId"`
	Status      Status       `json:"status"`
	Job         job.Snapshot `json:"job"`
	Version     int64        `json:"version"`
	CreatedAt   time.Time    `json:"createdAt"`
	LastUpdated time.Time    `json:"lastUpdated"`
}

func (a Application) Key() Key {
	return Key{DeveloperID: a.DeveloperID, JobID: a.JobID}
}

// Repository is the entity store for applications. Create fails with
// CodeConflict when the key already exists; Update and Delete are
// compare-and-swap on Version and fail with CodeConflict when the stored
// version moved, or CodeNotFound when the record is gone.
type Repository interface {
	Get(ctx context.Context, key Key) (*Application, error)
	Create(ctx context.Context, app Application) (*Application, error)
	Update(ctx context.Context, app Application, expectedVersion int64) (*Application, error)
	Delete(ctx context.Context, key Key, expectedVersion int64) error
	ListByJob(ctx context.Context, jobID common.UUID) ([]Application, error)
	ListByDeveloper(ctx context.Context, developerID common.UUID) ([]Application, error)
	RefreshSnapshot(ctx context.Context, jobID common.UUID, snapshot job.Snapshot) (int64, error)
}
