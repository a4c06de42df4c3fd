package job

import (
	"context"
	"time"

	"swipehire/internal/common"
)

// Snapshot is the part of a job posting copied onto every application so
// listings render without a join.
type Snapshot struct {
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Responsibilities string     `json:"responsibilities"`
	Skills           []string   `json:"skills"`
	Salary           string     `json:"salary"`
	Mode             string     `json:"mode"`
	Location         string     `json:"location"`
	Deadline         *time.Time `json:"deadline,omitempty"`
}

type Job struct {
	ID        common.UUID `json:"id"`
	CompanyID common.UUID `json:"companyId"`
	Snapshot
	UpdatedAt time.Time `json:"updatedAt"`
}

type Repository interface {
	GetByID(ctx context.Context, id common.UUID) (*Job, error)
	Save(ctx context.Context, job Job) (*Job, error)
}
