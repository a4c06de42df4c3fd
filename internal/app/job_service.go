package app

import (
	"context"
	"log/slog"
	"strings"

	"swipehire/internal/common"
	"swipehire/internal/domain/application"
	"swipehire/internal/domain/job"
	"swipehire/internal/observability"
)

// JobService accepts job snapshots pushed by the posting service and keeps
// the copies on applications current.
type JobService struct {
	jobs         job.Repository
	applications application.Repository
	logger       *slog.Logger
}

func NewJobService(jobs job.Repository, applications application.Repository, logger *slog.Logger) *JobService {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobService{jobs: jobs, applications: applications, logger: logger}
}

// Sync stores j and rewrites the snapshot on its applications. A job never
// changes owner. Snapshot refreshes publish nothing.
func (s *JobService) Sync(ctx context.Context, j job.Job) (*job.Job, error) {
	fields := map[string]string{}
	if _, err := common.ParseUUID(j.ID.String()); err != nil {
		fields["id"] = "invalid identifier"
	}
	if _, err := common.ParseUUID(j.CompanyID.String()); err != nil {
		fields["company_id"] = "invalid identifier"
	}
	if strings.TrimSpace(j.Title) == "" {
		fields["title"] = "title is required"
	}
	if len(fields) > 0 {
		return nil, common.NewValidationError("invalid job", fields)
	}

	existing, err := s.jobs.GetByID(ctx, j.ID)
	switch {
	case err == nil:
		if existing.CompanyID != j.CompanyID {
			return nil, common.NewError(common.CodeForbidden, "job belongs to another company", nil)
		}
	case !common.Is(err, common.CodeNotFound):
		return nil, err
	}

	saved, err := s.jobs.Save(ctx, j)
	if err != nil {
		return nil, err
	}
	refreshed, err := s.applications.RefreshSnapshot(ctx, saved.ID, saved.Snapshot)
	if err != nil {
		return nil, err
	}
	observability.FromContext(ctx, s.logger).Info("job.synced",
		slog.String("job_id", saved.ID.String()),
		slog.String("company_id", saved.CompanyID.String()),
		slog.Int64("applications_refreshed", refreshed),
	)
	return saved, nil
}
