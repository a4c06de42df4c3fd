package app

import (
	"context"
	"log/slog"

	"swipehire/internal/common"
	"swipehire/internal/domain/application"
	"swipehire/internal/domain/job"
	"swipehire/internal/domain/session"
	"swipehire/internal/metrics"
	"swipehire/internal/notify"
	"swipehire/internal/observability"
)

// ApplicationResult is the outcome of a write. Removed is set when the
// action deleted the record; Application then holds the last known state.
type ApplicationResult struct {
	Application *application.Application `json:"application,omitempty"`
	Removed     bool                     `json:"removed,omitempty"`
}

type ApplicationService struct {
	repo     application.Repository
	jobs     job.Repository
	notifier Notifier
	logger   *slog.Logger
	metrics  *metrics.Collector
}

func NewApplicationService(repo application.Repository, jobs job.Repository, notifier Notifier, logger *slog.Logger, collector *metrics.Collector) *ApplicationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ApplicationService{repo: repo, jobs: jobs, notifier: notifier, logger: logger, metrics: collector}
}

// ListForJob returns the company board of a job the session's company owns.
func (s *ApplicationService) ListForJob(ctx context.Context, sess session.Session, jobID common.UUID) (application.JobBoard, error) {
	if err := requireRole(sess, session.RoleCompany); err != nil {
		return application.JobBoard{}, err
	}
	j, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return application.JobBoard{}, err
	}
	if j.CompanyID != sess.ActorID {
		return application.JobBoard{}, common.NewError(common.CodeForbidden, "job belongs to another company", nil)
	}
	items, err := s.repo.ListByJob(ctx, jobID)
	if err != nil {
		return application.JobBoard{}, err
	}
	return application.PartitionForJob(items), nil
}

func (s *ApplicationService) ListForDeveloper(ctx context.Context, sess session.Session, developerID common.UUID, bucket application.Bucket) (application.DeveloperBoard, error) {
	if err := requireRole(sess, session.RoleDeveloper); err != nil {
		return application.DeveloperBoard{}, err
	}
	developerID, err := ownID(sess, developerID, "developer_id")
	if err != nil {
		return application.DeveloperBoard{}, err
	}
	items, err := s.repo.ListByDeveloper(ctx, developerID)
	if err != nil {
		return application.DeveloperBoard{}, err
	}
	return application.PartitionForDeveloper(items, bucket), nil
}

// ApplyAction runs one validated transition on the application at key and
// notifies the developer and the owning company.
func (s *ApplicationService) ApplyAction(ctx context.Context, sess session.Session, key application.Key, action application.Action) (*ApplicationResult, error) {
	if sess.ActorID.IsZero() {
		return nil, common.NewError(common.CodeUnauthorized, "unauthorized", nil)
	}
	if sess.IsDeveloper() && key.DeveloperID != sess.ActorID {
		return nil, common.NewError(common.CodeForbidden, "application belongs to another developer", nil)
	}
	current, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if sess.IsCompany() && current.Status == application.StatusOnHold {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	if sess.IsCompany() && current.CompanyID != sess.ActorID {
		return nil, common.NewError(common.CodeForbidden, "application belongs to another company", nil)
	}
	return s.transition(ctx, sess, current, action)
}

// SwipeJob records a developer's swipe on a job. Left records nothing and
// returns a nil result.
func (s *ApplicationService) SwipeJob(ctx context.Context, sess session.Session, jobID common.UUID, direction application.Direction) (*ApplicationResult, error) {
	if err := requireRole(sess, session.RoleDeveloper); err != nil {
		return nil, err
	}
	initial, creates := direction.InitialStatus()
	if !creates {
		return nil, nil
	}
	j, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	key := application.Key{DeveloperID: sess.ActorID, JobID: jobID}
	current, err := s.repo.Get(ctx, key)
	switch {
	case err == nil:
		if direction == application.DirectionHold {
			return nil, common.NewError(common.CodeInvalidTransition, "job already has an application", nil)
		}
		return s.transition(ctx, sess, current, application.ActionApply)
	case !common.Is(err, common.CodeNotFound):
		return nil, err
	}

	created, err := s.repo.Create(ctx, application.Application{
		DeveloperID: sess.ActorID,
		JobID:       jobID,
		CompanyID:   j.CompanyID,
		Status:      initial,
		Job:         j.Snapshot,
	})
	if err != nil {
		if common.Is(err, common.CodeConflict) {
			s.metrics.IncConflicts()
		}
		return nil, err
	}
	s.committed(ctx, created, "", string(created.Status), string(direction))
	return &ApplicationResult{Application: created}, nil
}

// transition commits the action against current. A lost compare-and-swap is
// retried once, and only when the status it was decided on still holds.
func (s *ApplicationService) transition(ctx context.Context, sess session.Session, current *application.Application, action application.Action) (*ApplicationResult, error) {
	result, err := s.commit(ctx, sess, current, action)
	if common.Is(err, common.CodeConflict) {
		fresh, readErr := s.repo.Get(ctx, current.Key())
		switch {
		case readErr == nil && fresh.Status == current.Status:
			current = fresh
			result, err = s.commit(ctx, sess, current, action)
		case readErr != nil:
			return nil, readErr
		}
	}
	if err != nil {
		if common.Is(err, common.CodeConflict) {
			s.metrics.IncConflicts()
		}
		return nil, err
	}
	to := string(result.Application.Status)
	if result.Removed {
		to = stateRemoved
	}
	s.committed(ctx, result.Application, string(current.Status), to, string(action))
	return result, nil
}

func (s *ApplicationService) commit(ctx context.Context, sess session.Session, current *application.Application, action application.Action) (*ApplicationResult, error) {
	outcome, err := application.Next(current.Status, action, sess.Role)
	if err != nil {
		return nil, err
	}
	if outcome.Remove {
		if err := s.repo.Delete(ctx, current.Key(), current.Version); err != nil {
			return nil, err
		}
		removed := *current
		removed.Version = current.Version + 1
		return &ApplicationResult{Application: &removed, Removed: true}, nil
	}
	next := *current
	next.Status = outcome.Next
	updated, err := s.repo.Update(ctx, next, current.Version)
	if err != nil {
		return nil, err
	}
	return &ApplicationResult{Application: updated}, nil
}

func (s *ApplicationService) committed(ctx context.Context, app *application.Application, from, to, action string) {
	s.metrics.IncTransitions()
	observability.FromContext(ctx, s.logger).Info("application.transition",
		slog.String("developer_id", app.DeveloperID.String()),
		slog.String("job_id", app.JobID.String()),
		slog.String("action", action),
		slog.String("from", from),
		slog.String("to", to),
		slog.Int64("version", app.Version),
	)
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(notify.Change{
		Entity:    "application/" + app.Key().String(),
		State:     to,
		Version:   app.Version,
		CreatedAt: app.CreatedAt,
		Actors:    []common.UUID{app.DeveloperID, app.CompanyID},
	})
}
