// Package memory holds in-process stores with the same compare-and-swap
// semantics as the SQL repositories. They back DB_DRIVER=memory and the
// engine tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"swipehire/internal/common"
	"swipehire/internal/domain/application"
	"swipehire/internal/domain/connection"
	"swipehire/internal/domain/job"
)

func copySnapshot(s job.Snapshot) job.Snapshot {
	if s.Skills != nil {
		s.Skills = append([]string(nil), s.Skills...)
	}
	if s.Deadline != nil {
		deadline := *s.Deadline
		s.Deadline = &deadline
	}
	return s
}

type JobRepository struct {
	mu   sync.RWMutex
	jobs map[common.UUID]job.Job
}

func NewJobRepository() *JobRepository {
	return &JobRepository{jobs: make(map[common.UUID]job.Job)}
}

func (r *JobRepository) GetByID(_ context.Context, id common.UUID) (*job.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.jobs[id]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "job not found", nil)
	}
	stored.Snapshot = copySnapshot(stored.Snapshot)
	return &stored, nil
}

func (r *JobRepository) Save(_ context.Context, j job.Job) (*job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	j.Snapshot = copySnapshot(j.Snapshot)
	j.UpdatedAt = time.Now().UTC()
	r.jobs[j.ID] = j
	out := j
	out.Snapshot = copySnapshot(j.Snapshot)
	return &out, nil
}

type ApplicationRepository struct {
	mu    sync.RWMutex
	items map[application.Key]application.Application
	last  time.Time
}

func NewApplicationRepository() *ApplicationRepository {
	return &ApplicationRepository{items: make(map[application.Key]application.Application)}
}

func (r *ApplicationRepository) Get(_ context.Context, key application.Key) (*application.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.items[key]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	return cloneApplication(stored), nil
}

func (r *ApplicationRepository) Create(_ context.Context, app application.Application) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[app.Key()]; ok {
		return nil, common.NewError(common.CodeConflict, "application already exists", nil)
	}
	now := stamp(&r.last)
	app.Version = 1
	app.CreatedAt = now
	app.LastUpdated = now
	app.Job = copySnapshot(app.Job)
	r.items[app.Key()] = app
	return cloneApplication(app), nil
}

func (r *ApplicationRepository) Update(_ context.Context, app application.Application, expectedVersion int64) (*application.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[app.Key()]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "application not found", nil)
	}
	if stored.Version != expectedVersion {
		return nil, common.NewError(common.CodeConflict, "application was changed concurrently", nil)
	}
	app.Version = expectedVersion + 1
	app.CreatedAt = stored.CreatedAt
	app.LastUpdated = stamp(&r.last)
	app.Job = copySnapshot(app.Job)
	r.items[app.Key()] = app
	return cloneApplication(app), nil
}

func (r *ApplicationRepository) Delete(_ context.Context, key application.Key, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[key]
	if !ok {
		return common.NewError(common.CodeNotFound, "application not found", nil)
	}
	if stored.Version != expectedVersion {
		return common.NewError(common.CodeConflict, "application was changed concurrently", nil)
	}
	delete(r.items, key)
	return nil
}

func (r *ApplicationRepository) ListByJob(_ context.Context, jobID common.UUID) ([]application.Application, error) {
	return r.filter(func(a application.Application) bool { return a.JobID == jobID }), nil
}

func (r *ApplicationRepository) ListByDeveloper(_ context.Context, developerID common.UUID) ([]application.Application, error) {
	return r.filter(func(a application.Application) bool { return a.DeveloperID == developerID }), nil
}

func (r *ApplicationRepository) RefreshSnapshot(_ context.Context, jobID common.UUID, snapshot job.Snapshot) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for key, stored := range r.items {
		if stored.JobID != jobID {
			continue
		}
		stored.Job = copySnapshot(snapshot)
		stored.Version++
		r.items[key] = stored
		n++
	}
	return n, nil
}

func (r *ApplicationRepository) filter(keep func(application.Application) bool) []application.Application {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []application.Application
	for _, stored := range r.items {
		if keep(stored) {
			out = append(out, *cloneApplication(stored))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastUpdated.After(out[j].LastUpdated) })
	return out
}

func cloneApplication(app application.Application) *application.Application {
	app.Job = copySnapshot(app.Job)
	return &app
}

type ConnectionRepository struct {
	mu    sync.RWMutex
	items map[connection.Pair]connection.Connection
	last  time.Time
}

func NewConnectionRepository() *ConnectionRepository {
	return &ConnectionRepository{items: make(map[connection.Pair]connection.Connection)}
}

func (r *ConnectionRepository) Get(_ context.Context, pair connection.Pair) (*connection.Connection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.items[pair]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "connection not found", nil)
	}
	return &stored, nil
}

func (r *ConnectionRepository) Create(_ context.Context, conn connection.Connection) (*connection.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[conn.Pair]; ok {
		return nil, common.NewError(common.CodeConflict, "connection already exists", nil)
	}
	now := stamp(&r.last)
	conn.Version = 1
	conn.CreatedAt = now
	conn.UpdatedAt = now
	r.items[conn.Pair] = conn
	return &conn, nil
}

func (r *ConnectionRepository) Update(_ context.Context, conn connection.Connection, expectedVersion int64) (*connection.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[conn.Pair]
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "connection not found", nil)
	}
	if stored.Version != expectedVersion {
		return nil, common.NewError(common.CodeConflict, "connection was changed concurrently", nil)
	}
	conn.Version = expectedVersion + 1
	conn.CreatedAt = stored.CreatedAt
	conn.UpdatedAt = stamp(&r.last)
	r.items[conn.Pair] = conn
	return &conn, nil
}

func (r *ConnectionRepository) Delete(_ context.Context, pair connection.Pair, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[pair]
	if !ok {
		return common.NewError(common.CodeNotFound, "connection not found", nil)
	}
	if stored.Version != expectedVersion {
		return common.NewError(common.CodeConflict, "connection was changed concurrently", nil)
	}
	delete(r.items, pair)
	return nil
}

func (r *ConnectionRepository) ListByMember(_ context.Context, developerID common.UUID) ([]connection.Connection, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []connection.Connection
	for pair, stored := range r.items {
		if pair.Contains(developerID) {
			out = append(out, stored)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

// stamp returns the current time, moved past *last when the clock has not
// advanced, so a re-created record never shares its predecessor's CreatedAt.
// Callers hold the repository lock.
func stamp(last *time.Time) time.Time {
	now := time.Now().UTC()
	if !now.After(*last) {
		now = last.Add(time.Nanosecond)
	}
	*last = now
	return now
}
