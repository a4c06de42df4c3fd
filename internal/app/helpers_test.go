package app

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"swipehire/internal/common"
	"swipehire/internal/domain/application"
	"swipehire/internal/domain/job"
	"swipehire/internal/domain/session"
	"swipehire/internal/notify"
	"swipehire/internal/repository/memory"
)

type recordingNotifier struct {
	mu      sync.Mutex
	changes []notify.Change
}

func (n *recordingNotifier) Notify(change notify.Change) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changes = append(n.changes, change)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.changes)
}

func (n *recordingNotifier) last() notify.Change {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.changes[len(n.changes)-1]
}

func mustSession(t *testing.T, id string, role session.Role) session.Session {
	t.Helper()
	sess, err := session.New(id, role)
	require.NoError(t, err)
	return sess
}

type appFixture struct {
	apps     *memory.ApplicationRepository
	jobs     *memory.JobRepository
	notifier *recordingNotifier
	service  *ApplicationService
	dev      session.Session
	company  session.Session
	key      application.Key
}

func newAppFixture(t *testing.T) *appFixture {
	t.Helper()
	f := &appFixture{
		apps:     memory.NewApplicationRepository(),
		jobs:     memory.NewJobRepository(),
		notifier: &recordingNotifier{},
		dev:      mustSession(t, "dev-1", session.RoleDeveloper),
		company:  mustSession(t, "co-1", session.RoleCompany),
		key:      application.Key{DeveloperID: "dev-1", JobID: "job-1"},
	}
	_, err := f.jobs.Save(context.Background(), job.Job{ID: "job-1", CompanyID: "co-1", Snapshot: job.Snapshot{Title: "Go developer"}})
	require.NoError(t, err)
	f.service = NewApplicationService(f.apps, f.jobs, f.notifier, nil, nil)
	return f
}

// seed stores an application in the given status without going through the engine.
func (f *appFixture) seed(t *testing.T, status application.Status) *application.Application {
	t.Helper()
	created, err := f.apps.Create(context.Background(), application.Application{
		DeveloperID: f.key.DeveloperID,
		JobID:       f.key.JobID,
		CompanyID:   "co-1",
		Status:      status,
	})
	require.NoError(t, err)
	return created
}

func (f *appFixture) status(t *testing.T) application.Status {
	t.Helper()
	got, err := f.apps.Get(context.Background(), f.key)
	require.NoError(t, err)
	return got.Status
}

// gatedRepo holds the first n reads until all n have arrived, so n
// concurrent writers decide on the same snapshot.
type gatedRepo struct {
	application.Repository
	mu      sync.Mutex
	pending int
	release chan struct{}
}

func newGatedRepo(inner application.Repository, n int) *gatedRepo {
	return &gatedRepo{Repository: inner, pending: n, release: make(chan struct{})}
}

func (r *gatedRepo) Get(ctx context.Context, key application.Key) (*application.Application, error) {
	app, err := r.Repository.Get(ctx, key)
	r.mu.Lock()
	if r.pending == 0 {
		r.mu.Unlock()
		return app, err
	}
	r.pending--
	if r.pending == 0 {
		close(r.release)
	}
	r.mu.Unlock()
	<-r.release
	return app, err
}

// bumpingRepo refreshes the job snapshot between the first read and the
// first write, moving only the version.
type bumpingRepo struct {
	application.Repository
	once sync.Once
}

func (r *bumpingRepo) Update(ctx context.Context, app application.Application, expectedVersion int64) (*application.Application, error) {
	r.once.Do(func() {
		_, _ = r.Repository.RefreshSnapshot(ctx, app.JobID, job.Snapshot{Title: "renamed"})
	})
	return r.Repository.Update(ctx, app, expectedVersion)
}

func codeOf(err error) common.Code {
	return common.CodeOf(err)
}

// vanishingRepo removes the record on the first write, as a concurrent
// delete landing between the read and the write would.
type vanishingRepo struct {
	application.Repository
	once sync.Once
}

func (r *vanishingRepo) Update(ctx context.Context, app application.Application, expectedVersion int64) (*application.Application, error) {
	vanished := false
	r.once.Do(func() {
		_ = r.Repository.Delete(ctx, app.Key(), expectedVersion)
		vanished = true
	})
	if vanished {
		return nil, common.NewError(common.CodeConflict, "application was modified concurrently", nil)
	}
	return r.Repository.Update(ctx, app, expectedVersion)
}
