package app

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swipehire/internal/common"
	"swipehire/internal/domain/application"
	"swipehire/internal/domain/session"
)

func TestApplyHireScenario(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()

	res, err := f.service.SwipeJob(ctx, f.dev, "job-1", application.DirectionRight)
	require.NoError(t, err)
	assert.Equal(t, application.StatusApplied, res.Application.Status)
	assert.Equal(t, "Go developer", res.Application.Job.Title)
	assert.Equal(t, common.UUID("co-1"), res.Application.CompanyID)

	res, err = f.service.ApplyAction(ctx, f.company, f.key, application.ActionAdvance)
	require.NoError(t, err)
	assert.Equal(t, application.StatusUnderProcess, res.Application.Status)

	res, err = f.service.ApplyAction(ctx, f.company, f.key, application.ActionHire)
	require.NoError(t, err)
	assert.Equal(t, application.StatusHired, res.Application.Status)

	for _, action := range []application.Action{application.ActionReject, application.ActionRevert} {
		_, err = f.service.ApplyAction(ctx, f.company, f.key, action)
		assert.Equal(t, common.CodeInvalidTransition, codeOf(err), action)
	}
	assert.Equal(t, application.StatusHired, f.status(t))
	assert.Equal(t, 3, f.notifier.count())
}

func TestApplyActionIllegalLeavesStateUnchanged(t *testing.T) {
	statuses := []application.Status{application.StatusApplied, application.StatusOnHold, application.StatusUnderProcess, application.StatusHired, application.StatusRejected}
	actions := []application.Action{application.ActionAdvance, application.ActionReject, application.ActionWithdraw, application.ActionHire, application.ActionRevert, application.ActionReapply, application.ActionApply, application.ActionDelete}
	roles := []session.Role{session.RoleDeveloper, session.RoleCompany}

	for _, status := range statuses {
		for _, action := range actions {
			for _, role := range roles {
				if _, err := application.Next(status, action, role); err == nil {
					continue
				}
				f := newAppFixture(t)
				seeded := f.seed(t, status)
				sess := f.dev
				if role == session.RoleCompany {
					sess = f.company
				}

				_, err := f.service.ApplyAction(context.Background(), sess, f.key, action)
				assert.Equal(t, common.CodeInvalidTransition, codeOf(err), "%s/%s/%s", status, action, role)

				got, err := f.apps.Get(context.Background(), f.key)
				require.NoError(t, err)
				assert.Equal(t, seeded.Status, got.Status)
				assert.Equal(t, seeded.Version, got.Version)
				assert.Zero(t, f.notifier.count())
			}
		}
	}
}

func TestApplyActionDoubleClick(t *testing.T) {
	f := newAppFixture(t)
	f.seed(t, application.StatusApplied)
	ctx := context.Background()

	_, err := f.service.ApplyAction(ctx, f.company, f.key, application.ActionAdvance)
	require.NoError(t, err)
	_, err = f.service.ApplyAction(ctx, f.company, f.key, application.ActionAdvance)
	assert.Equal(t, common.CodeInvalidTransition, codeOf(err))

	assert.Equal(t, application.StatusUnderProcess, f.status(t))
	assert.Equal(t, 1, f.notifier.count())
	board, err := f.service.ListForJob(ctx, f.company, "job-1")
	require.NoError(t, err)
	assert.Len(t, board.UnderProcess, 1)
	assert.Empty(t, board.Applied)
}

func TestSwipeRightTwiceKeepsOneRecord(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()

	_, err := f.service.SwipeJob(ctx, f.dev, "job-1", application.DirectionRight)
	require.NoError(t, err)
	_, err = f.service.SwipeJob(ctx, f.dev, "job-1", application.DirectionRight)
	assert.Equal(t, common.CodeInvalidTransition, codeOf(err))

	board, err := f.service.ListForDeveloper(ctx, f.dev, "", "")
	require.NoError(t, err)
	assert.Len(t, board.Applied, 1)
}

func TestConcurrentActionsExactlyOneWins(t *testing.T) {
	f := newAppFixture(t)
	f.seed(t, application.StatusApplied)
	gated := newGatedRepo(f.apps, 2)
	service := NewApplicationService(gated, f.jobs, f.notifier, nil, nil)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, action := range []application.Action{application.ActionAdvance, application.ActionReject} {
		wg.Add(1)
		go func(i int, action application.Action) {
			defer wg.Done()
			_, errs[i] = service.ApplyAction(context.Background(), f.company, f.key, action)
		}(i, action)
	}
	wg.Wait()

	var succeeded, conflicted int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case common.Is(err, common.CodeConflict):
			conflicted++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicted)
	assert.Equal(t, 1, f.notifier.count())
}

func TestApplyActionRetriesAfterSnapshotRefresh(t *testing.T) {
	f := newAppFixture(t)
	f.seed(t, application.StatusApplied)
	service := NewApplicationService(&bumpingRepo{Repository: f.apps}, f.jobs, f.notifier, nil, nil)

	res, err := service.ApplyAction(context.Background(), f.company, f.key, application.ActionAdvance)
	require.NoError(t, err)
	assert.Equal(t, application.StatusUnderProcess, res.Application.Status)
	assert.Equal(t, "renamed", res.Application.Job.Title)
	assert.Equal(t, int64(3), res.Application.Version)
}

func TestApplyActionOwnership(t *testing.T) {
	f := newAppFixture(t)
	f.seed(t, application.StatusApplied)
	ctx := context.Background()

	other := mustSession(t, "co-2", session.RoleCompany)
	_, err := f.service.ApplyAction(ctx, other, f.key, application.ActionAdvance)
	assert.Equal(t, common.CodeForbidden, codeOf(err))

	stranger := mustSession(t, "dev-2", session.RoleDeveloper)
	_, err = f.service.ApplyAction(ctx, stranger, f.key, application.ActionWithdraw)
	assert.Equal(t, common.CodeForbidden, codeOf(err))

	_, err = f.service.ListForJob(ctx, other, "job-1")
	assert.Equal(t, common.CodeForbidden, codeOf(err))

	_, err = f.service.ListForDeveloper(ctx, f.dev, "dev-2", "")
	assert.Equal(t, common.CodeForbidden, codeOf(err))

	_, err = f.service.ApplyAction(ctx, f.company, application.Key{DeveloperID: "dev-9", JobID: "job-1"}, application.ActionAdvance)
	assert.Equal(t, common.CodeNotFound, codeOf(err))
}

func TestHoldIsInvisibleToCompany(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()

	res, err := f.service.SwipeJob(ctx, f.dev, "job-1", application.DirectionHold)
	require.NoError(t, err)
	assert.Equal(t, application.StatusOnHold, res.Application.Status)

	_, err = f.service.SwipeJob(ctx, f.dev, "job-1", application.DirectionHold)
	assert.Equal(t, common.CodeInvalidTransition, codeOf(err))

	board, err := f.service.ListForJob(ctx, f.company, "job-1")
	require.NoError(t, err)
	assert.Empty(t, board.Applied)
	assert.Empty(t, board.Rejected)

	devBoard, err := f.service.ListForDeveloper(ctx, f.dev, "", application.BucketOnHold)
	require.NoError(t, err)
	assert.Len(t, devBoard.OnHold, 1)

	res, err = f.service.SwipeJob(ctx, f.dev, "job-1", application.DirectionRight)
	require.NoError(t, err)
	assert.Equal(t, application.StatusApplied, res.Application.Status)
}

func TestCompanyCannotActOnHeldApplication(t *testing.T) {
	f := newAppFixture(t)
	f.seed(t, application.StatusOnHold)

	for _, action := range []application.Action{application.ActionAdvance, application.ActionReject, application.ActionHire} {
		_, err := f.service.ApplyAction(context.Background(), f.company, f.key, action)
		assert.Equal(t, common.CodeNotFound, codeOf(err), action)
	}
	assert.Equal(t, application.StatusOnHold, f.status(t))
	assert.Zero(t, f.notifier.count())
}

func TestApplyActionOnVanishedRecordIsNotFound(t *testing.T) {
	f := newAppFixture(t)
	f.seed(t, application.StatusApplied)
	service := NewApplicationService(&vanishingRepo{Repository: f.apps}, f.jobs, f.notifier, nil, nil)

	_, err := service.ApplyAction(context.Background(), f.company, f.key, application.ActionAdvance)
	assert.Equal(t, common.CodeNotFound, codeOf(err))
	assert.Zero(t, f.notifier.count())
}

func TestWithdrawThenDelete(t *testing.T) {
	f := newAppFixture(t)
	f.seed(t, application.StatusApplied)
	ctx := context.Background()

	_, err := f.service.ApplyAction(ctx, f.dev, f.key, application.ActionWithdraw)
	require.NoError(t, err)
	res, err := f.service.ApplyAction(ctx, f.dev, f.key, application.ActionDelete)
	require.NoError(t, err)
	assert.True(t, res.Removed)

	_, err = f.apps.Get(ctx, f.key)
	assert.Equal(t, common.CodeNotFound, codeOf(err))
	change := f.notifier.last()
	assert.Equal(t, "removed", change.State)
	assert.ElementsMatch(t, []common.UUID{"dev-1", "co-1"}, change.Actors)
}

func TestSwipeLeftRecordsNothing(t *testing.T) {
	f := newAppFixture(t)
	res, err := f.service.SwipeJob(context.Background(), f.dev, "job-1", application.DirectionLeft)
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Zero(t, f.notifier.count())
	_, err = f.apps.Get(context.Background(), f.key)
	assert.Equal(t, common.CodeNotFound, codeOf(err))
}

func TestSwipeJobRequiresDeveloperAndJob(t *testing.T) {
	f := newAppFixture(t)
	ctx := context.Background()

	_, err := f.service.SwipeJob(ctx, f.company, "job-1", application.DirectionRight)
	assert.Equal(t, common.CodeForbidden, codeOf(err))

	_, err = f.service.SwipeJob(ctx, f.dev, "job-404", application.DirectionRight)
	assert.Equal(t, common.CodeNotFound, codeOf(err))

	_, err = f.service.SwipeJob(ctx, session.Session{}, "job-1", application.DirectionRight)
	assert.Equal(t, common.CodeUnauthorized, codeOf(err))
}

func TestTransitionNotifiesBothActors(t *testing.T) {
	f := newAppFixture(t)
	f.seed(t, application.StatusApplied)

	_, err := f.service.ApplyAction(context.Background(), f.company, f.key, application.ActionAdvance)
	require.NoError(t, err)

	change := f.notifier.last()
	assert.Equal(t, "application/dev-1/job-1", change.Entity)
	assert.Equal(t, "underProcess", change.State)
	assert.Equal(t, int64(2), change.Version)
	assert.ElementsMatch(t, []common.UUID{"dev-1", "co-1"}, change.Actors)
}
