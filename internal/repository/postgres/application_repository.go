package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"swipehire/internal/common"
	"swipehire/internal/domain/application"
	"swipehire/internal/domain/job"
)

const applicationColumns = `developer_id, job_id, company_id, status, job_snapshot, version, created_at, last_updated`

type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Get(ctx context.Context, key application.Key) (*application.Application, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+applicationColumns+` FROM applications WHERE developer_id = $1 AND job_id = $2`, key.DeveloperID, key.JobID)
	app, err := scanApplication(row)
	if err != nil {
		return nil, translate(err, "application", "load")
	}
	return app, nil
}

// Create inserts a new record at version 1. The composite primary key makes
// a concurrent duplicate lose with CodeConflict instead of adding a row.
func (r *ApplicationRepository) Create(ctx context.Context, app application.Application) (*application.Application, error) {
	raw, err := json.Marshal(app.Job)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to encode job snapshot", err)
	}
	now := storedTime()
	app.Version = 1
	app.CreatedAt = now
	app.LastUpdated = now
	result, err := r.db.ExecContext(ctx, `INSERT INTO applications (`+applicationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (developer_id, job_id) DO NOTHING`,
		app.DeveloperID, app.JobID, app.CompanyID, app.Status, string(raw), app.Version, app.CreatedAt, app.LastUpdated)
	if err != nil {
		return nil, translate(err, "application", "create")
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return nil, common.NewError(common.CodeConflict, "application already exists", nil)
	}
	return &app, nil
}

func (r *ApplicationRepository) Update(ctx context.Context, app application.Application, expectedVersion int64) (*application.Application, error) {
	raw, err := json.Marshal(app.Job)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to encode job snapshot", err)
	}
	app.Version = expectedVersion + 1
	app.LastUpdated = storedTime()
	result, err := r.db.ExecContext(ctx, `UPDATE applications SET status = $1, job_snapshot = $2, version = $3, last_updated = $4
		WHERE developer_id = $5 AND job_id = $6 AND version = $7`,
		app.Status, string(raw), app.Version, app.LastUpdated, app.DeveloperID, app.JobID, expectedVersion)
	if err != nil {
		return nil, translate(err, "application", "update")
	}
	if err := r.checkSwapped(ctx, result, app.Key()); err != nil {
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepository) Delete(ctx context.Context, key application.Key, expectedVersion int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM applications WHERE developer_id = $1 AND job_id = $2 AND version = $3`,
		key.DeveloperID, key.JobID, expectedVersion)
	if err != nil {
		return translate(err, "application", "delete")
	}
	return r.checkSwapped(ctx, result, key)
}

func (r *ApplicationRepository) ListByJob(ctx context.Context, jobID common.UUID) ([]application.Application, error) {
	return r.list(ctx, `SELECT `+applicationColumns+` FROM applications WHERE job_id = $1 ORDER BY last_updated DESC`, jobID)
}

func (r *ApplicationRepository) ListByDeveloper(ctx context.Context, developerID common.UUID) ([]application.Application, error) {
	return r.list(ctx, `SELECT `+applicationColumns+` FROM applications WHERE developer_id = $1 ORDER BY last_updated DESC`, developerID)
}

// RefreshSnapshot rewrites the denormalized job snapshot on every application
// of the job. Each touched row gets a version bump but keeps its status.
func (r *ApplicationRepository) RefreshSnapshot(ctx context.Context, jobID common.UUID, snapshot job.Snapshot) (int64, error) {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return 0, common.NewError(common.CodeInternal, "failed to encode job snapshot", err)
	}
	result, err := r.db.ExecContext(ctx, `UPDATE applications SET job_snapshot = $1, version = version + 1 WHERE job_id = $2`, string(raw), jobID)
	if err != nil {
		return 0, translate(err, "application", "refresh")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, common.NewError(common.CodeInternal, "failed to refresh application snapshots", err)
	}
	return rows, nil
}

func (r *ApplicationRepository) list(ctx context.Context, query string, arg any) ([]application.Application, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, translate(err, "application", "list")
	}
	defer rows.Close()
	var items []application.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan application", err)
		}
		items = append(items, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list applications", err)
	}
	return items, nil
}

// checkSwapped tells a lost compare-and-swap apart from a missing record.
func (r *ApplicationRepository) checkSwapped(ctx context.Context, result sql.Result, key application.Key) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to write application", err)
	}
	if rows > 0 {
		return nil
	}
	var version int64
	err = r.db.QueryRowContext(ctx, `SELECT version FROM applications WHERE developer_id = $1 AND job_id = $2`, key.DeveloperID, key.JobID).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return common.NewError(common.CodeNotFound, "application not found", err)
	}
	if err != nil {
		return translate(err, "application", "load")
	}
	return common.NewError(common.CodeConflict, "application was changed concurrently", nil)
}

func scanApplication(row scanner) (*application.Application, error) {
	var (
		app application.Application
		raw string
	)
	if err := row.Scan(&app.DeveloperID, &app.JobID, &app.CompanyID, &app.Status, &raw, &app.Version, &app.CreatedAt, &app.LastUpdated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(raw), &app.Job); err != nil {
		return nil, err
	}
	return &app, nil
}
