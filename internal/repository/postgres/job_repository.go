package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"swipehire/internal/common"
	"swipehire/internal/domain/job"
)

type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) GetByID(ctx context.Context, id common.UUID) (*job.Job, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, company_id, snapshot, updated_at FROM jobs WHERE id = $1`, id)
	var (
		j   job.Job
		raw string
	)
	if err := row.Scan(&j.ID, &j.CompanyID, &raw, &j.UpdatedAt); err != nil {
		return nil, translate(err, "job", "load")
	}
	if err := json.Unmarshal([]byte(raw), &j.Snapshot); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to decode job snapshot", err)
	}
	return &j, nil
}

func (r *JobRepository) Save(ctx context.Context, j job.Job) (*job.Job, error) {
	raw, err := json.Marshal(j.Snapshot)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to encode job snapshot", err)
	}
	j.UpdatedAt = time.Now().UTC()
	_, err = r.db.ExecContext(ctx, `INSERT INTO jobs (id, company_id, snapshot, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET company_id = excluded.company_id, snapshot = excluded.snapshot, updated_at = excluded.updated_at`,
		j.ID, j.CompanyID, string(raw), j.UpdatedAt)
	if err != nil {
		return nil, translate(err, "job", "save")
	}
	return &j, nil
}
