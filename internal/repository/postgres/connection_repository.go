package postgres

import (
	"context"
	"database/sql"
	"errors"

	"swipehire/internal/common"
	"swipehire/internal/domain/connection"
)

const connectionColumns = `low_id, high_id, requester_id, state, version, created_at, updated_at`

type ConnectionRepository struct {
	db *sql.DB
}

func NewConnectionRepository(db *sql.DB) *ConnectionRepository {
	return &ConnectionRepository{db: db}
}

func (r *ConnectionRepository) Get(ctx context.Context, pair connection.Pair) (*connection.Connection, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+connectionColumns+` FROM connections WHERE low_id = $1 AND high_id = $2`, pair.Low, pair.High)
	var conn connection.Connection
	if err := scanConnection(row, &conn); err != nil {
		return nil, translate(err, "connection", "load")
	}
	return &conn, nil
}

func (r *ConnectionRepository) Create(ctx context.Context, conn connection.Connection) (*connection.Connection, error) {
	now := storedTime()
	conn.Version = 1
	conn.CreatedAt = now
	conn.UpdatedAt = now
	result, err := r.db.ExecContext(ctx, `INSERT INTO connections (`+connectionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (low_id, high_id) DO NOTHING`,
		conn.Pair.Low, conn.Pair.High, conn.RequesterID, conn.State, conn.Version, conn.CreatedAt, conn.UpdatedAt)
	if err != nil {
		return nil, translate(err, "connection", "create")
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return nil, common.NewError(common.CodeConflict, "connection already exists", nil)
	}
	return &conn, nil
}

func (r *ConnectionRepository) Update(ctx context.Context, conn connection.Connection, expectedVersion int64) (*connection.Connection, error) {
	conn.Version = expectedVersion + 1
	conn.UpdatedAt = storedTime()
	result, err := r.db.ExecContext(ctx, `UPDATE connections SET requester_id = $1, state = $2, version = $3, updated_at = $4
		WHERE low_id = $5 AND high_id = $6 AND version = $7`,
		conn.RequesterID, conn.State, conn.Version, conn.UpdatedAt, conn.Pair.Low, conn.Pair.High, expectedVersion)
	if err != nil {
		return nil, translate(err, "connection", "update")
	}
	if err := r.checkSwapped(ctx, result, conn.Pair); err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *ConnectionRepository) Delete(ctx context.Context, pair connection.Pair, expectedVersion int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM connections WHERE low_id = $1 AND high_id = $2 AND version = $3`,
		pair.Low, pair.High, expectedVersion)
	if err != nil {
		return translate(err, "connection", "delete")
	}
	return r.checkSwapped(ctx, result, pair)
}

func (r *ConnectionRepository) ListByMember(ctx context.Context, developerID common.UUID) ([]connection.Connection, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+connectionColumns+` FROM connections WHERE low_id = $1 OR high_id = $1 ORDER BY updated_at DESC`, developerID)
	if err != nil {
		return nil, translate(err, "connection", "list")
	}
	defer rows.Close()
	var items []connection.Connection
	for rows.Next() {
		var conn connection.Connection
		if err := scanConnection(rows, &conn); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan connection", err)
		}
		items = append(items, conn)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list connections", err)
	}
	return items, nil
}

func (r *ConnectionRepository) checkSwapped(ctx context.Context, result sql.Result, pair connection.Pair) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to write connection", err)
	}
	if rows > 0 {
		return nil
	}
	var version int64
	err = r.db.QueryRowContext(ctx, `SELECT version FROM connections WHERE low_id = $1 AND high_id = $2`, pair.Low, pair.High).Scan(&version)
	if errors.Is(err, sql.ErrNoRows) {
		return common.NewError(common.CodeNotFound, "connection not found", err)
	}
	if err != nil {
		return translate(err, "connection", "load")
	}
	return common.NewError(common.CodeConflict, "connection was changed concurrently", nil)
}

func scanConnection(row scanner, conn *connection.Connection) error {
	return row.Scan(&conn.Pair.Low, &conn.Pair.High, &conn.RequesterID, &conn.State, &conn.Version, &conn.CreatedAt, &conn.UpdatedAt)
}
