package postgres

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"swipehire/internal/common"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey || liteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// translate maps driver errors onto the common codes used by the engines.
func translate(err error, entity, op string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return common.NewError(common.CodeNotFound, entity+" not found", err)
	case isUniqueViolation(err):
		return common.NewError(common.CodeConflict, entity+" already exists", err)
	default:
		return common.NewError(common.CodeInternal, "failed to "+op+" "+entity, err)
	}
}

type scanner interface {
	Scan(dest ...any) error
}
