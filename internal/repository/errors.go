package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/w8990/album/internal/apperror"
)

const uniqueViolation = "23505"

var constraintErrors = map[string]error{
	"users_username_active_key": apperror.ErrUsernameExists,
	"users_email_active_key":    apperror.ErrEmailExists,
}

// translate maps driver errors onto the taxonomy: missing rows become
// NotFound and known unique constraints become conflicts. Anything else is
// wrapped with op for the logs.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return apperror.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		if mapped, ok := constraintErrors[pqErr.Constraint]; ok {
			return mapped
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func checkAffected(op string, res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return apperror.ErrNotFound
	}
	return nil
}
