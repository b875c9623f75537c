package repository

import (
	"errors"
	"log/slog"

	"github.com/lib/pq"

	"github.com/maheshrc27/postsync/internal/models"
)

const pqForeignKeyViolation = "23503"

func storageError(op string, err error) error {
	serr := &models.StorageError{Op: op, Err: err}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		serr.Code = string(pqErr.Code)
	}
	slog.Error("storage failure", "op", op, "code", serr.Code, "error", err)
	return serr
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation
}
