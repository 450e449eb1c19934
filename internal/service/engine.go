package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	appErrors "github.com/noah-isme/gym-ops-api/pkg/errors"
)

// DefaultOperationTimeout bounds an engine operation when no timeout is configured.
const DefaultOperationTimeout = 5 * time.Second

func operationTimeout(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultOperationTimeout
	}
	return d
}

// storageFailure normalises a repository error. Typed domain errors pass through; anything
// else, including an expired operation deadline, becomes PERSISTENCE_FAILURE.
func storageFailure(err error, message string) error {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Persistence(err, message)
}

// notFoundOr maps sql.ErrNoRows to a NOT_FOUND clone and everything else to storageFailure.
func notFoundOr(err error, template *appErrors.Error, notFoundMsg, failureMsg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(template, notFoundMsg)
	}
	return storageFailure(err, failureMsg)
}

func errorCode(err error) string {
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return appErrors.ErrPersistence.Code
	}
	return appErrors.ErrInternal.Code
}
