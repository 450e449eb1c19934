package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneMatchesTemplate(t *testing.T) {
	err := Clone(ErrTrainerConflict, "trainer busy on monday")
	assert.True(t, errors.Is(err, ErrTrainerConflict))
	assert.False(t, errors.Is(err, ErrOutOfStock))
	assert.Equal(t, "trainer busy on monday", err.Error())
}

func TestWrappedErrorKeepsCause(t *testing.T) {
	err := Persistence(context.DeadlineExceeded, "failed to apply funds")
	assert.True(t, errors.Is(err, ErrPersistence))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Equal(t, http.StatusServiceUnavailable, err.Status)
}

func TestFromErrorNormalisesUnknown(t *testing.T) {
	appErr := FromError(fmt.Errorf("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)

	wrapped := fmt.Errorf("outer: %w", Clone(ErrNoSuchLoan, ""))
	assert.Equal(t, ErrNoSuchLoan.Code, FromError(wrapped).Code)
	assert.Nil(t, FromError(nil))
}
