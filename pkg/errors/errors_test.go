package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorScrubsUnknownErrors(t *testing.T) {
	cause := fmt.Errorf("pq: relation \"students\" does not exist")
	appErr := FromError(cause)

	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Equal(t, ErrInternal.Message, appErr.Message)
	assert.ErrorIs(t, appErr, cause)
}

func TestCloneMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("assign: %w", Clone(ErrNotFound, "internship not found"))

	assert.True(t, stdErrors.Is(err, ErrNotFound))
	assert.False(t, stdErrors.Is(err, ErrDuplicate))
	assert.Equal(t, "internship not found", FromError(err).Message)
}

func TestDuplicateIsBadRequest(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, ErrDuplicate.Status)
}
