package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimitError_MessageNamesActualAndMax(t *testing.T) {
	err := &LimitError{What: "page count", Unit: "pages", Actual: 120, Max: 100}

	assert.Contains(t, err.Error(), "120")
	assert.Contains(t, err.Error(), "100")
	assert.Contains(t, err.Error(), "page count")
}

func TestLimitError_IsValidation(t *testing.T) {
	var err error = &LimitError{What: "file size", Unit: "bytes", Actual: 2, Max: 1}

	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.True(t, IsValidation(err))

	var limitErr *LimitError
	assert.True(t, errors.As(err, &limitErr))
	assert.Equal(t, int64(2), limitErr.Actual)
}

func TestProcessError_Unwrap(t *testing.T) {
	cause := errors.New("model timed out")
	var err error = &ProcessError{Stage: "embed", Err: cause}

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "embed")
	assert.False(t, IsValidation(err))
}

func TestIsValidation_Sentinels(t *testing.T) {
	assert.True(t, IsValidation(ErrEmptyDocument))
	assert.True(t, IsValidation(ErrUnsupportedType))
	assert.False(t, IsValidation(ErrIndexCorrupt))
	assert.False(t, IsValidation(errors.New("disk full")))
}
