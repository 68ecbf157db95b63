package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotsift/dotsift/pkg/errors"
)

func TestNew(t *testing.T) {
	err := errors.New(errors.ErrConfigInvalid, "bad rule")
	assert.Equal(t, "[CONFIG_INVALID] bad rule", err.Error())
	assert.Equal(t, errors.ErrConfigInvalid, err.Code)
}

func TestNewf(t *testing.T) {
	err := errors.Newf(errors.ErrOSClassInvalid, "unknown os class %q", "beos")
	assert.Equal(t, `[OS_CLASS_INVALID] unknown os class "beos"`, err.Error())
}

func TestWrap(t *testing.T) {
	t.Run("wraps_and_unwraps", func(t *testing.T) {
		inner := fmt.Errorf("underlying failure")
		err := errors.Wrap(inner, errors.ErrConfigParse, "cannot parse")

		assert.Equal(t, "[CONFIG_PARSE] cannot parse: underlying failure", err.Error())
		assert.Equal(t, inner, stderrors.Unwrap(err))
	})

	t.Run("nil_passthrough", func(t *testing.T) {
		assert.Nil(t, errors.Wrap(nil, errors.ErrInternal, "x"))
		assert.Nil(t, errors.Wrapf(nil, errors.ErrInternal, "x %d", 1))
	})
}

func TestIs(t *testing.T) {
	err := errors.New(errors.ErrPatternInvalid, "bad glob")

	assert.True(t, stderrors.Is(err, errors.New(errors.ErrPatternInvalid, "other message")))
	assert.False(t, stderrors.Is(err, errors.New(errors.ErrConfigParse, "bad glob")))
}

func TestIsErrorCode(t *testing.T) {
	inner := errors.New(errors.ErrOSClassInvalid, "unknown os class")
	wrapped := errors.Wrapf(inner, errors.ErrConfigInvalid, "rule %d", 3)

	// Both the outer and the wrapped code are visible.
	assert.True(t, errors.IsErrorCode(wrapped, errors.ErrConfigInvalid))
	assert.True(t, errors.IsErrorCode(wrapped, errors.ErrOSClassInvalid))
	assert.False(t, errors.IsErrorCode(wrapped, errors.ErrPatternInvalid))

	assert.False(t, errors.IsErrorCode(fmt.Errorf("plain"), errors.ErrConfigInvalid))
	assert.False(t, errors.IsErrorCode(nil, errors.ErrConfigInvalid))
}

func TestGetErrorCode(t *testing.T) {
	require.Equal(t, errors.ErrConfigLoad, errors.GetErrorCode(errors.New(errors.ErrConfigLoad, "x")))
	require.Equal(t, errors.ErrUnknown, errors.GetErrorCode(fmt.Errorf("plain")))
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrConfigInvalid, "bad rule").
		WithDetail("rule", 2).
		WithDetail("key", "host")

	assert.Equal(t, 2, err.Details["rule"])
	assert.Equal(t, "host", err.Details["key"])
}
