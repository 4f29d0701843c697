// Test Type: Unit Test
// Description: Tests for error creation, wrapping and code inspection helpers

package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/arthur-debert/dodex/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    errors.ErrorCode
		message string
		wantStr string
	}{
		{
			name:    "not_found_error",
			code:    errors.ErrNotFound,
			message: "file not found",
			wantStr: "[NOT_FOUND] file not found",
		},
		{
			name:    "pattern_error",
			code:    errors.ErrPatternInvalid,
			message: "bad pattern",
			wantStr: "[PATTERN_INVALID] bad pattern",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errors.New(tt.code, tt.message)

			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.NotNil(t, err.Details)
			assert.Equal(t, tt.wantStr, err.Error())
		})
	}
}

func TestNewf(t *testing.T) {
	err := errors.Newf(errors.ErrWrite, "cannot write %s (%d links)", "A/_A.md", 3)
	assert.Equal(t, "cannot write A/_A.md (3 links)", err.Message)
}

func TestWrap(t *testing.T) {
	baseErr := stderrors.New("base error")

	t.Run("wrap_non_nil_error", func(t *testing.T) {
		err := errors.Wrap(baseErr, errors.ErrInternal, "internal error")

		require.NotNil(t, err)
		assert.Equal(t, errors.ErrInternal, err.Code)
		assert.Same(t, baseErr, err.Wrapped)
		assert.Equal(t, "[INTERNAL] internal error: base error", err.Error())
		assert.True(t, stderrors.Is(err, baseErr))
	})

	t.Run("wrap_nil_error_returns_nil", func(t *testing.T) {
		assert.Nil(t, errors.Wrap(nil, errors.ErrInternal, "internal error"))
		assert.Nil(t, errors.Wrapf(nil, errors.ErrInternal, "internal %s", "error"))
	})
}

func TestWithDetail(t *testing.T) {
	err := errors.New(errors.ErrWrite, "write failed").
		WithDetail("path", "A/index.md").
		WithDetail("mode", "index")

	assert.Equal(t, "A/index.md", err.Details["path"])
	assert.Equal(t, "index", err.Details["mode"])
	assert.Equal(t, err.Details, errors.GetErrorDetails(err))
}

func TestIs(t *testing.T) {
	err1 := errors.New(errors.ErrCanvasParse, "error 1")
	err2 := errors.New(errors.ErrCanvasParse, "error 2")
	err3 := errors.New(errors.ErrCanvasRead, "error 3")

	t.Run("same_code_is_equal", func(t *testing.T) {
		assert.True(t, err1.Is(err2))
	})

	t.Run("different_code_not_equal", func(t *testing.T) {
		assert.False(t, err1.Is(err3))
	})

	t.Run("works_with_errors_Is", func(t *testing.T) {
		assert.True(t, stderrors.Is(fmt.Errorf("outer: %w", err1), err2))
	})
}

func TestIsErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     errors.ErrorCode
		expected bool
	}{
		{
			name:     "matching_code",
			err:      errors.New(errors.ErrWrite, "write"),
			code:     errors.ErrWrite,
			expected: true,
		},
		{
			name:     "different_code",
			err:      errors.New(errors.ErrWrite, "write"),
			code:     errors.ErrInternal,
			expected: false,
		},
		{
			name:     "wrapped_error",
			err:      fmt.Errorf("ctx: %w", errors.Wrap(stderrors.New("base"), errors.ErrFileAccess, "denied")),
			code:     errors.ErrFileAccess,
			expected: true,
		},
		{
			name:     "non_dodex_error",
			err:      stderrors.New("standard error"),
			code:     errors.ErrNotFound,
			expected: false,
		},
		{
			name:     "nil_error",
			err:      nil,
			code:     errors.ErrNotFound,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, errors.IsErrorCode(tt.err, tt.code))
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, errors.ErrCanvasRead, errors.GetErrorCode(errors.New(errors.ErrCanvasRead, "read")))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(stderrors.New("standard error")))
	assert.Equal(t, errors.ErrUnknown, errors.GetErrorCode(nil))
}

func TestDescribe(t *testing.T) {
	for _, code := range []errors.ErrorCode{
		errors.ErrPatternInvalid,
		errors.ErrCanvasParse,
		errors.ErrCanvasRead,
		errors.ErrWrite,
	} {
		assert.NotEqual(t, errors.Describe(errors.ErrUnknown), errors.Describe(code), code)
	}
}
