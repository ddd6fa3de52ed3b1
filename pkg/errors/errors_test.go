// Package errors_test provides unit tests for the AppError type, factory
// functions, and error-chain helpers defined in pkg/errors/errors.go.
package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/kcfgraph/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// TestNew
// ─────────────────────────────────────────────────────────────────────────────

func TestNew_FieldsAreSetCorrectly(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		code    errors.ErrorCode
		message string
	}{
		{"internal error", errors.CodeInternal, "unexpected failure"},
		{"format violation", errors.ErrCodeKCFFormatViolation, "unknown bond order"},
		{"invalid param", errors.CodeInvalidParam, "record must not be empty"},
		{"model state", errors.ErrCodeModelStateInvalid, "unexpected state parameter"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ae := errors.New(tc.code, tc.message)

			require.NotNil(t, ae)
			assert.Equal(t, tc.code, ae.Code)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, ae.Detail)
			assert.Nil(t, ae.Cause)
			assert.NotEmpty(t, ae.Stack)
		})
	}
}

func TestNewf_FormatsMessage(t *testing.T) {
	t.Parallel()

	ae := errors.Newf(errors.ErrCodeModelStateMismatch, "missing parameter %q", "module_0.bias")
	assert.Equal(t, `missing parameter "module_0.bias"`, ae.Message)
}

// ─────────────────────────────────────────────────────────────────────────────
// TestWrap
// ─────────────────────────────────────────────────────────────────────────────

func TestWrap_NilErrReturnsNil(t *testing.T) {
	t.Parallel()

	assert.Nil(t, errors.Wrap(nil, errors.CodeInternal, "should not matter"))
}

func TestWrap_CauseChainIsPreserved(t *testing.T) {
	t.Parallel()

	root := stderrors.New("connection refused")
	wrapped := errors.Wrap(root, errors.ErrCodeStorageError, "fetch failed")

	require.NotNil(t, wrapped)
	assert.Equal(t, errors.ErrCodeStorageError, wrapped.Code)
	assert.Equal(t, root, stderrors.Unwrap(wrapped))
	assert.True(t, stderrors.Is(wrapped, root))
}

func TestWrap_PreservesOriginalCodeWhenCodeUnknown(t *testing.T) {
	t.Parallel()

	inner := errors.FormatViolation("malformed tag")
	outer := errors.Wrap(inner, errors.CodeUnknown, "record C00001")

	assert.Equal(t, errors.ErrCodeKCFFormatViolation, outer.Code)
}

func TestWrap_OverridesCodeWhenExplicit(t *testing.T) {
	t.Parallel()

	inner := errors.FormatViolation("malformed tag")
	outer := errors.Wrap(inner, errors.ErrCodeKCFBatchFailed, "batch aborted")

	assert.Equal(t, errors.ErrCodeKCFBatchFailed, outer.Code)
	assert.True(t, errors.IsFormatViolation(outer), "inner code must stay reachable")
}

// ─────────────────────────────────────────────────────────────────────────────
// TestError_Method
// ─────────────────────────────────────────────────────────────────────────────

func TestError_Format(t *testing.T) {
	t.Parallel()

	ae := errors.FormatViolation("unknown bond order")
	assert.Equal(t, "[KCF_001] unknown bond order", ae.Error())

	detailed := ae.WithDetail("line 12")
	assert.Equal(t, "[KCF_001] unknown bond order: line 12", detailed.Error())

	caused := errors.Wrap(stderrors.New("eof"), errors.ErrCodeStorageError, "read")
	assert.Equal(t, "[STORE_001] read: eof", caused.Error())
}

// ─────────────────────────────────────────────────────────────────────────────
// Fluent builders
// ─────────────────────────────────────────────────────────────────────────────

func TestWithDetail_SetsDetailOnCopy(t *testing.T) {
	t.Parallel()

	original := errors.NotFound("record missing")
	detailed := original.WithDetailf("key=%s", "kcf/C00001.kcf")

	assert.Empty(t, original.Detail)
	assert.Equal(t, "key=kcf/C00001.kcf", detailed.Detail)
	assert.Equal(t, original.Code, detailed.Code)
}

func TestWithDetail_NilReceiver(t *testing.T) {
	t.Parallel()

	var ae *errors.AppError
	assert.Nil(t, ae.WithDetail("x"))
	assert.Nil(t, ae.WithCause(stderrors.New("x")))
}

func TestWithCause_AttachesCause(t *testing.T) {
	t.Parallel()

	cause := stderrors.New("strconv: invalid syntax")
	ae := errors.FormatViolation("bad coordinate").WithCause(cause)
	assert.ErrorIs(t, ae, cause)
}

// ─────────────────────────────────────────────────────────────────────────────
// Inspection helpers
// ─────────────────────────────────────────────────────────────────────────────

func TestIsCode_TraversesStdlibWrapping(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("parse record: %w", errors.FormatViolation("bad"))
	assert.True(t, errors.IsFormatViolation(err))
	assert.False(t, errors.IsCode(err, errors.CodeInternal))
	assert.False(t, errors.IsFormatViolation(nil))
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	assert.True(t, errors.IsNotFound(errors.NotFound("x")))
	assert.True(t, errors.IsNotFound(errors.New(errors.ErrCodeObjectNotFound, "x")))
	assert.False(t, errors.IsNotFound(errors.Internal("x")))
}

func TestGetCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, errors.CodeOK, errors.GetCode(nil))
	assert.Equal(t, errors.CodeUnknown, errors.GetCode(stderrors.New("plain")))
	assert.Equal(t, errors.CodeInvalidParam, errors.GetCode(errors.InvalidParam("x")))
}

//Personal.AI order the ending
