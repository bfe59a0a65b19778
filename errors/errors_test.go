package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_New(t *testing.T) {
	err := New(ErrCodeClient, "boom")
	assert.Equal(t, ErrCodeClient, err.Code)
	assert.Equal(t, "boom", err.Message)
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{"without cause", New(ErrCodeDisposed, "closed"), "OBJECT_DISPOSED: closed"},
		{"with cause", Client("read failed", io.ErrUnexpectedEOF), "CLIENT_ERROR: read failed (cause: unexpected EOF)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestArgumentNull_NamesParam(t *testing.T) {
	err := ArgumentNull("client")
	assert.Equal(t, ErrCodeArgumentNull, err.Code)
	assert.Equal(t, "client", Param(err))
	assert.Contains(t, err.Error(), `"client"`)
	assert.True(t, IsArgumentNull(err))
}

func TestInvalidArgument_NamesParam(t *testing.T) {
	err := InvalidArgument("credential", "cannot mix a credential cache with other credentials")
	assert.Equal(t, "credential", Param(err))
	assert.True(t, IsInvalidArgument(err))
	assert.False(t, IsArgumentNull(err))
}

func TestParam_WrappedError(t *testing.T) {
	wrapped := fmt.Errorf("bind: %w", ArgumentNull("resultType"))
	assert.Equal(t, "resultType", Param(wrapped))
	assert.Empty(t, Param(stderrors.New("plain")))
}

func TestClient_KeepsCause(t *testing.T) {
	cause := stderrors.New("invalid character")
	err := Client("deserialize response", cause)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause, err.Unwrap())
}

func TestHasCode_FollowsCauseChain(t *testing.T) {
	inner := UnsupportedContent("application/octet-stream", "main.User")
	outer := Client("no deserializer", inner)
	assert.True(t, IsClient(outer))
	assert.True(t, IsUnsupportedContent(outer), "cause chain should expose UNSUPPORTED_CONTENT")
	assert.False(t, IsDisposed(outer))
}

func TestAppError_Is(t *testing.T) {
	err := Disposed("response stream")
	assert.ErrorIs(t, err, &AppError{Code: ErrCodeDisposed})
	assert.NotErrorIs(t, err, &AppError{Code: ErrCodeClient})
}

func TestCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, CheckContext(ctx))
	cancel()
	err := CheckContext(ctx)
	require.True(t, IsCanceled(err))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithDetails(t *testing.T) {
	err := New(ErrCodeClient, "x").WithDetail("a", 1).WithDetails(map[string]any{"b": 2})
	assert.Equal(t, 1, err.Details["a"])
	assert.Equal(t, 2, err.Details["b"])
}

func TestAsAppError(t *testing.T) {
	_, ok := AsAppError(stderrors.New("plain"))
	assert.False(t, ok)

	appErr, ok := AsAppError(fmt.Errorf("wrap: %w", MissingField("base_url")))
	require.True(t, ok)
	assert.Equal(t, ErrCodeMissingField, appErr.Code)
}
