package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"gorm.io/gorm"
)

func TestMapCodes(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code codes.Code
		http int
	}{
		{"field", Invalid("action", "unknown action"), codes.InvalidArgument, http.StatusBadRequest},
		{"validation", fmt.Errorf("x: %w", ErrValidation), codes.InvalidArgument, http.StatusBadRequest},
		{"not found", NotFound("user 7"), codes.NotFound, http.StatusNotFound},
		{"gorm not found", gorm.ErrRecordNotFound, codes.NotFound, http.StatusNotFound},
		{"deadline", context.DeadlineExceeded, codes.DeadlineExceeded, http.StatusGatewayTimeout},
		{"persistence", Persistence("upsert interaction", errors.New("deadlock")), codes.Unavailable, http.StatusServiceUnavailable},
		{"conflict", Conflict("upsert interaction", errors.New("lock wait timeout")), codes.Aborted, http.StatusConflict},
		{"other", errors.New("boom"), codes.Internal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.code, status.Code(Map(tc.err)))
			assert.Equal(t, tc.http, HTTPStatus(tc.err))
		})
	}
}

func TestMapHidesStoreMessages(t *testing.T) {
	err := Map(Persistence("create match", errors.New("Error 1213: Deadlock found")))
	assert.NotContains(t, err.Error(), "Deadlock")

	err = Map(errors.New("dial tcp 10.0.0.1:3306: refused"))
	assert.NotContains(t, err.Error(), "10.0.0.1")
}

func TestMapAttachesDetails(t *testing.T) {
	st, ok := status.FromError(Map(Persistence("upsert", errors.New("io"))))
	require.True(t, ok)
	require.Len(t, st.Details(), 1)
	info, ok := st.Details()[0].(*errdetails.RetryInfo)
	require.True(t, ok)
	assert.Equal(t, RetryDelay, info.GetRetryDelay().AsDuration())

	st, _ = status.FromError(Map(Invalid("limit", "must be positive")))
	require.Len(t, st.Details(), 1)
	br, ok := st.Details()[0].(*errdetails.BadRequest)
	require.True(t, ok)
	assert.Equal(t, "limit", br.GetFieldViolations()[0].GetField())
}

func TestClassification(t *testing.T) {
	err := Persistence("op", context.DeadlineExceeded)
	assert.True(t, errors.Is(err, ErrPersistence))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	conflict := Conflict("upsert", errors.New("Error 1213: Deadlock found"))
	assert.True(t, errors.Is(conflict, ErrConflict))
	assert.False(t, errors.Is(conflict, ErrPersistence))
	assert.Nil(t, Persistence("op", nil))
	assert.NoError(t, Map(nil))
}
