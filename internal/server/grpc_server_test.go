package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/oggyb/muzz-matcher/internal/logger"
	"github.com/oggyb/muzz-matcher/internal/server"
)

var debugJSON = logger.Config{Level: "debug", Format: logger.FormatJSON}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestRequestLoggerKeepsIncomingID(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(debugJSON, &buf)
	intercept := server.RequestLogger(log)

	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(server.RequestIDKey, "req-123"))
	info := &grpc.UnaryServerInfo{FullMethod: "/muzz.explore.ExploreService/Discover"}

	called := false
	resp, err := intercept(ctx, "in", info, func(ctx context.Context, req any) (any, error) {
		called = true
		return "out", nil
	})
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, "out", resp)

	entry := lastEntry(t, &buf)
	assert.Equal(t, "req-123", entry["req_id"])
	assert.Equal(t, info.FullMethod, entry["method"])
	assert.Equal(t, "OK", entry["code"])
}

func TestRequestLoggerGeneratesIDAndLogsFailures(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(debugJSON, &buf)
	intercept := server.RequestLogger(log)

	info := &grpc.UnaryServerInfo{FullMethod: "/muzz.explore.ExploreService/RecordAction"}
	_, err := intercept(context.Background(), nil, info, func(context.Context, any) (any, error) {
		return nil, status.Error(codes.NotFound, "user not found")
	})
	require.Error(t, err)

	entry := lastEntry(t, &buf)
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "NotFound", entry["code"])
	assert.Len(t, entry["req_id"], 36)
}
