package contextutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceID(t *testing.T) {
	assert.Equal(t, "unknown-trace-id", TraceIDFromContext(context.Background()))

	ctx := WithTraceID(context.Background(), "req-1")
	assert.Equal(t, "req-1", TraceIDFromContext(ctx))

	generated := TraceIDFromContext(WithTraceID(context.Background(), ""))
	_, err := uuid.Parse(generated)
	require.NoError(t, err)
}
