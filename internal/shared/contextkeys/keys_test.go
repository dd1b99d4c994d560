//go:build unit
// +build unit

package contextkeys

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextKey_String(t *testing.T) {
	key := contextKey("testKey")
	assert.Equal(t, "campus-auth context key testKey", key.String())
}

func TestContextKeys_Usage(t *testing.T) {
	ctx := context.Background()
	ctx = context.WithValue(ctx, UserIDKey, "user-123")
	ctx = context.WithValue(ctx, UserEmailKey, "user@example.com")
	ctx = context.WithValue(ctx, SessionIDKey, "session-abc")
	ctx = context.WithValue(ctx, RequestIDKey, "req-456")
	ctx = context.WithValue(ctx, ComponentKey, "component-logger")
	ctx = context.WithValue(ctx, OperationKey, "operation-login")

	assert.Equal(t, "user-123", ctx.Value(UserIDKey))
	assert.Equal(t, "user@example.com", ctx.Value(UserEmailKey))
	assert.Equal(t, "session-abc", ctx.Value(SessionIDKey))
	assert.Equal(t, "req-456", ctx.Value(RequestIDKey))
	assert.Equal(t, "component-logger", ctx.Value(ComponentKey))
	assert.Equal(t, "operation-login", ctx.Value(OperationKey))
}
