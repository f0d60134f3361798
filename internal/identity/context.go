// Package identity threads the authenticated user through request contexts.
// The resolved identity is always explicit call state, never a global.
package identity

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
)

type userIDKey struct{}

// WithUserID stores the authenticated user's ID in the context.
func WithUserID(ctx context.Context, userID snowflake.ID) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the authenticated user's ID, if set.
func UserIDFromContext(ctx context.Context) (snowflake.ID, bool) {
	if ctx == nil {
		return 0, false
	}

	switch typed := ctx.Value(userIDKey{}).(type) {
	case snowflake.ID:
		if typed != 0 {
			return typed, true
		}
	case int64:
		if typed != 0 {
			return snowflake.ID(typed), true
		}
	case string:
		parsed, err := snowflake.ParseString(strings.TrimSpace(typed))
		if err == nil && parsed != 0 {
			return parsed, true
		}
	}
	return 0, false
}
