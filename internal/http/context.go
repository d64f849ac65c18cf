package http

import (
	"context"

	"github.com/Djo9111/reporting-front/internal/application"
)

type contextKey string

const sessionContextKey contextKey = "session"

// ContextWithSession returns a derived context carrying the authenticated session.
func ContextWithSession(ctx context.Context, info application.SessionInfo) context.Context {
	return context.WithValue(ctx, sessionContextKey, info)
}

// SessionFromContext extracts the authenticated session from context if available.
func SessionFromContext(ctx context.Context) (application.SessionInfo, bool) {
	info, ok := ctx.Value(sessionContextKey).(application.SessionInfo)
	return info, ok
}
