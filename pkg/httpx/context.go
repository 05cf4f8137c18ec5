package httpx

import "context"

type ctxKey string

const CtxKeyUserID ctxKey = "user_id"

// WithUserID attaches the authenticated user to ctx.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, CtxKeyUserID, userID)
}

// UserIDFromContext returns the authenticated user, or "" for anonymous requests.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(CtxKeyUserID).(string)
	return id
}
