package httpapi

import "context"

type ctxKey string

const userIDKey ctxKey = "ev.userID"

// WithUserID stores the authenticated user id in the context.
func WithUserID(ctx context.Context, uid int64) context.Context {
	return context.WithValue(ctx, userIDKey, uid)
}

// UserIDFromCtx fetches the authenticated user id from the context.
func UserIDFromCtx(ctx context.Context) (int64, bool) {
	v := ctx.Value(userIDKey)
	if v == nil {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
