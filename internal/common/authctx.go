package common

import "context"

type ctxKey string

const (
	userIDKey  ctxKey = "auth/user-id"
	accountKey ctxKey = "auth/account-key"
)

// WithUserID stores the authenticated user identifier on the provided context.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// UserID extracts the authenticated user identifier from the context if present.
func UserID(ctx context.Context) (string, bool) {
	v := ctx.Value(userIDKey)
	if v == nil {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

// WithAccountKey stores the cart-scoping identity on the context. For logged
// in users this is the user id; for guests it is the anonymous cart id.
func WithAccountKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, accountKey, key)
}

// AccountKey extracts the cart-scoping identity from the context if present.
func AccountKey(ctx context.Context) (string, bool) {
	v := ctx.Value(accountKey)
	if v == nil {
		return "", false
	}
	key, ok := v.(string)
	return key, ok
}
