package contextkeys

import (
	"context"

	"github.com/w8990/album/internal/models"
)

type ctxKey int

const (
	identityKey ctxKey = iota
	tokenKey
	requestIDKey
)

func WithIdentity(ctx context.Context, identity *models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

func IdentityFrom(ctx context.Context) (*models.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*models.Identity)
	return identity, ok && identity != nil
}

// UserID returns the caller's id, or 0 for anonymous requests.
func UserID(ctx context.Context) int64 {
	if identity, ok := IdentityFrom(ctx); ok {
		return identity.ID
	}
	return 0
}

func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey).(string)
	return token
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
