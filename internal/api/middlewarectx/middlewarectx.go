// Package middlewarectx contains the HTTP middleware: bearer-token
// authentication, the admin and subscription gates and request rate
// limiting. The authenticated user travels in the request context.
package middlewarectx

import (
	"context"

	"github.com/isdev18/vitrine-do-vendedor/internal/models"
)

type ctxKey int

const userKey ctxKey = iota

// WithUser stores the authenticated user in the context.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the authenticated user, nil on anonymous
// requests.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}
