package auth

import (
	"context"
)

type userKeyType struct{}

var userKey userKeyType

// User is the ambient identity of the request that triggered an
// operation. Stage workers capture it at dispatch time so downstream
// clients stay tenant-aware off the request goroutine.
type User struct {
	UserID string
	Tenant string
	Locale string
}

func UserFromContext(ctx context.Context) (User, bool) {
	val := ctx.Value(userKey)
	if val == nil {
		return User{}, false
	}
	return val.(User), true
}

func NewUserContext(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userKey, u)
}
