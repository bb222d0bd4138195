package domain

import "context"

// User is the authenticated principal a trip is created for.
// ID is opaque to this code; it is stored as the record owner.
// AccessToken is the caller's bearer token, forwarded to the data service so
// its own access rules apply. It may be empty.
type User struct {
	ID          string
	AccessToken string
}

type userKey struct{}

// WithUser returns a copy of ctx carrying u.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFrom returns the user stored in ctx by WithUser.
func UserFrom(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userKey{}).(User)
	return u, ok && u.ID != ""
}
