package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/honeytoast/trip-planner/internal/domain"
)

// AccessTokenCookie is the cookie Supabase's browser client stores the
// session's access token in.
const AccessTokenCookie = "sb-access-token"

var errNoToken = errors.New("no access token")

// NewIdentity returns a middleware that resolves the current user from an
// HS256-signed access token and stores it in the request context with
// domain.WithUser. The token is read from the Authorization bearer header,
// falling back to the AccessTokenCookie. Requests without a valid token
// with a subject are rejected with 401.
func NewIdentity(secret []byte) func(http.Handler) http.Handler {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	keyFunc := func(*jwt.Token) (any, error) { return secret, nil }

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := accessToken(r)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized", "missing access token")
				return
			}

			var claims jwt.RegisteredClaims
			if _, err := parser.ParseWithClaims(raw, &claims, keyFunc); err != nil || claims.Subject == "" {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid access token")
				return
			}

			if seen, ok := r.Context().Value(seenUserKey{}).(*seenUser); ok {
				seen.id = claims.Subject
			}
			ctx := domain.WithUser(r.Context(), domain.User{ID: claims.Subject, AccessToken: raw})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// accessToken extracts the raw token, header first.
func accessToken(r *http.Request) (string, error) {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, tok, ok := strings.Cut(h, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tok) == "" {
			return "", errNoToken
		}
		return strings.TrimSpace(tok), nil
	}
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value, nil
	}
	return "", errNoToken
}

// seenUser lets the request logger, which runs outside Identity, learn the
// user ID resolved further down the chain.
type seenUser struct{ id string }

type seenUserKey struct{}

func withSeenUser(ctx context.Context, s *seenUser) context.Context {
	return context.WithValue(ctx, seenUserKey{}, s)
}
