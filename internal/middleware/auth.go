package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/models"
)

type userCtxKey struct{}

// AccessTokenCookie names the cookie carrying the access token.
const AccessTokenCookie = "accessToken"

// UserFinder loads an account by id for session resolution.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// UserFromContext returns the authenticated user attached by the session
// middleware, if any.
func UserFromContext(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userCtxKey{}).(models.User)
	return user, ok
}

// WithUser attaches an authenticated user to the context. Exported for handler tests.
func WithUser(ctx context.Context, user models.User) context.Context {
	return context.WithValue(ctx, userCtxKey{}, user)
}

// TokenVerifier validates an access token and returns the embedded user id.
type TokenVerifier interface {
	VerifyAccessToken(token string) (string, error)
}

// RequireAuth resolves the request's access token (cookie or bearer header)
// to a user and attaches it to the context, rejecting the request with 401
// when that fails.
func RequireAuth(tokens TokenVerifier, users UserFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := resolveUser(r, tokens, users)
			if !ok {
				writeUnauthorized(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// OptionalAuth attaches the user when a valid token is present and otherwise
// lets the request through anonymously. Used by public endpoints that change
// shape for signed-in viewers.
func OptionalAuth(tokens TokenVerifier, users UserFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if user, ok := resolveUser(r, tokens, users); ok {
				r = r.WithContext(WithUser(r.Context(), user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func resolveUser(r *http.Request, tokens TokenVerifier, users UserFinder) (models.User, bool) {
	token := ExtractToken(r)
	if token == "" {
		return models.User{}, false
	}

	uid, err := tokens.VerifyAccessToken(token)
	if err != nil {
		return models.User{}, false
	}

	user, err := users.FindByID(r.Context(), uid)
	if err != nil {
		return models.User{}, false
	}

	return user, true
}

// ExtractToken pulls the access token from the accessToken cookie or the
// Authorization header, preferring the cookie.
func ExtractToken(r *http.Request) string {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const bearerPrefix = "Bearer "
	if strings.HasPrefix(header, bearerPrefix) {
		return strings.TrimSpace(header[len(bearerPrefix):])
	}
	return strings.TrimSpace(header)
}

func writeUnauthorized(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	body := map[string]any{
		"statusCode": http.StatusUnauthorized,
		"message":    "unauthorized request",
		"success":    false,
		"errors":     []string{},
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.FromContext(r.Context()).Error("encode unauthorized response", "error", err)
	}
}

// ensure the auth package's concrete service satisfies the verifier contract
var _ TokenVerifier = (*auth.TokenService)(nil)
