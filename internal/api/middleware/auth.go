package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/phrazzld/taskpilot-api/internal/api/shared"
	"github.com/phrazzld/taskpilot-api/internal/domain"
)

// CallerResolver turns a bearer token into the active user it belongs to.
type CallerResolver interface {
	ResolveCaller(ctx context.Context, token string) (*domain.User, error)
}

// CallerResolverFunc adapts a function to CallerResolver.
type CallerResolverFunc func(ctx context.Context, token string) (*domain.User, error)

// ResolveCaller calls f.
func (f CallerResolverFunc) ResolveCaller(ctx context.Context, token string) (*domain.User, error) {
	return f(ctx, token)
}

// AuthMiddleware provides bearer token authentication for routes.
type AuthMiddleware struct {
	resolver CallerResolver
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(resolver CallerResolver) *AuthMiddleware {
	return &AuthMiddleware{resolver: resolver}
}

// Authenticate resolves the caller from the Authorization header and adds
// the user to the request context for authorized requests.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		user, err := m.resolver.ResolveCaller(r.Context(), token)
		if err != nil {
			status := shared.StatusForKind(domain.KindOf(err))
			switch status {
			case http.StatusUnauthorized:
				shared.RespondWithErrorAndLog(w, r, status, "Could not validate credentials", err,
					shared.WithElevatedLogLevel())
			case http.StatusForbidden:
				shared.RespondWithErrorAndLog(w, r, status, "Inactive user account", err)
			case http.StatusNotFound:
				shared.RespondWithErrorAndLog(w, r, status, "User not found", err)
			default:
				shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Authentication error", err)
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(shared.WithUser(r.Context(), user)))
	})
}

// bearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetUser extracts the authenticated user from the request context.
func GetUser(r *http.Request) (*domain.User, bool) {
	return shared.UserFromContext(r.Context())
}
