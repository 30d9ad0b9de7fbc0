package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/libriahq/libria/internal/server/auth"
)

type identityKey struct{}

// WithIdentity returns a context carrying the caller identity.
func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFromContext returns the caller identity set by AuthMiddleware,
// anonymous when none was set.
func IdentityFromContext(ctx context.Context) auth.Identity {
	if id, ok := ctx.Value(identityKey{}).(auth.Identity); ok {
		return id
	}
	return auth.Anonymous()
}

// AuthMiddleware resolves the optional bearer token into a caller identity.
// Requests without a token proceed as anonymous; per-operation handlers
// decide whether anonymous access is acceptable. A token that is present but
// invalid is rejected outright.
func AuthMiddleware(secretKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), auth.Anonymous())))
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				WriteError(w, http.StatusUnauthorized, "unauthenticated", "malformed authorization header")
				return
			}

			id, err := auth.IdentityFromToken(token, []byte(secretKey))
			if err != nil {
				WriteError(w, http.StatusUnauthorized, "unauthenticated", "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
