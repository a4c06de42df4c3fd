package middleware

import (
	"context"
	"net/http"
	"strings"

	"swipehire/internal/common"
	"swipehire/internal/domain/session"
	"swipehire/internal/http/response"
	"swipehire/internal/security"
)

type contextKey string

const contextSessionKey contextKey = "session"

// accessTokenParam carries the token on WebSocket upgrades, where browsers
// cannot set an Authorization header.
const accessTokenParam = "access_token"

type AuthMiddleware struct {
	jwt *security.JWTProvider
}

func NewAuthMiddleware(jwt *security.JWTProvider) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err != nil {
			response.Error(w, err)
			return
		}
		sess, err := m.jwt.Session(token)
		if err != nil {
			response.Error(w, common.NewError(common.CodeUnauthorized, "invalid token", err))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
	})
}

func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		if token := r.URL.Query().Get(accessTokenParam); token != "" {
			return token, nil
		}
		return "", common.NewError(common.CodeUnauthorized, "missing authorization header", nil)
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", common.NewError(common.CodeUnauthorized, "invalid authorization header", nil)
	}
	return strings.TrimSpace(parts[1]), nil
}

func RequireRole(role session.Role) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := SessionFromContext(r.Context())
			if !ok {
				response.Error(w, common.NewError(common.CodeUnauthorized, "unauthorized", nil))
				return
			}
			if sess.Role != role {
				response.Error(w, common.NewError(common.CodeForbidden, "insufficient role", nil))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithSession(ctx context.Context, sess session.Session) context.Context {
	return context.WithValue(ctx, contextSessionKey, sess)
}

func SessionFromContext(ctx context.Context) (session.Session, bool) {
	sess, ok := ctx.Value(contextSessionKey).(session.Session)
	return sess, ok
}
