package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"patient-registration/internal/domain/entity"
	"patient-registration/internal/usecase"
	"patient-registration/pkg/response"
)

type contextKey string

const SessionKey contextKey = "session"

type AuthMiddleware struct {
	authUsecase usecase.AuthUsecase
}

func NewAuthMiddleware(authUsecase usecase.AuthUsecase) *AuthMiddleware {
	return &AuthMiddleware{
		authUsecase: authUsecase,
	}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		session, err := m.authUsecase.Authenticate(r.Context(), parts[1])
		if err != nil {
			switch {
			case errors.Is(err, usecase.ErrInvalidToken):
				response.Unauthorized(w, "Invalid or expired token")
			case errors.Is(err, usecase.ErrSessionRevoked):
				response.Unauthorized(w, "Session has been revoked")
			default:
				response.InternalServerError(w, "Failed to validate session")
			}
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

// WithSession stores the operator session in ctx.
func WithSession(ctx context.Context, session *entity.Session) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}

// GetSessionFromContext extracts the operator session from context. Requests
// that did not pass through Authenticate get an anonymous session.
func GetSessionFromContext(ctx context.Context) *entity.Session {
	session, ok := ctx.Value(SessionKey).(*entity.Session)
	if !ok || session == nil {
		return entity.Anonymous()
	}
	return session
}
