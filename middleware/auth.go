// Package middleware holds the HTTP middleware shared by every route group:
// bearer authentication, request logging and panic recovery.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"medstore/models"
	"medstore/services"
)

type contextKey string

const (
	userContextKey  contextKey = "user"
	adminContextKey contextKey = "admin"
)

// UserAuthenticator resolves a customer access token
type UserAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// AdminAuthenticator resolves an admin access token
type AdminAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Admin, error)
}

// AuthMiddleware verifies bearer tokens and attaches the caller to the request context
type AuthMiddleware struct {
	users  UserAuthenticator
	admins AdminAuthenticator
	logger *zap.Logger
}

func NewAuthMiddleware(users UserAuthenticator, admins AdminAuthenticator, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		users:  users,
		admins: admins,
		logger: logger,
	}
}

// RequireUser rejects requests without a valid customer token
func (a *AuthMiddleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "No authentication token provided")
			return
		}

		user, err := a.users.Authenticate(r.Context(), token)
		if err != nil {
			a.reject(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
	})
}

// RequireAdmin rejects requests without a valid admin token
func (a *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "No authentication token provided")
			return
		}

		admin, err := a.admins.Authenticate(r.Context(), token)
		if err != nil {
			a.reject(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithAdmin(r.Context(), admin)))
	})
}

// OptionalAdmin attaches the admin when a valid token is present and lets
// the request through either way. Handlers decide what an anonymous
// caller may do.
func (a *AuthMiddleware) OptionalAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token, ok := bearerToken(r); ok {
			if admin, err := a.admins.Authenticate(r.Context(), token); err == nil {
				r = r.WithContext(WithAdmin(r.Context(), admin))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (a *AuthMiddleware) reject(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrInvalidToken) {
		writeError(w, http.StatusUnauthorized, "Invalid or expired token")
		return
	}
	a.logger.Error("authenticate request", zap.String("path", r.URL.Path), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

func bearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

// WithUser stores the authenticated customer in ctx
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the customer attached by RequireUser
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok && user != nil
}

// WithAdmin stores the authenticated admin in ctx
func WithAdmin(ctx context.Context, admin *models.Admin) context.Context {
	return context.WithValue(ctx, adminContextKey, admin)
}

// AdminFromContext returns the admin attached by RequireAdmin or OptionalAdmin
func AdminFromContext(ctx context.Context) (*models.Admin, bool) {
	admin, ok := ctx.Value(adminContextKey).(*models.Admin)
	return admin, ok && admin != nil
}
