package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/taskforge/taskforge-backend/internal/models"
	"github.com/taskforge/taskforge-backend/internal/repository"
	"github.com/taskforge/taskforge-backend/internal/services"
)

type contextKey string

const (
	userContextKey  contextKey = "user"
	tokenContextKey contextKey = "token"
)

// Auth resolves bearer tokens to a concrete user and session for protected
// routes.
type Auth struct {
	tokens *services.TokenService
	users  repository.UserRepository
}

func NewAuth(tokens *services.TokenService, users repository.UserRepository) *Auth {
	return &Auth{tokens: tokens, users: users}
}

// RequireAuth verifies the Authorization header, confirms the token is still
// in the user's active set, and attaches user and raw token to the request
// context. Every failure gets the same 401 so the response never reveals
// whether a token was malformed, expired, or revoked.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			unauthorized(w)
			return
		}

		userID, err := a.tokens.Parse(token)
		if err != nil {
			unauthorized(w)
			return
		}

		user, err := a.users.FindByID(r.Context(), userID)
		if err != nil {
			unauthorized(w)
			return
		}

		// A valid signature is not enough: the token must still be in
		// the active set, or it has been revoked by a logout.
		if !user.HasToken(token) {
			unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		ctx = context.WithValue(ctx, tokenContextKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"please authenticate"}`))
}

// UserFromContext returns the authenticated user attached by RequireAuth.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok
}

// TokenFromContext returns the raw bearer token attached by RequireAuth.
// Logout needs it to remove exactly the presented session.
func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(tokenContextKey).(string)
	return token, ok
}
