package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/taskforge/taskforge-backend/internal/models"
	"github.com/taskforge/taskforge-backend/internal/repository"
)

// TokenTTL is the fixed validity window of every issued session token.
const TokenTTL = 7 * 24 * time.Hour

// ErrInvalidToken covers every token verification failure: bad signature,
// expired, malformed, or wrong claims shape.
var ErrInvalidToken = errors.New("invalid token")

// TokenService issues and revokes the signed session tokens kept on each
// user document. Tokens are self-contained JWTs, but a token is only honored
// while it is still present in the owning user's active set.
type TokenService struct {
	secret []byte
	users  repository.UserRepository
}

func NewTokenService(secret string, users repository.UserRepository) *TokenService {
	return &TokenService{secret: []byte(secret), users: users}
}

// Issue signs a 7-day token for the user, appends it to the user's active
// set, and returns it. The jti claim makes every token unique even when two
// sessions are opened within the same second.
func (s *TokenService) Issue(ctx context.Context, user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.Hex(),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	if err := s.users.PushToken(ctx, user.ID, token); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	user.Tokens = append(user.Tokens, token)
	return token, nil
}

// Parse verifies signature and expiry and returns the embedded user id.
func (s *TokenService) Parse(tokenStr string) (primitive.ObjectID, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return primitive.NilObjectID, ErrInvalidToken
	}

	id, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidToken
	}
	return id, nil
}

// Revoke removes the exact token from the user's active set. Idempotent when
// the token is already absent.
func (s *TokenService) Revoke(ctx context.Context, user *models.User, token string) error {
	if err := s.users.PullToken(ctx, user.ID, token); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}

	kept := user.Tokens[:0]
	for _, t := range user.Tokens {
		if t != token {
			kept = append(kept, t)
		}
	}
	user.Tokens = kept
	return nil
}

// RevokeAll clears the user's entire token set, ending every session.
func (s *TokenService) RevokeAll(ctx context.Context, user *models.User) error {
	if err := s.users.ClearTokens(ctx, user.ID); err != nil {
		return fmt.Errorf("revoke all tokens: %w", err)
	}
	user.Tokens = []string{}
	return nil
}
