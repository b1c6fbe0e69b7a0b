package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"auction-house/internal/auctionerrors"
	"auction-house/utils"

	"github.com/golang-jwt/jwt"
)

const DefaultTokenTTL = 24 * time.Hour

// Claims identify the caller of an authenticated request
type Claims struct {
	UserID   string `json:"uid"`
	Username string `json:"username"`
	jwt.StandardClaims
}

// ExpiresAtTime returns the expiry as a time.Time
func (c *Claims) ExpiresAtTime() time.Time {
	return time.Unix(c.ExpiresAt, 0)
}

// TokenManager issues and verifies HS256 bearer tokens
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for the user with a fresh token id
func (m *TokenManager) Issue(userID, username string) (string, *Claims, error) {
	now := m.now()
	claims := &Claims{
		UserID:   userID,
		Username: username,
		StandardClaims: jwt.StandardClaims{
			Id:        utils.GenerateID(),
			Subject:   userID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(m.ttl).Unix(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", nil, fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, claims, nil
}

// Parse verifies signature and expiry
func (m *TokenManager) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("auth: %w: %v", auctionerrors.ErrUnauthorized, err)
	}
	if claims.UserID == "" || claims.Id == "" {
		return nil, fmt.Errorf("auth: %w: incomplete claims", auctionerrors.ErrUnauthorized)
	}
	return claims, nil
}

// Authenticator combines token verification with the revocation list
type Authenticator struct {
	tokens  *TokenManager
	revoked RevocationStore
}

func NewAuthenticator(tokens *TokenManager, revoked RevocationStore) *Authenticator {
	return &Authenticator{tokens: tokens, revoked: revoked}
}

// Authenticate returns the claims of a valid, non-revoked token
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*Claims, error) {
	claims, err := a.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	revoked, err := a.revoked.IsRevoked(ctx, claims.Id)
	if err != nil {
		return nil, fmt.Errorf("auth: check revocation: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("auth: %w: token revoked", auctionerrors.ErrUnauthorized)
	}
	return claims, nil
}

// Revoke puts the token id on the revocation list until the token expires
func (a *Authenticator) Revoke(ctx context.Context, claims *Claims) error {
	if claims == nil {
		return errors.New("auth: revoke: nil claims")
	}
	return a.revoked.Revoke(ctx, claims.Id, claims.ExpiresAtTime())
}
