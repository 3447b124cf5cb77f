package session

import (
	"context"
	"errors"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const jwtIssuer = "bookmart-storefront"

// JWTStore issues and validates stateless HS256 session tokens carrying the
// cart id as subject. Nothing is stored server-side, so DeleteSession is a
// no-op; tokens simply age out.
type JWTStore struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTStore builds a stateless JWT session store.
func NewJWTStore(secret string, ttl time.Duration) *JWTStore {
	return &JWTStore{secret: []byte(secret), ttl: ttl}
}

// NewSession creates a signed JWT for the cart id.
func (s *JWTStore) NewSession(_ context.Context, cartID string) (string, error) {
	if strings.TrimSpace(cartID) == "" {
		return "", errors.New("cart id required")
	}
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   cartID,
		Issuer:    jwtIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// CartID validates a JWT and returns the subject.
func (s *JWTStore) CartID(_ context.Context, token string) (string, bool, error) {
	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(jwtIssuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return "", false, nil
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", false, nil
	}
	return claims.Subject, true, nil
}

// DeleteSession is a no-op for stateless JWT; provided for interface parity.
func (s *JWTStore) DeleteSession(_ context.Context, _ string) error {
	return nil
}
