package httpapi

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookie is the cookie carrying the admin session token.
const SessionCookie = "admin_session"

// RoleAdmin is the only role that may edit layouts.
const RoleAdmin = "admin"

var ErrNoSecret = errors.New("httpapi: session secret is empty")

// Claims are the JWT claims of an admin session.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Sessions verifies (and, for operators, issues) HS256 session tokens.
type Sessions struct {
	secret []byte
	now    func() time.Time
}

// NewSessions returns a verifier for tokens signed with secret.
func NewSessions(secret string) (*Sessions, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}
	return &Sessions{secret: []byte(secret), now: time.Now}, nil
}

// Issue signs an admin session for subject valid for ttl.
func (s *Sessions) Issue(subject string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := &Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    "orgchart",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify parses token and checks its signature, expiry and role.
func (s *Sessions) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Role != RoleAdmin {
		return nil, errors.New("not an admin session")
	}
	return claims, nil
}
