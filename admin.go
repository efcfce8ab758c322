package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

const (
	adminTokenExpiry = 24 * time.Hour
	adminSubject     = "operator"
)

var ErrInvalidToken = errors.New("invalid operator token")

// Admin issues and checks operator tokens for the /api/admin routes
type Admin struct {
	secret []byte
	now    func() time.Time
}

// NewAdmin returns nil when no secret is configured, which disables the
// operator routes
func NewAdmin(secret string) *Admin {
	if secret == "" {
		return nil
	}
	return &Admin{secret: []byte(secret), now: time.Now}
}

// IssueToken signs an operator token valid for ttl
func (a *Admin) IssueToken(ttl time.Duration) (string, error) {
	now := a.now()
	claims := jwt.MapClaims{
		"sub": adminSubject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// ValidateToken checks signature, expiry and subject
func (a *Admin) ValidateToken(tokenStr string) error {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return a.secret, nil
	}, jwt.WithTimeFunc(a.now))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return ErrInvalidToken
	}
	if sub, _ := claims.GetSubject(); sub != adminSubject {
		return ErrInvalidToken
	}
	return nil
}

// BearerToken extracts the token from an Authorization header value
func BearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// Middleware rejects requests without a valid operator bearer token
func (a *Admin) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing-token"})
			return
		}
		if err := a.ValidateToken(token); err != nil {
			log.Warn().Err(err).Str("remote", c.RemoteIP()).Msg("operator token rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid-token"})
			return
		}
		c.Next()
	}
}
