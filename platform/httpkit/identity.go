package httpkit

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"hiring_pipeline_backend/platform/config"
	"hiring_pipeline_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ContextIdentityKey is the gin context key AuthRequired stores the
// caller's Identity under.
const ContextIdentityKey = "identity"

// RoleAdmin grants the founder console.
const RoleAdmin = "admin"

var errInvalidToken = errors.New("invalid token")

// Identity is the founder or operator behind a console request. Tokens are
// issued by the company's identity provider; this service only verifies them.
type Identity struct {
	UserID uuid.UUID
	Email  string
	Roles  []string
}

// IsAuthenticated is false for the zero Identity.
func (i Identity) IsAuthenticated() bool { return i.UserID != uuid.Nil }

func (i Identity) HasRole(role string) bool { return slices.Contains(i.Roles, role) }

// GetIdentity returns the zero Identity when the request was not authenticated.
func GetIdentity(c *gin.Context) Identity {
	v, ok := c.Get(ContextIdentityKey)
	if !ok {
		return Identity{}
	}
	id, _ := v.(Identity)
	return id
}

// AuthRequired verifies an HS256 access token from the Authorization header.
// The token must carry type=access, a uuid sub and optionally email and roles.
func AuthRequired(cfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			Error(c, http.StatusUnauthorized, "missing token", nil)
			c.Abort()
			return
		}
		id, err := parseIdentity(raw, cfg.GetJWTAccessSecret())
		if err != nil {
			Error(c, http.StatusUnauthorized, errInvalidToken.Error(), nil)
			c.Abort()
			return
		}

		c.Set(ContextIdentityKey, id)
		ctx := context.WithValue(c.Request.Context(), logger.UserIDKey, id.UserID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireRole rejects callers without role with 403. It must run after
// AuthRequired.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetIdentity(c).HasRole(role) {
			Error(c, http.StatusForbidden, "forbidden", nil)
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	raw := strings.TrimSpace(header[len(prefix):])
	return raw, raw != ""
}

func parseIdentity(raw, secret string) (Identity, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithExpirationRequired())
	if err != nil {
		return Identity{}, errInvalidToken
	}
	if typ, _ := claims["type"].(string); typ != "access" {
		return Identity{}, errInvalidToken
	}
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil || userID == uuid.Nil {
		return Identity{}, errInvalidToken
	}
	email, _ := claims["email"].(string)
	return Identity{UserID: userID, Email: email, Roles: stringList(claims["roles"])}, nil
}

func stringList(v any) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}
