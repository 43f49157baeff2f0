package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/AlbertPrograms/nodecs-backend/internal/model"
	"github.com/AlbertPrograms/nodecs-backend/internal/response"
)

const (
	// ContextKeyIdentity is the Gin context key for the resolved identity.
	ContextKeyIdentity = "identity"
)

// Claims extends JWT standard claims with the identity fields minted by
// the upstream authentication service.
type Claims struct {
	jwt.RegisteredClaims
	Username  string `json:"username"`
	IsAdmin   bool   `json:"is_admin,omitempty"`
	IsTeacher bool   `json:"is_teacher,omitempty"`
}

// RequireIdentity validates a bearer JWT from the Authorization header
// and injects the resolved identity into the context.
func RequireIdentity(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := extractIdentity(c, secret)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}

		c.Set(ContextKeyIdentity, identity)
		c.Next()
	}
}

// RequireWSIdentity validates a JWT from the query param ?token=...
// Used for WebSocket upgrade requests, which cannot send headers.
func RequireWSIdentity(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := c.Query("token")
		if tokenStr == "" {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		identity, err := validateToken(tokenStr, secret)
		if err != nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}

		c.Set(ContextKeyIdentity, identity)
		c.Next()
	}
}

// GetIdentity retrieves the resolved identity from the Gin context.
func GetIdentity(c *gin.Context) (model.Identity, bool) {
	val, exists := c.Get(ContextKeyIdentity)
	if !exists {
		return model.Identity{}, false
	}
	identity, ok := val.(model.Identity)
	return identity, ok
}

func extractIdentity(c *gin.Context, secret string) (model.Identity, error) {
	tokenStr := ""

	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			tokenStr = parts[1]
		}
	}

	if tokenStr == "" {
		return model.Identity{}, errors.New("authorization header required")
	}

	return validateToken(tokenStr, secret)
}

func validateToken(tokenStr, secret string) (model.Identity, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return model.Identity{}, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Username == "" {
		return model.Identity{}, errors.New("invalid token claims")
	}

	return model.Identity{
		Username:  claims.Username,
		IsAdmin:   claims.IsAdmin,
		IsTeacher: claims.IsTeacher,
	}, nil
}
