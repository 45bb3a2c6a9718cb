package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/verdantiq/cultiva-api/internal/middleware"
	"github.com/verdantiq/cultiva-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// currentUserID resolves the authenticated user, falling back to the given
// value when the route runs without claims.
func currentUserID(c *gin.Context, fallback string) string {
	if claims := claimsFromContext(c); claims != nil && claims.UserID != "" {
		return claims.UserID
	}
	return fallback
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

// queryTime parses an RFC 3339 timestamp or a plain date query parameter.
func queryTime(c *gin.Context, key string) *time.Time {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t
	}
	return nil
}

func queryBool(c *gin.Context, key string) *bool {
	switch c.Query(key) {
	case "true":
		v := true
		return &v
	case "false":
		v := false
		return &v
	}
	return nil
}
