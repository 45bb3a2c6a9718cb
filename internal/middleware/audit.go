package middleware

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/verdantiq/cultiva-api/internal/models"
	"github.com/verdantiq/cultiva-api/internal/service"
)

// Audit creates middleware that records an audit entry after successful
// mutating requests. The request body becomes the new-values snapshot so the
// diff viewer can show what was submitted.
func Audit(audit *service.AuditService, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if audit == nil {
			c.Next()
			return
		}
		switch c.Request.Method {
		case "POST", "PUT", "PATCH", "DELETE":
		default:
			c.Next()
			return
		}

		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}

		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		var userID *string
		if claims, ok := c.Get(ContextUserKey); ok {
			user := claims.(*models.JWTClaims)
			userID = &user.UserID
		}
		var resourceID *string
		if id := c.Param("id"); id != "" {
			resourceID = &id
		}

		var newValues interface{}
		if len(body) > 0 && json.Valid(body) {
			newValues = json.RawMessage(body)
		}

		audit.Record(c.Request.Context(), service.RecordRequest{
			UserID:     userID,
			Action:     c.Request.Method,
			Resource:   resource,
			ResourceID: resourceID,
			NewValues:  newValues,
			IPAddress:  c.ClientIP(),
			UserAgent:  c.GetHeader("User-Agent"),
		})
	}
}
