package middleware

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/internship-portal-api/internal/service"
)

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, entry service.AuditEntry)
}

// Audit records an audit entry after every successful request. idParam names
// the path parameter holding the resource id; it may be empty.
func Audit(recorder AuditRecorder, action, resource, idParam string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if recorder == nil || c.Writer.Status() >= 400 {
			return
		}

		entry := service.AuditEntry{
			Action:    action,
			Resource:  resource,
			IP:        c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
			Payload: map[string]interface{}{
				"path":    c.FullPath(),
				"method":  c.Request.Method,
				"status":  c.Writer.Status(),
				"latency": time.Since(start).Milliseconds(),
			},
		}
		if idParam != "" {
			entry.ResourceID = c.Param(idParam)
		}
		if claims := currentClaims(c); claims != nil {
			entry.UserID = claims.UserID
		}
		recorder.Record(c.Request.Context(), entry)
	}
}
