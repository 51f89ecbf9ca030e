package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/models"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/middleware/requestid"
)

// AuditWriter persists audit rows.
type AuditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// Audit records an audit row for read-side actions such as exports that no
// service call would otherwise log. Failed requests are not recorded. The
// resource id is the route's path parameters joined with '/'.
func Audit(writer AuditWriter, action, resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if writer == nil || c.Writer.Status() >= 400 {
			return
		}

		entry := &models.AuditLog{
			Action:    action,
			Resource:  resource,
			IPAddress: c.ClientIP(),
			UserAgent: c.GetHeader("User-Agent"),
		}
		if actor, ok := Actor(c); ok {
			userID := actor.UserID
			entry.UserID = &userID
		}

		params := make(map[string]string, len(c.Params))
		ids := make([]string, 0, len(c.Params))
		for _, p := range c.Params {
			params[p.Key] = p.Value
			ids = append(ids, p.Value)
		}
		if len(ids) > 0 {
			resourceID := strings.Join(ids, "/")
			entry.ResourceID = &resourceID
		}

		entry.NewValues, _ = json.Marshal(map[string]interface{}{
			"route":     c.FullPath(),
			"method":    c.Request.Method,
			"params":    params,
			"query":     c.Request.URL.RawQuery,
			"status":    c.Writer.Status(),
			"latencyMs": time.Since(start).Milliseconds(),
			"requestId": requestid.Value(c),
		})

		// the response is already written; a client disconnect must not drop the row
		_ = writer.CreateAuditLog(context.WithoutCancel(c.Request.Context()), entry)
	}
}
