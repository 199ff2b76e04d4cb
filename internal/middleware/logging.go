// internal/middleware/logging.go
package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/story-mcp/internal/metrics"
	"github.com/javajoker/story-mcp/internal/models"
	"github.com/javajoker/story-mcp/internal/services"
	"github.com/javajoker/story-mcp/internal/utils"
)

const maxAuditBody = 64 << 10

// RequestID reuses the caller's X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if c.Request.URL.Path == "/health" || c.Request.URL.Path == "/metrics" {
			return
		}

		operator, _ := utils.GetOperatorFromContext(c)
		entry := logrus.WithFields(logrus.Fields{
			"request_id": utils.GetRequestIDFromContext(c),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).Milliseconds(),
			"ip":         c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
			"operator":   operator,
		})
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}
		if c.Writer.Status() >= 500 {
			entry.Error("Request processed")
		} else {
			entry.Info("Request processed")
		}
	}
}

// Metrics records request counts and latency by route template.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metrics.ObserveHTTP(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}

// Tool marks a REST route as the mirror of an MCP tool. Services add tx
// hashes and warnings to the request trace; after the handler runs the
// call is counted and handed to the recorder like an MCP invocation.
func Tool(name string, audit services.InvocationRecorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, trace := services.WithTrace(c.Request.Context())
		c.Request = c.Request.WithContext(ctx)
		args := requestArguments(c)

		start := time.Now()
		c.Next()
		elapsed := time.Since(start)

		var failure error
		if last := c.Errors.Last(); last != nil {
			failure = last.Err
		}
		metrics.ObserveTool(name, string(models.TransportHTTP), failure, elapsed)

		operator, _ := utils.GetOperatorFromContext(c)
		inv := &models.ToolInvocation{
			RequestID:  utils.GetRequestIDFromContext(c),
			Tool:       name,
			Transport:  models.TransportHTTP,
			Operator:   operator,
			ClientIP:   c.ClientIP(),
			Status:     models.InvocationStatusSuccess,
			Arguments:  args,
			DurationMs: elapsed.Milliseconds(),
			TxHashes:   trace.TxHashes(),
			Warnings:   trace.Warnings(),
		}
		if failure != nil {
			inv.Status = models.InvocationStatusError
			inv.Error = failure.Error()
		}

		if audit != nil {
			audit.Record(c.Request.Context(), inv)
		}
	}
}

// requestArguments collects path params, query values and a JSON body
// into one map, leaving the body readable for the handler.
func requestArguments(c *gin.Context) models.JSONB {
	args := models.JSONB{}

	if c.Request.Body != nil && strings.HasPrefix(c.ContentType(), "application/json") {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxAuditBody+1))
		rest := c.Request.Body
		c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), rest))
		if err == nil && len(body) <= maxAuditBody {
			var data map[string]interface{}
			if json.Unmarshal(body, &data) == nil {
				for k, v := range data {
					args[k] = v
				}
			}
		}
	}

	for k, v := range c.Request.URL.Query() {
		if len(v) == 1 {
			args[k] = v[0]
		} else {
			args[k] = v
		}
	}
	for _, p := range c.Params {
		args[p.Key] = p.Value
	}
	return args
}
