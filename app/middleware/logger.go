package middleware

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tidwall/pretty"
	"go.uber.org/zap"

	"workerscope/pkg/logger"
)

// RequestIDHeader carries the trace id of a request
const RequestIDHeader = "X-Request-ID"

const maxLoggedBody = 1000

// Logger logs each request and attaches a trace id to its context
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		traceID := c.GetHeader(RequestIDHeader)
		if traceID == "" {
			traceID = uuid.New().String()
		}
		c.Request = c.Request.WithContext(logger.WithTraceID(c.Request.Context(), traceID))
		c.Header(RequestIDHeader, traceID)

		var bodyStr string
		if c.Request.Method == http.MethodPost {
			bodyStr = getRequestBody(c)
		}

		c.Next()

		// Skip logging for 404 requests
		if c.Writer.Status() == http.StatusNotFound {
			return
		}

		fields := []zap.Field{
			zap.String("trace_id", traceID),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(startTime)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("method", c.Request.Method),
			zap.String("uri", c.Request.RequestURI),
		}
		if bodyStr != "" {
			fields = append(fields, zap.String("body", bodyStr))
		}
		logger.Info("[GIN] request", fields...)
	}
}

// getRequestBody gets request body content
func getRequestBody(c *gin.Context) string {
	var bodyBytes []byte
	if c.Request.Body != nil {
		bodyBytes, _ = io.ReadAll(c.Request.Body)
		// Reset request body since reading it clears it
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
	}
	return CompressBody(string(bodyBytes))
}

// CompressBody compresses JSON using pretty package
func CompressBody(body string) string {
	if len(body) == 0 {
		return ""
	}

	// ugly=true removes all whitespace
	compressed := pretty.Ugly([]byte(body))
	if len(compressed) > maxLoggedBody {
		return string(compressed[:maxLoggedBody]) + "..."
	}
	return string(compressed)
}
