package logger

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Gin context keys read when enriching error records. They mirror the keys
// written by the request id and auth middleware.
const (
	ginRequestIDKey = "request_id"
	ginUserIDKey    = "userID"
	ginAdminIDKey   = "adminID"
)

// ErrorLog is the structured shape of an error record.
type ErrorLog struct {
	Timestamp  time.Time              `json:"timestamp"`
	Message    string                 `json:"message"`
	ErrorType  string                 `json:"error_type,omitempty"`
	StatusCode int                    `json:"status_code,omitempty"`
	RequestID  string                 `json:"request_id,omitempty"`
	UserID     string                 `json:"user_id,omitempty"`
	Path       string                 `json:"path,omitempty"`
	Method     string                 `json:"method,omitempty"`
	IPAddress  string                 `json:"ip_address,omitempty"`
	StackTrace string                 `json:"stack_trace,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// LogError writes an error record enriched with request data when ctx is a
// *gin.Context. Stack traces are only captured outside production.
func LogError(ctx context.Context, err error, message string, metadata map[string]interface{}) {
	record := ErrorLog{
		Timestamp: time.Now().UTC(),
		Message:   message,
		Metadata:  metadata,
	}
	if err != nil {
		record.ErrorType = fmt.Sprintf("%T", err)
	}
	if os.Getenv("SERVER_ENVIRONMENT") != "production" {
		record.StackTrace = getStackTrace(3)
	}

	if c, ok := ctx.(*gin.Context); ok {
		record.RequestID = c.GetString(ginRequestIDKey)
		record.UserID = c.GetString(ginUserIDKey)
		if record.UserID == "" {
			record.UserID = c.GetString(ginAdminIDKey)
		}
		record.Path = c.Request.URL.Path
		record.Method = c.Request.Method
		record.IPAddress = c.ClientIP()
		record.StatusCode = c.Writer.Status()
	}

	fields := []zap.Field{zap.Error(err), zap.String("error_type", record.ErrorType)}
	if record.RequestID != "" {
		fields = append(fields, zap.String("request_id", record.RequestID))
	}
	if record.UserID != "" {
		fields = append(fields, zap.String("user_id", record.UserID))
	}
	if record.Path != "" {
		fields = append(fields, zap.String("path", record.Path), zap.String("method", record.Method))
	}
	if record.IPAddress != "" {
		fields = append(fields, zap.String("ip_address", record.IPAddress))
	}
	if record.StackTrace != "" {
		fields = append(fields, zap.String("stack_trace", record.StackTrace))
	}
	for k, v := range metadata {
		fields = append(fields, zap.Any(k, v))
	}

	GetLogger().Desugar().Error(message, fields...)
}

// LogHTTPError logs a failed request with its final status code.
func LogHTTPError(c *gin.Context, err error, statusCode int, message string) {
	metadata := map[string]interface{}{
		"status_code": statusCode,
		"headers":     filterSensitiveHeaders(c.Request.Header),
	}
	if statusCode < http.StatusInternalServerError {
		// 4xx responses are client mistakes; keep them out of the error stream.
		GetLogger().Warnw(message,
			"error", err,
			"status_code", statusCode,
			"path", c.Request.URL.Path,
			"method", c.Request.Method,
			"request_id", c.GetString(ginRequestIDKey))
		return
	}
	LogError(c, err, message, metadata)
}

func getStackTrace(skip int) string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(skip, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var b strings.Builder
	for {
		frame, more := frames.Next()
		if !strings.HasPrefix(frame.Function, "runtime.") {
			b.WriteString(frame.Function)
			b.WriteString("\n\t")
			b.WriteString(frame.File)
			b.WriteString(":")
			b.WriteString(strconv.Itoa(frame.Line))
			b.WriteString("\n")
		}
		if !more {
			break
		}
	}
	return b.String()
}

func filterSensitiveHeaders(headers http.Header) map[string]string {
	filtered := make(map[string]string, len(headers))
	for name, values := range headers {
		lower := strings.ToLower(name)
		if lower == "authorization" || lower == "cookie" ||
			strings.Contains(lower, "token") ||
			strings.Contains(lower, "key") ||
			strings.Contains(lower, "secret") {
			filtered[name] = "[REDACTED]"
			continue
		}
		if len(values) > 0 {
			filtered[name] = values[0]
		}
	}
	return filtered
}
