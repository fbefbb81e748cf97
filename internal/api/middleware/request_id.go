package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"warden.dev/warden/internal/domain"
)

type contextKey string

const (
	// RequestIDHeader is the HTTP header for request tracing.
	RequestIDHeader = "X-Request-ID"

	ctxKeyRequestID contextKey = "request_id"
	ctxKeyViewer    contextKey = "viewer"
)

// RequestID injects a unique request ID into the context and response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" {
			id, _ := uuid.NewV7()
			rid = id.String()
		}
		c.Set(string(ctxKeyRequestID), rid)
		c.Writer.Header().Set(RequestIDHeader, rid)
		c.Request = c.Request.WithContext(
			context.WithValue(c.Request.Context(), ctxKeyRequestID, rid),
		)
		c.Next()
	}
}

// GetRequestID extracts request ID from context.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return v
	}
	return ""
}

// SetViewer stores the authenticated viewer in context.
func SetViewer(ctx context.Context, viewer domain.Viewer) context.Context {
	return context.WithValue(ctx, ctxKeyViewer, viewer)
}

// GetViewer extracts the viewer from context. The zero Viewer is anonymous.
func GetViewer(ctx context.Context) domain.Viewer {
	if v, ok := ctx.Value(ctxKeyViewer).(domain.Viewer); ok {
		return v
	}
	return domain.Viewer{}
}
