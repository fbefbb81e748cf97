package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"warden.dev/warden/internal/domain"
	"warden.dev/warden/internal/pkg/logger"
)

// CapabilityChecker answers object-level capability checks for a viewer.
type CapabilityChecker interface {
	Can(viewer domain.Viewer, object string, caps ...domain.Capability) (bool, error)
}

// RequireCapability returns middleware that requires the viewer to hold every
// capability on object.
func RequireCapability(checker CapabilityChecker, object string, caps ...domain.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		viewer := GetViewer(c.Request.Context())
		if !viewer.IsAuthenticated() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code": "FORBIDDEN", "message": "not authenticated",
			})
			return
		}

		ok, err := checker.Can(viewer, object, caps...)
		if err != nil {
			logger.Error("capability check failed",
				zap.String("request_id", GetRequestID(c.Request.Context())),
				zap.String("object", object),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code": "INTERNAL_ERROR", "message": "permission check failed",
			})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code": "FORBIDDEN", "message": "insufficient permissions",
			})
			return
		}

		c.Next()
	}
}
