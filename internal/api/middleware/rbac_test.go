package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"warden.dev/warden/internal/domain"
)

type stubChecker struct {
	allow bool
	err   error
	got   []domain.Capability
}

func (s *stubChecker) Can(_ domain.Viewer, _ string, caps ...domain.Capability) (bool, error) {
	s.got = caps
	return s.allow, s.err
}

func TestRequireCapability(t *testing.T) {
	t.Parallel()

	gin.SetMode(gin.TestMode)

	viewer := domain.Viewer{UserID: "u-1", Roles: []string{"auth:viewer"}}

	tests := []struct {
		name       string
		viewer     domain.Viewer
		checker    *stubChecker
		wantStatus int
		wantCalled bool
	}{
		{"allowed", viewer, &stubChecker{allow: true}, http.StatusOK, true},
		{"denied", viewer, &stubChecker{allow: false}, http.StatusForbidden, false},
		{"anonymous", domain.Viewer{}, &stubChecker{allow: true}, http.StatusForbidden, false},
		{"checker error", viewer, &stubChecker{err: errors.New("boom")}, http.StatusInternalServerError, false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
			c.Request = c.Request.WithContext(SetViewer(c.Request.Context(), tc.viewer))

			RequireCapability(tc.checker, "auth_provider_config:*", domain.CapabilityView)(c)

			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Equal(t, tc.wantCalled, !c.IsAborted())
		})
	}
}

func TestRequireCapability_PassesCapabilities(t *testing.T) {
	gin.SetMode(gin.TestMode)
	checker := &stubChecker{allow: true}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request = c.Request.WithContext(SetViewer(c.Request.Context(), domain.Viewer{UserID: "u-1"}))

	RequireCapability(checker, "auth_provider_config:*", domain.CapabilityView, domain.CapabilityEdit)(c)

	assert.Equal(t, []domain.Capability{domain.CapabilityView, domain.CapabilityEdit}, checker.got)
}
