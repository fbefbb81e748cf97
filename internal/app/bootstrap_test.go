package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warden.dev/warden/internal/api/handlers"
	"warden.dev/warden/internal/api/middleware"
	"warden.dev/warden/internal/config"
	"warden.dev/warden/internal/metrics"
	"warden.dev/warden/internal/pkg/logger"
	"warden.dev/warden/internal/policy"
	"warden.dev/warden/internal/provider"
	"warden.dev/warden/internal/testutil"
	"warden.dev/warden/internal/usecase"
)

func init() {
	_ = logger.Init("error", "json")
}

func TestBootstrap_NoDB(t *testing.T) {
	// Bootstrap without a real database should fail at DB connection.
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Host:     "localhost",
			Port:     65432, // Non-existent port
			User:     "test",
			Password: "test",
			Database: "test",
			SSLMode:  "disable",
			MaxConns: 5,
			MinConns: 1,
		},
		Security: config.SecurityConfig{EncryptionKey: "test-encryption-key"},
		Worker:   config.WorkerConfig{GeneralPoolSize: 2},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	app, err := Bootstrap(ctx, cfg)
	require.Error(t, err, "Bootstrap should fail without database")
	assert.Nil(t, app, "Application should be nil on bootstrap failure")
}

func TestBootstrap_InvalidPolicyRule(t *testing.T) {
	cfg := &config.Config{Policy: config.PolicyConfig{Rules: []string{"not-a-rule"}}}

	app, err := Bootstrap(context.Background(), cfg)
	require.Error(t, err)
	assert.Nil(t, app)
	assert.Contains(t, err.Error(), "init policy")
}

func TestApplication_Shutdown_Nil(t *testing.T) {
	// Shutdown on empty application should not panic.
	app := &Application{}

	assert.NotPanics(t, func() {
		app.Shutdown()
	}, "Shutdown on empty Application should not panic")
}

func testRouter(t *testing.T) (*routerDeps, http.Handler) {
	t.Helper()
	enforcer, err := policy.New(nil)
	require.NoError(t, err)
	recorder := metrics.NewRecorder()

	editor := usecase.NewProviderConfigEditor(usecase.EditorDeps{
		Store:              testutil.NewMemoryConfigStore(),
		Providers:          provider.Default(),
		Policy:             enforcer,
		Metrics:            recorder,
		ContinueOnNoEffect: true,
	})
	server, err := handlers.NewServer(handlers.ServerDeps{Editor: editor})
	require.NoError(t, err)

	deps := &routerDeps{
		Config: &config.Config{},
		Server: server,
		JWT: middleware.JWTConfig{
			SigningKey: []byte("0123456789abcdef0123456789abcdef"),
			Issuer:     "warden",
			ExpiresIn:  time.Hour,
			CookieName: "warden_session",
		},
		Policy:  enforcer,
		Metrics: recorder.Handler(),
	}
	return deps, newRouter(*deps)
}

func TestRouter_Routes(t *testing.T) {
	deps, router := testRouter(t)

	adminToken, _, err := middleware.GenerateToken(deps.JWT, "u-1", "alice", []string{"auth:admin"}, nil)
	require.NoError(t, err)
	strangerToken, _, err := middleware.GenerateToken(deps.JWT, "u-2", "bob", []string{"dev"}, nil)
	require.NoError(t, err)

	tests := []struct {
		name     string
		path     string
		token    string
		cookie   bool
		wantCode int
		wantBody string
	}{
		{"liveness is public", "/api/v1/health/live", "", false, http.StatusOK, `"ok"`},
		{"readiness is public", "/api/v1/health/ready", "", false, http.StatusOK, `"ok"`},
		{"metrics are public", "/metrics", "", false, http.StatusOK, "go_goroutines"},
		{"pages need a token", "/auth/", "", false, http.StatusUnauthorized, "AUTH_FAILED"},
		{"pages accept the session cookie", "/auth/", adminToken, true, http.StatusOK, "Authentication Providers"},
		{"chooser", "/auth/config/new/", adminToken, false, http.StatusOK, "PasswordAuthProvider"},
		{"edit unknown id", "/auth/config/edit/999", adminToken, false, http.StatusNotFound, "Not Found"},
		{"api needs a token", "/api/v1/auth/configs", "", false, http.StatusUnauthorized, "AUTH_FAILED"},
		{"api configs", "/api/v1/auth/configs", adminToken, false, http.StatusOK, `"items"`},
		{"providers need view capability", "/api/v1/auth/providers", strangerToken, false, http.StatusForbidden, ""},
		{"providers", "/api/v1/auth/providers", adminToken, false, http.StatusOK, "LDAPAuthProvider"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.token != "" {
				if tt.cookie {
					req.AddCookie(&http.Cookie{Name: deps.JWT.CookieName, Value: tt.token})
				} else {
					req.Header.Set("Authorization", "Bearer "+tt.token)
				}
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
			if tt.wantBody != "" {
				assert.True(t, strings.Contains(w.Body.String(), tt.wantBody), w.Body.String())
			}
			assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
		})
	}
}
