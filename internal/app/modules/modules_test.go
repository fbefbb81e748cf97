package modules

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warden.dev/warden/internal/api/handlers"
	"warden.dev/warden/internal/config"
	"warden.dev/warden/internal/domain"
	"warden.dev/warden/internal/metrics"
	"warden.dev/warden/internal/pkg/worker"
	"warden.dev/warden/internal/policy"
	"warden.dev/warden/internal/provider"
)

func testInfrastructure(t *testing.T) *Infrastructure {
	t.Helper()
	enforcer, err := policy.New(nil)
	require.NoError(t, err)
	pools, err := worker.NewPools(context.Background(), worker.PoolConfig{GeneralPoolSize: 1})
	require.NoError(t, err)
	t.Cleanup(pools.Shutdown)
	return &Infrastructure{
		Config:    &config.Config{Editor: config.EditorConfig{ContinueOnNoEffect: true}},
		Pools:     pools,
		Providers: provider.NewRegistry(),
		Policy:    enforcer,
		Metrics:   metrics.NewRecorder(),
		Events:    domain.NewEventDispatcher(),
	}
}

func TestNewServerDeps_ModulesContribute(t *testing.T) {
	infra := testInfrastructure(t)
	mods := []Module{NewAuthProviderModule(infra), NewNotificationModule(infra), nil}

	deps := NewServerDeps(infra, mods)
	assert.NotNil(t, deps.Editor)

	server, err := handlers.NewServer(deps)
	require.NoError(t, err)
	assert.NotNil(t, server)

	for _, mod := range mods {
		if mod == nil {
			continue
		}
		assert.NotEmpty(t, mod.Name())
		mod.RegisterEventHandlers(infra.Events)
		assert.NoError(t, mod.Shutdown(context.Background()))
	}
}

func TestNewJWTConfig(t *testing.T) {
	cfg := &config.Config{
		Security: config.SecurityConfig{
			SessionSecret:       "0123456789abcdef0123456789abcdef",
			JWTVerificationKeys: []string{" old-key ", "", "  "},
			JWTIssuer:           "warden",
		},
		Session: config.SessionConfig{Lifetime: time.Hour, Cookie: "warden_session"},
	}

	got := NewJWTConfig(cfg)
	assert.Equal(t, []byte(cfg.Security.SessionSecret), got.SigningKey)
	assert.Equal(t, [][]byte{[]byte("old-key")}, got.VerificationKeys)
	assert.Equal(t, "warden", got.Issuer)
	assert.Equal(t, time.Hour, got.ExpiresIn)
	assert.Equal(t, "warden_session", got.CookieName)
}
