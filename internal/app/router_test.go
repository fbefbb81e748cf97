package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"warden.dev/warden/internal/config"
)

func TestBuildCORSConfig(t *testing.T) {
	tests := []struct {
		name            string
		server          config.ServerConfig
		wantAllowAll    bool
		wantCredentials bool
		wantOrigins     []string
	}{
		{
			name:            "defaults to allowlist when origins empty",
			server:          config.ServerConfig{AllowCredentials: true},
			wantCredentials: true,
			wantOrigins:     defaultAllowedOrigins,
		},
		{
			name: "strips wildcard unless unsafe flag enabled",
			server: config.ServerConfig{
				AllowedOrigins:   []string{"*", " https://example.com "},
				AllowCredentials: true,
			},
			wantCredentials: true,
			wantOrigins:     []string{"https://example.com"},
		},
		{
			name:        "wildcard only falls back to allowlist",
			server:      config.ServerConfig{AllowedOrigins: []string{"*"}},
			wantOrigins: defaultAllowedOrigins,
		},
		{
			name: "unsafe allow all disables credentials",
			server: config.ServerConfig{
				AllowedOrigins:        []string{"*"},
				AllowCredentials:      true,
				UnsafeAllowAllOrigins: true,
			},
			wantAllowAll: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildCORSConfig(&config.Config{Server: tt.server})
			assert.Equal(t, tt.wantAllowAll, got.AllowAllOrigins)
			assert.Equal(t, tt.wantCredentials, got.AllowCredentials)
			if tt.wantOrigins == nil {
				assert.Empty(t, got.AllowOrigins)
			} else {
				assert.Equal(t, tt.wantOrigins, got.AllowOrigins)
			}
			assert.NoError(t, got.Validate())
		})
	}
}
