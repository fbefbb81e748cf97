package modules

import (
	"strings"

	"warden.dev/warden/internal/api/handlers"
	"warden.dev/warden/internal/api/middleware"
	"warden.dev/warden/internal/config"
)

// NewServerDeps builds base server deps then lets each module contribute explicit wiring.
func NewServerDeps(infra *Infrastructure, mods []Module) handlers.ServerDeps {
	deps := handlers.ServerDeps{DB: infra.DB}
	for _, mod := range mods {
		if mod == nil {
			continue
		}
		mod.ContributeServerDeps(&deps)
	}
	return deps
}

// NewJWTConfig builds the token settings shared by the page and API routes.
func NewJWTConfig(cfg *config.Config) middleware.JWTConfig {
	verificationKeys := make([][]byte, 0, len(cfg.Security.JWTVerificationKeys))
	for _, key := range cfg.Security.JWTVerificationKeys {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		verificationKeys = append(verificationKeys, []byte(key))
	}
	return middleware.JWTConfig{
		SigningKey:       []byte(cfg.Security.SessionSecret),
		VerificationKeys: verificationKeys,
		Issuer:           cfg.Security.JWTIssuer,
		ExpiresIn:        cfg.Session.Lifetime,
		CookieName:       cfg.Session.Cookie,
	}
}
