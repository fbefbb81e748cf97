package app

import (
	"context"

	"go.uber.org/zap"

	"warden.dev/warden/internal/pkg/logger"
	"warden.dev/warden/internal/provider"
)

// Start logs the loaded provider types. Request handling needs no background services.
func (a *Application) Start(context.Context) error {
	for _, desc := range provider.ListTypes() {
		logger.Info("auth provider type available",
			zap.String("kind", desc.Kind),
			zap.Bool("built_in", desc.BuiltIn),
		)
	}
	return nil
}

// Shutdown gracefully shuts down all application components.
func (a *Application) Shutdown() {
	shutdownCtx := context.Background()

	for _, mod := range a.Modules {
		if mod == nil {
			continue
		}
		if err := mod.Shutdown(shutdownCtx); err != nil {
			logger.Warn("module shutdown returned error",
				zap.String("module", mod.Name()),
				zap.Error(err),
			)
		}
	}

	// Pending notifications drain before the pool closes.
	if a.Pools != nil {
		a.Pools.Shutdown()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
