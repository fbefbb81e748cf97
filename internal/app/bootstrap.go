// Package app is the composition root. Bootstrap stays orchestration-only.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"

	"warden.dev/warden/internal/api/handlers"
	"warden.dev/warden/internal/app/modules"
	"warden.dev/warden/internal/config"
	"warden.dev/warden/internal/infrastructure"
	"warden.dev/warden/internal/pkg/worker"
)

// Application holds composed application dependencies.
type Application struct {
	Config  *config.Config
	Router  *gin.Engine
	DB      *infrastructure.DatabaseClients
	Pools   *worker.Pools
	Modules []modules.Module
}

// Bootstrap initializes all dependencies using module-oriented manual DI.
func Bootstrap(ctx context.Context, cfg *config.Config) (*Application, error) {
	infra, err := modules.NewInfrastructure(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("init infrastructure: %w", err)
	}

	allModules := []modules.Module{
		modules.NewAuthProviderModule(infra),
		modules.NewNotificationModule(infra),
	}
	for _, mod := range allModules {
		mod.RegisterEventHandlers(infra.Events)
	}

	server, err := handlers.NewServer(modules.NewServerDeps(infra, allModules))
	if err != nil {
		infra.Close()
		return nil, fmt.Errorf("init http server: %w", err)
	}

	return &Application{
		Config: cfg,
		Router: newRouter(routerDeps{
			Config:  cfg,
			Server:  server,
			JWT:     modules.NewJWTConfig(cfg),
			Policy:  infra.Policy,
			Metrics: infra.Metrics.Handler(),
		}),
		DB:      infra.DB,
		Pools:   infra.Pools,
		Modules: allModules,
	}, nil
}
