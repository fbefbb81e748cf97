package modules

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"warden.dev/warden/internal/config"
	"warden.dev/warden/internal/domain"
	"warden.dev/warden/internal/infrastructure"
	"warden.dev/warden/internal/metrics"
	"warden.dev/warden/internal/pkg/worker"
	"warden.dev/warden/internal/policy"
	"warden.dev/warden/internal/provider"
	"warden.dev/warden/internal/repository"
	"warden.dev/warden/internal/security/secrets"
)

// Infrastructure holds shared cross-cutting dependencies for all modules.
// It is a provider, not a Module.
type Infrastructure struct {
	Config    *config.Config
	DB        *infrastructure.DatabaseClients
	Pool      *pgxpool.Pool
	Pools     *worker.Pools
	Store     *repository.ProviderConfigStore
	Providers *provider.Registry
	Policy    *policy.Enforcer
	Metrics   *metrics.Recorder
	Events    *domain.EventDispatcher
}

// NewInfrastructure initializes DB/pools and shared services.
func NewInfrastructure(ctx context.Context, cfg *config.Config) (*Infrastructure, error) {
	enforcer, err := policy.New(cfg.Policy.Rules)
	if err != nil {
		return nil, fmt.Errorf("init policy: %w", err)
	}
	sealer, err := secrets.NewSealer(cfg.Security.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("init secret sealer: %w", err)
	}

	db, err := infrastructure.NewDatabaseClients(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := db.AutoMigrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("auto-migrate: %w", err)
		}
	}

	pools, err := worker.NewPools(ctx, worker.PoolConfig{
		GeneralPoolSize: cfg.Worker.GeneralPoolSize,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init worker pools: %w", err)
	}

	// Built-ins and every autoreg plugin live in the default registry.
	registry := provider.Default()
	codec := secrets.NewPropertyCodec(sealer, registry)

	recorder := metrics.NewRecorder()
	for _, pool := range pools.All() {
		recorder.ObservePool(pool)
	}

	return &Infrastructure{
		Config:    cfg,
		DB:        db,
		Pool:      db.Pool,
		Pools:     pools,
		Store:     repository.NewProviderConfigStore(db.Pool, codec),
		Providers: registry,
		Policy:    enforcer,
		Metrics:   recorder,
		Events:    domain.NewEventDispatcher(),
	}, nil
}

// Close releases infra resources in reverse dependency order.
func (i *Infrastructure) Close() {
	if i == nil {
		return
	}
	if i.Pools != nil {
		i.Pools.Shutdown()
	}
	if i.DB != nil {
		i.DB.Close()
	}
}
