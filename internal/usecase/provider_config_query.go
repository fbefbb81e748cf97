package usecase

import (
	"context"
	"fmt"

	"warden.dev/warden/internal/domain"
	"warden.dev/warden/internal/policy"
	"warden.dev/warden/internal/provider"
)

// ListVisible returns the configs the viewer can view, ordered by id.
func (e *ProviderConfigEditor) ListVisible(ctx context.Context, viewer domain.Viewer) ([]*domain.ProviderConfig, error) {
	all, err := e.store.ListConfigs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list configs: %w", err)
	}
	out := make([]*domain.ProviderConfig, 0, len(all))
	for _, cfg := range all {
		ok, err := e.policy.Can(viewer, policy.Object(cfg.ProviderClass), domain.CapabilityView)
		if err != nil {
			return nil, fmt.Errorf("check view on config %d: %w", cfg.ID, err)
		}
		if ok {
			out = append(out, cfg)
		}
	}
	return out, nil
}

// GetVisible returns one config when the viewer can view it, domain.ErrConfigNotFound otherwise.
func (e *ProviderConfigEditor) GetVisible(ctx context.Context, viewer domain.Viewer, id int64) (*domain.ProviderConfig, error) {
	cfg, err := e.store.GetConfig(ctx, id)
	if err != nil {
		return nil, err
	}
	ok, err := e.policy.Can(viewer, policy.Object(cfg.ProviderClass), domain.CapabilityView)
	if err != nil {
		return nil, fmt.Errorf("check view on config %d: %w", id, err)
	}
	if !ok {
		return nil, fmt.Errorf("config %d not visible to %q: %w", id, viewer.UserID, domain.ErrConfigNotFound)
	}
	return cfg, nil
}

// VisibleHistory returns the transactions of a config the viewer can view, newest first.
func (e *ProviderConfigEditor) VisibleHistory(ctx context.Context, viewer domain.Viewer, id int64) ([]domain.Transaction, error) {
	cfg, err := e.GetVisible(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	txs, err := e.store.ListTransactions(ctx, cfg.ID)
	if err != nil {
		return nil, fmt.Errorf("list transactions of config %d: %w", cfg.ID, err)
	}
	return txs, nil
}

// AvailableProviders lists registered kinds that are not configured yet and
// that the viewer may create.
func (e *ProviderConfigEditor) AvailableProviders(ctx context.Context, viewer domain.Viewer) ([]provider.TypeDescriptor, error) {
	configs, err := e.store.ListConfigs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list configs: %w", err)
	}
	configured := make(map[string]struct{}, len(configs))
	for _, cfg := range configs {
		configured[cfg.ProviderClass] = struct{}{}
	}

	var out []provider.TypeDescriptor
	for _, desc := range e.providers.List() {
		if _, ok := configured[desc.Kind]; ok {
			continue
		}
		ok, err := e.policy.Can(viewer, policy.Object(desc.Kind), domain.CapabilityEdit)
		if err != nil {
			return nil, fmt.Errorf("check edit on provider %s: %w", desc.Kind, err)
		}
		if ok {
			out = append(out, desc)
		}
	}
	return out, nil
}

// ProviderFor returns the registered provider of a config, if any.
func (e *ProviderConfigEditor) ProviderFor(cfg *domain.ProviderConfig) (provider.Provider, bool) {
	return e.providers.Resolve(cfg.ProviderClass)
}

// ProviderTypes lists every registered provider type, sorted by kind.
func (e *ProviderConfigEditor) ProviderTypes() []provider.TypeDescriptor {
	return e.providers.List()
}
