// Package usecase provides application use cases.
//
// ProviderConfigEditor drives the auth provider config workflow: resolve the
// config being edited or created, run the provider's form processing, and apply
// the resulting typed changes atomically in a single pgx.Tx.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"warden.dev/warden/internal/domain"
	"warden.dev/warden/internal/metrics"
	"warden.dev/warden/internal/policy"
	"warden.dev/warden/internal/provider"
)

// ErrProviderNotFound is returned when a provider kind is unknown or not editable by the viewer.
var ErrProviderNotFound = errors.New("auth provider not found")

// ProviderRegistry resolves provider implementations by kind.
type ProviderRegistry interface {
	Resolve(kind string) (provider.Provider, bool)
	List() []provider.TypeDescriptor
}

// CapabilityChecker answers object-level capability checks.
type CapabilityChecker interface {
	Can(viewer domain.Viewer, object string, caps ...domain.Capability) (bool, error)
}

// EventPublisher receives domain events after commit.
type EventPublisher interface {
	Dispatch(ctx context.Context, event *domain.DomainEvent) error
}

// EditorDeps wires a ProviderConfigEditor.
type EditorDeps struct {
	Store     domain.ConfigStore
	Providers ProviderRegistry
	Policy    CapabilityChecker
	// Events and Metrics are optional.
	Events  EventPublisher
	Metrics *metrics.Recorder
	// ContinueOnNoEffect skips no-op changes instead of failing the batch.
	ContinueOnNoEffect bool
}

// ProviderConfigEditor implements the create/edit workflow for provider configs.
type ProviderConfigEditor struct {
	store              domain.ConfigStore
	providers          ProviderRegistry
	policy             CapabilityChecker
	events             EventPublisher
	metrics            *metrics.Recorder
	continueOnNoEffect bool
	now                func() time.Time
}

// NewProviderConfigEditor creates an editor.
func NewProviderConfigEditor(deps EditorDeps) *ProviderConfigEditor {
	return &ProviderConfigEditor{
		store:              deps.Store,
		providers:          deps.Providers,
		policy:             deps.Policy,
		events:             deps.Events,
		metrics:            deps.Metrics,
		continueOnNoEffect: deps.ContinueOnNoEffect,
		now:                time.Now,
	}
}

// ResolveInput selects the config to edit (ConfigID) or the kind to create (ProviderKind).
type ResolveInput struct {
	ConfigID     int64
	ProviderKind string
}

// Resolution is the config under edit together with its provider.
type Resolution struct {
	Config   *domain.ProviderConfig
	Provider provider.Provider
	IsNew    bool
}

// Resolve loads an existing config or builds a blank one. Every failure to reach
// an editable config is reported as not-found, except an attempt to create a
// second config for an already configured kind.
func (e *ProviderConfigEditor) Resolve(ctx context.Context, viewer domain.Viewer, in ResolveInput) (*Resolution, error) {
	if in.ConfigID != 0 {
		return e.resolveExisting(ctx, viewer, in.ConfigID)
	}
	return e.resolveNew(ctx, viewer, in.ProviderKind)
}

func (e *ProviderConfigEditor) resolveExisting(ctx context.Context, viewer domain.Viewer, id int64) (*Resolution, error) {
	cfg, err := e.store.GetConfig(ctx, id)
	if err != nil {
		return nil, err
	}
	ok, err := e.policy.Can(viewer, policy.Object(cfg.ProviderClass), domain.CapabilityView, domain.CapabilityEdit)
	if err != nil {
		return nil, fmt.Errorf("check capabilities on config %d: %w", id, err)
	}
	if !ok {
		return nil, fmt.Errorf("config %d not editable by %q: %w", id, viewer.UserID, domain.ErrConfigNotFound)
	}
	p, ok := e.providers.Resolve(cfg.ProviderClass)
	if !ok {
		return nil, fmt.Errorf("config %d has unknown provider %s: %w", id, cfg.ProviderClass, domain.ErrConfigNotFound)
	}
	return &Resolution{Config: cfg, Provider: p}, nil
}

func (e *ProviderConfigEditor) resolveNew(ctx context.Context, viewer domain.Viewer, kind string) (*Resolution, error) {
	p, ok := e.providers.Resolve(kind)
	if !ok {
		return nil, fmt.Errorf("provider %q: %w", kind, ErrProviderNotFound)
	}
	ok, err := e.policy.Can(viewer, policy.Object(p.Kind()), domain.CapabilityEdit)
	if err != nil {
		return nil, fmt.Errorf("check capabilities on provider %s: %w", p.Kind(), err)
	}
	if !ok {
		return nil, fmt.Errorf("provider %s not editable by %q: %w", p.Kind(), viewer.UserID, ErrProviderNotFound)
	}
	existing, err := e.store.ListConfigsByProviderClass(ctx, p.Kind())
	if err != nil {
		return nil, fmt.Errorf("list configs of %s: %w", p.Kind(), err)
	}
	if len(existing) > 0 {
		return nil, fmt.Errorf("provider %s: %w", p.Kind(), domain.ErrProviderAlreadyConfigured)
	}
	return &Resolution{Config: domain.NewProviderConfig(p.Kind()), Provider: p, IsNew: true}, nil
}

// History returns the transactions of the resolved config, newest first.
func (e *ProviderConfigEditor) History(ctx context.Context, res *Resolution) ([]domain.Transaction, error) {
	if res.IsNew {
		return nil, nil
	}
	txs, err := e.store.ListTransactions(ctx, res.Config.ID)
	if err != nil {
		return nil, fmt.Errorf("list transactions of config %d: %w", res.Config.ID, err)
	}
	return txs, nil
}
