package modules

import (
	"context"

	"warden.dev/warden/internal/api/handlers"
	"warden.dev/warden/internal/domain"
	"warden.dev/warden/internal/usecase"
)

// AuthProviderModule owns the provider config editor.
type AuthProviderModule struct {
	editor *usecase.ProviderConfigEditor
}

// NewAuthProviderModule wires the editor onto the shared store, registry and policy.
func NewAuthProviderModule(infra *Infrastructure) *AuthProviderModule {
	return &AuthProviderModule{
		editor: usecase.NewProviderConfigEditor(usecase.EditorDeps{
			Store:              infra.Store,
			Providers:          infra.Providers,
			Policy:             infra.Policy,
			Events:             infra.Events,
			Metrics:            infra.Metrics,
			ContinueOnNoEffect: infra.Config.Editor.ContinueOnNoEffect,
		}),
	}
}

func (m *AuthProviderModule) Name() string { return "auth_provider" }

func (m *AuthProviderModule) ContributeServerDeps(deps *handlers.ServerDeps) {
	deps.Editor = m.editor
}

func (m *AuthProviderModule) RegisterEventHandlers(*domain.EventDispatcher) {}

func (m *AuthProviderModule) Shutdown(context.Context) error { return nil }
