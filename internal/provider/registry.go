package provider

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry stores available provider factories keyed by kind.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: map[string]Factory{}}
}

func newBuiltInRegistry() *Registry {
	r := NewRegistry()
	for _, builtin := range builtInFactories() {
		if err := r.Register(builtin); err != nil {
			panic(fmt.Sprintf("register built-in auth provider: %v", err))
		}
	}
	return r
}

// Register registers a factory by the kind of the provider it builds.
// Empty and duplicate kinds are rejected.
func (r *Registry) Register(factory Factory) error {
	if factory == nil {
		return fmt.Errorf("provider factory is nil")
	}
	p := factory()
	if p == nil {
		return fmt.Errorf("provider factory returned nil")
	}
	kind := strings.TrimSpace(p.Kind())
	if kind == "" {
		return fmt.Errorf("provider kind is empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("provider kind already registered: %s", kind)
	}
	r.factories[kind] = factory
	return nil
}

// Resolve builds the provider registered under kind. Kinds are case-sensitive.
func (r *Registry) Resolve(kind string) (Provider, bool) {
	r.mu.RLock()
	factory, ok := r.factories[strings.TrimSpace(kind)]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return factory(), true
}

// SecretKeys returns the secret property keys of kind, or nil when unknown.
func (r *Registry) SecretKeys(kind string) []string {
	p, ok := r.Resolve(kind)
	if !ok {
		return nil
	}
	return p.SecretKeys()
}

// List returns all registered descriptors sorted by kind.
func (r *Registry) List() []TypeDescriptor {
	r.mu.RLock()
	factories := make(map[string]Factory, len(r.factories))
	for kind, f := range r.factories {
		factories[kind] = f
	}
	r.mu.RUnlock()

	items := make([]TypeDescriptor, 0, len(factories))
	for kind, factory := range factories {
		desc := factory().Describe()
		desc.Kind = kind
		if strings.TrimSpace(desc.DisplayName) == "" {
			desc.DisplayName = kind
		}
		items = append(items, desc)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Kind < items[j].Kind })
	return items
}

var globalRegistry = newBuiltInRegistry()

// Default returns the process-global registry holding built-ins and plugins.
func Default() *Registry {
	return globalRegistry
}

// Register registers a factory globally.
func Register(factory Factory) error {
	return globalRegistry.Register(factory)
}

// ListTypes returns all globally registered provider descriptors.
func ListTypes() []TypeDescriptor {
	return globalRegistry.List()
}

func builtInFactories() []Factory {
	return []Factory{
		func() Provider { return NewPasswordProvider() },
		func() Provider { return NewLDAPProvider() },
		func() Provider { return NewOAuthProvider() },
	}
}
