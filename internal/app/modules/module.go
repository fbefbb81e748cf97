// Package modules contains the dependency modules of the composition root.
package modules

import (
	"context"

	"warden.dev/warden/internal/api/handlers"
	"warden.dev/warden/internal/domain"
)

// Module represents a domain-specific dependency unit in the composition root.
type Module interface {
	// Name returns a stable module identifier for logging/debugging.
	Name() string

	// ContributeServerDeps injects module-owned dependencies into the HTTP server deps.
	ContributeServerDeps(*handlers.ServerDeps)

	// RegisterEventHandlers subscribes module handlers to committed domain events.
	RegisterEventHandlers(*domain.EventDispatcher)

	// Shutdown performs module-local graceful cleanup.
	Shutdown(context.Context) error
}
