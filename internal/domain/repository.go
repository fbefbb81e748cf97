package domain

import "context"

// ConfigStore is the read side of provider config persistence plus the entry
// point for atomic writes.
type ConfigStore interface {
	// GetConfig returns ErrConfigNotFound when no row matches.
	GetConfig(ctx context.Context, id int64) (*ProviderConfig, error)
	ListConfigs(ctx context.Context) ([]*ProviderConfig, error)
	ListConfigsByProviderClass(ctx context.Context, providerClass string) ([]*ProviderConfig, error)
	// ListTransactions returns the history of a config, newest first.
	ListTransactions(ctx context.Context, configID int64) ([]Transaction, error)
	// InTx runs fn inside one database transaction. Returning an error rolls back.
	InTx(ctx context.Context, fn func(tx ConfigTx) error) error
}

// ConfigTx is the write side, only reachable inside ConfigStore.InTx.
type ConfigTx interface {
	// LockConfig loads a config and locks its row until the transaction ends.
	LockConfig(ctx context.Context, id int64) (*ProviderConfig, error)
	// InsertConfig assigns cfg.ID. A duplicate provider class returns ErrProviderAlreadyConfigured.
	InsertConfig(ctx context.Context, cfg *ProviderConfig) error
	UpdateConfig(ctx context.Context, cfg *ProviderConfig) error
	InsertTransactions(ctx context.Context, txs []Transaction) error
	InsertAuditLog(ctx context.Context, entry AuditEntry) error
}
