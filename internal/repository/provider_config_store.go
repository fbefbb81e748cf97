// Package repository implements provider config persistence on PostgreSQL with pgx.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"warden.dev/warden/internal/domain"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// PropertyCodec converts properties between their domain and stored forms.
type PropertyCodec interface {
	Encode(providerClass string, props map[string]string) (map[string]string, error)
	Decode(providerClass string, stored map[string]string) (map[string]string, error)
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ProviderConfigStore implements domain.ConfigStore on a shared pgxpool.
type ProviderConfigStore struct {
	pool *pgxpool.Pool
	q    *queries
}

// NewProviderConfigStore creates a store.
func NewProviderConfigStore(pool *pgxpool.Pool, codec PropertyCodec) *ProviderConfigStore {
	return &ProviderConfigStore{pool: pool, q: &queries{db: pool, codec: codec}}
}

var _ domain.ConfigStore = (*ProviderConfigStore)(nil)

func (s *ProviderConfigStore) GetConfig(ctx context.Context, id int64) (*domain.ProviderConfig, error) {
	return s.q.getConfig(ctx, id, false)
}

func (s *ProviderConfigStore) ListConfigs(ctx context.Context) ([]*domain.ProviderConfig, error) {
	return s.q.listConfigs(ctx, `SELECT `+configColumns+` FROM auth_provider_configs ORDER BY id`)
}

func (s *ProviderConfigStore) ListConfigsByProviderClass(ctx context.Context, providerClass string) ([]*domain.ProviderConfig, error) {
	return s.q.listConfigs(ctx,
		`SELECT `+configColumns+` FROM auth_provider_configs WHERE provider_class = $1 ORDER BY id`,
		providerClass)
}

func (s *ProviderConfigStore) ListTransactions(ctx context.Context, configID int64) ([]domain.Transaction, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, config_id, kind, metadata_key, old_value, new_value, actor, content_source, created_at
		FROM auth_provider_config_transactions
		WHERE config_id = $1
		ORDER BY created_at DESC, id DESC`, configID)
	if err != nil {
		return nil, fmt.Errorf("query transactions of config %d: %w", configID, err)
	}
	txs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Transaction, error) {
		var t domain.Transaction
		var kind string
		err := row.Scan(&t.ID, &t.ConfigID, &kind, &t.MetadataKey, &t.OldValue, &t.NewValue,
			&t.Actor, &t.ContentSource, &t.CreatedAt)
		t.Kind = domain.TransactionKind(kind)
		return t, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan transactions of config %d: %w", configID, err)
	}
	return txs, nil
}

// InTx runs fn in one pgx transaction: Begin, deferred Rollback, Commit on success.
func (s *ProviderConfigStore) InTx(ctx context.Context, fn func(tx domain.ConfigTx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&configTx{q: s.q.withTx(tx), tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type configTx struct {
	q  *queries
	tx pgx.Tx
}

func (t *configTx) LockConfig(ctx context.Context, id int64) (*domain.ProviderConfig, error) {
	return t.q.getConfig(ctx, id, true)
}

func (t *configTx) InsertConfig(ctx context.Context, cfg *domain.ProviderConfig) error {
	props, err := t.q.codec.Encode(cfg.ProviderClass, cfg.Properties)
	if err != nil {
		return err
	}
	err = t.q.db.QueryRow(ctx, `
		INSERT INTO auth_provider_configs (
			phid, provider_class, provider_type, provider_domain, is_enabled,
			allow_login, allow_registration, allow_link, allow_unlink,
			properties, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`,
		cfg.PHID, cfg.ProviderClass, cfg.ProviderType, cfg.ProviderDomain, cfg.Enabled,
		cfg.AllowLogin, cfg.AllowRegistration, cfg.AllowLink, cfg.AllowUnlink,
		props, cfg.CreatedAt, cfg.UpdatedAt,
	).Scan(&cfg.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("insert config %s: %w", cfg.ProviderClass, domain.ErrProviderAlreadyConfigured)
		}
		return fmt.Errorf("insert config %s: %w", cfg.ProviderClass, err)
	}
	return nil
}

func (t *configTx) UpdateConfig(ctx context.Context, cfg *domain.ProviderConfig) error {
	props, err := t.q.codec.Encode(cfg.ProviderClass, cfg.Properties)
	if err != nil {
		return err
	}
	tag, err := t.q.db.Exec(ctx, `
		UPDATE auth_provider_configs SET
			provider_type = $2, provider_domain = $3, is_enabled = $4,
			allow_login = $5, allow_registration = $6, allow_link = $7, allow_unlink = $8,
			properties = $9, updated_at = $10
		WHERE id = $1`,
		cfg.ID, cfg.ProviderType, cfg.ProviderDomain, cfg.Enabled,
		cfg.AllowLogin, cfg.AllowRegistration, cfg.AllowLink, cfg.AllowUnlink,
		props, cfg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update config %d: %w", cfg.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update config %d: %w", cfg.ID, domain.ErrConfigNotFound)
	}
	return nil
}

func (t *configTx) InsertTransactions(ctx context.Context, txs []domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, x := range txs {
		batch.Queue(`
			INSERT INTO auth_provider_config_transactions (
				id, config_id, kind, metadata_key, old_value, new_value, actor, content_source, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			x.ID, x.ConfigID, string(x.Kind), x.MetadataKey, x.OldValue, x.NewValue,
			x.Actor, x.ContentSource, x.CreatedAt)
	}
	br := t.tx.SendBatch(ctx, batch)
	for i := range txs {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			return fmt.Errorf("insert transaction %s: %w", txs[i].ID, err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close transaction batch: %w", err)
	}
	return nil
}

func (t *configTx) InsertAuditLog(ctx context.Context, entry domain.AuditEntry) error {
	_, err := t.q.db.Exec(ctx, `
		INSERT INTO audit_logs (id, action, resource_type, resource_id, actor, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.Action, entry.ResourceType, entry.ResourceID, entry.Actor, entry.Details, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit log %s: %w", entry.Action, err)
	}
	return nil
}
