package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"warden.dev/warden/internal/domain"
)

const configColumns = `id, phid, provider_class, provider_type, provider_domain, is_enabled,
	allow_login, allow_registration, allow_link, allow_unlink, properties, created_at, updated_at`

// queries runs statements against either the pool or a transaction.
type queries struct {
	db    querier
	codec PropertyCodec
}

func (q *queries) withTx(tx pgx.Tx) *queries {
	return &queries{db: tx, codec: q.codec}
}

func (q *queries) getConfig(ctx context.Context, id int64, forUpdate bool) (*domain.ProviderConfig, error) {
	sql := `SELECT ` + configColumns + ` FROM auth_provider_configs WHERE id = $1`
	if forUpdate {
		sql += ` FOR UPDATE`
	}
	cfg, err := q.scanConfig(q.db.QueryRow(ctx, sql, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("config %d: %w", id, domain.ErrConfigNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get config %d: %w", id, err)
	}
	return cfg, nil
}

func (q *queries) listConfigs(ctx context.Context, sql string, args ...any) ([]*domain.ProviderConfig, error) {
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query configs: %w", err)
	}
	configs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.ProviderConfig, error) {
		return q.scanConfig(row)
	})
	if err != nil {
		return nil, fmt.Errorf("scan configs: %w", err)
	}
	return configs, nil
}

func (q *queries) scanConfig(row pgx.Row) (*domain.ProviderConfig, error) {
	var cfg domain.ProviderConfig
	var stored map[string]string
	if err := row.Scan(
		&cfg.ID, &cfg.PHID, &cfg.ProviderClass, &cfg.ProviderType, &cfg.ProviderDomain, &cfg.Enabled,
		&cfg.AllowLogin, &cfg.AllowRegistration, &cfg.AllowLink, &cfg.AllowUnlink,
		&stored, &cfg.CreatedAt, &cfg.UpdatedAt,
	); err != nil {
		return nil, err
	}
	props, err := q.codec.Decode(cfg.ProviderClass, stored)
	if err != nil {
		return nil, err
	}
	cfg.Properties = props
	return &cfg, nil
}
