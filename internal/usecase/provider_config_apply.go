package usecase

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"warden.dev/warden/internal/domain"
	"warden.dev/warden/internal/pkg/logger"
)

const auditResourceType = "auth_provider_config"

// ApplyResult describes one committed batch of changes.
type ApplyResult struct {
	Config  *domain.ProviderConfig
	Applied []domain.Transaction
	Skipped []domain.Change
	Created bool
}

// Apply writes changes to the resolved config in one database transaction.
// Existing configs are locked and changes are evaluated against the locked
// state. Changes without effect are skipped, or abort the batch with
// domain.ErrNoEffect when the editor does not continue on no effect.
func (e *ProviderConfigEditor) Apply(ctx context.Context, res *Resolution, changes []domain.Change, actor, source string) (*ApplyResult, error) {
	result := &ApplyResult{Created: res.IsNew}
	secretKeys := res.Provider.SecretKeys()
	now := e.now().UTC()

	err := e.store.InTx(ctx, func(tx domain.ConfigTx) error {
		var cfg *domain.ProviderConfig
		if res.IsNew {
			cfg = res.Config.Clone()
			cfg.ProviderType = res.Provider.ProviderType()
			cfg.ProviderDomain = res.Provider.ProviderDomain()
		} else {
			locked, err := tx.LockConfig(ctx, res.Config.ID)
			if err != nil {
				return fmt.Errorf("lock config %d: %w", res.Config.ID, err)
			}
			cfg = locked
		}

		applied := make([]domain.Transaction, 0, len(changes))
		skipped := make([]domain.Change, 0)
		for _, change := range changes {
			if !domain.HasEffect(change, cfg) {
				if !e.continueOnNoEffect {
					return fmt.Errorf("%s %s: %w", change.Kind(), change.MetadataKey(), domain.ErrNoEffect)
				}
				skipped = append(skipped, change)
				continue
			}
			record := domain.Transaction{
				ID:            uuid.Must(uuid.NewV7()).String(),
				Kind:          change.Kind(),
				MetadataKey:   change.MetadataKey(),
				OldValue:      change.OldValue(cfg),
				NewValue:      change.NewValue(),
				Actor:         actor,
				ContentSource: source,
				CreatedAt:     now,
			}
			if change.Kind() == domain.KindSetProperty && slices.Contains(secretKeys, change.MetadataKey()) {
				record.OldValue = redact(record.OldValue)
				record.NewValue = redact(record.NewValue)
			}
			change.Apply(cfg)
			applied = append(applied, record)
		}

		action := domain.AuditActionEdit
		switch {
		case res.IsNew:
			action = domain.AuditActionCreate
			cfg.PHID = domain.PHIDPrefix + uuid.Must(uuid.NewV7()).String()
			cfg.CreatedAt, cfg.UpdatedAt = now, now
			if err := tx.InsertConfig(ctx, cfg); err != nil {
				return fmt.Errorf("insert config: %w", err)
			}
		case len(applied) > 0:
			cfg.UpdatedAt = now
			if err := tx.UpdateConfig(ctx, cfg); err != nil {
				return fmt.Errorf("update config %d: %w", cfg.ID, err)
			}
		}

		for i := range applied {
			applied[i].ConfigID = cfg.ID
		}
		if len(applied) > 0 {
			if err := tx.InsertTransactions(ctx, applied); err != nil {
				return fmt.Errorf("insert transactions: %w", err)
			}
		}

		if res.IsNew || len(applied) > 0 {
			if err := tx.InsertAuditLog(ctx, domain.AuditEntry{
				ID:           uuid.Must(uuid.NewV7()).String(),
				Action:       action,
				ResourceType: auditResourceType,
				ResourceID:   cfg.PHID,
				Actor:        actor,
				Details: map[string]interface{}{
					"provider_class": cfg.ProviderClass,
					"applied":        kindsOf(applied),
					"skipped":        changeKinds(skipped),
				},
				CreatedAt: now,
			}); err != nil {
				return fmt.Errorf("insert audit log: %w", err)
			}
		}

		result.Config = cfg
		result.Applied = applied
		result.Skipped = skipped
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.afterCommit(ctx, result, actor)
	return result, nil
}

func (e *ProviderConfigEditor) afterCommit(ctx context.Context, result *ApplyResult, actor string) {
	for _, tx := range result.Applied {
		e.metrics.Applied(string(tx.Kind))
	}
	for _, c := range result.Skipped {
		e.metrics.Skipped(string(c.Kind()))
	}

	logger.Info("auth provider config saved",
		zap.Int64("config_id", result.Config.ID),
		zap.String("provider_class", result.Config.ProviderClass),
		zap.Bool("created", result.Created),
		zap.Int("applied", len(result.Applied)),
		zap.Int("skipped", len(result.Skipped)),
		zap.String("actor", actor),
	)

	if e.events == nil || (!result.Created && len(result.Applied) == 0) {
		return
	}
	eventType := domain.EventProviderConfigUpdated
	if result.Created {
		eventType = domain.EventProviderConfigCreated
	}
	payload, err := domain.ProviderConfigChangedPayload{
		ConfigID:      result.Config.ID,
		PHID:          result.Config.PHID,
		ProviderClass: result.Config.ProviderClass,
		Applied:       kindsOf(result.Applied),
		Skipped:       changeKinds(result.Skipped),
	}.ToJSON()
	if err != nil {
		logger.Error("marshal provider config event payload", zap.Error(err))
		return
	}
	event := &domain.DomainEvent{
		EventID:       uuid.Must(uuid.NewV7()).String(),
		EventType:     eventType,
		AggregateType: auditResourceType,
		AggregateID:   result.Config.PHID,
		Payload:       payload,
		CreatedBy:     actor,
		CreatedAt:     e.now().UTC(),
	}
	// The batch is committed; handler failures are logged only.
	if err := e.events.Dispatch(ctx, event); err != nil {
		logger.Warn("provider config event dispatch failed",
			zap.String("event_id", event.EventID),
			zap.Error(err),
		)
	}
}

func redact(v string) string {
	if v == "" {
		return ""
	}
	return domain.RedactedValue
}

func kindsOf(txs []domain.Transaction) []string {
	out := make([]string, 0, len(txs))
	for _, tx := range txs {
		out = append(out, transactionLabel(tx.Kind, tx.MetadataKey))
	}
	return out
}

func changeKinds(changes []domain.Change) []string {
	out := make([]string, 0, len(changes))
	for _, c := range changes {
		out = append(out, transactionLabel(c.Kind(), c.MetadataKey()))
	}
	return out
}

func transactionLabel(kind domain.TransactionKind, key string) string {
	if key == "" {
		return string(kind)
	}
	return string(kind) + ":" + key
}
