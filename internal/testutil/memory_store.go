package testutil

import (
	"context"
	"errors"
	"sort"
	"sync"

	"warden.dev/warden/internal/domain"
)

var _ domain.ConfigStore = (*MemoryConfigStore)(nil)

// MemoryConfigStore is an in-memory domain.ConfigStore. InTx restores a snapshot when fn fails.
type MemoryConfigStore struct {
	mu      sync.Mutex
	nextID  int64
	configs map[int64]*domain.ProviderConfig
	txs     []domain.Transaction
	audits  []domain.AuditEntry

	// FailInsertTransactions makes InsertTransactions fail inside InTx.
	FailInsertTransactions error
}

// NewMemoryConfigStore returns an empty store.
func NewMemoryConfigStore() *MemoryConfigStore {
	return &MemoryConfigStore{nextID: 1, configs: map[int64]*domain.ProviderConfig{}}
}

// Seed stores cfg as-is, keeping its ID.
func (s *MemoryConfigStore) Seed(cfg *domain.ProviderConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[cfg.ID] = cfg.Clone()
	if cfg.ID >= s.nextID {
		s.nextID = cfg.ID + 1
	}
}

// Transactions returns every stored transaction in insertion order.
func (s *MemoryConfigStore) Transactions() []domain.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Transaction(nil), s.txs...)
}

// AuditEntries returns every stored audit entry in insertion order.
func (s *MemoryConfigStore) AuditEntries() []domain.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.AuditEntry(nil), s.audits...)
}

func (s *MemoryConfigStore) GetConfig(_ context.Context, id int64) (*domain.ProviderConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, ok := s.configs[id]
	if !ok {
		return nil, domain.ErrConfigNotFound
	}
	return cfg.Clone(), nil
}

func (s *MemoryConfigStore) ListConfigs(_ context.Context) ([]*domain.ProviderConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.ProviderConfig, 0, len(s.configs))
	for _, cfg := range s.configs {
		out = append(out, cfg.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryConfigStore) ListConfigsByProviderClass(ctx context.Context, providerClass string) ([]*domain.ProviderConfig, error) {
	all, _ := s.ListConfigs(ctx)
	var out []*domain.ProviderConfig
	for _, cfg := range all {
		if cfg.ProviderClass == providerClass {
			out = append(out, cfg)
		}
	}
	return out, nil
}

func (s *MemoryConfigStore) ListTransactions(_ context.Context, configID int64) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Transaction
	for i := len(s.txs) - 1; i >= 0; i-- {
		if s.txs[i].ConfigID == configID {
			out = append(out, s.txs[i])
		}
	}
	return out, nil
}

func (s *MemoryConfigStore) InTx(ctx context.Context, fn func(tx domain.ConfigTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make(map[int64]*domain.ProviderConfig, len(s.configs))
	for id, cfg := range s.configs {
		snapshot[id] = cfg.Clone()
	}
	nextID, txCount, auditCount := s.nextID, len(s.txs), len(s.audits)

	if err := fn(&memTx{s: s}); err != nil {
		s.configs = snapshot
		s.nextID = nextID
		s.txs = s.txs[:txCount]
		s.audits = s.audits[:auditCount]
		return err
	}
	return nil
}

type memTx struct {
	s *MemoryConfigStore
}

func (t *memTx) LockConfig(_ context.Context, id int64) (*domain.ProviderConfig, error) {
	cfg, ok := t.s.configs[id]
	if !ok {
		return nil, domain.ErrConfigNotFound
	}
	return cfg.Clone(), nil
}

func (t *memTx) InsertConfig(_ context.Context, cfg *domain.ProviderConfig) error {
	for _, existing := range t.s.configs {
		if existing.ProviderClass == cfg.ProviderClass {
			return domain.ErrProviderAlreadyConfigured
		}
	}
	cfg.ID = t.s.nextID
	t.s.nextID++
	t.s.configs[cfg.ID] = cfg.Clone()
	return nil
}

func (t *memTx) UpdateConfig(_ context.Context, cfg *domain.ProviderConfig) error {
	if _, ok := t.s.configs[cfg.ID]; !ok {
		return domain.ErrConfigNotFound
	}
	t.s.configs[cfg.ID] = cfg.Clone()
	return nil
}

func (t *memTx) InsertTransactions(_ context.Context, txs []domain.Transaction) error {
	if t.s.FailInsertTransactions != nil {
		return t.s.FailInsertTransactions
	}
	t.s.txs = append(t.s.txs, txs...)
	return nil
}

func (t *memTx) InsertAuditLog(_ context.Context, entry domain.AuditEntry) error {
	if entry.ResourceID == "" {
		return errors.New("audit entry without resource id")
	}
	t.s.audits = append(t.s.audits, entry)
	return nil
}
