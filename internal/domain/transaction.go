package domain

import "time"

// TransactionKind identifies a field-level change of a provider config.
type TransactionKind string

const (
	KindEnable            TransactionKind = "config:enable"
	KindAllowRegistration TransactionKind = "config:registration"
	KindAllowLink         TransactionKind = "config:link"
	KindAllowUnlink       TransactionKind = "config:unlink"
	KindSetProperty       TransactionKind = "config:property"
)

// PropertyMetadataKey is the metadata key carried by SetProperty records.
const PropertyMetadataKey = "auth:property"

// RedactedValue replaces secret property values in transaction records.
const RedactedValue = "********"

// Change is one typed edit of a provider config. The set of implementations is
// closed: Enable, AllowRegistration, AllowLink, AllowUnlink and SetProperty.
type Change interface {
	Kind() TransactionKind
	// MetadataKey is the property key for SetProperty and "" otherwise.
	MetadataKey() string
	// OldValue reads the current value of the target field from cfg.
	OldValue(cfg *ProviderConfig) string
	NewValue() string
	// Apply writes the new value onto cfg.
	Apply(cfg *ProviderConfig)

	sealed()
}

// HasEffect reports whether applying c would change cfg.
func HasEffect(c Change, cfg *ProviderConfig) bool {
	return c.OldValue(cfg) != c.NewValue()
}

// Enable toggles whether the provider is usable.
type Enable struct{ Enabled bool }

func (Enable) Kind() TransactionKind { return KindEnable }
func (Enable) MetadataKey() string { return "" }
func (Enable) OldValue(cfg *ProviderConfig) string { return boolString(cfg.Enabled) }
func (c Enable) NewValue() string { return boolString(c.Enabled) }
func (c Enable) Apply(cfg *ProviderConfig) { cfg.Enabled = c.Enabled }
func (Enable) sealed() {}

// AllowRegistration toggles account registration through the provider.
type AllowRegistration struct{ Allow bool }

func (AllowRegistration) Kind() TransactionKind { return KindAllowRegistration }
func (AllowRegistration) MetadataKey() string { return "" }
func (AllowRegistration) OldValue(cfg *ProviderConfig) string { return boolString(cfg.AllowRegistration) }
func (c AllowRegistration) NewValue() string { return boolString(c.Allow) }
func (c AllowRegistration) Apply(cfg *ProviderConfig) { cfg.AllowRegistration = c.Allow }
func (AllowRegistration) sealed() {}

// AllowLink toggles linking existing accounts to the provider.
type AllowLink struct{ Allow bool }

func (AllowLink) Kind() TransactionKind { return KindAllowLink }
func (AllowLink) MetadataKey() string { return "" }
func (AllowLink) OldValue(cfg *ProviderConfig) string { return boolString(cfg.AllowLink) }
func (c AllowLink) NewValue() string { return boolString(c.Allow) }
func (c AllowLink) Apply(cfg *ProviderConfig) { cfg.AllowLink = c.Allow }
func (AllowLink) sealed() {}

// AllowUnlink toggles unlinking accounts from the provider.
type AllowUnlink struct{ Allow bool }

func (AllowUnlink) Kind() TransactionKind { return KindAllowUnlink }
func (AllowUnlink) MetadataKey() string { return "" }
func (AllowUnlink) OldValue(cfg *ProviderConfig) string { return boolString(cfg.AllowUnlink) }
func (c AllowUnlink) NewValue() string { return boolString(c.Allow) }
func (c AllowUnlink) Apply(cfg *ProviderConfig) { cfg.AllowUnlink = c.Allow }
func (AllowUnlink) sealed() {}

// SetProperty sets one provider-specific property.
type SetProperty struct {
	Key   string
	Value string
}

func (SetProperty) Kind() TransactionKind { return KindSetProperty }
func (c SetProperty) MetadataKey() string { return c.Key }
func (c SetProperty) OldValue(cfg *ProviderConfig) string { return cfg.Property(c.Key) }
func (c SetProperty) NewValue() string { return c.Value }
func (c SetProperty) Apply(cfg *ProviderConfig) { cfg.SetProperty(c.Key, c.Value) }
func (SetProperty) sealed() {}

func boolString(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// Transaction is the persisted record of one applied change.
type Transaction struct {
	ID            string
	ConfigID      int64
	Kind          TransactionKind
	MetadataKey   string
	OldValue      string
	NewValue      string
	Actor         string
	ContentSource string
	CreatedAt     time.Time
}

// AuditEntry is the append-only audit row written alongside a group of transactions.
type AuditEntry struct {
	ID           string
	Action       string
	ResourceType string
	ResourceID   string
	Actor        string
	Details      map[string]interface{}
	CreatedAt    time.Time
}

// Audit actions.
const (
	AuditActionCreate = "auth_provider_config.create"
	AuditActionEdit   = "auth_provider_config.edit"
)
