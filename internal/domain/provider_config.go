// Package domain holds the auth provider configuration model, its typed change
// set and the storage contracts the editor depends on.
package domain

import (
	"errors"
	"maps"
	"time"
)

// PHIDPrefix prefixes the public identifier of every provider config.
const PHIDPrefix = "authcfg-"

// Sentinel errors shared across storage, editor and HTTP layers.
var (
	ErrConfigNotFound            = errors.New("auth provider config not found")
	ErrProviderAlreadyConfigured = errors.New("this provider is already configured")
	ErrNoEffect                  = errors.New("transaction has no effect")
)

// ProviderConfig is the persisted configuration of one authentication provider.
// At most one config exists per ProviderClass.
type ProviderConfig struct {
	ID                int64
	PHID              string
	ProviderClass     string
	ProviderType      string
	ProviderDomain    string
	Enabled           bool
	AllowLogin        bool
	AllowRegistration bool
	AllowLink         bool
	AllowUnlink       bool
	Properties        map[string]string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewProviderConfig returns the blank config used when creating a provider.
// Permission flags start enabled; the config itself starts disabled.
func NewProviderConfig(providerClass string) *ProviderConfig {
	return &ProviderConfig{
		ProviderClass:     providerClass,
		AllowLogin:        true,
		AllowRegistration: true,
		AllowLink:         true,
		AllowUnlink:       true,
		Properties:        map[string]string{},
	}
}

// IsNew reports whether the config has not been persisted yet.
func (c *ProviderConfig) IsNew() bool {
	return c.ID == 0
}

// Property returns a stored property value, or "" when unset.
func (c *ProviderConfig) Property(key string) string {
	if c.Properties == nil {
		return ""
	}
	return c.Properties[key]
}

// SetProperty stores one property value.
func (c *ProviderConfig) SetProperty(key, value string) {
	if c.Properties == nil {
		c.Properties = map[string]string{}
	}
	c.Properties[key] = value
}

// Clone returns a deep copy.
func (c *ProviderConfig) Clone() *ProviderConfig {
	out := *c
	out.Properties = maps.Clone(c.Properties)
	if out.Properties == nil {
		out.Properties = map[string]string{}
	}
	return &out
}

// Property is one provider-specific key/value pair.
type Property struct {
	Key   string
	Value string
}

// Properties is an ordered property set. Order is the provider's field order and
// decides the order in which property changes are recorded.
type Properties []Property

// Get returns the value for key.
func (p Properties) Get(key string) (string, bool) {
	for _, prop := range p {
		if prop.Key == key {
			return prop.Value, true
		}
	}
	return "", false
}

// Value returns the value for key, or "" when absent.
func (p Properties) Value(key string) string {
	v, _ := p.Get(key)
	return v
}

// Set replaces the value of an existing key or appends a new one.
func (p *Properties) Set(key, value string) {
	for i := range *p {
		if (*p)[i].Key == key {
			(*p)[i].Value = value
			return
		}
	}
	*p = append(*p, Property{Key: key, Value: value})
}

// Map returns the properties as an unordered map.
func (p Properties) Map() map[string]string {
	out := make(map[string]string, len(p))
	for _, prop := range p {
		out[prop.Key] = prop.Value
	}
	return out
}

// Viewer is the authenticated actor performing a request.
type Viewer struct {
	UserID   string
	Username string
	// Roles holds every policy subject of the viewer: roles and granted permissions.
	Roles []string
}

// IsAuthenticated reports whether the viewer carries an identity.
func (v Viewer) IsAuthenticated() bool {
	return v.UserID != ""
}

// Capability is an object-level permission.
type Capability string

const (
	CapabilityView Capability = "view"
	CapabilityEdit Capability = "edit"
)
