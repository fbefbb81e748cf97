// Package provider defines the authentication provider contract, the form model
// providers render into, the kind-keyed registry and the built-in providers.
package provider

import (
	"net/http"

	"warden.dev/warden/internal/domain"
)

// SecretMask is rendered in place of a stored secret. Submitting it back keeps the secret.
const SecretMask = "********"

// TypeDescriptor describes a provider kind exposed to admin UI/API.
type TypeDescriptor struct {
	Kind         string                 `json:"kind"`
	DisplayName  string                 `json:"display_name"`
	Description  string                 `json:"description,omitempty"`
	ProviderType string                 `json:"provider_type"`
	Domain       string                 `json:"domain"`
	BuiltIn      bool                   `json:"built_in"`
	Fields       []FieldDescriptor      `json:"fields,omitempty"`
	ConfigSchema map[string]interface{} `json:"config_schema,omitempty"`
}

// FieldDescriptor is the public metadata of one provider property.
type FieldDescriptor struct {
	Key    string `json:"key"`
	Label  string `json:"label"`
	Secret bool   `json:"secret,omitempty"`
}

// Label returns the label of a property key, or the key itself when unknown.
func (d TypeDescriptor) Label(key string) string {
	for _, f := range d.Fields {
		if f.Key == key {
			return f.Label
		}
	}
	return key
}

// Issues maps a property key to a short per-field problem ("Required", "Invalid").
type Issues map[string]string

// EditFormResult is the outcome of provider-side validation.
type EditFormResult struct {
	// Errors are human-readable messages. Any entry blocks the submission.
	Errors []string
	Issues Issues
	// Properties are the normalized values, in field order.
	Properties domain.Properties
}

// Provider is one authentication provider implementation. Implementations are
// stateless; a Factory may return the same value on every call.
type Provider interface {
	// Kind is the stable registry key, stored as the config's provider class.
	Kind() string
	ProviderName() string
	ProviderType() string
	ProviderDomain() string
	Describe() TypeDescriptor
	// SecretKeys lists property keys that are sealed at rest and never echoed.
	SecretKeys() []string

	// ReadFormValuesFromRequest extracts raw property values from a submitted form.
	ReadFormValuesFromRequest(r *http.Request) domain.Properties
	// ReadFormValuesFromProvider reads the current property values of a config.
	ReadFormValuesFromProvider(cfg *domain.ProviderConfig) domain.Properties
	// ProcessEditForm validates and normalizes submitted values against the current ones.
	ProcessEditForm(r *http.Request, values, current domain.Properties) EditFormResult
	// ExtendEditForm appends the provider's fields to the edit form.
	ExtendEditForm(form *Form, values domain.Properties, issues Issues)
}

// Factory builds a Provider.
type Factory func() Provider
