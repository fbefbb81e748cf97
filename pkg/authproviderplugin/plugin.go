// Package authproviderplugin is the public contract for third-party auth provider plugins.
//
// Plugins build a Provider, usually by configuring a Base with field specs, and
// register a factory from init(). The composition root imports
// plugins/authprovider/autoreg so every plugin package is linked in.
package authproviderplugin

import (
	"fmt"

	"golang.org/x/oauth2"

	"warden.dev/warden/internal/domain"
	internalprovider "warden.dev/warden/internal/provider"
)

// Provider is the provider contract implemented by plugins.
type Provider = internalprovider.Provider

// Factory builds a Provider.
type Factory = internalprovider.Factory

// Base implements Provider from declared fields.
type Base = internalprovider.Base

// FieldSpec declares one provider property.
type FieldSpec = internalprovider.FieldSpec

// Properties is the ordered property set a provider reads and normalizes.
type Properties = domain.Properties

// Config is the stored provider configuration handed to ReadFormValuesFromProvider.
type Config = domain.ProviderConfig

// Form and FormField are the edit form model passed to ExtendEditForm.
type (
	Form      = internalprovider.Form
	FormField = internalprovider.FormField
	FieldType = internalprovider.FieldType
	Issues    = internalprovider.Issues
)

// TypeDescriptor is the discoverable metadata returned by registry/API.
type TypeDescriptor = internalprovider.TypeDescriptor

// Field types.
const (
	FieldText     = internalprovider.FieldText
	FieldPassword = internalprovider.FieldPassword
	FieldCheckbox = internalprovider.FieldCheckbox
	FieldTextArea = internalprovider.FieldTextArea
	FieldStatic   = internalprovider.FieldStatic
)

// SecretMask is rendered in place of stored secrets.
const SecretMask = internalprovider.SecretMask

// RegisterProvider registers a provider factory.
func RegisterProvider(factory Factory) error {
	return internalprovider.Register(factory)
}

// MustRegisterProvider registers a provider factory and panics on failure.
func MustRegisterProvider(factory Factory) {
	if err := RegisterProvider(factory); err != nil {
		panic(fmt.Sprintf("auth provider plugin register failed: %v", err))
	}
}

// ListRegisteredTypes returns current registered provider kinds.
func ListRegisteredTypes() []TypeDescriptor {
	return internalprovider.ListTypes()
}

// AuthorizationPreview renders the authorization URL of an OAuth client config.
func AuthorizationPreview(cfg *oauth2.Config, opts ...oauth2.AuthCodeOption) string {
	return internalprovider.AuthorizationPreview(cfg, opts...)
}
