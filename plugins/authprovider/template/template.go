// Package template is a reusable skeleton for custom auth-provider plugins.
package template

import (
	"strings"

	"warden.dev/warden/pkg/authproviderplugin"
)

// New returns a field-driven provider with a normalized kind. The result is a
// "custom" provider on the local domain; callers adjust TypeKey, Domain and
// Check as needed before registering it.
func New(kind, displayName string, fields ...authproviderplugin.FieldSpec) *authproviderplugin.Base {
	kind = strings.TrimSpace(kind)
	name := strings.TrimSpace(displayName)
	if name == "" {
		name = kind
	}
	return &authproviderplugin.Base{
		KindKey:     kind,
		DisplayName: name,
		Description: "Custom auth-provider plugin",
		TypeKey:     "custom",
		Domain:      "self",
		Fields:      fields,
	}
}

// Factory wraps a provider value in a registry factory.
func Factory(p authproviderplugin.Provider) authproviderplugin.Factory {
	return func() authproviderplugin.Provider { return p }
}
