package provider

import (
	"fmt"
	"strconv"
	"strings"

	"warden.dev/warden/internal/domain"
)

// LDAPKind is the registry key of the LDAP provider.
const LDAPKind = "LDAPAuthProvider"

// LDAP property keys.
const (
	LDAPHost         = "ldap:host"
	LDAPPort         = "ldap:port"
	LDAPBaseDN       = "ldap:base-dn"
	LDAPBindUser     = "ldap:bind-user"
	LDAPBindPassword = "ldap:bind-password"
	LDAPStartTLS     = "ldap:start-tls"
)

// NewLDAPProvider returns the LDAP directory provider.
func NewLDAPProvider() *Base {
	return &Base{
		KindKey:     LDAPKind,
		DisplayName: "LDAP",
		Description: "Allow users to log in or register with LDAP credentials.",
		TypeKey:     "ldap",
		Domain:      "self",
		BuiltIn:     true,
		Fields: []FieldSpec{
			{Key: LDAPHost, Label: "LDAP Hostname", Required: true, Placeholder: "ldap.example.com"},
			{Key: LDAPPort, Label: "LDAP Port", Default: "389", Validate: validatePort},
			{Key: LDAPBaseDN, Label: "Base Distinguished Name", Required: true, Placeholder: "ou=People,dc=example,dc=com"},
			{Key: LDAPBindUser, Label: "Anonymous Bind Username", Caption: "Leave empty to bind as the user logging in."},
			{Key: LDAPBindPassword, Label: "Anonymous Bind Password", Secret: true},
			{Key: LDAPStartTLS, Label: "Use StartTLS", Type: FieldCheckbox, Default: "0",
				Caption: "Upgrade the connection with StartTLS before binding."},
		},
		Check: checkLDAPBind,
	}
}

func validatePort(v string) string {
	port, err := strconv.Atoi(v)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Sprintf("LDAP Port must be a number between 1 and 65535, got %q.", v)
	}
	return ""
}

func checkLDAPBind(values domain.Properties) ([]string, Issues) {
	user := strings.TrimSpace(values.Value(LDAPBindUser))
	pass := values.Value(LDAPBindPassword)
	if user == "" && pass != "" {
		return []string{"An anonymous bind password requires an anonymous bind username."},
			Issues{LDAPBindUser: "Required"}
	}
	return nil, nil
}
