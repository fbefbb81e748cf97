// Package example is a third-party style OAuth provider for the fictional
// example.com identity service, registered through the public plugin contract.
package example

import (
	"strings"

	"golang.org/x/oauth2"

	"warden.dev/warden/pkg/authproviderplugin"
	"warden.dev/warden/plugins/authprovider/template"
)

// Kind is the registry key of the plugin.
const Kind = "ExampleOAuthProvider"

// Property keys.
const (
	ClientID     = "example:client-id"
	ClientSecret = "example:client-secret"
	HostedDomain = "example:hosted-domain"
)

// Endpoint is the example.com authorization server.
var Endpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.example.com/o/oauth2/auth",
	TokenURL: "https://accounts.example.com/o/oauth2/token",
}

// Provider authenticates users against accounts.example.com.
type Provider struct {
	*authproviderplugin.Base
}

// New returns the example.com provider.
func New() *Provider {
	b := template.New(Kind, "Example Accounts",
		authproviderplugin.FieldSpec{Key: ClientID, Label: "Example Client ID", Required: true},
		authproviderplugin.FieldSpec{Key: ClientSecret, Label: "Example Client Secret", Required: true, Secret: true},
		authproviderplugin.FieldSpec{Key: HostedDomain, Label: "Hosted Domain",
			Caption:  "Optional. Only accept accounts from this domain.",
			Validate: validateHostedDomain},
	)
	b.Description = "Allow users to log in or register with their example.com account."
	b.TypeKey = "oauth"
	b.Domain = "example.com"
	return &Provider{Base: b}
}

// OAuth2Config builds the client configuration described by values.
func (p *Provider) OAuth2Config(values authproviderplugin.Properties) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     values.Value(ClientID),
		ClientSecret: values.Value(ClientSecret),
		Endpoint:     Endpoint,
		Scopes:       []string{"openid", "email", "profile"},
	}
}

// ExtendEditForm appends the fields and an authorization URL preview.
func (p *Provider) ExtendEditForm(form *authproviderplugin.Form, values authproviderplugin.Properties, issues authproviderplugin.Issues) {
	p.Base.ExtendEditForm(form, values, issues)

	cfg := p.OAuth2Config(values)
	if cfg.ClientID == "" {
		return
	}
	var opts []oauth2.AuthCodeOption
	if hd := values.Value(HostedDomain); hd != "" && issues[HostedDomain] == "" {
		opts = append(opts, oauth2.SetAuthURLParam("hd", hd))
	}
	form.Append(authproviderplugin.FormField{
		Name:  "example:preview",
		Label: "Authorization URL Preview",
		Type:  authproviderplugin.FieldStatic,
		Value: authproviderplugin.AuthorizationPreview(cfg, opts...),
	})
}

func validateHostedDomain(v string) string {
	if strings.ContainsAny(v, "@/: ") || !strings.Contains(v, ".") {
		return "Hosted Domain must be a bare domain name, like example.com."
	}
	return ""
}

func init() {
	authproviderplugin.MustRegisterProvider(func() authproviderplugin.Provider { return New() })
}
