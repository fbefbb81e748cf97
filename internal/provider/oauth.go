package provider

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/oauth2"

	"warden.dev/warden/internal/domain"
)

// OAuthKind is the registry key of the generic OAuth 2.0 provider.
const OAuthKind = "OAuthAuthProvider"

// OAuth property keys.
const (
	OAuthClientID     = "oauth:client-id"
	OAuthClientSecret = "oauth:client-secret"
	OAuthAuthorizeURL = "oauth:authorize-url"
	OAuthTokenURL     = "oauth:token-url"
	OAuthScopes       = "oauth:scopes"
)

// previewState is the placeholder state parameter of rendered authorization URLs.
const previewState = "preview"

// OAuthProvider is a generic OAuth 2.0 authorization-code provider.
type OAuthProvider struct {
	*Base
}

// NewOAuthProvider returns the generic OAuth 2.0 provider.
func NewOAuthProvider() *OAuthProvider {
	return &OAuthProvider{Base: &Base{
		KindKey:     OAuthKind,
		DisplayName: "OAuth 2.0",
		Description: "Allow users to log in or register with any OAuth 2.0 authorization server.",
		TypeKey:     "oauth",
		Domain:      "self",
		BuiltIn:     true,
		Fields: []FieldSpec{
			{Key: OAuthClientID, Label: "Client ID", Required: true},
			{Key: OAuthClientSecret, Label: "Client Secret", Required: true, Secret: true},
			{Key: OAuthAuthorizeURL, Label: "Authorize URL", Required: true,
				Placeholder: "https://auth.example.com/oauth/authorize", Validate: endpointValidator("Authorize URL")},
			{Key: OAuthTokenURL, Label: "Token URL", Required: true,
				Placeholder: "https://auth.example.com/oauth/token", Validate: endpointValidator("Token URL")},
			{Key: OAuthScopes, Label: "Scopes", Default: "openid email profile",
				Caption: "Space separated."},
		},
	}}
}

// OAuth2Config builds the client configuration described by values.
func (p *OAuthProvider) OAuth2Config(values domain.Properties) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     values.Value(OAuthClientID),
		ClientSecret: values.Value(OAuthClientSecret),
		Endpoint: oauth2.Endpoint{
			AuthURL:  values.Value(OAuthAuthorizeURL),
			TokenURL: values.Value(OAuthTokenURL),
		},
		Scopes: strings.Fields(values.Value(OAuthScopes)),
	}
}

// ExtendEditForm appends the fields and, once the endpoints are valid, a preview
// of the authorization URL users will be sent to.
func (p *OAuthProvider) ExtendEditForm(form *Form, values domain.Properties, issues Issues) {
	p.Base.ExtendEditForm(form, values, issues)

	cfg := p.OAuth2Config(values)
	if cfg.ClientID == "" || issues[OAuthAuthorizeURL] != "" || ValidateEndpointURL(cfg.Endpoint.AuthURL) != nil {
		return
	}
	form.Append(FormField{
		Name:  "oauth:preview",
		Label: "Authorization URL Preview",
		Type:  FieldStatic,
		Value: AuthorizationPreview(cfg),
	})
}

// AuthorizationPreview renders the authorization URL for cfg with a placeholder state.
func AuthorizationPreview(cfg *oauth2.Config, opts ...oauth2.AuthCodeOption) string {
	return cfg.AuthCodeURL(previewState, opts...)
}

// ValidateEndpointURL checks that raw is an absolute http(s) URL.
func ValidateEndpointURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse endpoint url: %w", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("endpoint url scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("endpoint url has no host")
	}
	return nil
}

func endpointValidator(label string) func(string) string {
	return func(v string) string {
		if err := ValidateEndpointURL(v); err != nil {
			return label + " must be an absolute http(s) URL."
		}
		return ""
	}
}
