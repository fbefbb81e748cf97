package example

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warden.dev/warden/pkg/authproviderplugin"
)

func TestProvider_Identity(t *testing.T) {
	p := New()
	assert.Equal(t, Kind, p.Kind())
	assert.Equal(t, "oauth", p.ProviderType())
	assert.Equal(t, "example.com", p.ProviderDomain())
	assert.Equal(t, []string{ClientSecret}, p.SecretKeys())
}

func TestProvider_ProcessEditForm(t *testing.T) {
	tests := []struct {
		name       string
		form       url.Values
		wantIssues authproviderplugin.Issues
	}{
		{
			name:       "valid without hosted domain",
			form:       url.Values{ClientID: {"cid"}, ClientSecret: {"sec"}},
			wantIssues: authproviderplugin.Issues{},
		},
		{
			name:       "missing secret",
			form:       url.Values{ClientID: {"cid"}},
			wantIssues: authproviderplugin.Issues{ClientSecret: "Required"},
		},
		{
			name:       "hosted domain is an email",
			form:       url.Values{ClientID: {"cid"}, ClientSecret: {"sec"}, HostedDomain: {"me@corp.example"}},
			wantIssues: authproviderplugin.Issues{HostedDomain: "Invalid"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auth/config/new/"+Kind, strings.NewReader(tt.form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

			p := New()
			result := p.ProcessEditForm(req, p.ReadFormValuesFromRequest(req), nil)
			assert.Equal(t, tt.wantIssues, result.Issues)
			assert.Equal(t, len(tt.wantIssues) > 0, len(result.Errors) > 0)
		})
	}
}

func TestProvider_PreviewIncludesHostedDomain(t *testing.T) {
	p := New()
	form := &authproviderplugin.Form{}
	p.ExtendEditForm(form, authproviderplugin.Properties{
		{Key: ClientID, Value: "cid"},
		{Key: HostedDomain, Value: "corp.example"},
	}, authproviderplugin.Issues{})

	require.Len(t, form.Fields, 4)
	preview := form.Fields[3]
	assert.Equal(t, authproviderplugin.FieldStatic, preview.Type)
	assert.True(t, strings.HasPrefix(preview.Value, Endpoint.AuthURL+"?"))
	assert.Contains(t, preview.Value, "hd=corp.example")
	assert.Contains(t, preview.Value, "client_id=cid")
}
