package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warden.dev/warden/internal/api/middleware"
	"warden.dev/warden/internal/domain"
	"warden.dev/warden/internal/policy"
	"warden.dev/warden/internal/provider"
	"warden.dev/warden/internal/testutil"
	"warden.dev/warden/internal/usecase"
	"warden.dev/warden/plugins/authprovider/example"
)

var adminViewer = domain.Viewer{UserID: "u-1", Username: "alice", Roles: []string{"auth:admin"}}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type testEnv struct {
	store  *testutil.MemoryConfigStore
	router *gin.Engine
}

func newTestEnv(t *testing.T, viewer domain.Viewer) *testEnv {
	t.Helper()
	return newTestEnvWith(t, viewer, true)
}

func newTestEnvWith(t *testing.T, viewer domain.Viewer, continueOnNoEffect bool) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry := provider.NewRegistry()
	require.NoError(t, registry.Register(func() provider.Provider { return provider.NewPasswordProvider() }))
	require.NoError(t, registry.Register(func() provider.Provider { return provider.NewLDAPProvider() }))
	require.NoError(t, registry.Register(func() provider.Provider { return example.New() }))

	enforcer, err := policy.New(nil)
	require.NoError(t, err)

	store := testutil.NewMemoryConfigStore()
	editor := usecase.NewProviderConfigEditor(usecase.EditorDeps{
		Store:              store,
		Providers:          registry,
		Policy:             enforcer,
		ContinueOnNoEffect: continueOnNoEffect,
	})
	server, err := NewServer(ServerDeps{Editor: editor, DB: fakePinger{}})
	require.NoError(t, err)

	router := gin.New()
	router.Use(middleware.RequestID(), middleware.ErrorHandler())
	router.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(middleware.SetViewer(c.Request.Context(), viewer))
		c.Next()
	})
	router.GET("/auth/", server.ListConfigs)
	router.GET("/auth/config/new/", server.ChooseProvider)
	router.Match([]string{http.MethodGet, http.MethodPost}, "/auth/config/new/:kind", server.NewConfig)
	router.Match([]string{http.MethodGet, http.MethodPost}, "/auth/config/edit/:id", server.EditConfig)

	api := router.Group("/api/v1", middleware.MustOpenAPIValidator("/api/v1"))
	api.GET("/health/live", server.GetLiveness)
	api.GET("/health/ready", server.GetReadiness)
	api.GET("/auth/providers", server.ListAuthProviders)
	api.GET("/auth/configs", server.ListAuthProviderConfigs)
	api.GET("/auth/configs/:config_id", server.GetAuthProviderConfig)
	api.GET("/auth/configs/:config_id/transactions", server.ListAuthProviderConfigTransactions)

	return &testEnv{store: store, router: router}
}

func (e *testEnv) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) seedLDAP() *domain.ProviderConfig {
	cfg := domain.NewProviderConfig(provider.LDAPKind)
	cfg.ID = 42
	cfg.PHID = domain.PHIDPrefix + "ldap"
	cfg.Enabled = true
	cfg.ProviderType = "ldap"
	cfg.ProviderDomain = "self"
	cfg.Properties = map[string]string{
		provider.LDAPHost:         "ldap.internal",
		provider.LDAPBaseDN:       "dc=example,dc=com",
		provider.LDAPBindUser:     "cn=svc",
		provider.LDAPBindPassword: "hunter2",
	}
	e.store.Seed(cfg)
	return cfg
}

func TestEditConfig_MissingIDIsNotFound(t *testing.T) {
	env := newTestEnv(t, adminViewer)

	for _, target := range []string{"/auth/config/edit/999", "/auth/config/edit/abc", "/auth/config/new/NopeAuthProvider"} {
		w := env.do(http.MethodGet, target, nil)
		assert.Equal(t, http.StatusNotFound, w.Code, target)
		assert.Contains(t, w.Body.String(), "Not Found")
	}
}

func TestEditConfig_NoCapabilityIsNotFound(t *testing.T) {
	env := newTestEnv(t, domain.Viewer{UserID: "u-2", Roles: []string{"auth:viewer"}})
	env.seedLDAP()

	w := env.do(http.MethodGet, "/auth/config/edit/42", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNewConfig_RendersCreateForm(t *testing.T) {
	env := newTestEnv(t, adminViewer)

	w := env.do(http.MethodGet, "/auth/config/new/"+provider.LDAPKind, nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Add Authentication Provider")
	assert.Contains(t, body, `<button type="submit">Add Provider</button>`)
	assert.Contains(t, body, `<a href="/auth/config/new/">Cancel</a>`)
	assert.Contains(t, body, "tag-red")
	assert.Contains(t, body, `name="allowRegistration" value="1" checked`)
	assert.Contains(t, body, `name="ldap:host"`)
	assert.NotContains(t, body, "History")
}

func TestNewConfig_CreateRedirects(t *testing.T) {
	env := newTestEnv(t, adminViewer)

	w := env.do(http.MethodPost, "/auth/config/new/"+example.Kind, url.Values{
		"allowRegistration":  {"1"},
		"allowLink":          {"1"},
		"allowUnlink":        {"0"},
		example.ClientID:     {"abc"},
		example.ClientSecret: {"s3cret"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())
	assert.Equal(t, ListURI, w.Header().Get("Location"))

	configs, err := env.store.ListConfigsByProviderClass(context.Background(), example.Kind)
	require.NoError(t, err)
	require.Len(t, configs, 1)
	cfg := configs[0]
	assert.True(t, cfg.Enabled)
	assert.True(t, cfg.AllowRegistration)
	assert.True(t, cfg.AllowLink)
	assert.False(t, cfg.AllowUnlink)
	assert.Equal(t, "oauth", cfg.ProviderType)
	assert.Equal(t, "example.com", cfg.ProviderDomain)
	for _, tx := range env.store.Transactions() {
		assert.Equal(t, adminViewer.UserID, tx.Actor)
		assert.Equal(t, contentSourceWeb, tx.ContentSource)
	}
}

func TestNewConfig_DuplicateCreateIsInternalError(t *testing.T) {
	env := newTestEnv(t, adminViewer)
	env.seedLDAP()

	w := env.do(http.MethodGet, "/auth/config/new/"+provider.LDAPKind, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func TestEditConfig_NoEffectIsConflictWhenNotContinuing(t *testing.T) {
	env := newTestEnvWith(t, adminViewer, false)
	env.seedLDAP()

	w := env.do(http.MethodPost, "/auth/config/edit/42", url.Values{
		"allowRegistration":       {"1"},
		provider.LDAPHost:         {"ldap2.internal"},
		provider.LDAPBaseDN:       {"dc=example,dc=com"},
		provider.LDAPBindUser:     {"cn=svc"},
		provider.LDAPBindPassword: {provider.SecretMask},
	})
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "TRANSACTION_NO_EFFECT")

	cfg, err := env.store.GetConfig(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "ldap.internal", cfg.Property(provider.LDAPHost))
	assert.Empty(t, env.store.Transactions())
}

func TestNewConfig_ValidationErrorsRerender(t *testing.T) {
	env := newTestEnv(t, adminViewer)

	w := env.do(http.MethodPost, "/auth/config/new/"+provider.LDAPKind, url.Values{
		"allowLink":         {"yes"},
		provider.LDAPBaseDN: {"dc=retained"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "allowLink must be 0 or 1.")
	assert.Contains(t, body, "LDAP Hostname is required.")
	assert.Contains(t, body, `value="dc=retained"`)
	assert.Contains(t, body, `<span class="issue">Required</span>`)

	configs, err := env.store.ListConfigs(context.Background())
	require.NoError(t, err)
	assert.Empty(t, configs)
	assert.Empty(t, env.store.Transactions())
}

func TestEditConfig_RendersEditFormWithHistory(t *testing.T) {
	env := newTestEnv(t, adminViewer)
	env.seedLDAP()

	w := env.do(http.MethodPost, "/auth/config/edit/42", url.Values{
		"allowRegistration":       {"1"},
		provider.LDAPHost:         {"ldap2.internal"},
		provider.LDAPBaseDN:       {"dc=example,dc=com"},
		provider.LDAPBindUser:     {"cn=svc"},
		provider.LDAPBindPassword: {provider.SecretMask},
	})
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())

	w = env.do(http.MethodGet, "/auth/config/edit/42", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Edit Authentication Provider")
	assert.Contains(t, body, `<button type="submit">Save</button>`)
	assert.Contains(t, body, `<a href="/auth/">Cancel</a>`)
	assert.Contains(t, body, "tag-green")
	assert.Contains(t, body, "u-1 disabled account linking.")
	assert.Contains(t, body, "u-1 changed LDAP Hostname.")
	assert.Contains(t, body, `value="********"`)
	assert.NotContains(t, body, "hunter2")

	cfg, err := env.store.GetConfig(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", cfg.Property(provider.LDAPBindPassword))
	assert.Equal(t, "ldap2.internal", cfg.Property(provider.LDAPHost))
}

func TestListConfigs_AndChooser(t *testing.T) {
	env := newTestEnv(t, adminViewer)
	env.seedLDAP()

	w := env.do(http.MethodGet, "/auth/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `href="/auth/config/edit/42"`)
	assert.Contains(t, w.Body.String(), "Enabled")

	w = env.do(http.MethodGet, "/auth/config/new/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "/auth/config/new/"+example.Kind)
	assert.Contains(t, body, "/auth/config/new/"+provider.PasswordKind)
	assert.NotContains(t, body, "/auth/config/new/"+provider.LDAPKind)
}

func TestAPI_ConfigsAreRedacted(t *testing.T) {
	env := newTestEnv(t, adminViewer)
	env.seedLDAP()

	w := env.do(http.MethodGet, "/api/v1/auth/configs", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var list struct {
		Items []providerConfigDTO `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, domain.RedactedValue, list.Items[0].Properties[provider.LDAPBindPassword])
	assert.Equal(t, "ldap.internal", list.Items[0].Properties[provider.LDAPHost])
	assert.NotContains(t, w.Body.String(), "hunter2")

	w = env.do(http.MethodGet, "/api/v1/auth/configs/42", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "hunter2")
}

func TestAPI_ConfigNotFound(t *testing.T) {
	env := newTestEnv(t, adminViewer)

	w := env.do(http.MethodGet, "/api/v1/auth/configs/999", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "PROVIDER_CONFIG_NOT_FOUND")

	w = env.do(http.MethodGet, "/api/v1/auth/configs/nope", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_TransactionsAndProviders(t *testing.T) {
	env := newTestEnv(t, adminViewer)
	env.seedLDAP()

	w := env.do(http.MethodPost, "/auth/config/edit/42", url.Values{
		provider.LDAPHost:         {"ldap.internal"},
		provider.LDAPBaseDN:       {"dc=example,dc=com"},
		provider.LDAPBindUser:     {"cn=svc"},
		provider.LDAPBindPassword: {"rotated"},
	})
	require.Equal(t, http.StatusSeeOther, w.Code, w.Body.String())

	w = env.do(http.MethodGet, "/api/v1/auth/configs/42/transactions", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var txs struct {
		Items []transactionDTO `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &txs))
	require.NotEmpty(t, txs.Items)
	for _, tx := range txs.Items {
		if tx.MetadataKey == provider.LDAPBindPassword {
			assert.Equal(t, domain.RedactedValue, tx.NewValue)
			assert.Equal(t, "u-1 changed Anonymous Bind Password.", tx.Title)
		}
	}
	assert.NotContains(t, w.Body.String(), "rotated")

	w = env.do(http.MethodGet, "/api/v1/auth/providers", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var types struct {
		Items []providerTypeDTO `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &types))
	require.Len(t, types.Items, 3)
	byKind := map[string]providerTypeDTO{}
	for _, item := range types.Items {
		byKind[item.Kind] = item
	}
	assert.True(t, byKind[provider.LDAPKind].Configured)
	assert.False(t, byKind[example.Kind].Configured)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, adminViewer)

	w := env.do(http.MethodGet, "/api/v1/health/live", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = env.do(http.MethodGet, "/api/v1/health/ready", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"database":"ok"`)
}

func TestGetReadiness_DatabaseDown(t *testing.T) {
	gin.SetMode(gin.TestMode)
	server, err := NewServer(ServerDeps{DB: fakePinger{err: errors.New("dial tcp: refused")}})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/health/ready", nil)
	server.GetReadiness(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"unavailable"`)
}
