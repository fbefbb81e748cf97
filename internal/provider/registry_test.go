package provider

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProvider(kind string) Factory {
	return func() Provider {
		return &Base{KindKey: kind, TypeKey: "custom", Domain: "self"}
	}
}

func TestRegistryBuiltinsAndStrictRegistration(t *testing.T) {
	t.Parallel()

	r := newBuiltInRegistry()
	types := r.List()
	require.GreaterOrEqual(t, len(types), 3)

	kinds := make([]string, 0, len(types))
	for _, item := range types {
		kinds = append(kinds, item.Kind)
	}
	for _, expected := range []string{PasswordKind, LDAPKind, OAuthKind} {
		assert.True(t, slices.Contains(kinds, expected), "missing built-in %q in %#v", expected, kinds)
	}
	assert.True(t, slices.IsSorted(kinds))

	_, ok := r.Resolve("UnknownAuthProvider")
	assert.False(t, ok)

	require.NoError(t, r.Register(testProvider("CustomAuthProvider")))
	p, ok := r.Resolve("CustomAuthProvider")
	require.True(t, ok)
	assert.Equal(t, "CustomAuthProvider", p.Kind())

	assert.Error(t, r.Register(testProvider("CustomAuthProvider")), "duplicate kind must be rejected")
}

func TestRegistryRejectsInvalidFactories(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	assert.Error(t, r.Register(nil))
	assert.Error(t, r.Register(func() Provider { return nil }))
	assert.Error(t, r.Register(testProvider("  ")))
	assert.Empty(t, r.List())
}

func TestRegistryResolveIsCaseSensitive(t *testing.T) {
	t.Parallel()

	r := newBuiltInRegistry()
	_, ok := r.Resolve("ldapauthprovider")
	assert.False(t, ok)
	_, ok = r.Resolve(LDAPKind)
	assert.True(t, ok)
}

func TestRegistrySecretKeys(t *testing.T) {
	t.Parallel()

	r := newBuiltInRegistry()
	assert.Equal(t, []string{LDAPBindPassword}, r.SecretKeys(LDAPKind))
	assert.Equal(t, []string{OAuthClientSecret}, r.SecretKeys(OAuthKind))
	assert.Nil(t, r.SecretKeys(PasswordKind))
	assert.Nil(t, r.SecretKeys("Nope"))
}
