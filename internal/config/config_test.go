package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/routedoc/internal/openapi"
	"github.com/phobologic/routedoc/internal/resolve"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultPath)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadValid(t *testing.T) {
	path := writeConfig(t, `
frontend = "sidecar"
format = "yaml"
keep_going = true

[info]
title = "Shop"
version = "2.1"

[[servers]]
url = "https://api.example.com"
description = "production"

[endpoint]
marker = "ShopEndpoint"

[security.schemes.bearer]
type = "http"
scheme = "bearer"

[security.schemes.oauth]
type = "oauth2"

[security.schemes.oauth.flows.implicit]
authorizationUrl = "https://example.com/auth"

[security.contexts]
UserContext = "bearer"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sidecar", cfg.Frontend)
	assert.Equal(t, openapi.YAML, cfg.OutputFormat())
	assert.True(t, cfg.KeepGoing)
	assert.Equal(t, int64(DefaultMaxFileSize), cfg.MaxFileSize)
	assert.Equal(t, "ShopEndpoint", cfg.Endpoint.Marker)
	assert.Equal(t, resolve.DefaultHandler, cfg.Endpoint.Handler)
	assert.Equal(t, resolve.DefaultAsyncPrefix, cfg.Endpoint.AsyncPrefix)

	opts, err := cfg.ResolveOptions()
	require.NoError(t, err)
	assert.Equal(t, openapi3.Info{Title: "Shop", Version: "2.1"}, opts.Info)
	assert.Equal(t, openapi3.Servers{{URL: "https://api.example.com", Description: "production"}}, opts.Servers)
	require.Contains(t, opts.SecuritySchemes, "bearer")
	assert.Equal(t, "http", opts.SecuritySchemes["bearer"].Value.Type)
	assert.Equal(t, "bearer", opts.SecuritySchemes["bearer"].Value.Scheme)
	flows := opts.SecuritySchemes["oauth"].Value.Flows
	require.NotNil(t, flows)
	require.NotNil(t, flows.Implicit)
	assert.Equal(t, "https://example.com/auth", flows.Implicit.AuthorizationURL)
	assert.True(t, opts.KeepGoing)
	require.NotNil(t, opts.ContextScheme)
	scheme, ok := opts.ContextScheme("UserContext")
	assert.True(t, ok)
	assert.Equal(t, "bearer", scheme)
	_, ok = opts.ContextScheme("AdminContext")
	assert.False(t, ok)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "bad values",
			body: `
frontend = "clang"
format = "xml"

[security.contexts]
UserContext = "missing"
`,
			want: []string{`frontend="clang"`, `format="xml"`, `security.contexts.UserContext="missing"`},
		},
		{
			name: "scheme without type",
			body: "[security.schemes.bearer]\nscheme = \"bearer\"\n",
			want: []string{"security.schemes.bearer.type is required"},
		},
		{
			name: "scheme field of the wrong type",
			body: "[security.schemes.bearer]\ntype = 5\n",
			want: []string{"security.schemes:"},
		},
		{
			name: "unknown key",
			body: "colour = \"blue\"\n",
			want: []string{"unknown config keys", "colour"},
		},
		{
			name: "syntax",
			body: "frontend = \n",
			want: []string{"failed to parse config"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			for _, w := range tt.want {
				assert.Contains(t, err.Error(), w)
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)

	_, err = Load("")
	require.Error(t, err)
}

func TestLoadOrDefault(t *testing.T) {
	t.Setenv("ROUTEDOC_FORMAT", "")
	t.Setenv("ROUTEDOC_FRONTEND", "")

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), DefaultPath))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, "auto", cfg.Frontend)
	assert.Equal(t, openapi.JSON, cfg.OutputFormat())
	opts, err := cfg.ResolveOptions()
	require.NoError(t, err)
	assert.Nil(t, opts.ContextScheme)
	assert.Empty(t, opts.Servers)
	assert.Nil(t, opts.SecuritySchemes)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ROUTEDOC_FORMAT", "yaml")
	t.Setenv("ROUTEDOC_FRONTEND", "tree-sitter")

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), DefaultPath))
	require.NoError(t, err)
	assert.Equal(t, "yaml", cfg.Format)
	assert.Equal(t, "tree-sitter", cfg.Frontend)
}
