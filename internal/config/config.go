// Package config loads routedoc.toml and turns it into resolver options.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/phobologic/routedoc/internal/openapi"
	"github.com/phobologic/routedoc/internal/resolve"
)

// DefaultPath is the file the CLI looks for when --config is not given.
const DefaultPath = "routedoc.toml"

// DefaultMaxFileSize is the largest source file loaded, in bytes.
const DefaultMaxFileSize = 1_000_000

// Frontends lists the accepted values of Config.Frontend.
var Frontends = []string{"auto", "sourcekitten", "tree-sitter", "sidecar"}

// Config is the root configuration structure.
type Config struct {
	Frontend    string `toml:"frontend"`
	Format      string `toml:"format"`
	KeepGoing   bool   `toml:"keep_going"`
	MaxFileSize int64  `toml:"max_file_size"`

	Info     InfoConfig     `toml:"info"`
	Servers  []ServerConfig `toml:"servers"`
	Endpoint EndpointConfig `toml:"endpoint"`
	Security SecurityConfig `toml:"security"`
}

// InfoConfig is copied into the document's info block.
type InfoConfig struct {
	Title       string `toml:"title"`
	Version     string `toml:"version"`
	Description string `toml:"description"`
}

// ServerConfig is one entry of the document's servers list.
type ServerConfig struct {
	URL         string `toml:"url"`
	Description string `toml:"description"`
}

// EndpointConfig describes how endpoint declarations are recognised.
type EndpointConfig struct {
	// Marker is the protocol an endpoint type conforms to.
	Marker string `toml:"marker"`
	// Handler is the selector of the static handler method.
	Handler     string `toml:"handler"`
	AsyncPrefix string `toml:"async_prefix"`
	AsyncSuffix string `toml:"async_suffix"`
}

// SecurityConfig holds the security schemes, passed through verbatim, and
// the mapping from handler context type to scheme name.
type SecurityConfig struct {
	Schemes  map[string]map[string]any `toml:"schemes"`
	Contexts map[string]string         `toml:"contexts"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from a TOML file, applies defaults and
// environment variable overrides, and validates the result.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is required")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	cfg := &Config{}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys: %v", keys)
	}

	cfg.applyDefaults()
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads path when it exists and falls back to Default
// otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		applyEnvOverrides(cfg)
		return cfg, cfg.Validate()
	}
	return Load(path)
}

func (c *Config) applyDefaults() {
	if c.Frontend == "" {
		c.Frontend = "auto"
	}
	if c.Format == "" {
		c.Format = string(openapi.JSON)
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = DefaultMaxFileSize
	}
	if c.Info.Title == "" {
		c.Info.Title = "My API"
	}
	if c.Info.Version == "" {
		c.Info.Version = "1.0"
	}
	if c.Endpoint.Marker == "" {
		c.Endpoint.Marker = resolve.DefaultMarker
	}
	if c.Endpoint.Handler == "" {
		c.Endpoint.Handler = resolve.DefaultHandler
	}
	if c.Endpoint.AsyncPrefix == "" && c.Endpoint.AsyncSuffix == "" {
		c.Endpoint.AsyncPrefix = resolve.DefaultAsyncPrefix
		c.Endpoint.AsyncSuffix = resolve.DefaultAsyncSuffix
	}
}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains(Frontends, c.Frontend) {
		errs = append(errs, fmt.Errorf("frontend=%q must be one of %v", c.Frontend, Frontends))
	}
	if _, err := openapi.ParseFormat(c.Format); err != nil {
		errs = append(errs, fmt.Errorf("format=%q: %w", c.Format, err))
	}
	for i, s := range c.Servers {
		if err := validateURL(s.URL); err != nil {
			errs = append(errs, fmt.Errorf("servers[%d].url=%q is invalid: %v", i, s.URL, err))
		}
	}
	for name, scheme := range c.Security.Schemes {
		if _, ok := scheme["type"]; !ok {
			errs = append(errs, fmt.Errorf("security.schemes.%s.type is required", name))
		}
	}
	if _, err := openapi.SecuritySchemes(c.Security.Schemes); err != nil {
		errs = append(errs, fmt.Errorf("security.schemes: %w", err))
	}
	for _, ctx := range sortedKeys(c.Security.Contexts) {
		scheme := c.Security.Contexts[ctx]
		if _, ok := c.Security.Schemes[scheme]; !ok {
			errs = append(errs, fmt.Errorf("security.contexts.%s=%q does not exist in security.schemes", ctx, scheme))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func validateURL(value string) error {
	parsed, err := url.Parse(value)
	if err != nil {
		return err
	}
	// Relative server URLs are allowed by OpenAPI.
	if parsed.Scheme == "" && parsed.Host == "" && parsed.Path == "" {
		return errors.New("empty url")
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	for _, setter := range []struct {
		env   string
		apply func(string)
	}{
		{"ROUTEDOC_FRONTEND", func(v string) {
			if v != "" {
				cfg.Frontend = v
			}
		}},
		{"ROUTEDOC_FORMAT", func(v string) {
			if v != "" {
				cfg.Format = v
			}
		}},
	} {
		setter.apply(os.Getenv(setter.env))
	}
}

// OutputFormat returns the validated output format.
func (c *Config) OutputFormat() openapi.Format {
	f, err := openapi.ParseFormat(c.Format)
	if err != nil {
		return openapi.JSON
	}
	return f
}

// ResolveOptions returns the resolver options described by c.
func (c *Config) ResolveOptions() (resolve.Options, error) {
	schemes, err := openapi.SecuritySchemes(c.Security.Schemes)
	if err != nil {
		return resolve.Options{}, fmt.Errorf("security.schemes: %w", err)
	}
	var servers openapi3.Servers
	for _, s := range c.Servers {
		servers = append(servers, &openapi3.Server{URL: s.URL, Description: s.Description})
	}
	opts := resolve.Options{
		Info: openapi3.Info{
			Title:       c.Info.Title,
			Version:     c.Info.Version,
			Description: c.Info.Description,
		},
		Servers:         servers,
		Marker:          c.Endpoint.Marker,
		Handler:         c.Endpoint.Handler,
		AsyncPrefix:     c.Endpoint.AsyncPrefix,
		AsyncSuffix:     c.Endpoint.AsyncSuffix,
		SecuritySchemes: schemes,
		KeepGoing:       c.KeepGoing,
	}
	if len(c.Security.Contexts) > 0 {
		opts.ContextScheme = resolve.SchemeMap(c.Security.Contexts)
	}
	return opts, nil
}
