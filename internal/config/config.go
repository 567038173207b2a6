// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

// Package config loads WellNest configuration from compiled-in defaults, an
// optional YAML file, command-line flags and the environment.
package config

import (
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Environment variables carrying secrets. They are never read from the file.
const (
	EnvAuthKey       = "WELLNEST_AUTH_KEY"
	EnvDatabaseURL   = "DATABASE_URL"
	EnvAdminUsername = "ADMIN_USERNAME"
	EnvAdminEmail    = "ADMIN_EMAIL"
	EnvAdminPassword = "ADMIN_PASSWORD"
)

// Config is the effective configuration of one process.
type Config struct {
	Server ServerConfig `koanf:"server" yaml:"server"`
	Log    LogConfig    `koanf:"log" yaml:"log"`
	Auth   AuthConfig   `koanf:"auth" yaml:"auth"`
	OAuth  OAuthConfig  `koanf:"oauth" yaml:"oauth"`
	Redis  RedisConfig  `koanf:"redis" yaml:"redis"`

	Secrets Secrets `koanf:"-" yaml:"-"`
}

// ServerConfig holds listen addresses.
type ServerConfig struct {
	Addr        string `koanf:"addr" yaml:"addr"`
	MetricsAddr string `koanf:"metrics_addr" yaml:"metrics_addr"`
}

// LogConfig selects the log encoding.
type LogConfig struct {
	Format string `koanf:"format" yaml:"format"`
}

// AuthConfig is the authentication policy.
type AuthConfig struct {
	CookieName         string   `koanf:"cookie_name" yaml:"cookie_name"`
	CookieExpiryDays   int      `koanf:"cookie_expiry_days" yaml:"cookie_expiry_days"`
	SecureCookie       bool     `koanf:"secure_cookie" yaml:"secure_cookie"`
	MailWhitelist      []string `koanf:"mail_whitelist" yaml:"mail_whitelist"`
	MaxConcurrentUsers int      `koanf:"max_concurrent_users" yaml:"max_concurrent_users"`
	MaxLoginAttempts   int      `koanf:"max_login_attempts" yaml:"max_login_attempts"`
	SingleSession      bool     `koanf:"single_session" yaml:"single_session"`
	GuestRoles         []string `koanf:"guest_roles" yaml:"guest_roles"`
	RegisterRoles      []string `koanf:"register_roles" yaml:"register_roles"`
}

// OAuthConfig configures the external identity providers.
type OAuthConfig struct {
	Google    ProviderConfig `koanf:"google" yaml:"google"`
	Microsoft ProviderConfig `koanf:"microsoft" yaml:"microsoft"`
}

// ProviderConfig is one OAuth client registration. Tenant applies to Microsoft only.
type ProviderConfig struct {
	ClientID     string `koanf:"client_id" yaml:"client_id"`
	ClientSecret string `koanf:"client_secret" yaml:"-"`
	RedirectURL  string `koanf:"redirect_url" yaml:"redirect_url"`
	Tenant       string `koanf:"tenant" yaml:"tenant,omitempty"`
}

// Enabled reports whether the provider has a client id.
func (p ProviderConfig) Enabled() bool {
	return p.ClientID != ""
}

// RedisConfig locates the OAuth state store.
type RedisConfig struct {
	URL string `koanf:"url" yaml:"url"`
}

// Secrets are read from the environment only.
type Secrets struct {
	AuthKey       string
	DatabaseURL   string
	AdminUsername string
	AdminEmail    string
	AdminPassword string
}

// AnyOAuthEnabled reports whether at least one identity provider is configured.
func (c *Config) AnyOAuthEnabled() bool {
	return c.OAuth.Google.Enabled() || c.OAuth.Microsoft.Enabled()
}

var defaults = map[string]any{
	"server.addr":               ":8080",
	"server.metrics_addr":       "127.0.0.1:9100",
	"log.format":                "json",
	"auth.cookie_name":          "wellnest_auth",
	"auth.cookie_expiry_days":   30,
	"auth.secure_cookie":        false,
	"auth.mail_whitelist":       []string{},
	"auth.max_concurrent_users": 0,
	"auth.max_login_attempts":   0,
	"auth.single_session":       false,
	"auth.guest_roles":          []string{"user"},
	"auth.register_roles":       []string{"user"},
	"oauth.microsoft.tenant":    "common",
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"addr":         "server.addr",
	"metrics-addr": "server.metrics_addr",
	"log-format":   "log.format",
}

// Load reads path (if non-empty), applies changed flags and reads secrets
// from the process environment. It does not validate.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	return LoadWithEnv(path, flags, os.Getenv)
}

// LoadWithEnv is Load with an injectable environment lookup.
func LoadWithEnv(path string, flags *pflag.FlagSet, getenv func(string) string) (*Config, error) {
	k := koanf.New(".")

	for key, value := range defaults {
		if err := k.Set(key, value); err != nil {
			return nil, oops.Code("CONFIG_INVALID").With("key", key).Wrap(err)
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
		}
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("path", path).Wrap(err)
	}

	cfg.Secrets = Secrets{
		AuthKey:       getenv(EnvAuthKey),
		DatabaseURL:   getenv(EnvDatabaseURL),
		AdminUsername: getenv(EnvAdminUsername),
		AdminEmail:    getenv(EnvAdminEmail),
		AdminPassword: getenv(EnvAdminPassword),
	}
	return &cfg, nil
}
