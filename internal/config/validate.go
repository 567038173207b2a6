// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

package config

import (
	"strings"

	"github.com/samber/oops"

	"github.com/wellnest/wellnest/internal/auth"
)

func invalid(key, format string, args ...any) error {
	return oops.Code("CONFIG_INVALID").With("key", key).Errorf(format, args...)
}

// Validate checks every value needed to serve requests.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return invalid("server.addr", "server.addr is required")
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return invalid("log.format", "log.format must be 'json' or 'text', got %q", c.Log.Format)
	}

	a := c.Auth
	if a.CookieName == "" {
		return invalid("auth.cookie_name", "auth.cookie_name is required")
	}
	if a.CookieExpiryDays <= 0 {
		return invalid("auth.cookie_expiry_days", "auth.cookie_expiry_days must be positive, got %d", a.CookieExpiryDays)
	}
	if len(a.MailWhitelist) == 0 {
		return invalid("auth.mail_whitelist", "auth.mail_whitelist must list at least one domain")
	}
	for _, domain := range a.MailWhitelist {
		if strings.TrimSpace(domain) == "" || strings.Contains(domain, "@") {
			return invalid("auth.mail_whitelist", "invalid mail domain %q", domain)
		}
	}
	if a.MaxConcurrentUsers < 0 {
		return invalid("auth.max_concurrent_users", "auth.max_concurrent_users must not be negative")
	}
	if a.MaxLoginAttempts < 0 {
		return invalid("auth.max_login_attempts", "auth.max_login_attempts must not be negative")
	}
	if _, err := c.GuestRoles(); err != nil {
		return err
	}
	if _, err := c.RegisterRoles(); err != nil {
		return err
	}

	providers := []struct {
		name string
		cfg  ProviderConfig
	}{{"google", c.OAuth.Google}, {"microsoft", c.OAuth.Microsoft}}
	for _, p := range providers {
		if p.cfg.Enabled() && (p.cfg.ClientSecret == "" || p.cfg.RedirectURL == "") {
			return invalid("oauth."+p.name, "oauth.%s needs client_secret and redirect_url", p.name)
		}
	}
	if c.AnyOAuthEnabled() && c.Redis.URL == "" {
		return invalid("redis.url", "redis.url is required when an OAuth provider is enabled")
	}

	if c.Secrets.AuthKey == "" {
		return invalid(EnvAuthKey, "%s environment variable is required", EnvAuthKey)
	}
	if c.Secrets.DatabaseURL == "" {
		return invalid(EnvDatabaseURL, "%s environment variable is required", EnvDatabaseURL)
	}
	return nil
}

// GuestRoles parses auth.guest_roles.
func (c *Config) GuestRoles() (auth.Roles, error) {
	return parseRoleList("auth.guest_roles", c.Auth.GuestRoles)
}

// RegisterRoles parses auth.register_roles.
func (c *Config) RegisterRoles() (auth.Roles, error) {
	return parseRoleList("auth.register_roles", c.Auth.RegisterRoles)
}

func parseRoleList(key string, names []string) (auth.Roles, error) {
	if len(names) == 0 {
		return nil, invalid(key, "%s must name at least one role", key)
	}
	roles, err := auth.ParseRoles(names...)
	if err != nil {
		return nil, invalid(key, "%s: %v", key, err)
	}
	return roles, nil
}

// Policy returns the login policy.
func (c *Config) Policy() auth.Policy {
	return auth.Policy{
		MaxConcurrentUsers: c.Auth.MaxConcurrentUsers,
		MaxLoginAttempts:   c.Auth.MaxLoginAttempts,
		SingleSession:      c.Auth.SingleSession,
	}
}
