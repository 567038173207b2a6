// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

// Package oauth implements auth.IdentityProvider for Google and Microsoft
// using the OAuth2 authorization-code flow and the OIDC userinfo endpoint.
package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/wellnest/wellnest/internal/auth"
)

// Provider names as they appear in routes and configuration.
const (
	Google    = "google"
	Microsoft = "microsoft"
)

const (
	googleUserInfoURL    = "https://openidconnect.googleapis.com/v1/userinfo"
	microsoftUserInfoURL = "https://graph.microsoft.com/oidc/userinfo"
	defaultTenant        = "common"
)

var defaultScopes = []string{"openid", "email", "profile"}

// Credentials are the client registration of one provider.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Provider resolves an authorization code to a guest identity.
type Provider struct {
	name        string
	cfg         *oauth2.Config
	userInfoURL string
	client      *http.Client
}

// Option customizes a Provider.
type Option func(*Provider)

// WithEndpoint overrides the authorization and token endpoints.
func WithEndpoint(endpoint oauth2.Endpoint) Option {
	return func(p *Provider) { p.cfg.Endpoint = endpoint }
}

// WithUserInfoURL overrides the userinfo endpoint.
func WithUserInfoURL(url string) Option {
	return func(p *Provider) { p.userInfoURL = url }
}

// WithHTTPClient sets the client used for the token exchange and userinfo call.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Provider) { p.client = client }
}

// NewGoogle creates the Google provider.
func NewGoogle(creds Credentials, opts ...Option) *Provider {
	return newProvider(Google, creds, endpoints.Google, googleUserInfoURL, opts)
}

// NewMicrosoft creates the Microsoft identity platform provider. An empty
// tenant selects "common".
func NewMicrosoft(creds Credentials, tenant string, opts ...Option) *Provider {
	if tenant == "" {
		tenant = defaultTenant
	}
	return newProvider(Microsoft, creds, endpoints.AzureAD(tenant), microsoftUserInfoURL, opts)
}

func newProvider(name string, creds Credentials, endpoint oauth2.Endpoint, userInfoURL string, opts []Option) *Provider {
	p := &Provider{
		name: name,
		cfg: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURL:  creds.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       defaultScopes,
		},
		userInfoURL: userInfoURL,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider name.
func (p *Provider) Name() string { return p.name }

// AuthCodeURL returns the consent page URL carrying state.
func (p *Provider) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.SetAuthURLParam("prompt", "select_account"))
}

type userInfo struct {
	Email         string `json:"email"`
	EmailVerified *bool  `json:"email_verified"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Picture       string `json:"picture"`
}

// Identify exchanges code for a token and reads the user's claims.
// Accounts without a verified e-mail address are rejected.
func (p *Provider) Identify(ctx context.Context, code string) (*auth.GuestIdentity, error) {
	if p.client != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)
	}

	token, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, oops.Code("OAUTH_EXCHANGE_FAILED").With("provider", p.name).Wrap(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return nil, oops.Code("OAUTH_USERINFO_FAILED").With("provider", p.name).Wrap(err)
	}
	resp, err := p.cfg.Client(ctx, token).Do(req)
	if err != nil {
		return nil, oops.Code("OAUTH_USERINFO_FAILED").With("provider", p.name).Wrap(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, oops.Code("OAUTH_USERINFO_FAILED").
			With("provider", p.name).
			With("status", resp.StatusCode).
			Errorf("userinfo returned %s", resp.Status)
	}

	var info userInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, oops.Code("OAUTH_USERINFO_FAILED").With("provider", p.name).Wrap(err)
	}

	email := strings.ToLower(strings.TrimSpace(info.Email))
	if email == "" {
		return nil, oops.Code("OAUTH_EMAIL_MISSING").
			With("provider", p.name).
			Errorf("identity has no e-mail address")
	}
	if info.EmailVerified != nil && !*info.EmailVerified {
		return nil, oops.Code("OAUTH_EMAIL_UNVERIFIED").
			With("provider", p.name).
			With("email", email).
			Errorf("e-mail address is not verified")
	}

	return &auth.GuestIdentity{
		Email:      email,
		GivenName:  info.GivenName,
		FamilyName: info.FamilyName,
		Picture:    info.Picture,
	}, nil
}

var _ auth.IdentityProvider = (*Provider)(nil)
