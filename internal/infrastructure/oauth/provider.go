// Package oauth implements third-party login over the OAuth2
// authorization-code flow.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"golang.org/x/oauth2"

	"github.com/authsec/account-system/internal/core/ports"
)

const defaultUsernameField = "login"

// Config describes one identity provider.
type Config struct {
	Name          string
	ClientID      string
	ClientSecret  string
	AuthURL       string
	TokenURL      string
	UserInfoURL   string
	RedirectURL   string
	Scopes        []string
	UsernameField string
}

// Provider talks to a single OAuth2 identity provider.
type Provider struct {
	name          string
	oauth         *oauth2.Config
	userInfoURL   string
	usernameField string
}

func NewProvider(cfg Config) *Provider {
	field := cfg.UsernameField
	if field == "" {
		field = defaultUsernameField
	}
	return &Provider{
		name: cfg.Name,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
			RedirectURL: cfg.RedirectURL,
			Scopes:      cfg.Scopes,
		},
		userInfoURL:   cfg.UserInfoURL,
		usernameField: field,
	}
}

var _ ports.IdentityProvider = (*Provider)(nil)

func (p *Provider) Name() string { return p.name }

func (p *Provider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange redeems code for a token and reads the user-info document.
func (p *Provider) Exchange(ctx context.Context, code string) (ports.ExternalIdentity, error) {
	if code == "" {
		return ports.ExternalIdentity{}, errors.New("oauth: missing authorization code")
	}

	tok, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return ports.ExternalIdentity{}, fmt.Errorf("oauth: exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return ports.ExternalIdentity{}, fmt.Errorf("oauth: user info request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.oauth.Client(ctx, tok).Do(req)
	if err != nil {
		return ports.ExternalIdentity{}, fmt.Errorf("oauth: fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ports.ExternalIdentity{}, fmt.Errorf("oauth: user info returned %d", resp.StatusCode)
	}

	var info map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return ports.ExternalIdentity{}, fmt.Errorf("oauth: decode user info: %w", err)
	}

	return ports.ExternalIdentity{
		Provider: p.name,
		Subject:  firstString(info, "sub", "id"),
		Username: firstString(info, p.usernameField, "preferred_username", "login", "name"),
		Email:    firstString(info, "email"),
	}, nil
}

// firstString returns the first non-empty attribute among keys. Numeric
// identifiers are rendered without a fractional part.
func firstString(info map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := info[k].(type) {
		case string:
			if v != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}
