package ports

import "context"

// IdentityProvider is a third-party login provider using the OAuth2
// authorization-code flow.
type IdentityProvider interface {
	Name() string
	AuthCodeURL(state string) string
	// Exchange trades an authorization code for the signed-in identity.
	Exchange(ctx context.Context, code string) (ExternalIdentity, error)
}
