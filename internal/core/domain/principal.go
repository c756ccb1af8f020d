package domain

import "context"

// AnonymousName is the name carried by the unauthenticated principal.
const AnonymousName = "anonymousUser"

// AuthMethod records how a principal was established.
type AuthMethod string

const (
	AuthAnonymous  AuthMethod = "anonymous"
	AuthForm       AuthMethod = "form"
	AuthOAuth2     AuthMethod = "oauth2"
	AuthRememberMe AuthMethod = "remember_me"
)

// Principal is the identity a request executes as.
type Principal struct {
	Name      string     `json:"name"`
	Roles     []string   `json:"roles"`
	Method    AuthMethod `json:"method"`
	Anonymous bool       `json:"anonymous"`
}

// Anonymous returns the unauthenticated principal.
func Anonymous() Principal {
	return Principal{Name: AnonymousName, Method: AuthAnonymous, Anonymous: true}
}

// NewPrincipal returns an authenticated principal for user.
func NewPrincipal(user *User, method AuthMethod) Principal {
	return Principal{Name: user.Username, Roles: user.RoleNames(), Method: method}
}

// Authenticated reports whether p is a resolved, named identity.
func (p Principal) Authenticated() bool {
	return !p.Anonymous && p.Name != ""
}

// HasRole reports whether p carries the named authority.
func (p Principal) HasRole(name string) bool {
	want := Role{Name: name}
	for _, r := range p.Roles {
		if want.Equal(Role{Name: r}) {
			return true
		}
	}
	return false
}

// IsAdmin reports whether p carries ROLE_ADMIN.
func (p Principal) IsAdmin() bool {
	return p.HasRole(RoleAdmin)
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored in ctx, or the anonymous
// principal when none was attached.
func PrincipalFrom(ctx context.Context) Principal {
	if p, ok := ctx.Value(principalKey{}).(Principal); ok {
		return p
	}
	return Anonymous()
}
