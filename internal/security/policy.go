package security

import (
	"path"
	"strings"

	"github.com/authsec/account-system/internal/core/domain"
)

// Well-known routes the policy redirects to.
const (
	HomePath   = "/home"
	LoginPath  = "/native-login"
	LogoutPath = "/logout"
)

// Requirement is the access level a route class demands.
type Requirement int

const (
	Authenticated Requirement = iota
	Public
	AnonymousOnly
	AdminOnly
)

func (r Requirement) String() string {
	switch r {
	case Public:
		return "public"
	case AnonymousOnly:
		return "anonymous_only"
	case AdminOnly:
		return "admin_only"
	default:
		return "authenticated"
	}
}

// Decision is the outcome of evaluating a request against the policy.
type Decision int

const (
	Allow Decision = iota
	// RedirectHome sends an authenticated caller away from a page meant
	// only for anonymous callers.
	RedirectHome
	// RedirectLogin asks an unauthenticated caller to log in.
	RedirectLogin
	// Forbid rejects an authenticated caller lacking ROLE_ADMIN.
	Forbid
)

func (d Decision) String() string {
	switch d {
	case RedirectHome:
		return "redirect_home"
	case RedirectLogin:
		return "redirect_login"
	case Forbid:
		return "forbid"
	default:
		return "allow"
	}
}

// Rule binds a path pattern to a requirement. A pattern is either an exact
// path or a prefix ending in "/**".
type Rule struct {
	Pattern     string
	Requirement Requirement
}

func (r Rule) matches(p string) bool {
	if prefix, ok := strings.CutSuffix(r.Pattern, "/**"); ok {
		return p == prefix || strings.HasPrefix(p, prefix+"/")
	}
	return p == r.Pattern
}

// Policy is an ordered route-permission table. The first matching rule
// wins; unmatched paths require authentication.
type Policy struct {
	rules []Rule
}

// NewPolicy returns a policy over rules, evaluated in order.
func NewPolicy(rules ...Rule) *Policy {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return &Policy{rules: out}
}

// DefaultPolicy is the permission matrix of the account application.
func DefaultPolicy() *Policy {
	var rules []Rule
	add := func(req Requirement, patterns ...string) {
		for _, p := range patterns {
			rules = append(rules, Rule{Pattern: p, Requirement: req})
		}
	}

	add(Public, "/", HomePath, "/register", LogoutPath, "/error")
	add(Public, "/bootstrap/**", "/jquery/**", "/fragments/**", "/styles.css", "/webjars/**")
	add(Public, "/oauth2/**", "/login/oauth2/**")
	add(Public, "/health", "/health/ready", "/metrics", "/swagger/**")

	add(AnonymousOnly, LoginPath)

	add(Authenticated, "/user", "/dashboard")

	add(AdminOnly,
		"/all-accounts", "/admins", "/users",
		"/add-admin",
		"/make-admin", "/make-admin-account", "/make-admin-success",
		"/delete-account", "/delete-user-account", "/delete-success",
		"/admin-dashboard",
	)

	return NewPolicy(rules...)
}

// RequirementFor returns the requirement governing urlPath.
func (p *Policy) RequirementFor(urlPath string) Requirement {
	clean := cleanPath(urlPath)
	for _, r := range p.rules {
		if r.matches(clean) {
			return r.Requirement
		}
	}
	return Authenticated
}

// Evaluate decides whether principal may reach urlPath.
func (p *Policy) Evaluate(urlPath string, principal domain.Principal) Decision {
	return p.Decide(urlPath, principal.Authenticated(), principal.IsAdmin())
}

// Decide applies the requirement governing urlPath to a caller described by
// its authentication state and administrator authority.
func (p *Policy) Decide(urlPath string, authed, admin bool) Decision {
	switch p.RequirementFor(urlPath) {
	case Public:
		return Allow
	case AnonymousOnly:
		if authed {
			return RedirectHome
		}
		return Allow
	case AdminOnly:
		if !authed {
			return RedirectLogin
		}
		if !admin {
			return Forbid
		}
		return Allow
	default:
		if !authed {
			return RedirectLogin
		}
		return Allow
	}
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}
