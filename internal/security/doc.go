// Package security is the authentication gate and authorization policy.
//
// It owns the read-only UserDetails view the login paths consult, the
// Authenticator that turns credentials into a domain.Principal, the signed
// remember-me token, and the static route-permission Policy evaluated
// before any handler runs.
package security
