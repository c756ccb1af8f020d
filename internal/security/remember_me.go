package security

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/authsec/account-system/internal/core/domain"
)

// RememberMeCookie is the name of the persistent-login cookie.
const RememberMeCookie = "remember-me"

const defaultRememberMeTTL = 14 * 24 * time.Hour

// RememberMeClaims are carried by a remember-me token. Fingerprint binds the
// token to the credential hash it was issued against, so changing the
// password invalidates outstanding tokens.
type RememberMeClaims struct {
	Fingerprint string `json:"fp"`
	jwt.RegisteredClaims
}

// RememberMe issues and validates persistent-login tokens signed with a
// fixed key.
type RememberMe struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

// NewRememberMe returns a token service. A non-positive ttl defaults to two
// weeks.
func NewRememberMe(key string, ttl time.Duration) *RememberMe {
	if ttl <= 0 {
		ttl = defaultRememberMeTTL
	}
	return &RememberMe{key: []byte(key), ttl: ttl, now: time.Now}
}

// TTL is how long an issued token stays valid.
func (m *RememberMe) TTL() time.Duration { return m.ttl }

// Issue signs a token for details.
func (m *RememberMe) Issue(details UserDetails) (string, error) {
	now := m.now()
	claims := RememberMeClaims{
		Fingerprint: m.fingerprint(details.Password),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   details.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
	if err != nil {
		return "", fmt.Errorf("sign remember-me token: %w", err)
	}
	return signed, nil
}

// Parse validates the signature and expiry of token. Any failure is
// reported as domain.ErrUnauthenticated.
func (m *RememberMe) Parse(token string) (*RememberMeClaims, error) {
	claims := &RememberMeClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return m.key, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !tkn.Valid {
		return nil, domain.ErrUnauthenticated
	}
	if claims.Subject == "" {
		return nil, domain.ErrUnauthenticated
	}
	return claims, nil
}

// Bound reports whether claims were issued against user's current
// credential.
func (m *RememberMe) Bound(claims *RememberMeClaims, user *domain.User) bool {
	if claims == nil || user == nil {
		return false
	}
	return domain.SameUsername(claims.Subject, user.Username) &&
		claims.Fingerprint == m.fingerprint(user.PasswordHash)
}

func (m *RememberMe) fingerprint(passwordHash string) string {
	sum := sha256.Sum256(append(append([]byte{}, m.key...), passwordHash...))
	return hex.EncodeToString(sum[:12])
}
