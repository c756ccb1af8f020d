// Package cookie issues and expires the cookies that carry login state.
package cookie

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Jar knows the names and lifetimes of the session and remember-me cookies.
type Jar struct {
	SessionName    string
	RememberMeName string
	SessionTTL     time.Duration
	RememberMeTTL  time.Duration
	Secure         bool
}

// SessionID returns the session ID presented by the client, if any.
func (j *Jar) SessionID(c echo.Context) string {
	ck, err := c.Cookie(j.SessionName)
	if err != nil {
		return ""
	}
	return ck.Value
}

// RememberMe returns the remember-me token presented by the client, if any.
func (j *Jar) RememberMe(c echo.Context) string {
	ck, err := c.Cookie(j.RememberMeName)
	if err != nil {
		return ""
	}
	return ck.Value
}

// SetSession binds the response to session id. The session cookie lives for
// the browser session; the server-side TTL bounds it.
func (j *Jar) SetSession(c echo.Context, id string) {
	c.SetCookie(j.build(j.SessionName, id, 0))
}

func (j *Jar) SetRememberMe(c echo.Context, token string) {
	c.SetCookie(j.build(j.RememberMeName, token, j.RememberMeTTL))
}

func (j *Jar) ClearSession(c echo.Context) {
	c.SetCookie(j.expired(j.SessionName))
}

func (j *Jar) ClearRememberMe(c echo.Context) {
	c.SetCookie(j.expired(j.RememberMeName))
}

func (j *Jar) build(name, value string, ttl time.Duration) *http.Cookie {
	ck := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   j.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if ttl > 0 {
		ck.MaxAge = int(ttl.Seconds())
		ck.Expires = time.Now().Add(ttl)
	}
	return ck
}

func (j *Jar) expired(name string) *http.Cookie {
	ck := j.build(name, "", 0)
	ck.MaxAge = -1
	ck.Expires = time.Unix(0, 0)
	return ck
}
