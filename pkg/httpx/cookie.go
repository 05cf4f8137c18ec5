package httpx

import (
	"net/http"
	"time"
)

// SessionCookie describes how the session credential is carried to browsers.
type SessionCookie struct {
	Name   string
	Domain string
	Secure bool
}

// DefaultSessionCookieName is the cookie storefront frontends read.
const DefaultSessionCookieName = "token"

func (c SessionCookie) name() string {
	if c.Name == "" {
		return DefaultSessionCookieName
	}
	return c.Name
}

// Set writes the session cookie. The cookie is never readable from scripts.
func (c SessionCookie) Set(w http.ResponseWriter, token string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name(),
		Value:    token,
		Path:     "/",
		Domain:   c.Domain,
		MaxAge:   int(maxAge.Seconds()),
		Expires:  time.Now().Add(maxAge),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the session cookie on the client.
func (c SessionCookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name(),
		Value:    "",
		Path:     "/",
		Domain:   c.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Read returns the raw cookie value, or "" when absent.
func (c SessionCookie) Read(r *http.Request) string {
	ck, err := r.Cookie(c.name())
	if err != nil {
		return ""
	}
	return ck.Value
}
