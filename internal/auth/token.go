// Package auth pulls credentials off incoming requests.
package auth

import (
	"net/http"
	"strings"
)

const (
	CookieName = "access_token"
	bearer     = "bearer"
)

// ExtractAccessToken returns the bearer token sent by mobile clients, falling
// back to the access_token cookie used by the admin web console.
func ExtractAccessToken(r *http.Request) string {
	if scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " "); ok {
		if strings.EqualFold(scheme, bearer) {
			return strings.TrimSpace(token)
		}
	}

	if cookie, err := r.Cookie(CookieName); err == nil {
		return cookie.Value
	}

	return ""
}

// ServiceAuthorized reports whether the request carries the shared secret
// used for service-to-service calls. An empty secret disables the check.
func ServiceAuthorized(r *http.Request, secret string) bool {
	if secret == "" {
		return false
	}
	return r.Header.Get("X-Service-Auth") == secret
}
