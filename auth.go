package main

import (
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/mo"
)

const (
	authorizeURL = "https://auth.riotgames.com/authorize"

	accessTokenMarker = "access_token="
	idTokenMarker     = "id_token="
)

// Credentials are the tokens harvested from the post-login redirect.
// They live in memory for one login and are never persisted.
type Credentials struct {
	AccessToken string
	IDToken     string
}

// LoginURL builds the implicit-flow authorization URL asking for both tokens.
func LoginURL(redirectURI, clientID string) string {
	return authorizeURL +
		"?redirect_uri=" + url.QueryEscape(redirectURI) +
		"&client_id=" + url.QueryEscape(clientID) +
		"&response_type=token%20id_token" +
		"&nonce=1" +
		"&scope=account%20openid"
}

// HasTokenMarkers reports whether both token markers appear in rawURL.
func HasTokenMarkers(rawURL string) bool {
	return strings.Contains(rawURL, accessTokenMarker) && strings.Contains(rawURL, idTokenMarker)
}

// ExtractCredentials pulls both tokens out of a redirect URL. Each value runs
// from its marker to the next '&' or the end of the string; the markers may sit
// in the query or the fragment, in either order. It returns ErrNoCredentials
// when a marker is absent and a *ParseError when a marker has no value.
func ExtractCredentials(rawURL string) (Credentials, error) {
	if !HasTokenMarkers(rawURL) {
		return Credentials{}, ErrNoCredentials
	}

	access := tokenAfter(rawURL, accessTokenMarker)
	if access == "" {
		return Credentials{}, &ParseError{Field: "access_token"}
	}
	id := tokenAfter(rawURL, idTokenMarker)
	if id == "" {
		return Credentials{}, &ParseError{Field: "id_token"}
	}

	return Credentials{AccessToken: access, IDToken: id}, nil
}

// AccessTokenExpiry reads the exp claim of the access token without verifying
// its signature. Opaque or claim-less tokens yield None.
func (c Credentials) AccessTokenExpiry() mo.Option[time.Time] {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(c.AccessToken, &claims); err != nil {
		return mo.None[time.Time]()
	}
	if claims.ExpiresAt == nil {
		return mo.None[time.Time]()
	}
	return mo.Some(claims.ExpiresAt.Time)
}

func tokenAfter(s, marker string) string {
	start := strings.Index(s, marker)
	if start < 0 {
		return ""
	}
	start += len(marker)
	if end := strings.IndexByte(s[start:], '&'); end >= 0 {
		return s[start : start+end]
	}
	return s[start:]
}

// TokenWatcher inspects every navigation the login surface reports and fires
// onFound at most once. The browser calls Observe from several hooks for what
// is one logical redirect, possibly from different goroutines.
type TokenWatcher struct {
	found   atomic.Bool
	onFound func(Credentials)
	logger  Logger
}

func NewTokenWatcher(logger Logger, onFound func(Credentials)) *TokenWatcher {
	if logger == nil {
		logger = nopLogger{}
	}
	return &TokenWatcher{onFound: onFound, logger: logger}
}

// Observe checks one navigation event. It returns true when the URL carried
// both tokens, meaning the caller should stop that navigation. Malformed token
// URLs are logged and let through so a later event can try again.
func (w *TokenWatcher) Observe(hook, rawURL string) bool {
	if !HasTokenMarkers(rawURL) {
		return false
	}

	creds, err := ExtractCredentials(rawURL)
	if err != nil {
		w.logger.Log("%s: token URL malformed: %v", hook, err)
		return false
	}

	if w.found.CompareAndSwap(false, true) {
		w.logger.Log("%s: captured access and id tokens", hook)
		if w.onFound != nil {
			w.onFound(creds)
		}
	}
	return true
}

// Found reports whether credentials have been delivered.
func (w *TokenWatcher) Found() bool {
	return w.found.Load()
}
