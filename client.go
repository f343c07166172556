package main

import (
	"time"

	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
)

// BrowserProfile bundles a TLS client profile with the User-Agent that goes with it.
type BrowserProfile struct {
	TLSProfile profiles.ClientProfile
	UserAgent  string
}

// DefaultProfile is the profile used for new clients.
// Set to RiotClientProfile in tls_riotclient.go.
var DefaultProfile = RiotClientProfile

// NewClient builds the transport used for every vendor call. Redirects are not
// followed: on the auth domain they carry tokens and are intercepted instead.
func NewClient(logger tls_client.Logger, proxyURL string, timeout time.Duration) (tls_client.HttpClient, error) {
	return NewClientWithProfile(logger, proxyURL, timeout, DefaultProfile.TLSProfile)
}

func NewClientWithProfile(logger tls_client.Logger, proxyURL string, timeout time.Duration, profile profiles.ClientProfile) (tls_client.HttpClient, error) {
	if logger == nil {
		logger = tls_client.NewNoopLogger()
	}

	seconds := int(timeout / time.Second)
	if seconds < 1 {
		seconds = 1
	}

	options := []tls_client.HttpClientOption{
		tls_client.WithTimeoutSeconds(seconds),
		tls_client.WithClientProfile(profile),
		tls_client.WithNotFollowRedirects(),
		tls_client.WithCookieJar(tls_client.NewCookieJar()),
	}

	if proxyURL != "" {
		options = append(options, tls_client.WithProxyUrl(proxyURL))
	}

	return tls_client.NewHttpClient(logger, options...)
}
