package main

import (
	"net"
	"net/url"
	"strings"
)

// parseProxyLine turns a proxy setting into the URL handed to tls-client and a
// host:port string that is safe to log. Accepted forms:
//   - host:port
//   - host:port:user:pass
//   - http(s)://[user:pass@]host:port
//
// The proxy is always dialled as plain HTTP CONNECT.
func parseProxyLine(line string) (proxyURL, display string, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", "", false
	}

	u := &url.URL{Scheme: "http"}

	if strings.HasPrefix(line, "http://") || strings.HasPrefix(line, "https://") {
		parsed, err := url.Parse(line)
		if err != nil || parsed.Host == "" {
			return "", "", false
		}
		u.Host = parsed.Host
		u.User = parsed.User
		return u.String(), u.Host, true
	}

	parts := strings.Split(line, ":")
	switch len(parts) {
	case 2:
	case 4:
		u.User = url.UserPassword(parts[2], parts[3])
	default:
		return "", "", false
	}
	if parts[0] == "" || parts[1] == "" {
		return "", "", false
	}

	u.Host = net.JoinHostPort(parts[0], parts[1])
	return u.String(), u.Host, true
}
