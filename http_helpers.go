package main

import (
	"io"

	http "github.com/bogdanfinn/fhttp"
)

// PseudoHeaderOrder is the standard HTTP/2 pseudo-header order for all requests.
var PseudoHeaderOrder = []string{
	":method",
	":authority",
	":scheme",
	":path",
}

// apiHeaderOrder is the regular header order for JSON API calls.
var apiHeaderOrder = []string{
	"user-agent",
	"accept",
	"content-type",
	"content-length",
	"authorization",
	"x-riot-entitlements-jwt",
	"x-riot-clientplatform",
	"x-riot-clientversion",
	"accept-encoding",
	"cookie",
}

// readResponseBody decompresses and reads the full response body.
// Caller should defer resp.Body.Close() before calling this.
func readResponseBody(resp *http.Response) ([]byte, error) {
	body := http.DecompressBody(resp)
	defer body.Close()
	return io.ReadAll(body)
}

// applyAPIHeaders sets the headers every vendor call carries and fixes their order.
func applyAPIHeaders(req *http.Request, profile *BrowserProfile) {
	req.Header.Set("User-Agent", profile.UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")
	if req.Body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	req.Header[http.HeaderOrderKey] = apiHeaderOrder
	req.Header[http.PHeaderOrderKey] = PseudoHeaderOrder
}

func setBearer(req *http.Request, accessToken string) {
	req.Header.Set("Authorization", "Bearer "+accessToken)
}
