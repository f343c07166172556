package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/sjson"
)

// ClientPlatform is the base64 client-platform descriptor the storefront requires.
const ClientPlatform = "ew0KCSJwbGF0Zm9ybVR5cGUiOiAiUEMiLA0KCSJwbGF0Zm9ybU9TIjogIldpbmRvd3MiLA0KCSJwbGF0Zm9ybU9TVmVyc2lvbiI6ICIxMC4wLjE5MDQyLjEuMjU2LjY0Yml0IiwNCgkicGxhdGZvcm1DaGlwc2V0IjogIlVua25vd24iDQp9"

// Doer executes a single HTTP request. tls_client.HttpClient satisfies it.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Callback is the completion contract for SendAsync. Exactly one of the two
// functions runs, exactly once.
type Callback struct {
	OnSuccess func(body string)
	OnError   func(message string)
}

// APIClient sends vendor requests and reports body-or-failure.
// It never retries and never follows redirects.
type APIClient struct {
	client  Doer
	logger  Logger
	profile *BrowserProfile
	timeout time.Duration
}

// NewAPIClient wraps a Doer. A zero timeout leaves only the transport's own limit.
func NewAPIClient(client Doer, logger Logger, timeout time.Duration) *APIClient {
	if logger == nil {
		logger = nopLogger{}
	}
	return &APIClient{
		client:  client,
		logger:  logger,
		profile: DefaultProfile,
		timeout: timeout,
	}
}

// Send executes req under the per-request deadline and returns the body.
// Failures are *NetworkError or *StatusError.
func (c *APIClient) Send(ctx context.Context, req *http.Request, tag string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	req = req.WithContext(ctx)

	c.logger.Log("%s %s -> sending", req.Method, tag)
	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Log("%s %s -> error: %v", req.Method, tag, err)
		return "", &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	bodyBytes, err := readResponseBody(resp)
	if err != nil {
		c.logger.Log("%s %s -> %d, body read error: %v", req.Method, tag, resp.StatusCode, err)
		return "", &NetworkError{Err: fmt.Errorf("read body: %w", err)}
	}
	body := string(bodyBytes)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Log("%s %s -> %d", req.Method, tag, resp.StatusCode)
		return "", &StatusError{StatusCode: resp.StatusCode, Body: body}
	}

	c.logger.Log("%s %s -> %d (%d bytes)", req.Method, tag, resp.StatusCode, len(body))
	return body, nil
}

// SendAsync runs Send on its own goroutine and reports through cb. It is the
// callback surface for callers outside the pipeline; failures arrive as the
// error message only.
func (c *APIClient) SendAsync(ctx context.Context, req *http.Request, tag string, cb Callback) {
	go func() {
		body, err := c.Send(ctx, req, tag)
		if err != nil {
			cb.OnError(err.Error())
			return
		}
		cb.OnSuccess(body)
	}()
}

func (c *APIClient) newRequest(method, url, body string) (*http.Request, error) {
	var req *http.Request
	var err error
	if body == "" {
		req, err = http.NewRequest(method, url, nil)
	} else {
		req, err = http.NewRequest(method, url, strings.NewReader(body))
	}
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, url, err)
	}
	applyAPIHeaders(req, c.profile)
	return req, nil
}

// VersionRequest builds the unauthenticated client-version lookup.
func (c *APIClient) VersionRequest(endpoint string) (*http.Request, error) {
	return c.newRequest(http.MethodGet, endpoint, "")
}

// GeoRequest builds the region lookup: PUT {"id_token": ...} with bearer auth.
func (c *APIClient) GeoRequest(endpoint string, creds Credentials) (*http.Request, error) {
	body, err := sjson.Set("", "id_token", creds.IDToken)
	if err != nil {
		return nil, fmt.Errorf("encode geo body: %w", err)
	}
	req, err := c.newRequest(http.MethodPut, endpoint, body)
	if err != nil {
		return nil, err
	}
	setBearer(req, creds.AccessToken)
	return req, nil
}

// UserInfoRequest builds the POST {} user-info lookup.
func (c *APIClient) UserInfoRequest(endpoint, accessToken string) (*http.Request, error) {
	req, err := c.newRequest(http.MethodPost, endpoint, "{}")
	if err != nil {
		return nil, err
	}
	setBearer(req, accessToken)
	return req, nil
}

// EntitlementRequest builds the POST {} entitlement-token exchange.
func (c *APIClient) EntitlementRequest(endpoint, accessToken string) (*http.Request, error) {
	req, err := c.newRequest(http.MethodPost, endpoint, "{}")
	if err != nil {
		return nil, err
	}
	setBearer(req, accessToken)
	return req, nil
}

// StorefrontRequest builds the per-player storefront GET on the given shard.
func (c *APIClient) StorefrontRequest(base, shard, puuid, accessToken, entitlementToken, clientVersion string) (*http.Request, error) {
	req, err := c.newRequest(http.MethodGet, StorefrontURL(base, shard, puuid), "")
	if err != nil {
		return nil, err
	}
	setBearer(req, accessToken)
	req.Header.Set("X-Riot-Entitlements-JWT", entitlementToken)
	req.Header.Set("X-Riot-ClientPlatform", ClientPlatform)
	req.Header.Set("X-Riot-ClientVersion", clientVersion)
	return req, nil
}

// StorefrontURL formats the storefront address. base holds one %s for the shard.
func StorefrontURL(base, shard, puuid string) string {
	return fmt.Sprintf(base, shard) + "/store/v2/storefront/" + strings.TrimSpace(puuid)
}
