package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2/microsoft"
)

const (
	// Entra ID v2.0 endpoint paths, used when an authority override is
	// configured (e.g. a test server).
	deviceCodePath = "/oauth2/v2.0/devicecode"
	tokenPath      = "/oauth2/v2.0/token"

	// DefaultTenant targets any work or school account.
	DefaultTenant = "organizations"

	grantTypeDeviceCode = "urn:ietf:params:oauth:grant-type:device_code"

	defaultTimeout = 10 * time.Second
)

// Config holds client construction parameters.
type Config struct {
	// Tenant selects the Entra tenant segment of the endpoint URLs.
	// Defaults to "organizations".
	Tenant string

	// Authority overrides the endpoint base URL entirely (tenant included),
	// primarily for tests. When empty the well-known Microsoft login
	// endpoints for Tenant are used.
	Authority string

	// Timeout bounds each HTTP request. Defaults to 10s.
	Timeout time.Duration
}

// Client issues the two device-grant calls against Entra ID.
type Client struct {
	client        *http.Client
	deviceCodeURL string
	tokenURL      string
}

// NewClient creates a device-grant client for the configured tenant.
func NewClient(cfg Config) *Client {
	tenant := cfg.Tenant
	if tenant == "" {
		tenant = DefaultTenant
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	var deviceCodeURL, tokenURL string
	if cfg.Authority != "" {
		base := strings.TrimSuffix(cfg.Authority, "/")
		deviceCodeURL = base + deviceCodePath
		tokenURL = base + tokenPath
	} else {
		ep := microsoft.AzureADEndpoint(tenant)
		deviceCodeURL = ep.DeviceAuthURL
		tokenURL = ep.TokenURL
	}

	return &Client{
		client:        &http.Client{Timeout: timeout},
		deviceCodeURL: deviceCodeURL,
		tokenURL:      tokenURL,
	}
}

// RequestDeviceCode starts a device authorization flow for the given client
// application and scope. Any non-2xx response is returned as *Error with the
// raw body preserved.
func (c *Client) RequestDeviceCode(ctx context.Context, clientID, scope string) (*DeviceCodeGrant, error) {
	data := url.Values{
		"client_id": {clientID},
		"scope":     {scope},
	}

	body, status, err := c.postForm(ctx, c.deviceCodeURL, data)
	if err != nil {
		return nil, fmt.Errorf("sending device code request: %w", err)
	}

	if status < 200 || status > 299 {
		return nil, &Error{StatusCode: status, Body: string(body)}
	}

	var grant DeviceCodeGrant
	if err := json.Unmarshal(body, &grant); err != nil {
		return nil, fmt.Errorf("parsing device code response: %w", err)
	}

	return &grant, nil
}

// RedeemDeviceCode attempts to exchange a device code for tokens and
// classifies the response. It never returns an error for a response the
// provider produced; transport failures are the only error path.
func (c *Client) RedeemDeviceCode(ctx context.Context, clientID, deviceCode string) (*Redemption, error) {
	data := url.Values{
		"grant_type":  {grantTypeDeviceCode},
		"client_id":   {clientID},
		"device_code": {deviceCode},
	}

	body, status, err := c.postForm(ctx, c.tokenURL, data)
	if err != nil {
		return nil, fmt.Errorf("sending token request: %w", err)
	}

	switch {
	case status >= 200 && status <= 299:
		var token TokenResult
		if err := json.Unmarshal(body, &token); err != nil {
			return nil, fmt.Errorf("parsing token response: %w", err)
		}
		return &Redemption{Status: RedemptionAuthorized, Token: &token, HTTPStatus: status}, nil

	case status == http.StatusBadRequest:
		var oauthErr OAuthError
		if err := json.Unmarshal(body, &oauthErr); err != nil {
			return nil, fmt.Errorf("parsing error response: %w", err)
		}
		switch oauthErr.Code {
		case "authorization_pending", "slow_down":
			return &Redemption{Status: RedemptionPending, OAuthErr: &oauthErr, HTTPStatus: status}, nil
		default:
			return &Redemption{Status: RedemptionDenied, OAuthErr: &oauthErr, HTTPStatus: status}, nil
		}

	default:
		return &Redemption{Status: RedemptionFailed, HTTPStatus: status, RawBody: string(body)}, nil
	}
}

func (c *Client) postForm(ctx context.Context, endpoint string, data url.Values) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("reading response: %w", err)
	}

	return body, resp.StatusCode, nil
}
