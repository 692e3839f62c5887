// Package provider implements the HTTP client side of the OAuth 2.0 device
// authorization grant (RFC 8628) against Microsoft Entra ID.
package provider

import "fmt"

// DeviceCodeGrant is the provider response to a device authorization request
// per RFC 8628 section 3.2. The DeviceCode field is an opaque correlation
// token and must never be shown to the user.
type DeviceCodeGrant struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	ExpiresIn       int    `json:"expires_in"`
	Interval        int    `json:"interval"`
	Message         string `json:"message,omitempty"`
}

// TokenResult is the token payload returned once the user has approved the
// request. Fields are passed through from the provider untransformed.
type TokenResult struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	IDToken      string `json:"id_token,omitempty"`
	Scope        string `json:"scope,omitempty"`
}

// OAuthError is the standard OAuth 2.0 error object returned with HTTP 400
// responses from the token endpoint.
type OAuthError struct {
	Code        string `json:"error"`
	Description string `json:"error_description,omitempty"`
}

// RedemptionStatus classifies a token endpoint response.
type RedemptionStatus int

const (
	// RedemptionAuthorized means the user approved and a token was issued.
	RedemptionAuthorized RedemptionStatus = iota

	// RedemptionPending means the user has not finished authenticating yet.
	// Covers both authorization_pending and slow_down; callers wait the
	// session interval and try again.
	RedemptionPending

	// RedemptionDenied means the provider rejected the grant with a
	// recognized OAuth error (e.g. access_denied, expired_token).
	RedemptionDenied

	// RedemptionFailed means the provider answered with an unexpected
	// status; the raw response is preserved for diagnostics.
	RedemptionFailed
)

// Redemption is the classified outcome of a single token endpoint call.
// Exactly one of Token/OAuthErr carries data depending on Status.
type Redemption struct {
	Status     RedemptionStatus
	Token      *TokenResult
	OAuthErr   *OAuthError
	HTTPStatus int
	RawBody    string
}

// Error reports a non-2xx provider response outside the recognized OAuth
// error classification. The raw body is kept verbatim for diagnostics.
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("identity provider returned %d: %s", e.StatusCode, e.Body)
}
