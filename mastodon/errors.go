package mastodon

import (
	"errors"
	"fmt"
)

var (
	EmptyAuthorizationCodeErr = errors.New("authorization code is empty")
	TokenExchangeErr          = errors.New("token exchange rejected")
	InvalidTokenErr           = errors.New("access token rejected")
	EndpointNotFoundErr       = errors.New("endpoint not found")
	UpstreamUnavailableErr    = errors.New("instance unavailable")
	NetworkErr                = errors.New("network failure")
)

// ExchangeError is returned when the code-to-token exchange fails for any
// reason. The authorization code is single-use, so the caller must never
// retry the same exchange; StatusCode and Body carry the upstream rejection
// when one was received.
type ExchangeError struct {
	StatusCode int
	Body       string
	Cause      error
}

func (e *ExchangeError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("token exchange failed: upstream status %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("token exchange failed: %v", e.Cause)
}

// Unwrap always resolves to TokenExchangeErr: every exchange failure is
// classified the same way regardless of whether the remote answered.
func (e *ExchangeError) Unwrap() error {
	return TokenExchangeErr
}

// APIError classifies a failed call to the instance API. Err is one of the
// sentinel errors above, so callers can branch with errors.Is.
type APIError struct {
	StatusCode int
	Endpoint   string
	Err        error
	Cause      error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %v (status %d)", e.Endpoint, e.Err, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v: %v", e.Endpoint, e.Err, e.Cause)
}

func (e *APIError) Unwrap() error {
	return e.Err
}
