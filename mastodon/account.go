package mastodon

import "context"

const verifyCredentialsEndpoint = "/api/v1/accounts/verify_credentials"

// Account is the subset of the remote profile this app keeps. The full
// payload is much larger; anything else can be re-fetched on demand.
type Account struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
}

// VerifyCredentials confirms the token against the configured instance and
// returns the account it belongs to.
func (c *Client) VerifyCredentials(ctx context.Context, token string) (Account, error) {
	return c.VerifyCredentialsAt(ctx, c.baseURL, token)
}

// VerifyCredentialsAt verifies a token against an arbitrary instance. Used by
// the direct-token login path, where the user names their own instance.
func (c *Client) VerifyCredentialsAt(ctx context.Context, instanceURL, token string) (Account, error) {
	base, err := NormalizeInstanceURL(instanceURL)
	if err != nil {
		return Account{}, &APIError{Endpoint: verifyCredentialsEndpoint, Err: EndpointNotFoundErr, Cause: err}
	}

	var account Account
	if err := c.get(ctx, base, token, verifyCredentialsEndpoint, nil, &account); err != nil {
		return Account{}, err
	}
	return account, nil
}
