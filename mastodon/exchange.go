package mastodon

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// ExchangeCode swaps a one-time authorization code for a bearer access token.
// The scope sent here must match the scope used to obtain the code, or the
// instance rejects the exchange. The exchange is never retried: the code is
// single-use, so a retry would fail again at best.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", EmptyAuthorizationCodeErr
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := c.oauth.Exchange(ctx, code, oauth2.SetAuthURLParam("scope", c.scope))
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			return "", &ExchangeError{
				StatusCode: retrieveErr.Response.StatusCode,
				Body:       strings.TrimSpace(string(retrieveErr.Body)),
			}
		}
		return "", &ExchangeError{Cause: err}
	}

	if token.AccessToken == "" {
		return "", &ExchangeError{Cause: errors.New("response carried no access_token")}
	}
	return token.AccessToken, nil
}
