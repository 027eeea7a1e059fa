// Package mastodon is a minimal client for the parts of the Mastodon API this
// app consumes: the OAuth token endpoint, credential verification, and the
// timeline endpoints. It holds no session state; every call takes the bearer
// token it should use.
package mastodon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const defaultTimeout = 10 * time.Second

// Config describes the instance and the OAuth client registered with it.
type Config struct {
	InstanceURL  string
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scope        string
	Timeout      time.Duration
}

// Client talks to a single Mastodon-compatible instance.
type Client struct {
	baseURL    string
	scope      string
	oauth      oauth2.Config
	httpClient *http.Client
}

func New(cfg Config) (*Client, error) {
	baseURL, err := NormalizeInstanceURL(cfg.InstanceURL)
	if err != nil {
		return nil, errors.Wrap(err, "[mastodon.New] instance URL")
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("[mastodon.New] client id and secret are required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: baseURL,
		scope:   cfg.Scope,
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       []string{cfg.Scope},
			Endpoint: oauth2.Endpoint{
				AuthURL:  baseURL + "/oauth/authorize",
				TokenURL: baseURL + "/oauth/token",
				// Mastodon expects client credentials in the form body, not
				// in a Basic auth header.
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// InstanceURL returns the normalized base URL of the configured instance.
func (c *Client) InstanceURL() string {
	return c.baseURL
}

// AuthorizeURL is the instance page the user visits to obtain an
// authorization code for the out-of-band flow.
func (c *Client) AuthorizeURL() string {
	return c.oauth.AuthCodeURL("")
}

// NormalizeInstanceURL ensures a scheme and strips any trailing slash.
func NormalizeInstanceURL(raw string) (string, error) {
	raw = strings.TrimRight(strings.TrimSpace(raw), "/")
	if raw == "" {
		return "", errors.New("instance URL is empty")
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	if _, err := url.Parse(raw); err != nil {
		return "", err
	}
	return raw, nil
}

// get performs an authenticated GET against an instance endpoint and decodes
// the JSON response into out. Failures are classified into the package's
// error taxonomy.
func (c *Client) get(ctx context.Context, instanceURL, token, endpoint string, query url.Values, out any) error {
	target := instanceURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return errors.Wrap(err, "[Client.get] new request")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Endpoint: endpoint, Err: NetworkErr, Cause: err}
	}
	defer resp.Body.Close()

	if err := classifyStatus(endpoint, resp.StatusCode); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{StatusCode: resp.StatusCode, Endpoint: endpoint, Err: UpstreamUnavailableErr, Cause: err}
	}
	return nil
}

func classifyStatus(endpoint string, status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &APIError{StatusCode: status, Endpoint: endpoint, Err: InvalidTokenErr}
	case status == http.StatusNotFound:
		return &APIError{StatusCode: status, Endpoint: endpoint, Err: EndpointNotFoundErr}
	default:
		return &APIError{StatusCode: status, Endpoint: endpoint, Err: UpstreamUnavailableErr}
	}
}
