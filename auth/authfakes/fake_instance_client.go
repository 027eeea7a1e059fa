// Package authfakes provides in-memory stand-ins for the remote instance
// used by auth service tests.
package authfakes

import (
	"context"

	"github.com/paperfeed/paperfeed/mastodon"
)

// FakeInstanceClient implements auth.Exchanger and auth.Verifier with
// scripted responses and call counters.
type FakeInstanceClient struct {
	// Tokens maps authorization codes to the token the exchange returns.
	Tokens map[string]string
	// Accounts maps tokens to the account verification returns.
	Accounts map[string]mastodon.Account

	// ExchangeErr and VerifyErr, when set, override the maps.
	ExchangeErr error
	VerifyErr   error

	ExchangeCalls int
	VerifyCalls   int

	// LastVerifyInstanceURL records the instance VerifyCredentialsAt hit.
	LastVerifyInstanceURL string
}

func NewFakeInstanceClient() *FakeInstanceClient {
	return &FakeInstanceClient{
		Tokens:   make(map[string]string),
		Accounts: make(map[string]mastodon.Account),
	}
}

func (f *FakeInstanceClient) ExchangeCode(_ context.Context, code string) (string, error) {
	f.ExchangeCalls++
	if f.ExchangeErr != nil {
		return "", f.ExchangeErr
	}
	token, ok := f.Tokens[code]
	if !ok {
		return "", &mastodon.ExchangeError{StatusCode: 400, Body: `{"error":"invalid_grant"}`}
	}
	return token, nil
}

func (f *FakeInstanceClient) VerifyCredentials(ctx context.Context, token string) (mastodon.Account, error) {
	return f.VerifyCredentialsAt(ctx, "", token)
}

func (f *FakeInstanceClient) VerifyCredentialsAt(_ context.Context, instanceURL, token string) (mastodon.Account, error) {
	f.VerifyCalls++
	f.LastVerifyInstanceURL = instanceURL
	if f.VerifyErr != nil {
		return mastodon.Account{}, f.VerifyErr
	}
	account, ok := f.Accounts[token]
	if !ok {
		return mastodon.Account{}, &mastodon.APIError{StatusCode: 401, Endpoint: "/api/v1/accounts/verify_credentials", Err: mastodon.InvalidTokenErr}
	}
	return account, nil
}
