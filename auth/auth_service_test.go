package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/paperfeed/paperfeed/auth"
	"github.com/paperfeed/paperfeed/auth/authfakes"
	"github.com/paperfeed/paperfeed/mastodon"
	"github.com/paperfeed/paperfeed/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testInstanceURL = "https://mastodon.example"
	testCode        = "ABC123"
	testToken       = "tok_1"
)

type testFixture struct {
	repo    *sessions.InMemoryRepo
	client  *authfakes.FakeInstanceClient
	service *auth.Service
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	repo := sessions.NewInMemoryRepo()
	client := authfakes.NewFakeInstanceClient()
	client.Tokens[testCode] = testToken
	client.Accounts[testToken] = mastodon.Account{ID: "42", Username: "alice", DisplayName: "Alice"}

	service, err := auth.NewService(auth.Deps{
		Sessions:  repo,
		Exchanger: client,
		Verifier:  client,
	}, testInstanceURL, 24*time.Hour)
	require.NoError(t, err)

	return &testFixture{repo: repo, client: client, service: service}
}

func (f *testFixture) anonymousSession(t *testing.T) string {
	t.Helper()

	id := sessions.NewID()
	require.NoError(t, f.repo.Upsert(context.Background(), id, sessions.New(time.Hour)))
	return id
}

func TestLoginHappyPath(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	oldID := f.anonymousSession(t)

	newID, err := f.service.Login(ctx, oldID, testCode)
	require.NoError(t, err)
	require.NotEqual(t, oldID, newID, "login must regenerate the session identifier")

	session, err := f.repo.Get(ctx, newID)
	require.NoError(t, err)
	assert.True(t, session.IsAuthenticated())
	assert.Equal(t, testToken, session.AccessToken)
	assert.Equal(t, testInstanceURL, session.InstanceURL)
	assert.Equal(t, "alice", session.User.Username)
	assert.Equal(t, "42", session.User.ID)

	// The pre-login identifier must be dead.
	_, err = f.repo.Get(ctx, oldID)
	assert.ErrorIs(t, err, sessions.NotFoundErr)
}

func TestLoginBadCode(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	id := f.anonymousSession(t)

	returnedID, err := f.service.Login(ctx, id, "bad")
	require.Error(t, err)
	assert.ErrorIs(t, err, mastodon.TokenExchangeErr)
	assert.Equal(t, id, returnedID, "identifier must not change on failure")
	assert.Zero(t, f.client.VerifyCalls, "verify must not run after a failed exchange")

	session, err := f.repo.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, session.IsAuthenticated())
	assert.Empty(t, session.AccessToken)
	assert.NotEmpty(t, session.PendingMessages)

	// Retrying the same bad code fails the same way, not worse.
	_, err = f.service.Login(ctx, id, "bad")
	assert.ErrorIs(t, err, mastodon.TokenExchangeErr)
	session, err = f.repo.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, session.IsAuthenticated())
	assert.Empty(t, session.AccessToken)
}

func TestLoginEmptyCodeSkipsUpstream(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	id := f.anonymousSession(t)

	_, err := f.service.Login(ctx, id, "   ")
	assert.ErrorIs(t, err, auth.EmptyCodeErr)
	assert.Zero(t, f.client.ExchangeCalls)
	assert.Zero(t, f.client.VerifyCalls)
}

func TestLoginVerifyRejectsToken(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	id := f.anonymousSession(t)

	// Exchange succeeds but the instance does not recognise the token, e.g.
	// a scope mismatch.
	delete(f.client.Accounts, testToken)

	_, err := f.service.Login(ctx, id, testCode)
	assert.ErrorIs(t, err, mastodon.InvalidTokenErr)

	session, err := f.repo.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, session.IsAuthenticated())
	assert.Empty(t, session.AccessToken, "no token may persist after a failed verify")
}

func TestLoginEndpointNotFoundIsDistinct(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	f.client.VerifyErr = &mastodon.APIError{StatusCode: 404, Err: mastodon.EndpointNotFoundErr}
	_, notFoundErr := f.service.Login(ctx, f.anonymousSession(t), testCode)
	assert.ErrorIs(t, notFoundErr, mastodon.EndpointNotFoundErr)

	f.client.VerifyErr = &mastodon.APIError{StatusCode: 401, Err: mastodon.InvalidTokenErr}
	_, invalidErr := f.service.Login(ctx, f.anonymousSession(t), testCode)
	assert.ErrorIs(t, invalidErr, mastodon.InvalidTokenErr)

	assert.NotEqual(t, auth.FailureMessage(notFoundErr), auth.FailureMessage(invalidErr),
		"misconfigured instance and rejected token must read differently")
}

func TestLoginWithoutExistingSession(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	newID, err := f.service.Login(ctx, "never-seen-before", testCode)
	require.NoError(t, err)

	session, err := f.repo.Get(ctx, newID)
	require.NoError(t, err)
	assert.True(t, session.IsAuthenticated())
}

func TestLoginWithToken(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)
	id := f.anonymousSession(t)

	newID, err := f.service.LoginWithToken(ctx, id, "other.example", testToken)
	require.NoError(t, err)
	require.NotEqual(t, id, newID)
	assert.Zero(t, f.client.ExchangeCalls, "direct-token login skips the exchange")
	assert.Equal(t, "https://other.example", f.client.LastVerifyInstanceURL)

	session, err := f.repo.Get(ctx, newID)
	require.NoError(t, err)
	assert.True(t, session.IsAuthenticated())
	assert.Equal(t, "https://other.example", session.InstanceURL)
}

func TestLoginWithTokenMissingFields(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	_, err := f.service.LoginWithToken(ctx, f.anonymousSession(t), "", testToken)
	assert.ErrorIs(t, err, auth.EmptyInstanceErr)

	_, err = f.service.LoginWithToken(ctx, f.anonymousSession(t), "other.example", "")
	assert.ErrorIs(t, err, auth.EmptyTokenErr)

	assert.Zero(t, f.client.VerifyCalls)
}

func TestLogoutDestroysSession(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	newID, err := f.service.Login(ctx, f.anonymousSession(t), testCode)
	require.NoError(t, err)

	require.NoError(t, f.service.Logout(ctx, newID))

	_, err = f.repo.Get(ctx, newID)
	assert.ErrorIs(t, err, sessions.NotFoundErr)
}

func TestExpireDestroysSession(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t)

	newID, err := f.service.Login(ctx, f.anonymousSession(t), testCode)
	require.NoError(t, err)

	require.NoError(t, f.service.Expire(ctx, newID))

	_, err = f.repo.Get(ctx, newID)
	assert.ErrorIs(t, err, sessions.NotFoundErr)
}

func TestFailureMessagesCoverTaxonomy(t *testing.T) {
	classified := []error{
		auth.EmptyCodeErr,
		mastodon.TokenExchangeErr,
		mastodon.InvalidTokenErr,
		mastodon.EndpointNotFoundErr,
		mastodon.UpstreamUnavailableErr,
		mastodon.NetworkErr,
	}

	seen := make(map[string]bool)
	for _, err := range classified {
		msg := auth.FailureMessage(err)
		assert.NotEmpty(t, msg)
		assert.False(t, seen[msg], "each failure class needs its own message: %q", msg)
		seen[msg] = true
	}
}
