package sessions_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/paperfeed/paperfeed/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authenticatedSession(t *testing.T) sessions.Session {
	t.Helper()

	session := sessions.New(time.Hour)
	err := session.Authenticate("tok_1", "https://mastodon.example", sessions.UserIdentity{
		ID:       "42",
		Username: "alice",
	})
	require.NoError(t, err)
	return session
}

func TestUpsertAndGet(t *testing.T) {
	ctx := context.Background()
	repo := sessions.NewInMemoryRepo()

	id := sessions.NewID()
	require.NoError(t, repo.Upsert(ctx, id, authenticatedSession(t)))

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.IsAuthenticated())
	assert.Equal(t, "tok_1", got.AccessToken)
	assert.Equal(t, "alice", got.User.Username)
}

func TestGetUnknownID(t *testing.T) {
	repo := sessions.NewInMemoryRepo()

	_, err := repo.Get(context.Background(), "no-such-session")
	assert.ErrorIs(t, err, sessions.NotFoundErr)

	_, err = repo.Get(context.Background(), "")
	assert.ErrorIs(t, err, sessions.NotFoundErr)
}

func TestRegenerateInvalidatesOldID(t *testing.T) {
	ctx := context.Background()
	repo := sessions.NewInMemoryRepo()

	oldID := sessions.NewID()
	require.NoError(t, repo.Upsert(ctx, oldID, authenticatedSession(t)))

	newID, err := repo.Regenerate(ctx, oldID)
	require.NoError(t, err)
	require.NotEqual(t, oldID, newID)

	// The old identifier must behave as anonymous immediately.
	_, err = repo.Get(ctx, oldID)
	assert.ErrorIs(t, err, sessions.NotFoundErr)

	got, err := repo.Get(ctx, newID)
	require.NoError(t, err)
	assert.True(t, got.IsAuthenticated())
	assert.Equal(t, "tok_1", got.AccessToken)
}

func TestRegenerateUnknownID(t *testing.T) {
	repo := sessions.NewInMemoryRepo()

	_, err := repo.Regenerate(context.Background(), "no-such-session")
	assert.ErrorIs(t, err, sessions.NotFoundErr)
}

func TestDeleteClearsEverything(t *testing.T) {
	ctx := context.Background()
	repo := sessions.NewInMemoryRepo()

	id := sessions.NewID()
	require.NoError(t, repo.Upsert(ctx, id, authenticatedSession(t)))
	require.NoError(t, repo.Delete(ctx, id))

	_, err := repo.Get(ctx, id)
	assert.ErrorIs(t, err, sessions.NotFoundErr)

	// Deleting again is not an error.
	assert.NoError(t, repo.Delete(ctx, id))
}

func TestConcurrentAccessDoesNotCorrupt(t *testing.T) {
	ctx := context.Background()
	repo := sessions.NewInMemoryRepo()

	id := sessions.NewID()
	require.NoError(t, repo.Upsert(ctx, id, sessions.New(time.Hour)))
	authed := authenticatedSession(t)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = repo.Upsert(ctx, id, authed)
		}()
		go func() {
			defer wg.Done()
			_, _ = repo.Get(ctx, id)
		}()
	}
	wg.Wait()

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.IsAuthenticated())
}

func TestAuthenticateInvariant(t *testing.T) {
	session := sessions.New(time.Hour)

	err := session.Authenticate("", "https://mastodon.example", sessions.UserIdentity{})
	assert.ErrorIs(t, err, sessions.MissingTokenErr)
	assert.False(t, session.IsAuthenticated())

	err = session.Authenticate("tok_1", "", sessions.UserIdentity{})
	assert.ErrorIs(t, err, sessions.MissingInstanceURLErr)
	assert.False(t, session.IsAuthenticated())
}

func TestConsumeMessagesDrains(t *testing.T) {
	session := sessions.New(time.Hour)
	session.PushMessage("first")
	session.PushMessage("second")

	assert.Equal(t, []string{"first", "second"}, session.ConsumeMessages())
	assert.Empty(t, session.ConsumeMessages())
}
