// Package auth owns the login state machine: it turns a pasted out-of-band
// authorization code into an authenticated server-side session, and tears
// sessions down on logout or token expiry. Nothing else mutates sessions.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/paperfeed/paperfeed/mastodon"
	"github.com/paperfeed/paperfeed/sessions"
)

// Exchanger swaps a one-time authorization code for a bearer token.
type Exchanger interface {
	ExchangeCode(ctx context.Context, code string) (string, error)
}

// Verifier confirms a bearer token and returns the account it belongs to.
// VerifyCredentialsAt serves the direct-token login path, where the user
// names their own instance instead of using the configured one.
type Verifier interface {
	VerifyCredentials(ctx context.Context, token string) (mastodon.Account, error)
	VerifyCredentialsAt(ctx context.Context, instanceURL, token string) (mastodon.Account, error)
}

// Deps holds the collaborators the service orchestrates.
type Deps struct {
	Sessions  sessions.Repo
	Exchanger Exchanger
	Verifier  Verifier
}

// Service drives the Anonymous → CodeSubmitted → Authenticated transitions.
// Exchange strictly precedes verify: a token issued for the wrong scope
// looks fine until verification rejects it with a 401.
type Service struct {
	deps        Deps
	instanceURL string
	sessionTTL  time.Duration
	nowTime     func() time.Time
}

// ServiceOption modifies a Service instance.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

func NewService(deps Deps, instanceURL string, sessionTTL time.Duration, options ...ServiceOption) (*Service, error) {
	if deps.Sessions == nil {
		return nil, errors.New("[NewService] Sessions repo is required")
	}
	if deps.Exchanger == nil {
		return nil, errors.New("[NewService] Exchanger is required")
	}
	if deps.Verifier == nil {
		return nil, errors.New("[NewService] Verifier is required")
	}
	if instanceURL == "" {
		return nil, errors.New("[NewService] instance URL is required")
	}

	service := &Service{
		deps:        deps,
		instanceURL: instanceURL,
		sessionTTL:  sessionTTL,
		nowTime:     time.Now,
	}

	for _, opt := range options {
		opt(service)
	}

	return service, nil
}

// Login handles a submitted authorization code. On success the session is
// written atomically (token, instance, identity in one record) and moved to
// a fresh identifier, which is returned. On failure the returned identifier
// is the one passed in, the session stays unauthenticated, and the failure
// is recorded as a pending message for the next rendered view.
func (s *Service) Login(ctx context.Context, sessionID, code string) (string, error) {
	session, err := s.sessionOrNew(ctx, sessionID)
	if err != nil {
		return sessionID, err
	}

	if strings.TrimSpace(code) == "" {
		return s.failLogin(ctx, sessionID, session, EmptyCodeErr)
	}

	token, err := s.deps.Exchanger.ExchangeCode(ctx, code)
	if err != nil {
		return s.failLogin(ctx, sessionID, session, err)
	}

	account, err := s.deps.Verifier.VerifyCredentials(ctx, token)
	if err != nil {
		return s.failLogin(ctx, sessionID, session, err)
	}

	return s.establish(ctx, sessionID, session, s.instanceURL, token, account)
}

// LoginWithToken handles the direct-token form: the user supplies their
// instance and an access token they already hold, and only the verify step
// runs. Same atomic write and identifier regeneration as Login.
func (s *Service) LoginWithToken(ctx context.Context, sessionID, instanceURL, token string) (string, error) {
	session, err := s.sessionOrNew(ctx, sessionID)
	if err != nil {
		return sessionID, err
	}

	if strings.TrimSpace(instanceURL) == "" {
		return s.failLogin(ctx, sessionID, session, EmptyInstanceErr)
	}
	if strings.TrimSpace(token) == "" {
		return s.failLogin(ctx, sessionID, session, EmptyTokenErr)
	}

	normalized, err := mastodon.NormalizeInstanceURL(instanceURL)
	if err != nil {
		return s.failLogin(ctx, sessionID, session, EmptyInstanceErr)
	}

	account, err := s.deps.Verifier.VerifyCredentialsAt(ctx, normalized, token)
	if err != nil {
		return s.failLogin(ctx, sessionID, session, err)
	}

	return s.establish(ctx, sessionID, session, normalized, token, account)
}

// Logout destroys the session entirely.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if err := s.deps.Sessions.Delete(ctx, sessionID); err != nil {
		return errors.Wrap(err, "[Service.Logout] Sessions.Delete")
	}
	return nil
}

// Expire is the implicit logout: the timeline API answered 401, so the
// token is dead and the session is torn down exactly as on logout. The
// caller distinguishes the two to the browser, not the store.
func (s *Service) Expire(ctx context.Context, sessionID string) error {
	if err := s.deps.Sessions.Delete(ctx, sessionID); err != nil {
		return errors.Wrap(err, "[Service.Expire] Sessions.Delete")
	}
	return nil
}

func (s *Service) sessionOrNew(ctx context.Context, sessionID string) (sessions.Session, error) {
	session, err := s.deps.Sessions.Get(ctx, sessionID)
	if errors.Is(err, sessions.NotFoundErr) {
		return s.newSession(), nil
	}
	if err != nil {
		return sessions.Session{}, errors.Wrap(err, "[Service.sessionOrNew] Sessions.Get")
	}
	return session, nil
}

func (s *Service) newSession() sessions.Session {
	now := s.nowTime()
	return sessions.Session{
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
}

func (s *Service) establish(ctx context.Context, sessionID string, session sessions.Session, instanceURL, token string, account mastodon.Account) (string, error) {
	if err := session.Authenticate(token, instanceURL, sessions.UserIdentity{
		ID:          account.ID,
		Username:    account.Username,
		DisplayName: account.DisplayName,
		Avatar:      account.Avatar,
	}); err != nil {
		return sessionID, errors.Wrap(err, "[Service.establish] session.Authenticate")
	}

	if err := s.deps.Sessions.Upsert(ctx, sessionID, session); err != nil {
		return sessionID, errors.Wrap(err, "[Service.establish] Sessions.Upsert")
	}

	newID, err := s.deps.Sessions.Regenerate(ctx, sessionID)
	if err != nil {
		return sessionID, errors.Wrap(err, "[Service.establish] Sessions.Regenerate")
	}
	return newID, nil
}

// failLogin records the classified failure on the session without touching
// anything else, so a failed attempt is idempotent and never leaves a
// half-authenticated record behind.
func (s *Service) failLogin(ctx context.Context, sessionID string, session sessions.Session, cause error) (string, error) {
	session.PushMessage(FailureMessage(cause))
	if err := s.deps.Sessions.Upsert(ctx, sessionID, session); err != nil {
		return sessionID, errors.Wrap(err, "[Service.failLogin] Sessions.Upsert")
	}
	return sessionID, cause
}

// FailureMessage maps a classified login failure to the line shown on the
// code-entry view. Users never see a stack trace or an upstream body.
func FailureMessage(err error) string {
	switch {
	case errors.Is(err, EmptyCodeErr), errors.Is(err, mastodon.EmptyAuthorizationCodeErr):
		return "Paste the authorization code shown by your instance."
	case errors.Is(err, EmptyInstanceErr):
		return "Enter your instance URL."
	case errors.Is(err, EmptyTokenErr):
		return "Enter an access token."
	case errors.Is(err, mastodon.TokenExchangeErr):
		return "The instance rejected that authorization code. Request a new code and try again."
	case errors.Is(err, mastodon.InvalidTokenErr):
		return "The access token was not accepted. Request a new code and try again."
	case errors.Is(err, mastodon.EndpointNotFoundErr):
		return "That address does not look like a Mastodon-compatible instance. Check the instance URL."
	case errors.Is(err, mastodon.UpstreamUnavailableErr):
		return "The instance is having trouble right now. Try again in a moment."
	case errors.Is(err, mastodon.NetworkErr):
		return "Could not reach the instance. Check the connection and try again."
	}
	return "Login failed. Try again."
}
