// Package sessions holds the server-side, per-browser session state and the
// keyed store contract it lives in. The browser only ever sees the opaque
// session identifier; tokens stay on this side.
package sessions

import (
	"time"

	"github.com/google/uuid"
)

// UserIdentity is the slice of the remote account profile retained for
// display. The raw upstream payload is deliberately not mirrored here.
type UserIdentity struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
}

// Session represents one browser's relationship with one remote instance.
//
// Invariant: Authenticated is only ever set through Authenticate, which
// refuses to flip it without both a token and an instance URL. There is no
// second flag to fall out of sync with.
type Session struct {
	Authenticated   bool         `json:"authenticated"`
	AccessToken     string       `json:"access_token,omitempty"`
	InstanceURL     string       `json:"instance_url,omitempty"`
	User            UserIdentity `json:"user,omitempty"`
	PendingMessages []string     `json:"pending_messages,omitempty"`
	CreatedAt       time.Time    `json:"created_at"`
	ExpiresAt       time.Time    `json:"expires_at"`
}

// New creates an empty anonymous session with the given lifetime.
func New(ttl time.Duration) Session {
	now := time.Now()
	return Session{
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// NewID issues a fresh opaque session identifier.
func NewID() string {
	return uuid.New().String()
}

// Authenticate transitions the session into the authenticated state.
func (s *Session) Authenticate(token, instanceURL string, user UserIdentity) error {
	if token == "" {
		return MissingTokenErr
	}
	if instanceURL == "" {
		return MissingInstanceURLErr
	}
	s.Authenticated = true
	s.AccessToken = token
	s.InstanceURL = instanceURL
	s.User = user
	return nil
}

// IsAuthenticated is the guard re-evaluated on every protected request.
func (s Session) IsAuthenticated() bool {
	return s.Authenticated && s.AccessToken != "" && s.InstanceURL != ""
}

// IsExpired reports whether the session's bounded lifetime has passed.
func (s Session) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// PushMessage queues a flash message for the next rendered view.
func (s *Session) PushMessage(msg string) {
	s.PendingMessages = append(s.PendingMessages, msg)
}

// ConsumeMessages drains the pending messages. The caller is responsible for
// persisting the drained session.
func (s *Session) ConsumeMessages() []string {
	msgs := s.PendingMessages
	s.PendingMessages = nil
	return msgs
}
