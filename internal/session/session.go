// Package session is the single source of truth for "who is logged in". It
// holds the upstream bearer token for each browser session, resolves the
// session lifecycle before any route-guard decision, and publishes status
// changes on the event bus.
package session

import (
	"calmate-web/internal/model"
)

// Status is the session lifecycle state. A session starts Unresolved, moves
// to Authenticating while a persisted token is validated against the API, and
// settles as Authenticated or Anonymous.
type Status string

const (
	StatusUnresolved     Status = "unresolved"
	StatusAuthenticating Status = "authenticating"
	StatusAuthenticated  Status = "authenticated"
	StatusAnonymous      Status = "anonymous"
)

// Session is the resolved snapshot handed to guards and pages. User is set
// only when Status is Authenticated; Token only while Authenticating or
// Authenticated.
type Session struct {
	ID     string
	Status Status
	Token  string
	User   *model.UserProfile
}

func (s *Session) Authenticated() bool {
	return s != nil && s.Status == StatusAuthenticated && s.User != nil
}

func anonymous() *Session {
	return &Session{Status: StatusAnonymous}
}
