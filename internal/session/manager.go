package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"calmate-web/internal/api"
	"calmate-web/internal/event"
)

// Manager owns the session lifecycle. Exactly one Manager exists per running
// server; everything that needs to know "who is logged in" goes through it.
type Manager struct {
	client *api.Client
	store  Store
	bus    event.Bus
	ttl    time.Duration
}

func NewManager(client *api.Client, store Store, bus event.Bus, ttl time.Duration) *Manager {
	return &Manager{client: client, store: store, bus: bus, ttl: ttl}
}

// Resolve settles the session for one request before any guard decision is
// made. No persisted token means Anonymous with no network call. A persisted
// token is validated by loading the profile; any failure attributable to the
// token discards it and everything tied to it, and the session restarts as
// Anonymous. Failures here are never surfaced to the user.
func (m *Manager) Resolve(ctx context.Context, sessionID string) *Session {
	if sessionID == "" {
		return anonymous()
	}

	rec, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return anonymous()
	}

	sess := &Session{ID: sessionID, Status: StatusAuthenticating, Token: rec.Token}

	profile, err := m.client.GetProfile(ctx, rec.Token)
	if err != nil {
		slog.Warn("session token rejected, treating as logged out", "session_id", sessionID, "error", err)
		m.discard(ctx, sessionID)
		return anonymous()
	}

	sess.Status = StatusAuthenticated
	sess.User = profile
	return sess
}

// Login exchanges credentials for a token, persists it under a fresh session
// id, and loads the profile. On any failure nothing is persisted, so the
// caller's prior session state is untouched.
func (m *Manager) Login(ctx context.Context, email, password string) (*Session, error) {
	tokens, err := m.client.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	profile, err := m.client.GetProfile(ctx, tokens.AccessToken)
	if err != nil {
		return nil, err
	}

	rec := Record{
		ID:        uuid.NewString(),
		Token:     tokens.AccessToken,
		ExpiresAt: time.Now().Add(m.ttl),
	}
	if err := m.store.Put(ctx, rec); err != nil {
		return nil, err
	}

	m.publish(event.TypeSessionAuthenticated, rec.ID, profile.ID)
	slog.Info("session authenticated", "session_id", rec.ID, "username", profile.Username)

	return &Session{ID: rec.ID, Status: StatusAuthenticated, Token: rec.Token, User: profile}, nil
}

// Signup creates the account, then performs a normal Login with the same
// credentials. When creation succeeds but the chained login fails, the login
// failure is surfaced and the account stays created; the upstream API offers
// no rollback.
func (m *Manager) Signup(ctx context.Context, email, password, username string) (*Session, error) {
	if _, err := m.client.Signup(ctx, email, password, username); err != nil {
		return nil, err
	}

	return m.Login(ctx, email, password)
}

// Logout discards the persisted token and resets the session to Anonymous.
// It is idempotent and makes no upstream call.
func (m *Manager) Logout(ctx context.Context, sessionID string) {
	if sessionID == "" {
		return
	}
	m.discard(ctx, sessionID)
}

func (m *Manager) discard(ctx context.Context, sessionID string) {
	if err := m.store.Delete(ctx, sessionID); err != nil {
		slog.Error("failed to delete session record", "session_id", sessionID, "error", err)
	}
	m.publish(event.TypeSessionEnded, sessionID, "")
}

func (m *Manager) publish(typ event.Type, sessionID, userID string) {
	if m.bus == nil {
		return
	}
	m.bus.Publish(event.Event{
		Type:      typ,
		SessionID: sessionID,
		UserID:    userID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
