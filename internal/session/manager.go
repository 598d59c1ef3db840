// Package session owns authenticated portal sessions, one per agency.
// Renewal is exclusive per agency: concurrent callers share a single
// in-flight authentication instead of triggering duplicate logins.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/foiaworks/foiad/internal/model"
	"github.com/foiaworks/foiad/internal/portal"
)

// ErrAuthEscalated means authentication has failed too many consecutive
// times; the caller must escalate instead of retrying.
var ErrAuthEscalated = errors.New("authentication failures exceeded threshold")

// Store is the durable session persistence the manager needs.
type Store interface {
	SaveSession(ctx context.Context, s model.Session) error
	GetSession(ctx context.Context, agencyID string) (model.Session, error)
	DeleteSession(ctx context.Context, agencyID string) error
}

// CredentialSource supplies portal credentials per agency. Credential storage
// and encryption are external concerns.
type CredentialSource interface {
	Credentials(agencyID string) (portal.Credentials, error)
}

// Manager caches one live session per agency and renews on expiry.
type Manager struct {
	store       Store
	creds       CredentialSource
	margin      time.Duration
	maxFailures int
	now         func() time.Time

	group singleflight.Group

	mu       sync.Mutex
	failures map[string]int
}

// NewManager returns a session manager. margin is the expiry safety window:
// a session within margin of expiring is renewed rather than used.
func NewManager(store Store, creds CredentialSource, margin time.Duration, maxFailures int) *Manager {
	if maxFailures <= 0 {
		maxFailures = 3
	}
	return &Manager{
		store:       store,
		creds:       creds,
		margin:      margin,
		maxFailures: maxFailures,
		now:         func() time.Time { return time.Now().UTC() },
		failures:    make(map[string]int),
	}
}

// Get returns a live session for the agency, authenticating through the given
// adapter when the cached session is missing or near expiry. Expiry is checked
// on every call, never cached. Returns ErrAuthEscalated once the consecutive
// failure threshold is reached.
func (m *Manager) Get(ctx context.Context, agencyID string, adapter portal.Adapter) (model.Session, error) {
	if sess, err := m.store.GetSession(ctx, agencyID); err == nil {
		if sess.LiveAt(m.now(), m.margin) {
			return sess, nil
		}
	}

	m.mu.Lock()
	if m.failures[agencyID] >= m.maxFailures {
		m.mu.Unlock()
		return model.Session{}, fmt.Errorf("agency %s: %w", agencyID, ErrAuthEscalated)
	}
	m.mu.Unlock()

	// Singleflight keyed by agency: concurrent callers wait for the one
	// in-flight authentication and share its result.
	v, err, _ := m.group.Do(agencyID, func() (any, error) {
		return m.renew(ctx, agencyID, adapter)
	})
	if err != nil {
		return model.Session{}, err
	}
	return v.(model.Session), nil
}

func (m *Manager) renew(ctx context.Context, agencyID string, adapter portal.Adapter) (model.Session, error) {
	// A waiter that queued behind the winning caller re-checks the store so
	// one expiry cycle produces exactly one authentication call.
	if sess, err := m.store.GetSession(ctx, agencyID); err == nil {
		if sess.LiveAt(m.now(), m.margin) {
			return sess, nil
		}
	}

	creds, err := m.creds.Credentials(agencyID)
	if err != nil {
		return model.Session{}, fmt.Errorf("credentials for agency %s: %w", agencyID, err)
	}

	sess, err := adapter.Authenticate(ctx, creds)
	if err != nil {
		err = portal.Wrap("authenticate", err)
		var authErr *portal.AuthError
		if errors.As(err, &authErr) {
			m.recordFailure(agencyID)
		}
		return model.Session{}, err
	}
	sess.AgencyID = agencyID
	if sess.IssuedAt.IsZero() {
		sess.IssuedAt = m.now()
	}

	m.mu.Lock()
	delete(m.failures, agencyID)
	m.mu.Unlock()

	if err := m.store.SaveSession(ctx, sess); err != nil {
		// The session is still usable for this cycle; losing the cache only
		// costs an extra login later.
		slog.Warn("failed to persist session", "agency", agencyID, "error", err)
	}
	return sess, nil
}

func (m *Manager) recordFailure(agencyID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[agencyID]++
	if m.failures[agencyID] >= m.maxFailures {
		slog.Warn("authentication failure threshold reached", "agency", agencyID, "failures", m.failures[agencyID])
	}
}

// Invalidate drops the cached session for an agency, forcing the next Get to
// authenticate. Used when a portal rejects a supposedly live token.
func (m *Manager) Invalidate(ctx context.Context, agencyID string) error {
	return m.store.DeleteSession(ctx, agencyID)
}

// ResetFailures clears the consecutive-failure counter for an agency, used
// after an operator fixes the credentials.
func (m *Manager) ResetFailures(agencyID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.failures, agencyID)
}
