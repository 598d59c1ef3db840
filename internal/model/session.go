package model

import "time"

// Session is an authenticated portal session for one agency. The Token blob
// is opaque to the engine; only the adapter that minted it can interpret it.
// At most one live session exists per (agency, credential) pair.
type Session struct {
	AgencyID  string    `json:"agency_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	IssuedAt  time.Time `json:"issued_at"`
}

// LiveAt reports whether the session is still usable at the given instant,
// with a safety margin so a session is never used right at its expiry edge.
func (s Session) LiveAt(t time.Time, margin time.Duration) bool {
	if s.Token == "" {
		return false
	}
	return t.Add(margin).Before(s.ExpiresAt)
}
