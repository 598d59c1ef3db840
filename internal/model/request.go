package model

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// State represents the current position of a request in its lifecycle.
type State string

const (
	StateDrafted            State = "drafted"
	StateSubmitted          State = "submitted"
	StateAwaitingResponse   State = "awaiting_response"
	StateInCorrespondence   State = "in_correspondence"
	StateRecordsReceived    State = "records_received"
	StateVerified           State = "verified"
	StatePartiallySatisfied State = "partially_satisfied"
	StateClosed             State = "closed"
	StateDenied             State = "denied"
	StateWithdrawn          State = "withdrawn"
	StateEscalated          State = "escalated"
)

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// IsValid checks whether the state is a known value.
func (s State) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether no further automated transitions are possible.
// Escalated is terminal-adjacent: the engine stops driving the request, but an
// operator may still withdraw it.
func (s State) IsTerminal() bool {
	switch s {
	case StateClosed, StateWithdrawn, StateDenied:
		return true
	}
	return false
}

// transitions is the allowed transition table. Denied, Withdrawn, and
// Escalated are reachable from every non-terminal state and are listed
// explicitly so no transition ever happens outside this table.
var transitions = map[State]map[State]struct{}{
	StateDrafted: {
		StateSubmitted: {},
		StateDenied:    {},
		StateWithdrawn: {},
		StateEscalated: {},
	},
	StateSubmitted: {
		StateAwaitingResponse: {},
		StateDenied:           {},
		StateWithdrawn:        {},
		StateEscalated:        {},
	},
	StateAwaitingResponse: {
		StateInCorrespondence: {},
		StateRecordsReceived:  {},
		StateDenied:           {},
		StateWithdrawn:        {},
		StateEscalated:        {},
	},
	StateInCorrespondence: {
		StateAwaitingResponse: {},
		StateRecordsReceived:  {},
		StateDenied:           {},
		StateWithdrawn:        {},
		StateEscalated:        {},
	},
	StateRecordsReceived: {
		StateVerified:           {},
		StatePartiallySatisfied: {},
		StateDenied:             {},
		StateWithdrawn:          {},
		StateEscalated:          {},
	},
	StateVerified: {
		StateClosed:    {},
		StateDenied:    {},
		StateWithdrawn: {},
		StateEscalated: {},
	},
	StatePartiallySatisfied: {
		// Reopened correspondence keeps a partially satisfied request alive.
		StateAwaitingResponse: {},
		StateClosed:           {},
		StateDenied:           {},
		StateWithdrawn:        {},
		StateEscalated:        {},
	},
	StateEscalated: {
		// Operator follow-up may resume or abandon an escalated request.
		StateAwaitingResponse: {},
		StateClosed:           {},
		StateDenied:           {},
		StateWithdrawn:        {},
	},
	StateClosed:    {},
	StateDenied:    {},
	StateWithdrawn: {},
}

// ErrIllegalTransition is returned for state changes outside the transition
// table.
var ErrIllegalTransition = errors.New("illegal transition")

// ValidateTransition reports whether from -> to is an allowed transition.
func ValidateTransition(from, to State) error {
	if !from.IsValid() {
		return fmt.Errorf("invalid request state: %q", from)
	}
	if !to.IsValid() {
		return fmt.Errorf("invalid request state: %q", to)
	}
	if _, ok := transitions[from][to]; !ok {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	return nil
}

// RequestScope is the structured description of what records are sought.
type RequestScope struct {
	Subject     []string  `json:"subject"`      // subject keywords
	RecordTypes []string  `json:"record_types"` // e.g. "email", "report", "bodycam"
	DateFrom    time.Time `json:"date_from"`
	DateTo      time.Time `json:"date_to"`
	Description string    `json:"description"` // free-text request body
}

// Fingerprint returns a stable digest over the normalized scope, used to
// detect duplicate submissions against the same agency. The free-text
// description is excluded: two requests asking for the same records with
// different prose are still duplicates.
func (sc RequestScope) Fingerprint() string {
	subjects := normalizeTerms(sc.Subject)
	types := normalizeTerms(sc.RecordTypes)

	h := sha256.New()
	fmt.Fprintf(h, "s=%s;t=%s;from=%s;to=%s",
		strings.Join(subjects, ","),
		strings.Join(types, ","),
		sc.DateFrom.UTC().Format("2006-01-02"),
		sc.DateTo.UTC().Format("2006-01-02"),
	)
	return hex.EncodeToString(h.Sum(nil))
}

func normalizeTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	seen := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Transition is one entry in a request's append-only history log.
type Transition struct {
	RequestID string    `json:"request_id"`
	Seq       int       `json:"seq"`
	From      State     `json:"from"`
	To        State     `json:"to"`
	Reason    string    `json:"reason,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	At        time.Time `json:"at"`
}

// Request is the core tracked record. It is owned exclusively by the
// orchestrator; every other component reads it or proposes transitions.
type Request struct {
	ID               string       `json:"id"`
	AgencyID         string       `json:"agency_id"`
	Requester        string       `json:"requester"`
	Scope            RequestScope `json:"scope"`
	ScopeFingerprint string       `json:"scope_fingerprint"`
	State            State        `json:"state"`
	Receipt          string       `json:"receipt,omitempty"` // portal submission receipt reference
	PollCursor       string       `json:"poll_cursor,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
	Deadline         time.Time    `json:"deadline,omitempty"`
	// NextWakeAt is the scheduled next poll, retry, or deadline check.
	// Every non-terminal request always has one.
	NextWakeAt time.Time    `json:"next_wake_at,omitempty"`
	LastError  *LastError   `json:"last_error,omitempty"`
	History    []Transition `json:"history,omitempty"`
}

// LastError carries the most recent submission failure for manual retry.
// Kept on the request rather than history so the operator sees it directly.
type LastError struct {
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}
