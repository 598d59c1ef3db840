// Package memory implements store.Store with in-process maps. Used for
// development and tests; it intentionally favors clarity over performance.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/foiaworks/foiad/internal/model"
	"github.com/foiaworks/foiad/internal/store"
)

// Store is an in-memory store.Store implementation.
type Store struct {
	mu             sync.RWMutex
	requests       map[string]*model.Request
	correspondence map[string][]*model.CorrespondenceItem // request ID -> ordered items
	itemsByID      map[string]*model.CorrespondenceItem
	seq            map[string]int // request ID -> last assigned arrival seq
	sessions       map[string]model.Session
	verifications  map[string]*model.VerificationResult // request ID -> latest
	events         map[string][]*model.Event
	nextEventID    int64
}

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		requests:       make(map[string]*model.Request),
		correspondence: make(map[string][]*model.CorrespondenceItem),
		itemsByID:      make(map[string]*model.CorrespondenceItem),
		seq:            make(map[string]int),
		sessions:       make(map[string]model.Session),
		verifications:  make(map[string]*model.VerificationResult),
		events:         make(map[string][]*model.Event),
	}
}

func cloneRequest(r *model.Request) *model.Request {
	cp := *r
	cp.History = append([]model.Transition(nil), r.History...)
	if r.LastError != nil {
		le := *r.LastError
		cp.LastError = &le
	}
	return &cp
}

func cloneItem(it *model.CorrespondenceItem) *model.CorrespondenceItem {
	cp := *it
	return &cp
}

func (s *Store) CreateRequest(_ context.Context, r *model.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.requests[r.ID]; exists {
		return fmt.Errorf("request %s already exists", r.ID)
	}
	s.requests[r.ID] = cloneRequest(r)
	return nil
}

func (s *Store) GetRequest(_ context.Context, id string) (*model.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.requests[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneRequest(r), nil
}

func (s *Store) ListRequests(_ context.Context, filter model.RequestFilter) ([]*model.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.Request
	for _, r := range s.requests {
		if filter.Matches(r) {
			out = append(out, cloneRequest(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (s *Store) UpdateRequest(_ context.Context, r *model.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[r.ID]; !ok {
		return store.ErrNotFound
	}
	s.requests[r.ID] = cloneRequest(r)
	return nil
}

func (s *Store) FindActiveByFingerprint(_ context.Context, agencyID, fingerprint string) (*model.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.requests {
		if r.AgencyID == agencyID && r.ScopeFingerprint == fingerprint && !r.State.IsTerminal() {
			return cloneRequest(r), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) DueRequests(_ context.Context, now time.Time) ([]*model.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*model.Request
	for _, r := range s.requests {
		if r.State.IsTerminal() || r.NextWakeAt.IsZero() {
			continue
		}
		if !r.NextWakeAt.After(now) {
			out = append(out, cloneRequest(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].NextWakeAt.Before(out[j].NextWakeAt) })
	return out, nil
}

func (s *Store) AddCorrespondence(_ context.Context, item *model.CorrespondenceItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[item.RequestID]; !ok {
		return store.ErrNotFound
	}
	s.seq[item.RequestID]++
	item.Seq = s.seq[item.RequestID]
	cp := cloneItem(item)
	s.correspondence[item.RequestID] = append(s.correspondence[item.RequestID], cp)
	s.itemsByID[item.ID] = cp
	return nil
}

func (s *Store) ListCorrespondence(_ context.Context, requestID string) ([]*model.CorrespondenceItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := s.correspondence[requestID]
	out := make([]*model.CorrespondenceItem, len(items))
	for i, it := range items {
		out[i] = cloneItem(it)
	}
	// Timestamp order, arrival seq breaking ties.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].Seq < out[j].Seq
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

func (s *Store) MarkResolved(_ context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.itemsByID[itemID]
	if !ok {
		return store.ErrNotFound
	}
	it.Resolved = true
	return nil
}

func (s *Store) SaveSession(_ context.Context, sess model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.AgencyID] = sess
	return nil
}

func (s *Store) GetSession(_ context.Context, agencyID string) (model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[agencyID]
	if !ok {
		return model.Session{}, store.ErrNotFound
	}
	return sess, nil
}

func (s *Store) DeleteSession(_ context.Context, agencyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, agencyID)
	return nil
}

func (s *Store) SaveVerification(_ context.Context, v *model.VerificationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *v
	s.verifications[v.RequestID] = &cp
	return nil
}

func (s *Store) GetVerification(_ context.Context, requestID string) (*model.VerificationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.verifications[requestID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (s *Store) RecordEvent(_ context.Context, event *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextEventID++
	event.ID = s.nextEventID
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	cp := *event
	s.events[event.RequestID] = append(s.events[event.RequestID], &cp)
	return nil
}

func (s *Store) GetEvents(_ context.Context, requestID string) ([]*model.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := s.events[requestID]
	out := make([]*model.Event, len(events))
	for i, e := range events {
		cp := *e
		out[i] = &cp
	}
	return out, nil
}

func (s *Store) Close() error { return nil }
