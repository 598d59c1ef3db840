// Package tracker ingests inbound correspondence, correlates each message to
// its owning request, classifies it into the action taxonomy, and answers
// what the orchestrator must do next. History is append-only: items are never
// edited or deleted.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/foiaworks/foiad/internal/idgen"
	"github.com/foiaworks/foiad/internal/model"
	"github.com/foiaworks/foiad/internal/store"
)

// ErrUnmatched means no request could be correlated with an inbound message.
var ErrUnmatched = errors.New("no request matches correspondence")

// RawMessage is what the ingestion boundary (mail gateway, webhook listener,
// or a portal poll) hands the tracker.
type RawMessage struct {
	AgencyID  string    `json:"agency_id"`
	Reference string    `json:"reference,omitempty"` // portal reference number
	ThreadID  string    `json:"thread_id,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	Body      string    `json:"body"`
	BlobRefs  []string  `json:"blob_refs,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	// CorrelationOrder overrides the default correlation-key preference;
	// supplied as a hint from the adapter layer.
	CorrelationOrder []string `json:"correlation_order,omitempty"`
}

// defaultCorrelationOrder is used when the adapter supplies no preference.
var defaultCorrelationOrder = []string{"reference", "thread", "subject"}

// Tracker correlates and classifies correspondence.
type Tracker struct {
	store store.Store
	now   func() time.Time
}

// New returns a Tracker backed by the given store.
func New(s store.Store) *Tracker {
	return &Tracker{
		store: s,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Ingest resolves the owning request, classifies the message, and appends it
// to the request's history. The returned item carries its assigned arrival
// sequence. Returns ErrUnmatched when no request correlates.
func (t *Tracker) Ingest(ctx context.Context, raw RawMessage) (*model.CorrespondenceItem, error) {
	req, err := t.resolve(ctx, raw)
	if err != nil {
		return nil, err
	}

	id, err := idgen.Correspondence()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ID: %w", err)
	}

	item := &model.CorrespondenceItem{
		ID:             id,
		RequestID:      req.ID,
		Direction:      model.DirectionInbound,
		Classification: Classify(raw.Subject, raw.Body, len(raw.BlobRefs) > 0),
		Subject:        raw.Subject,
		Body:           raw.Body,
		ThreadID:       raw.ThreadID,
		Timestamp:      raw.Timestamp,
		RecordedAt:     t.now(),
	}
	if item.Timestamp.IsZero() {
		item.Timestamp = item.RecordedAt
	}

	if err := model.ValidateItem(item); err != nil {
		return nil, err
	}
	if err := t.store.AddCorrespondence(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to record correspondence: %w", err)
	}

	if item.Classification == model.ClassNeedsHumanReview {
		slog.Info("correspondence needs human review", "request", req.ID, "item", item.ID)
	}
	return item, nil
}

// RecordOutbound appends an outbound reply to a request's history.
func (t *Tracker) RecordOutbound(ctx context.Context, requestID, subject, body string) (*model.CorrespondenceItem, error) {
	id, err := idgen.Correspondence()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ID: %w", err)
	}
	item := &model.CorrespondenceItem{
		ID:             id,
		RequestID:      requestID,
		Direction:      model.DirectionOutbound,
		Classification: model.ClassOutbound,
		Subject:        subject,
		Body:           body,
		Resolved:       true,
		Timestamp:      t.now(),
		RecordedAt:     t.now(),
	}
	if err := t.store.AddCorrespondence(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to record outbound message: %w", err)
	}
	return item, nil
}

// PendingAction computes, from the newest unresolved inbound item, what the
// orchestrator must do next. A request with no unresolved inbound items
// waits.
func (t *Tracker) PendingAction(ctx context.Context, requestID string) (model.ActionHint, error) {
	items, err := t.store.ListCorrespondence(ctx, requestID)
	if err != nil {
		return model.ActionHint{}, err
	}

	for i := len(items) - 1; i >= 0; i-- {
		it := items[i]
		if it.Direction != model.DirectionInbound || it.Resolved {
			continue
		}
		switch it.Classification {
		case model.ClassRecordsDelivered:
			return model.ActionHint{Action: model.ActionFetch, Item: it}, nil
		case model.ClassClarificationRequest, model.ClassFeeNotice:
			return model.ActionHint{Action: model.ActionReply, Item: it}, nil
		case model.ClassDenial:
			return model.ActionHint{Action: model.ActionEscalate, Item: it}, nil
		case model.ClassNeedsHumanReview:
			return model.ActionHint{Action: model.ActionReview, Item: it}, nil
		default:
			// Acknowledgments, extensions, and closure notices are
			// informational; the orchestrator resolves them in place.
			return model.ActionHint{Action: model.ActionWait, Item: it}, nil
		}
	}
	return model.ActionHint{Action: model.ActionWait}, nil
}

// resolve finds the owning request for a raw message. Keys are tried in the
// adapter's preferred order; the default is reference number, then portal
// thread, then subject-line match.
func (t *Tracker) resolve(ctx context.Context, raw RawMessage) (*model.Request, error) {
	candidates, err := t.store.ListRequests(ctx, model.RequestFilter{AgencyID: raw.AgencyID})
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("agency %s: %w", raw.AgencyID, ErrUnmatched)
	}

	order := raw.CorrelationOrder
	if len(order) == 0 {
		order = defaultCorrelationOrder
	}

	for _, key := range order {
		switch key {
		case "reference":
			if raw.Reference == "" {
				continue
			}
			for _, r := range candidates {
				if r.Receipt != "" && r.Receipt == raw.Reference {
					return r, nil
				}
			}
		case "thread":
			if raw.ThreadID == "" {
				continue
			}
			for _, r := range candidates {
				if matched, err := t.threadMatches(ctx, r.ID, raw.ThreadID); err != nil {
					return nil, err
				} else if matched {
					return r, nil
				}
			}
		case "subject":
			if raw.Subject == "" {
				continue
			}
			if r := matchSubject(candidates, raw.Subject); r != nil {
				return r, nil
			}
		}
	}
	return nil, fmt.Errorf("agency %s: %w", raw.AgencyID, ErrUnmatched)
}

func (t *Tracker) threadMatches(ctx context.Context, requestID, threadID string) (bool, error) {
	items, err := t.store.ListCorrespondence(ctx, requestID)
	if err != nil {
		return false, err
	}
	for _, it := range items {
		if it.ThreadID == threadID {
			return true, nil
		}
	}
	return false, nil
}

// matchSubject looks for a request whose ID or receipt reference appears in
// the subject line, then falls back to subject-keyword overlap. The keyword
// fallback requires a unique best match; ambiguity returns nil.
func matchSubject(candidates []*model.Request, subject string) *model.Request {
	lower := strings.ToLower(subject)

	for _, r := range candidates {
		if strings.Contains(lower, strings.ToLower(r.ID)) {
			return r
		}
		if r.Receipt != "" && strings.Contains(lower, strings.ToLower(r.Receipt)) {
			return r
		}
	}

	var best *model.Request
	bestScore, tied := 0, false
	for _, r := range candidates {
		score := 0
		for _, kw := range r.Scope.Subject {
			if strings.Contains(lower, strings.ToLower(kw)) {
				score++
			}
		}
		switch {
		case score > bestScore:
			best, bestScore, tied = r, score, false
		case score == bestScore && score > 0:
			tied = true
		}
	}
	if best == nil || tied {
		return nil
	}
	return best
}
