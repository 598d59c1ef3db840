// Package orchestrator owns the request state machine. It is the only
// component that mutates requests; every change goes through the transition
// table, lands in the request's history, and is mirrored to the event bus.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/foiaworks/foiad/internal/agency"
	"github.com/foiaworks/foiad/internal/events"
	"github.com/foiaworks/foiad/internal/idgen"
	"github.com/foiaworks/foiad/internal/model"
	"github.com/foiaworks/foiad/internal/portal"
	"github.com/foiaworks/foiad/internal/scheduler"
	"github.com/foiaworks/foiad/internal/session"
	"github.com/foiaworks/foiad/internal/store"
	"github.com/foiaworks/foiad/internal/tracker"
	"github.com/foiaworks/foiad/internal/verify"
)

// ErrDuplicateRequest means a non-terminal request with the same scope
// already exists at the agency. Pass Override to create it anyway.
var ErrDuplicateRequest = errors.New("duplicate request for agency")

// ErrRequestTerminal rejects operations on closed, withdrawn, or denied
// requests.
var ErrRequestTerminal = errors.New("request is in a terminal state")

const actorEngine = "engine"

// Engine drives requests through their lifecycle. All work on one request is
// serialized through a per-request lock, so portal calls and store writes for
// a request never interleave.
type Engine struct {
	store    store.Store
	registry *portal.Registry
	sessions *session.Manager
	tracker  *tracker.Tracker
	agencies *agency.Directory
	pub      events.Publisher
	backoff  scheduler.Backoff
	logger   *slog.Logger
	now      func() time.Time

	mu         sync.Mutex
	locks      map[string]*sync.Mutex
	emptyPolls map[string]int
}

func New(s store.Store, reg *portal.Registry, sessions *session.Manager, tr *tracker.Tracker, dir *agency.Directory, pub events.Publisher, backoff scheduler.Backoff, logger *slog.Logger) *Engine {
	return &Engine{
		store:      s,
		registry:   reg,
		sessions:   sessions,
		tracker:    tr,
		agencies:   dir,
		pub:        pub,
		backoff:    backoff,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
		locks:      make(map[string]*sync.Mutex),
		emptyPolls: make(map[string]int),
	}
}

func (e *Engine) lockFor(id string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.locks[id]
	if !ok {
		m = &sync.Mutex{}
		e.locks[id] = m
	}
	return m
}

// CreateParams describes a new request to draft.
type CreateParams struct {
	AgencyID  string             `json:"agency_id"`
	Requester string             `json:"requester"`
	Scope     model.RequestScope `json:"scope"`
	// Override creates the request even when a non-terminal duplicate
	// exists at the same agency.
	Override bool `json:"override,omitempty"`
}

// Create drafts a request and schedules its submission. Returns
// ErrDuplicateRequest when an active request with the same scope fingerprint
// already targets the agency.
func (e *Engine) Create(ctx context.Context, p CreateParams) (*model.Request, error) {
	if _, err := e.agencies.Get(p.AgencyID); err != nil {
		return nil, err
	}

	now := e.now()
	id, err := idgen.Request()
	if err != nil {
		return nil, fmt.Errorf("failed to generate ID: %w", err)
	}
	req := &model.Request{
		ID:               id,
		AgencyID:         p.AgencyID,
		Requester:        p.Requester,
		Scope:            p.Scope,
		ScopeFingerprint: p.Scope.Fingerprint(),
		State:            model.StateDrafted,
		CreatedAt:        now,
		UpdatedAt:        now,
		NextWakeAt:       now,
	}
	if err := model.ValidateRequest(req); err != nil {
		return nil, err
	}

	if !p.Override {
		dup, err := e.store.FindActiveByFingerprint(ctx, p.AgencyID, req.ScopeFingerprint)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		if dup != nil {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRequest, dup.ID)
		}
	}

	if err := e.store.CreateRequest(ctx, req); err != nil {
		return nil, err
	}
	e.emit(ctx, events.TopicRequestCreated, req.ID, events.RequestCreated{Request: req})
	return req, nil
}

// HandleDue advances one due request a single step. It is the scheduler's
// entry point and dispatches on the request's current state.
func (e *Engine) HandleDue(ctx context.Context, requestID string) error {
	lock := e.lockFor(requestID)
	lock.Lock()
	defer lock.Unlock()

	req, err := e.store.GetRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if req.State.IsTerminal() {
		return nil
	}

	switch req.State {
	case model.StateDrafted:
		return e.submit(ctx, req)
	case model.StateSubmitted:
		// Submission persisted but the follow-up transition did not; finish
		// the pair before polling.
		if err := e.transition(ctx, req, model.StateAwaitingResponse, "awaiting agency response", actorEngine); err != nil {
			return err
		}
		return e.pollOnce(ctx, req)
	case model.StateAwaitingResponse, model.StateInCorrespondence, model.StatePartiallySatisfied:
		return e.pollOnce(ctx, req)
	case model.StateRecordsReceived:
		return e.fetchAndVerify(ctx, req)
	case model.StateVerified:
		return e.close(ctx, req, "verified")
	default:
		// Escalated requests wait for an operator; re-arm at the backoff
		// ceiling so they keep surfacing in reports.
		req.NextWakeAt = e.now().Add(e.backoff.Max)
		req.UpdatedAt = e.now()
		return e.store.UpdateRequest(ctx, req)
	}
}

// submit authenticates against the agency portal and files the request. A
// transient failure re-arms the retry ladder; a rejected submission or an
// escalated authentication failure hands the request to an operator.
func (e *Engine) submit(ctx context.Context, req *model.Request) error {
	ag, err := e.agencies.Get(req.AgencyID)
	if err != nil {
		return e.escalate(ctx, req, fmt.Sprintf("agency not in directory: %v", err))
	}
	adapter, err := e.registry.Resolve(ctx, ag)
	if err != nil {
		return e.escalate(ctx, req, fmt.Sprintf("no portal adapter: %v", err))
	}

	sess, err := e.sessions.Get(ctx, req.AgencyID, adapter)
	if err != nil {
		if errors.Is(err, session.ErrAuthEscalated) {
			return e.escalate(ctx, req, "portal authentication failures exceeded threshold")
		}
		return e.submitFailed(ctx, req, err)
	}

	receipt, err := adapter.Submit(ctx, sess, req.Scope)
	if err != nil {
		var rejected *portal.SubmissionError
		if errors.As(err, &rejected) {
			e.emit(ctx, events.TopicSubmissionFailed, req.ID, events.SubmissionFailed{
				RequestID: req.ID, AgencyID: req.AgencyID, Reason: rejected.Reason,
			})
			return e.escalate(ctx, req, fmt.Sprintf("submission rejected: %s", rejected.Reason))
		}
		return e.submitFailed(ctx, req, err)
	}

	now := e.now()
	e.resetEmpty(req.ID)
	req.Receipt = receipt.Reference
	req.Deadline = ag.Deadline.Deadline(now)
	req.LastError = nil
	req.NextWakeAt = now.Add(e.backoff.Next(0))
	if err := e.transition(ctx, req, model.StateSubmitted, "filed with portal", actorEngine); err != nil {
		return err
	}
	return e.transition(ctx, req, model.StateAwaitingResponse, "awaiting agency response", actorEngine)
}

func (e *Engine) submitFailed(ctx context.Context, req *model.Request, cause error) error {
	now := e.now()
	req.LastError = &model.LastError{Message: cause.Error(), At: now}
	n := e.bumpEmpty(req.ID)
	req.NextWakeAt = now.Add(e.backoff.Next(n))
	req.UpdatedAt = now
	if err := e.store.UpdateRequest(ctx, req); err != nil {
		return err
	}
	e.emit(ctx, events.TopicSubmissionFailed, req.ID, events.SubmissionFailed{
		RequestID: req.ID, AgencyID: req.AgencyID, Reason: cause.Error(),
	})
	e.logger.Warn("submission failed, retry scheduled",
		"request", req.ID, "agency", req.AgencyID, "next_wake", req.NextWakeAt, "err", cause)
	return nil
}

// pollOnce checks the statutory deadline, pulls new correspondence from the
// portal, and works through the unresolved backlog newest-first.
func (e *Engine) pollOnce(ctx context.Context, req *model.Request) error {
	now := e.now()
	if req.State != model.StatePartiallySatisfied && !req.Deadline.IsZero() && now.After(req.Deadline) {
		e.emit(ctx, events.TopicDeadlineExceeded, req.ID, events.DeadlineExceeded{
			RequestID: req.ID, AgencyID: req.AgencyID, Deadline: req.Deadline.Format(time.RFC3339),
		})
		return e.escalate(ctx, req, "statutory response deadline exceeded")
	}

	ag, err := e.agencies.Get(req.AgencyID)
	if err != nil {
		return e.escalate(ctx, req, fmt.Sprintf("agency not in directory: %v", err))
	}
	adapter, err := e.registry.Resolve(ctx, ag)
	if err != nil {
		return e.escalate(ctx, req, fmt.Sprintf("no portal adapter: %v", err))
	}
	desc, err := e.registry.Descriptor(ctx, ag)
	if err != nil {
		// Correlation still works on the default field order.
		e.logger.Warn("portal descriptor unavailable", "agency", ag.ID, "err", err)
		desc = portal.PortalDescriptor{}
	}
	sess, err := e.sessions.Get(ctx, req.AgencyID, adapter)
	if err != nil {
		if errors.Is(err, session.ErrAuthEscalated) {
			return e.escalate(ctx, req, "portal authentication failures exceeded threshold")
		}
		return e.rearmTransient(ctx, req, err)
	}

	msgs, cursor, err := adapter.PollCorrespondence(ctx, sess, portal.Cursor(req.PollCursor))
	if err != nil {
		var authErr *portal.AuthError
		if errors.As(err, &authErr) {
			// Stale session; renew on the next wake.
			if derr := e.sessions.Invalidate(ctx, req.AgencyID); derr != nil {
				e.logger.Warn("session invalidation failed", "agency", req.AgencyID, "err", derr)
			}
		}
		return e.rearmTransient(ctx, req, err)
	}

	ingested := 0
	for _, msg := range msgs {
		item, err := e.tracker.Ingest(ctx, tracker.RawMessage{
			AgencyID:         msg.AgencyID,
			Reference:        msg.Reference,
			ThreadID:         msg.ThreadID,
			Subject:          msg.Subject,
			Body:             msg.Body,
			BlobRefs:         msg.BlobRefs,
			Timestamp:        msg.Timestamp,
			CorrelationOrder: desc.CorrelationOrder,
		})
		if err != nil {
			if errors.Is(err, tracker.ErrUnmatched) {
				e.logger.Warn("unmatched correspondence dropped",
					"agency", msg.AgencyID, "subject", msg.Subject)
				continue
			}
			return err
		}
		ingested++
		if item.Classification == model.ClassNeedsHumanReview {
			e.emit(ctx, events.TopicNeedsReview, item.RequestID, events.NeedsReview{
				RequestID: item.RequestID, Item: item,
			})
		}
	}
	req.PollCursor = string(cursor)
	if ingested > 0 {
		e.resetEmpty(req.ID)
	}

	// Work through the unresolved backlog, not just this batch: acting on
	// the newest unresolved item resolves it, so rescanning walks backward
	// until only a stuck item or nothing remains.
	acted := false
	lastItem := ""
	for {
		hint, err := e.tracker.PendingAction(ctx, req.ID)
		if err != nil {
			return err
		}
		if hint.Item == nil {
			break
		}
		if hint.Item.ID == lastItem {
			// Acting left the item unresolved (no canned reply, transient
			// send failure); an operator has to move it.
			break
		}
		lastItem = hint.Item.ID
		if req.State == model.StatePartiallySatisfied {
			if err := e.transition(ctx, req, model.StateAwaitingResponse, "agency correspondence reopened the request", actorEngine); err != nil {
				return err
			}
		}
		acted = true
		if err := e.act(ctx, req, adapter, sess, hint); err != nil {
			return err
		}
		if req.State != model.StateAwaitingResponse && req.State != model.StateInCorrespondence {
			return nil
		}
	}
	if acted {
		return nil
	}

	n := 0
	if ingested == 0 {
		n = e.bumpEmpty(req.ID)
	}
	req.NextWakeAt = now.Add(e.backoff.Next(n))
	req.UpdatedAt = now
	return e.store.UpdateRequest(ctx, req)
}

// act applies one pending-action hint to the request.
func (e *Engine) act(ctx context.Context, req *model.Request, adapter portal.Adapter, sess model.Session, hint model.ActionHint) error {
	now := e.now()
	req.NextWakeAt = now.Add(e.backoff.Next(0))

	switch hint.Action {
	case model.ActionFetch:
		if err := e.resolveItem(ctx, hint.Item); err != nil {
			return err
		}
		if err := e.transition(ctx, req, model.StateRecordsReceived, "records delivered by agency", actorEngine); err != nil {
			return err
		}
		return e.fetchAndVerify(ctx, req)

	case model.ActionReply:
		if err := e.transition(ctx, req, model.StateInCorrespondence, string(hint.Item.Classification), actorEngine); err != nil {
			return err
		}
		e.emit(ctx, events.TopicActionRequired, req.ID, events.ActionRequired{
			RequestID: req.ID, Action: hint.Action, Item: hint.Item,
		})
		subject, body, ok := tracker.ReplyTemplate(hint.Item.Classification)
		if !ok {
			// No canned reply for this class; leave it to an operator.
			return e.store.UpdateRequest(ctx, req)
		}
		if err := adapter.SendMessage(ctx, sess, req.Receipt, subject, body); err != nil {
			return e.rearmTransient(ctx, req, err)
		}
		if _, err := e.tracker.RecordOutbound(ctx, req.ID, subject, body); err != nil {
			return err
		}
		if err := e.resolveItem(ctx, hint.Item); err != nil {
			return err
		}
		return e.transition(ctx, req, model.StateAwaitingResponse, "reply sent", actorEngine)

	case model.ActionEscalate:
		if err := e.resolveItem(ctx, hint.Item); err != nil {
			return err
		}
		return e.deny(ctx, req)

	case model.ActionReview:
		e.emit(ctx, events.TopicActionRequired, req.ID, events.ActionRequired{
			RequestID: req.ID, Action: hint.Action, Item: hint.Item,
		})
		if err := e.resolveItem(ctx, hint.Item); err != nil {
			return err
		}
		req.UpdatedAt = now
		return e.store.UpdateRequest(ctx, req)

	default: // ActionWait
		if hint.Item != nil {
			return e.informational(ctx, req, hint.Item)
		}
		req.UpdatedAt = now
		return e.store.UpdateRequest(ctx, req)
	}
}

// informational handles acknowledgments, extension notices, and closure
// notices, none of which need a reply.
func (e *Engine) informational(ctx context.Context, req *model.Request, item *model.CorrespondenceItem) error {
	if err := e.resolveItem(ctx, item); err != nil {
		return err
	}

	switch item.Classification {
	case model.ClassExtensionNotice:
		ag, err := e.agencies.Get(req.AgencyID)
		if err != nil {
			return err
		}
		days := tracker.ExtensionDays(item.Body)
		if days == 0 {
			// Notice stated no day count; assume the full allowance.
			days = ag.Deadline.MaxExtensionDays
		}
		if days > 0 && !req.Deadline.IsZero() {
			req.Deadline = ag.Deadline.Extend(req.Deadline, days)
			e.logger.Info("deadline extended", "request", req.ID, "days", days, "deadline", req.Deadline)
		}
	case model.ClassClosureNotice:
		// An agency closing the file before any records were verified is
		// an operator problem, not a normal completion.
		return e.escalate(ctx, req, "agency closed the request before records were verified")
	}

	req.UpdatedAt = e.now()
	return e.store.UpdateRequest(ctx, req)
}

// fetchAndVerify downloads delivered record metadata and compares it against
// the request scope.
func (e *Engine) fetchAndVerify(ctx context.Context, req *model.Request) error {
	ag, err := e.agencies.Get(req.AgencyID)
	if err != nil {
		return e.escalate(ctx, req, fmt.Sprintf("agency not in directory: %v", err))
	}
	adapter, err := e.registry.Resolve(ctx, ag)
	if err != nil {
		return e.escalate(ctx, req, fmt.Sprintf("no portal adapter: %v", err))
	}
	sess, err := e.sessions.Get(ctx, req.AgencyID, adapter)
	if err != nil {
		if errors.Is(err, session.ErrAuthEscalated) {
			return e.escalate(ctx, req, "portal authentication failures exceeded threshold")
		}
		return e.rearmTransient(ctx, req, err)
	}

	blobs, err := adapter.FetchRecords(ctx, sess, req.Receipt)
	if err != nil {
		if errors.Is(err, portal.ErrRecordsNotReady) || portal.IsTransient(err) {
			return e.rearmTransient(ctx, req, err)
		}
		return e.escalate(ctx, req, fmt.Sprintf("record fetch failed: %v", err))
	}

	metas := make([]model.RecordMeta, len(blobs))
	for i, b := range blobs {
		metas[i] = b.Meta
	}
	result := verify.Verify(req.Scope, metas)
	result.RequestID = req.ID
	result.VerifiedAt = e.now()
	if result.ID, err = idgen.Verification(); err != nil {
		return fmt.Errorf("failed to generate ID: %w", err)
	}
	if err := e.store.SaveVerification(ctx, &result); err != nil {
		return err
	}
	e.emit(ctx, events.TopicRecordsVerified, req.ID, events.RecordsVerified{
		RequestID: req.ID, Result: &result,
	})

	switch result.Status {
	case model.VerificationSatisfied:
		if err := e.transition(ctx, req, model.StateVerified, "delivered records satisfy scope", actorEngine); err != nil {
			return err
		}
		return e.close(ctx, req, "verified")
	case model.VerificationPartial:
		req.NextWakeAt = e.now().Add(e.backoff.Max)
		return e.transition(ctx, req, model.StatePartiallySatisfied,
			fmt.Sprintf("%d discrepancies against requested scope", len(result.Discrepancies)), actorEngine)
	default:
		return e.escalate(ctx, req, "delivered records do not match the requested scope")
	}
}

// Withdraw abandons a request. Late correspondence is still recorded against
// it, but the engine stops driving it entirely.
func (e *Engine) Withdraw(ctx context.Context, requestID, actor string) (*model.Request, error) {
	return e.operatorTransition(ctx, requestID, func(req *model.Request) error {
		if err := e.transition(ctx, req, model.StateWithdrawn, "withdrawn by requester", actor); err != nil {
			return err
		}
		e.emit(ctx, events.TopicWithdrawn, req.ID, events.Withdrawn{RequestID: req.ID})
		return nil
	})
}

// CloseRequest accepts a verified or partially satisfied outcome and closes
// the request.
func (e *Engine) CloseRequest(ctx context.Context, requestID, actor string) (*model.Request, error) {
	return e.operatorTransition(ctx, requestID, func(req *model.Request) error {
		final := "verified"
		if req.State == model.StatePartiallySatisfied {
			final = "partially_satisfied"
		}
		if err := e.transition(ctx, req, model.StateClosed, "closed by operator", actor); err != nil {
			return err
		}
		e.emit(ctx, events.TopicClosed, req.ID, events.Closed{RequestID: req.ID, Final: final})
		return nil
	})
}

// Escalate hands a request to an operator.
func (e *Engine) Escalate(ctx context.Context, requestID, reason, actor string) (*model.Request, error) {
	return e.operatorTransition(ctx, requestID, func(req *model.Request) error {
		if err := e.transition(ctx, req, model.StateEscalated, reason, actor); err != nil {
			return err
		}
		e.emit(ctx, events.TopicEscalated, req.ID, events.Escalated{
			RequestID: req.ID, AgencyID: req.AgencyID, Reason: reason,
		})
		return nil
	})
}

// Resume puts an escalated request back under engine control.
func (e *Engine) Resume(ctx context.Context, requestID, actor string) (*model.Request, error) {
	return e.operatorTransition(ctx, requestID, func(req *model.Request) error {
		e.sessions.ResetFailures(req.AgencyID)
		e.resetEmpty(req.ID)
		req.LastError = nil
		req.NextWakeAt = e.now()
		return e.transition(ctx, req, model.StateAwaitingResponse, "resumed by operator", actor)
	})
}

// Reply sends an operator-written message to the agency and records it.
func (e *Engine) Reply(ctx context.Context, requestID, subject, body, actor string) (*model.CorrespondenceItem, error) {
	lock := e.lockFor(requestID)
	lock.Lock()
	defer lock.Unlock()

	req, err := e.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.State.IsTerminal() {
		return nil, fmt.Errorf("%w: %s is %s", ErrRequestTerminal, req.ID, req.State)
	}

	ag, err := e.agencies.Get(req.AgencyID)
	if err != nil {
		return nil, err
	}
	adapter, err := e.registry.Resolve(ctx, ag)
	if err != nil {
		return nil, err
	}
	sess, err := e.sessions.Get(ctx, req.AgencyID, adapter)
	if err != nil {
		return nil, err
	}
	if err := adapter.SendMessage(ctx, sess, req.Receipt, subject, body); err != nil {
		return nil, err
	}
	item, err := e.tracker.RecordOutbound(ctx, req.ID, subject, body)
	if err != nil {
		return nil, err
	}
	if req.State == model.StateInCorrespondence {
		if err := e.transition(ctx, req, model.StateAwaitingResponse, "reply sent", actor); err != nil {
			return nil, err
		}
	}
	return item, nil
}

func (e *Engine) operatorTransition(ctx context.Context, requestID string, fn func(*model.Request) error) (*model.Request, error) {
	lock := e.lockFor(requestID)
	lock.Lock()
	defer lock.Unlock()

	req, err := e.store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if err := fn(req); err != nil {
		return nil, err
	}
	return req, nil
}

func (e *Engine) deny(ctx context.Context, req *model.Request) error {
	e.emit(ctx, events.TopicEscalated, req.ID, events.Escalated{
		RequestID: req.ID, AgencyID: req.AgencyID, Reason: "request denied by agency",
	})
	return e.transition(ctx, req, model.StateDenied, "denied by agency", actorEngine)
}

func (e *Engine) escalate(ctx context.Context, req *model.Request, reason string) error {
	req.NextWakeAt = e.now().Add(e.backoff.Max)
	if err := e.transition(ctx, req, model.StateEscalated, reason, actorEngine); err != nil {
		return err
	}
	e.emit(ctx, events.TopicEscalated, req.ID, events.Escalated{
		RequestID: req.ID, AgencyID: req.AgencyID, Reason: reason,
	})
	return nil
}

func (e *Engine) close(ctx context.Context, req *model.Request, final string) error {
	if err := e.transition(ctx, req, model.StateClosed, "request complete", actorEngine); err != nil {
		return err
	}
	e.emit(ctx, events.TopicClosed, req.ID, events.Closed{RequestID: req.ID, Final: final})
	return nil
}

func (e *Engine) rearmTransient(ctx context.Context, req *model.Request, cause error) error {
	now := e.now()
	req.LastError = &model.LastError{Message: cause.Error(), At: now}
	n := e.bumpEmpty(req.ID)
	req.NextWakeAt = now.Add(e.backoff.Next(n))
	req.UpdatedAt = now
	e.logger.Warn("portal call failed, retry scheduled",
		"request", req.ID, "agency", req.AgencyID, "next_wake", req.NextWakeAt, "err", cause)
	return e.store.UpdateRequest(ctx, req)
}

// transition applies a validated state change, appends it to the request's
// history, persists, and mirrors it to the event bus.
func (e *Engine) transition(ctx context.Context, req *model.Request, to model.State, reason, actor string) error {
	from := req.State
	if err := model.ValidateTransition(from, to); err != nil {
		return err
	}
	now := e.now()
	req.History = append(req.History, model.Transition{
		RequestID: req.ID,
		Seq:       len(req.History) + 1,
		From:      from,
		To:        to,
		Reason:    reason,
		Actor:     actor,
		At:        now,
	})
	req.State = to
	req.UpdatedAt = now
	if to.IsTerminal() {
		req.NextWakeAt = time.Time{}
	}
	if err := e.store.UpdateRequest(ctx, req); err != nil {
		return err
	}
	e.emit(ctx, events.TopicStateChanged, req.ID, events.StateChanged{
		Request: req, From: from, To: to, Reason: reason,
	})
	return nil
}

func (e *Engine) resolveItem(ctx context.Context, item *model.CorrespondenceItem) error {
	if item == nil {
		return nil
	}
	return e.store.MarkResolved(ctx, item.ID)
}

// emit records the event durably and publishes it best-effort. A bus outage
// never blocks a state change.
func (e *Engine) emit(ctx context.Context, topic, requestID string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		e.logger.Warn("event marshal failed", "topic", topic, "err", err)
		return
	}
	if err := e.store.RecordEvent(ctx, &model.Event{
		Topic:     topic,
		RequestID: requestID,
		Actor:     actorEngine,
		Payload:   data,
		CreatedAt: e.now(),
	}); err != nil {
		e.logger.Warn("event record failed", "topic", topic, "request", requestID, "err", err)
	}
	if err := e.pub.Publish(ctx, topic, payload); err != nil {
		e.logger.Warn("event publish failed", "topic", topic, "request", requestID, "err", err)
	}
}

func (e *Engine) bumpEmpty(id string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := e.emptyPolls[id]
	e.emptyPolls[id] = n + 1
	return n
}

func (e *Engine) resetEmpty(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.emptyPolls, id)
}
