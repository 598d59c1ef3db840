package events

import (
	"context"

	"github.com/foiaworks/foiad/internal/model"
)

// Event topic constants. Consumed by external alerting components; the
// engine never delivers notifications itself.
const (
	TopicRequestCreated   = "foia.request.created"
	TopicStateChanged     = "foia.request.state_changed"
	TopicSubmissionFailed = "foia.request.submission_failed"
	TopicActionRequired   = "foia.request.action_required"
	TopicDeadlineExceeded = "foia.request.deadline_exceeded"
	TopicRecordsVerified  = "foia.request.records_verified"
	TopicEscalated        = "foia.request.escalated"
	TopicWithdrawn        = "foia.request.withdrawn"
	TopicClosed           = "foia.request.closed"
	TopicNeedsReview      = "foia.correspondence.needs_review"
)

// Event types

type RequestCreated struct {
	Request *model.Request `json:"request"`
}

type StateChanged struct {
	Request *model.Request `json:"request"`
	From    model.State    `json:"from"`
	To      model.State    `json:"to"`
	Reason  string         `json:"reason,omitempty"`
}

type SubmissionFailed struct {
	RequestID string `json:"request_id"`
	AgencyID  string `json:"agency_id"`
	Reason    string `json:"reason"`
}

type ActionRequired struct {
	RequestID string                    `json:"request_id"`
	Action    model.Action              `json:"action"`
	Item      *model.CorrespondenceItem `json:"item,omitempty"`
}

type DeadlineExceeded struct {
	RequestID string `json:"request_id"`
	AgencyID  string `json:"agency_id"`
	Deadline  string `json:"deadline"` // RFC 3339
}

type RecordsVerified struct {
	RequestID string                    `json:"request_id"`
	Result    *model.VerificationResult `json:"result"`
}

type Escalated struct {
	RequestID string `json:"request_id"`
	AgencyID  string `json:"agency_id"`
	Reason    string `json:"reason"`
}

type Withdrawn struct {
	RequestID string `json:"request_id"`
}

type Closed struct {
	RequestID string `json:"request_id"`
	Final     string `json:"final"` // verified or partially_satisfied
}

type NeedsReview struct {
	RequestID string                    `json:"request_id"`
	Item      *model.CorrespondenceItem `json:"item"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
