package model

import "time"

// Direction marks which way a correspondence item traveled.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// String returns the string representation of the direction.
func (d Direction) String() string {
	return string(d)
}

// IsValid checks whether the direction is a known value.
func (d Direction) IsValid() bool {
	return d == DirectionInbound || d == DirectionOutbound
}

// Classification is the closed action taxonomy for inbound correspondence.
// Content that cannot be confidently classified is tagged NeedsHumanReview
// rather than guessed into a wrong category.
type Classification string

const (
	ClassAcknowledgment       Classification = "acknowledgment"
	ClassClarificationRequest Classification = "clarification-request"
	ClassFeeNotice            Classification = "fee-notice"
	ClassRecordsDelivered     Classification = "records-delivered"
	ClassDenial               Classification = "denial"
	ClassExtensionNotice      Classification = "extension-notice"
	ClassClosureNotice        Classification = "closure-notice"
	ClassNeedsHumanReview     Classification = "needs-human-review"
	// ClassOutbound marks messages the engine itself sends.
	ClassOutbound Classification = "outbound"
)

// String returns the string representation of the classification.
func (c Classification) String() string {
	return string(c)
}

// IsValid checks whether the classification is a known value.
func (c Classification) IsValid() bool {
	switch c {
	case ClassAcknowledgment, ClassClarificationRequest, ClassFeeNotice,
		ClassRecordsDelivered, ClassDenial, ClassExtensionNotice,
		ClassClosureNotice, ClassNeedsHumanReview, ClassOutbound:
		return true
	}
	return false
}

// RequiresReply reports whether the agency expects a response from the
// requester before work continues.
func (c Classification) RequiresReply() bool {
	return c == ClassClarificationRequest || c == ClassFeeNotice
}

// CorrespondenceItem is one message tied to a request. Items are immutable
// once recorded; corrections are appended as new items referencing the
// original via CorrectsID. Ordering is by timestamp, ties broken by Seq
// (arrival sequence).
type CorrespondenceItem struct {
	ID             string         `json:"id"`
	RequestID      string         `json:"request_id"`
	Seq            int            `json:"seq"`
	Direction      Direction      `json:"direction"`
	Classification Classification `json:"classification"`
	Subject        string         `json:"subject,omitempty"`
	Body           string         `json:"body"`
	// ThreadID is the portal-provided conversation identifier, when any.
	ThreadID string `json:"thread_id,omitempty"`
	// Resolved marks an item the orchestrator has already acted on.
	Resolved   bool      `json:"resolved"`
	CorrectsID string    `json:"corrects_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	RecordedAt time.Time `json:"recorded_at"`
}

// Action is what the orchestrator must do next about a request's
// correspondence.
type Action string

const (
	ActionReply    Action = "reply"
	ActionWait     Action = "wait"
	ActionFetch    Action = "fetch"
	ActionEscalate Action = "escalate"
	ActionReview   Action = "review"
)

// ActionHint pairs a pending action with the item that caused it.
type ActionHint struct {
	Action Action              `json:"action"`
	Item   *CorrespondenceItem `json:"item,omitempty"`
}
