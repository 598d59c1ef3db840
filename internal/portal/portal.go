// Package portal defines the capability contract every agency portal adapter
// must satisfy, and the registry that binds agencies to adapters. Concrete
// adapters (NextRequest, GovQA, plain email, clearinghouse platforms) are
// supplied externally and registered at startup; the engine never depends on
// portal mechanics beyond this contract.
package portal

import (
	"context"
	"time"

	"github.com/foiaworks/foiad/internal/model"
)

// AgencyHint carries what is known about an agency when probing for its
// portal.
type AgencyHint struct {
	AgencyID     string
	Name         string
	Jurisdiction string
	PortalURL    string
}

// PortalDescriptor describes a discovered portal.
type PortalDescriptor struct {
	Family string // adapter family that claimed the agency
	URL    string
	// CorrelationOrder is the adapter's preferred order of correlation keys
	// for inbound correspondence ("reference", "thread", "subject").
	CorrelationOrder []string
}

// Credentials identify the requester account at one agency portal.
// The engine treats the secret as opaque; storage and encryption are
// external concerns.
type Credentials struct {
	AgencyID string
	Username string
	Secret   string
}

// SubmissionReceipt is the portal's proof that a request was lodged.
type SubmissionReceipt struct {
	Reference   string // portal reference number, e.g. "25-1234"
	SubmittedAt time.Time
}

// Cursor is an opaque position in an agency's correspondence feed.
type Cursor string

// InboundMessage is one raw message pulled from a portal, before correlation
// and classification.
type InboundMessage struct {
	AgencyID string
	// Reference is the portal reference number the message belongs to, when
	// the portal provides one.
	Reference string
	ThreadID  string
	Subject   string
	Body      string
	// BlobRefs lists attached record blobs, when the message carries any.
	BlobRefs  []string
	Timestamp time.Time
}

// RecordBlobRef points at one fetchable delivered record.
type RecordBlobRef struct {
	Ref  string
	Meta model.RecordMeta
}

// Adapter is the uniform capability contract for one portal family. All
// network side effects are confined behind this boundary; every call must
// honor its context deadline.
type Adapter interface {
	// Discover probes whether this adapter family can serve the hinted
	// agency. Returns ErrPortalNotFound when the agency is not recognized.
	Discover(ctx context.Context, hint AgencyHint) (PortalDescriptor, error)

	// Authenticate logs in and returns a session. Returns *AuthError when
	// the portal rejects the credentials.
	Authenticate(ctx context.Context, creds Credentials) (model.Session, error)

	// Submit lodges a request and returns the portal's receipt. Returns
	// *SubmissionError for validation rejections (not retryable).
	Submit(ctx context.Context, sess model.Session, scope model.RequestScope) (SubmissionReceipt, error)

	// PollCorrespondence returns messages newer than the cursor, plus the
	// next cursor.
	PollCorrespondence(ctx context.Context, sess model.Session, cursor Cursor) ([]InboundMessage, Cursor, error)

	// FetchRecords retrieves delivered record blob references for a
	// submission. Returns ErrRecordsNotReady while the portal is still
	// preparing them.
	FetchRecords(ctx context.Context, sess model.Session, reference string) ([]RecordBlobRef, error)

	// SendMessage posts an outbound reply on a request's thread.
	SendMessage(ctx context.Context, sess model.Session, reference, subject, body string) error
}
