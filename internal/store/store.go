package store

import (
	"context"
	"errors"
	"time"

	"github.com/foiaworks/foiad/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the persistence interface for the request lifecycle engine.
// Requests carry their transition history; correspondence items are
// append-only and never edited.
type Store interface {
	// Requests
	CreateRequest(ctx context.Context, r *model.Request) error
	GetRequest(ctx context.Context, id string) (*model.Request, error)
	ListRequests(ctx context.Context, filter model.RequestFilter) ([]*model.Request, error)
	UpdateRequest(ctx context.Context, r *model.Request) error
	// FindActiveByFingerprint returns a non-terminal request with the same
	// scope fingerprint at the same agency, for duplicate-submission checks.
	FindActiveByFingerprint(ctx context.Context, agencyID, fingerprint string) (*model.Request, error)
	// DueRequests returns non-terminal requests whose NextWakeAt is at or
	// before now, ordered by NextWakeAt.
	DueRequests(ctx context.Context, now time.Time) ([]*model.Request, error)

	// Correspondence (append-only; Seq assigned by the store per request)
	AddCorrespondence(ctx context.Context, item *model.CorrespondenceItem) error
	ListCorrespondence(ctx context.Context, requestID string) ([]*model.CorrespondenceItem, error)
	MarkResolved(ctx context.Context, itemID string) error

	// Sessions (one per agency)
	SaveSession(ctx context.Context, s model.Session) error
	GetSession(ctx context.Context, agencyID string) (model.Session, error)
	DeleteSession(ctx context.Context, agencyID string) error

	// Verification
	SaveVerification(ctx context.Context, v *model.VerificationResult) error
	GetVerification(ctx context.Context, requestID string) (*model.VerificationResult, error)

	// Events
	RecordEvent(ctx context.Context, event *model.Event) error
	GetEvents(ctx context.Context, requestID string) ([]*model.Event, error)

	// Lifecycle
	Close() error
}
