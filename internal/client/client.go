// Package client provides a transport-agnostic interface for the foiad
// service and an HTTP/JSON implementation that talks to the foiad REST API.
package client

import (
	"context"

	"github.com/foiaworks/foiad/internal/model"
	"github.com/foiaworks/foiad/internal/orchestrator"
	"github.com/foiaworks/foiad/internal/tracker"
)

// FOIAClient is the interface that all foiad CLI commands use to communicate
// with the foiad server. It is implemented by HTTPClient.
type FOIAClient interface {
	// Requests
	CreateRequest(ctx context.Context, params orchestrator.CreateParams) (*model.Request, error)
	GetRequest(ctx context.Context, id string) (*model.Request, error)
	ListRequests(ctx context.Context, opts ListOptions) (*ListRequestsResponse, error)

	// Lifecycle
	Withdraw(ctx context.Context, id, actor string) (*model.Request, error)
	CloseRequest(ctx context.Context, id, actor string) (*model.Request, error)
	Escalate(ctx context.Context, id, reason, actor string) (*model.Request, error)
	Resume(ctx context.Context, id, actor string) (*model.Request, error)

	// Correspondence
	ListCorrespondence(ctx context.Context, id string) ([]*model.CorrespondenceItem, error)
	Reply(ctx context.Context, id, subject, body, actor string) (*model.CorrespondenceItem, error)
	Ingest(ctx context.Context, msg tracker.RawMessage) (*model.CorrespondenceItem, error)

	// Audit
	GetEvents(ctx context.Context, id string) ([]*model.Event, error)
	GetVerification(ctx context.Context, id string) (*model.VerificationResult, error)
	Report(ctx context.Context) (*orchestrator.StatusReport, error)

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// ListOptions filter a request listing. Zero values mean no filter.
type ListOptions struct {
	Agency     string
	Requester  string
	State      string
	ActiveOnly bool
	Limit      int
}

// ListRequestsResponse is the server's listing envelope.
type ListRequestsResponse struct {
	Requests []*model.Request `json:"requests"`
	Count    int              `json:"count"`
}
