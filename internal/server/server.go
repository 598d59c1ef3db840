// Package server exposes the request lifecycle engine over HTTP.
package server

import (
	"context"

	"github.com/foiaworks/foiad/internal/model"
	"github.com/foiaworks/foiad/internal/orchestrator"
	"github.com/foiaworks/foiad/internal/store"
	"github.com/foiaworks/foiad/internal/tracker"
)

// Engine is the orchestrator surface the server needs. Narrowed to an
// interface so handler tests can run against a fake.
type Engine interface {
	Create(ctx context.Context, p orchestrator.CreateParams) (*model.Request, error)
	Withdraw(ctx context.Context, requestID, actor string) (*model.Request, error)
	CloseRequest(ctx context.Context, requestID, actor string) (*model.Request, error)
	Escalate(ctx context.Context, requestID, reason, actor string) (*model.Request, error)
	Resume(ctx context.Context, requestID, actor string) (*model.Request, error)
	Reply(ctx context.Context, requestID, subject, body, actor string) (*model.CorrespondenceItem, error)
	Report(ctx context.Context) (*orchestrator.StatusReport, error)
}

// Server wires the engine, tracker, and store behind the HTTP API.
type Server struct {
	store   store.Store
	engine  Engine
	tracker *tracker.Tracker
}

// New creates a Server.
func New(s store.Store, engine Engine, tr *tracker.Tracker) *Server {
	return &Server{
		store:   s,
		engine:  engine,
		tracker: tr,
	}
}
