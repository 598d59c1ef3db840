// Package scheduler wakes requests whose next poll time has arrived and
// hands them to the orchestrator through a bounded worker pool.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/foiaworks/foiad/internal/model"
	"github.com/foiaworks/foiad/internal/store"
)

// Handler processes one due request. The scheduler guarantees at most one
// in-flight call per request ID.
type Handler interface {
	HandleDue(ctx context.Context, requestID string) error
}

// Scheduler scans the store for due requests on each tick and dispatches
// them to workers, rate-limited per agency.
type Scheduler struct {
	store       store.Store
	handler     Handler
	limiter     *AgencyLimiter
	interval    time.Duration
	callTimeout time.Duration
	workers     int
	logger      *slog.Logger
	now         func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
	jobs   chan *model.Request

	mu       sync.Mutex
	inflight map[string]struct{}
}

// New creates a scheduler. callTimeout bounds each request cycle; zero means
// no bound.
func New(s store.Store, h Handler, limiter *AgencyLimiter, interval, callTimeout time.Duration, workers int, logger *slog.Logger) *Scheduler {
	if workers < 1 {
		workers = 1
	}
	return &Scheduler{
		store:       s,
		handler:     h,
		limiter:     limiter,
		interval:    interval,
		callTimeout: callTimeout,
		workers:     workers,
		logger:      logger,
		now:         time.Now,
		jobs:        make(chan *model.Request, workers*2),
		inflight:    make(map[string]struct{}),
	}
}

// Start launches the tick loop and worker pool. It dispatches once
// immediately so a restart picks up overdue requests without waiting a full
// interval.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.worker(ctx)
		}()
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// Stop cancels the loop and waits for in-flight work to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	s.dispatchDue(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.dispatchDue(ctx)
		}
	}
}

func (s *Scheduler) dispatchDue(ctx context.Context) {
	due, err := s.store.DueRequests(ctx, s.now())
	if err != nil {
		s.logger.Error("due request scan failed", "err", err)
		return
	}
	for _, req := range due {
		if !s.claim(req.ID) {
			continue
		}
		select {
		case s.jobs <- req:
		case <-ctx.Done():
			s.release(req.ID)
			return
		}
	}
}

func (s *Scheduler) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-s.jobs:
			s.handleOne(ctx, req)
		}
	}
}

func (s *Scheduler) handleOne(ctx context.Context, req *model.Request) {
	defer s.release(req.ID)

	if err := s.limiter.Wait(ctx, req.AgencyID); err != nil {
		return
	}
	if s.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.callTimeout)
		defer cancel()
	}
	if err := s.handler.HandleDue(ctx, req.ID); err != nil {
		s.logger.Warn("due request handling failed", "request", req.ID, "agency", req.AgencyID, "err", err)
	}
}

func (s *Scheduler) claim(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.inflight[id]; ok {
		return false
	}
	s.inflight[id] = struct{}{}
	return true
}

func (s *Scheduler) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, id)
}
