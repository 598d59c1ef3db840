// Package archive periodically snapshots the request corpus as JSONL to one
// or more destinations (S3-compatible object storage in production).
package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/foiaworks/foiad/internal/model"
	"github.com/foiaworks/foiad/internal/store"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version      string    `json:"version"`
	Type         string    `json:"type"`
	Timestamp    time.Time `json:"timestamp"`
	RequestCount int       `json:"request_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ExportJSONL writes every request, its correspondence, and its verification
// result (when one exists) from the store as JSONL to w. Requests are sorted
// by ID so consecutive exports diff cleanly.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) error {
	reqs, err := s.ListRequests(ctx, model.RequestFilter{})
	if err != nil {
		return fmt.Errorf("list requests: %w", err)
	}

	sort.Slice(reqs, func(i, j int) bool {
		return reqs[i].ID < reqs[j].ID
	})

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:      "1",
		Type:         "header",
		Timestamp:    time.Now().UTC(),
		RequestCount: len(reqs),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, r := range reqs {
		if err := enc.Encode(record{Type: "request", Data: r}); err != nil {
			return fmt.Errorf("encode request %s: %w", r.ID, err)
		}

		items, err := s.ListCorrespondence(ctx, r.ID)
		if err != nil {
			return fmt.Errorf("list correspondence for %s: %w", r.ID, err)
		}
		for _, it := range items {
			if err := enc.Encode(record{Type: "correspondence", Data: it}); err != nil {
				return fmt.Errorf("encode correspondence %s: %w", it.ID, err)
			}
		}

		ver, err := s.GetVerification(ctx, r.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return fmt.Errorf("get verification for %s: %w", r.ID, err)
		}
		if err := enc.Encode(record{Type: "verification", Data: ver}); err != nil {
			return fmt.Errorf("encode verification %s: %w", ver.ID, err)
		}
	}

	return nil
}
