package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/foiaworks/foiad/internal/model"
	"github.com/foiaworks/foiad/internal/orchestrator"
	"github.com/foiaworks/foiad/internal/tracker"
)

func testServer(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL, "test-token")
}

func TestCreateRequest(t *testing.T) {
	var gotPath, gotAuth string
	var gotParams orchestrator.CreateParams

	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.Method + " " + r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotParams); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(model.Request{ID: "req-1", State: model.StateDrafted})
	})

	req, err := c.CreateRequest(context.Background(), orchestrator.CreateParams{
		AgencyID:  "ag-1",
		Requester: "jordan@example.org",
		Scope: model.RequestScope{
			Subject:     []string{"overtime"},
			RecordTypes: []string{"email"},
		},
	})
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	if req.ID != "req-1" || req.State != model.StateDrafted {
		t.Errorf("got request %+v", req)
	}
	if gotPath != "POST /v1/requests" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotParams.AgencyID != "ag-1" {
		t.Errorf("server saw params %+v", gotParams)
	}
}

func TestListRequests_QueryParams(t *testing.T) {
	var gotQuery string
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(ListRequestsResponse{
			Requests: []*model.Request{{ID: "req-1"}, {ID: "req-2"}},
			Count:    2,
		})
	})

	resp, err := c.ListRequests(context.Background(), ListOptions{
		Agency:     "ag-1",
		State:      "awaiting_response",
		ActiveOnly: true,
		Limit:      10,
	})
	if err != nil {
		t.Fatalf("ListRequests: %v", err)
	}
	if resp.Count != 2 || len(resp.Requests) != 2 {
		t.Errorf("got %d requests (count %d)", len(resp.Requests), resp.Count)
	}
	want := "active=true&agency=ag-1&limit=10&state=awaiting_response"
	if gotQuery != want {
		t.Errorf("query = %q, want %q", gotQuery, want)
	}
}

func TestGetRequest_NotFound(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "request not found"})
	})

	_, err := c.GetRequest(context.Background(), "req-missing")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("want *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Message != "request not found" {
		t.Errorf("got %+v", apiErr)
	}
}

func TestEscalate_SendsReason(t *testing.T) {
	var got actorBody
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/requests/req-1/escalate" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(model.Request{ID: "req-1", State: model.StateEscalated})
	})

	req, err := c.Escalate(context.Background(), "req-1", "portal outage", "jordan")
	if err != nil {
		t.Fatalf("Escalate: %v", err)
	}
	if req.State != model.StateEscalated {
		t.Errorf("state = %s", req.State)
	}
	if got.Actor != "jordan" || got.Reason != "portal outage" {
		t.Errorf("server saw %+v", got)
	}
}

func TestIngest(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/ingest" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(model.CorrespondenceItem{
			ID:             "cor-1",
			RequestID:      "req-1",
			Classification: model.ClassAcknowledgment,
		})
	})

	item, err := c.Ingest(context.Background(), tracker.RawMessage{
		AgencyID:  "ag-1",
		Reference: "25-1234",
		Body:      "we have received your request",
		Timestamp: time.Now(),
	})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if item.RequestID != "req-1" || item.Classification != model.ClassAcknowledgment {
		t.Errorf("got item %+v", item)
	}
}

func TestReport(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(orchestrator.StatusReport{
			Total:  3,
			Active: 2,
			ByState: map[model.State]int{
				model.StateAwaitingResponse: 2,
				model.StateClosed:           1,
			},
		})
	})

	rep, err := c.Report(context.Background())
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if rep.Total != 3 || rep.ByState[model.StateAwaitingResponse] != 2 {
		t.Errorf("got report %+v", rep)
	}
}

func TestHealth(t *testing.T) {
	c := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	status, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if status != "ok" {
		t.Errorf("status = %q", status)
	}
}
