package model

import (
	"strings"
	"testing"
	"time"
)

func validScope() RequestScope {
	return RequestScope{
		Subject:     []string{"use of force"},
		RecordTypes: []string{"report"},
		DateFrom:    time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		DateTo:      time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		Description: "All use-of-force reports for the first half of 2025.",
	}
}

func TestValidateRequest(t *testing.T) {
	base := func() *Request {
		return &Request{
			ID:        "req-abc123",
			AgencyID:  "alameda-sheriff",
			Requester: "jane@example.org",
			Scope:     validScope(),
			State:     StateDrafted,
		}
	}

	if err := ValidateRequest(base()); err != nil {
		t.Fatalf("valid request failed validation: %v", err)
	}

	for _, tc := range []struct {
		name    string
		mutate  func(*Request)
		wantMsg string
	}{
		{"missing agency", func(r *Request) { r.AgencyID = " " }, "agency_id"},
		{"missing requester", func(r *Request) { r.Requester = "" }, "requester"},
		{"bad state", func(r *Request) { r.State = "limbo" }, "state"},
		{"no subject", func(r *Request) { r.Scope.Subject = nil }, "scope.subject"},
		{"no record types", func(r *Request) { r.Scope.RecordTypes = []string{" "} }, "scope.record_types"},
		{"zero dates", func(r *Request) { r.Scope.DateFrom = time.Time{} }, "scope.date_range"},
		{"inverted dates", func(r *Request) {
			r.Scope.DateFrom, r.Scope.DateTo = r.Scope.DateTo, r.Scope.DateFrom
		}, "scope.date_range"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := base()
			tc.mutate(r)
			err := ValidateRequest(r)
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Errorf("error %q does not mention %q", err.Error(), tc.wantMsg)
			}
		})
	}
}

func TestValidateItem(t *testing.T) {
	base := func() *CorrespondenceItem {
		return &CorrespondenceItem{
			ID:             "cor-abc123",
			RequestID:      "req-abc123",
			Direction:      DirectionInbound,
			Classification: ClassAcknowledgment,
			Body:           "We received your request.",
			Timestamp:      time.Now().UTC(),
		}
	}

	if err := ValidateItem(base()); err != nil {
		t.Fatalf("valid item failed validation: %v", err)
	}

	for _, tc := range []struct {
		name   string
		mutate func(*CorrespondenceItem)
	}{
		{"missing request", func(it *CorrespondenceItem) { it.RequestID = "" }},
		{"bad direction", func(it *CorrespondenceItem) { it.Direction = "sideways" }},
		{"bad classification", func(it *CorrespondenceItem) { it.Classification = "spam" }},
		{"zero timestamp", func(it *CorrespondenceItem) { it.Timestamp = time.Time{} }},
	} {
		t.Run(tc.name, func(t *testing.T) {
			it := base()
			tc.mutate(it)
			if ValidateItem(it) == nil {
				t.Errorf("expected validation error")
			}
		})
	}
}
