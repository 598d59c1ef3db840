package model

import "time"

// VerificationStatus is the overall verdict of comparing received records
// against the request scope.
type VerificationStatus string

const (
	VerificationSatisfied  VerificationStatus = "satisfied"
	VerificationPartial    VerificationStatus = "partial"
	VerificationMismatched VerificationStatus = "mismatched"
)

// String returns the string representation of the status.
func (s VerificationStatus) String() string {
	return string(s)
}

// IsValid checks whether the status is a known value.
func (s VerificationStatus) IsValid() bool {
	switch s {
	case VerificationSatisfied, VerificationPartial, VerificationMismatched:
		return true
	}
	return false
}

// Discrepancy is one blocking gap between the requested scope and the
// delivered records.
type Discrepancy struct {
	Field    string `json:"field"` // "record_types", "date_range", "subject"
	Expected string `json:"expected"`
	Observed string `json:"observed"`
}

// OverDelivery notes a record outside the requested scope. Informational,
// never blocking.
type OverDelivery struct {
	RecordRef string `json:"record_ref"`
	Reason    string `json:"reason"`
}

// RecordMeta is the metadata for one delivered record blob, as reported by
// the portal adapter.
type RecordMeta struct {
	Ref        string    `json:"ref"`
	RecordType string    `json:"record_type"`
	Subject    []string  `json:"subject,omitempty"`
	Date       time.Time `json:"date"`
}

// VerificationResult is the deterministic outcome of one verification run.
type VerificationResult struct {
	ID             string             `json:"id"`
	RequestID      string             `json:"request_id"`
	Status         VerificationStatus `json:"status"`
	Discrepancies  []Discrepancy      `json:"discrepancies,omitempty"`
	OverDeliveries []OverDelivery     `json:"over_deliveries,omitempty"`
	RecordCount    int                `json:"record_count"`
	VerifiedAt     time.Time          `json:"verified_at"`
}
