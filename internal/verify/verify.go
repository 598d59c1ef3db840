// Package verify compares delivered records against a request's structured
// scope. Verification is a pure function: identical scope and record set
// always produce the identical result.
package verify

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/foiaworks/foiad/internal/model"
)

// Verify checks that record metadata falls within the requested scope.
// Requested-but-absent record types and uncovered stretches of the requested
// date range are blocking discrepancies; records outside scope are
// informational over-deliveries. The returned result carries no ID or
// timestamp; the caller assigns those.
func Verify(scope model.RequestScope, records []model.RecordMeta) model.VerificationResult {
	// Canonical input order makes the verdict independent of delivery order.
	sorted := append([]model.RecordMeta(nil), records...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Ref < sorted[j].Ref })

	wantTypes := make(map[string]bool)
	for _, rt := range scope.RecordTypes {
		wantTypes[normalize(rt)] = false
	}
	wantSubjects := make(map[string]struct{})
	for _, s := range scope.Subject {
		wantSubjects[normalize(s)] = struct{}{}
	}

	var (
		result  model.VerificationResult
		inScope []model.RecordMeta
	)

	for _, rec := range sorted {
		rt := normalize(rec.RecordType)
		if _, requested := wantTypes[rt]; !requested {
			result.OverDeliveries = append(result.OverDeliveries, model.OverDelivery{
				RecordRef: rec.Ref,
				Reason:    fmt.Sprintf("record type %q was not requested", rec.RecordType),
			})
			continue
		}
		if rec.Date.Before(scope.DateFrom) || rec.Date.After(scope.DateTo) {
			result.OverDeliveries = append(result.OverDeliveries, model.OverDelivery{
				RecordRef: rec.Ref,
				Reason: fmt.Sprintf("dated %s, outside requested range %s..%s",
					day(rec.Date), day(scope.DateFrom), day(scope.DateTo)),
			})
			continue
		}
		if len(rec.Subject) > 0 && !subjectOverlap(rec.Subject, wantSubjects) {
			result.OverDeliveries = append(result.OverDeliveries, model.OverDelivery{
				RecordRef: rec.Ref,
				Reason:    fmt.Sprintf("subject %s outside requested scope", strings.Join(rec.Subject, ", ")),
			})
			continue
		}
		wantTypes[rt] = true
		inScope = append(inScope, rec)
	}

	// Requested record types with no in-scope delivery.
	for rt, covered := range wantTypes {
		if !covered {
			result.Discrepancies = append(result.Discrepancies, model.Discrepancy{
				Field:    "record_types",
				Expected: rt,
				Observed: "no responsive records delivered",
			})
		}
	}

	// Date-range coverage from the in-scope records' date spread.
	if len(inScope) > 0 {
		minDate, maxDate := inScope[0].Date, inScope[0].Date
		for _, rec := range inScope[1:] {
			if rec.Date.Before(minDate) {
				minDate = rec.Date
			}
			if rec.Date.After(maxDate) {
				maxDate = rec.Date
			}
		}
		// A gap of more than coverageSlack at either edge of the requested
		// range counts as an uncovered sub-range.
		if minDate.Sub(scope.DateFrom) > coverageSlack {
			result.Discrepancies = append(result.Discrepancies, model.Discrepancy{
				Field:    "date_range",
				Expected: fmt.Sprintf("records from %s", day(scope.DateFrom)),
				Observed: fmt.Sprintf("earliest delivered record dated %s", day(minDate)),
			})
		}
		if scope.DateTo.Sub(maxDate) > coverageSlack {
			result.Discrepancies = append(result.Discrepancies, model.Discrepancy{
				Field:    "date_range",
				Expected: fmt.Sprintf("records through %s", day(scope.DateTo)),
				Observed: fmt.Sprintf("latest delivered record dated %s", day(maxDate)),
			})
		}
	}

	sort.Slice(result.Discrepancies, func(i, j int) bool {
		a, b := result.Discrepancies[i], result.Discrepancies[j]
		if a.Field != b.Field {
			return a.Field < b.Field
		}
		return a.Expected < b.Expected
	})

	result.RecordCount = len(records)
	switch {
	case len(inScope) == 0:
		result.Status = model.VerificationMismatched
	case len(result.Discrepancies) > 0:
		result.Status = model.VerificationPartial
	default:
		result.Status = model.VerificationSatisfied
	}
	return result
}

// coverageSlack tolerates sparse record dates near range edges; agencies
// rarely hold records dated on the exact boundary days.
const coverageSlack = 31 * 24 * time.Hour

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func day(t time.Time) string {
	return t.Format("2006-01-02")
}

func subjectOverlap(tags []string, want map[string]struct{}) bool {
	for _, tag := range tags {
		if _, ok := want[normalize(tag)]; ok {
			return true
		}
	}
	return false
}
