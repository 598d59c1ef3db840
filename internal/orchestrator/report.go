package orchestrator

import (
	"context"
	"sort"
	"time"

	"github.com/foiaworks/foiad/internal/model"
)

// StatusReport is a point-in-time summary of every tracked request, meant
// for the daily operator check-in.
type StatusReport struct {
	GeneratedAt time.Time           `json:"generated_at"`
	Total       int                 `json:"total"`
	Active      int                 `json:"active"`
	ByState     map[model.State]int `json:"by_state"`
	// Overdue lists non-terminal requests past their statutory deadline.
	Overdue []ReportLine `json:"overdue,omitempty"`
	// Attention lists escalated requests and requests carrying an error.
	Attention []ReportLine `json:"attention,omitempty"`
}

type ReportLine struct {
	RequestID string      `json:"request_id"`
	AgencyID  string      `json:"agency_id"`
	State     model.State `json:"state"`
	Deadline  time.Time   `json:"deadline,omitempty"`
	Note      string      `json:"note,omitempty"`
}

// Report builds a status summary across all requests.
func (e *Engine) Report(ctx context.Context) (*StatusReport, error) {
	reqs, err := e.store.ListRequests(ctx, model.RequestFilter{})
	if err != nil {
		return nil, err
	}

	now := e.now()
	rep := &StatusReport{
		GeneratedAt: now,
		Total:       len(reqs),
		ByState:     make(map[model.State]int),
	}
	for _, r := range reqs {
		rep.ByState[r.State]++
		if !r.State.IsTerminal() {
			rep.Active++
			if !r.Deadline.IsZero() && now.After(r.Deadline) {
				rep.Overdue = append(rep.Overdue, ReportLine{
					RequestID: r.ID, AgencyID: r.AgencyID, State: r.State, Deadline: r.Deadline,
				})
			}
		}
		switch {
		case r.State == model.StateEscalated:
			note := ""
			if n := len(r.History); n > 0 {
				note = r.History[n-1].Reason
			}
			rep.Attention = append(rep.Attention, ReportLine{
				RequestID: r.ID, AgencyID: r.AgencyID, State: r.State, Note: note,
			})
		case r.LastError != nil && !r.State.IsTerminal():
			rep.Attention = append(rep.Attention, ReportLine{
				RequestID: r.ID, AgencyID: r.AgencyID, State: r.State, Note: r.LastError.Message,
			})
		}
	}

	sort.Slice(rep.Overdue, func(i, j int) bool {
		return rep.Overdue[i].Deadline.Before(rep.Overdue[j].Deadline)
	})
	sort.Slice(rep.Attention, func(i, j int) bool {
		return rep.Attention[i].RequestID < rep.Attention[j].RequestID
	})
	return rep, nil
}
