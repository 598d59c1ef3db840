package model

// RequestFilter selects requests in list queries. Zero values match
// everything.
type RequestFilter struct {
	AgencyID  string `json:"agency_id,omitempty"`
	Requester string `json:"requester,omitempty"`
	State     State  `json:"state,omitempty"`
	// ActiveOnly selects requests not yet in a terminal state.
	ActiveOnly bool `json:"active_only,omitempty"`
	Limit      int  `json:"limit,omitempty"`
}

// Matches reports whether a request satisfies the filter.
func (f RequestFilter) Matches(r *Request) bool {
	if f.AgencyID != "" && r.AgencyID != f.AgencyID {
		return false
	}
	if f.Requester != "" && r.Requester != f.Requester {
		return false
	}
	if f.State != "" && r.State != f.State {
		return false
	}
	if f.ActiveOnly && r.State.IsTerminal() {
		return false
	}
	return true
}
