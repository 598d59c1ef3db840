package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/foiaworks/foiad/internal/model"
	"github.com/foiaworks/foiad/internal/orchestrator"
	"github.com/foiaworks/foiad/internal/store"
	"github.com/foiaworks/foiad/internal/tracker"
)

// handleCreateRequest handles POST /v1/requests.
func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	var in orchestrator.CreateParams
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req, err := s.engine.Create(r.Context(), in)
	if err != nil {
		var ve *model.ValidationError
		switch {
		case errors.As(err, &ve):
			writeError(w, http.StatusBadRequest, ve.Error())
		case errors.Is(err, orchestrator.ErrDuplicateRequest):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, req)
}

// handleListRequests handles GET /v1/requests.
func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.RequestFilter{
		AgencyID:  q.Get("agency"),
		Requester: q.Get("requester"),
	}
	if v := q.Get("state"); v != "" {
		st := model.State(v)
		if !st.IsValid() {
			writeError(w, http.StatusBadRequest, "unknown state: "+v)
			return
		}
		filter.State = st
	}
	if q.Get("active") == "true" {
		filter.ActiveOnly = true
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}

	reqs, err := s.store.ListRequests(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list requests")
		return
	}
	if reqs == nil {
		reqs = []*model.Request{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": reqs, "count": len(reqs)})
}

// handleGetRequest handles GET /v1/requests/{id}.
func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	req, err := s.store.GetRequest(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "request not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get request")
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// handleListCorrespondence handles GET /v1/requests/{id}/correspondence.
func (s *Server) handleListCorrespondence(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.store.GetRequest(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "request not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get request")
		return
	}

	items, err := s.store.ListCorrespondence(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list correspondence")
		return
	}
	if items == nil {
		items = []*model.CorrespondenceItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

// handleGetEvents handles GET /v1/requests/{id}/events.
func (s *Server) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	events, err := s.store.GetEvents(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get events")
		return
	}
	if events == nil {
		events = []*model.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events, "count": len(events)})
}

// handleGetVerification handles GET /v1/requests/{id}/verification.
func (s *Server) handleGetVerification(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	v, err := s.store.GetVerification(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no verification for request")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get verification")
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// actorInput carries the acting operator for lifecycle endpoints.
type actorInput struct {
	Actor  string `json:"actor,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func decodeActor(r *http.Request) actorInput {
	var in actorInput
	_ = json.NewDecoder(r.Body).Decode(&in)
	if in.Actor == "" {
		in.Actor = "operator"
	}
	return in
}

// handleWithdraw handles POST /v1/requests/{id}/withdraw.
func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	in := decodeActor(r)
	req, err := s.engine.Withdraw(r.Context(), r.PathValue("id"), in.Actor)
	s.writeLifecycle(w, req, err)
}

// handleClose handles POST /v1/requests/{id}/close.
func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	in := decodeActor(r)
	req, err := s.engine.CloseRequest(r.Context(), r.PathValue("id"), in.Actor)
	s.writeLifecycle(w, req, err)
}

// handleEscalate handles POST /v1/requests/{id}/escalate.
func (s *Server) handleEscalate(w http.ResponseWriter, r *http.Request) {
	in := decodeActor(r)
	if in.Reason == "" {
		in.Reason = "escalated by operator"
	}
	req, err := s.engine.Escalate(r.Context(), r.PathValue("id"), in.Reason, in.Actor)
	s.writeLifecycle(w, req, err)
}

// handleResume handles POST /v1/requests/{id}/resume.
func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	in := decodeActor(r)
	req, err := s.engine.Resume(r.Context(), r.PathValue("id"), in.Actor)
	s.writeLifecycle(w, req, err)
}

func (s *Server) writeLifecycle(w http.ResponseWriter, req *model.Request, err error) {
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "request not found")
		case errors.Is(err, model.ErrIllegalTransition):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// replyInput is the body for POST /v1/requests/{id}/reply.
type replyInput struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	Actor   string `json:"actor,omitempty"`
}

// handleReply handles POST /v1/requests/{id}/reply.
func (s *Server) handleReply(w http.ResponseWriter, r *http.Request) {
	var in replyInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if in.Body == "" {
		writeError(w, http.StatusBadRequest, "body is required")
		return
	}
	if in.Actor == "" {
		in.Actor = "operator"
	}

	item, err := s.engine.Reply(r.Context(), r.PathValue("id"), in.Subject, in.Body, in.Actor)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			writeError(w, http.StatusNotFound, "request not found")
		case errors.Is(err, orchestrator.ErrRequestTerminal):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// handleIngest handles POST /v1/ingest: out-of-band correspondence (scraped
// mail, webhook payloads) pushed into the tracker.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var in tracker.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if in.AgencyID == "" {
		writeError(w, http.StatusBadRequest, "agency_id is required")
		return
	}

	item, err := s.tracker.Ingest(r.Context(), in)
	if err != nil {
		var ve *model.ValidationError
		switch {
		case errors.Is(err, tracker.ErrUnmatched):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		case errors.As(err, &ve):
			writeError(w, http.StatusBadRequest, ve.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

// handleReport handles GET /v1/report.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rep, err := s.engine.Report(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to build report")
		return
	}
	writeJSON(w, http.StatusOK, rep)
}
