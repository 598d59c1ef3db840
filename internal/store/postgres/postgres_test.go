package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/foiaworks/foiad/internal/model"
	"github.com/foiaworks/foiad/internal/store"
)

// newMockDB creates a sqlmock database with automatic cleanup and expectation checking.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

// requestRowColumns is the column list for scanRequest results.
var requestRowColumns = []string{
	"id", "agency_id", "requester", "scope", "scope_fingerprint",
	"state", "receipt", "poll_cursor", "created_at", "updated_at", "deadline",
	"next_wake_at", "last_error", "history",
}

var itemRowColumns = []string{
	"id", "request_id", "seq", "direction", "classification", "subject",
	"body", "thread_id", "resolved", "corrects_id", "ts", "recorded_at",
}

func testRequest(now time.Time) *model.Request {
	return &model.Request{
		ID:        "req-abc123",
		AgencyID:  "ag-1",
		Requester: "jordan@example.org",
		Scope: model.RequestScope{
			Subject:     []string{"overtime"},
			RecordTypes: []string{"email"},
			DateFrom:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			DateTo:      time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		},
		ScopeFingerprint: "fp-1",
		State:            model.StateAwaitingResponse,
		Receipt:          "FA-1001",
		CreatedAt:        now,
		UpdatedAt:        now,
		NextWakeAt:       now.Add(15 * time.Minute),
	}
}

// addRequestRow adds a minimal request row to a sqlmock.Rows.
func addRequestRow(t *testing.T, rows *sqlmock.Rows, r *model.Request) *sqlmock.Rows {
	t.Helper()
	scope, err := json.Marshal(r.Scope)
	if err != nil {
		t.Fatalf("marshal scope: %v", err)
	}
	history, err := json.Marshal(r.History)
	if err != nil {
		t.Fatalf("marshal history: %v", err)
	}
	return rows.AddRow(
		r.ID, r.AgencyID, r.Requester, scope, r.ScopeFingerprint,
		string(r.State), nullString(r.Receipt), nullString(r.PollCursor),
		r.CreatedAt, r.UpdatedAt, nullTime(r.Deadline),
		nullTime(r.NextWakeAt), nil, history,
	)
}

func TestCreateRequest(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	r := testRequest(now)

	mock.ExpectExec("INSERT INTO requests").
		WithArgs(
			r.ID, r.AgencyID, r.Requester, sqlmock.AnyArg(), r.ScopeFingerprint,
			string(r.State), nullString(r.Receipt), nullString(r.PollCursor),
			r.CreatedAt, r.UpdatedAt, nullTime(r.Deadline),
			nullTime(r.NextWakeAt), []byte(nil), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := queryCreateRequest(context.Background(), db, r); err != nil {
		t.Fatalf("queryCreateRequest: %v", err)
	}
}

func TestGetRequest(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	r := testRequest(now)

	rows := addRequestRow(t, sqlmock.NewRows(requestRowColumns), r)
	mock.ExpectQuery("SELECT .+ FROM requests WHERE id = \\$1").
		WithArgs(r.ID).WillReturnRows(rows)

	got, err := queryGetRequest(context.Background(), db, r.ID)
	if err != nil {
		t.Fatalf("queryGetRequest: %v", err)
	}
	if got.ID != r.ID || got.State != r.State || got.Receipt != r.Receipt {
		t.Errorf("got %+v, want %+v", got, r)
	}
	if len(got.Scope.Subject) != 1 || got.Scope.Subject[0] != "overtime" {
		t.Errorf("scope not round-tripped: %+v", got.Scope)
	}
}

func TestGetRequest_NotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT .+ FROM requests WHERE id = \\$1").
		WithArgs("nonexistent").WillReturnError(sql.ErrNoRows)

	_, err := queryGetRequest(context.Background(), db, "nonexistent")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected store.ErrNotFound, got %v", err)
	}
}

func TestUpdateRequest_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	r := testRequest(time.Now().UTC())

	mock.ExpectExec("UPDATE requests SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := queryUpdateRequest(context.Background(), db, r); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected store.ErrNotFound, got %v", err)
	}
}

func TestListRequests_Filters(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	r := testRequest(now)

	rows := addRequestRow(t, sqlmock.NewRows(requestRowColumns), r)
	mock.ExpectQuery("SELECT .+ FROM requests WHERE agency_id = \\$1 AND state = \\$2 AND state NOT IN .+ ORDER BY created_at, id LIMIT \\$3").
		WithArgs("ag-1", "awaiting_response", 10).
		WillReturnRows(rows)

	got, err := queryListRequests(context.Background(), db, model.RequestFilter{
		AgencyID:   "ag-1",
		State:      model.StateAwaitingResponse,
		ActiveOnly: true,
		Limit:      10,
	})
	if err != nil {
		t.Fatalf("queryListRequests: %v", err)
	}
	if len(got) != 1 || got[0].ID != r.ID {
		t.Errorf("got %d requests, want the one seeded", len(got))
	}
}

func TestFindActiveByFingerprint_NotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT .+ FROM requests").
		WithArgs("ag-1", "fp-1").WillReturnError(sql.ErrNoRows)

	_, err := queryFindActiveByFingerprint(context.Background(), db, "ag-1", "fp-1")
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected store.ErrNotFound, got %v", err)
	}
}

func TestDueRequests(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	r := testRequest(now)

	rows := addRequestRow(t, sqlmock.NewRows(requestRowColumns), r)
	mock.ExpectQuery("SELECT .+ FROM requests WHERE state NOT IN .+ next_wake_at <= \\$1 ORDER BY next_wake_at").
		WithArgs(now).WillReturnRows(rows)

	got, err := queryDueRequests(context.Background(), db, now)
	if err != nil {
		t.Fatalf("queryDueRequests: %v", err)
	}
	if len(got) != 1 || got[0].ID != r.ID {
		t.Errorf("got %+v, want one due request", got)
	}
}

func TestAddCorrespondence_AssignsSeq(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	item := &model.CorrespondenceItem{
		ID:             "cor-1",
		RequestID:      "req-abc123",
		Direction:      model.DirectionInbound,
		Classification: model.ClassAcknowledgment,
		Subject:        "Request received",
		Body:           "We have received your request.",
		Timestamp:      now,
		RecordedAt:     now,
	}

	mock.ExpectQuery("INSERT INTO correspondence").
		WithArgs(
			item.ID, item.RequestID, string(item.Direction), string(item.Classification),
			nullString(item.Subject), item.Body, nullString(item.ThreadID),
			item.Resolved, nullString(item.CorrectsID), item.Timestamp, item.RecordedAt,
		).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(3))

	if err := queryAddCorrespondence(context.Background(), db, item); err != nil {
		t.Fatalf("queryAddCorrespondence: %v", err)
	}
	if item.Seq != 3 {
		t.Errorf("seq = %d, want 3 from RETURNING", item.Seq)
	}
}

func TestListCorrespondence(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()

	rows := sqlmock.NewRows(itemRowColumns).
		AddRow("cor-1", "req-abc123", 1, "inbound", "acknowledgment",
			"Received", "We received your request.", nil, false, nil, now, now).
		AddRow("cor-2", "req-abc123", 2, "outbound", "outbound",
			"Status inquiry", "Checking in.", nil, true, nil, now.Add(time.Hour), now.Add(time.Hour))
	mock.ExpectQuery("SELECT .+ FROM correspondence WHERE request_id = \\$1 ORDER BY ts, seq").
		WithArgs("req-abc123").WillReturnRows(rows)

	got, err := queryListCorrespondence(context.Background(), db, "req-abc123")
	if err != nil {
		t.Fatalf("queryListCorrespondence: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d items, want 2", len(got))
	}
	if got[0].Classification != model.ClassAcknowledgment || got[1].Direction != model.DirectionOutbound {
		t.Errorf("items not scanned correctly: %+v", got)
	}
}

func TestMarkResolved_NotFound(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec("UPDATE correspondence SET resolved = TRUE").
		WithArgs("nonexistent").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := queryMarkResolved(context.Background(), db, "nonexistent"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected store.ErrNotFound, got %v", err)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	sess := model.Session{
		AgencyID:  "ag-1",
		Token:     "tok",
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	}

	mock.ExpectExec("INSERT INTO sessions").
		WithArgs(sess.AgencyID, sess.Token, sess.IssuedAt, sess.ExpiresAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := querySaveSession(context.Background(), db, sess); err != nil {
		t.Fatalf("querySaveSession: %v", err)
	}

	mock.ExpectQuery("SELECT agency_id, token, issued_at, expires_at").
		WithArgs("ag-1").
		WillReturnRows(sqlmock.NewRows([]string{"agency_id", "token", "issued_at", "expires_at"}).
			AddRow(sess.AgencyID, sess.Token, sess.IssuedAt, sess.ExpiresAt))
	got, err := queryGetSession(context.Background(), db, "ag-1")
	if err != nil {
		t.Fatalf("queryGetSession: %v", err)
	}
	if got.Token != "tok" {
		t.Errorf("token = %q, want tok", got.Token)
	}
}

func TestSaveAndGetVerification(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	v := &model.VerificationResult{
		ID:        "ver-1",
		RequestID: "req-abc123",
		Status:    model.VerificationPartial,
		Discrepancies: []model.Discrepancy{
			{Field: "record_types", Expected: "report", Observed: "no responsive records delivered"},
		},
		RecordCount: 4,
		VerifiedAt:  now,
	}

	mock.ExpectExec("INSERT INTO verifications").
		WithArgs(v.ID, v.RequestID, string(v.Status), sqlmock.AnyArg(), sqlmock.AnyArg(), v.RecordCount, v.VerifiedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := querySaveVerification(context.Background(), db, v); err != nil {
		t.Fatalf("querySaveVerification: %v", err)
	}

	disc, err := json.Marshal(v.Discrepancies)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	mock.ExpectQuery("SELECT .+ FROM verifications WHERE request_id = \\$1").
		WithArgs("req-abc123").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "request_id", "status", "discrepancies", "over_deliveries",
			"record_count", "verified_at",
		}).AddRow(v.ID, v.RequestID, string(v.Status), disc, nil, v.RecordCount, v.VerifiedAt))

	got, err := queryGetVerification(context.Background(), db, "req-abc123")
	if err != nil {
		t.Fatalf("queryGetVerification: %v", err)
	}
	if got.Status != model.VerificationPartial || len(got.Discrepancies) != 1 {
		t.Errorf("verification not round-tripped: %+v", got)
	}
}

func TestRecordEvent(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now().UTC()
	ev := &model.Event{
		Topic:     "foia.request.created",
		RequestID: "req-abc123",
		Actor:     "engine",
		Payload:   json.RawMessage(`{"request_id":"req-abc123"}`),
		CreatedAt: now,
	}

	mock.ExpectQuery("INSERT INTO events").
		WithArgs(ev.Topic, ev.RequestID, nullString(ev.Actor), []byte(ev.Payload), ev.CreatedAt).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	if err := queryRecordEvent(context.Background(), db, ev); err != nil {
		t.Fatalf("queryRecordEvent: %v", err)
	}
	if ev.ID != 42 {
		t.Errorf("event ID = %d, want 42 from RETURNING", ev.ID)
	}
}
