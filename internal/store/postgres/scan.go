package postgres

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/foiaworks/foiad/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanRequest scans a single row into a model.Request.
// The row must contain columns in the order defined by requestColumns.
func scanRequest(row scannable) (*model.Request, error) {
	var r model.Request
	var (
		scope      []byte
		receipt    sql.NullString
		pollCursor sql.NullString
		deadline   sql.NullTime
		nextWakeAt sql.NullTime
		lastError  []byte
		history    []byte
	)

	err := row.Scan(
		&r.ID,
		&r.AgencyID,
		&r.Requester,
		&scope,
		&r.ScopeFingerprint,
		&r.State,
		&receipt,
		&pollCursor,
		&r.CreatedAt,
		&r.UpdatedAt,
		&deadline,
		&nextWakeAt,
		&lastError,
		&history,
	)
	if err != nil {
		return nil, err
	}

	r.Receipt = receipt.String
	r.PollCursor = pollCursor.String
	if deadline.Valid {
		r.Deadline = deadline.Time
	}
	if nextWakeAt.Valid {
		r.NextWakeAt = nextWakeAt.Time
	}
	if len(scope) > 0 {
		if err := json.Unmarshal(scope, &r.Scope); err != nil {
			return nil, err
		}
	}
	if len(lastError) > 0 {
		r.LastError = &model.LastError{}
		if err := json.Unmarshal(lastError, r.LastError); err != nil {
			return nil, err
		}
	}
	if len(history) > 0 {
		if err := json.Unmarshal(history, &r.History); err != nil {
			return nil, err
		}
	}

	return &r, nil
}

// scanItem scans a single row into a model.CorrespondenceItem.
// The row must contain columns in the order defined by itemColumns.
func scanItem(row scannable) (*model.CorrespondenceItem, error) {
	var it model.CorrespondenceItem
	var (
		subject    sql.NullString
		threadID   sql.NullString
		correctsID sql.NullString
	)

	err := row.Scan(
		&it.ID,
		&it.RequestID,
		&it.Seq,
		&it.Direction,
		&it.Classification,
		&subject,
		&it.Body,
		&threadID,
		&it.Resolved,
		&correctsID,
		&it.Timestamp,
		&it.RecordedAt,
	)
	if err != nil {
		return nil, err
	}

	it.Subject = subject.String
	it.ThreadID = threadID.String
	it.CorrectsID = correctsID.String
	return &it, nil
}

func scanVerification(row scannable) (*model.VerificationResult, error) {
	var v model.VerificationResult
	var (
		discrepancies  []byte
		overDeliveries []byte
	)

	err := row.Scan(
		&v.ID,
		&v.RequestID,
		&v.Status,
		&discrepancies,
		&overDeliveries,
		&v.RecordCount,
		&v.VerifiedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(discrepancies) > 0 {
		if err := json.Unmarshal(discrepancies, &v.Discrepancies); err != nil {
			return nil, err
		}
	}
	if len(overDeliveries) > 0 {
		if err := json.Unmarshal(overDeliveries, &v.OverDeliveries); err != nil {
			return nil, err
		}
	}
	return &v, nil
}

func scanEvent(row scannable) (*model.Event, error) {
	var e model.Event
	var (
		actor   sql.NullString
		payload []byte
	)

	err := row.Scan(
		&e.ID,
		&e.Topic,
		&e.RequestID,
		&actor,
		&payload,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.Actor = actor.String
	if len(payload) > 0 {
		e.Payload = json.RawMessage(payload)
	}
	return &e, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// jsonbValue marshals a value for a JSONB column. Marshal failures surface
// as a NULL write, which the schema rejects where it matters.
func jsonbValue(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}

// jsonbPtr marshals an optional value, writing NULL for nil.
func jsonbPtr(v *model.LastError) []byte {
	if v == nil {
		return nil
	}
	return jsonbValue(v)
}

func jsonbBytes(m json.RawMessage) []byte {
	if len(m) == 0 {
		return []byte("null")
	}
	return m
}
