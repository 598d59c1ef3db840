package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/foiaworks/foiad/internal/model"
	"github.com/foiaworks/foiad/internal/store"
)

// requestColumns is the column list used for SELECT statements on the
// requests table.
const requestColumns = `id, agency_id, requester, scope, scope_fingerprint,
	state, receipt, poll_cursor, created_at, updated_at, deadline,
	next_wake_at, last_error, history`

// itemColumns is the column list for the correspondence table.
const itemColumns = `id, request_id, seq, direction, classification, subject,
	body, thread_id, resolved, corrects_id, ts, recorded_at`

// terminalStates mirrors model.State.IsTerminal for SQL predicates.
const terminalStates = `('closed', 'withdrawn', 'denied')`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryCreateRequest(ctx context.Context, db executor, r *model.Request) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO requests (
			id, agency_id, requester, scope, scope_fingerprint,
			state, receipt, poll_cursor, created_at, updated_at, deadline,
			next_wake_at, last_error, history
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10, $11,
			$12, $13, $14
		)`,
		r.ID,
		r.AgencyID,
		r.Requester,
		jsonbValue(r.Scope),
		r.ScopeFingerprint,
		string(r.State),
		nullString(r.Receipt),
		nullString(r.PollCursor),
		r.CreatedAt,
		r.UpdatedAt,
		nullTime(r.Deadline),
		nullTime(r.NextWakeAt),
		jsonbPtr(r.LastError),
		jsonbValue(r.History),
	)
	return err
}

func queryGetRequest(ctx context.Context, db executor, id string) (*model.Request, error) {
	row := db.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM requests WHERE id = $1`, id)
	r, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return r, err
}

func queryListRequests(ctx context.Context, db executor, filter model.RequestFilter) ([]*model.Request, error) {
	var (
		whereClauses []string
		args         []any
		argIdx       int
	)

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	if filter.AgencyID != "" {
		whereClauses = append(whereClauses, "agency_id = "+nextArg())
		args = append(args, filter.AgencyID)
	}
	if filter.Requester != "" {
		whereClauses = append(whereClauses, "requester = "+nextArg())
		args = append(args, filter.Requester)
	}
	if filter.State != "" {
		whereClauses = append(whereClauses, "state = "+nextArg())
		args = append(args, string(filter.State))
	}
	if filter.ActiveOnly {
		whereClauses = append(whereClauses, "state NOT IN "+terminalStates)
	}

	query := `SELECT ` + requestColumns + ` FROM requests`
	for i, clause := range whereClauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY created_at, id"
	if filter.Limit > 0 {
		query += " LIMIT " + nextArg()
		args = append(args, filter.Limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func queryUpdateRequest(ctx context.Context, db executor, r *model.Request) error {
	res, err := db.ExecContext(ctx, `
		UPDATE requests SET
			state = $2,
			receipt = $3,
			poll_cursor = $4,
			updated_at = $5,
			deadline = $6,
			next_wake_at = $7,
			last_error = $8,
			history = $9
		WHERE id = $1`,
		r.ID,
		string(r.State),
		nullString(r.Receipt),
		nullString(r.PollCursor),
		r.UpdatedAt,
		nullTime(r.Deadline),
		nullTime(r.NextWakeAt),
		jsonbPtr(r.LastError),
		jsonbValue(r.History),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func queryFindActiveByFingerprint(ctx context.Context, db executor, agencyID, fingerprint string) (*model.Request, error) {
	row := db.QueryRowContext(ctx, `
		SELECT `+requestColumns+` FROM requests
		WHERE agency_id = $1 AND scope_fingerprint = $2
		  AND state NOT IN `+terminalStates+`
		ORDER BY created_at LIMIT 1`,
		agencyID, fingerprint)
	r, err := scanRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return r, err
}

func queryDueRequests(ctx context.Context, db executor, now time.Time) ([]*model.Request, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+requestColumns+` FROM requests
		WHERE state NOT IN `+terminalStates+`
		  AND next_wake_at IS NOT NULL AND next_wake_at <= $1
		ORDER BY next_wake_at`,
		now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Request
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func queryAddCorrespondence(ctx context.Context, db executor, item *model.CorrespondenceItem) error {
	// The arrival sequence is assigned here, atomically per request.
	row := db.QueryRowContext(ctx, `
		INSERT INTO correspondence (
			id, request_id, seq, direction, classification, subject,
			body, thread_id, resolved, corrects_id, ts, recorded_at
		)
		SELECT $1, $2, COALESCE(MAX(seq), 0) + 1, $3, $4, $5,
			$6, $7, $8, $9, $10, $11
		FROM correspondence WHERE request_id = $2
		RETURNING seq`,
		item.ID,
		item.RequestID,
		string(item.Direction),
		string(item.Classification),
		nullString(item.Subject),
		item.Body,
		nullString(item.ThreadID),
		item.Resolved,
		nullString(item.CorrectsID),
		item.Timestamp,
		item.RecordedAt,
	)
	return row.Scan(&item.Seq)
}

func queryListCorrespondence(ctx context.Context, db executor, requestID string) ([]*model.CorrespondenceItem, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM correspondence
		WHERE request_id = $1
		ORDER BY ts, seq`,
		requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.CorrespondenceItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func queryMarkResolved(ctx context.Context, db executor, itemID string) error {
	res, err := db.ExecContext(ctx,
		`UPDATE correspondence SET resolved = TRUE WHERE id = $1`, itemID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func querySaveSession(ctx context.Context, db executor, sess model.Session) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO sessions (agency_id, token, issued_at, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (agency_id) DO UPDATE SET
			token = EXCLUDED.token,
			issued_at = EXCLUDED.issued_at,
			expires_at = EXCLUDED.expires_at`,
		sess.AgencyID, sess.Token, sess.IssuedAt, sess.ExpiresAt)
	return err
}

func queryGetSession(ctx context.Context, db executor, agencyID string) (model.Session, error) {
	var sess model.Session
	err := db.QueryRowContext(ctx, `
		SELECT agency_id, token, issued_at, expires_at
		FROM sessions WHERE agency_id = $1`,
		agencyID).Scan(&sess.AgencyID, &sess.Token, &sess.IssuedAt, &sess.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Session{}, store.ErrNotFound
	}
	return sess, err
}

func queryDeleteSession(ctx context.Context, db executor, agencyID string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM sessions WHERE agency_id = $1`, agencyID)
	return err
}

func querySaveVerification(ctx context.Context, db executor, v *model.VerificationResult) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO verifications (
			id, request_id, status, discrepancies, over_deliveries,
			record_count, verified_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (request_id) DO UPDATE SET
			id = EXCLUDED.id,
			status = EXCLUDED.status,
			discrepancies = EXCLUDED.discrepancies,
			over_deliveries = EXCLUDED.over_deliveries,
			record_count = EXCLUDED.record_count,
			verified_at = EXCLUDED.verified_at`,
		v.ID,
		v.RequestID,
		string(v.Status),
		jsonbValue(v.Discrepancies),
		jsonbValue(v.OverDeliveries),
		v.RecordCount,
		v.VerifiedAt,
	)
	return err
}

func queryGetVerification(ctx context.Context, db executor, requestID string) (*model.VerificationResult, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, request_id, status, discrepancies, over_deliveries,
			record_count, verified_at
		FROM verifications WHERE request_id = $1`,
		requestID)
	v, err := scanVerification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	return v, err
}

func queryRecordEvent(ctx context.Context, db executor, event *model.Event) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	return db.QueryRowContext(ctx, `
		INSERT INTO events (topic, request_id, actor, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		event.Topic,
		event.RequestID,
		nullString(event.Actor),
		jsonbBytes(event.Payload),
		event.CreatedAt,
	).Scan(&event.ID)
}

func queryGetEvents(ctx context.Context, db executor, requestID string) ([]*model.Event, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, topic, request_id, actor, payload, created_at
		FROM events WHERE request_id = $1
		ORDER BY id`,
		requestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
