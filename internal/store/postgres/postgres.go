// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/foiaworks/foiad/internal/model"
	"github.com/foiaworks/foiad/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) CreateRequest(ctx context.Context, r *model.Request) error {
	return queryCreateRequest(ctx, s.db, r)
}

func (s *PostgresStore) GetRequest(ctx context.Context, id string) (*model.Request, error) {
	return queryGetRequest(ctx, s.db, id)
}

func (s *PostgresStore) ListRequests(ctx context.Context, filter model.RequestFilter) ([]*model.Request, error) {
	return queryListRequests(ctx, s.db, filter)
}

func (s *PostgresStore) UpdateRequest(ctx context.Context, r *model.Request) error {
	return queryUpdateRequest(ctx, s.db, r)
}

func (s *PostgresStore) FindActiveByFingerprint(ctx context.Context, agencyID, fingerprint string) (*model.Request, error) {
	return queryFindActiveByFingerprint(ctx, s.db, agencyID, fingerprint)
}

func (s *PostgresStore) DueRequests(ctx context.Context, now time.Time) ([]*model.Request, error) {
	return queryDueRequests(ctx, s.db, now)
}

func (s *PostgresStore) AddCorrespondence(ctx context.Context, item *model.CorrespondenceItem) error {
	return queryAddCorrespondence(ctx, s.db, item)
}

func (s *PostgresStore) ListCorrespondence(ctx context.Context, requestID string) ([]*model.CorrespondenceItem, error) {
	return queryListCorrespondence(ctx, s.db, requestID)
}

func (s *PostgresStore) MarkResolved(ctx context.Context, itemID string) error {
	return queryMarkResolved(ctx, s.db, itemID)
}

func (s *PostgresStore) SaveSession(ctx context.Context, sess model.Session) error {
	return querySaveSession(ctx, s.db, sess)
}

func (s *PostgresStore) GetSession(ctx context.Context, agencyID string) (model.Session, error) {
	return queryGetSession(ctx, s.db, agencyID)
}

func (s *PostgresStore) DeleteSession(ctx context.Context, agencyID string) error {
	return queryDeleteSession(ctx, s.db, agencyID)
}

func (s *PostgresStore) SaveVerification(ctx context.Context, v *model.VerificationResult) error {
	return querySaveVerification(ctx, s.db, v)
}

func (s *PostgresStore) GetVerification(ctx context.Context, requestID string) (*model.VerificationResult, error) {
	return queryGetVerification(ctx, s.db, requestID)
}

func (s *PostgresStore) RecordEvent(ctx context.Context, event *model.Event) error {
	return queryRecordEvent(ctx, s.db, event)
}

func (s *PostgresStore) GetEvents(ctx context.Context, requestID string) ([]*model.Event, error) {
	return queryGetEvents(ctx, s.db, requestID)
}
