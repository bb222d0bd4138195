// Package repo contains the data access for the trip planner.
// Each resource has its own file with an interface and its implementations.
// No business logic lives here, only SQL, HTTP calls and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/honeytoast/trip-planner/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test.
type db interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// TripRepo is the remote data client for trip records.
// The service layer depends on this interface; cmd/api picks the Postgres or
// PostgREST implementation.
type TripRepo interface {
	// Insert adds rows to the named table and returns what the backend said.
	// A refusal by the backend (constraint, permission, unknown column) comes
	// back as InsertResult.Err with a nil error. A non-nil error means the
	// call itself failed and the outcome is unknown.
	Insert(ctx context.Context, table string, rows []domain.TripRow) (domain.InsertResult, error)
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripColumns = "id, start, destination, start_date, end_date, pax, user_id, created_at"

// Insert writes all rows in a single statement, so either every row is
// inserted or none is.
func (r *pgTripRepo) Insert(ctx context.Context, table string, rows []domain.TripRow) (domain.InsertResult, error) {
	if len(rows) == 0 {
		return domain.InsertResult{}, fmt.Errorf("repo.TripRepo.Insert: no rows")
	}

	var q strings.Builder
	args := make([]any, 0, len(rows)*6)
	fmt.Fprintf(&q, "INSERT INTO %s (start, destination, start_date, end_date, pax, user_id) VALUES ",
		pgx.Identifier{table}.Sanitize())
	for i, row := range rows {
		if i > 0 {
			q.WriteString(", ")
		}
		n := len(args)
		fmt.Fprintf(&q, "($%d, $%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5, n+6)
		args = append(args, row.Start, row.Destination, row.StartDate, row.EndDate, row.Pax, row.UserID)
	}
	q.WriteString(" RETURNING " + tripColumns)

	out, err := r.query(ctx, q.String(), args)
	if err != nil {
		if remoteErr := asRemoteError(err); remoteErr != nil {
			return domain.InsertResult{Err: remoteErr}, nil
		}
		return domain.InsertResult{}, fmt.Errorf("repo.TripRepo.Insert: %w", err)
	}
	return domain.InsertResult{Rows: out}, nil
}

func (r *pgTripRepo) query(ctx context.Context, sql string, args []any) ([]domain.TripRecord, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.TripRecord
	for rows.Next() {
		rec, err := scanTripRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// asRemoteError converts a server-side Postgres error into the backend's
// error value. Connection and protocol errors return nil.
func asRemoteError(err error) *domain.RemoteError {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	return &domain.RemoteError{
		Code:    pgErr.Code,
		Message: pgErr.Message,
		Details: pgErr.Detail,
		Hint:    pgErr.Hint,
	}
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTripRecord maps a single database row into a domain.TripRecord.
func scanTripRecord(s scanner) (domain.TripRecord, error) {
	var (
		rec       domain.TripRecord
		id        pgtype.UUID
		startDate pgtype.Date
		endDate   pgtype.Date
	)

	err := s.Scan(&id, &rec.Start, &rec.Destination, &startDate, &endDate, &rec.Pax, &rec.UserID, &rec.CreatedAt)
	if err != nil {
		return domain.TripRecord{}, err
	}

	rec.ID = uuid.UUID(id.Bytes)
	rec.StartDate = startDate.Time
	rec.EndDate = endDate.Time
	return rec, nil
}
