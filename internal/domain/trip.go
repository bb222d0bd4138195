// Package domain contains the core data types for the trip planner.
// This package has zero external dependencies beyond google/uuid and is
// imported by every other internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar-date wire format used for start_date/end_date.
const DateLayout = "2006-01-02"

// TripRow is the shape inserted into the remote "Trips" table.
// Field names follow the table's columns, not the form's field names:
// the draft's origin is stored as "start" and the traveller count as "pax".
type TripRow struct {
	Start       string    `json:"start"`
	Destination string    `json:"destination"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Pax         int       `json:"pax"`
	UserID      string    `json:"user_id"`
}

// TripRecord is a persisted trip as returned by the backend after insert.
// The backend owns it; this code never updates or deletes one.
type TripRecord struct {
	ID          uuid.UUID `json:"id"`
	Start       string    `json:"start"`
	Destination string    `json:"destination"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Pax         int       `json:"pax"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// InsertResult is the outcome of an insert the backend answered.
// Exactly one of Rows or Err is meaningful: when Err is non-nil the backend
// refused the insert and Rows is empty. Rows may be empty on success when the
// backend does not return inserted rows (e.g. row-level security hides them).
type InsertResult struct {
	Rows []TripRecord
	Err  *RemoteError
}
