package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Status messages shown to the user after a submit.
const (
	MsgFillAllFields     = "Please fill in all fields"
	MsgEndBeforeStart    = "End date must be after start date"
	MsgTripAdded         = "Trip added successfully!"
	MsgAddFailed         = "Failed to add trip"
	MsgSubmitInFlight    = "Your trip is still being added, please wait"
	MsgTooManyTravellers = "Traveller count is too large"
)

// MaxTravellerCount is the largest traveller count the Trips table can hold.
const MaxTravellerCount = math.MaxInt32

// DefaultTripDate is the sentinel both dates start from and reset to.
var DefaultTripDate = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// Field names a single editable attribute of a Draft.
type Field string

const (
	FieldOrigin         Field = "origin"
	FieldDestination    Field = "destination"
	FieldStartDate      Field = "start_date"
	FieldEndDate        Field = "end_date"
	FieldTravellerCount Field = "traveller_count"
)

// Fields lists every draft field in form order.
var Fields = []Field{FieldOrigin, FieldDestination, FieldStartDate, FieldEndDate, FieldTravellerCount}

// ParseField maps a wire name to a Field.
func ParseField(name string) (Field, error) {
	for _, f := range Fields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// Draft is the not-yet-persisted trip input collected by the form.
type Draft struct {
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	TravellerCount int       `json:"traveller_count"`
}

// NewDraft returns a Draft holding the form defaults.
func NewDraft() Draft {
	return Draft{
		StartDate:      DefaultTripDate,
		EndDate:        DefaultTripDate,
		TravellerCount: 1,
	}
}

// Set assigns one field from its raw input value. It never fails: a date that
// does not parse becomes the zero time and a non-numeric traveller count
// becomes 0, both of which Validate reports as a missing field.
func (d *Draft) Set(field Field, value string) {
	switch field {
	case FieldOrigin:
		d.Origin = value
	case FieldDestination:
		d.Destination = value
	case FieldStartDate:
		d.StartDate = parseDate(value)
	case FieldEndDate:
		d.EndDate = parseDate(value)
	case FieldTravellerCount:
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			n = 0
		}
		d.TravellerCount = n
	}
}

// Value returns the raw input representation of one field, the inverse of Set.
func (d Draft) Value(field Field) string {
	switch field {
	case FieldOrigin:
		return d.Origin
	case FieldDestination:
		return d.Destination
	case FieldStartDate:
		return formatDate(d.StartDate)
	case FieldEndDate:
		return formatDate(d.EndDate)
	case FieldTravellerCount:
		return strconv.Itoa(d.TravellerCount)
	}
	return ""
}

// Validate runs the pre-submission checks in order and returns the first
// failure wrapped in ErrValidation. The wrapped text is the user-facing message.
//   - origin, destination, both dates and a traveller count of at least 1 are required
//   - the end date must not be before the start date (same-day trips are fine)
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Origin) == "" ||
		strings.TrimSpace(d.Destination) == "" ||
		d.TravellerCount < 1 ||
		d.StartDate.IsZero() || d.EndDate.IsZero() {
		return fmt.Errorf("%w: %s", ErrValidation, MsgFillAllFields)
	}
	if d.TravellerCount > MaxTravellerCount {
		return fmt.Errorf("%w: %s", ErrValidation, MsgTooManyTravellers)
	}
	if d.EndDate.Before(d.StartDate) {
		return fmt.Errorf("%w: %s", ErrValidation, MsgEndBeforeStart)
	}
	return nil
}

// Row maps the draft onto the remote table's columns for the given owner.
func (d Draft) Row(userID string) TripRow {
	return TripRow{
		Start:       d.Origin,
		Destination: d.Destination,
		StartDate:   d.StartDate,
		EndDate:     d.EndDate,
		Pax:         d.TravellerCount,
		UserID:      userID,
	}
}

func parseDate(s string) time.Time {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
