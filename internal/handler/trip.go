package handler

import (
	"encoding/json"
	"net/http"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/honeytoast/trip-planner/internal/domain"
)

// draftBody is the wire form of a Draft. Dates travel as calendar dates; a
// missing date decodes to nil and is reported by validation, not here.
type draftBody struct {
	Origin         string              `json:"origin"`
	Destination    string              `json:"destination"`
	StartDate      *openapi_types.Date `json:"start_date"`
	EndDate        *openapi_types.Date `json:"end_date"`
	TravellerCount int                 `json:"traveller_count"`
}

type tripResponse struct {
	ID          openapi_types.UUID `json:"id"`
	Start       string             `json:"start"`
	Destination string             `json:"destination"`
	StartDate   openapi_types.Date `json:"start_date"`
	EndDate     openapi_types.Date `json:"end_date"`
	Pax         int                `json:"pax"`
	UserID      string             `json:"user_id"`
	CreatedAt   time.Time          `json:"created_at"`
}

type submissionResponse struct {
	Outcome domain.Outcome `json:"outcome"`
	Message string         `json:"message"`
	Draft   draftBody      `json:"draft"`
	Trip    *tripResponse  `json:"trip,omitempty"`
}

// CreateTrip handles POST /trips: the draft comes in the body and the stored
// form is left alone.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var body draftBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "invalid request body")
		return
	}

	sub, err := s.forms.SubmitDraft(r.Context(), user, bodyToDraft(body))
	if err != nil {
		s.writeSubmitError(w, r, sub, err)
		return
	}
	writeJSON(w, http.StatusCreated, submissionToResponse(sub))
}

func bodyToDraft(b draftBody) domain.Draft {
	d := domain.Draft{
		Origin:         b.Origin,
		Destination:    b.Destination,
		TravellerCount: b.TravellerCount,
	}
	if b.StartDate != nil {
		d.StartDate = b.StartDate.Time
	}
	if b.EndDate != nil {
		d.EndDate = b.EndDate.Time
	}
	return d
}

func draftToBody(d domain.Draft) draftBody {
	b := draftBody{
		Origin:         d.Origin,
		Destination:    d.Destination,
		TravellerCount: d.TravellerCount,
	}
	if !d.StartDate.IsZero() {
		b.StartDate = &openapi_types.Date{Time: d.StartDate}
	}
	if !d.EndDate.IsZero() {
		b.EndDate = &openapi_types.Date{Time: d.EndDate}
	}
	return b
}

func recordToResponse(rec domain.TripRecord) tripResponse {
	return tripResponse{
		ID:          rec.ID,
		Start:       rec.Start,
		Destination: rec.Destination,
		StartDate:   openapi_types.Date{Time: rec.StartDate},
		EndDate:     openapi_types.Date{Time: rec.EndDate},
		Pax:         rec.Pax,
		UserID:      rec.UserID,
		CreatedAt:   rec.CreatedAt,
	}
}

func submissionToResponse(sub domain.Submission) submissionResponse {
	resp := submissionResponse{
		Outcome: sub.Outcome,
		Message: sub.Message,
		Draft:   draftToBody(sub.Draft),
	}
	if sub.Record != nil {
		t := recordToResponse(*sub.Record)
		resp.Trip = &t
	}
	return resp
}
