package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/honeytoast/trip-planner/internal/domain"
)

// formResponse is the wire view of the caller's stored form.
type formResponse struct {
	Draft  draftBody        `json:"draft"`
	Status string           `json:"status"`
	State  domain.FormState `json:"state"`
}

// fieldUpdateRequest sets one draft field from its raw input value.
type fieldUpdateRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

func formToResponse(f domain.TripForm) formResponse {
	return formResponse{Draft: draftToBody(f.Draft), Status: f.Status, State: f.State}
}

// GetDraft handles GET /trips/draft.
func (s *Server) GetDraft(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	form, err := s.forms.Current(r.Context(), user)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, formToResponse(form))
}

// UpdateDraft handles PATCH /trips/draft. Field values are not validated here;
// that happens on submit. The draft cannot change while a submit is running.
func (s *Server) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}

	var req fieldUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", "invalid request body")
		return
	}
	field, err := domain.ParseField(req.Field)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "validation_error", err.Error())
		return
	}

	form, err := s.forms.UpdateField(r.Context(), user, field, req.Value)
	switch {
	case errors.Is(err, domain.ErrSubmitInFlight):
		writeError(w, http.StatusConflict, "submit_in_flight", domain.MsgSubmitInFlight)
		return
	case err != nil:
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, formToResponse(form))
}

// DiscardDraft handles DELETE /trips/draft.
func (s *Server) DiscardDraft(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := s.forms.Discard(r.Context(), user); err != nil {
		s.internalError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubmitDraft handles POST /trips/draft/submit.
func (s *Server) SubmitDraft(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	sub, err := s.forms.Submit(r.Context(), user)
	if err != nil {
		if errors.Is(err, domain.ErrSubmitInFlight) {
			s.log.WarnContext(r.Context(), "duplicate trip submit rejected", "user_id", user.ID)
		}
		s.writeSubmitError(w, r, sub, err)
		return
	}
	writeJSON(w, http.StatusCreated, submissionToResponse(sub))
}
