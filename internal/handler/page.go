package handler

import (
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/honeytoast/trip-planner/internal/domain"
	"github.com/honeytoast/trip-planner/internal/nav"
)

//go:embed templates/*.html
var templateFS embed.FS

var tripFormPage = template.Must(template.ParseFS(templateFS, "templates/trip_form.html"))

// tripFormView feeds templates/trip_form.html. Field values are the raw
// input strings so a rejected draft is shown back exactly as stored.
type tripFormView struct {
	Sidebar        []nav.Entry
	Origin         string
	Destination    string
	StartDate      string
	EndDate        string
	TravellerCount string
	Status         string
	State          domain.FormState
	Submitting     bool
}

func newTripFormView(sidebar []nav.Entry, form domain.TripForm) tripFormView {
	return tripFormView{
		Sidebar:        sidebar,
		Origin:         form.Draft.Value(domain.FieldOrigin),
		Destination:    form.Draft.Value(domain.FieldDestination),
		StartDate:      form.Draft.Value(domain.FieldStartDate),
		EndDate:        form.Draft.Value(domain.FieldEndDate),
		TravellerCount: form.Draft.Value(domain.FieldTravellerCount),
		Status:         form.Status,
		State:          form.State,
		Submitting:     form.State == domain.StateSubmitting,
	}
}

// NewTripPage handles GET /app/trips/new.
func (s *Server) NewTripPage(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	form, err := s.forms.Current(r.Context(), user)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.renderTripForm(w, r, http.StatusOK, form)
}

// SubmitTripPage handles POST /app/trips/new. Posted fields are written to
// the stored draft one by one, as the page's inputs would on change, then the
// draft is submitted and the page is rendered with the resulting status. If a
// submit is already running nothing is written and the page answers 409.
func (s *Server) SubmitTripPage(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid form body")
		return
	}

	for _, field := range domain.Fields {
		if _, posted := r.PostForm[string(field)]; !posted {
			continue
		}
		_, err := s.forms.UpdateField(r.Context(), user, field, r.PostForm.Get(string(field)))
		if errors.Is(err, domain.ErrSubmitInFlight) {
			s.renderInFlight(w, r, user)
			return
		}
		if err != nil {
			s.internalError(w, r, err)
			return
		}
	}

	_, err := s.forms.Submit(r.Context(), user)
	if errors.Is(err, domain.ErrSubmitInFlight) {
		s.renderInFlight(w, r, user)
		return
	}
	status, _ := submitStatus(err)
	if status == http.StatusInternalServerError {
		s.internalError(w, r, err)
		return
	}
	if status == http.StatusCreated {
		status = http.StatusOK
	}

	form, cerr := s.forms.Current(r.Context(), user)
	if cerr != nil {
		s.internalError(w, r, cerr)
		return
	}
	s.renderTripForm(w, r, status, form)
}

// renderInFlight shows the stored form, untouched, with a note that the
// earlier submit is still running.
func (s *Server) renderInFlight(w http.ResponseWriter, r *http.Request, user domain.User) {
	form, err := s.forms.Current(r.Context(), user)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	form.Status = domain.MsgSubmitInFlight
	s.renderTripForm(w, r, http.StatusConflict, form)
}

func (s *Server) renderTripForm(w http.ResponseWriter, r *http.Request, status int, form domain.TripForm) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tripFormPage.Execute(w, newTripFormView(s.sidebar, form)); err != nil {
		s.log.ErrorContext(r.Context(), "render trip form", "error", err)
	}
}
