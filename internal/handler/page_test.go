package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeytoast/trip-planner/internal/domain"
	"github.com/honeytoast/trip-planner/internal/repo"
	"github.com/honeytoast/trip-planner/internal/service"
)

// stubTripRepo answers every insert with res and err.
type stubTripRepo struct {
	calls int
	res   domain.InsertResult
	err   error
}

func (s *stubTripRepo) Insert(_ context.Context, _ string, _ []domain.TripRow) (domain.InsertResult, error) {
	s.calls++
	return s.res, s.err
}

// newPageHandler wires the real service over an in-memory form store so the
// page round trip (field writes, submit, re-read) runs end to end.
func newPageHandler(trips repo.TripRepo) http.Handler {
	svc := service.NewTripFormService(repo.NewMemoryFormStore(), trips, service.TripFormConfig{}, nil)
	return newHTTPHandler(svc)
}

func postForm(h http.Handler, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/app/trips/new", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func validForm() url.Values {
	return url.Values{
		"origin":          {"NYC"},
		"destination":     {"LON"},
		"start_date":      {"2024-01-01"},
		"end_date":        {"2024-01-10"},
		"traveller_count": {"2"},
	}
}

func TestNewTripPage_RendersDefaultsAndSidebar(t *testing.T) {
	h := newPageHandler(&stubTripRepo{})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/app/trips/new", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	html := w.Body.String()
	assert.Contains(t, html, `name="start_date" value="2020-01-01"`)
	assert.Contains(t, html, `name="end_date" value="2020-01-01"`)
	assert.Contains(t, html, `name="traveller_count" min="1" value="1"`)
	assert.Contains(t, html, `href="/accommodation"`)
	assert.Contains(t, html, `data-icon="PiAirplaneTakeoffLight"`)
	assert.NotContains(t, html, `class="status"`)
}

func TestSubmitTripPage_Success(t *testing.T) {
	trips := &stubTripRepo{}
	h := newPageHandler(trips)

	w := postForm(h, validForm())

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, trips.calls)
	html := w.Body.String()
	assert.Contains(t, html, "Trip added successfully!")
	assert.Contains(t, html, `name="origin" value=""`, "draft is reset after success")
	assert.Contains(t, html, `name="start_date" value="2020-01-01"`)
}

func TestSubmitTripPage_ValidationKeepsInput(t *testing.T) {
	trips := &stubTripRepo{}
	h := newPageHandler(trips)
	values := validForm()
	values.Set("start_date", "2024-05-10")
	values.Set("end_date", "2024-05-01")

	w := postForm(h, values)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Zero(t, trips.calls)
	html := w.Body.String()
	assert.Contains(t, html, "End date must be after start date")
	assert.Contains(t, html, `name="origin" value="NYC"`)
	assert.Contains(t, html, `name="end_date" value="2024-05-01"`)
}

func TestSubmitTripPage_RemoteError(t *testing.T) {
	trips := &stubTripRepo{res: domain.InsertResult{Err: &domain.RemoteError{Code: "42501", Message: "permission denied"}}}
	h := newPageHandler(trips)

	w := postForm(h, validForm())

	require.Equal(t, http.StatusBadGateway, w.Code)
	html := w.Body.String()
	assert.Contains(t, html, "Failed to add trip: permission denied")
	assert.Contains(t, html, `name="destination" value="LON"`)
}

func TestSubmitTripPage_InFlightWritesNothing(t *testing.T) {
	stored := domain.NewTripForm()
	stored.Draft.Origin = "NYC"
	stored.State = domain.StateSubmitting
	var updates int
	svc := &mockTripFormServicer{
		current: func(_ context.Context, _ domain.User) (domain.TripForm, error) {
			return stored, nil
		},
		updateField: func(_ context.Context, _ domain.User, _ domain.Field, _ string) (domain.TripForm, error) {
			updates++
			return stored, fmt.Errorf("service.TripFormService.UpdateField: %w", domain.ErrSubmitInFlight)
		},
		submit: func(_ context.Context, _ domain.User) (domain.Submission, error) {
			t.Fatal("submit must not run while another is in flight")
			return domain.Submission{}, nil
		},
	}
	form := validForm()
	form.Set("origin", "PARIS")

	w := postForm(newHTTPHandler(svc), form)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 1, updates, "field writes stop at the first rejection")
	html := w.Body.String()
	assert.Contains(t, html, domain.MsgSubmitInFlight)
	assert.Contains(t, html, `name="origin" value="NYC"`)
}

func TestSubmitTripPage_TooManyTravellers(t *testing.T) {
	trips := &stubTripRepo{}
	h := newPageHandler(trips)
	form := validForm()
	form.Set("traveller_count", "3000000000")

	w := postForm(h, form)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 0, trips.calls)
	assert.Contains(t, w.Body.String(), domain.MsgTooManyTravellers)
}

func TestSubmitTripPage_Unavailable(t *testing.T) {
	trips := &stubTripRepo{err: fmt.Errorf("dial tcp: connection refused")}
	h := newPageHandler(trips)

	w := postForm(h, validForm())

	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to add trip<")
}

func TestSubmitTripPage_EscapesInput(t *testing.T) {
	h := newPageHandler(&stubTripRepo{})
	values := validForm()
	values.Set("destination", "")
	values.Set("origin", `<script>alert(1)</script>`)

	w := postForm(h, values)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.NotContains(t, w.Body.String(), "<script>")
	assert.Contains(t, w.Body.String(), "Please fill in all fields")
}
