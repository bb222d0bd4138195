// Package handler implements the HTTP handlers for the trip planner API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, draft.go, page.go, etc.) but all share the same Server
// struct so they can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/honeytoast/trip-planner/internal/domain"
	"github.com/honeytoast/trip-planner/internal/nav"
)

// TripFormServicer defines the business operations the form handlers depend on.
// Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching a backend or form store.
type TripFormServicer interface {
	Current(ctx context.Context, user domain.User) (domain.TripForm, error)
	UpdateField(ctx context.Context, user domain.User, field domain.Field, value string) (domain.TripForm, error)
	Discard(ctx context.Context, user domain.User) error
	Submit(ctx context.Context, user domain.User) (domain.Submission, error)
	SubmitDraft(ctx context.Context, user domain.User, draft domain.Draft) (domain.Submission, error)
}

// Server holds the dependencies shared by all handlers.
// Wire it in main.go via Routes.
type Server struct {
	forms   TripFormServicer
	sidebar []nav.Entry
	log     *slog.Logger
}

// NewServer constructs the Server with all its dependencies.
// A nil logger falls back to slog.Default().
func NewServer(forms TripFormServicer, sidebar []nav.Entry, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{forms: forms, sidebar: sidebar, log: log}
}

// NewHealthHandler returns a Server for health-check-only use.
func NewHealthHandler() *Server {
	return NewServer(nil, nil, nil)
}

// Routes returns the API router. Public routes are served as is; everything
// that needs a user goes through auth, which must put a domain.User in the
// request context.
func (s *Server) Routes(auth func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)
	r.Get("/navigation", s.ListNavigation)

	r.Group(func(r chi.Router) {
		r.Use(auth)

		r.Route("/trips", func(r chi.Router) {
			r.Post("/", s.CreateTrip)
			r.Get("/draft", s.GetDraft)
			r.Patch("/draft", s.UpdateDraft)
			r.Delete("/draft", s.DiscardDraft)
			r.Post("/draft/submit", s.SubmitDraft)
		})

		r.Get("/app/trips/new", s.NewTripPage)
		r.Post("/app/trips/new", s.SubmitTripPage)
	})

	return r
}

// currentUser returns the identity placed in the context by the auth
// middleware. Routes are only reachable through auth, so a missing user is a
// wiring bug and is answered with 401 rather than a panic.
func currentUser(w http.ResponseWriter, r *http.Request) (domain.User, bool) {
	u, ok := domain.UserFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
	}
	return u, ok
}
