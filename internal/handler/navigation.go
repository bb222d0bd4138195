package handler

import (
	"net/http"

	"github.com/honeytoast/trip-planner/internal/nav"
)

// ListNavigation handles GET /navigation with the sidebar entries in display order.
func (s *Server) ListNavigation(w http.ResponseWriter, _ *http.Request) {
	entries := s.sidebar
	if entries == nil {
		entries = []nav.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
