package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/honeytoast/trip-planner/internal/middleware"
)

const appOrigin = "http://localhost:5173"

var trivialHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

// TestCORSHandler_Preflight covers every method the trip API serves. The
// browser sends the access-token cookie, so each must allow credentials.
func TestCORSHandler_Preflight(t *testing.T) {
	cases := []struct {
		method, path string
	}{
		{http.MethodGet, "/trips/draft"},
		{http.MethodPatch, "/trips/draft"},
		{http.MethodDelete, "/trips/draft"},
		{http.MethodPost, "/trips/draft/submit"},
	}
	h := middleware.NewCORSHandler([]string{appOrigin})(trivialHandler)

	for _, tc := range cases {
		t.Run(tc.method, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodOptions, tc.path, nil)
			req.Header.Set("Origin", appOrigin)
			req.Header.Set("Access-Control-Request-Method", tc.method)
			// Request header names arrive lowercased, as browsers send them.
			req.Header.Set("Access-Control-Request-Headers", "authorization,content-type")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.True(t, rec.Code == http.StatusNoContent || rec.Code == http.StatusOK,
				"expected 2xx for OPTIONS preflight, got %d", rec.Code)
			assert.Equal(t, appOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tc.method, rec.Header().Get("Access-Control-Allow-Methods"))
			assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		})
	}
}

func TestCORSHandler_ActualRequest(t *testing.T) {
	cases := map[string]struct {
		origin    string
		wantAllow string
		wantCreds string
	}{
		"allowed origin":    {appOrigin, appOrigin, "true"},
		"disallowed origin": {"http://evil.example.com", "", ""},
	}
	h := middleware.NewCORSHandler([]string{appOrigin})(trivialHandler)

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/trips/draft", nil)
			req.Header.Set("Origin", tc.origin)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			// The browser blocks a disallowed response; the server still answers.
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tc.wantAllow, rec.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tc.wantCreds, rec.Header().Get("Access-Control-Allow-Credentials"))
			if tc.wantAllow != "" {
				assert.Equal(t, "X-Request-Id", rec.Header().Get("Access-Control-Expose-Headers"))
			}
		})
	}
}
