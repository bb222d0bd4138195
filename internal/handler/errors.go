package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/honeytoast/trip-planner/internal/domain"
)

// errorDetail and errorResponse form the API's error envelope:
// {"error":{"code":"...","message":"..."}}.
type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorDetail `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: errorDetail{Code: code, Message: message}})
}

// submitStatus maps a submit error to its HTTP status and error code.
//
//	domain.ErrValidation        → 422 validation_error
//	*domain.RemoteError         → 502 remote_error
//	domain.ErrRemoteUnavailable → 502 remote_unavailable
//	domain.ErrSubmitInFlight    → 409 submit_in_flight
//	anything else               → 500 internal_error
func submitStatus(err error) (int, string) {
	var remoteErr *domain.RemoteError
	switch {
	case err == nil:
		return http.StatusCreated, ""
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, "validation_error"
	case errors.As(err, &remoteErr):
		return http.StatusBadGateway, "remote_error"
	case errors.Is(err, domain.ErrRemoteUnavailable):
		return http.StatusBadGateway, "remote_unavailable"
	case errors.Is(err, domain.ErrSubmitInFlight):
		return http.StatusConflict, "submit_in_flight"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeSubmitError answers a failed submit. The message is the form's status
// message where there is one, so API clients show the same text as the page.
func (s *Server) writeSubmitError(w http.ResponseWriter, r *http.Request, sub domain.Submission, err error) {
	status, code := submitStatus(err)
	msg := sub.Message
	switch {
	case status == http.StatusInternalServerError:
		s.internalError(w, r, err)
		return
	case status == http.StatusConflict:
		msg = domain.MsgSubmitInFlight
	case msg == "":
		msg = domain.FailureMessage(err)
	}
	writeError(w, status, code, msg)
}

// internalError logs err and answers with a generic 500 body.
func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.log.ErrorContext(r.Context(), "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
}
