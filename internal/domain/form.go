package domain

import (
	"errors"
	"strings"
	"time"
)

// FormState is the submission state of a TripForm.
// A stored form is only ever Editing or Submitting; Succeeded and Failed are
// reported on the Submission and the form returns to Editing.
type FormState string

const (
	StateEditing    FormState = "editing"
	StateSubmitting FormState = "submitting"
	StateSucceeded  FormState = "succeeded"
	StateFailed     FormState = "failed"
)

// TripForm is one user's form: the draft being edited, the last status
// message, and whether a submit is currently waiting on the backend.
type TripForm struct {
	Draft           Draft     `json:"draft"`
	Status          string    `json:"status"`
	State           FormState `json:"state"`
	SubmittingSince time.Time `json:"submitting_since"`
}

// NewTripForm returns an empty form in the Editing state.
func NewTripForm() TripForm {
	return TripForm{Draft: NewDraft(), State: StateEditing}
}

// UpdateField sets one draft field. The draft is frozen while a submit is
// waiting on the backend, so edits then are rejected with ErrSubmitInFlight.
func (f *TripForm) UpdateField(field Field, value string) error {
	if f.State == StateSubmitting {
		return ErrSubmitInFlight
	}
	f.Draft.Set(field, value)
	return nil
}

// ReleaseStale returns a form left Submitting for staleAfter or longer to
// Editing. The submit that set it is then treated as abandoned: its outcome
// will no longer be recorded.
func (f *TripForm) ReleaseStale(now time.Time, staleAfter time.Duration) {
	if f.State == StateSubmitting && now.Sub(f.SubmittingSince) >= staleAfter {
		f.State = StateEditing
		f.SubmittingSince = time.Time{}
	}
}

// SubmittedAt reports whether the form is still held by the submit that
// began at startedAt. Only that submit may record its outcome.
func (f *TripForm) SubmittedAt(startedAt time.Time) bool {
	return f.State == StateSubmitting && f.SubmittingSince.Equal(startedAt)
}

// BeginSubmit moves the form from Editing to Submitting and returns the draft
// to insert. A form already Submitting since less than staleAfter ago is
// rejected with ErrSubmitInFlight and left untouched. A draft that fails
// validation never reaches Submitting: the status message is set, the form
// stays Editing and the ErrValidation error is returned.
func (f *TripForm) BeginSubmit(now time.Time, staleAfter time.Duration) (Draft, error) {
	f.ReleaseStale(now, staleAfter)
	if f.State == StateSubmitting {
		return Draft{}, ErrSubmitInFlight
	}
	if err := f.Draft.Validate(); err != nil {
		f.State = StateEditing
		f.SubmittingSince = time.Time{}
		f.Status = ValidationMessage(err)
		return Draft{}, err
	}
	f.State = StateSubmitting
	f.SubmittingSince = now
	return f.Draft, nil
}

// Succeed records a confirmed insert: success message, draft back to defaults.
func (f *TripForm) Succeed() {
	f.Draft = NewDraft()
	f.Status = MsgTripAdded
	f.State = StateEditing
	f.SubmittingSince = time.Time{}
}

// Fail records a failed insert. The draft is kept so the user can retry.
func (f *TripForm) Fail(message string) {
	f.Status = message
	f.State = StateEditing
	f.SubmittingSince = time.Time{}
}

// ValidationMessage extracts the user-facing text from an ErrValidation error.
// e.g. "validation error: Please fill in all fields" → "Please fill in all fields"
func ValidationMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if !errors.Is(err, ErrValidation) {
		return msg
	}
	if i := strings.Index(msg, ErrValidation.Error()+": "); i >= 0 {
		return msg[i+len(ErrValidation.Error())+2:]
	}
	return msg
}

// FailureMessage is the status shown after a failed insert. Backend refusals
// carry the backend's reason; anything else gets the generic message.
func FailureMessage(err error) string {
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) && remoteErr.Message != "" {
		return MsgAddFailed + ": " + remoteErr.Message
	}
	return MsgAddFailed
}

// Outcome is the terminal state of one submit.
type Outcome = FormState

// Submission reports what a submit did: the terminal state, the status
// message now shown, the form's draft afterwards, and the created record
// when the backend returned it.
type Submission struct {
	Outcome Outcome
	Message string
	Draft   Draft
	Record  *TripRecord
}
