// Package service contains the business logic for the trip planner.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL or HTTP lives here; services depend on repo interfaces.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/honeytoast/trip-planner/internal/domain"
	"github.com/honeytoast/trip-planner/internal/repo"
)

// TripFormConfig tunes the submission workflow.
type TripFormConfig struct {
	// Table is the remote table trips are inserted into.
	Table string
	// InsertTimeout bounds a single remote insert. A form left Submitting for
	// twice this long is treated as abandoned and may be submitted again.
	InsertTimeout time.Duration
}

// TripFormService runs the trip form: field edits, validation, the remote
// insert and the resulting status message.
type TripFormService struct {
	forms repo.FormStore
	trips repo.TripRepo
	cfg   TripFormConfig
	log   *slog.Logger
	now   func() time.Time
}

// NewTripFormService constructs a TripFormService. A nil logger falls back to
// slog.Default().
func NewTripFormService(forms repo.FormStore, trips repo.TripRepo, cfg TripFormConfig, log *slog.Logger) *TripFormService {
	if log == nil {
		log = slog.Default()
	}
	if cfg.Table == "" {
		cfg.Table = "Trips"
	}
	if cfg.InsertTimeout <= 0 {
		cfg.InsertTimeout = 10 * time.Second
	}
	return &TripFormService{forms: forms, trips: trips, cfg: cfg, log: log, now: time.Now}
}

// Current returns the user's form as it stands.
func (s *TripFormService) Current(ctx context.Context, user domain.User) (domain.TripForm, error) {
	form, err := s.forms.Get(ctx, user.ID)
	if err != nil {
		return domain.TripForm{}, fmt.Errorf("service.TripFormService.Current: %w", err)
	}
	return form, nil
}

// UpdateField sets one draft field. No validation happens here. While a
// submit is running the draft is frozen and domain.ErrSubmitInFlight is
// returned with the form unchanged.
func (s *TripFormService) UpdateField(ctx context.Context, user domain.User, field domain.Field, value string) (domain.TripForm, error) {
	form, err := s.forms.Update(ctx, user.ID, func(f *domain.TripForm) error {
		f.ReleaseStale(s.now(), s.staleAfter())
		return f.UpdateField(field, value)
	})
	if err != nil {
		return domain.TripForm{}, fmt.Errorf("service.TripFormService.UpdateField: %w", err)
	}
	return form, nil
}

// Discard drops the user's form, draft and status message included.
func (s *TripFormService) Discard(ctx context.Context, user domain.User) error {
	if err := s.forms.Delete(ctx, user.ID); err != nil {
		return fmt.Errorf("service.TripFormService.Discard: %w", err)
	}
	return nil
}

// Submit validates the user's stored draft and inserts it.
//
// The returned Submission is populated whenever the form was evaluated, and
// the error tells the caller which way it went:
//   - nil: inserted, draft reset, success message set
//   - domain.ErrValidation: rejected locally, no remote call made
//   - *domain.RemoteError: the backend refused the insert
//   - domain.ErrRemoteUnavailable: the call itself failed
//   - domain.ErrSubmitInFlight: another submit for this user is running;
//     the Submission is empty
func (s *TripFormService) Submit(ctx context.Context, user domain.User) (domain.Submission, error) {
	var draft domain.Draft
	startedAt := s.now()
	form, err := s.forms.Update(ctx, user.ID, func(f *domain.TripForm) error {
		d, err := f.BeginSubmit(startedAt, s.staleAfter())
		draft = d
		return err
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return failed(form), fmt.Errorf("service.TripFormService.Submit: %w", err)
		}
		return domain.Submission{}, fmt.Errorf("service.TripFormService.Submit: %w", err)
	}

	rec, insertErr := s.insert(ctx, user, draft)

	// The outcome must be recorded even if the caller has gone away,
	// otherwise the form would stay Submitting until it goes stale. It is
	// recorded only while this submit still holds the form: a discard or a
	// stale takeover in the meantime wins.
	recorded := false
	form, err = s.forms.Update(context.WithoutCancel(ctx), user.ID, func(f *domain.TripForm) error {
		if !f.SubmittedAt(startedAt) {
			return nil
		}
		recorded = true
		complete(f, insertErr)
		return nil
	})
	if err != nil {
		return domain.Submission{}, fmt.Errorf("service.TripFormService.Submit: record outcome: %w", err)
	}
	if !recorded {
		s.log.WarnContext(ctx, "trip form changed during submit, outcome not recorded",
			"user_id", user.ID,
			"inserted", insertErr == nil,
		)
		form = domain.TripForm{Draft: draft, State: domain.StateSubmitting}
		complete(&form, insertErr)
	}

	if insertErr != nil {
		return failed(form), fmt.Errorf("service.TripFormService.Submit: %w", insertErr)
	}
	return succeeded(form, rec), nil
}

// SubmitDraft runs the same checks and insert as Submit for a draft supplied
// by the caller, without touching the stored form.
func (s *TripFormService) SubmitDraft(ctx context.Context, user domain.User, draft domain.Draft) (domain.Submission, error) {
	form := domain.NewTripForm()
	form.Draft = draft

	d, err := form.BeginSubmit(s.now(), 0)
	if err != nil {
		return failed(form), fmt.Errorf("service.TripFormService.SubmitDraft: %w", err)
	}

	rec, err := s.insert(ctx, user, d)
	if err != nil {
		form.Fail(domain.FailureMessage(err))
		return failed(form), fmt.Errorf("service.TripFormService.SubmitDraft: %w", err)
	}
	form.Succeed()
	return succeeded(form, rec), nil
}

// complete moves a submitting form to its outcome.
func complete(f *domain.TripForm, insertErr error) {
	if insertErr != nil {
		f.Fail(domain.FailureMessage(insertErr))
		return
	}
	f.Succeed()
}

// staleAfter is how long a submit may hold a form before another request can
// take it over. Two insert timeouts leave room for the completion write.
func (s *TripFormService) staleAfter() time.Duration {
	return 2 * s.cfg.InsertTimeout
}

// insert performs exactly one remote insert for draft and classifies the
// result. Both failure kinds are logged here. The user rides on the context so
// a backend that enforces its own access rules sees the caller.
func (s *TripFormService) insert(ctx context.Context, user domain.User, draft domain.Draft) (*domain.TripRecord, error) {
	ctx, cancel := context.WithTimeout(domain.WithUser(ctx, user), s.cfg.InsertTimeout)
	defer cancel()

	res, err := s.trips.Insert(ctx, s.cfg.Table, []domain.TripRow{draft.Row(user.ID)})
	if err != nil {
		s.log.ErrorContext(ctx, "trip insert failed",
			"table", s.cfg.Table,
			"user_id", user.ID,
			"error", err,
		)
		return nil, fmt.Errorf("%w: %w", domain.ErrRemoteUnavailable, err)
	}
	if res.Err != nil {
		s.log.ErrorContext(ctx, "error adding new trip",
			"table", s.cfg.Table,
			"user_id", user.ID,
			"code", res.Err.Code,
			"error", res.Err.Message,
			"details", res.Err.Details,
		)
		return nil, res.Err
	}
	if len(res.Rows) == 0 {
		return nil, nil
	}
	rec := res.Rows[0]
	return &rec, nil
}

func succeeded(form domain.TripForm, rec *domain.TripRecord) domain.Submission {
	return domain.Submission{
		Outcome: domain.StateSucceeded,
		Message: form.Status,
		Draft:   form.Draft,
		Record:  rec,
	}
}

func failed(form domain.TripForm) domain.Submission {
	return domain.Submission{
		Outcome: domain.StateFailed,
		Message: form.Status,
		Draft:   form.Draft,
	}
}
