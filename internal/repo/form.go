package repo

import (
	"context"
	"sync"

	"github.com/honeytoast/trip-planner/internal/domain"
)

// FormStore holds each user's trip form between requests.
// A user with no stored form has a fresh domain.NewTripForm().
type FormStore interface {
	// Get returns the user's form.
	Get(ctx context.Context, userID string) (domain.TripForm, error)

	// Update applies fn to the user's form atomically with respect to other
	// Update calls for the same user, stores the result and returns it.
	// The form is stored even when fn returns an error; that error is then
	// returned alongside the stored form.
	Update(ctx context.Context, userID string, fn func(*domain.TripForm) error) (domain.TripForm, error)

	// Delete drops the user's form. Deleting a missing form is not an error.
	Delete(ctx context.Context, userID string) error
}

// memoryFormStore keeps forms in process memory. Forms are lost on restart.
type memoryFormStore struct {
	mu    sync.Mutex
	forms map[string]domain.TripForm
}

// NewMemoryFormStore constructs an empty in-process FormStore.
func NewMemoryFormStore() FormStore {
	return &memoryFormStore{forms: make(map[string]domain.TripForm)}
}

func (s *memoryFormStore) Get(_ context.Context, userID string) (domain.TripForm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(userID), nil
}

func (s *memoryFormStore) Update(_ context.Context, userID string, fn func(*domain.TripForm) error) (domain.TripForm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	form := s.load(userID)
	err := fn(&form)
	s.forms[userID] = form
	return form, err
}

func (s *memoryFormStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.forms, userID)
	return nil
}

func (s *memoryFormStore) load(userID string) domain.TripForm {
	if form, ok := s.forms[userID]; ok {
		return form
	}
	return domain.NewTripForm()
}
