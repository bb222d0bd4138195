package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/honeytoast/trip-planner/internal/domain"
)

// formUpdateRetries bounds how often Update re-runs after a concurrent write
// to the same key aborted its transaction.
const formUpdateRetries = 10

// redisFormStore keeps each form as a JSON value under "tripform:{userID}".
// Every write refreshes the TTL, so abandoned drafts expire on their own.
type redisFormStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisFormStore constructs a FormStore backed by client.
func NewRedisFormStore(client *redis.Client, ttl time.Duration) FormStore {
	return &redisFormStore{client: client, ttl: ttl}
}

func formKey(userID string) string {
	return fmt.Sprintf("tripform:%s", userID)
}

func (s *redisFormStore) Get(ctx context.Context, userID string) (domain.TripForm, error) {
	form, err := readForm(ctx, s.client, formKey(userID))
	if err != nil {
		return domain.TripForm{}, fmt.Errorf("repo.RedisFormStore.Get: %w", err)
	}
	return form, nil
}

// Update runs fn inside WATCH/MULTI so two requests for the same user cannot
// both see an Editing form and both start a submit.
func (s *redisFormStore) Update(ctx context.Context, userID string, fn func(*domain.TripForm) error) (domain.TripForm, error) {
	key := formKey(userID)

	var (
		stored domain.TripForm
		fnErr  error
	)
	txf := func(tx *redis.Tx) error {
		form, err := readForm(ctx, tx, key)
		if err != nil {
			return err
		}
		fnErr = fn(&form)

		data, err := json.Marshal(form)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		if err == nil {
			stored = form
		}
		return err
	}

	for range formUpdateRetries {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return domain.TripForm{}, fmt.Errorf("repo.RedisFormStore.Update: %w", err)
		}
		return stored, fnErr
	}
	return domain.TripForm{}, fmt.Errorf("repo.RedisFormStore.Update: %w", redis.TxFailedErr)
}

func (s *redisFormStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, formKey(userID)).Err(); err != nil {
		return fmt.Errorf("repo.RedisFormStore.Delete: %w", err)
	}
	return nil
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// readForm loads and decodes one form. A missing key yields a fresh form.
func readForm(ctx context.Context, c getter, key string) (domain.TripForm, error) {
	raw, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.NewTripForm(), nil
	}
	if err != nil {
		return domain.TripForm{}, err
	}

	var form domain.TripForm
	if err := json.Unmarshal(raw, &form); err != nil {
		return domain.TripForm{}, fmt.Errorf("decode %s: %w", key, err)
	}
	return form, nil
}
