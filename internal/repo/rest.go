package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/honeytoast/trip-planner/internal/domain"
)

// restTripRepo is the PostgREST (Supabase) implementation of TripRepo.
type restTripRepo struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewRESTTripRepo constructs a TripRepo that inserts through the PostgREST
// endpoint at baseURL + "/rest/v1/{table}". apiKey is the project's anon key;
// the caller's access token, when present on the context user, is sent as the
// bearer so the table's row-level security sees the real user.
func NewRESTTripRepo(baseURL, apiKey string, client *http.Client) TripRepo {
	if client == nil {
		client = http.DefaultClient
	}
	return &restTripRepo{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
	}
}

// restTripRow is the JSON body PostgREST expects for one row.
// Dates go over the wire as plain calendar dates.
type restTripRow struct {
	Start       string             `json:"start"`
	Destination string             `json:"destination"`
	StartDate   openapi_types.Date `json:"start_date"`
	EndDate     openapi_types.Date `json:"end_date"`
	Pax         int                `json:"pax"`
	UserID      string             `json:"user_id"`
}

// restTripRecord is one row of the representation PostgREST returns.
type restTripRecord struct {
	restTripRow
	ID        openapi_types.UUID `json:"id"`
	CreatedAt time.Time          `json:"created_at"`
}

// Insert posts rows and asks for the inserted representation back.
// HTTP error responses are the backend's verdict and become InsertResult.Err;
// transport failures and unreadable success bodies are returned as errors.
func (r *restTripRepo) Insert(ctx context.Context, table string, rows []domain.TripRow) (domain.InsertResult, error) {
	if len(rows) == 0 {
		return domain.InsertResult{}, fmt.Errorf("repo.RESTTripRepo.Insert: no rows")
	}

	payload := make([]restTripRow, len(rows))
	for i, row := range rows {
		payload[i] = restTripRow{
			Start:       row.Start,
			Destination: row.Destination,
			StartDate:   openapi_types.Date{Time: row.StartDate},
			EndDate:     openapi_types.Date{Time: row.EndDate},
			Pax:         row.Pax,
			UserID:      row.UserID,
		}
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.InsertResult{}, fmt.Errorf("repo.RESTTripRepo.Insert: encode: %w", err)
	}

	endpoint := r.baseURL + "/rest/v1/" + url.PathEscape(table)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.InsertResult{}, fmt.Errorf("repo.RESTTripRepo.Insert: %w", err)
	}
	req.Header.Set("apikey", r.apiKey)
	req.Header.Set("Authorization", "Bearer "+r.bearer(ctx))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := r.client.Do(req)
	if err != nil {
		return domain.InsertResult{}, fmt.Errorf("repo.RESTTripRepo.Insert: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return domain.InsertResult{Err: decodeRemoteError(resp)}, nil
	}

	var out []restTripRecord
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil && err != io.EOF {
		return domain.InsertResult{}, fmt.Errorf("repo.RESTTripRepo.Insert: decode: %w", err)
	}

	records := make([]domain.TripRecord, len(out))
	for i, rec := range out {
		records[i] = domain.TripRecord{
			ID:          rec.ID,
			Start:       rec.Start,
			Destination: rec.Destination,
			StartDate:   rec.StartDate.Time,
			EndDate:     rec.EndDate.Time,
			Pax:         rec.Pax,
			UserID:      rec.UserID,
			CreatedAt:   rec.CreatedAt,
		}
	}
	return domain.InsertResult{Rows: records}, nil
}

func (r *restTripRepo) bearer(ctx context.Context) string {
	if u, ok := domain.UserFrom(ctx); ok && u.AccessToken != "" {
		return u.AccessToken
	}
	return r.apiKey
}

// decodeRemoteError reads a PostgREST error body
// ({"code","message","details","hint"}). Bodies that are not in that shape
// still produce an error value carrying the HTTP status.
func decodeRemoteError(resp *http.Response) *domain.RemoteError {
	var remoteErr domain.RemoteError
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(raw, &remoteErr); err != nil || remoteErr.Message == "" {
		return &domain.RemoteError{
			Code:    strconv.Itoa(resp.StatusCode),
			Message: http.StatusText(resp.StatusCode),
			Details: strings.TrimSpace(string(raw)),
		}
	}
	return &remoteErr
}
