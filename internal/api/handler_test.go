package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/pack-planner/internal/storage"
)

type controllableClock struct {
	mu  sync.RWMutex
	now time.Time
}

func newControllableClock(initial time.Time) *controllableClock {
	return &controllableClock{now: initial}
}

func (c *controllableClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

func (c *controllableClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func setupTestRouter(t *testing.T) (http.Handler, *controllableClock) {
	t.Helper()

	store := storage.NewMemoryStorage()
	clock := newControllableClock(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))

	handler := NewHandler(store, WithClock(clock.Now))
	logger := zaptest.NewLogger(t)
	router := NewRouter(handler, logger, WithLogging(false))

	return router, clock
}

func TestRequestIDHelpers(t *testing.T) {
	ctx := contextWithRequestID(context.Background(), "abc")
	if got := requestIDFromContext(ctx); got != "abc" {
		t.Fatalf("expected abc, got %s", got)
	}
	resp := httptest.NewRecorder()
	writeInternalError(resp, assertError("boom"))
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 status, got %d", resp.Code)
	}
}

type assertError string

func (a assertError) Error() string { return string(a) }

func TestHealthEndpoint(t *testing.T) {
	router, clock := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body struct {
		Status    string    `json:"status"`
		Timestamp time.Time `json:"timestamp"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if body.Status != "ok" {
		t.Fatalf("expected status ok, got %s", body.Status)
	}
	if !body.Timestamp.Equal(clock.Now()) {
		t.Fatalf("expected timestamp %s, got %s", clock.Now(), body.Timestamp)
	}
}

func TestGetDefaultsReturnsBuiltIns(t *testing.T) {
	router, _ := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/defaults", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var body defaultsResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	want := storage.DefaultPlanningDefaults()
	if body.MaxItems != want.Limits.MaxItems || body.MaxWeight != want.Limits.MaxWeight {
		t.Fatalf("unexpected limits: %+v", body)
	}
	if body.SortOrder != want.Order.String() {
		t.Fatalf("expected sort order %s, got %s", want.Order, body.SortOrder)
	}
}

func TestPutDefaultsUpdatesStateAndTimestamp(t *testing.T) {
	router, clock := setupTestRouter(t)
	clock.Advance(time.Hour)

	payload := `{"maxItems": 12, "maxWeight": 80.5, "sortOrder": "SHORT_TO_LONG"}`
	req := httptest.NewRequest(http.MethodPut, "/api/defaults", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body defaultsResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body.MaxItems != 12 || body.MaxWeight != 80.5 || body.SortOrder != "SHORT_TO_LONG" {
		t.Fatalf("unexpected defaults: %+v", body)
	}
	if !body.UpdatedAt.Equal(clock.Now()) {
		t.Fatalf("expected updatedAt %s, got %s", clock.Now(), body.UpdatedAt)
	}
}

func TestPutDefaultsRejectsInvalidPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "MalformedJSON", payload: `{"maxItems": `},
		{name: "UnknownSortOrder", payload: `{"maxItems": 5, "maxWeight": 10, "sortOrder": "RANDOM"}`},
		{name: "ZeroMaxItems", payload: `{"maxItems": 0, "maxWeight": 10, "sortOrder": "NATURAL"}`},
		{name: "NegativeMaxWeight", payload: `{"maxItems": 5, "maxWeight": -1, "sortOrder": "NATURAL"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router, _ := setupTestRouter(t)

			req := httptest.NewRequest(http.MethodPut, "/api/defaults", strings.NewReader(tc.payload))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestPlanEndpointSplitsAcrossPacks(t *testing.T) {
	router, _ := setupTestRouter(t)

	payload := `{
		"sortOrder": "NATURAL",
		"maxItems": 40,
		"maxWeight": 500.0,
		"items": [
			{"id": 1001, "length": 6200, "quantity": 30, "unitWeight": 9.653},
			{"id": 2001, "length": 7200, "quantity": 50, "unitWeight": 11.21}
		]
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/plan", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body planResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if body.TotalPacks != 2 || len(body.Packs) != 2 {
		t.Fatalf("expected 2 packs, got %+v", body)
	}
	first := body.Packs[0]
	if first.Number != 1 || len(first.Entries) != 2 || first.TotalLength != 7200 {
		t.Fatalf("unexpected first pack: %+v", first)
	}
	if first.Entries[0].ItemID != 1001 || first.Entries[0].Quantity != 30 {
		t.Fatalf("unexpected first entry: %+v", first.Entries[0])
	}
	if first.Entries[1].ItemID != 2001 || first.Entries[1].Quantity != 10 {
		t.Fatalf("unexpected second entry: %+v", first.Entries[1])
	}
	second := body.Packs[1]
	if second.Number != 2 || len(second.Entries) != 1 || second.Entries[0].Quantity != 40 {
		t.Fatalf("unexpected second pack: %+v", second)
	}
}

func TestPlanEndpointFallsBackToStoredDefaults(t *testing.T) {
	router, _ := setupTestRouter(t)

	// Stored defaults allow 40 items and 500.0 weight; one light item fits in
	// one pack.
	payload := `{"items": [{"id": 1, "length": 100, "quantity": 5, "unitWeight": 2.5}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/plan", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body planResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	defaults := storage.DefaultPlanningDefaults()
	if body.MaxItems != defaults.Limits.MaxItems || body.MaxWeight != defaults.Limits.MaxWeight {
		t.Fatalf("expected stored default limits, got %+v", body)
	}
	if body.SortOrder != defaults.Order.String() {
		t.Fatalf("expected stored default order, got %s", body.SortOrder)
	}
	if body.TotalPacks != 1 {
		t.Fatalf("expected one pack, got %d", body.TotalPacks)
	}
}

func TestPlanEndpointErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		wantStatus int
	}{
		{
			name:       "MalformedJSON",
			payload:    `{"items": [`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "NoItems",
			payload:    `{"items": []}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "UnknownSortOrder",
			payload:    `{"sortOrder": "RANDOM", "items": [{"id": 1, "length": 1, "quantity": 1, "unitWeight": 1}]}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "InvalidLimits",
			payload:    `{"maxItems": 0, "items": [{"id": 1, "length": 1, "quantity": 1, "unitWeight": 1}]}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "NegativeQuantity",
			payload:    `{"items": [{"id": 1, "length": 1, "quantity": -2, "unitWeight": 1}]}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "UnpackableItem",
			payload:    `{"maxWeight": 5.0, "items": [{"id": 1, "length": 1, "quantity": 1, "unitWeight": 100.0}]}`,
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router, _ := setupTestRouter(t)

			req := httptest.NewRequest(http.MethodPost, "/api/plan", strings.NewReader(tc.payload))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}

			var body errorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if body.Error == "" {
				t.Fatalf("expected an error message")
			}
		})
	}
}

func TestPlanTextEndpoint(t *testing.T) {
	router, _ := setupTestRouter(t)

	input := "NATURAL,40,500.0\n1001,6200,30,9.653\n2001,7200,50,11.21\n"
	req := httptest.NewRequest(http.MethodPost, "/api/plan/text", bytes.NewBufferString(input))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("expected text/plain response, got %s", ct)
	}

	want := "Pack Number: 1\n" +
		"1001,6200,30,9.653\n" +
		"2001,7200,10,11.21\n" +
		"Pack Length: 7200, Pack Weight: 401.69\n" +
		"\n" +
		"Pack Number: 2\n" +
		"2001,7200,40,11.21\n" +
		"Pack Length: 7200, Pack Weight: 448.4\n"
	if rec.Body.String() != want {
		t.Fatalf("expected body:\n%s\ngot:\n%s", want, rec.Body.String())
	}
}

func TestPlanTextEndpointRejectsBadBatch(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantStatus int
	}{
		{name: "MissingHeader", input: "1001,6200,30,9.653\n", wantStatus: http.StatusBadRequest},
		{name: "GarbageLine", input: "NATURAL,40,500.0\nwhat is this\n", wantStatus: http.StatusBadRequest},
		{name: "Unpackable", input: "NATURAL,40,500.0\n1,10,1,900.0\n", wantStatus: http.StatusUnprocessableEntity},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			router, _ := setupTestRouter(t)

			req := httptest.NewRequest(http.MethodPost, "/api/plan/text", strings.NewReader(tc.input))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d: %s", tc.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}
