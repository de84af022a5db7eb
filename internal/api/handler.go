package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/eugenenazirov/pack-planner/internal/lineproto"
	"github.com/eugenenazirov/pack-planner/internal/metrics"
	"github.com/eugenenazirov/pack-planner/internal/planner"
	"github.com/eugenenazirov/pack-planner/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Handler wires planner and storage dependencies into HTTP handlers.
type Handler struct {
	storage storage.Storage

	clock func() time.Time

	mu                sync.RWMutex
	defaultsUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		storage: store,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.defaultsUpdatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetDefaults(w http.ResponseWriter, r *http.Request) {
	_ = r
	defaults, err := h.storage.GetDefaults()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := defaultsResponse{
		MaxItems:  defaults.Limits.MaxItems,
		MaxWeight: defaults.Limits.MaxWeight,
		SortOrder: defaults.Order.String(),
		UpdatedAt: h.currentDefaultsUpdatedAt(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePutDefaults(w http.ResponseWriter, r *http.Request) {
	var req defaultsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	order, err := planner.ParseSortOrder(req.SortOrder)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid sort order", err.Error())
		return
	}

	defaults := storage.Defaults{
		Limits: planner.PackLimits{MaxItems: req.MaxItems, MaxWeight: req.MaxWeight},
		Order:  order,
	}
	if err := h.storage.SetDefaults(defaults); err != nil {
		if errors.Is(err, storage.ErrInvalidDefaults) {
			writeError(w, http.StatusBadRequest, "Invalid planning defaults", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	h.markDefaultsUpdated()

	resp := defaultsResponse{
		MaxItems:  defaults.Limits.MaxItems,
		MaxWeight: defaults.Limits.MaxWeight,
		SortOrder: defaults.Order.String(),
		UpdatedAt: h.currentDefaultsUpdatedAt(),
		Message:   "Planning defaults updated successfully",
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if len(req.Items) == 0 {
		writeError(w, http.StatusBadRequest, "Invalid request", "items must contain at least one record")
		return
	}

	defaults, err := h.storage.GetDefaults()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	order := defaults.Order
	if req.SortOrder != "" {
		order, err = planner.ParseSortOrder(req.SortOrder)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid sort order", err.Error())
			return
		}
	}

	limits := defaults.Limits
	if req.MaxItems != nil {
		limits.MaxItems = *req.MaxItems
	}
	if req.MaxWeight != nil {
		limits.MaxWeight = *req.MaxWeight
	}

	items := make([]planner.ItemRecord, len(req.Items))
	for i, item := range req.Items {
		items[i] = planner.ItemRecord{
			ID:         item.ID,
			Length:     item.Length,
			Quantity:   item.Quantity,
			UnitWeight: item.UnitWeight,
		}
	}

	start := time.Now()
	packs, planErr := planner.Plan(items, order, limits)
	elapsed := time.Since(start)

	if planErr != nil {
		metrics.RecordPlanRun(elapsed, "error", 0)
		writePlanError(w, planErr, limits)
		return
	}
	metrics.RecordPlanRun(elapsed, "ok", len(packs))

	payload := make([]packPayload, len(packs))
	for i, pack := range packs {
		entries := make([]entryPayload, len(pack.Entries))
		for j, entry := range pack.Entries {
			entries[j] = entryPayload{
				ItemID:     entry.ItemID,
				Length:     entry.Length,
				Quantity:   entry.Quantity,
				UnitWeight: entry.UnitWeight,
			}
		}
		payload[i] = packPayload{
			Number:      pack.Number,
			Entries:     entries,
			TotalLength: pack.TotalLength,
			TotalWeight: pack.TotalWeight,
		}
	}

	resp := planResponse{
		SortOrder:      order.String(),
		MaxItems:       limits.MaxItems,
		MaxWeight:      limits.MaxWeight,
		Packs:          payload,
		TotalPacks:     len(payload),
		PlanningTimeMs: elapsed.Milliseconds(),
	}
	writeJSON(w, http.StatusOK, resp)
}

// handlePlanText accepts one line-protocol batch as the request body and
// responds with the formatted pack text.
func (h *Handler) handlePlanText(w http.ResponseWriter, r *http.Request) {
	batch, err := lineproto.ReadBatch(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid batch", err.Error())
		return
	}

	start := time.Now()
	packs, planErr := planner.Plan(batch.Items, batch.Order, batch.Limits)
	elapsed := time.Since(start)

	if planErr != nil {
		metrics.RecordPlanRun(elapsed, "error", 0)
		writePlanError(w, planErr, batch.Limits)
		return
	}
	metrics.RecordPlanRun(elapsed, "ok", len(packs))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_ = lineproto.WriteBatch(w, packs)
}

func writePlanError(w http.ResponseWriter, err error, limits planner.PackLimits) {
	switch {
	case errors.Is(err, planner.ErrInvalidLimits), errors.Is(err, planner.ErrInvalidItemRecord):
		writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
	case errors.Is(err, planner.ErrUnpackableItem):
		suggestion := fmt.Sprintf("Raise the pack weight limit above %v or remove the item that cannot fit", limits.MaxWeight)
		writeError(w, http.StatusUnprocessableEntity, "Cannot pack item", err.Error(), suggestion)
	default:
		writeInternalError(w, err)
	}
}

func (h *Handler) currentDefaultsUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.defaultsUpdatedAt
}

func (h *Handler) markDefaultsUpdated() {
	h.mu.Lock()
	h.defaultsUpdatedAt = h.clock()
	h.mu.Unlock()
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type defaultsRequest struct {
	MaxItems  int     `json:"maxItems"`
	MaxWeight float64 `json:"maxWeight"`
	SortOrder string  `json:"sortOrder"`
}

type planRequest struct {
	SortOrder string     `json:"sortOrder,omitempty"`
	MaxItems  *int       `json:"maxItems,omitempty"`
	MaxWeight *float64   `json:"maxWeight,omitempty"`
	Items     []planItem `json:"items"`
}

type planItem struct {
	ID         int     `json:"id"`
	Length     int     `json:"length"`
	Quantity   int     `json:"quantity"`
	UnitWeight float64 `json:"unitWeight"`
}

type planResponse struct {
	SortOrder      string        `json:"sortOrder"`
	MaxItems       int           `json:"maxItems"`
	MaxWeight      float64       `json:"maxWeight"`
	Packs          []packPayload `json:"packs"`
	TotalPacks     int           `json:"totalPacks"`
	PlanningTimeMs int64         `json:"planningTimeMs"`
}

type packPayload struct {
	Number      int            `json:"number"`
	Entries     []entryPayload `json:"entries"`
	TotalLength int            `json:"totalLength"`
	TotalWeight float64        `json:"totalWeight"`
}

type entryPayload struct {
	ItemID     int     `json:"itemId"`
	Length     int     `json:"length"`
	Quantity   int     `json:"quantity"`
	UnitWeight float64 `json:"unitWeight"`
}

type defaultsResponse struct {
	MaxItems  int       `json:"maxItems"`
	MaxWeight float64   `json:"maxWeight"`
	SortOrder string    `json:"sortOrder"`
	UpdatedAt time.Time `json:"updatedAt"`
	Message   string    `json:"message,omitempty"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
