package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/opensource-finance/bce/internal/domain"
	"github.com/opensource-finance/bce/internal/service"
	"github.com/opensource-finance/bce/internal/verdict"
	"github.com/opensource-finance/bce/internal/worker"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 4 << 20

// Handler holds dependencies for API handlers.
type Handler struct {
	svc     *service.Service
	bus     domain.EventBus
	version string
}

// NewHandler creates a new API handler. bus may be nil, which disables
// asynchronous validation.
func NewHandler(svc *service.Service, bus domain.EventBus, version string) *Handler {
	return &Handler{
		svc:     svc,
		bus:     bus,
		version: version,
	}
}

// ValidateResponse is the response for POST /validate.
type ValidateResponse struct {
	*domain.Verdict
	Reasons []string `json:"reasons,omitempty"`
	Version string   `json:"version"`
}

// QueuedResponse is the response for an asynchronous POST /validate.
type QueuedResponse struct {
	Status  string `json:"status"`
	TraceID string `json:"traceId"`
	Topic   string `json:"topic"`
}

// Validate handles POST /validate. With ?mode=async the request is
// published for the worker and answered with 202.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := GetTenantID(ctx)
	traceID := GetTraceID(ctx)

	var in domain.ValidationInput
	if !decodeBody(w, r, &in) {
		return
	}

	if r.URL.Query().Get("mode") == "async" {
		h.enqueue(w, r, tenantID, traceID, &in)
		return
	}

	v, err := h.svc.Validate(ctx, tenantID, traceID, &in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ValidateResponse{
		Verdict: v,
		Reasons: verdict.Reasons(v),
		Version: h.version,
	})
}

func (h *Handler) enqueue(w http.ResponseWriter, r *http.Request, tenantID, traceID string, in *domain.ValidationInput) {
	if h.bus == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "event bus not available",
		})
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, err)
		return
	}

	payload, err := json.Marshal(worker.ValidateMessage{
		TenantID: tenantID,
		TraceID:  traceID,
		Input:    in,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.bus.Publish(r.Context(), tenantID, domain.TopicValidateRequested, payload); err != nil {
		slog.Error("failed to enqueue validation", "tenant_id", tenantID, "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "failed to enqueue validation",
		})
		return
	}

	writeJSON(w, http.StatusAccepted, QueuedResponse{
		Status:  "queued",
		TraceID: traceID,
		Topic:   domain.TopicValidateRequested,
	})
}

// Health returns server health status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	if err := h.svc.Ping(r.Context()); err != nil {
		slog.Warn("health check failed", "error", err)
		status = "degraded"
	}
	if h.bus != nil {
		if err := h.bus.Ping(r.Context()); err != nil {
			slog.Warn("event bus health check failed", "error", err)
			status = "degraded"
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":  status,
		"version": h.version,
	})
}

// Ready returns whether the server is ready to accept traffic.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Ping(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"ready": "false",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"ready": "true",
	})
}

// GetVerdict retrieves a verdict by ID.
func (h *Handler) GetVerdict(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	v, err := h.svc.GetVerdict(ctx, GetTenantID(ctx), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// PutSequences stores the exception item named in the path.
func (h *Handler) PutSequences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	itemNo, ok := itemParam(w, r)
	if !ok {
		return
	}

	var item domain.ExceptionItem
	if !decodeBody(w, r, &item) {
		return
	}
	if item.ItemNo != 0 && item.ItemNo != itemNo {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "itemNo does not match the path",
		})
		return
	}
	item.ItemNo = itemNo

	if err := h.svc.SaveItem(ctx, GetTenantID(ctx), &item); err != nil {
		writeError(w, err)
		return
	}

	slog.Info("exception item saved",
		"tenant_id", GetTenantID(ctx),
		"item", itemNo,
		"sequences", len(item.Sequences),
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"itemNo":    itemNo,
		"sequences": len(item.Sequences),
	})
}

// GetSequences returns the exception item named in the path.
func (h *Handler) GetSequences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	itemNo, ok := itemParam(w, r)
	if !ok {
		return
	}

	item, err := h.svc.GetItem(ctx, GetTenantID(ctx), itemNo)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// PostCabins stores booking code to cabin mappings.
func (h *Handler) PostCabins(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var rows []domain.RBDCabin
	if !decodeBody(w, r, &rows) {
		return
	}
	if err := h.svc.SaveCabins(ctx, GetTenantID(ctx), rows); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": len(rows)})
}

// PutZone stores the zone named in the path.
func (h *Handler) PutZone(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var zone domain.Zone
	if !decodeBody(w, r, &zone) {
		return
	}
	zone.Zone = chi.URLParam(r, "zone")

	if err := h.svc.SaveZone(ctx, GetTenantID(ctx), &zone); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, zone)
}

// ListTSI returns the travel segment indicators in effect.
func (h *Handler) ListTSI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	defs, err := h.svc.ListTSI(ctx, GetTenantID(ctx))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tsis":  defs,
		"count": len(defs),
	})
}

// CreateTSI compiles, stores and loads a travel segment indicator.
func (h *Handler) CreateTSI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var def domain.TSIDefinition
	if !decodeBody(w, r, &def) {
		return
	}
	if def.ID <= 0 || def.Expression == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "id and expression are required",
		})
		return
	}

	if err := h.svc.SaveTSI(ctx, GetTenantID(ctx), &def); err != nil {
		writeError(w, err)
		return
	}

	slog.Info("tsi created", "tenant_id", GetTenantID(ctx), "id", def.ID, "name", def.Name)
	writeJSON(w, http.StatusCreated, def)
}

// ReloadTSI reloads a tenant's indicators from the database.
func (h *Handler) ReloadTSI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := GetTenantID(ctx)

	if err := h.svc.ReloadTSI(ctx, tenantID); err != nil {
		writeError(w, err)
		return
	}
	defs, err := h.svc.ListTSI(ctx, tenantID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "tsi definitions reloaded",
		"count":   len(defs),
	})
}

func itemParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	itemNo, err := strconv.Atoi(chi.URLParam(r, "item"))
	if err != nil || itemNo <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "item must be a positive number",
		})
		return 0, false
	}
	return itemNo, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON request body",
		})
		return false
	}
	return true
}

// writeError maps domain errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		slog.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "internal server error",
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
