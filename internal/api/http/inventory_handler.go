package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"costume-rental-backend/internal/domain"
	"costume-rental-backend/internal/metrics"
	"costume-rental-backend/internal/service"

	"github.com/gorilla/mux"
)

type InventoryHandler struct {
	ledger  service.InventoryLedger
	metrics *metrics.Metrics
}

func NewInventoryHandler(ledger service.InventoryLedger, m *metrics.Metrics) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, metrics: m}
}

type quantityRequest struct {
	Quantity int32 `json:"quantity"`
}

type availabilityResponse struct {
	Code      string `json:"code"`
	Quantity  int32  `json:"quantity"`
	Available int32  `json:"available"`
	OK        bool   `json:"ok"`
	Reason    string `json:"reason,omitempty"`
}

// ListItems handles GET /inventory?include_inactive=true.
func (h *InventoryHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	includeInactive, _ := strconv.ParseBool(r.URL.Query().Get("include_inactive"))
	items, err := h.ledger.ListItems(r.Context(), includeInactive)
	if err != nil {
		h.fail("list_items", w, r, err)
		return
	}
	if items == nil {
		items = []domain.InventoryItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (h *InventoryHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.ledger.GetItem(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		h.fail("get_item", w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// CheckAvailability handles GET /inventory/{code}/availability?quantity=N.
// A shortfall or inactive item is an answer, not a failure.
func (h *InventoryHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	qty, err := strconv.ParseInt(r.URL.Query().Get("quantity"), 10, 32)
	if err != nil {
		writeError(w, r, domain.Errorf(domain.ErrInvalidQuantity, "quantity must be an integer"))
		return
	}

	available, err := h.ledger.CheckAvailability(r.Context(), code, int32(qty))
	resp := availabilityResponse{Code: code, Quantity: int32(qty), Available: available, OK: err == nil}
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrItemInactive):
		var de *domain.Error
		if errors.As(err, &de) {
			resp.Reason = string(de.Code)
		}
	default:
		h.fail("check_availability", w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *InventoryHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, "reserve", h.ledger.Reserve)
}

func (h *InventoryHandler) Release(w http.ResponseWriter, r *http.Request) {
	h.adjust(w, r, "release", h.ledger.Release)
}

func (h *InventoryHandler) adjust(w http.ResponseWriter, r *http.Request, op string, fn func(context.Context, string, int32) error) {
	req, ok := decodeRequest[quantityRequest](w, r)
	if !ok {
		return
	}
	code := mux.Vars(r)["code"]
	if err := fn(r.Context(), code, req.Quantity); err != nil {
		h.fail(op, w, r, err)
		return
	}
	item, err := h.ledger.GetItem(r.Context(), code)
	if err != nil {
		h.fail(op, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *InventoryHandler) fail(op string, w http.ResponseWriter, r *http.Request, err error) {
	if h.metrics != nil {
		h.metrics.RecordFailure(op, string(domain.KindOf(err)))
	}
	writeError(w, r, err)
}
