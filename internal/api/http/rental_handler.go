package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"costume-rental-backend/internal/domain"
	"costume-rental-backend/internal/logger"
	"costume-rental-backend/internal/metrics"
	"costume-rental-backend/internal/repository"
	"costume-rental-backend/internal/service"

	"github.com/gorilla/mux"
)

type RentalHandler struct {
	rentalSvc service.RentalService
	sweeper   service.OverdueSweeper
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewRentalHandler(rentalSvc service.RentalService, sweeper service.OverdueSweeper, m *metrics.Metrics) *RentalHandler {
	return &RentalHandler{
		rentalSvc: rentalSvc,
		sweeper:   sweeper,
		metrics:   m,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type lineRequest struct {
	ItemCode string `json:"item_code" validate:"required,max=64"`
	Quantity int32  `json:"quantity"`
}

// Days and quantities are range-checked by the rental service so that the
// error codes match every other caller.
type registerRentalRequest struct {
	CustomerID int32         `json:"customer_id" validate:"gt=0"`
	Days       int32         `json:"days"`
	Lines      []lineRequest `json:"lines" validate:"dive"`
}

// RegisterRental handles POST /rentals. The acting clerk comes from the
// X-Actor-ID header.
func (h *RentalHandler) RegisterRental(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest[registerRentalRequest](w, r)
	if !ok {
		return
	}
	clerkID, _ := ActorFromContext(r.Context())

	lines := make([]domain.LineRequest, 0, len(req.Lines))
	for _, l := range req.Lines {
		lines = append(lines, domain.LineRequest{ItemCode: l.ItemCode, Quantity: l.Quantity})
	}

	rental, err := h.rentalSvc.RegisterRental(r.Context(), req.CustomerID, clerkID, lines, req.Days)
	if err != nil {
		h.fail("register_rental", w, r, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RentalsRegistered.Inc()
	}
	writeJSON(w, http.StatusCreated, rental)
}

// ReturnRental handles POST /rentals/{id}/return.
func (h *RentalHandler) ReturnRental(w http.ResponseWriter, r *http.Request) {
	id, ok := rentalIDFromPath(w, r)
	if !ok {
		return
	}
	actorID, _ := ActorFromContext(r.Context())

	settlement, err := h.rentalSvc.ReturnRental(r.Context(), id, actorID)
	if err != nil {
		h.fail("return_rental", w, r, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordReturn(settlement.Penalty)
	}
	writeJSON(w, http.StatusOK, settlement)
}

func (h *RentalHandler) GetRental(w http.ResponseWriter, r *http.Request) {
	id, ok := rentalIDFromPath(w, r)
	if !ok {
		return
	}
	rental, err := h.rentalSvc.GetRental(r.Context(), id)
	if err != nil {
		h.fail("get_rental", w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

// ListRentals handles GET /rentals. state accepts a comma separated list.
func (h *RentalHandler) ListRentals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter repository.RentalFilter

	if raw := q.Get("state"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			state := domain.RentalState(strings.ToUpper(strings.TrimSpace(s)))
			switch state {
			case domain.RentalStateActive, domain.RentalStateOverdue, domain.RentalStateReturned:
				filter.States = append(filter.States, state)
			default:
				writeError(w, r, domain.Errorf(domain.ErrValidation, "unknown rental state %q", s))
				return
			}
		}
	}
	if raw := q.Get("customer_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || id <= 0 {
			writeError(w, r, domain.Errorf(domain.ErrValidation, "customer_id must be a positive integer"))
			return
		}
		filter.CustomerID = int32(id)
	}

	rentals, err := h.rentalSvc.ListRentals(r.Context(), filter)
	if err != nil {
		h.fail("list_rentals", w, r, err)
		return
	}
	if rentals == nil {
		rentals = []domain.RentalOrder{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"rentals": rentals, "count": len(rentals)})
}

func (h *RentalHandler) CountActive(w http.ResponseWriter, r *http.Request) {
	n, err := h.rentalSvc.CountActive(r.Context())
	if err != nil {
		h.fail("count_active", w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int32{"active": n})
}

// EstimatePenalty handles GET /rentals/{id}/penalty. as_of defaults to now.
func (h *RentalHandler) EstimatePenalty(w http.ResponseWriter, r *http.Request) {
	id, ok := rentalIDFromPath(w, r)
	if !ok {
		return
	}
	at, ok := h.asOf(w, r)
	if !ok {
		return
	}
	estimate, err := h.rentalSvc.EstimatePenalty(r.Context(), id, at)
	if err != nil {
		h.fail("estimate_penalty", w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, estimate)
}

// SweepOverdue handles POST /rentals/sweep, the on-demand form of the nightly
// overdue job. as_of may not lie in the future.
func (h *RentalHandler) SweepOverdue(w http.ResponseWriter, r *http.Request) {
	at, ok := h.asOf(w, r)
	if !ok {
		return
	}
	if at.After(h.now()) {
		writeError(w, r, domain.Errorf(domain.ErrValidation, "as_of cannot be in the future"))
		return
	}
	n, err := h.sweeper.SweepOverdue(r.Context(), at)
	if err != nil {
		h.fail("sweep_overdue", w, r, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RentalsMarkedOverdue.Add(float64(n))
	}
	writeJSON(w, http.StatusOK, map[string]any{"marked_overdue": n, "as_of": at})
}

func (h *RentalHandler) asOf(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := r.URL.Query().Get("as_of")
	if raw == "" {
		return h.now(), true
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		writeError(w, r, domain.Errorf(domain.ErrValidation, "as_of must be an RFC 3339 timestamp"))
		return time.Time{}, false
	}
	return at.UTC(), true
}

func (h *RentalHandler) fail(op string, w http.ResponseWriter, r *http.Request, err error) {
	if h.metrics != nil {
		h.metrics.RecordFailure(op, string(domain.KindOf(err)))
	}
	logger.FromContext(r.Context()).Debug("Rental request failed", "operation", op, "error", err)
	writeError(w, r, err)
}

func rentalIDFromPath(w http.ResponseWriter, r *http.Request) (int32, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 32)
	if err != nil || id <= 0 {
		writeError(w, r, domain.Errorf(domain.ErrValidation, "rental id must be a positive integer"))
		return 0, false
	}
	return int32(id), true
}
