package http

import (
	"net/http"

	"costume-rental-backend/internal/domain"
	"costume-rental-backend/internal/logger"
	"costume-rental-backend/internal/metrics"
	"costume-rental-backend/internal/service"

	"github.com/shopspring/decimal"
)

// ConfigHandler exposes the runtime-adjustable penalty rate.
type ConfigHandler struct {
	rentalSvc service.RentalService
	metrics   *metrics.Metrics
}

func NewConfigHandler(rentalSvc service.RentalService, m *metrics.Metrics) *ConfigHandler {
	return &ConfigHandler{rentalSvc: rentalSvc, metrics: m}
}

// Rates travel as strings so no precision is lost in JSON numbers.
type penaltyRateRequest struct {
	PenaltyPerDay string `json:"penalty_per_day" validate:"required,numeric"`
}

type penaltyRateResponse struct {
	PenaltyPerDay decimal.Decimal `json:"penalty_per_day"`
}

func (h *ConfigHandler) GetPenaltyRate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, penaltyRateResponse{PenaltyPerDay: h.rentalSvc.PenaltyRate()})
}

// UpdatePenaltyRate handles PUT /config/penalty-rate. The new rate applies to
// returns processed after it is stored.
func (h *ConfigHandler) UpdatePenaltyRate(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest[penaltyRateRequest](w, r)
	if !ok {
		return
	}
	rate, err := decimal.NewFromString(req.PenaltyPerDay)
	if err != nil {
		writeError(w, r, domain.Errorf(domain.ErrInvalidRate, "penalty_per_day is not a decimal: %s", req.PenaltyPerDay))
		return
	}

	if err := h.rentalSvc.UpdatePenaltyRate(r.Context(), rate); err != nil {
		if h.metrics != nil {
			h.metrics.RecordFailure("update_penalty_rate", string(domain.KindOf(err)))
		}
		writeError(w, r, err)
		return
	}

	actorID, _ := ActorFromContext(r.Context())
	logger.FromContext(r.Context()).Info("Penalty rate updated", "penalty_per_day", rate.String(), "actor_id", actorID)
	if h.metrics != nil {
		h.metrics.SetPenaltyRate(rate)
	}
	writeJSON(w, http.StatusOK, penaltyRateResponse{PenaltyPerDay: h.rentalSvc.PenaltyRate()})
}
