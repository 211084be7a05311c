package http

import (
	"context"
	"net/http"
	"time"

	"costume-rental-backend/internal/metrics"
	"costume-rental-backend/internal/service"

	"github.com/gorilla/mux"
)

// Pinger reports database reachability for /healthz.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Handlers struct {
	Rentals   *RentalHandler
	Inventory *InventoryHandler
	Config    *ConfigHandler
	Actors    service.ActorDirectory
}

// NewRouter registers every route under the name used by the access table in
// the config package.
func NewRouter(h Handlers, db Pinger, m *metrics.Metrics) *mux.Router {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware, recoverMiddleware)
	if m != nil {
		r.Use(m.Middleware)
		r.Handle("/metrics", m.Handler()).Methods(http.MethodGet).Name("Metrics")
	}
	r.Use(actorMiddleware(h.Actors))

	r.HandleFunc("/healthz", healthHandler(db)).Methods(http.MethodGet).Name("Health")

	r.HandleFunc("/inventory", h.Inventory.ListItems).Methods(http.MethodGet).Name("ListInventory")
	r.HandleFunc("/inventory/{code}", h.Inventory.GetItem).Methods(http.MethodGet).Name("GetInventoryItem")
	r.HandleFunc("/inventory/{code}/availability", h.Inventory.CheckAvailability).Methods(http.MethodGet).Name("CheckAvailability")
	r.HandleFunc("/inventory/{code}/reserve", h.Inventory.Reserve).Methods(http.MethodPost).Name("ReserveStock")
	r.HandleFunc("/inventory/{code}/release", h.Inventory.Release).Methods(http.MethodPost).Name("ReleaseStock")

	r.HandleFunc("/rentals", h.Rentals.RegisterRental).Methods(http.MethodPost).Name("RegisterRental")
	r.HandleFunc("/rentals", h.Rentals.ListRentals).Methods(http.MethodGet).Name("ListRentals")
	r.HandleFunc("/rentals/active/count", h.Rentals.CountActive).Methods(http.MethodGet).Name("CountActiveRentals")
	r.HandleFunc("/rentals/sweep", h.Rentals.SweepOverdue).Methods(http.MethodPost).Name("SweepOverdue")
	r.HandleFunc("/rentals/{id:[0-9]+}", h.Rentals.GetRental).Methods(http.MethodGet).Name("GetRental")
	r.HandleFunc("/rentals/{id:[0-9]+}/penalty", h.Rentals.EstimatePenalty).Methods(http.MethodGet).Name("EstimatePenalty")
	r.HandleFunc("/rentals/{id:[0-9]+}/return", h.Rentals.ReturnRental).Methods(http.MethodPost).Name("ReturnRental")

	r.HandleFunc("/config/penalty-rate", h.Config.GetPenaltyRate).Methods(http.MethodGet).Name("GetPenaltyRate")
	r.HandleFunc("/config/penalty-rate", h.Config.UpdatePenaltyRate).Methods(http.MethodPut).Name("UpdatePenaltyRate")

	return r
}

func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
