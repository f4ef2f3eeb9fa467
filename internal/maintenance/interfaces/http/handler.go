package http

import (
	"encoding/json"
	"errors"
	"net/http"

	maintenanceapp "bladeops/internal/maintenance/application"
)

// Handler serves retirement history endpoints.
type Handler struct {
	service *maintenanceapp.RetirementService
}

// NewHandler constructs a Handler.
func NewHandler(service *maintenanceapp.RetirementService) (*Handler, error) {
	if service == nil {
		return nil, errors.New("retirement handler: nil service")
	}
	return &Handler{service: service}, nil
}

// ServeHTTP routes retirement history requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/v1/retirements" || r.Method != http.MethodGet {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	bladeTypeID := r.URL.Query().Get("blade_type_id")
	if bladeTypeID == "" {
		http.Error(w, "blade_type_id is required", http.StatusBadRequest)
		return
	}
	records, err := h.service.History(r.Context(), bladeTypeID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(records)
}
