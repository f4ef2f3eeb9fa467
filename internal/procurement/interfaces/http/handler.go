package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"bladeops/internal/audit"
	"bladeops/internal/auth"
	"bladeops/internal/blob"
	inventoryapp "bladeops/internal/inventory/application"
	inventory "bladeops/internal/inventory/domain"
	"bladeops/internal/observability/metrics"
	procurementapp "bladeops/internal/procurement/application"
	procurement "bladeops/internal/procurement/domain"
	"bladeops/internal/procurement/interfaces"
)

const dateLayout = "2006-01-02"

// Handler serves purchase order endpoints.
type Handler struct {
	orders      *procurementapp.OrderService
	inventory   *inventoryapp.Service
	archive     blob.Store
	auditLogger audit.Logger
}

// NewHandler constructs a Handler. The archive store is optional; without it
// manifest exports are returned but never archived.
func NewHandler(orders *procurementapp.OrderService, inventorySvc *inventoryapp.Service, archive blob.Store, auditLogger audit.Logger) (*Handler, error) {
	if orders == nil {
		return nil, errors.New("order handler: nil order service")
	}
	if inventorySvc == nil {
		return nil, errors.New("order handler: nil inventory service")
	}
	return &Handler{orders: orders, inventory: inventorySvc, archive: archive, auditLogger: auditLogger}, nil
}

// ServeHTTP routes order requests.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/v1/orders" {
		switch r.Method {
		case http.MethodPost:
			h.handleCreate(w, r)
		case http.MethodGet:
			h.handleList(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	if !strings.HasPrefix(r.URL.Path, "/api/v1/orders/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/orders/")
	parts := strings.Split(path, "/")
	if len(parts) < 1 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	orderID := parts[0]

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.handleGet(w, r, orderID)
	case len(parts) == 2 && parts[1] == "status" && r.Method == http.MethodPost:
		h.handleStatus(w, r, orderID)
	case len(parts) == 2 && parts[1] == "manifest" && r.Method == http.MethodGet:
		h.handleManifest(w, r, orderID)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		BladeTypeID          string `json:"blade_type_id"`
		Quantity             int    `json:"quantity"`
		SupplierName         string `json:"supplier_name"`
		PONumber             string `json:"po_number"`
		UnitCost             string `json:"unit_cost"`
		ExpectedDeliveryDate string `json:"expected_delivery_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	input := procurementapp.CreateOrderInput{
		BladeTypeID:  req.BladeTypeID,
		Quantity:     req.Quantity,
		SupplierName: req.SupplierName,
		PONumber:     req.PONumber,
	}
	if req.UnitCost != "" {
		cost, err := decimal.NewFromString(req.UnitCost)
		if err != nil {
			http.Error(w, "unit_cost must be a decimal number", http.StatusBadRequest)
			return
		}
		input.UnitCost = decimal.NewNullDecimal(cost)
	}
	if req.ExpectedDeliveryDate != "" {
		date, err := time.Parse(dateLayout, req.ExpectedDeliveryDate)
		if err != nil {
			http.Error(w, "expected_delivery_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		utc := date.UTC()
		input.ExpectedDeliveryDate = &utc
	}

	summary, err := h.orders.CreateOrder(r.Context(), input)
	if err != nil {
		respondOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, summary)
	h.logAudit(r, summary.OrderID, summary.BladeTypeID, "order.create", map[string]any{
		"po_number": req.PONumber,
		"quantity":  req.Quantity,
		"range":     fmt.Sprintf("%s-%s", summary.SerialNumberStart, summary.SerialNumberEnd),
	})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	bladeTypeID := r.URL.Query().Get("blade_type_id")
	if bladeTypeID == "" {
		http.Error(w, "blade_type_id is required", http.StatusBadRequest)
		return
	}
	orders, err := h.orders.ListOrders(r.Context(), bladeTypeID)
	if err != nil {
		respondOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request, orderID string) {
	order, err := h.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		respondOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request, orderID string) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	status, ok := procurement.NormalizeOrderStatus(req.Status)
	if !ok {
		http.Error(w, "unknown status", http.StatusBadRequest)
		return
	}
	order, err := h.orders.UpdateStatus(r.Context(), orderID, status)
	if err != nil {
		respondOrderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, order)
	h.logAudit(r, orderID, order.BladeTypeID, "order.status.update", map[string]any{"status": req.Status})
}

func (h *Handler) handleManifest(w http.ResponseWriter, r *http.Request, orderID string) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "pdf"
	}
	if format != "pdf" && format != "xlsx" {
		http.Error(w, "format must be pdf or xlsx", http.StatusBadRequest)
		return
	}

	started := time.Now()
	data, contentType, err := h.buildManifest(r, orderID, format)
	if err != nil {
		metrics.ObserveManifestExport(format, metrics.ResultError, time.Since(started))
		respondOrderError(w, err)
		return
	}
	metrics.ObserveManifestExport(format, metrics.ResultSuccess, time.Since(started))

	archived := ""
	if h.archive != nil && r.URL.Query().Get("archive") == "true" {
		key := fmt.Sprintf("manifests/%s/%s.%s", orderID, time.Now().UTC().Format("20060102T150405Z"), format)
		if info, err := h.archive.Put(r.Context(), key, bytes.NewReader(data), blob.PutOptions{
			ContentType: contentType,
			Metadata:    map[string]string{"order_id": orderID},
		}); err == nil {
			archived = info.Key
		}
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=manifest-%s.%s", orderID, format))
	if archived != "" {
		w.Header().Set("X-Archive-Key", archived)
	}
	_, _ = w.Write(data)
	h.logAudit(r, orderID, "", "order.manifest.export", map[string]any{"format": format, "archived": archived != ""})
}

func (h *Handler) buildManifest(r *http.Request, orderID, format string) ([]byte, string, error) {
	order, err := h.orders.GetOrder(r.Context(), orderID)
	if err != nil {
		return nil, "", err
	}
	bladeType, err := h.inventory.GetBladeType(r.Context(), order.BladeTypeID)
	if err != nil {
		return nil, "", err
	}
	blades, err := h.inventory.ListBlades(r.Context(), order.BladeTypeID)
	if err != nil {
		return nil, "", err
	}
	// Restrict the register to the order's serial range.
	inRange := make([]inventory.Blade, 0, order.Quantity)
	for _, blade := range blades {
		number, err := inventory.ParseSerial(bladeType.SerialPrefix, blade.SerialNumber)
		if err != nil {
			continue
		}
		if number >= order.StartNumber && number <= order.EndNumber {
			inRange = append(inRange, blade)
		}
	}

	if format == "xlsx" {
		data, err := interfaces.BuildBladeRegisterXLSX(order, bladeType, inRange)
		return data, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", err
	}
	data, err := interfaces.BuildOrderManifestPDF(order, bladeType, inRange)
	return data, "application/pdf", err
}

func (h *Handler) logAudit(r *http.Request, orderID, bladeTypeID, action string, meta map[string]any) {
	if h.auditLogger == nil {
		return
	}
	payload, _ := json.Marshal(meta)
	_ = h.auditLogger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: "order",
		ResourceID:   orderID,
		BladeTypeID:  bladeTypeID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}

func respondOrderError(w http.ResponseWriter, err error) {
	switch {
	case procurement.IsValidation(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, procurement.ErrOrderNotFound),
		errors.Is(err, inventory.ErrBladeTypeNotFound),
		errors.Is(err, inventory.ErrCounterNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, procurement.ErrInvalidTransition):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, inventory.ErrInvalidQuantity),
		errors.Is(err, inventory.ErrSerialOutOfRange):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, inventory.ErrConflict):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	case errors.Is(err, inventory.ErrAllocationCorruption):
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
