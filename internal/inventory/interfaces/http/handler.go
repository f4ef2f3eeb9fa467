package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"bladeops/internal/audit"
	"bladeops/internal/auth"
	inventoryapp "bladeops/internal/inventory/application"
	inventory "bladeops/internal/inventory/domain"
	maintenance "bladeops/internal/maintenance/domain"
)

// BladeTypeHandler serves blade type administration and summary endpoints.
type BladeTypeHandler struct {
	service     *inventoryapp.Service
	auditLogger audit.Logger
}

// NewBladeTypeHandler constructs a BladeTypeHandler.
func NewBladeTypeHandler(service *inventoryapp.Service, auditLogger audit.Logger) (*BladeTypeHandler, error) {
	if service == nil {
		return nil, errors.New("blade type handler: nil service")
	}
	return &BladeTypeHandler{service: service, auditLogger: auditLogger}, nil
}

// ServeHTTP routes blade type requests.
func (h *BladeTypeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/v1/blade-types" {
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

	if !strings.HasPrefix(r.URL.Path, "/api/v1/blade-types/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/blade-types/")
	parts := strings.Split(path, "/")
	if len(parts) < 1 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	bladeTypeID := parts[0]

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.handleGet(w, r, bladeTypeID)
	case len(parts) == 2 && parts[1] == "summary" && r.Method == http.MethodGet:
		h.handleSummary(w, r, bladeTypeID)
	case len(parts) == 2 && parts[1] == "counter" && r.Method == http.MethodPost:
		h.handleInitCounter(w, r, bladeTypeID)
	case len(parts) == 2 && parts[1] == "blades" && r.Method == http.MethodGet:
		h.handleBlades(w, r, bladeTypeID)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *BladeTypeHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Code           string `json:"code"`
		MachineName    string `json:"machine_name"`
		LifecycleHours int    `json:"lifecycle_hours"`
		SerialPrefix   string `json:"serial_prefix"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	bladeType, err := h.service.CreateBladeType(r.Context(), inventoryapp.CreateBladeTypeInput{
		Code:           req.Code,
		MachineName:    req.MachineName,
		LifecycleHours: req.LifecycleHours,
		SerialPrefix:   req.SerialPrefix,
	})
	if err != nil {
		respondInventoryError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bladeType)
	h.logAudit(r, bladeType.ID, "blade_type.create", map[string]any{"code": req.Code, "serial_prefix": req.SerialPrefix})
}

func (h *BladeTypeHandler) handleList(w http.ResponseWriter, r *http.Request) {
	types, err := h.service.ListBladeTypes(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, types)
}

func (h *BladeTypeHandler) handleGet(w http.ResponseWriter, r *http.Request, bladeTypeID string) {
	bladeType, err := h.service.GetBladeType(r.Context(), bladeTypeID)
	if err != nil {
		respondInventoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bladeType)
}

func (h *BladeTypeHandler) handleSummary(w http.ResponseWriter, r *http.Request, bladeTypeID string) {
	summary, err := h.service.Summarize(r.Context(), bladeTypeID)
	if err != nil {
		respondInventoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *BladeTypeHandler) handleInitCounter(w http.ResponseWriter, r *http.Request, bladeTypeID string) {
	var req struct {
		SerialPrefix string `json:"serial_prefix"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if err := h.service.InitializeCounter(r.Context(), bladeTypeID, req.SerialPrefix); err != nil {
		respondInventoryError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
	h.logAudit(r, bladeTypeID, "counter.initialize", map[string]any{"serial_prefix": req.SerialPrefix})
}

func (h *BladeTypeHandler) handleBlades(w http.ResponseWriter, r *http.Request, bladeTypeID string) {
	blades, err := h.service.ListBlades(r.Context(), bladeTypeID)
	if err != nil {
		respondInventoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, blades)
}

func (h *BladeTypeHandler) logAudit(r *http.Request, bladeTypeID, action string, meta map[string]any) {
	logAudit(h.auditLogger, r, action, "blade_type", bladeTypeID, bladeTypeID, meta)
}

// Retirer performs blade retirement with a permanent record.
type Retirer interface {
	Retire(ctx context.Context, bladeID, reason, notes, retiredBy string) (*maintenance.RetirementRecord, error)
}

// BladeHandler serves per-blade lifecycle endpoints. Status moves go through
// the inventory service; retirement is delegated so the permanent record and
// counter totals are written in one place.
type BladeHandler struct {
	service     *inventoryapp.Service
	retirer     Retirer
	auditLogger audit.Logger
}

// NewBladeHandler constructs a BladeHandler.
func NewBladeHandler(service *inventoryapp.Service, retirer Retirer, auditLogger audit.Logger) (*BladeHandler, error) {
	if service == nil {
		return nil, errors.New("blade handler: nil service")
	}
	if retirer == nil {
		return nil, errors.New("blade handler: nil retirer")
	}
	return &BladeHandler{service: service, retirer: retirer, auditLogger: auditLogger}, nil
}

// ServeHTTP routes blade requests.
func (h *BladeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, "/api/v1/blades/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/api/v1/blades/")
	parts := strings.Split(path, "/")
	if len(parts) < 1 || parts[0] == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	bladeID := parts[0]

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.handleGet(w, r, bladeID)
	case len(parts) == 2 && parts[1] == "status" && r.Method == http.MethodPost:
		h.handleStatus(w, r, bladeID)
	case len(parts) == 2 && parts[1] == "retire" && r.Method == http.MethodPost:
		h.handleRetire(w, r, bladeID)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *BladeHandler) handleGet(w http.ResponseWriter, r *http.Request, bladeID string) {
	blade, err := h.service.GetBlade(r.Context(), bladeID)
	if err != nil {
		respondInventoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, blade)
}

func (h *BladeHandler) handleStatus(w http.ResponseWriter, r *http.Request, bladeID string) {
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	status, ok := inventory.NormalizeStatus(req.Status)
	if !ok {
		http.Error(w, "unknown status", http.StatusBadRequest)
		return
	}
	blade, err := h.service.UpdateBladeStatus(r.Context(), bladeID, status)
	if err != nil {
		respondInventoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, blade)
	logAudit(h.auditLogger, r, "blade.status.update", "blade", bladeID, blade.BladeTypeID, map[string]any{"status": req.Status})
}

func (h *BladeHandler) handleRetire(w http.ResponseWriter, r *http.Request, bladeID string) {
	var req struct {
		Reason string `json:"reason"`
		Notes  string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	retiredBy := auth.SubjectFromContext(r.Context())
	record, err := h.retirer.Retire(r.Context(), bladeID, req.Reason, req.Notes, retiredBy)
	if err != nil {
		respondRetireError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
	logAudit(h.auditLogger, r, "blade.retire", "blade", bladeID, record.BladeTypeID, map[string]any{"reason": req.Reason})
}

func respondInventoryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, inventory.ErrBladeTypeNotFound),
		errors.Is(err, inventory.ErrCounterNotFound),
		errors.Is(err, inventory.ErrBladeNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, inventory.ErrBladeTypeExists),
		errors.Is(err, inventory.ErrCounterExists):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, inventory.ErrInvalidStatus),
		errors.Is(err, inventory.ErrSerialOutOfRange),
		errors.Is(err, inventory.ErrInvalidQuantity):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func respondRetireError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, inventory.ErrBladeNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, maintenance.ErrAlreadyRetired):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, maintenance.ErrEmptyReason):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func logAudit(logger audit.Logger, r *http.Request, action, resourceType, resourceID, bladeTypeID string, meta map[string]any) {
	if logger == nil {
		return
	}
	payload, _ := json.Marshal(meta)
	_ = logger.Log(r.Context(), audit.Entry{
		Actor:        auth.SubjectFromContext(r.Context()),
		Role:         string(auth.RoleFromContext(r.Context())),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		BladeTypeID:  bladeTypeID,
		Metadata:     payload,
		IP:           audit.ClientIP(r),
		UserAgent:    r.UserAgent(),
	})
}
