package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bladeops/internal/blob"
	inventoryapp "bladeops/internal/inventory/application"
	inventorymem "bladeops/internal/inventory/infrastructure/memory"
	procurementapp "bladeops/internal/procurement/application"
	procurement "bladeops/internal/procurement/domain"
	procurementmem "bladeops/internal/procurement/infrastructure/memory"
)

type orderFixture struct {
	handler *Handler
	archive *blob.Memory
	typeID  string
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	counters := inventorymem.NewCounterRepository()
	blades := inventorymem.NewBladeRepository()
	inventorySvc, err := inventoryapp.NewService(inventorymem.NewBladeTypeRepository(), counters, blades, nil)
	if err != nil {
		t.Fatalf("inventory service: %v", err)
	}
	bladeType, err := inventorySvc.CreateBladeType(context.Background(), inventoryapp.CreateBladeTypeInput{
		Code: "slitter-120", MachineName: "Slitter 120", SerialPrefix: "B4",
	})
	if err != nil {
		t.Fatalf("create type: %v", err)
	}

	materializer, err := procurementapp.NewMaterializer(blades, nil)
	if err != nil {
		t.Fatalf("materializer: %v", err)
	}
	orders, err := procurementapp.NewOrderService(counters, procurementmem.NewOrderRepository(), materializer, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("order service: %v", err)
	}

	archive := blob.NewMemory()
	handler, err := NewHandler(orders, inventorySvc, archive, nil)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	return &orderFixture{handler: handler, archive: archive, typeID: bladeType.ID}
}

func (f *orderFixture) createOrder(t *testing.T, quantity string) procurementapp.OrderSummary {
	t.Helper()
	body := `{"blade_type_id":"` + f.typeID + `","quantity":` + quantity +
		`,"supplier_name":"Hakucho Tooling","po_number":"PO-1001","unit_cost":"129.50","expected_delivery_date":"2026-09-15"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
	f.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create order: status %d body %s", rec.Code, rec.Body.String())
	}
	var summary procurementapp.OrderSummary
	if err := json.NewDecoder(rec.Body).Decode(&summary); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return summary
}

func TestHandler_CreateOrder(t *testing.T) {
	f := newOrderFixture(t)
	summary := f.createOrder(t, "5")
	if summary.SerialNumberStart != "B400001" || summary.SerialNumberEnd != "B400005" {
		t.Fatalf("unexpected range %s-%s", summary.SerialNumberStart, summary.SerialNumberEnd)
	}

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+summary.OrderID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("get order: %d", rec.Code)
	}
	var order procurement.PurchaseOrder
	if err := json.NewDecoder(rec.Body).Decode(&order); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if order.Status != procurement.StatusPending || order.ExpectedDeliveryDate == nil {
		t.Fatalf("unexpected order %+v", order)
	}
}

func TestHandler_CreateOrderBadInput(t *testing.T) {
	f := newOrderFixture(t)
	cases := []string{
		`{"blade_type_id":"` + f.typeID + `","quantity":0,"supplier_name":"s"}`,
		`{"blade_type_id":"` + f.typeID + `","quantity":5}`,
		`{"blade_type_id":"` + f.typeID + `","quantity":5,"supplier_name":"s","unit_cost":"not-a-number"}`,
		`{"blade_type_id":"` + f.typeID + `","quantity":5,"supplier_name":"s","expected_delivery_date":"15-09-2026"}`,
		`not json`,
	}
	for i, body := range cases {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
		f.handler.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("case %d: expected 400, got %d", i, rec.Code)
		}
	}
}

func TestHandler_CreateOrderUnknownType(t *testing.T) {
	f := newOrderFixture(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders",
		strings.NewReader(`{"blade_type_id":"missing","quantity":5,"supplier_name":"s"}`))
	f.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandler_ListOrders(t *testing.T) {
	f := newOrderFixture(t)
	f.createOrder(t, "2")
	f.createOrder(t, "3")

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders?blade_type_id="+f.typeID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("list: %d", rec.Code)
	}
	var orders []procurement.PurchaseOrder
	if err := json.NewDecoder(rec.Body).Decode(&orders); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}

	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without blade_type_id, got %d", rec.Code)
	}
}

func TestHandler_StatusUpdate(t *testing.T) {
	f := newOrderFixture(t)
	summary := f.createOrder(t, "2")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+summary.OrderID+"/status",
		strings.NewReader(`{"status":"received"}`))
	f.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: %d body %s", rec.Code, rec.Body.String())
	}

	// Received is terminal; a second move conflicts.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+summary.OrderID+"/status",
		strings.NewReader(`{"status":"cancelled"}`))
	f.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/orders/"+summary.OrderID+"/status",
		strings.NewReader(`{"status":"bogus"}`))
	f.handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandler_Manifest(t *testing.T) {
	f := newOrderFixture(t)
	summary := f.createOrder(t, "3")

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+summary.OrderID+"/manifest", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("manifest: %d body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("expected pdf content type, got %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Fatal("expected pdf payload")
	}

	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+summary.OrderID+"/manifest?format=xlsx", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("xlsx manifest: %d", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Fatal("expected workbook payload")
	}

	rec = httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+summary.OrderID+"/manifest?format=csv", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for csv, got %d", rec.Code)
	}
}

func TestHandler_ManifestArchive(t *testing.T) {
	f := newOrderFixture(t)
	summary := f.createOrder(t, "2")

	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+summary.OrderID+"/manifest?archive=true", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("manifest: %d", rec.Code)
	}
	key := rec.Header().Get("X-Archive-Key")
	if key == "" {
		t.Fatal("expected archive key header")
	}
	info, err := f.archive.Head(context.Background(), key)
	if err != nil {
		t.Fatalf("archived blob missing: %v", err)
	}
	if info.ContentType != "application/pdf" {
		t.Fatalf("unexpected archived content type %q", info.ContentType)
	}
}

func TestHandler_UnknownOrder(t *testing.T) {
	f := newOrderFixture(t)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/orders/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
