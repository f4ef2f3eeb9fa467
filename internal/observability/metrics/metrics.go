package metrics

import (
	"database/sql"
	"log"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "bladeops_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	ordersCreatedTotal   *prometheus.CounterVec
	orderCreateLatency   *prometheus.HistogramVec
	orderBladesRequested prometheus.Counter

	allocationConflictsTotal  prometheus.Counter
	allocationCorruptionTotal prometheus.Counter

	retirementsTotal *prometheus.CounterVec

	manifestExportTotal   *prometheus.CounterVec
	manifestExportLatency *prometheus.HistogramVec

	lowStockAlertsTotal *prometheus.CounterVec
)

// Init registers observability metrics and DB-backed gauges.
func Init(db *sql.DB, logger *log.Logger) {
	registerOnce.Do(func() {
		ordersCreatedTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "orders_created_total",
				Help: "Total purchase order creations by result",
			},
			[]string{"result"},
		)
		orderCreateLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "order_create_latency_seconds",
				Help:    "Purchase order creation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		orderBladesRequested = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "order_blades_requested_total",
				Help: "Total blades requested across purchase orders",
			},
		)

		allocationConflictsTotal = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "allocation_conflicts_total",
				Help: "Total serial allocation conflicts observed during reserve",
			},
		)
		allocationCorruptionTotal = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "allocation_corruption_total",
				Help: "Total allocation corruption incidents requiring reconciliation",
			},
		)

		retirementsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "retirements_total",
				Help: "Total blade retirements by reason",
			},
			[]string{"reason"},
		)

		manifestExportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "manifest_export_total",
				Help: "Total order manifest exports by format and result",
			},
			[]string{"format", "result"},
		)
		manifestExportLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "manifest_export_latency_seconds",
				Help:    "Order manifest export latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format", "result"},
		)

		lowStockAlertsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "low_stock_alerts_total",
				Help: "Total low stock alerts by blade type code",
			},
			[]string{"blade_type"},
		)

		prometheus.MustRegister(
			ordersCreatedTotal,
			orderCreateLatency,
			orderBladesRequested,
			allocationConflictsTotal,
			allocationCorruptionTotal,
			retirementsTotal,
			manifestExportTotal,
			manifestExportLatency,
			lowStockAlertsTotal,
		)

		if db != nil {
			registerDBMetrics(db, logger)
		}
	})
}

// ObserveOrderCreate records order creation latency, result and quantity.
func ObserveOrderCreate(result string, seconds float64, quantity int) {
	if result == "" {
		result = resultSuccess
	}
	if ordersCreatedTotal != nil {
		ordersCreatedTotal.WithLabelValues(result).Inc()
	}
	if orderCreateLatency != nil {
		orderCreateLatency.WithLabelValues(result).Observe(seconds)
	}
	if orderBladesRequested != nil && result == resultSuccess && quantity > 0 {
		orderBladesRequested.Add(float64(quantity))
	}
}

// IncAllocationConflict increments the reserve conflict counter.
func IncAllocationConflict() {
	if allocationConflictsTotal != nil {
		allocationConflictsTotal.Inc()
	}
}

// IncAllocationCorruption increments the corruption incident counter.
func IncAllocationCorruption() {
	if allocationCorruptionTotal != nil {
		allocationCorruptionTotal.Inc()
	}
}

// IncRetirement increments the retirement counter for a reason.
func IncRetirement(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	if retirementsTotal != nil {
		retirementsTotal.WithLabelValues(reason).Inc()
	}
}

// ObserveManifestExport records export latency and result by format.
func ObserveManifestExport(format, result string, duration time.Duration) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if manifestExportTotal != nil {
		manifestExportTotal.WithLabelValues(format, result).Inc()
	}
	if manifestExportLatency != nil {
		manifestExportLatency.WithLabelValues(format, result).Observe(duration.Seconds())
	}
}

// IncLowStockAlert increments the low stock alert counter.
func IncLowStockAlert(bladeTypeCode string) {
	if bladeTypeCode == "" {
		bladeTypeCode = "unknown"
	}
	if lowStockAlertsTotal != nil {
		lowStockAlertsTotal.WithLabelValues(bladeTypeCode).Inc()
	}
}

// Recorder satisfies the application metrics interfaces via the package
// level collectors.
type Recorder struct{}

// OrderCreated records an order creation outcome.
func (Recorder) OrderCreated(result string, seconds float64, quantity int) {
	ObserveOrderCreate(result, seconds, quantity)
}

// AllocationConflict records a reserve conflict.
func (Recorder) AllocationConflict() {
	IncAllocationConflict()
}

// AllocationCorruption records a corruption incident.
func (Recorder) AllocationCorruption() {
	IncAllocationCorruption()
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
