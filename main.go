package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"bladeops/internal/audit"
	"bladeops/internal/auth"
	"bladeops/internal/blob"
	"bladeops/internal/eventing"
	eventingrepo "bladeops/internal/eventing/infrastructure/postgres"
	inventoryapp "bladeops/internal/inventory/application"
	inventoryrepo "bladeops/internal/inventory/infrastructure/postgres"
	inventoryhttp "bladeops/internal/inventory/interfaces/http"
	maintenanceapp "bladeops/internal/maintenance/application"
	maintenancerepo "bladeops/internal/maintenance/infrastructure/postgres"
	maintenancehttp "bladeops/internal/maintenance/interfaces/http"
	"bladeops/internal/maintenance/notify"
	"bladeops/internal/observability/metrics"
	procurementapp "bladeops/internal/procurement/application"
	procurementrepo "bladeops/internal/procurement/infrastructure/postgres"
	procurementhttp "bladeops/internal/procurement/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	_ = godotenv.Load()
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("db ping error: %v", err)
	}

	metrics.Init(db, logger)
	auditRepo := audit.NewRepository(db)

	bladeTypeRepo := inventoryrepo.NewBladeTypeRepository(db)
	counterRepo := inventoryrepo.NewCounterRepository(db)
	bladeRepo := inventoryrepo.NewBladeRepository(db)
	orderRepo := procurementrepo.NewOrderRepository(db)
	retirementRepo := maintenancerepo.NewRetirementRepository(db)

	bus := eventing.NewInMemoryBus()
	registry := eventing.NewRegistry()
	registry.MustRegister(
		procurementapp.OrderCreated{},
		maintenanceapp.BladeRetired{},
		maintenanceapp.LowStockDetected{},
	)
	outboxStore := eventingrepo.NewOutboxStore(db)
	processedStore := eventingrepo.NewProcessedStore(db)
	dispatcher := eventing.NewDispatcher(bus, outboxStore, registry, logger)
	publisher := eventing.NewPublisher(outboxStore, dispatcher, bus)

	eventing.Subscribe(bus, eventing.EventTypeOf[procurementapp.OrderCreated](), "procurement.log", func(ctx context.Context, event any) error {
		evt, ok := event.(procurementapp.OrderCreated)
		if !ok {
			return eventing.ErrInvalidEventType
		}
		logger.Printf("order created: order=%s type=%s range=%s-%s", evt.OrderID, evt.BladeTypeID, evt.SerialNumberStart, evt.SerialNumberEnd)
		return nil
	}, processedStore)

	alertCfg, err := maintenanceapp.LoadAlertConfig()
	if err != nil {
		logger.Fatalf("alert config error: %v", err)
	}
	if alertCfg.WebhookURL != "" {
		notifier := notify.NewMultiNotifier(notify.NewWebhookNotifier(alertCfg.WebhookURL))
		eventing.Subscribe(bus, eventing.EventTypeOf[maintenanceapp.LowStockDetected](), "maintenance.lowstock.webhook", func(ctx context.Context, event any) error {
			evt, ok := event.(maintenanceapp.LowStockDetected)
			if !ok {
				return eventing.ErrInvalidEventType
			}
			return notifier.Notify(ctx, notify.StockAlert{
				BladeTypeID: evt.BladeTypeID,
				TotalActive: evt.TotalActive,
				Threshold:   evt.Threshold,
			})
		}, processedStore)
	}

	inventoryService, err := inventoryapp.NewService(bladeTypeRepo, counterRepo, bladeRepo, nil)
	if err != nil {
		logger.Fatalf("inventory service error: %v", err)
	}
	materializer, err := procurementapp.NewMaterializer(bladeRepo, nil)
	if err != nil {
		logger.Fatalf("materializer error: %v", err)
	}
	orderService, err := procurementapp.NewOrderService(counterRepo, orderRepo, materializer, publisher, metrics.Recorder{}, nil, logger)
	if err != nil {
		logger.Fatalf("order service error: %v", err)
	}
	retirementService, err := maintenanceapp.NewRetirementService(bladeRepo, counterRepo, retirementRepo, publisher, alertCfg, nil, logger)
	if err != nil {
		logger.Fatalf("retirement service error: %v", err)
	}

	archive, err := blob.Open(context.Background())
	if err != nil {
		logger.Fatalf("blob store error: %v", err)
	}

	bladeTypeHandler, err := inventoryhttp.NewBladeTypeHandler(inventoryService, auditRepo)
	if err != nil {
		logger.Fatalf("blade type handler error: %v", err)
	}
	bladeHandler, err := inventoryhttp.NewBladeHandler(inventoryService, retirementService, auditRepo)
	if err != nil {
		logger.Fatalf("blade handler error: %v", err)
	}
	orderHandler, err := procurementhttp.NewHandler(orderService, inventoryService, archive, auditRepo)
	if err != nil {
		logger.Fatalf("order handler error: %v", err)
	}
	retirementHandler, err := maintenancehttp.NewHandler(retirementService)
	if err != nil {
		logger.Fatalf("retirement handler error: %v", err)
	}

	// Drain outbox entries left over from a previous run.
	go func() {
		ticker := time.NewTicker(cfg.OutboxInterval)
		defer ticker.Stop()
		for range ticker.C {
			if err := dispatcher.Dispatch(context.Background(), 50); err != nil {
				logger.Printf("outbox dispatch error: %v", err)
			}
		}
	}()

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/blade-types", bladeTypeHandler)
	mux.Handle("/api/v1/blade-types/", bladeTypeHandler)
	mux.Handle("/api/v1/blades/", bladeHandler)
	mux.Handle("/api/v1/orders", orderHandler)
	mux.Handle("/api/v1/orders/", orderHandler)
	mux.Handle("/api/v1/retirements", retirementHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL    string
	HTTPAddr       string
	JWTSecret      string
	OutboxInterval time.Duration
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:    getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:       getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:      getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		OutboxInterval: getenvDuration("OUTBOX_DISPATCH_INTERVAL", 30*time.Second),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
