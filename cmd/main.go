package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	addRatingHandler "github.com/m04kA/SMC-FacilityBooking/internal/api/handlers/add_rating"
	cancelReservationHandler "github.com/m04kA/SMC-FacilityBooking/internal/api/handlers/cancel_reservation"
	checkAvailabilityHandler "github.com/m04kA/SMC-FacilityBooking/internal/api/handlers/check_availability"
	createReservationHandler "github.com/m04kA/SMC-FacilityBooking/internal/api/handlers/create_reservation"
	deleteRatingHandler "github.com/m04kA/SMC-FacilityBooking/internal/api/handlers/delete_rating"
	extendReservationHandler "github.com/m04kA/SMC-FacilityBooking/internal/api/handlers/extend_reservation"
	getPaymentStatusHandler "github.com/m04kA/SMC-FacilityBooking/internal/api/handlers/get_payment_status"
	getReservationHandler "github.com/m04kA/SMC-FacilityBooking/internal/api/handlers/get_reservation"
	listFacilityReservationsHandler "github.com/m04kA/SMC-FacilityBooking/internal/api/handlers/list_facility_reservations"
	listUserReservationsHandler "github.com/m04kA/SMC-FacilityBooking/internal/api/handlers/list_user_reservations"
	moderateRatingHandler "github.com/m04kA/SMC-FacilityBooking/internal/api/handlers/moderate_rating"
	recomputeRatingHandler "github.com/m04kA/SMC-FacilityBooking/internal/api/handlers/recompute_rating"
	rescheduleReservationHandler "github.com/m04kA/SMC-FacilityBooking/internal/api/handlers/reschedule_reservation"
	startUsageHandler "github.com/m04kA/SMC-FacilityBooking/internal/api/handlers/start_usage"
	uploadPaymentSlipHandler "github.com/m04kA/SMC-FacilityBooking/internal/api/handlers/upload_payment_slip"
	verifyPaymentHandler "github.com/m04kA/SMC-FacilityBooking/internal/api/handlers/verify_payment"
	"github.com/m04kA/SMC-FacilityBooking/internal/api/middleware"
	"github.com/m04kA/SMC-FacilityBooking/internal/config"
	"github.com/m04kA/SMC-FacilityBooking/internal/infra/blobstore"
	facilityCache "github.com/m04kA/SMC-FacilityBooking/internal/infra/cache/facility"
	"github.com/m04kA/SMC-FacilityBooking/internal/integrations/events"
	"github.com/m04kA/SMC-FacilityBooking/internal/service/availability"
	"github.com/m04kA/SMC-FacilityBooking/internal/service/payments"
	"github.com/m04kA/SMC-FacilityBooking/internal/service/pricing"
	"github.com/m04kA/SMC-FacilityBooking/internal/service/ratings"
	"github.com/m04kA/SMC-FacilityBooking/internal/service/reservations"
	checkAvailabilityUC "github.com/m04kA/SMC-FacilityBooking/internal/usecase/check_availability"
	createReservationUC "github.com/m04kA/SMC-FacilityBooking/internal/usecase/create_reservation"
	"github.com/m04kA/SMC-FacilityBooking/internal/worker/expiry"
	"github.com/m04kA/SMC-FacilityBooking/pkg/logger"
	"github.com/m04kA/SMC-FacilityBooking/pkg/metrics"
)

type eventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
	Close() error
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level, cfg.LogFormat())
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-FacilityBooking (env=%s, storage=%s, timezone=%s)...",
		cfg.Env, cfg.Booking.StorageDriver, cfg.Booking.Location())

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Спаны no-op, пока провайдер OpenTelemetry не зарегистрирован окружением
	log.Info("Tracing through global OpenTelemetry provider (service=%s)", cfg.Tracing.ServiceName)

	// Хранилище
	store, err := openStorage(cfg, metricsCollector, stopMetricsCh, log)
	if err != nil {
		log.Fatal("Failed to open storage: %v", err)
	}
	defer store.close()

	// Кеш площадок
	var (
		facilityReader checkAvailabilityUC.FacilityReader = store.facilities
		ratingCache    ratings.FacilityCache
	)
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Warn("Redis is unavailable, facility reads fall back to storage: %v", err)
		}
		cancel()

		cached := facilityCache.NewCachedReader(store.facilities, redisClient, cfg.Redis.TTL(), log)
		facilityReader = cached
		ratingCache = cached
		log.Info("Facility cache enabled (addr=%s, ttl=%s)", cfg.Redis.Addr, cfg.Redis.TTL())
	}

	// Публикация событий
	var publisher eventPublisher = events.NoopPublisher{}
	if cfg.RabbitMQ.Enabled {
		p, err := events.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatal("Failed to connect to RabbitMQ: %v", err)
		}
		publisher = p
		log.Info("Event publishing enabled (exchange=%s)", cfg.RabbitMQ.Exchange)
	}
	defer publisher.Close()

	// Хранилище квитанций
	maxUploadBytes := int64(cfg.Server.MaxUploadSizeMB) << 20
	slips, err := blobstore.NewFileStore(cfg.BlobStore.Dir, maxUploadBytes)
	if err != nil {
		log.Fatal("Failed to initialize slip storage: %v", err)
	}

	// Инициализируем сервисы
	pricingEngine := pricing.NewEngine().WithLocation(cfg.Booking.Location())
	checker := availability.NewChecker(store.reservations, log)

	reservationSvc := reservations.NewService(
		store.reservations,
		store.facilities,
		checker,
		pricingEngine,
		store.tx,
		publisher,
		metricsCollector,
		log,
	).WithPaymentGrace(cfg.Booking.PaymentGrace())
	paymentSvc := payments.NewService(
		store.reservations,
		slips,
		store.tx,
		publisher,
		metricsCollector,
		log,
	)
	ratingSvc := ratings.NewService(
		store.ratings,
		store.facilities,
		ratingCache,
		store.tx,
		log,
	)

	// Инициализируем use cases
	createReservationUseCase := createReservationUC.NewUseCase(
		store.reservations,
		store.facilities,
		checker,
		pricingEngine,
		store.tx,
		publisher,
		metricsCollector,
		cfg.Booking.PaymentGrace(),
		log,
	)
	checkAvailabilityUseCase := checkAvailabilityUC.NewUseCase(
		facilityReader,
		checker,
		pricingEngine,
		log,
	)

	// Фоновая просрочка неоплаченных бронирований
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	sweeperDone := make(chan struct{})
	go func() {
		defer close(sweeperDone)
		expiry.NewSweeper(paymentSvc, cfg.Booking.SweepInterval(), log).Run(workerCtx)
	}()
	log.Info("Expiry sweeper started (interval=%s)", cfg.Booking.SweepInterval())

	// Инициализируем handlers
	checkAvailability := checkAvailabilityHandler.NewHandler(checkAvailabilityUseCase, log)
	createReservation := createReservationHandler.NewHandler(createReservationUseCase, log)
	getReservation := getReservationHandler.NewHandler(reservationSvc, log)
	listUserReservations := listUserReservationsHandler.NewHandler(reservationSvc, log)
	listFacilityReservations := listFacilityReservationsHandler.NewHandler(reservationSvc, log)
	cancelReservation := cancelReservationHandler.NewHandler(reservationSvc, log)
	rescheduleReservation := rescheduleReservationHandler.NewHandler(reservationSvc, log)
	extendReservation := extendReservationHandler.NewHandler(reservationSvc, log)
	startUsage := startUsageHandler.NewHandler(reservationSvc, log)
	getPaymentStatus := getPaymentStatusHandler.NewHandler(paymentSvc, log)
	uploadPaymentSlip := uploadPaymentSlipHandler.NewHandler(paymentSvc, maxUploadBytes, log)
	verifyPayment := verifyPaymentHandler.NewHandler(paymentSvc, log)
	addRating := addRatingHandler.NewHandler(ratingSvc, log)
	deleteRating := deleteRatingHandler.NewHandler(ratingSvc, log)
	recomputeRating := recomputeRatingHandler.NewHandler(ratingSvc, log)
	moderateRating := moderateRatingHandler.NewHandler(ratingSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Проверка доступности окна площадки
	api.HandleFunc("/facilities/{facilityId}/availability", checkAvailability.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Бронирования ---
	protected.HandleFunc("/reservations", createReservation.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/users/me/reservations", listUserReservations.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/reservations/{reservationId}", getReservation.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/reservations/{reservationId}/cancel", cancelReservation.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/reservations/{reservationId}/reschedule", rescheduleReservation.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/reservations/{reservationId}/extend", extendReservation.Handle).Methods(http.MethodPatch)

	// --- Оплата ---
	protected.HandleFunc("/reservations/{reservationId}/payment", getPaymentStatus.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/reservations/{reservationId}/payment/slip", uploadPaymentSlip.Handle).Methods(http.MethodPost)

	// --- Оценки ---
	protected.HandleFunc("/facilities/{facilityId}/ratings", addRating.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/facilities/{facilityId}/ratings/{ratingId:[0-9]+}", deleteRating.Handle).Methods(http.MethodDelete)

	// ============================================================
	// ADMIN ROUTES (требуют X-User-Role: admin)
	// ============================================================

	admin := protected.PathPrefix("").Subrouter()
	admin.Use(middleware.RequireAdmin)

	admin.HandleFunc("/reservations/{reservationId}/usage", startUsage.Handle).Methods(http.MethodPost)
	admin.HandleFunc("/reservations/{reservationId}/payment/verify", verifyPayment.Handle).Methods(http.MethodPost)
	admin.HandleFunc("/facilities/{facilityId}/reservations", listFacilityReservations.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/facilities/{facilityId}/ratings/recompute", recomputeRating.Handle).Methods(http.MethodPost)
	admin.HandleFunc("/admin/facilities/{facilityId}/ratings/{ratingId:[0-9]+}", moderateRating.Handle).Methods(http.MethodDelete)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	stopWorkers()
	<-sweeperDone

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	log.Info("Server stopped gracefully")
}
