package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/m04kA/SMC-FacilityBooking/internal/config"
	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
	facilityCache "github.com/m04kA/SMC-FacilityBooking/internal/infra/cache/facility"
	facilityRepo "github.com/m04kA/SMC-FacilityBooking/internal/infra/storage/facility"
	"github.com/m04kA/SMC-FacilityBooking/internal/infra/storage/memory"
	ratingRepo "github.com/m04kA/SMC-FacilityBooking/internal/infra/storage/rating"
	reservationRepo "github.com/m04kA/SMC-FacilityBooking/internal/infra/storage/reservation"
	"github.com/m04kA/SMC-FacilityBooking/internal/service/availability"
	"github.com/m04kA/SMC-FacilityBooking/internal/service/payments"
	"github.com/m04kA/SMC-FacilityBooking/internal/service/ratings"
	"github.com/m04kA/SMC-FacilityBooking/internal/service/reservations"
	createReservationUC "github.com/m04kA/SMC-FacilityBooking/internal/usecase/create_reservation"
	"github.com/m04kA/SMC-FacilityBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-FacilityBooking/pkg/logger"
	"github.com/m04kA/SMC-FacilityBooking/pkg/metrics"
	"github.com/m04kA/SMC-FacilityBooking/pkg/txmanager"
	"github.com/m04kA/SMC-FacilityBooking/pkg/types"
)

type reservationStore interface {
	reservations.ReservationRepository
	payments.ReservationRepository
	createReservationUC.ReservationRepository
	availability.ReservationRepository
}

type facilityStore interface {
	reservations.FacilityRepository
	ratings.FacilityRepository
	createReservationUC.FacilityRepository
	facilityCache.Source
}

type txManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// storage набор репозиториев и менеджер транзакций выбранного драйвера
type storage struct {
	reservations reservationStore
	facilities   facilityStore
	ratings      ratings.RatingRepository
	tx           txManager
	close        func() error
}

// openStorage подключает PostgreSQL или поднимает хранилище в памяти
func openStorage(cfg *config.Config, recorder *metrics.Metrics, stopCh <-chan struct{}, log *logger.Logger) (*storage, error) {
	if cfg.Booking.StorageDriver == config.StorageDriverMemory {
		db := memory.New()
		seedDemoFacility(db)
		log.Warn("Using in-memory storage, data is lost on restart")
		return &storage{
			reservations: db.Reservations(),
			facilities:   db.Facilities(),
			ratings:      db.Ratings(),
			tx:           db,
			close:        func() error { return nil },
		}, nil
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	var wrapped *dbmetrics.DB
	if recorder != nil {
		wrapped = dbmetrics.WrapWithDefault(db, recorder, stopCh)
		log.Info("Database metrics collection started")
	} else {
		wrapped = dbmetrics.Wrap(db, nil)
	}

	return &storage{
		reservations: reservationRepo.NewRepository(wrapped),
		facilities:   facilityRepo.NewRepository(wrapped),
		ratings:      ratingRepo.NewRepository(wrapped),
		tx:           txmanager.NewTransactionManager(wrapped).WithMaxRetries(cfg.Database.MaxTxRetries),
		close:        db.Close,
	}, nil
}

func seedDemoFacility(db *memory.DB) {
	projector := types.NewMoney(150)
	coach := types.NewMoney(200)
	db.Facilities().Seed(domain.Facility{
		Name:       "Спортивный зал",
		HourlyRate: types.NewMoney(500),
		Capacity:   30,
		PricingOptions: []domain.PricingOption{
			{Name: "Проектор", PricePerUnit: &projector, SortOrder: 1},
			{Name: "Тренер", PricePerHour: &coach, SortOrder: 2},
		},
	})
}
