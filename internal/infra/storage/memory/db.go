package memory

import (
	"context"
	"sync"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
)

// DB хранилище в памяти для локального запуска и тестов
// Транзакции сериализуются мьютексом, откат выполняется восстановлением снимка
type DB struct {
	mu sync.Mutex

	facilities   map[int64]domain.Facility
	reservations map[int64]domain.Reservation
	history      []domain.ReservationHistory
	ratings      map[int64]domain.Rating

	nextFacilityID    int64
	nextOptionID      int64
	nextReservationID int64
	nextHistoryID     int64
	nextRatingID      int64
}

type snapshot struct {
	facilities   map[int64]domain.Facility
	reservations map[int64]domain.Reservation
	history      []domain.ReservationHistory
	ratings      map[int64]domain.Rating

	nextFacilityID    int64
	nextOptionID      int64
	nextReservationID int64
	nextHistoryID     int64
	nextRatingID      int64
}

// New создает пустое хранилище
func New() *DB {
	return &DB{
		facilities:   make(map[int64]domain.Facility),
		reservations: make(map[int64]domain.Reservation),
		ratings:      make(map[int64]domain.Rating),
	}
}

// Do выполняет fn в транзакции
func (db *DB) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return db.run(ctx, fn)
}

// DoReadOnly выполняет fn в транзакции только для чтения
func (db *DB) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return db.run(ctx, fn)
}

// DoSerializable выполняет fn в транзакции
// Все транзакции хранилища и так выполняются строго последовательно
func (db *DB) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return db.run(ctx, fn)
}

func (db *DB) run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if inTransaction(ctx) {
		return fn(ctx)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	snap := db.snapshot()

	defer func() {
		if p := recover(); p != nil {
			db.restore(snap)
			panic(p)
		}
	}()

	if err := fn(withTransaction(ctx)); err != nil {
		db.restore(snap)
		return err
	}

	return nil
}

// locked выполняет fn под мьютексом, если вызов не находится внутри транзакции
func (db *DB) locked(ctx context.Context, fn func()) {
	if !inTransaction(ctx) {
		db.mu.Lock()
		defer db.mu.Unlock()
	}
	fn()
}

func (db *DB) snapshot() snapshot {
	s := snapshot{
		facilities:   make(map[int64]domain.Facility, len(db.facilities)),
		reservations: make(map[int64]domain.Reservation, len(db.reservations)),
		history:      append([]domain.ReservationHistory(nil), db.history...),
		ratings:      make(map[int64]domain.Rating, len(db.ratings)),

		nextFacilityID:    db.nextFacilityID,
		nextOptionID:      db.nextOptionID,
		nextReservationID: db.nextReservationID,
		nextHistoryID:     db.nextHistoryID,
		nextRatingID:      db.nextRatingID,
	}
	for k, v := range db.facilities {
		s.facilities[k] = v
	}
	for k, v := range db.reservations {
		s.reservations[k] = v
	}
	for k, v := range db.ratings {
		s.ratings[k] = v
	}
	return s
}

func (db *DB) restore(s snapshot) {
	db.facilities = s.facilities
	db.reservations = s.reservations
	db.history = s.history
	db.ratings = s.ratings
	db.nextFacilityID = s.nextFacilityID
	db.nextOptionID = s.nextOptionID
	db.nextReservationID = s.nextReservationID
	db.nextHistoryID = s.nextHistoryID
	db.nextRatingID = s.nextRatingID
}

// Reservations репозиторий бронирований поверх хранилища
func (db *DB) Reservations() *ReservationRepository {
	return &ReservationRepository{db: db}
}

// Facilities репозиторий площадок поверх хранилища
func (db *DB) Facilities() *FacilityRepository {
	return &FacilityRepository{db: db}
}

// Ratings репозиторий оценок поверх хранилища
func (db *DB) Ratings() *RatingRepository {
	return &RatingRepository{db: db}
}
