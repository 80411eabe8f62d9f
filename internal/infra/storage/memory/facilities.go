package memory

import (
	"context"
	"time"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
	"github.com/m04kA/SMC-FacilityBooking/internal/infra/storage/facility"
)

// FacilityRepository площадки в памяти
type FacilityRepository struct {
	db *DB
}

// Seed добавляет площадку вместе с ценовыми опциями и возвращает её с присвоенными ID
func (r *FacilityRepository) Seed(f domain.Facility) domain.Facility {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.nextFacilityID++
	f.ID = r.db.nextFacilityID

	options := make([]domain.PricingOption, len(f.PricingOptions))
	for i, opt := range f.PricingOptions {
		r.db.nextOptionID++
		opt.ID = r.db.nextOptionID
		opt.FacilityID = f.ID
		options[i] = opt
	}
	f.PricingOptions = options

	if f.Rating.Breakdown == nil {
		f.Rating = domain.EmptyRatingSummary()
	}

	r.db.facilities[f.ID] = f
	return copyFacility(f)
}

// GetByID получает площадку по ID
func (r *FacilityRepository) GetByID(ctx context.Context, id int64) (*domain.Facility, error) {
	var (
		f  domain.Facility
		ok bool
	)
	r.db.locked(ctx, func() {
		f, ok = r.db.facilities[id]
	})
	if !ok {
		return nil, facility.ErrFacilityNotFound
	}
	f = copyFacility(f)
	return &f, nil
}

// GetByIDForUpdate получает площадку по ID
// Транзакции хранилища уже взаимоисключающие, отдельная блокировка не нужна
func (r *FacilityRepository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Facility, error) {
	return r.GetByID(ctx, id)
}

// UpdateRatingSummary записывает сводку оценок
func (r *FacilityRepository) UpdateRatingSummary(ctx context.Context, id int64, summary domain.RatingSummary, updatedAt time.Time) error {
	var ok bool
	r.db.locked(ctx, func() {
		var f domain.Facility
		f, ok = r.db.facilities[id]
		if !ok {
			return
		}
		f.Rating = copySummary(summary)
		f.UpdatedAt = updatedAt
		r.db.facilities[id] = f
	})
	if !ok {
		return facility.ErrFacilityNotFound
	}
	return nil
}

func copyFacility(f domain.Facility) domain.Facility {
	f.PricingOptions = append([]domain.PricingOption(nil), f.PricingOptions...)
	f.Rating = copySummary(f.Rating)
	return f
}

func copySummary(s domain.RatingSummary) domain.RatingSummary {
	breakdown := make(map[int]int, len(s.Breakdown))
	for k, v := range s.Breakdown {
		breakdown[k] = v
	}
	s.Breakdown = breakdown
	return s
}
