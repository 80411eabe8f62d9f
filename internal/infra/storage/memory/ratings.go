package memory

import (
	"context"
	"sort"
	"time"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
	"github.com/m04kA/SMC-FacilityBooking/internal/infra/storage/rating"
)

// RatingRepository оценки в памяти
type RatingRepository struct {
	db *DB
}

// Create сохраняет оценку
func (r *RatingRepository) Create(ctx context.Context, rt *domain.Rating) (*domain.Rating, error) {
	r.db.locked(ctx, func() {
		r.db.nextRatingID++
		rt.ID = r.db.nextRatingID
		r.db.ratings[rt.ID] = *rt
	})
	return rt, nil
}

// GetByID получает неудалённую оценку
func (r *RatingRepository) GetByID(ctx context.Context, id int64) (*domain.Rating, error) {
	var (
		rt domain.Rating
		ok bool
	)
	r.db.locked(ctx, func() {
		rt, ok = r.db.ratings[id]
	})
	if !ok || rt.IsDeleted() {
		return nil, rating.ErrRatingNotFound
	}
	return &rt, nil
}

// SoftDelete помечает оценку удалённой
func (r *RatingRepository) SoftDelete(ctx context.Context, id int64, deletedAt time.Time) error {
	var ok bool
	r.db.locked(ctx, func() {
		var rt domain.Rating
		rt, ok = r.db.ratings[id]
		if !ok || rt.IsDeleted() {
			ok = false
			return
		}
		at := deletedAt
		rt.DeletedAt = &at
		r.db.ratings[id] = rt
	})
	if !ok {
		return rating.ErrRatingNotFound
	}
	return nil
}

// ListActiveValues возвращает значения неудалённых оценок площадки
func (r *RatingRepository) ListActiveValues(ctx context.Context, facilityID int64) ([]int, error) {
	ids := make([]int64, 0)
	values := make(map[int64]int)
	r.db.locked(ctx, func() {
		for id, rt := range r.db.ratings {
			if rt.FacilityID == facilityID && !rt.IsDeleted() {
				ids = append(ids, id)
				values[id] = rt.Rating
			}
		}
	})
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	result := make([]int, len(ids))
	for i, id := range ids {
		result[i] = values[id]
	}
	return result, nil
}
