package facility

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
	"github.com/m04kA/SMC-FacilityBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-FacilityBooking/pkg/psqlbuilder"
)

const (
	tableFacilities     = "facilities"
	tablePricingOptions = "pricing_options"
)

// Repository репозиторий площадок и их ценовых опций
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория площадок
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByID получает площадку вместе с ценовыми опциями
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Facility, error) {
	return r.get(ctx, id, false)
}

// GetByIDForUpdate получает площадку, блокируя её строку внутри транзакции
// Блокировка строки площадки сериализует все изменения бронирований этой площадки
func (r *Repository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Facility, error) {
	return r.get(ctx, id, dbmetrics.IsInTransaction(ctx))
}

func (r *Repository) get(ctx context.Context, id int64, lock bool) (*domain.Facility, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(
		"id",
		"name",
		"hourly_rate",
		"capacity",
		"is_closed_for_event",
		"closure_end_date",
		"average_rating",
		"total_ratings",
		"rating_breakdown",
		"created_at",
		"updated_at",
	).
		From(tableFacilities).
		Where(squirrel.Eq{"id": id})

	if lock {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var f domain.Facility
	var breakdown []byte

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&f.ID,
		&f.Name,
		&f.HourlyRate,
		&f.Capacity,
		&f.IsClosedForEvent,
		&f.ClosureEndDate,
		&f.Rating.AverageRating,
		&f.Rating.TotalRatings,
		&breakdown,
		&f.CreatedAt,
		&f.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFacilityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan facility: %w", ErrScanRow, err)
	}

	f.Rating.Breakdown, err = decodeBreakdown(breakdown)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - decode rating breakdown: %v", ErrScanRow, err)
	}

	options, err := r.listPricingOptions(ctx, executor, id)
	if err != nil {
		return nil, err
	}
	f.PricingOptions = options

	return &f, nil
}

func (r *Repository) listPricingOptions(ctx context.Context, executor DBExecutor, facilityID int64) ([]domain.PricingOption, error) {
	query, args, err := psqlbuilder.Select(
		"id",
		"facility_id",
		"name",
		"price_per_unit",
		"price_per_hour",
		"sort_order",
	).
		From(tablePricingOptions).
		Where(squirrel.Eq{"facility_id": facilityID}).
		OrderBy("sort_order ASC", "id ASC").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: listPricingOptions - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listPricingOptions - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	options := make([]domain.PricingOption, 0)
	for rows.Next() {
		var opt domain.PricingOption
		if err := rows.Scan(
			&opt.ID,
			&opt.FacilityID,
			&opt.Name,
			&opt.PricePerUnit,
			&opt.PricePerHour,
			&opt.SortOrder,
		); err != nil {
			return nil, fmt.Errorf("%w: listPricingOptions - scan row: %v", ErrScanRow, err)
		}
		options = append(options, opt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: listPricingOptions - rows error: %w", ErrScanRow, err)
	}

	return options, nil
}

// UpdateRatingSummary записывает пересчитанную сводку оценок на площадку
func (r *Repository) UpdateRatingSummary(ctx context.Context, id int64, summary domain.RatingSummary, updatedAt time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	breakdown, err := encodeBreakdown(summary.Breakdown)
	if err != nil {
		return fmt.Errorf("%w: UpdateRatingSummary: %v", ErrEncodeBreakdown, err)
	}

	query, args, err := psqlbuilder.Update(tableFacilities).
		Set("average_rating", summary.AverageRating).
		Set("total_ratings", summary.TotalRatings).
		Set("rating_breakdown", breakdown).
		Set("updated_at", updatedAt).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: UpdateRatingSummary - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: UpdateRatingSummary - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: UpdateRatingSummary - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrFacilityNotFound
	}

	return nil
}

// rating_breakdown хранится как JSONB {"1":0,...,"5":0}
func decodeBreakdown(raw []byte) (map[int]int, error) {
	result := domain.EmptyRatingSummary().Breakdown
	if len(raw) == 0 {
		return result, nil
	}

	var stored map[string]int
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, err
	}

	for k, v := range stored {
		score, err := strconv.Atoi(k)
		if err != nil {
			return nil, err
		}
		result[score] = v
	}

	return result, nil
}

func encodeBreakdown(breakdown map[int]int) (string, error) {
	stored := make(map[string]int, len(breakdown))
	for k, v := range breakdown {
		stored[strconv.Itoa(k)] = v
	}

	raw, err := json.Marshal(stored)
	if err != nil {
		return "", err
	}

	return string(raw), nil
}
