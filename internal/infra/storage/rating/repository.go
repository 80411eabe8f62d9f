package rating

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
	"github.com/m04kA/SMC-FacilityBooking/pkg/dbmetrics"
	"github.com/m04kA/SMC-FacilityBooking/pkg/psqlbuilder"
)

const tableRatings = "ratings"

// Repository репозиторий оценок площадок
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория оценок
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create сохраняет новую оценку
func (r *Repository) Create(ctx context.Context, rating *domain.Rating) (*domain.Rating, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableRatings).
		Columns("facility_id", "user_id", "rating", "comment", "created_at").
		Values(rating.FacilityID, rating.UserID, rating.Rating, rating.Comment, rating.CreatedAt).
		Suffix("RETURNING id").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&rating.ID); err != nil {
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return rating, nil
}

// GetByID получает неудалённую оценку по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Rating, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"facility_id",
		"user_id",
		"rating",
		"comment",
		"created_at",
		"deleted_at",
	).
		From(tableRatings).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"deleted_at": nil}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	var rating domain.Rating
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&rating.ID,
		&rating.FacilityID,
		&rating.UserID,
		&rating.Rating,
		&rating.Comment,
		&rating.CreatedAt,
		&rating.DeletedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRatingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan rating: %w", ErrScanRow, err)
	}

	return &rating, nil
}

// SoftDelete помечает оценку удалённой
func (r *Repository) SoftDelete(ctx context.Context, id int64, deletedAt time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(tableRatings).
		Set("deleted_at", deletedAt).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"deleted_at": nil}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: SoftDelete - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: SoftDelete - execute update: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: SoftDelete - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrRatingNotFound
	}

	return nil
}

// ListActiveValues возвращает значения всех неудалённых оценок площадки
func (r *Repository) ListActiveValues(ctx context.Context, facilityID int64) ([]int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("rating").
		From(tableRatings).
		Where(squirrel.Eq{"facility_id": facilityID}).
		Where(squirrel.Eq{"deleted_at": nil}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveValues - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListActiveValues - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	values := make([]int, 0)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("%w: ListActiveValues - scan row: %v", ErrScanRow, err)
		}
		values = append(values, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListActiveValues - rows error: %w", ErrScanRow, err)
	}

	return values, nil
}
