package rating

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-FacilityBooking/internal/domain"
)

func TestRepository_ListActiveValues(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT rating FROM ratings WHERE facility_id = $1 AND deleted_at IS NULL")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"rating"}).AddRow(5).AddRow(4).AddRow(1))

	values, err := NewRepository(db).ListActiveValues(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 4, 1}, values)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO ratings (facility_id,user_id,rating,comment,created_at) VALUES ($1,$2,$3,$4,$5) RETURNING id")).
		WithArgs(int64(3), int64(42), 5, nil, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(9)))

	created, err := NewRepository(db).Create(context.Background(), &domain.Rating{
		FacilityID: 3, UserID: 42, Rating: 5, CreatedAt: now,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(9), created.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SoftDelete_AlreadyDeleted(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE ratings SET deleted_at = $1 WHERE id = $2 AND deleted_at IS NULL")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewRepository(db).SoftDelete(context.Background(), 9, time.Now())
	assert.ErrorIs(t, err, ErrRatingNotFound)
}
