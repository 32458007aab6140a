package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestMonthRepositoryListByCourse(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMonthRepository(db)

	rows := sqlmock.NewRows([]string{"id", "course_id", "name", "month_number", "payment", "created_at", "updated_at"}).
		AddRow("m-1", "course-1", "January", 1, 500.0, time.Now(), time.Now()).
		AddRow("m-2", "course-1", "February", 2, 500.0, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, course_id, name, month_number, payment, created_at, updated_at")).
		WithArgs("course-1").
		WillReturnRows(rows)

	months, err := repo.ListByCourse(context.Background(), "course-1")
	require.NoError(t, err)
	require.Len(t, months, 2)
	require.Equal(t, 1, months[0].MonthNumber)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMonthRepositoryCountDependents(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMonthRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM enrollments WHERE starting_month_id = $1 OR ending_month_id = $1")).
		WithArgs("m-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountDependents(context.Background(), "m-1")
	require.NoError(t, err)
	require.Equal(t, 3, count)
	require.NoError(t, mock.ExpectationsWereMet())
}
