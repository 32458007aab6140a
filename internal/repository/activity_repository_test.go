package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/breakthefear/fees-api/internal/models"
)

func TestActivityRepositoryCreateTrimsTrail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO activities")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM activities WHERE id NOT IN")).
		WithArgs(activityKeep).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), &models.Activity{
		Type:        models.ActivityPaymentReceived,
		Description: "Payment received from Rahim Uddin",
		Actor:       "admin@breakthefear.com",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestActivityRepositoryListCapsLimit(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewActivityRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM activities ORDER BY created_at DESC LIMIT $1")).
		WithArgs(activityKeep).
		WillReturnRows(sqlmock.NewRows([]string{"id", "type", "description", "data", "actor", "created_at"}))

	_, err := repo.List(context.Background(), 500)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
