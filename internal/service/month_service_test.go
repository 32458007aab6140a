package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/breakthefear/fees-api/internal/models"
	appErrors "github.com/breakthefear/fees-api/pkg/errors"
)

func newMonthService(f *ledgerFixture, activities *mockActivityRepo) *MonthService {
	activity := NewActivityService(activities, zap.NewNop())
	return NewMonthService(f.months, f.courses, activity, nil, zap.NewNop())
}

func TestMonthServiceCreate(t *testing.T) {
	f := newLedgerFixture()
	activities := &mockActivityRepo{}
	svc := newMonthService(f, activities)

	month, err := svc.Create(context.Background(), MonthRequest{
		CourseID: "c1", Name: "April", MonthNumber: 4, Payment: 550,
	}, "admin")
	require.NoError(t, err)
	assert.NotEmpty(t, month.ID)
	assert.Equal(t, models.ActivityMonthCreated, activities.lastType())
}

func TestMonthServiceCreateRejectsUnknownCourse(t *testing.T) {
	f := newLedgerFixture()
	svc := newMonthService(f, &mockActivityRepo{})

	_, err := svc.Create(context.Background(), MonthRequest{
		CourseID: "missing", Name: "April", MonthNumber: 4,
	}, "admin")
	require.Error(t, err)
}

func TestMonthServiceDeleteGuardedByDependents(t *testing.T) {
	f := newLedgerFixture()
	f.months.dependents = 2
	svc := newMonthService(f, &mockActivityRepo{})

	err := svc.Delete(context.Background(), "m1", "admin")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrReferentialIntegrity.Code, appErr.Code)
	assert.Empty(t, f.months.deleted)
}

func TestMonthServiceDeleteWhenUnreferenced(t *testing.T) {
	f := newLedgerFixture()
	activities := &mockActivityRepo{}
	svc := newMonthService(f, activities)

	err := svc.Delete(context.Background(), "m3", "admin")
	require.NoError(t, err)
	assert.Contains(t, f.months.deleted, "m3")
	assert.Equal(t, models.ActivityMonthDeleted, activities.lastType())
}
