package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/breakthefear/fees-api/internal/models"
)

func newPaymentService(f *ledgerFixture, activities *mockActivityRepo) *PaymentService {
	activity := NewActivityService(activities, zap.NewNop())
	svc := NewPaymentService(f.payments, f.ledger, activity, nil, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, time.January, 15, 10, 0, 0, 0, time.UTC) }
	return svc
}

func TestPaymentServiceRecordAllocatesInOrder(t *testing.T) {
	f := newLedgerFixture()
	activities := &mockActivityRepo{}
	svc := newPaymentService(f, activities)

	detail, err := svc.Record(context.Background(), RecordPaymentRequest{
		StudentID:  "stu-1",
		MonthIDs:   []string{"m3", "m1", "m2"},
		PaidAmount: 1200,
	}, "admin@breakthefear.com")
	require.NoError(t, err)

	require.Len(t, detail.Allocations, 3)
	assert.Equal(t, "m1", detail.Allocations[0].MonthID)
	assert.Equal(t, 500.0, detail.Allocations[0].PaidAmount)
	assert.Equal(t, 500.0, detail.Allocations[1].PaidAmount)
	assert.Equal(t, "m3", detail.Allocations[2].MonthID)
	assert.Equal(t, 200.0, detail.Allocations[2].PaidAmount)

	assert.Equal(t, 1500.0, detail.TotalAmount)
	assert.Equal(t, 1200.0, detail.PaidAmount)
	assert.Equal(t, 300.0, detail.DueAmount)
	assert.Equal(t, "INV2026010001", detail.InvoiceNumber)
	assert.Equal(t, "admin@breakthefear.com", detail.ReceivedBy)
	assert.Equal(t, models.ActivityPaymentReceived, activities.lastType())
}

func TestPaymentServiceRecordThenStatement(t *testing.T) {
	f := newLedgerFixture()
	svc := newPaymentService(f, &mockActivityRepo{})

	_, err := svc.Record(context.Background(), RecordPaymentRequest{
		StudentID:  "stu-1",
		MonthIDs:   []string{"m1", "m2"},
		PaidAmount: 700,
	}, "admin")
	require.NoError(t, err)

	statement, err := f.ledger.Statement(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, 0.0, statement.Rows[0].RemainingDue)
	assert.Equal(t, 300.0, statement.Rows[1].RemainingDue)
	assert.Equal(t, 500.0, statement.Rows[2].RemainingDue)
}

func TestPaymentServiceRejectsFullyPaidMonth(t *testing.T) {
	f := newLedgerFixture()
	svc := newPaymentService(f, &mockActivityRepo{})

	_, err := svc.Record(context.Background(), RecordPaymentRequest{
		StudentID: "stu-1", MonthIDs: []string{"m1"}, PaidAmount: 500,
	}, "admin")
	require.NoError(t, err)

	_, err = svc.Record(context.Background(), RecordPaymentRequest{
		StudentID: "stu-1", MonthIDs: []string{"m1"}, PaidAmount: 100,
	}, "admin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fully paid")
}

func TestPaymentServiceRejectsForeignMonth(t *testing.T) {
	f := newLedgerFixture()
	svc := newPaymentService(f, &mockActivityRepo{})

	_, err := svc.Record(context.Background(), RecordPaymentRequest{
		StudentID: "stu-1", MonthIDs: []string{"other-course-month"}, PaidAmount: 100,
	}, "admin")
	require.Error(t, err)
}

// Paying more than the selected months' dues leaves the excess on the
// payment record only; it never appears as an allocation or future credit.
func TestPaymentServiceOverpaymentStaysOnTotals(t *testing.T) {
	f := newLedgerFixture()
	svc := newPaymentService(f, &mockActivityRepo{})

	detail, err := svc.Record(context.Background(), RecordPaymentRequest{
		StudentID: "stu-1", MonthIDs: []string{"m1"}, PaidAmount: 800,
	}, "admin")
	require.NoError(t, err)

	require.Len(t, detail.Allocations, 1)
	assert.Equal(t, 500.0, detail.Allocations[0].PaidAmount)
	assert.Equal(t, 800.0, detail.PaidAmount)
	assert.Equal(t, 0.0, detail.DueAmount)
}

func TestPaymentServiceInvoiceSequence(t *testing.T) {
	f := newLedgerFixture()
	// total count across all months; payments from prior months keep
	// advancing the sequence
	f.payments.total = 41
	svc := newPaymentService(f, &mockActivityRepo{})

	detail, err := svc.Record(context.Background(), RecordPaymentRequest{
		StudentID: "stu-1", MonthIDs: []string{"m1"}, PaidAmount: 100,
	}, "admin")
	require.NoError(t, err)
	assert.Equal(t, "INV2026010042", detail.InvoiceNumber)
}

func TestPaymentServiceRejectsNonPositiveAmount(t *testing.T) {
	f := newLedgerFixture()
	svc := newPaymentService(f, &mockActivityRepo{})

	_, err := svc.Record(context.Background(), RecordPaymentRequest{
		StudentID: "stu-1", MonthIDs: []string{"m1"}, PaidAmount: 0,
	}, "admin")
	require.Error(t, err)
}
