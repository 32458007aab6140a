package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/breakthefear/fees-api/internal/fees"
	"github.com/breakthefear/fees-api/internal/models"
)

// ledgerFixture wires a single-course setup: Physics with three months of
// 500 each and one student enrolled from the first month, open-ended.
type ledgerFixture struct {
	students *mockStudentRepo
	courses  *mockCourseRepo
	months   *mockMonthRepo
	payments *mockPaymentRepo
	ledger   *LedgerService
}

func newLedgerFixture() *ledgerFixture {
	students := &mockStudentRepo{
		students: map[string]*models.StudentDetail{
			"stu-1": {Student: models.Student{ID: "stu-1", StudentCode: "BTF260001", Name: "Rahim Uddin"}},
		},
		enrollments: map[string][]models.Enrollment{
			"stu-1": {{ID: "enr-1", StudentID: "stu-1", CourseID: "c1", StartingMonthID: "m1"}},
		},
	}
	courses := &mockCourseRepo{courses: map[string]*models.Course{
		"c1": {ID: "c1", Name: "Physics"},
	}}
	months := &mockMonthRepo{byCourse: map[string][]models.Month{
		"c1": {
			{ID: "m1", CourseID: "c1", Name: "January", MonthNumber: 1, Payment: 500},
			{ID: "m2", CourseID: "c1", Name: "February", MonthNumber: 2, Payment: 500},
			{ID: "m3", CourseID: "c1", Name: "March", MonthNumber: 3, Payment: 500},
		},
	}}
	payments := &mockPaymentRepo{}

	ledger := NewLedgerService(students, courses, months, payments, nil, zap.NewNop())
	return &ledgerFixture{students: students, courses: courses, months: months, payments: payments, ledger: ledger}
}

func TestLedgerStatementAcrossSchedule(t *testing.T) {
	f := newLedgerFixture()
	f.payments.payments = []models.PaymentDetail{{
		Payment: models.Payment{ID: "pay-1", StudentID: "stu-1", PaidAmount: 1200, CreatedAt: time.Now()},
		Allocations: []models.PaymentAllocation{
			{PaymentID: "pay-1", MonthID: "m1", MonthFee: 500, PaidAmount: 500},
			{PaymentID: "pay-1", MonthID: "m2", MonthFee: 500, PaidAmount: 500},
			{PaymentID: "pay-1", MonthID: "m3", MonthFee: 500, PaidAmount: 200},
		},
	}}

	statement, err := f.ledger.Statement(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, statement.Rows, 3)

	assert.Equal(t, 0.0, statement.Rows[0].RemainingDue)
	assert.True(t, statement.Rows[0].FullyPaid)
	assert.Equal(t, 0.0, statement.Rows[1].RemainingDue)
	assert.Equal(t, 300.0, statement.Rows[2].RemainingDue)
	assert.False(t, statement.Rows[2].FullyPaid)

	assert.Equal(t, 1500.0, statement.TotalDue)
	assert.Equal(t, 1200.0, statement.TotalPaid)
	assert.Equal(t, 300.0, statement.UnpaidDue)
	assert.Equal(t, string(fees.StatusPartial), statement.Status)
}

func TestLedgerStatementNoPayments(t *testing.T) {
	f := newLedgerFixture()

	statement, err := f.ledger.Statement(context.Background(), "stu-1")
	require.NoError(t, err)
	assert.Equal(t, 1500.0, statement.TotalDue)
	assert.Equal(t, 0.0, statement.TotalPaid)
	assert.Equal(t, string(fees.StatusUnpaid), statement.Status)
}

func TestLedgerStatementLegacyPaymentReinterpreted(t *testing.T) {
	f := newLedgerFixture()
	f.payments.payments = []models.PaymentDetail{{
		Payment: models.Payment{
			ID: "pay-legacy", StudentID: "stu-1", PaidAmount: 600,
			DiscountAmount: 100, DiscountType: models.DiscountTypeFixed,
		},
		LegacyMonths: []models.PaymentLegacyMonth{
			{PaymentID: "pay-legacy", MonthID: "m1", DiscountApplicable: true},
			{PaymentID: "pay-legacy", MonthID: "m2"},
		},
	}}

	statement, err := f.ledger.Statement(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, statement.Rows, 3)

	// 600 split evenly, the full fixed discount lands on the flagged month
	assert.Equal(t, 300.0, statement.Rows[0].TotalPaid)
	assert.Equal(t, 100.0, statement.Rows[0].TotalDiscount)
	assert.Equal(t, 100.0, statement.Rows[0].RemainingDue)
	assert.Equal(t, 300.0, statement.Rows[1].TotalPaid)
	assert.Equal(t, 0.0, statement.Rows[1].TotalDiscount)
	assert.Equal(t, string(fees.StatusPartial), statement.Status)
}

func TestLedgerPaymentOptionsFlagsFullyPaid(t *testing.T) {
	f := newLedgerFixture()
	f.payments.payments = []models.PaymentDetail{{
		Payment: models.Payment{ID: "pay-1", StudentID: "stu-1", PaidAmount: 500},
		Allocations: []models.PaymentAllocation{
			{PaymentID: "pay-1", MonthID: "m1", MonthFee: 500, PaidAmount: 500},
		},
	}}

	options, err := f.ledger.PaymentOptions(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, options, 1)
	require.Len(t, options[0].Months, 3)

	assert.True(t, options[0].Months[0].FullyPaid)
	assert.Equal(t, 500.0, options[0].Months[0].AlreadyPaid)
	assert.False(t, options[0].Months[1].FullyPaid)
	assert.Equal(t, 500.0, options[0].Months[1].RemainingDue)
}

func TestLedgerStatementBoundedEnrollment(t *testing.T) {
	f := newLedgerFixture()
	ending := "m2"
	f.students.enrollments["stu-1"] = []models.Enrollment{
		{ID: "enr-1", StudentID: "stu-1", CourseID: "c1", StartingMonthID: "m1", EndingMonthID: &ending},
	}

	statement, err := f.ledger.Statement(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, statement.Rows, 2)
	assert.Equal(t, 1000.0, statement.TotalDue)
}

func TestLedgerStatementUnknownStudent(t *testing.T) {
	f := newLedgerFixture()
	_, err := f.ledger.Statement(context.Background(), "nope")
	require.Error(t, err)
}
