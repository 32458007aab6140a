package fees

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feeTable(fees map[string]float64) FeeLookup {
	return func(monthID string) (float64, bool) {
		fee, ok := fees[monthID]
		return fee, ok
	}
}

func TestAggregateStructuredPayments(t *testing.T) {
	now := time.Now()
	payments := []PaymentRecord{
		{ID: "p1", PaidAmount: 300, CreatedAt: now, Lines: []LedgerLine{
			{MonthID: "m1", MonthFee: 500, PaidAmount: 300},
		}},
		{ID: "p2", PaidAmount: 250, CreatedAt: now, Lines: []LedgerLine{
			{MonthID: "m1", MonthFee: 500, PaidAmount: 200},
			{MonthID: "m2", MonthFee: 500, PaidAmount: 50, DiscountAmount: 25},
		}},
	}

	ledgers := Aggregate(payments, feeTable(nil))
	require.Len(t, ledgers, 2)

	m1 := ledgers["m1"]
	assert.Equal(t, 500.0, m1.MonthFee)
	assert.Equal(t, 500.0, m1.TotalPaid)
	assert.Len(t, m1.Entries, 2)
	assert.Equal(t, "p1", m1.Entries[0].PaymentID)

	m2 := ledgers["m2"]
	assert.Equal(t, 50.0, m2.TotalPaid)
	assert.Equal(t, 25.0, m2.TotalDiscount)
	assert.Equal(t, 425.0, m2.RemainingDue())
}

func TestAggregateOrderIndependence(t *testing.T) {
	payments := []PaymentRecord{
		{ID: "p1", PaidAmount: 100, Lines: []LedgerLine{{MonthID: "m1", MonthFee: 500, PaidAmount: 100}}},
		{ID: "p2", PaidAmount: 150, Lines: []LedgerLine{{MonthID: "m1", MonthFee: 500, PaidAmount: 150}}},
		{ID: "p3", PaidAmount: 80, Months: []string{"m1", "m2"}},
	}
	reversed := []PaymentRecord{payments[2], payments[1], payments[0]}
	fees := feeTable(map[string]float64{"m1": 500, "m2": 400})

	forward := Aggregate(payments, fees)
	backward := Aggregate(reversed, fees)

	require.Len(t, forward, 2)
	for monthID, ledger := range forward {
		assert.Equal(t, ledger.TotalPaid, backward[monthID].TotalPaid)
		assert.Equal(t, ledger.TotalDiscount, backward[monthID].TotalDiscount)
	}
	assert.Equal(t, 290.0, forward["m1"].TotalPaid)
}

func TestNormalizeLegacyEvenSplitWithSubsetDiscount(t *testing.T) {
	payment := PaymentRecord{
		ID:             "legacy-1",
		PaidAmount:     100,
		Months:         []string{"m1", "m2"},
		DiscountAmount: 20,
		DiscountType:   "fixed",
		DiscountMonths: []string{"m1"},
	}
	lines := Normalize(payment, feeTable(map[string]float64{"m1": 500, "m2": 500}))
	require.Len(t, lines, 2)

	assert.Equal(t, "m1", lines[0].MonthID)
	assert.Equal(t, 50.0, lines[0].PaidAmount)
	assert.Equal(t, 20.0, lines[0].DiscountAmount)

	assert.Equal(t, "m2", lines[1].MonthID)
	assert.Equal(t, 50.0, lines[1].PaidAmount)
	assert.Equal(t, 0.0, lines[1].DiscountAmount)
}

func TestNormalizeLegacyPercentageDiscount(t *testing.T) {
	payment := PaymentRecord{
		ID:             "legacy-2",
		PaidAmount:     600,
		Months:         []string{"m1", "m2", "m3"},
		DiscountAmount: 10,
		DiscountType:   "percentage",
	}
	lines := Normalize(payment, feeTable(map[string]float64{"m1": 500, "m2": 400, "m3": 300}))
	require.Len(t, lines, 3)

	assert.InDelta(t, 200.0, lines[0].PaidAmount, 1e-9)
	assert.InDelta(t, 50.0, lines[0].DiscountAmount, 1e-9)
	assert.InDelta(t, 40.0, lines[1].DiscountAmount, 1e-9)
	assert.InDelta(t, 30.0, lines[2].DiscountAmount, 1e-9)
}

func TestNormalizeLegacyFixedDiscountWithoutSubset(t *testing.T) {
	payment := PaymentRecord{
		ID:             "legacy-3",
		PaidAmount:     100,
		Months:         []string{"m1", "m2"},
		DiscountAmount: 30,
		DiscountType:   "fixed",
	}
	lines := Normalize(payment, feeTable(map[string]float64{"m1": 500, "m2": 500}))
	require.Len(t, lines, 2)
	// fixed discount divides by the total month count when no subset exists
	assert.Equal(t, 15.0, lines[0].DiscountAmount)
	assert.Equal(t, 15.0, lines[1].DiscountAmount)
}

func TestNormalizeLegacySkipsUnknownMonths(t *testing.T) {
	payment := PaymentRecord{
		ID:         "legacy-4",
		PaidAmount: 100,
		Months:     []string{"m1", "gone"},
	}
	lines := Normalize(payment, feeTable(map[string]float64{"m1": 500}))
	require.Len(t, lines, 1)
	// the split divisor still counts the unknown month
	assert.Equal(t, 50.0, lines[0].PaidAmount)
}

func TestNormalizeStructuredPassThrough(t *testing.T) {
	payment := PaymentRecord{
		ID:         "p1",
		PaidAmount: 70,
		Lines:      []LedgerLine{{MonthID: "m1", MonthFee: 100, PaidAmount: 70}},
	}
	lines := Normalize(payment, feeTable(nil))
	require.Len(t, lines, 1)
	assert.Equal(t, 70.0, lines[0].PaidAmount)
	assert.False(t, payment.IsLegacy())
}
