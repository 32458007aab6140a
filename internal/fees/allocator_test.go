package fees

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocateGreedyInOrder(t *testing.T) {
	selected := []SelectedMonth{
		{MonthID: "a", MonthFee: 500, RemainingDue: 50},
		{MonthID: "b", MonthFee: 500, RemainingDue: 30},
	}
	allocations := Allocate(selected, 60)
	require.Len(t, allocations, 2)
	assert.Equal(t, 50.0, allocations[0].PaidAmount)
	assert.Equal(t, 10.0, allocations[1].PaidAmount)
}

func TestAllocateOrderSensitivity(t *testing.T) {
	reversed := []SelectedMonth{
		{MonthID: "b", MonthFee: 500, RemainingDue: 30},
		{MonthID: "a", MonthFee: 500, RemainingDue: 50},
	}
	allocations := Allocate(reversed, 60)
	require.Len(t, allocations, 2)
	assert.Equal(t, "b", allocations[0].MonthID)
	assert.Equal(t, 30.0, allocations[0].PaidAmount)
	assert.Equal(t, 30.0, allocations[1].PaidAmount)
}

func TestAllocateConservation(t *testing.T) {
	cases := []struct {
		name     string
		selected []SelectedMonth
		amount   float64
	}{
		{"exact", []SelectedMonth{{MonthID: "a", RemainingDue: 100}, {MonthID: "b", RemainingDue: 200}}, 300},
		{"short", []SelectedMonth{{MonthID: "a", RemainingDue: 100}, {MonthID: "b", RemainingDue: 200}}, 120},
		{"excess", []SelectedMonth{{MonthID: "a", RemainingDue: 100}, {MonthID: "b", RemainingDue: 200}}, 999},
		{"single", []SelectedMonth{{MonthID: "a", RemainingDue: 42.5}}, 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var totalDue float64
			for _, m := range tc.selected {
				totalDue += m.RemainingDue
			}
			var allocated float64
			for _, a := range Allocate(tc.selected, tc.amount) {
				allocated += a.PaidAmount
			}
			expected := tc.amount
			if totalDue < expected {
				expected = totalDue
			}
			assert.InDelta(t, expected, allocated, 1e-9)
		})
	}
}

// Overpayment beyond the selected months' dues is intentionally left
// unallocated; the original system records it only on the payment total and
// never carries it forward as credit.
func TestAllocateOverpaymentStaysUnallocated(t *testing.T) {
	allocations := Allocate([]SelectedMonth{{MonthID: "a", MonthFee: 100, RemainingDue: 100}}, 150)
	require.Len(t, allocations, 1)
	assert.Equal(t, 100.0, allocations[0].PaidAmount)
}

func TestAllocateSkipsSettledMonths(t *testing.T) {
	selected := []SelectedMonth{
		{MonthID: "a", RemainingDue: 0},
		{MonthID: "b", RemainingDue: -20},
		{MonthID: "c", RemainingDue: 80, AlreadyPaid: 20},
	}
	allocations := Allocate(selected, 100)
	require.Len(t, allocations, 1)
	assert.Equal(t, "c", allocations[0].MonthID)
	assert.Equal(t, 80.0, allocations[0].PaidAmount)
	assert.Equal(t, 20.0, allocations[0].PreviouslyPaid)
}

func TestAllocateEarlyStop(t *testing.T) {
	selected := []SelectedMonth{
		{MonthID: "a", RemainingDue: 40},
		{MonthID: "b", RemainingDue: 40},
		{MonthID: "c", RemainingDue: 40},
	}
	allocations := Allocate(selected, 40)
	require.Len(t, allocations, 1)
	assert.Equal(t, "a", allocations[0].MonthID)
}

func TestAllocateRejectsNonPositiveAmount(t *testing.T) {
	assert.Nil(t, Allocate([]SelectedMonth{{MonthID: "a", RemainingDue: 10}}, 0))
	assert.Nil(t, Allocate([]SelectedMonth{{MonthID: "a", RemainingDue: 10}}, -5))
}
