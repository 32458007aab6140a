package fees

// SelectedMonth is one month chosen for an incoming payment, with its
// remaining due computed from the ledger. The slice order handed to Allocate
// is the allocation priority order.
type SelectedMonth struct {
	MonthID      string
	MonthFee     float64
	RemainingDue float64
	AlreadyPaid  float64
}

// Allocation is one month's share of an incoming payment.
type Allocation struct {
	MonthID        string
	MonthFee       float64
	PaidAmount     float64
	PreviouslyPaid float64
}

// Allocate distributes paidAmount greedily across the selected months in the
// order given: each month takes min(remaining, month.RemainingDue) until the
// amount runs out. Months with no remaining due are skipped. Any amount left
// after every month is satisfied stays unallocated; it is visible only on the
// payment's own paid total.
func Allocate(selected []SelectedMonth, paidAmount float64) []Allocation {
	if paidAmount <= 0 {
		return nil
	}

	allocations := make([]Allocation, 0, len(selected))
	remaining := paidAmount
	for _, month := range selected {
		if remaining <= 0 {
			break
		}
		if month.RemainingDue <= 0 {
			continue
		}

		take := remaining
		if month.RemainingDue < take {
			take = month.RemainingDue
		}

		allocations = append(allocations, Allocation{
			MonthID:        month.MonthID,
			MonthFee:       month.MonthFee,
			PaidAmount:     take,
			PreviouslyPaid: month.AlreadyPaid,
		})
		remaining -= take
	}
	return allocations
}
