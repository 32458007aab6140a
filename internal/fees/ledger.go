package fees

import "time"

// LedgerLine is the normalized per-month contribution of a single payment.
// Structured payments carry these directly; legacy payments are rebuilt into
// them by Normalize.
type LedgerLine struct {
	MonthID        string
	MonthFee       float64
	PaidAmount     float64
	DiscountAmount float64
}

// PaymentRecord is the engine's view of one persisted payment. Exactly one
// shape is populated: Lines for structured payments, Months (plus the flat
// discount fields) for legacy ones.
type PaymentRecord struct {
	ID         string
	PaidAmount float64
	CreatedAt  time.Time

	Lines []LedgerLine

	Months         []string
	DiscountAmount float64
	DiscountType   string
	DiscountMonths []string
}

// IsLegacy reports whether the record lacks a per-month breakdown.
func (p PaymentRecord) IsLegacy() bool {
	return len(p.Lines) == 0 && len(p.Months) > 0
}

// Entry records one payment's contribution to a month.
type Entry struct {
	PaymentID      string
	PaidAmount     float64
	DiscountAmount float64
	Date           time.Time
}

// MonthLedger accumulates everything attributed to one month.
type MonthLedger struct {
	TotalPaid     float64
	TotalDiscount float64
	MonthFee      float64
	Entries       []Entry
}

// RemainingDue is the month's fee minus everything attributed so far. The
// result may be negative; callers treating it as an allocation target must
// regard non-positive values as "fully paid".
func (l *MonthLedger) RemainingDue() float64 {
	return l.MonthFee - (l.TotalPaid + l.TotalDiscount)
}

// FeeLookup resolves a month's fee amount. ok is false for unknown months,
// which then contribute nothing (absent catalog rows are not an error).
type FeeLookup func(monthID string) (float64, bool)

// Normalize flattens a payment of either shape into ledger lines.
//
// Legacy payments split PaidAmount evenly across their months. The discount
// is reconstructed per month: with a non-empty applicable-months subset only
// subset members receive it (fixed amounts divided by the subset size); with
// no subset every month receives it (fixed amounts divided by the total month
// count). Percentage discounts always apply to the month's fee.
func Normalize(p PaymentRecord, feeOf FeeLookup) []LedgerLine {
	if len(p.Lines) > 0 {
		return p.Lines
	}
	if len(p.Months) == 0 {
		return nil
	}

	share := p.PaidAmount / float64(len(p.Months))
	lines := make([]LedgerLine, 0, len(p.Months))
	for _, monthID := range p.Months {
		fee, ok := feeOf(monthID)
		if !ok {
			continue
		}
		lines = append(lines, LedgerLine{
			MonthID:        monthID,
			MonthFee:       fee,
			PaidAmount:     share,
			DiscountAmount: legacyDiscount(p, monthID, fee),
		})
	}
	return lines
}

func legacyDiscount(p PaymentRecord, monthID string, fee float64) float64 {
	if p.DiscountAmount <= 0 {
		return 0
	}
	if len(p.DiscountMonths) > 0 {
		if !containsID(p.DiscountMonths, monthID) {
			return 0
		}
		if p.DiscountType == "percentage" {
			return fee * p.DiscountAmount / 100
		}
		return p.DiscountAmount / float64(len(p.DiscountMonths))
	}
	if p.DiscountType == "percentage" {
		return fee * p.DiscountAmount / 100
	}
	return p.DiscountAmount / float64(len(p.Months))
}

// Aggregate folds all of a student's payments into per-month ledgers. The
// result is independent of the input order of payments; entries within a
// month keep payment order. MonthFee is taken from the first line seen for a
// month.
func Aggregate(payments []PaymentRecord, feeOf FeeLookup) map[string]*MonthLedger {
	ledgers := make(map[string]*MonthLedger)
	for _, p := range payments {
		for _, line := range Normalize(p, feeOf) {
			ledger, ok := ledgers[line.MonthID]
			if !ok {
				ledger = &MonthLedger{MonthFee: line.MonthFee}
				ledgers[line.MonthID] = ledger
			}
			ledger.TotalPaid += line.PaidAmount
			ledger.TotalDiscount += line.DiscountAmount
			ledger.Entries = append(ledger.Entries, Entry{
				PaymentID:      p.ID,
				PaidAmount:     line.PaidAmount,
				DiscountAmount: line.DiscountAmount,
				Date:           p.CreatedAt,
			})
		}
	}
	return ledgers
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
