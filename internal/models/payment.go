package models

import "time"

// Discount types carried by legacy payment records.
const (
	DiscountTypePercentage = "percentage"
	DiscountTypeFixed      = "fixed"
)

// Payment is an immutable ledger entry. Monetary fields are never updated
// after creation. Structured payments carry allocation rows; payments created
// before the per-month breakdown existed carry legacy month rows plus the
// flat discount fields and are reinterpreted on aggregation.
type Payment struct {
	ID             string    `db:"id" json:"id"`
	StudentID      string    `db:"student_id" json:"student_id"`
	InvoiceNumber  string    `db:"invoice_number" json:"invoice_number"`
	TotalAmount    float64   `db:"total_amount" json:"total_amount"`
	PaidAmount     float64   `db:"paid_amount" json:"paid_amount"`
	DueAmount      float64   `db:"due_amount" json:"due_amount"`
	Reference      string    `db:"reference" json:"reference"`
	ReceivedBy     string    `db:"received_by" json:"received_by"`
	DiscountAmount float64   `db:"discount_amount" json:"discount_amount,omitempty"`
	DiscountType   string    `db:"discount_type" json:"discount_type,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// PaymentAllocation is one month's share of a structured payment.
type PaymentAllocation struct {
	ID             string  `db:"id" json:"id"`
	PaymentID      string  `db:"payment_id" json:"payment_id"`
	MonthID        string  `db:"month_id" json:"month_id"`
	MonthFee       float64 `db:"month_fee" json:"month_fee"`
	PaidAmount     float64 `db:"paid_amount" json:"paid_amount"`
	PreviouslyPaid float64 `db:"previously_paid" json:"previously_paid"`
	DiscountAmount float64 `db:"discount_amount" json:"discount_amount,omitempty"`
}

// PaymentLegacyMonth is one month reference of a legacy payment. The
// discount_applicable flag marks membership of the discountApplicableMonths
// subset from the old schema.
type PaymentLegacyMonth struct {
	PaymentID          string `db:"payment_id" json:"payment_id"`
	MonthID            string `db:"month_id" json:"month_id"`
	DiscountApplicable bool   `db:"discount_applicable" json:"discount_applicable"`
}

// PaymentDetail bundles a payment with its month rows.
type PaymentDetail struct {
	Payment
	Allocations  []PaymentAllocation  `json:"allocations,omitempty"`
	LegacyMonths []PaymentLegacyMonth `json:"legacy_months,omitempty"`
}

// IsLegacy reports whether the payment predates per-month allocations.
func (p *PaymentDetail) IsLegacy() bool {
	return len(p.Allocations) == 0 && len(p.LegacyMonths) > 0
}
