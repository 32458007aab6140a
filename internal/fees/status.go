package fees

// Status classifies a student's overall payment position.
type Status string

const (
	StatusNoFees  Status = "no_fees"
	StatusPaid    Status = "paid"
	StatusPartial Status = "partial"
	StatusUnpaid  Status = "unpaid"
)

// Label returns the human-readable form used in listings and exports.
func (s Status) Label() string {
	switch s {
	case StatusNoFees:
		return "No Fees"
	case StatusPaid:
		return "Fully Paid"
	case StatusPartial:
		return "Partially Paid"
	default:
		return "Unpaid"
	}
}

// Classify derives the status from the total due across all applicable
// months and the total covered (paid plus discount) attributed to them.
func Classify(totalDue, totalCovered float64) Status {
	if totalDue == 0 {
		return StatusNoFees
	}
	if totalDue-totalCovered <= 0 {
		return StatusPaid
	}
	if totalCovered > 0 {
		return StatusPartial
	}
	return StatusUnpaid
}
