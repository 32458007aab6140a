package models

// StatementRow is one applicable month on a student's statement, with the
// amounts attributed to it so far. RemainingDue is clamped at zero for
// display.
type StatementRow struct {
	MonthID       string  `json:"month_id"`
	MonthName     string  `json:"month_name"`
	MonthNumber   int     `json:"month_number"`
	CourseID      string  `json:"course_id"`
	CourseName    string  `json:"course_name"`
	MonthFee      float64 `json:"month_fee"`
	TotalPaid     float64 `json:"total_paid"`
	TotalDiscount float64 `json:"total_discount"`
	RemainingDue  float64 `json:"remaining_due"`
	FullyPaid     bool    `json:"fully_paid"`
}

// StudentStatement aggregates a student's dues across all enrollments.
type StudentStatement struct {
	StudentID     string         `json:"student_id"`
	Rows          []StatementRow `json:"rows"`
	TotalDue      float64        `json:"total_due"`
	TotalPaid     float64        `json:"total_paid"`
	TotalDiscount float64        `json:"total_discount"`
	UnpaidDue     float64        `json:"unpaid_due"`
	Status        string         `json:"status"`
}

// PaymentOptionMonth is one selectable month when recording a payment.
// Fully paid months are reported checked-and-disabled: they appear in the
// options but must not be sent back in the selection.
type PaymentOptionMonth struct {
	MonthID      string  `json:"month_id"`
	MonthName    string  `json:"month_name"`
	MonthNumber  int     `json:"month_number"`
	MonthFee     float64 `json:"month_fee"`
	AlreadyPaid  float64 `json:"already_paid"`
	RemainingDue float64 `json:"remaining_due"`
	FullyPaid    bool    `json:"fully_paid"`
}

// CoursePaymentOptions groups payment options per enrolled course.
type CoursePaymentOptions struct {
	CourseID   string               `json:"course_id"`
	CourseName string               `json:"course_name"`
	Months     []PaymentOptionMonth `json:"months"`
}
