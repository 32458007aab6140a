package models

import "time"

// Student represents a learner registered with the coaching centre.
type Student struct {
	ID            string    `db:"id" json:"id"`
	StudentCode   string    `db:"student_code" json:"student_code"`
	Name          string    `db:"name" json:"name"`
	Gender        string    `db:"gender" json:"gender"`
	Phone         string    `db:"phone" json:"phone"`
	GuardianName  string    `db:"guardian_name" json:"guardian_name"`
	GuardianPhone string    `db:"guardian_phone" json:"guardian_phone"`
	Address       string    `db:"address" json:"address"`
	InstitutionID string    `db:"institution_id" json:"institution_id"`
	BatchID       string    `db:"batch_id" json:"batch_id"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Enrollment binds a student to a course with a starting month and an
// optional ending month. A nil ending month means the enrollment is
// open-ended.
type Enrollment struct {
	ID              string  `db:"id" json:"id"`
	StudentID       string  `db:"student_id" json:"student_id"`
	CourseID        string  `db:"course_id" json:"course_id"`
	StartingMonthID string  `db:"starting_month_id" json:"starting_month_id"`
	EndingMonthID   *string `db:"ending_month_id" json:"ending_month_id,omitempty"`
}

// StudentDetail contains student information with catalog context.
// PaymentStatus is computed from the ledger, not stored.
type StudentDetail struct {
	Student
	InstitutionName *string      `db:"institution_name" json:"institution_name,omitempty"`
	BatchName       *string      `db:"batch_name" json:"batch_name,omitempty"`
	Enrollments     []Enrollment `json:"enrollments"`
	PaymentStatus   string       `db:"-" json:"payment_status,omitempty"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search        string
	InstitutionID string
	BatchID       string
	CourseID      string
	MonthID       string
	PaymentStatus string
	Gender        string
	Page          int
	PageSize      int
	SortBy        string
	SortOrder     string
}
