package models

import "time"

// Month is one billable month of a course's fee schedule. MonthNumber is the
// ordering key; uniqueness within a course is not enforced, so consumers must
// tolerate duplicates and gaps.
type Month struct {
	ID          string    `db:"id" json:"id"`
	CourseID    string    `db:"course_id" json:"course_id"`
	Name        string    `db:"name" json:"name"`
	MonthNumber int       `db:"month_number" json:"month_number"`
	Payment     float64   `db:"payment" json:"payment"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
