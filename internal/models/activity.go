package models

import "time"

// Activity types recorded by the system.
const (
	ActivityPaymentReceived    = "payment_received"
	ActivityStudentAdded       = "student_added"
	ActivityStudentUpdated     = "student_updated"
	ActivityStudentDeleted     = "student_deleted"
	ActivityInstitutionCreated = "institution_created"
	ActivityInstitutionUpdated = "institution_updated"
	ActivityInstitutionDeleted = "institution_deleted"
	ActivityBatchCreated       = "batch_created"
	ActivityBatchUpdated       = "batch_updated"
	ActivityBatchDeleted       = "batch_deleted"
	ActivityCourseCreated      = "course_created"
	ActivityCourseUpdated      = "course_updated"
	ActivityCourseDeleted      = "course_deleted"
	ActivityMonthCreated       = "month_created"
	ActivityMonthUpdated       = "month_updated"
	ActivityMonthDeleted       = "month_deleted"
)

// Activity is one entry in the append-only activity trail. Data holds a
// small JSON object referencing the affected records.
type Activity struct {
	ID          string    `db:"id" json:"id"`
	Type        string    `db:"type" json:"type"`
	Description string    `db:"description" json:"description"`
	Data        []byte    `db:"data" json:"data,omitempty"`
	Actor       string    `db:"actor" json:"actor"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
