package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/breakthefear/fees-api/internal/models"
)

// StudentRepository handles persistence of students and their enrollments.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

var studentSortColumns = map[string]string{
	"name":         "s.name",
	"student_code": "s.student_code",
	"created_at":   "s.created_at",
}

// List returns students matching the filter with catalog names joined in,
// plus the total row count before pagination. Payment-status filtering is
// not a SQL concern; callers apply it after computing ledgers.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	idx := 1

	appendArg := func(condition string, value interface{}) {
		conditions = append(conditions, fmt.Sprintf(condition, idx))
		args = append(args, value)
		idx++
	}

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		conditions = append(conditions, fmt.Sprintf(
			"(s.name ILIKE $%d OR s.student_code ILIKE $%d OR s.phone ILIKE $%d)", idx, idx, idx))
		args = append(args, pattern)
		idx++
	}
	if filter.InstitutionID != "" {
		appendArg("s.institution_id = $%d", filter.InstitutionID)
	}
	if filter.BatchID != "" {
		appendArg("s.batch_id = $%d", filter.BatchID)
	}
	if filter.Gender != "" {
		appendArg("s.gender = $%d", filter.Gender)
	}
	if filter.CourseID != "" {
		appendArg("EXISTS (SELECT 1 FROM enrollments e WHERE e.student_id = s.id AND e.course_id = $%d)", filter.CourseID)
	}
	if filter.MonthID != "" {
		appendArg(`EXISTS (SELECT 1 FROM enrollments e
            JOIN months sm ON sm.id = e.starting_month_id
            JOIN months tm ON tm.id = $%d AND tm.course_id = e.course_id
            LEFT JOIN months em ON em.id = e.ending_month_id
            WHERE e.student_id = s.id
              AND tm.month_number >= sm.month_number
              AND (em.id IS NULL OR tm.month_number <= em.month_number))`, filter.MonthID)
	}

	where := strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM students s WHERE %s`, where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}

	orderBy, ok := studentSortColumns[filter.SortBy]
	if !ok {
		orderBy = "s.created_at"
	}
	direction := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		direction = "ASC"
	}

	query := fmt.Sprintf(`SELECT s.id, s.student_code, s.name, s.gender, s.phone,
            s.guardian_name, s.guardian_phone, s.address, s.institution_id, s.batch_id,
            s.created_at, s.updated_at, i.name AS institution_name, b.name AS batch_name
        FROM students s
        LEFT JOIN institutions i ON i.id = s.institution_id
        LEFT JOIN batches b ON b.id = s.batch_id
        WHERE %s ORDER BY %s %s LIMIT $%d OFFSET $%d`, where, orderBy, direction, idx, idx+1)
	args = append(args, filter.PageSize, (filter.Page-1)*filter.PageSize)

	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}
	return students, total, nil
}

// FindByID returns one student with catalog names and enrollments attached.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	const query = `SELECT s.id, s.student_code, s.name, s.gender, s.phone,
            s.guardian_name, s.guardian_phone, s.address, s.institution_id, s.batch_id,
            s.created_at, s.updated_at, i.name AS institution_name, b.name AS batch_name
        FROM students s
        LEFT JOIN institutions i ON i.id = s.institution_id
        LEFT JOIN batches b ON b.id = s.batch_id
        WHERE s.id = $1`
	var student models.StudentDetail
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	enrollments, err := r.ListEnrollments(ctx, id)
	if err != nil {
		return nil, err
	}
	student.Enrollments = enrollments
	return &student, nil
}

// ListEnrollments returns the enrollments of one student.
func (r *StudentRepository) ListEnrollments(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	const query = `SELECT id, student_id, course_id, starting_month_id, ending_month_id
        FROM enrollments WHERE student_id = $1`
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, studentID); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// Count returns the total number of registered students across all years.
// Used for student code generation; the count does not account for deleted
// students, so codes can repeat after deletions.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM students`
	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return count, nil
}

// Create persists a student and their enrollments in one transaction.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student, enrollments []models.Enrollment) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	student.CreatedAt = now
	student.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create student: %w", err)
	}
	defer tx.Rollback()

	const insertStudent = `INSERT INTO students (id, student_code, name, gender, phone,
            guardian_name, guardian_phone, address, institution_id, batch_id, created_at, updated_at)
        VALUES (:id, :student_code, :name, :gender, :phone,
            :guardian_name, :guardian_phone, :address, :institution_id, :batch_id, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insertStudent, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	if err := insertEnrollments(ctx, tx, student.ID, enrollments); err != nil {
		return err
	}
	return tx.Commit()
}

// Update modifies a student and replaces their enrollments wholesale.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student, enrollments []models.Enrollment) error {
	student.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update student: %w", err)
	}
	defer tx.Rollback()

	const updateStudent = `UPDATE students SET name = :name, gender = :gender, phone = :phone,
            guardian_name = :guardian_name, guardian_phone = :guardian_phone, address = :address,
            institution_id = :institution_id, batch_id = :batch_id, updated_at = :updated_at
        WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, updateStudent, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM enrollments WHERE student_id = $1`, student.ID); err != nil {
		return fmt.Errorf("clear enrollments: %w", err)
	}
	if err := insertEnrollments(ctx, tx, student.ID, enrollments); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes a student along with their enrollments and payment history.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete student: %w", err)
	}
	defer tx.Rollback()

	statements := []string{
		`DELETE FROM payment_allocations WHERE payment_id IN (SELECT id FROM payments WHERE student_id = $1)`,
		`DELETE FROM payment_legacy_months WHERE payment_id IN (SELECT id FROM payments WHERE student_id = $1)`,
		`DELETE FROM payments WHERE student_id = $1`,
		`DELETE FROM enrollments WHERE student_id = $1`,
		`DELETE FROM students WHERE id = $1`,
	}
	for _, statement := range statements {
		if _, err := tx.ExecContext(ctx, statement, id); err != nil {
			return fmt.Errorf("delete student: %w", err)
		}
	}
	return tx.Commit()
}

func insertEnrollments(ctx context.Context, tx *sqlx.Tx, studentID string, enrollments []models.Enrollment) error {
	const query = `INSERT INTO enrollments (id, student_id, course_id, starting_month_id, ending_month_id)
        VALUES (:id, :student_id, :course_id, :starting_month_id, :ending_month_id)`
	for i := range enrollments {
		if enrollments[i].ID == "" {
			enrollments[i].ID = uuid.NewString()
		}
		enrollments[i].StudentID = studentID
		if _, err := tx.NamedExecContext(ctx, query, enrollments[i]); err != nil {
			return fmt.Errorf("create enrollment: %w", err)
		}
	}
	return nil
}
