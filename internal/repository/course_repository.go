package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/breakthefear/fees-api/internal/models"
)

// CourseRepository handles persistence of courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs the repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns all courses, optionally restricted to one batch.
func (r *CourseRepository) List(ctx context.Context, batchID string) ([]models.Course, error) {
	var courses []models.Course
	if batchID != "" {
		const query = `SELECT id, batch_id, name, created_at, updated_at FROM courses WHERE batch_id = $1 ORDER BY name ASC`
		if err := r.db.SelectContext(ctx, &courses, query, batchID); err != nil {
			return nil, fmt.Errorf("list courses by batch: %w", err)
		}
		return courses, nil
	}
	const query = `SELECT id, batch_id, name, created_at, updated_at FROM courses ORDER BY name ASC`
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// FindByID returns a course by its ID.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	const query = `SELECT id, batch_id, name, created_at, updated_at FROM courses WHERE id = $1`
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// Create persists a new course.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now
	const query = `INSERT INTO courses (id, batch_id, name, created_at, updated_at)
        VALUES (:id, :batch_id, :name, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update modifies an existing course.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	course.UpdatedAt = time.Now().UTC()
	const query = `UPDATE courses SET batch_id = :batch_id, name = :name, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, course); err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return nil
}

// Delete removes a course.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM courses WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return nil
}

// CountDependents returns the number of months and enrollments referencing
// the course.
func (r *CourseRepository) CountDependents(ctx context.Context, id string) (int, error) {
	const query = `SELECT
        (SELECT COUNT(*) FROM months WHERE course_id = $1) +
        (SELECT COUNT(*) FROM enrollments WHERE course_id = $1)`
	var count int
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		return 0, fmt.Errorf("count course dependents: %w", err)
	}
	return count, nil
}
