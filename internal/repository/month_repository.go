package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/breakthefear/fees-api/internal/models"
)

// MonthRepository handles persistence of course fee-schedule months.
type MonthRepository struct {
	db *sqlx.DB
}

// NewMonthRepository constructs the repository.
func NewMonthRepository(db *sqlx.DB) *MonthRepository {
	return &MonthRepository{db: db}
}

// ListByCourse returns the months of a course ordered by month number.
func (r *MonthRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Month, error) {
	const query = `SELECT id, course_id, name, month_number, payment, created_at, updated_at
        FROM months WHERE course_id = $1 ORDER BY month_number ASC`
	var months []models.Month
	if err := r.db.SelectContext(ctx, &months, query, courseID); err != nil {
		return nil, fmt.Errorf("list months: %w", err)
	}
	return months, nil
}

// FindByID returns a month by its ID.
func (r *MonthRepository) FindByID(ctx context.Context, id string) (*models.Month, error) {
	const query = `SELECT id, course_id, name, month_number, payment, created_at, updated_at FROM months WHERE id = $1`
	var month models.Month
	if err := r.db.GetContext(ctx, &month, query, id); err != nil {
		return nil, err
	}
	return &month, nil
}

// Create persists a new month.
func (r *MonthRepository) Create(ctx context.Context, month *models.Month) error {
	if month.ID == "" {
		month.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	month.CreatedAt = now
	month.UpdatedAt = now
	const query = `INSERT INTO months (id, course_id, name, month_number, payment, created_at, updated_at)
        VALUES (:id, :course_id, :name, :month_number, :payment, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, month); err != nil {
		return fmt.Errorf("create month: %w", err)
	}
	return nil
}

// Update modifies an existing month.
func (r *MonthRepository) Update(ctx context.Context, month *models.Month) error {
	month.UpdatedAt = time.Now().UTC()
	const query = `UPDATE months SET name = :name, month_number = :month_number, payment = :payment, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, month); err != nil {
		return fmt.Errorf("update month: %w", err)
	}
	return nil
}

// Delete removes a month.
func (r *MonthRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM months WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete month: %w", err)
	}
	return nil
}

// CountDependents returns the number of enrollment boundaries and payment
// rows referencing the month.
func (r *MonthRepository) CountDependents(ctx context.Context, id string) (int, error) {
	const query = `SELECT
        (SELECT COUNT(*) FROM enrollments WHERE starting_month_id = $1 OR ending_month_id = $1) +
        (SELECT COUNT(*) FROM payment_allocations WHERE month_id = $1) +
        (SELECT COUNT(*) FROM payment_legacy_months WHERE month_id = $1)`
	var count int
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		return 0, fmt.Errorf("count month dependents: %w", err)
	}
	return count, nil
}
