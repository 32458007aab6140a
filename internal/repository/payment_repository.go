package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/breakthefear/fees-api/internal/models"
)

// PaymentRepository handles persistence of payments. Payments are append-only;
// there are no update or delete operations.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs the repository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create persists a payment and its allocation rows in one transaction.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment, allocations []models.PaymentAllocation) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create payment: %w", err)
	}
	defer tx.Rollback()

	const insertPayment = `INSERT INTO payments (id, student_id, invoice_number, total_amount,
            paid_amount, due_amount, reference, received_by, discount_amount, discount_type, created_at)
        VALUES (:id, :student_id, :invoice_number, :total_amount,
            :paid_amount, :due_amount, :reference, :received_by, :discount_amount, :discount_type, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insertPayment, payment); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}

	const insertAllocation = `INSERT INTO payment_allocations (id, payment_id, month_id, month_fee,
            paid_amount, previously_paid, discount_amount)
        VALUES (:id, :payment_id, :month_id, :month_fee, :paid_amount, :previously_paid, :discount_amount)`
	for i := range allocations {
		if allocations[i].ID == "" {
			allocations[i].ID = uuid.NewString()
		}
		allocations[i].PaymentID = payment.ID
		if _, err := tx.NamedExecContext(ctx, insertAllocation, allocations[i]); err != nil {
			return fmt.Errorf("create payment allocation: %w", err)
		}
	}
	return tx.Commit()
}

// FindByID returns one payment with its month rows attached.
func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*models.PaymentDetail, error) {
	const query = `SELECT id, student_id, invoice_number, total_amount, paid_amount, due_amount,
            reference, received_by, discount_amount, discount_type, created_at
        FROM payments WHERE id = $1`
	var payment models.PaymentDetail
	if err := r.db.GetContext(ctx, &payment.Payment, query, id); err != nil {
		return nil, err
	}
	if err := r.attachRows(ctx, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// ListByStudent returns all payments of one student, oldest first, with
// allocation and legacy month rows attached.
func (r *PaymentRepository) ListByStudent(ctx context.Context, studentID string) ([]models.PaymentDetail, error) {
	const query = `SELECT id, student_id, invoice_number, total_amount, paid_amount, due_amount,
            reference, received_by, discount_amount, discount_type, created_at
        FROM payments WHERE student_id = $1 ORDER BY created_at ASC`
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, studentID); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}

	details := make([]models.PaymentDetail, len(payments))
	for i := range payments {
		details[i].Payment = payments[i]
		if err := r.attachRows(ctx, &details[i]); err != nil {
			return nil, err
		}
	}
	return details, nil
}

// List returns payments across all students, newest first, paginated.
func (r *PaymentRepository) List(ctx context.Context, page, pageSize int) ([]models.Payment, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM payments`); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}
	const query = `SELECT id, student_id, invoice_number, total_amount, paid_amount, due_amount,
            reference, received_by, discount_amount, discount_type, created_at
        FROM payments ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	var payments []models.Payment
	if err := r.db.SelectContext(ctx, &payments, query, pageSize, (page-1)*pageSize); err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}
	return payments, total, nil
}

// Count returns the total number of recorded payments across all months.
// Used for invoice number generation.
func (r *PaymentRepository) Count(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM payments`
	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count payments: %w", err)
	}
	return count, nil
}

func (r *PaymentRepository) attachRows(ctx context.Context, payment *models.PaymentDetail) error {
	const allocationQuery = `SELECT id, payment_id, month_id, month_fee, paid_amount, previously_paid, discount_amount
        FROM payment_allocations WHERE payment_id = $1`
	if err := r.db.SelectContext(ctx, &payment.Allocations, allocationQuery, payment.ID); err != nil {
		return fmt.Errorf("list payment allocations: %w", err)
	}
	const legacyQuery = `SELECT payment_id, month_id, discount_applicable
        FROM payment_legacy_months WHERE payment_id = $1`
	if err := r.db.SelectContext(ctx, &payment.LegacyMonths, legacyQuery, payment.ID); err != nil {
		return fmt.Errorf("list legacy payment months: %w", err)
	}
	return nil
}
