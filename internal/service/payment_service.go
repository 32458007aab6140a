package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/breakthefear/fees-api/internal/fees"
	"github.com/breakthefear/fees-api/internal/models"
	appErrors "github.com/breakthefear/fees-api/pkg/errors"
)

type paymentRepository interface {
	Create(ctx context.Context, payment *models.Payment, allocations []models.PaymentAllocation) error
	FindByID(ctx context.Context, id string) (*models.PaymentDetail, error)
	List(ctx context.Context, page, pageSize int) ([]models.Payment, int, error)
	Count(ctx context.Context) (int, error)
}

// RecordPaymentRequest is the payload for recording a payment. MonthIDs is
// the set of selected months; allocation order is determined by the
// student's enrollments, not by the order of this slice.
type RecordPaymentRequest struct {
	StudentID  string   `json:"student_id" validate:"required"`
	MonthIDs   []string `json:"month_ids" validate:"required,min=1,dive,required"`
	PaidAmount float64  `json:"paid_amount" validate:"required,gt=0"`
	Reference  string   `json:"reference" validate:"omitempty,max=200"`
}

// PaymentService records payments and serves payment history. Recorded
// payments are immutable.
type PaymentService struct {
	repo      paymentRepository
	ledger    *LedgerService
	activity  *ActivityService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(repo paymentRepository, ledger *LedgerService, activity *ActivityService, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{repo: repo, ledger: ledger, activity: activity, validator: validate, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Record validates the selection against the student's current ledger,
// allocates the paid amount greedily across the selected months and persists
// the resulting payment. Any amount beyond the selected months' dues stays
// unallocated on the payment total.
func (s *PaymentService) Record(ctx context.Context, req RecordPaymentRequest, actor string) (*models.PaymentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}

	student, err := s.ledger.students.FindByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	options, err := s.ledger.PaymentOptions(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}

	selected, err := selectMonths(options, req.MonthIDs)
	if err != nil {
		return nil, err
	}

	var totalDue float64
	for _, month := range selected {
		totalDue += month.RemainingDue
	}
	due := totalDue - req.PaidAmount
	if due < 0 {
		due = 0
	}

	allocations := fees.Allocate(selected, req.PaidAmount)
	rows := make([]models.PaymentAllocation, len(allocations))
	for i, alloc := range allocations {
		rows[i] = models.PaymentAllocation{
			MonthID:        alloc.MonthID,
			MonthFee:       alloc.MonthFee,
			PaidAmount:     alloc.PaidAmount,
			PreviouslyPaid: alloc.PreviouslyPaid,
		}
	}

	invoiceNumber, err := s.nextInvoiceNumber(ctx)
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		StudentID:     req.StudentID,
		InvoiceNumber: invoiceNumber,
		TotalAmount:   totalDue,
		PaidAmount:    req.PaidAmount,
		DueAmount:     due,
		Reference:     req.Reference,
		ReceivedBy:    actor,
		CreatedAt:     s.now(),
	}
	if err := s.repo.Create(ctx, payment, rows); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record payment")
	}

	s.ledger.InvalidateStudent(ctx, req.StudentID)
	s.activity.Record(ctx, models.ActivityPaymentReceived,
		fmt.Sprintf("Payment of %.2f received from %s", req.PaidAmount, student.Name), actor,
		map[string]string{"payment_id": payment.ID, "student_id": req.StudentID, "invoice_number": invoiceNumber})

	return &models.PaymentDetail{Payment: *payment, Allocations: rows}, nil
}

// Get returns one payment with its month rows.
func (s *PaymentService) Get(ctx context.Context, id string) (*models.PaymentDetail, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	return payment, nil
}

// List returns payments across all students, newest first.
func (s *PaymentService) List(ctx context.Context, page, pageSize int) ([]models.Payment, *models.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	payments, total, err := s.repo.List(ctx, page, pageSize)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	return payments, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}, nil
}

// ListByStudent returns the full payment history of one student.
func (s *PaymentService) ListByStudent(ctx context.Context, studentID string) ([]models.PaymentDetail, error) {
	payments, err := s.ledger.payments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	return payments, nil
}

// nextInvoiceNumber builds INV + year + zero-padded month + a 4-digit
// sequence from the total payment count. The year and month are cosmetic;
// the sequence keeps growing across months. The count-based sequence can
// collide under concurrent writes; uniqueness is enforced by the invoice
// number column's unique index.
func (s *PaymentService) nextInvoiceNumber(ctx context.Context) (string, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to derive invoice number")
	}
	now := s.now()
	return fmt.Sprintf("INV%d%02d%04d", now.Year(), int(now.Month()), count+1), nil
}

// selectMonths maps the requested month IDs onto the student's payment
// options, preserving enrollment order with months ascending. Unknown and
// fully paid months are rejected.
func selectMonths(options []models.CoursePaymentOptions, monthIDs []string) ([]fees.SelectedMonth, error) {
	requested := make(map[string]bool, len(monthIDs))
	for _, id := range monthIDs {
		requested[id] = true
	}

	selected := make([]fees.SelectedMonth, 0, len(monthIDs))
	for _, course := range options {
		for _, month := range course.Months {
			if !requested[month.MonthID] {
				continue
			}
			if month.FullyPaid {
				return nil, appErrors.Clone(appErrors.ErrValidation,
					fmt.Sprintf("month %s is already fully paid", month.MonthName))
			}
			selected = append(selected, fees.SelectedMonth{
				MonthID:      month.MonthID,
				MonthFee:     month.MonthFee,
				RemainingDue: month.RemainingDue,
				AlreadyPaid:  month.AlreadyPaid,
			})
			delete(requested, month.MonthID)
		}
	}
	if len(requested) > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "selection contains months outside the student's enrollments")
	}
	return selected, nil
}
