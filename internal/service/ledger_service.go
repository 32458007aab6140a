package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/breakthefear/fees-api/internal/fees"
	"github.com/breakthefear/fees-api/internal/models"
	appErrors "github.com/breakthefear/fees-api/pkg/errors"
)

type ledgerStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
	ListEnrollments(ctx context.Context, studentID string) ([]models.Enrollment, error)
}

type ledgerCourseRepository interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

type ledgerMonthRepository interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Month, error)
}

type ledgerPaymentRepository interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.PaymentDetail, error)
}

// courseMonths is one enrollment's resolved slice of applicable months.
type courseMonths struct {
	course *models.Course
	months []fees.Month
}

// LedgerService computes per-student ledgers and statements. All reads go
// through the engine in internal/fees; this service only assembles inputs
// and caches results.
type LedgerService struct {
	students ledgerStudentRepository
	courses  ledgerCourseRepository
	months   ledgerMonthRepository
	payments ledgerPaymentRepository
	cache    *CacheService
	logger   *zap.Logger
}

// NewLedgerService constructs a LedgerService.
func NewLedgerService(students ledgerStudentRepository, courses ledgerCourseRepository, months ledgerMonthRepository, payments ledgerPaymentRepository, cache *CacheService, logger *zap.Logger) *LedgerService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{students: students, courses: courses, months: months, payments: payments, cache: cache, logger: logger}
}

func ledgerCacheKey(studentID string) string {
	return "ledger:student:" + studentID
}

// Statement returns the student's full statement: one row per applicable
// month across all enrollments, with paid and discount amounts attributed
// and the overall payment status.
func (s *LedgerService) Statement(ctx context.Context, studentID string) (*models.StudentStatement, error) {
	if s.cache.Enabled() {
		var cached models.StudentStatement
		if hit, _ := s.cache.Get(ctx, ledgerCacheKey(studentID), &cached); hit {
			return &cached, nil
		}
	}

	enrolled, ledgers, err := s.resolve(ctx, studentID)
	if err != nil {
		return nil, err
	}

	statement := &models.StudentStatement{StudentID: studentID, Rows: []models.StatementRow{}}
	var totalCovered float64
	for _, cm := range enrolled {
		for _, month := range cm.months {
			row := models.StatementRow{
				MonthID:     month.ID,
				MonthName:   month.Name,
				MonthNumber: month.Number,
				CourseID:    cm.course.ID,
				CourseName:  cm.course.Name,
				MonthFee:    month.Fee,
			}
			if ledger, ok := ledgers[month.ID]; ok {
				row.TotalPaid = ledger.TotalPaid
				row.TotalDiscount = ledger.TotalDiscount
			}
			covered := row.TotalPaid + row.TotalDiscount
			remaining := month.Fee - covered
			if remaining < 0 {
				remaining = 0
			}
			row.RemainingDue = remaining
			row.FullyPaid = remaining <= 0

			statement.Rows = append(statement.Rows, row)
			statement.TotalDue += month.Fee
			statement.TotalPaid += row.TotalPaid
			statement.TotalDiscount += row.TotalDiscount
			statement.UnpaidDue += remaining
			totalCovered += covered
		}
	}
	statement.Status = string(fees.Classify(statement.TotalDue, totalCovered))

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, ledgerCacheKey(studentID), statement, 0); err != nil {
			s.logger.Warn("failed to cache statement", zap.String("student_id", studentID), zap.Error(err))
		}
	}
	return statement, nil
}

// PaymentOptions returns the selectable months per enrolled course. Months
// already covered in full are flagged FullyPaid and must not be selected.
func (s *LedgerService) PaymentOptions(ctx context.Context, studentID string) ([]models.CoursePaymentOptions, error) {
	enrolled, ledgers, err := s.resolve(ctx, studentID)
	if err != nil {
		return nil, err
	}

	options := make([]models.CoursePaymentOptions, 0, len(enrolled))
	for _, cm := range enrolled {
		courseOptions := models.CoursePaymentOptions{
			CourseID:   cm.course.ID,
			CourseName: cm.course.Name,
			Months:     make([]models.PaymentOptionMonth, 0, len(cm.months)),
		}
		for _, month := range cm.months {
			option := models.PaymentOptionMonth{
				MonthID:     month.ID,
				MonthName:   month.Name,
				MonthNumber: month.Number,
				MonthFee:    month.Fee,
			}
			if ledger, ok := ledgers[month.ID]; ok {
				option.AlreadyPaid = ledger.TotalPaid + ledger.TotalDiscount
			}
			remaining := month.Fee - option.AlreadyPaid
			if remaining < 0 {
				remaining = 0
			}
			option.RemainingDue = remaining
			option.FullyPaid = remaining <= 0
			courseOptions.Months = append(courseOptions.Months, option)
		}
		options = append(options, courseOptions)
	}
	return options, nil
}

// Status returns just the classification for a student, used by listings
// and exports.
func (s *LedgerService) Status(ctx context.Context, studentID string) (fees.Status, error) {
	statement, err := s.Statement(ctx, studentID)
	if err != nil {
		return "", err
	}
	return fees.Status(statement.Status), nil
}

// InvalidateStudent drops any cached ledger state for the student.
func (s *LedgerService) InvalidateStudent(ctx context.Context, studentID string) {
	if err := s.cache.Invalidate(ctx, ledgerCacheKey(studentID)+"*"); err != nil {
		s.logger.Warn("failed to invalidate ledger cache", zap.String("student_id", studentID), zap.Error(err))
	}
}

// resolve loads the student's enrollments, resolves applicable months per
// course and aggregates all payments into per-month ledgers.
func (s *LedgerService) resolve(ctx context.Context, studentID string) ([]courseMonths, map[string]*fees.MonthLedger, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	enrollments, err := s.students.ListEnrollments(ctx, studentID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}

	allFees := make(map[string]float64)
	enrolled := make([]courseMonths, 0, len(enrollments))
	for _, enrollment := range enrollments {
		course, err := s.courses.FindByID(ctx, enrollment.CourseID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				// enrollment pointing at a removed course contributes nothing
				continue
			}
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
		}

		scheduleMonths, err := s.months.ListByCourse(ctx, enrollment.CourseID)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fee schedule")
		}

		schedule := make([]fees.Month, len(scheduleMonths))
		for i, m := range scheduleMonths {
			schedule[i] = fees.Month{ID: m.ID, Name: m.Name, Number: m.MonthNumber, Fee: m.Payment}
			allFees[m.ID] = m.Payment
		}

		var endingID string
		if enrollment.EndingMonthID != nil {
			endingID = *enrollment.EndingMonthID
		}
		applicable := fees.ApplicableMonths(fees.Enrollment{
			CourseID:        enrollment.CourseID,
			StartingMonthID: enrollment.StartingMonthID,
			EndingMonthID:   endingID,
		}, schedule)

		enrolled = append(enrolled, courseMonths{course: course, months: applicable})
	}

	paymentDetails, err := s.payments.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payments")
	}

	records := paymentRecords(paymentDetails)
	ledgers := fees.Aggregate(records, func(monthID string) (float64, bool) {
		fee, ok := allFees[monthID]
		return fee, ok
	})
	return enrolled, ledgers, nil
}

// paymentRecords converts persisted payments into engine records. Structured
// payments map allocation rows to lines; legacy payments carry their month
// references and flat discount fields.
func paymentRecords(details []models.PaymentDetail) []fees.PaymentRecord {
	records := make([]fees.PaymentRecord, 0, len(details))
	for _, detail := range details {
		record := fees.PaymentRecord{
			ID:         detail.ID,
			PaidAmount: detail.PaidAmount,
			CreatedAt:  detail.CreatedAt,
		}
		if detail.IsLegacy() {
			record.DiscountAmount = detail.DiscountAmount
			record.DiscountType = detail.DiscountType
			for _, lm := range detail.LegacyMonths {
				record.Months = append(record.Months, lm.MonthID)
				if lm.DiscountApplicable {
					record.DiscountMonths = append(record.DiscountMonths, lm.MonthID)
				}
			}
		} else {
			for _, alloc := range detail.Allocations {
				record.Lines = append(record.Lines, fees.LedgerLine{
					MonthID:        alloc.MonthID,
					MonthFee:       alloc.MonthFee,
					PaidAmount:     alloc.PaidAmount,
					DiscountAmount: alloc.DiscountAmount,
				})
			}
		}
		records = append(records, record)
	}
	return records
}
