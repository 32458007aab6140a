package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	appErrors "github.com/breakthefear/fees-api/pkg/errors"
	"github.com/breakthefear/fees-api/pkg/export"
)

// InvoiceService renders payment receipts as PDF documents.
type InvoiceService struct {
	payments    *PaymentService
	students    ledgerStudentRepository
	monthLookup studentMonthLookup
	exporter    *export.InvoicePDFExporter
	companyName string
	footer      string
	logger      *zap.Logger
}

// NewInvoiceService constructs an InvoiceService.
func NewInvoiceService(payments *PaymentService, students ledgerStudentRepository, monthLookup studentMonthLookup, companyName, footer string, logger *zap.Logger) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceService{
		payments:    payments,
		students:    students,
		monthLookup: monthLookup,
		exporter:    export.NewInvoicePDFExporter(),
		companyName: companyName,
		footer:      footer,
		logger:      logger,
	}
}

// Render produces the PDF receipt for one payment.
func (s *InvoiceService) Render(ctx context.Context, paymentID string) ([]byte, string, error) {
	payment, err := s.payments.Get(ctx, paymentID)
	if err != nil {
		return nil, "", err
	}

	student, err := s.students.FindByID(ctx, payment.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	invoice := export.Invoice{
		InvoiceNumber: payment.InvoiceNumber,
		Date:          payment.CreatedAt.Format("02 Jan 2006"),
		CompanyName:   s.companyName,
		Footer:        s.footer,
		StudentName:   student.Name,
		StudentCode:   student.StudentCode,
		TotalAmount:   payment.TotalAmount,
		PaidAmount:    payment.PaidAmount,
		DueAmount:     payment.DueAmount,
		Reference:     payment.Reference,
		ReceivedBy:    payment.ReceivedBy,
	}
	if student.InstitutionName != nil {
		invoice.Institution = *student.InstitutionName
	}
	if student.BatchName != nil {
		invoice.Batch = *student.BatchName
	}

	for _, alloc := range payment.Allocations {
		invoice.Lines = append(invoice.Lines, export.InvoiceLine{
			Label:      s.monthLabel(ctx, alloc.MonthID),
			MonthFee:   alloc.MonthFee,
			PaidAmount: alloc.PaidAmount,
		})
	}
	// legacy payments have no per-month amounts; list the months with the
	// paid total spread evenly, matching how the ledger reinterprets them
	if payment.IsLegacy() && len(payment.LegacyMonths) > 0 {
		share := payment.PaidAmount / float64(len(payment.LegacyMonths))
		for _, lm := range payment.LegacyMonths {
			invoice.Lines = append(invoice.Lines, export.InvoiceLine{
				Label:      s.monthLabel(ctx, lm.MonthID),
				PaidAmount: share,
			})
		}
	}

	payload, err := s.exporter.Render(invoice)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render invoice")
	}
	return payload, fmt.Sprintf("%s.pdf", payment.InvoiceNumber), nil
}

func (s *InvoiceService) monthLabel(ctx context.Context, monthID string) string {
	month, err := s.monthLookup.FindByID(ctx, monthID)
	if err != nil {
		return monthID
	}
	return month.Name
}
