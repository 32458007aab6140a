package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/breakthefear/fees-api/internal/fees"
	"github.com/breakthefear/fees-api/internal/models"
	appErrors "github.com/breakthefear/fees-api/pkg/errors"
	"github.com/breakthefear/fees-api/pkg/export"
)

// exportPageSize bounds a single export run.
const exportPageSize = 10000

// ExportService renders student listings as CSV downloads.
type ExportService struct {
	students *StudentService
	exporter *export.CSVExporter
	logger   *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(students *StudentService, exporter *export.CSVExporter, logger *zap.Logger) *ExportService {
	if exporter == nil {
		exporter = export.NewCSVExporter()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{students: students, exporter: exporter, logger: logger}
}

// ExportStudents renders the filtered student list as CSV, including each
// student's payment status label.
func (s *ExportService) ExportStudents(ctx context.Context, filter models.StudentFilter) ([]byte, string, error) {
	filter.Page = 1
	filter.PageSize = exportPageSize

	students, _, err := s.students.List(ctx, filter)
	if err != nil {
		return nil, "", err
	}

	dataset := export.Dataset{
		Headers: []string{"Student Code", "Name", "Gender", "Phone", "Guardian", "Guardian Phone", "Institution", "Batch", "Payment Status"},
		Rows:    make([]map[string]string, 0, len(students)),
	}
	for _, student := range students {
		row := map[string]string{
			"Student Code":   student.StudentCode,
			"Name":           student.Name,
			"Gender":         student.Gender,
			"Phone":          student.Phone,
			"Guardian":       student.GuardianName,
			"Guardian Phone": student.GuardianPhone,
			"Payment Status": fees.Status(student.PaymentStatus).Label(),
		}
		if student.InstitutionName != nil {
			row["Institution"] = *student.InstitutionName
		}
		if student.BatchName != nil {
			row["Batch"] = *student.BatchName
		}
		dataset.Rows = append(dataset.Rows, row)
	}

	payload, err := s.exporter.Render(dataset)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	filename := fmt.Sprintf("students-%s.csv", time.Now().UTC().Format("20060102-150405"))
	return payload, filename, nil
}
