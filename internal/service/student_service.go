package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/breakthefear/fees-api/internal/models"
	appErrors "github.com/breakthefear/fees-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
	ListEnrollments(ctx context.Context, studentID string) ([]models.Enrollment, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, student *models.Student, enrollments []models.Enrollment) error
	Update(ctx context.Context, student *models.Student, enrollments []models.Enrollment) error
	Delete(ctx context.Context, id string) error
}

type studentMonthLookup interface {
	FindByID(ctx context.Context, id string) (*models.Month, error)
}

// EnrollmentRequest binds a student to a course within the create/update
// payloads.
type EnrollmentRequest struct {
	CourseID        string  `json:"course_id" validate:"required"`
	StartingMonthID string  `json:"starting_month_id" validate:"required"`
	EndingMonthID   *string `json:"ending_month_id" validate:"omitempty"`
}

// StudentRequest represents payload for creating or updating students.
type StudentRequest struct {
	Name          string              `json:"name" validate:"required,max=200"`
	Gender        string              `json:"gender" validate:"omitempty,oneof=male female other"`
	Phone         string              `json:"phone" validate:"omitempty,max=50"`
	GuardianName  string              `json:"guardian_name" validate:"omitempty,max=200"`
	GuardianPhone string              `json:"guardian_phone" validate:"omitempty,max=50"`
	Address       string              `json:"address" validate:"omitempty,max=500"`
	InstitutionID string              `json:"institution_id" validate:"required"`
	BatchID       string              `json:"batch_id" validate:"required"`
	Enrollments   []EnrollmentRequest `json:"enrollments" validate:"required,min=1,dive"`
}

// StudentService orchestrates student registration, enrollment and listing.
type StudentService struct {
	repo         studentRepository
	institutions institutionRepository
	batches      batchRepository
	monthLookup  studentMonthLookup
	ledger       *LedgerService
	activity     *ActivityService
	validator    *validator.Validate
	logger       *zap.Logger
	now          func() time.Time
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentRepository, institutions institutionRepository, batches batchRepository, monthLookup studentMonthLookup, ledger *LedgerService, activity *ActivityService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		repo:         repo,
		institutions: institutions,
		batches:      batches,
		monthLookup:  monthLookup,
		ledger:       ledger,
		activity:     activity,
		validator:    validate,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// List returns students matching the filter, each annotated with their
// payment status. When the filter names a status, the page is narrowed to
// matching students after the ledger computation.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	annotated := make([]models.StudentDetail, 0, len(students))
	for i := range students {
		status, err := s.ledger.Status(ctx, students[i].ID)
		if err != nil {
			s.logger.Warn("failed to compute payment status", zap.String("student_id", students[i].ID), zap.Error(err))
		} else {
			students[i].PaymentStatus = string(status)
		}
		if filter.PaymentStatus != "" && students[i].PaymentStatus != filter.PaymentStatus {
			continue
		}
		annotated = append(annotated, students[i])
	}

	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return annotated, pagination, nil
}

// Get returns one student with enrollments and payment status.
func (s *StudentService) Get(ctx context.Context, id string) (*models.StudentDetail, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if status, err := s.ledger.Status(ctx, id); err == nil {
		student.PaymentStatus = string(status)
	}
	return student, nil
}

// Create registers a new student with their enrollments. The student code
// is derived from the registration year and the current year's student
// count; since the count ignores deletions the code is not guaranteed
// unique across history.
func (s *StudentService) Create(ctx context.Context, req StudentRequest, actor string) (*models.StudentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}
	if err := s.ensureCatalogRefs(ctx, req); err != nil {
		return nil, err
	}
	enrollments, err := s.buildEnrollments(ctx, req.Enrollments)
	if err != nil {
		return nil, err
	}

	code, err := s.nextStudentCode(ctx)
	if err != nil {
		return nil, err
	}

	student := &models.Student{
		StudentCode:   code,
		Name:          strings.TrimSpace(req.Name),
		Gender:        req.Gender,
		Phone:         strings.TrimSpace(req.Phone),
		GuardianName:  strings.TrimSpace(req.GuardianName),
		GuardianPhone: strings.TrimSpace(req.GuardianPhone),
		Address:       strings.TrimSpace(req.Address),
		InstitutionID: req.InstitutionID,
		BatchID:       req.BatchID,
	}
	if err := s.repo.Create(ctx, student, enrollments); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	s.activity.Record(ctx, models.ActivityStudentAdded,
		fmt.Sprintf("Student %s (%s) registered", student.Name, student.StudentCode), actor,
		map[string]string{"student_id": student.ID})

	return &models.StudentDetail{Student: *student, Enrollments: enrollments}, nil
}

// Update modifies a student and replaces their enrollments wholesale.
func (s *StudentService) Update(ctx context.Context, id string, req StudentRequest, actor string) (*models.StudentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureCatalogRefs(ctx, req); err != nil {
		return nil, err
	}
	enrollments, err := s.buildEnrollments(ctx, req.Enrollments)
	if err != nil {
		return nil, err
	}

	student := existing.Student
	student.Name = strings.TrimSpace(req.Name)
	student.Gender = req.Gender
	student.Phone = strings.TrimSpace(req.Phone)
	student.GuardianName = strings.TrimSpace(req.GuardianName)
	student.GuardianPhone = strings.TrimSpace(req.GuardianPhone)
	student.Address = strings.TrimSpace(req.Address)
	student.InstitutionID = req.InstitutionID
	student.BatchID = req.BatchID

	if err := s.repo.Update(ctx, &student, enrollments); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}

	s.ledger.InvalidateStudent(ctx, id)
	s.activity.Record(ctx, models.ActivityStudentUpdated,
		fmt.Sprintf("Student %s (%s) updated", student.Name, student.StudentCode), actor,
		map[string]string{"student_id": id})

	return &models.StudentDetail{Student: student, Enrollments: enrollments}, nil
}

// Delete removes a student together with their enrollments and payments.
func (s *StudentService) Delete(ctx context.Context, id string, actor string) error {
	student, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}

	s.ledger.InvalidateStudent(ctx, id)
	s.activity.Record(ctx, models.ActivityStudentDeleted,
		fmt.Sprintf("Student %s (%s) removed", student.Name, student.StudentCode), actor,
		map[string]string{"student_id": id})
	return nil
}

// nextStudentCode builds BTF + 2-digit year + a 4-digit sequence from the
// total student count, which keeps growing across years. The year in the
// code is cosmetic; only the count drives the sequence.
func (s *StudentService) nextStudentCode(ctx context.Context) (string, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to derive student code")
	}
	return fmt.Sprintf("BTF%02d%04d", s.now().Year()%100, count+1), nil
}

func (s *StudentService) ensureCatalogRefs(ctx context.Context, req StudentRequest) error {
	if _, err := s.institutions.FindByID(ctx, req.InstitutionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "institution does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load institution")
	}
	if _, err := s.batches.FindByID(ctx, req.BatchID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "batch does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	return nil
}

// buildEnrollments validates that each enrollment's boundary months belong
// to its course.
func (s *StudentService) buildEnrollments(ctx context.Context, requests []EnrollmentRequest) ([]models.Enrollment, error) {
	enrollments := make([]models.Enrollment, 0, len(requests))
	for _, req := range requests {
		starting, err := s.monthLookup.FindByID(ctx, req.StartingMonthID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "starting month does not exist")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load starting month")
		}
		if starting.CourseID != req.CourseID {
			return nil, appErrors.Clone(appErrors.ErrValidation, "starting month belongs to a different course")
		}

		if req.EndingMonthID != nil {
			ending, err := s.monthLookup.FindByID(ctx, *req.EndingMonthID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					return nil, appErrors.Clone(appErrors.ErrValidation, "ending month does not exist")
				}
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load ending month")
			}
			if ending.CourseID != req.CourseID {
				return nil, appErrors.Clone(appErrors.ErrValidation, "ending month belongs to a different course")
			}
			if ending.MonthNumber < starting.MonthNumber {
				return nil, appErrors.Clone(appErrors.ErrValidation, "ending month precedes starting month")
			}
		}

		enrollments = append(enrollments, models.Enrollment{
			CourseID:        req.CourseID,
			StartingMonthID: req.StartingMonthID,
			EndingMonthID:   req.EndingMonthID,
		})
	}
	return enrollments, nil
}
