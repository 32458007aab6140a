package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/breakthefear/fees-api/internal/models"
	appErrors "github.com/breakthefear/fees-api/pkg/errors"
)

type monthRepository interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Month, error)
	FindByID(ctx context.Context, id string) (*models.Month, error)
	Create(ctx context.Context, month *models.Month) error
	Update(ctx context.Context, month *models.Month) error
	Delete(ctx context.Context, id string) error
	CountDependents(ctx context.Context, id string) (int, error)
}

type monthCourseLookup interface {
	FindByID(ctx context.Context, id string) (*models.Course, error)
}

// MonthRequest represents payload for creating or updating fee-schedule
// months. MonthNumber orders the schedule; duplicates are accepted.
type MonthRequest struct {
	CourseID    string  `json:"course_id" validate:"required"`
	Name        string  `json:"name" validate:"required,max=100"`
	MonthNumber int     `json:"month_number" validate:"required,min=1"`
	Payment     float64 `json:"payment" validate:"min=0"`
}

// MonthService orchestrates fee-schedule month operations.
type MonthService struct {
	repo      monthRepository
	courses   monthCourseLookup
	activity  *ActivityService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMonthService constructs a MonthService.
func NewMonthService(repo monthRepository, courses monthCourseLookup, activity *ActivityService, validate *validator.Validate, logger *zap.Logger) *MonthService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MonthService{repo: repo, courses: courses, activity: activity, validator: validate, logger: logger}
}

// ListByCourse returns a course's months ordered by month number.
func (s *MonthService) ListByCourse(ctx context.Context, courseID string) ([]models.Month, error) {
	months, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list months")
	}
	return months, nil
}

// Get returns a month by id.
func (s *MonthService) Get(ctx context.Context, id string) (*models.Month, error) {
	month, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "month not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load month")
	}
	return month, nil
}

// Create adds a month to a course's fee schedule.
func (s *MonthService) Create(ctx context.Context, req MonthRequest, actor string) (*models.Month, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid month payload")
	}
	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "course does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}

	month := &models.Month{
		CourseID:    req.CourseID,
		Name:        strings.TrimSpace(req.Name),
		MonthNumber: req.MonthNumber,
		Payment:     req.Payment,
	}
	if err := s.repo.Create(ctx, month); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create month")
	}

	s.activity.Record(ctx, models.ActivityMonthCreated,
		fmt.Sprintf("Month %q added to fee schedule", month.Name), actor,
		map[string]string{"month_id": month.ID, "course_id": month.CourseID})
	return month, nil
}

// Update modifies an existing month. Fee changes affect future ledger
// computations only through the month's current fee; recorded payment lines
// keep the fee they were created with.
func (s *MonthService) Update(ctx context.Context, id string, req MonthRequest, actor string) (*models.Month, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid month payload")
	}

	month, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	month.Name = strings.TrimSpace(req.Name)
	month.MonthNumber = req.MonthNumber
	month.Payment = req.Payment
	if err := s.repo.Update(ctx, month); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update month")
	}

	s.activity.Record(ctx, models.ActivityMonthUpdated,
		fmt.Sprintf("Month %q updated", month.Name), actor,
		map[string]string{"month_id": month.ID})
	return month, nil
}

// Delete removes a month unless enrollments or payment rows still
// reference it.
func (s *MonthService) Delete(ctx context.Context, id string, actor string) error {
	month, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.repo.CountDependents(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check month usage")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrReferentialIntegrity,
			fmt.Sprintf("month has %d dependent records", count))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete month")
	}

	s.activity.Record(ctx, models.ActivityMonthDeleted,
		fmt.Sprintf("Month %q removed", month.Name), actor,
		map[string]string{"month_id": id})
	return nil
}
