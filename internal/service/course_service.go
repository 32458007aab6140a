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

type courseRepository interface {
	List(ctx context.Context, batchID string) ([]models.Course, error)
	FindByID(ctx context.Context, id string) (*models.Course, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
	CountDependents(ctx context.Context, id string) (int, error)
}

type courseBatchLookup interface {
	FindByID(ctx context.Context, id string) (*models.Batch, error)
}

// CourseRequest represents payload for creating or updating courses.
type CourseRequest struct {
	BatchID string `json:"batch_id" validate:"required"`
	Name    string `json:"name" validate:"required,max=200"`
}

// CourseService orchestrates course operations.
type CourseService struct {
	repo      courseRepository
	batches   courseBatchLookup
	activity  *ActivityService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs a CourseService.
func NewCourseService(repo courseRepository, batches courseBatchLookup, activity *ActivityService, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{repo: repo, batches: batches, activity: activity, validator: validate, logger: logger}
}

// List returns courses, optionally filtered by batch.
func (s *CourseService) List(ctx context.Context, batchID string) ([]models.Course, error) {
	courses, err := s.repo.List(ctx, batchID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

// Get returns a course by id.
func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Create registers a new course under an existing batch.
func (s *CourseService) Create(ctx context.Context, req CourseRequest, actor string) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}
	if err := s.ensureBatchExists(ctx, req.BatchID); err != nil {
		return nil, err
	}

	course := &models.Course{BatchID: req.BatchID, Name: strings.TrimSpace(req.Name)}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}

	s.activity.Record(ctx, models.ActivityCourseCreated,
		fmt.Sprintf("Course %q added", course.Name), actor,
		map[string]string{"course_id": course.ID, "batch_id": course.BatchID})
	return course, nil
}

// Update modifies an existing course.
func (s *CourseService) Update(ctx context.Context, id string, req CourseRequest, actor string) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid course payload")
	}

	course, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureBatchExists(ctx, req.BatchID); err != nil {
		return nil, err
	}

	course.BatchID = req.BatchID
	course.Name = strings.TrimSpace(req.Name)
	if err := s.repo.Update(ctx, course); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}

	s.activity.Record(ctx, models.ActivityCourseUpdated,
		fmt.Sprintf("Course %q updated", course.Name), actor,
		map[string]string{"course_id": course.ID})
	return course, nil
}

// Delete removes a course unless months or enrollments still reference it.
func (s *CourseService) Delete(ctx context.Context, id string, actor string) error {
	course, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.repo.CountDependents(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check course usage")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrReferentialIntegrity,
			fmt.Sprintf("course has %d dependent records", count))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}

	s.activity.Record(ctx, models.ActivityCourseDeleted,
		fmt.Sprintf("Course %q removed", course.Name), actor,
		map[string]string{"course_id": id})
	return nil
}

func (s *CourseService) ensureBatchExists(ctx context.Context, batchID string) error {
	if _, err := s.batches.FindByID(ctx, batchID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "batch does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	return nil
}
