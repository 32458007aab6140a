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

type batchRepository interface {
	List(ctx context.Context) ([]models.Batch, error)
	FindByID(ctx context.Context, id string) (*models.Batch, error)
	Create(ctx context.Context, batch *models.Batch) error
	Update(ctx context.Context, batch *models.Batch) error
	Delete(ctx context.Context, id string) error
	CountCourses(ctx context.Context, id string) (int, error)
}

// BatchRequest represents payload for creating or updating batches.
type BatchRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

// BatchService orchestrates batch operations.
type BatchService struct {
	repo      batchRepository
	activity  *ActivityService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBatchService constructs a BatchService.
func NewBatchService(repo batchRepository, activity *ActivityService, validate *validator.Validate, logger *zap.Logger) *BatchService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchService{repo: repo, activity: activity, validator: validate, logger: logger}
}

// List returns all batches.
func (s *BatchService) List(ctx context.Context) ([]models.Batch, error) {
	batches, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list batches")
	}
	return batches, nil
}

// Get returns a batch by id.
func (s *BatchService) Get(ctx context.Context, id string) (*models.Batch, error) {
	batch, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "batch not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load batch")
	}
	return batch, nil
}

// Create registers a new batch.
func (s *BatchService) Create(ctx context.Context, req BatchRequest, actor string) (*models.Batch, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch payload")
	}

	batch := &models.Batch{Name: strings.TrimSpace(req.Name)}
	if err := s.repo.Create(ctx, batch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create batch")
	}

	s.activity.Record(ctx, models.ActivityBatchCreated,
		fmt.Sprintf("Batch %q added", batch.Name), actor,
		map[string]string{"batch_id": batch.ID})
	return batch, nil
}

// Update modifies an existing batch.
func (s *BatchService) Update(ctx context.Context, id string, req BatchRequest, actor string) (*models.Batch, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid batch payload")
	}

	batch, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	batch.Name = strings.TrimSpace(req.Name)
	if err := s.repo.Update(ctx, batch); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update batch")
	}

	s.activity.Record(ctx, models.ActivityBatchUpdated,
		fmt.Sprintf("Batch %q updated", batch.Name), actor,
		map[string]string{"batch_id": batch.ID})
	return batch, nil
}

// Delete removes a batch unless courses still reference it.
func (s *BatchService) Delete(ctx context.Context, id string, actor string) error {
	batch, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.repo.CountCourses(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check batch usage")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrReferentialIntegrity,
			fmt.Sprintf("batch has %d courses", count))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete batch")
	}

	s.activity.Record(ctx, models.ActivityBatchDeleted,
		fmt.Sprintf("Batch %q removed", batch.Name), actor,
		map[string]string{"batch_id": id})
	return nil
}
