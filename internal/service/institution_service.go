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

type institutionRepository interface {
	List(ctx context.Context) ([]models.Institution, error)
	FindByID(ctx context.Context, id string) (*models.Institution, error)
	Create(ctx context.Context, institution *models.Institution) error
	Update(ctx context.Context, institution *models.Institution) error
	Delete(ctx context.Context, id string) error
	CountStudents(ctx context.Context, id string) (int, error)
}

// InstitutionRequest represents payload for creating or updating institutions.
type InstitutionRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Address string `json:"address" validate:"omitempty,max=500"`
	Phone   string `json:"phone" validate:"omitempty,max=50"`
}

// InstitutionService orchestrates institution operations.
type InstitutionService struct {
	repo      institutionRepository
	activity  *ActivityService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewInstitutionService constructs an InstitutionService.
func NewInstitutionService(repo institutionRepository, activity *ActivityService, validate *validator.Validate, logger *zap.Logger) *InstitutionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstitutionService{repo: repo, activity: activity, validator: validate, logger: logger}
}

// List returns all institutions.
func (s *InstitutionService) List(ctx context.Context) ([]models.Institution, error) {
	institutions, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list institutions")
	}
	return institutions, nil
}

// Get returns an institution by id.
func (s *InstitutionService) Get(ctx context.Context, id string) (*models.Institution, error) {
	institution, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "institution not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load institution")
	}
	return institution, nil
}

// Create registers a new institution.
func (s *InstitutionService) Create(ctx context.Context, req InstitutionRequest, actor string) (*models.Institution, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid institution payload")
	}

	institution := &models.Institution{
		Name:    strings.TrimSpace(req.Name),
		Address: strings.TrimSpace(req.Address),
		Phone:   strings.TrimSpace(req.Phone),
	}
	if err := s.repo.Create(ctx, institution); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create institution")
	}

	s.activity.Record(ctx, models.ActivityInstitutionCreated,
		fmt.Sprintf("Institution %q added", institution.Name), actor,
		map[string]string{"institution_id": institution.ID})
	return institution, nil
}

// Update modifies an existing institution.
func (s *InstitutionService) Update(ctx context.Context, id string, req InstitutionRequest, actor string) (*models.Institution, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid institution payload")
	}

	institution, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	institution.Name = strings.TrimSpace(req.Name)
	institution.Address = strings.TrimSpace(req.Address)
	institution.Phone = strings.TrimSpace(req.Phone)
	if err := s.repo.Update(ctx, institution); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update institution")
	}

	s.activity.Record(ctx, models.ActivityInstitutionUpdated,
		fmt.Sprintf("Institution %q updated", institution.Name), actor,
		map[string]string{"institution_id": institution.ID})
	return institution, nil
}

// Delete removes an institution unless students still reference it.
func (s *InstitutionService) Delete(ctx context.Context, id string, actor string) error {
	institution, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.repo.CountStudents(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check institution usage")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrReferentialIntegrity,
			fmt.Sprintf("institution has %d students", count))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete institution")
	}

	s.activity.Record(ctx, models.ActivityInstitutionDeleted,
		fmt.Sprintf("Institution %q removed", institution.Name), actor,
		map[string]string{"institution_id": id})
	return nil
}
