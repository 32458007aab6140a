package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"github.com/breakthefear/fees-api/internal/models"
	appErrors "github.com/breakthefear/fees-api/pkg/errors"
)

type activityRepository interface {
	Create(ctx context.Context, activity *models.Activity) error
	List(ctx context.Context, limit int) ([]models.Activity, error)
}

// ActivityService maintains the recent-activity trail. Recording is
// best-effort: a failed write is logged and never fails the triggering
// operation.
type ActivityService struct {
	repo   activityRepository
	logger *zap.Logger
}

// NewActivityService constructs an ActivityService.
func NewActivityService(repo activityRepository, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{repo: repo, logger: logger}
}

// Record appends an activity entry. Data may be nil.
func (s *ActivityService) Record(ctx context.Context, activityType, description, actor string, data interface{}) {
	var payload []byte
	if data != nil {
		var err error
		payload, err = json.Marshal(data)
		if err != nil {
			s.logger.Warn("failed to marshal activity data", zap.String("type", activityType), zap.Error(err))
		}
	}

	activity := &models.Activity{
		Type:        activityType,
		Description: description,
		Data:        payload,
		Actor:       actor,
	}
	if err := s.repo.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to record activity", zap.String("type", activityType), zap.Error(err))
	}
}

// List returns the most recent activity entries, newest first.
func (s *ActivityService) List(ctx context.Context, limit int) ([]models.Activity, error) {
	activities, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list activities")
	}
	return activities, nil
}
