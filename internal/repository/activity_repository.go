package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/breakthefear/fees-api/internal/models"
)

// activityKeep is the number of recent entries retained in the trail.
const activityKeep = 100

// ActivityRepository handles persistence of the activity trail.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs the repository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Create appends an activity entry and trims the trail to the most recent
// entries in one transaction.
func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create activity: %w", err)
	}
	defer tx.Rollback()

	const insert = `INSERT INTO activities (id, type, description, data, actor, created_at)
        VALUES (:id, :type, :description, :data, :actor, :created_at)`
	if _, err := tx.NamedExecContext(ctx, insert, activity); err != nil {
		return fmt.Errorf("create activity: %w", err)
	}

	const trim = `DELETE FROM activities WHERE id NOT IN (
        SELECT id FROM activities ORDER BY created_at DESC LIMIT $1)`
	if _, err := tx.ExecContext(ctx, trim, activityKeep); err != nil {
		return fmt.Errorf("trim activities: %w", err)
	}
	return tx.Commit()
}

// List returns the most recent activity entries, newest first.
func (r *ActivityRepository) List(ctx context.Context, limit int) ([]models.Activity, error) {
	if limit <= 0 || limit > activityKeep {
		limit = activityKeep
	}
	const query = `SELECT id, type, description, data, actor, created_at
        FROM activities ORDER BY created_at DESC LIMIT $1`
	var activities []models.Activity
	if err := r.db.SelectContext(ctx, &activities, query, limit); err != nil {
		return nil, fmt.Errorf("list activities: %w", err)
	}
	return activities, nil
}
