package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/breakthefear/fees-api/internal/models"
)

// InstitutionRepository handles persistence of institutions.
type InstitutionRepository struct {
	db *sqlx.DB
}

// NewInstitutionRepository constructs the repository.
func NewInstitutionRepository(db *sqlx.DB) *InstitutionRepository {
	return &InstitutionRepository{db: db}
}

// List returns all institutions ordered by name.
func (r *InstitutionRepository) List(ctx context.Context) ([]models.Institution, error) {
	const query = `SELECT id, name, address, phone, created_at, updated_at FROM institutions ORDER BY name ASC`
	var institutions []models.Institution
	if err := r.db.SelectContext(ctx, &institutions, query); err != nil {
		return nil, fmt.Errorf("list institutions: %w", err)
	}
	return institutions, nil
}

// FindByID returns an institution by its ID.
func (r *InstitutionRepository) FindByID(ctx context.Context, id string) (*models.Institution, error) {
	const query = `SELECT id, name, address, phone, created_at, updated_at FROM institutions WHERE id = $1`
	var institution models.Institution
	if err := r.db.GetContext(ctx, &institution, query, id); err != nil {
		return nil, err
	}
	return &institution, nil
}

// Create persists a new institution.
func (r *InstitutionRepository) Create(ctx context.Context, institution *models.Institution) error {
	if institution.ID == "" {
		institution.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	institution.CreatedAt = now
	institution.UpdatedAt = now
	const query = `INSERT INTO institutions (id, name, address, phone, created_at, updated_at)
        VALUES (:id, :name, :address, :phone, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, institution); err != nil {
		return fmt.Errorf("create institution: %w", err)
	}
	return nil
}

// Update modifies an existing institution.
func (r *InstitutionRepository) Update(ctx context.Context, institution *models.Institution) error {
	institution.UpdatedAt = time.Now().UTC()
	const query = `UPDATE institutions SET name = :name, address = :address, phone = :phone, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, institution); err != nil {
		return fmt.Errorf("update institution: %w", err)
	}
	return nil
}

// Delete removes an institution.
func (r *InstitutionRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM institutions WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete institution: %w", err)
	}
	return nil
}

// CountStudents returns the number of students referencing the institution.
func (r *InstitutionRepository) CountStudents(ctx context.Context, id string) (int, error) {
	const query = `SELECT COUNT(*) FROM students WHERE institution_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		return 0, fmt.Errorf("count institution students: %w", err)
	}
	return count, nil
}
