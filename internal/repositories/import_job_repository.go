package repositories

import (
	"context"
	"errors"
	"fmt"

	"statement-ingest/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrImportJobNotFound = errors.New("import job not found")
)

// importJobRepository implements ImportJobRepositoryInterface
type importJobRepository struct {
	db *gorm.DB
}

// NewImportJobRepository creates a new import job repository
func NewImportJobRepository(db *gorm.DB) ImportJobRepositoryInterface {
	return &importJobRepository{
		db: db,
	}
}

// Create persists a new import job
func (r *importJobRepository) Create(ctx context.Context, job *models.ImportJob) error {
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("failed to create import job: %w", err)
	}
	return nil
}

// Update saves the job's current counters and status
func (r *importJobRepository) Update(ctx context.Context, job *models.ImportJob) error {
	if err := r.db.WithContext(ctx).Save(job).Error; err != nil {
		return fmt.Errorf("failed to update import job: %w", err)
	}
	return nil
}

// GetByID retrieves an import job scoped to its owner
func (r *importJobRepository) GetByID(ctx context.Context, ownerID, jobID uuid.UUID) (*models.ImportJob, error) {
	var job models.ImportJob
	if err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", jobID, ownerID).
		First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrImportJobNotFound
		}
		return nil, fmt.Errorf("failed to get import job: %w", err)
	}
	return &job, nil
}

// ListByOwner retrieves an owner's import jobs, newest first
func (r *importJobRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]models.ImportJob, error) {
	var jobs []models.ImportJob
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to list import jobs: %w", err)
	}
	return jobs, nil
}
