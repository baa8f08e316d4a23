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
	ErrEmptyBatch = errors.New("transaction batch is empty")
)

// transactionRepository implements TransactionRepositoryInterface
type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) TransactionRepositoryInterface {
	return &transactionRepository{
		db: db,
	}
}

// InsertBatch persists one chunk of transactions atomically
func (r *transactionRepository) InsertBatch(ctx context.Context, transactions []models.Transaction) (int, error) {
	if len(transactions) == 0 {
		return 0, ErrEmptyBatch
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&transactions).Error; err != nil {
			return fmt.Errorf("failed to insert transaction batch: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return len(transactions), nil
}

// ListPage returns one descending-timestamp page of an owner's transactions
func (r *transactionRepository) ListPage(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("occurred_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, nil
}

// UpdateCategories applies classifier categories to an owner's rows
func (r *transactionRepository) UpdateCategories(ctx context.Context, ownerID uuid.UUID, byFingerprint map[string]string) (int64, error) {
	var updated int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for fingerprint, category := range byFingerprint {
			result := tx.Model(&models.Transaction{}).
				Where("owner_id = ? AND fingerprint = ?", ownerID, fingerprint).
				Update("category", category)
			if result.Error != nil {
				return fmt.Errorf("failed to update category for fingerprint: %w", result.Error)
			}
			updated += result.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// CountByOwner returns the total persisted rows for an owner
func (r *transactionRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("owner_id = ?", ownerID).
		Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return total, nil
}
