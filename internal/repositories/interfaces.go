package repositories

import (
	"context"

	"statement-ingest/internal/models"

	"github.com/google/uuid"
)

// TransactionRepositoryInterface is the persistence surface the ingestion
// pipeline depends on. InsertBatch feeds the uploader; ListPage feeds the
// fetcher.
type TransactionRepositoryInterface interface {
	// InsertBatch persists one chunk of records for an owner and returns
	// the number of rows inserted. Partial inserts do not occur: the chunk
	// is written in a single database transaction.
	InsertBatch(ctx context.Context, transactions []models.Transaction) (int, error)

	// ListPage returns one page of an owner's transactions ordered by
	// occurred_at descending, then id descending for a stable tiebreak.
	ListPage(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]models.Transaction, error)

	// CountByOwner returns the number of persisted rows for an owner.
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)

	// UpdateCategories overwrites the category of an owner's rows keyed by
	// fingerprint. Used to apply late classifier results; best effort.
	UpdateCategories(ctx context.Context, ownerID uuid.UUID, byFingerprint map[string]string) (int64, error)
}

// ImportJobRepositoryInterface persists import bookkeeping rows.
type ImportJobRepositoryInterface interface {
	Create(ctx context.Context, job *models.ImportJob) error
	Update(ctx context.Context, job *models.ImportJob) error
	GetByID(ctx context.Context, ownerID, jobID uuid.UUID) (*models.ImportJob, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]models.ImportJob, error)
}
