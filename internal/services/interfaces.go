package services

import (
	"context"
	"io"
	"time"

	"statement-ingest/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FormatDetectorInterface classifies statement files by name.
type FormatDetectorInterface interface {
	Detect(fileName string) models.FileKind
}

// ChunkFunc receives one parsed chunk of rows. headers holds the normalized
// header names in file order and is identical across calls for one file.
// Returning an error aborts the parse.
type ChunkFunc func(headers []string, rows []models.RawRow) error

// StatementParserInterface extracts raw rows from statement file bytes.
type StatementParserInterface interface {
	// Parse reads the file and delivers rows chunk by chunk. It returns the
	// total row count. Zero extracted rows is an error.
	Parse(ctx context.Context, kind models.FileKind, r io.Reader, fn ChunkFunc) (int, error)
}

// FormatMapperInterface turns raw rows into transaction candidates.
type FormatMapperInterface interface {
	// DetectDialect picks the statement dialect from the normalized header
	// set. No match is an error for the whole file.
	DetectDialect(headers []string) (models.StatementDialect, error)

	// MapRow produces zero or one candidate from a raw row. ok is false when
	// a required field (date, amount) did not parse and the row is dropped.
	MapRow(dialect models.StatementDialect, row models.RawRow) (candidate *models.TransactionCandidate, ok bool)
}

// NormalizerInterface holds the shared field-level parsers.
type NormalizerInterface interface {
	ParseDate(value string) (time.Time, error)
	ParseAmount(value string) (decimal.Decimal, error)
	DetectCurrency(value string) string
	CleanDescription(value string) string
	Categorize(description string) string
	ExtractMerchant(description string) string
	DetectPaymentMethod(description string) string
}

// DeduplicatorInterface rejects candidates whose fingerprint was already
// seen. One instance per import; never shared.
type DeduplicatorInterface interface {
	// Seed pre-loads fingerprints of already-persisted records.
	Seed(fingerprints []string)

	// Accept returns true and records the fingerprint if it is new; false
	// if the candidate is a duplicate.
	Accept(candidate *models.TransactionCandidate) bool

	DuplicateCount() int
}

// ProgressFunc receives percentage updates during long operations.
type ProgressFunc func(percent int)

// BatchUploaderInterface persists accepted candidates in bounded-concurrency
// chunks.
type BatchUploaderInterface interface {
	// Upload partitions candidates into fixed-size chunks and inserts them
	// with at most K chunk submissions in flight. It returns the number of
	// rows actually inserted. The first chunk failure aborts the upload
	// after in-flight chunks settle; successful chunks are not rolled back.
	Upload(ctx context.Context, ownerID uuid.UUID, jobID *uuid.UUID, candidates []*models.TransactionCandidate, progress ProgressFunc) (int, error)

	// Begin opens a streaming session so callers can submit candidates as
	// they are produced instead of materializing the whole file first.
	Begin(ctx context.Context, ownerID uuid.UUID, jobID *uuid.UUID, progress ProgressFunc) UploadSessionInterface
}

// UploadSessionInterface is one streaming upload. Candidates are submitted in
// arrival order and flushed in fixed-size chunks; Submit blocks while all
// concurrency slots are busy, so a parsing caller cannot outrun persistence.
type UploadSessionInterface interface {
	// Submit queues candidates. A non-nil error means a chunk already failed
	// and the caller should stop producing.
	Submit(candidates ...*models.TransactionCandidate) error

	// Finish flushes the trailing partial chunk, waits for in-flight chunks
	// and returns the number of rows inserted.
	Finish() (int, error)
}

// ClassifierClientInterface is the external ML classification endpoint.
type ClassifierClientInterface interface {
	// ClassifyCanonical sends distinct canonical descriptions and returns a
	// canonical form to category map.
	ClassifyCanonical(ctx context.Context, canonicals []string) (map[string]string, error)
}

// BackgroundClassifierInterface resolves categories for raw descriptions via
// the external classifier, degrading to an empty map on failure or timeout.
type BackgroundClassifierInterface interface {
	Classify(ctx context.Context, descriptions []string) map[string]string
}

// FetchResult is the outcome of reading an owner's persisted records.
type FetchResult struct {
	Transactions []models.Transaction
	Truncated    bool
}

// TransactionFetcherInterface pages through persisted records to seed the
// deduplicator.
type TransactionFetcherInterface interface {
	FetchAll(ctx context.Context, ownerID uuid.UUID) (*FetchResult, error)
}

// PageCacheInterface caches fetch results per owner with a TTL.
type PageCacheInterface interface {
	Get(ownerID uuid.UUID) (*FetchResult, bool)
	Set(ownerID uuid.UUID, result *FetchResult)
	Invalidate(ownerID uuid.UUID)
}

// ImportResult summarizes one finished import invocation.
type ImportResult struct {
	Job          *models.ImportJob
	Batch        models.ImportBatch
	Dialect      models.StatementDialect
	FetchedTrunc bool
}

// ImportServiceInterface orchestrates the whole ingestion pipeline.
type ImportServiceInterface interface {
	Import(ctx context.Context, ownerID uuid.UUID, fileName string, r io.Reader) (*ImportResult, error)
	GetJob(ctx context.Context, ownerID, jobID uuid.UUID) (*models.ImportJob, error)
	ListJobs(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]models.ImportJob, error)
}

// ImportLoggerInterface emits structured import lifecycle events.
type ImportLoggerInterface interface {
	LogImportStarted(ctx context.Context, jobID, ownerID uuid.UUID, fileName string, fileKind models.FileKind)
	LogDialectDetected(ctx context.Context, jobID uuid.UUID, dialect models.StatementDialect)
	LogRowDropped(ctx context.Context, jobID uuid.UUID, reason string, rowIndex int)
	LogChunkUploaded(ctx context.Context, jobID uuid.UUID, chunkIndex, rows int, durationMs int64)
	LogChunkFailed(ctx context.Context, jobID uuid.UUID, chunkIndex int, errorMsg string)
	LogClassifierDegraded(ctx context.Context, jobID uuid.UUID, reason string)
	LogFetchTruncated(ctx context.Context, ownerID uuid.UUID, rows int, reason string)
	LogImportCompleted(ctx context.Context, jobID uuid.UUID, batch models.ImportBatch, durationMs int64)
	LogImportFailed(ctx context.Context, jobID uuid.UUID, errorMsg string, durationMs int64)
}

type MetricsRecorderInterface interface {
	IncrementCounter(name string, tags map[string]string)
	RecordProcessingTime(name string, duration time.Duration)
	RecordGauge(name string, value float64, tags map[string]string)
}

type CircuitBreakerInterface interface {
	IsOpen() bool
	RecordSuccess()
	RecordFailure()
	GetState() models.CircuitBreakerState
	Reset()
	GetFailureCount() int
}
