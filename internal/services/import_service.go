package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"statement-ingest/internal/models"
	"statement-ingest/internal/repositories"

	"github.com/google/uuid"
)

// errUploadAborted marks a parse stopped early because a chunk upload
// already failed. The session's Finish error is the one reported.
var errUploadAborted = errors.New("upload aborted, stopping parse")

// candidateRef is what the pipeline keeps per accepted row after handing the
// candidate to the uploader. Full candidates carry RawData, so retaining them
// for the whole file would defeat chunked parsing.
type candidateRef struct {
	description string
	category    string
	fingerprint string
}

// importService implements ImportServiceInterface. One Import call is one
// logical pipeline instance: it owns its deduplicator, counters and job row
// and shares nothing mutable with concurrent imports.
type importService struct {
	detector   FormatDetectorInterface
	parser     StatementParserInterface
	mapper     FormatMapperInterface
	fetcher    TransactionFetcherInterface
	uploader   BatchUploaderInterface
	classifier BackgroundClassifierInterface
	cache      PageCacheInterface
	txnRepo    repositories.TransactionRepositoryInterface
	jobRepo    repositories.ImportJobRepositoryInterface
	logger     ImportLoggerInterface
	metrics    MetricsRecorderInterface
}

// NewImportService wires the ingestion pipeline together.
func NewImportService(
	detector FormatDetectorInterface,
	parser StatementParserInterface,
	mapper FormatMapperInterface,
	fetcher TransactionFetcherInterface,
	uploader BatchUploaderInterface,
	classifier BackgroundClassifierInterface,
	cache PageCacheInterface,
	txnRepo repositories.TransactionRepositoryInterface,
	jobRepo repositories.ImportJobRepositoryInterface,
	logger ImportLoggerInterface,
	metrics MetricsRecorderInterface,
) ImportServiceInterface {
	return &importService{
		detector:   detector,
		parser:     parser,
		mapper:     mapper,
		fetcher:    fetcher,
		uploader:   uploader,
		classifier: classifier,
		cache:      cache,
		txnRepo:    txnRepo,
		jobRepo:    jobRepo,
		logger:     logger,
		metrics:    metrics,
	}
}

// Import runs the full pipeline for one statement file.
func (s *importService) Import(ctx context.Context, ownerID uuid.UUID, fileName string, r io.Reader) (*ImportResult, error) {
	started := time.Now()

	kind := s.detector.Detect(fileName)
	if kind == models.FileKindUnknown {
		return nil, ErrUnsupportedFileKind
	}

	job := &models.ImportJob{
		OwnerID:  ownerID,
		FileName: fileName,
		FileKind: string(kind),
	}
	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to record import job: %w", err)
	}
	s.logger.LogImportStarted(ctx, job.ID, ownerID, fileName, kind)

	result, err := s.runPipeline(ctx, ownerID, job, kind, r)
	durationMs := time.Since(started).Milliseconds()

	if err != nil {
		job.Fail(err.Error())
		if updateErr := s.jobRepo.Update(ctx, job); updateErr != nil {
			slog.Warn("failed to persist failed import job", "job_id", job.ID, "error", updateErr)
		}
		s.logger.LogImportFailed(ctx, job.ID, err.Error(), durationMs)
		s.metrics.IncrementCounter("import.failed", nil)
		return nil, err
	}

	job.Succeed()
	if updateErr := s.jobRepo.Update(ctx, job); updateErr != nil {
		slog.Warn("failed to persist completed import job", "job_id", job.ID, "error", updateErr)
	}
	s.logger.LogImportCompleted(ctx, job.ID, result.Batch, durationMs)
	s.metrics.IncrementCounter("import.completed", nil)
	s.metrics.RecordProcessingTime("import.duration", time.Since(started))

	result.Job = job
	return result, nil
}

func (s *importService) runPipeline(ctx context.Context, ownerID uuid.UUID, job *models.ImportJob, kind models.FileKind, r io.Reader) (*ImportResult, error) {
	// Seed the deduplicator from the owner's persisted history before any
	// candidate is considered.
	fetched, err := s.fetcher.FetchAll(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing transactions: %w", err)
	}

	deduper := NewDeduplicator()
	fingerprints := make([]string, 0, len(fetched.Transactions))
	for i := range fetched.Transactions {
		fingerprints = append(fingerprints, fetched.Transactions[i].Fingerprint)
	}
	deduper.Seed(fingerprints)

	var (
		batch    models.ImportBatch
		dialect  = models.DialectUnknown
		accepted []candidateRef
	)

	// Accepted candidates go straight to the upload session from inside the
	// parse callback, so persistence starts while later chunks are still
	// being read and peak memory stays one chunk deep. Submit blocking on a
	// full concurrency window is the backpressure that throttles the parse.
	jobID := job.ID
	session := s.uploader.Begin(ctx, ownerID, &jobID, func(percent int) {
		s.metrics.RecordGauge("import.upload.progress", float64(percent), nil)
	})

	_, parseErr := s.parser.Parse(ctx, kind, r, func(headers []string, rows []models.RawRow) error {
		if dialect == models.DialectUnknown {
			detected, err := s.mapper.DetectDialect(headers)
			if err != nil {
				return err
			}
			dialect = detected
			job.Dialect = string(dialect)
			s.logger.LogDialectDetected(ctx, job.ID, dialect)
		}

		for _, row := range rows {
			batch.Parsed++
			candidate, ok := s.mapper.MapRow(dialect, row)
			if !ok {
				batch.Dropped++
				s.logger.LogRowDropped(ctx, job.ID, "unparseable date or amount", batch.Parsed)
				s.metrics.IncrementCounter("import.row.dropped", nil)
				continue
			}
			batch.Mapped++
			s.metrics.IncrementCounter("import.row.mapped", nil)

			if !deduper.Accept(candidate) {
				batch.Deduplicated++
				s.metrics.IncrementCounter("import.row.duplicate", nil)
				continue
			}
			accepted = append(accepted, candidateRef{
				description: candidate.Description,
				category:    candidate.Category,
				fingerprint: candidate.Fingerprint(),
			})
			if err := session.Submit(candidate); err != nil {
				return errUploadAborted
			}
		}

		// Keep the job row fresh so clients polling it see progress while
		// large files are still parsing.
		job.RowsParsed = batch.Parsed
		job.RowsMapped = batch.Mapped
		job.RowsDropped = batch.Dropped
		job.RowsDuped = batch.Deduplicated
		if err := s.jobRepo.Update(ctx, job); err != nil {
			slog.Warn("failed to update import job progress", "job_id", job.ID, "error", err)
		}
		return nil
	})

	// The classifier races its own timeout in parallel with the upload tail
	// and is consulted only after persistence settles. An empty map means the
	// heuristic categories already on the candidates stand.
	classified := make(chan map[string]string, 1)
	go func() {
		descriptions := make([]string, 0, len(accepted))
		for _, ref := range accepted {
			descriptions = append(descriptions, ref.description)
		}
		classified <- s.classifier.Classify(ctx, descriptions)
	}()

	// Finish drains in-flight chunks even when the parse failed, so rows
	// already dispatched settle before the error is reported.
	inserted, uploadErr := session.Finish()
	batch.Inserted = inserted
	job.RowsInserted = inserted

	if inserted > 0 && s.cache != nil {
		s.cache.Invalidate(ownerID)
	}
	if parseErr != nil && !errors.Is(parseErr, errUploadAborted) {
		return nil, parseErr
	}
	if uploadErr != nil {
		return nil, uploadErr
	}

	s.applyClassifierResults(ctx, ownerID, accepted, <-classified)

	return &ImportResult{
		Batch:        batch,
		Dialect:      dialect,
		FetchedTrunc: fetched.Truncated,
	}, nil
}

// applyClassifierResults upgrades heuristic categories with classifier
// output. Failures are logged, never surfaced: the import already succeeded.
func (s *importService) applyClassifierResults(ctx context.Context, ownerID uuid.UUID, accepted []candidateRef, categories map[string]string) {
	if len(categories) == 0 {
		return
	}

	byFingerprint := make(map[string]string)
	for _, ref := range accepted {
		if category, ok := categories[ref.description]; ok && category != ref.category {
			byFingerprint[ref.fingerprint] = category
		}
	}
	if len(byFingerprint) == 0 {
		return
	}

	if _, err := s.txnRepo.UpdateCategories(ctx, ownerID, byFingerprint); err != nil {
		slog.Warn("failed to apply classifier categories", "owner_id", ownerID, "error", err)
	}
}

func (s *importService) GetJob(ctx context.Context, ownerID, jobID uuid.UUID) (*models.ImportJob, error) {
	return s.jobRepo.GetByID(ctx, ownerID, jobID)
}

func (s *importService) ListJobs(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]models.ImportJob, error) {
	return s.jobRepo.ListByOwner(ctx, ownerID, offset, limit)
}
