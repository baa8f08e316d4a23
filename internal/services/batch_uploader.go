package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"statement-ingest/internal/models"
	"statement-ingest/internal/repositories"

	"github.com/google/uuid"
)

// batchUploader implements BatchUploaderInterface
type batchUploader struct {
	repo        repositories.TransactionRepositoryInterface
	breaker     CircuitBreakerInterface
	metrics     MetricsRecorderInterface
	logger      ImportLoggerInterface
	chunkSize   int
	concurrency int
}

// NewBatchUploader creates an uploader that submits chunks of chunkSize rows
// with at most concurrency submissions in flight.
func NewBatchUploader(
	repo repositories.TransactionRepositoryInterface,
	breaker CircuitBreakerInterface,
	metrics MetricsRecorderInterface,
	logger ImportLoggerInterface,
	chunkSize int,
	concurrency int,
) BatchUploaderInterface {
	if chunkSize <= 0 {
		chunkSize = 2000
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	return &batchUploader{
		repo:        repo,
		breaker:     breaker,
		metrics:     metrics,
		logger:      logger,
		chunkSize:   chunkSize,
		concurrency: concurrency,
	}
}

// Upload persists a fully materialized candidate slice. It is Begin, one
// Submit and Finish in a trench coat; streaming callers use the session
// directly so parsing can interleave with persistence.
func (u *batchUploader) Upload(ctx context.Context, ownerID uuid.UUID, jobID *uuid.UUID, candidates []*models.TransactionCandidate, progress ProgressFunc) (int, error) {
	session := u.Begin(ctx, ownerID, jobID, progress)
	_ = session.Submit(candidates...)
	return session.Finish()
}

// Begin opens a streaming upload session for one import.
func (u *batchUploader) Begin(ctx context.Context, ownerID uuid.UUID, jobID *uuid.UUID, progress ProgressFunc) UploadSessionInterface {
	logJobID := uuid.Nil
	if jobID != nil {
		logJobID = *jobID
	}
	return &uploadSession{
		uploader:  u,
		ctx:       ctx,
		ownerID:   ownerID,
		jobID:     jobID,
		logJobID:  logJobID,
		progress:  progress,
		semaphore: make(chan struct{}, u.concurrency),
	}
}

// uploadSession accumulates submitted candidates into fixed-size chunks and
// dispatches each full chunk under the shared concurrency bound. Dispatch
// order is FIFO; completion order is unconstrained. The first chunk failure
// stops new dispatch, and Finish returns only after every in-flight chunk
// settles. Successfully inserted chunks stay persisted regardless of later
// failures.
type uploadSession struct {
	uploader  *batchUploader
	ctx       context.Context
	ownerID   uuid.UUID
	jobID     *uuid.UUID
	logJobID  uuid.UUID
	progress  ProgressFunc
	semaphore chan struct{}
	buffer    []*models.TransactionCandidate

	wg sync.WaitGroup

	mu            sync.Mutex
	firstErr      error
	inserted      int
	settledRows   int
	submittedRows int
	chunkIndex    int
}

// Submit feeds candidates in arrival order. It blocks while all concurrency
// slots are busy, which is the backpressure that keeps a parsing caller from
// racing ahead of persistence. A non-nil return means the session has
// aborted and further submissions are discarded.
func (s *uploadSession) Submit(candidates ...*models.TransactionCandidate) error {
	for _, candidate := range candidates {
		if err := s.abortErr(); err != nil {
			return err
		}
		s.buffer = append(s.buffer, candidate)
		if len(s.buffer) >= s.uploader.chunkSize {
			chunk := s.buffer
			s.buffer = nil
			s.dispatch(chunk)
		}
	}
	return s.abortErr()
}

// Finish flushes the trailing partial chunk, waits for every dispatched
// chunk to settle and reports the terminal outcome. The 100% progress signal
// fires only here, and only on full success.
func (s *uploadSession) Finish() (int, error) {
	if len(s.buffer) > 0 {
		chunk := s.buffer
		s.buffer = nil
		s.dispatch(chunk)
	}
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.firstErr != nil {
		return s.inserted, fmt.Errorf("batch upload aborted: %w", s.firstErr)
	}
	if s.progress != nil {
		s.progress(100)
	}
	return s.inserted, nil
}

func (s *uploadSession) dispatch(chunk []*models.TransactionCandidate) {
	if s.abortErr() != nil {
		return
	}

	select {
	case s.semaphore <- struct{}{}:
	case <-s.ctx.Done():
		s.recordFailure(s.ctx.Err())
		return
	}
	if s.abortErr() != nil {
		<-s.semaphore
		return
	}

	s.mu.Lock()
	s.submittedRows += len(chunk)
	chunkIndex := s.chunkIndex
	s.chunkIndex++
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() { <-s.semaphore }()

		start := time.Now()
		count, err := s.uploader.submitChunk(s.ctx, s.ownerID, s.jobID, chunk)

		s.mu.Lock()
		s.settledRows += len(chunk)
		percent := s.settledRows * 100 / s.submittedRows
		if percent > 99 {
			percent = 99
		}
		if err != nil {
			if s.firstErr == nil {
				s.firstErr = err
			}
		} else {
			s.inserted += count
		}
		s.mu.Unlock()

		if err != nil {
			s.uploader.breaker.RecordFailure()
			s.uploader.logger.LogChunkFailed(s.ctx, s.logJobID, chunkIndex, err.Error())
			s.uploader.metrics.IncrementCounter("import.chunk.failed", map[string]string{"status": "failed"})
		} else {
			s.uploader.breaker.RecordSuccess()
			s.uploader.logger.LogChunkUploaded(s.ctx, s.logJobID, chunkIndex, count, time.Since(start).Milliseconds())
			s.uploader.metrics.IncrementCounter("import.chunk.uploaded", map[string]string{"status": "success"})
			s.uploader.metrics.RecordProcessingTime("import.chunk.upload", time.Since(start))
		}

		if s.progress != nil {
			s.progress(percent)
		}
	}()
}

func (s *uploadSession) abortErr() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.firstErr
}

func (s *uploadSession) recordFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.firstErr == nil {
		s.firstErr = err
	}
}

func (u *batchUploader) submitChunk(ctx context.Context, ownerID uuid.UUID, jobID *uuid.UUID, chunk []*models.TransactionCandidate) (int, error) {
	if u.breaker.IsOpen() {
		return 0, ErrCircuitBreakerOpen
	}

	records := make([]models.Transaction, 0, len(chunk))
	for _, candidate := range chunk {
		records = append(records, *models.FromCandidate(candidate, ownerID, jobID))
	}
	return u.repo.InsertBatch(ctx, records)
}
