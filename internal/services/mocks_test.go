package services

import (
	"context"
	"sync"
	"time"

	"statement-ingest/internal/models"

	"github.com/google/uuid"
)

// nopImportLogger swallows lifecycle events in tests.
type nopImportLogger struct{}

func (nopImportLogger) LogImportStarted(context.Context, uuid.UUID, uuid.UUID, string, models.FileKind) {
}
func (nopImportLogger) LogDialectDetected(context.Context, uuid.UUID, models.StatementDialect) {}
func (nopImportLogger) LogRowDropped(context.Context, uuid.UUID, string, int)                  {}
func (nopImportLogger) LogChunkUploaded(context.Context, uuid.UUID, int, int, int64)           {}
func (nopImportLogger) LogChunkFailed(context.Context, uuid.UUID, int, string)                 {}
func (nopImportLogger) LogClassifierDegraded(context.Context, uuid.UUID, string)               {}
func (nopImportLogger) LogFetchTruncated(context.Context, uuid.UUID, int, string)              {}
func (nopImportLogger) LogImportCompleted(context.Context, uuid.UUID, models.ImportBatch, int64) {
}
func (nopImportLogger) LogImportFailed(context.Context, uuid.UUID, string, int64) {}

// recordingMetrics counts events by name so tests can assert on them.
type recordingMetrics struct {
	mu       sync.Mutex
	counters map[string]int
	gauges   map[string]float64
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		counters: make(map[string]int),
		gauges:   make(map[string]float64),
	}
}

func (m *recordingMetrics) IncrementCounter(name string, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name]++
}

func (m *recordingMetrics) RecordProcessingTime(name string, duration time.Duration) {}

func (m *recordingMetrics) RecordGauge(name string, value float64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[name] = value
}

func (m *recordingMetrics) count(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[name]
}

// stubBreaker is a circuit breaker with a fixed open/closed answer.
type stubBreaker struct {
	mu        sync.Mutex
	open      bool
	successes int
	failures  int
}

func (b *stubBreaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}

func (b *stubBreaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.successes++
}

func (b *stubBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
}

func (b *stubBreaker) GetState() models.CircuitBreakerState {
	if b.IsOpen() {
		return StateOpen
	}
	return StateClosed
}

func (b *stubBreaker) Reset() {}

func (b *stubBreaker) GetFailureCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}

// fakeTransactionRepo is an in-memory TransactionRepositoryInterface with
// per-call hooks for failure injection.
type fakeTransactionRepo struct {
	mu          sync.Mutex
	inserted    []models.Transaction
	insertCalls int
	inFlight    int
	maxInFlight int
	insertDelay time.Duration
	failInsert  func(call int, batch []models.Transaction) error
	listPage    func(offset, limit int) ([]models.Transaction, error)
	categories  map[string]string
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{categories: make(map[string]string)}
}

func (r *fakeTransactionRepo) InsertBatch(ctx context.Context, transactions []models.Transaction) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.Lock()
	r.insertCalls++
	call := r.insertCalls
	r.inFlight++
	if r.inFlight > r.maxInFlight {
		r.maxInFlight = r.inFlight
	}
	delay := r.insertDelay
	r.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.inFlight--

	if r.failInsert != nil {
		if err := r.failInsert(call, transactions); err != nil {
			return 0, err
		}
	}
	r.inserted = append(r.inserted, transactions...)
	return len(transactions), nil
}

func (r *fakeTransactionRepo) ListPage(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]models.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.listPage != nil {
		return r.listPage(offset, limit)
	}
	return nil, nil
}

func (r *fakeTransactionRepo) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.inserted)), nil
}

func (r *fakeTransactionRepo) UpdateCategories(ctx context.Context, ownerID uuid.UUID, byFingerprint map[string]string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for fp, category := range byFingerprint {
		r.categories[fp] = category
	}
	return int64(len(byFingerprint)), nil
}

func (r *fakeTransactionRepo) insertedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inserted)
}

// fakeClassifierClient delegates to a function.
type fakeClassifierClient struct {
	fn func(ctx context.Context, canonicals []string) (map[string]string, error)
}

func (c *fakeClassifierClient) ClassifyCanonical(ctx context.Context, canonicals []string) (map[string]string, error) {
	return c.fn(ctx, canonicals)
}
