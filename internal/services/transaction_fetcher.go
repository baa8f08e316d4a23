package services

import (
	"context"
	"fmt"
	"time"

	"statement-ingest/internal/models"
	"statement-ingest/internal/repositories"

	"github.com/google/uuid"
)

// FetcherConfig bounds one full fetch of an owner's history.
type FetcherConfig struct {
	PageSize    int
	MaxRows     int
	MaxDuration time.Duration
	PageTimeout time.Duration
}

func DefaultFetcherConfig() FetcherConfig {
	return FetcherConfig{
		PageSize:    1000,
		MaxRows:     100000,
		MaxDuration: 60 * time.Second,
		PageTimeout: 10 * time.Second,
	}
}

// transactionFetcher implements TransactionFetcherInterface
type transactionFetcher struct {
	repo    repositories.TransactionRepositoryInterface
	cache   PageCacheInterface
	logger  ImportLoggerInterface
	metrics MetricsRecorderInterface
	config  FetcherConfig
}

// NewTransactionFetcher creates a fetcher reading pages through repo,
// memoizing full results in cache when one is provided.
func NewTransactionFetcher(
	repo repositories.TransactionRepositoryInterface,
	cache PageCacheInterface,
	logger ImportLoggerInterface,
	metrics MetricsRecorderInterface,
	config FetcherConfig,
) TransactionFetcherInterface {
	if config.PageSize <= 0 {
		config.PageSize = 1000
	}
	return &transactionFetcher{
		repo:    repo,
		cache:   cache,
		logger:  logger,
		metrics: metrics,
		config:  config,
	}
}

// pageSignature identifies one page for loop detection.
type pageSignature struct {
	firstID uuid.UUID
	lastID  uuid.UUID
	length  int
}

// FetchAll pages through the owner's persisted records, newest first, until
// a natural empty page or a safety bound. Bounds mark the result truncated
// instead of failing; only a page-request timeout is fatal.
func (f *transactionFetcher) FetchAll(ctx context.Context, ownerID uuid.UUID) (*FetchResult, error) {
	if f.cache != nil {
		if cached, ok := f.cache.Get(ownerID); ok {
			f.metrics.IncrementCounter("import.fetch.cache_hit", nil)
			return cached, nil
		}
	}

	var (
		all       []models.Transaction
		truncated bool
		reason    string
	)

	started := time.Now()
	seenPages := make(map[pageSignature]struct{})
	offset := 0

	for {
		if f.config.MaxDuration > 0 && time.Since(started) > f.config.MaxDuration {
			truncated = true
			reason = "max duration exceeded"
			break
		}

		page, err := f.fetchPage(ctx, ownerID, offset)
		if err != nil {
			return nil, fmt.Errorf("fetch page at offset %d: %w", offset, err)
		}
		if len(page) == 0 {
			break
		}

		signature := pageSignature{
			firstID: page[0].ID,
			lastID:  page[len(page)-1].ID,
			length:  len(page),
		}
		if _, looped := seenPages[signature]; looped {
			truncated = true
			reason = "repeated page signature"
			break
		}
		seenPages[signature] = struct{}{}

		all = append(all, page...)
		offset += len(page)

		if f.config.MaxRows > 0 && len(all) >= f.config.MaxRows {
			if len(all) > f.config.MaxRows {
				all = all[:f.config.MaxRows]
			}
			// Exactly MaxRows with nothing further is a natural end, not a
			// truncation, but confirming would cost another page request.
			truncated = true
			reason = "max rows reached"
			break
		}

		if len(page) < f.config.PageSize {
			break
		}
	}

	if truncated {
		f.logger.LogFetchTruncated(ctx, ownerID, len(all), reason)
		f.metrics.IncrementCounter("import.fetch.truncated", map[string]string{"reason": reason})
	}

	result := &FetchResult{Transactions: all, Truncated: truncated}
	if f.cache != nil {
		f.cache.Set(ownerID, result)
	}
	return result, nil
}

// fetchPage requests one page under its own timeout. A timeout here is
// fatal to the whole fetch.
func (f *transactionFetcher) fetchPage(ctx context.Context, ownerID uuid.UUID, offset int) ([]models.Transaction, error) {
	pageCtx := ctx
	if f.config.PageTimeout > 0 {
		var cancel context.CancelFunc
		pageCtx, cancel = context.WithTimeout(ctx, f.config.PageTimeout)
		defer cancel()
	}
	return f.repo.ListPage(pageCtx, ownerID, offset, f.config.PageSize)
}
