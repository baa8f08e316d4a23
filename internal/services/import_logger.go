package services

import (
	"context"
	"log/slog"
	"time"

	"statement-ingest/internal/models"

	"github.com/google/uuid"
)

type ImportLogger struct {
	logger *slog.Logger
}

func NewImportLogger(logger *slog.Logger) ImportLoggerInterface {
	return &ImportLogger{
		logger: logger,
	}
}

func (il *ImportLogger) LogImportStarted(ctx context.Context, jobID, ownerID uuid.UUID, fileName string, fileKind models.FileKind) {
	il.logger.InfoContext(ctx, "import started",
		slog.String("event_type", "import_started"),
		slog.String("job_id", jobID.String()),
		slog.String("owner_id", ownerID.String()),
		slog.String("file_name", fileName),
		slog.String("file_kind", string(fileKind)),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (il *ImportLogger) LogDialectDetected(ctx context.Context, jobID uuid.UUID, dialect models.StatementDialect) {
	il.logger.InfoContext(ctx, "statement dialect detected",
		slog.String("event_type", "dialect_detected"),
		slog.String("job_id", jobID.String()),
		slog.String("dialect", string(dialect)),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (il *ImportLogger) LogRowDropped(ctx context.Context, jobID uuid.UUID, reason string, rowIndex int) {
	il.logger.DebugContext(ctx, "row dropped",
		slog.String("event_type", "row_dropped"),
		slog.String("job_id", jobID.String()),
		slog.String("reason", reason),
		slog.Int("row_index", rowIndex),
	)
}

func (il *ImportLogger) LogChunkUploaded(ctx context.Context, jobID uuid.UUID, chunkIndex, rows int, durationMs int64) {
	il.logger.InfoContext(ctx, "chunk uploaded",
		slog.String("event_type", "chunk_uploaded"),
		slog.String("job_id", jobID.String()),
		slog.Int("chunk_index", chunkIndex),
		slog.Int("rows", rows),
		slog.Int64("duration_ms", durationMs),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (il *ImportLogger) LogChunkFailed(ctx context.Context, jobID uuid.UUID, chunkIndex int, errorMsg string) {
	il.logger.WarnContext(ctx, "chunk upload failed",
		slog.String("event_type", "chunk_failed"),
		slog.String("job_id", jobID.String()),
		slog.Int("chunk_index", chunkIndex),
		slog.String("error", errorMsg),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (il *ImportLogger) LogClassifierDegraded(ctx context.Context, jobID uuid.UUID, reason string) {
	il.logger.WarnContext(ctx, "classifier degraded to heuristic categories",
		slog.String("event_type", "classifier_degraded"),
		slog.String("job_id", jobID.String()),
		slog.String("reason", reason),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (il *ImportLogger) LogFetchTruncated(ctx context.Context, ownerID uuid.UUID, rows int, reason string) {
	il.logger.WarnContext(ctx, "history fetch truncated",
		slog.String("event_type", "fetch_truncated"),
		slog.String("owner_id", ownerID.String()),
		slog.Int("rows", rows),
		slog.String("reason", reason),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (il *ImportLogger) LogImportCompleted(ctx context.Context, jobID uuid.UUID, batch models.ImportBatch, durationMs int64) {
	il.logger.InfoContext(ctx, "import completed",
		slog.String("event_type", "import_completed"),
		slog.String("job_id", jobID.String()),
		slog.Int("parsed", batch.Parsed),
		slog.Int("mapped", batch.Mapped),
		slog.Int("dropped", batch.Dropped),
		slog.Int("deduplicated", batch.Deduplicated),
		slog.Int("inserted", batch.Inserted),
		slog.Int64("duration_ms", durationMs),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (il *ImportLogger) LogImportFailed(ctx context.Context, jobID uuid.UUID, errorMsg string, durationMs int64) {
	il.logger.ErrorContext(ctx, "import failed",
		slog.String("event_type", "import_failed"),
		slog.String("job_id", jobID.String()),
		slog.String("error", errorMsg),
		slog.Int64("duration_ms", durationMs),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func getCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	if correlationID, ok := ctx.Value("correlation_id").(string); ok {
		return correlationID
	}

	if requestID, ok := ctx.Value("request_id").(string); ok {
		return requestID
	}

	return ""
}
