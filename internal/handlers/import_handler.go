package handlers

import (
	"encoding/csv"
	stderrors "errors"
	"net/http"

	"statement-ingest/internal/dto"
	"statement-ingest/internal/errors"
	"statement-ingest/internal/repositories"
	"statement-ingest/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	defaultJobPageLimit = 20
	maxJobPageLimit     = 100
)

// ImportHandler handles statement import HTTP requests
type ImportHandler struct {
	importService  services.ImportServiceInterface
	maxUploadBytes int64
}

// NewImportHandler creates a new import handler
func NewImportHandler(importService services.ImportServiceInterface, maxUploadBytes int64) *ImportHandler {
	return &ImportHandler{
		importService:  importService,
		maxUploadBytes: maxUploadBytes,
	}
}

// importFileName is validated before the file is handed to the pipeline
type importFileName struct {
	FileName string `json:"fileName" validate:"required,statement_filename"`
}

// CreateImport ingests one uploaded statement file for the authenticated user.
// The pipeline runs synchronously; the response carries the finished job.
func (h *ImportHandler) CreateImport(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return SendError(c, errors.ValidationRequiredField, errors.WithDetails("Multipart field 'file' is required"))
	}

	if h.maxUploadBytes > 0 && fileHeader.Size > h.maxUploadBytes {
		return SendError(c, errors.IngestFileTooLarge)
	}

	if err := c.Validate(&importFileName{FileName: fileHeader.Filename}); err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Invalid statement file name"))
	}

	src, err := fileHeader.Open()
	if err != nil {
		return SendSystemError(c, err)
	}
	defer src.Close()

	result, err := h.importService.Import(c.Request().Context(), userID, fileHeader.Filename, src)
	if err != nil {
		return h.sendImportError(c, err)
	}

	return c.JSON(http.StatusCreated, dto.ImportResultResponse{
		Job:              dto.FromImportJob(result.Job),
		Dialect:          string(result.Dialect),
		HistoryTruncated: result.FetchedTrunc,
	})
}

// sendImportError maps pipeline failures onto the API error vocabulary
func (h *ImportHandler) sendImportError(c echo.Context, err error) error {
	var parseErr *csv.ParseError

	switch {
	case stderrors.Is(err, services.ErrUnsupportedFileKind):
		return SendError(c, errors.IngestUnsupportedFileKind)
	case stderrors.Is(err, services.ErrUnknownDialect):
		return SendError(c, errors.IngestUnknownDialect)
	case stderrors.Is(err, services.ErrNoRows):
		return SendError(c, errors.IngestEmptyFile)
	case stderrors.As(err, &parseErr):
		return SendError(c, errors.IngestParseFailed, errors.WithDetails(err.Error()))
	case stderrors.Is(err, services.ErrCircuitBreakerOpen):
		return SendError(c, errors.SystemServiceUnavailable)
	default:
		return SendSystemError(c, err)
	}
}

// GetImportJob returns one import job owned by the authenticated user
func (h *ImportHandler) GetImportJob(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	jobID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("Job ID must be a valid UUID"))
	}

	job, err := h.importService.GetJob(c.Request().Context(), userID, jobID)
	if err != nil {
		if stderrors.Is(err, repositories.ErrImportJobNotFound) {
			return SendError(c, errors.IngestJobNotFound)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, dto.FromImportJob(job))
}

// ListImportJobs returns the authenticated user's import jobs, newest first
func (h *ImportHandler) ListImportJobs(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	offset := getIntParam(c, "offset", 0)
	limit := getIntParam(c, "limit", defaultJobPageLimit)
	if offset < 0 || limit < 1 {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("offset must be >= 0 and limit >= 1"))
	}
	if limit > maxJobPageLimit {
		limit = maxJobPageLimit
	}

	jobs, err := h.importService.ListJobs(c.Request().Context(), userID, offset, limit)
	if err != nil {
		return SendSystemError(c, err)
	}

	responses := make([]dto.ImportJobResponse, 0, len(jobs))
	for i := range jobs {
		responses = append(responses, dto.FromImportJob(&jobs[i]))
	}

	return c.JSON(http.StatusOK, dto.ListImportJobsResponse{
		Jobs: responses,
		Pagination: dto.PaginationInfo{
			HasMore: len(jobs) == limit,
			Offset:  offset,
			Limit:   limit,
		},
	})
}
