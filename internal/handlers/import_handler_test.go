package handlers

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apierrors "statement-ingest/internal/errors"
	"statement-ingest/internal/models"
	"statement-ingest/internal/repositories"
	"statement-ingest/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

// fakeImportService delegates to per-test functions.
type fakeImportService struct {
	importFn   func(ctx context.Context, ownerID uuid.UUID, fileName string, r io.Reader) (*services.ImportResult, error)
	getJobFn   func(ctx context.Context, ownerID, jobID uuid.UUID) (*models.ImportJob, error)
	listJobsFn func(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]models.ImportJob, error)
}

func (f *fakeImportService) Import(ctx context.Context, ownerID uuid.UUID, fileName string, r io.Reader) (*services.ImportResult, error) {
	return f.importFn(ctx, ownerID, fileName, r)
}

func (f *fakeImportService) GetJob(ctx context.Context, ownerID, jobID uuid.UUID) (*models.ImportJob, error) {
	return f.getJobFn(ctx, ownerID, jobID)
}

func (f *fakeImportService) ListJobs(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]models.ImportJob, error) {
	return f.listJobsFn(ctx, ownerID, offset, limit)
}

type ImportHandlerTestSuite struct {
	suite.Suite
	echo    *echo.Echo
	service *fakeImportService
	handler *ImportHandler
	userID  uuid.UUID
}

func TestImportHandlerSuite(t *testing.T) {
	suite.Run(t, new(ImportHandlerTestSuite))
}

func (s *ImportHandlerTestSuite) SetupTest() {
	s.echo = echo.New()
	s.echo.Validator = NewValidator()
	s.service = &fakeImportService{}
	s.handler = NewImportHandler(s.service, 1<<20)
	s.userID = uuid.New()
}

func multipartUpload(fileName, content string) (*bytes.Buffer, string) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("file", fileName)
	part.Write([]byte(content))
	writer.Close()
	return body, writer.FormDataContentType()
}

func (s *ImportHandlerTestSuite) uploadContext(fileName, content string) (echo.Context, *httptest.ResponseRecorder) {
	body, contentType := multipartUpload(fileName, content)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	c.Set("user_id", s.userID)
	return c, rec
}

func (s *ImportHandlerTestSuite) decodeError(rec *httptest.ResponseRecorder) apierrors.ErrorResponse {
	var response apierrors.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &response))
	return response
}

func (s *ImportHandlerTestSuite) TestCreateImport_Success() {
	finished := time.Now()
	s.service.importFn = func(ctx context.Context, ownerID uuid.UUID, fileName string, r io.Reader) (*services.ImportResult, error) {
		s.Equal(s.userID, ownerID)
		s.Equal("statement.csv", fileName)
		content, err := io.ReadAll(r)
		s.Require().NoError(err)
		s.Equal("Date,Amount\n", string(content))

		return &services.ImportResult{
			Job: &models.ImportJob{
				ID:           uuid.New(),
				OwnerID:      ownerID,
				FileName:     fileName,
				Status:       models.ImportJobStatusSucceeded,
				Dialect:      string(models.DialectGeneric),
				RowsParsed:   1,
				RowsInserted: 1,
				FinishedAt:   &finished,
			},
			Dialect: models.DialectGeneric,
		}, nil
	}

	c, rec := s.uploadContext("statement.csv", "Date,Amount\n")
	s.Require().NoError(s.handler.CreateImport(c))

	s.Equal(http.StatusCreated, rec.Code)

	var response map[string]interface{}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &response))
	s.Equal("generic", response["dialect"])
	job := response["job"].(map[string]interface{})
	s.Equal("succeeded", job["status"])
	s.Equal(float64(1), job["rowsInserted"])
}

func (s *ImportHandlerTestSuite) TestCreateImport_MissingUser() {
	c, rec := s.uploadContext("statement.csv", "x")
	c.Set("user_id", nil)

	s.Require().NoError(s.handler.CreateImport(c))

	s.Equal(http.StatusUnauthorized, rec.Code)
	s.Equal(string(apierrors.AuthMissingToken), s.decodeError(rec).Error.Code)
}

func (s *ImportHandlerTestSuite) TestCreateImport_MissingFile() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports", nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	c.Set("user_id", s.userID)

	s.Require().NoError(s.handler.CreateImport(c))

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(string(apierrors.ValidationRequiredField), s.decodeError(rec).Error.Code)
}

func (s *ImportHandlerTestSuite) TestCreateImport_FileTooLarge() {
	s.handler = NewImportHandler(s.service, 8)

	c, rec := s.uploadContext("statement.csv", "this body is larger than eight bytes")
	s.Require().NoError(s.handler.CreateImport(c))

	s.Equal(http.StatusRequestEntityTooLarge, rec.Code)
	s.Equal(string(apierrors.IngestFileTooLarge), s.decodeError(rec).Error.Code)
}

func (s *ImportHandlerTestSuite) TestCreateImport_BadFileName() {
	c, rec := s.uploadContext("no-extension", "Date,Amount\n")
	s.Require().NoError(s.handler.CreateImport(c))

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(string(apierrors.ValidationInvalidFormat), s.decodeError(rec).Error.Code)
}

func (s *ImportHandlerTestSuite) TestCreateImport_ErrorMapping() {
	testCases := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   apierrors.ErrorCode
	}{
		{
			name:           "unsupported file kind",
			err:            services.ErrUnsupportedFileKind,
			expectedStatus: http.StatusUnsupportedMediaType,
			expectedCode:   apierrors.IngestUnsupportedFileKind,
		},
		{
			name:           "unknown dialect",
			err:            services.ErrUnknownDialect,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedCode:   apierrors.IngestUnknownDialect,
		},
		{
			name:           "empty file",
			err:            services.ErrNoRows,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.IngestEmptyFile,
		},
		{
			name:           "malformed csv",
			err:            &csv.ParseError{Line: 3, Err: csv.ErrFieldCount},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   apierrors.IngestParseFailed,
		},
		{
			name:           "circuit breaker open",
			err:            services.ErrCircuitBreakerOpen,
			expectedStatus: http.StatusServiceUnavailable,
			expectedCode:   apierrors.SystemServiceUnavailable,
		},
		{
			name:           "unexpected error",
			err:            errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   apierrors.SystemInternalError,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			s.service.importFn = func(ctx context.Context, ownerID uuid.UUID, fileName string, r io.Reader) (*services.ImportResult, error) {
				return nil, tc.err
			}

			c, rec := s.uploadContext("statement.csv", "Date,Amount\n")
			s.Require().NoError(s.handler.CreateImport(c))

			s.Equal(tc.expectedStatus, rec.Code)
			s.Equal(string(tc.expectedCode), s.decodeError(rec).Error.Code)
		})
	}
}

func (s *ImportHandlerTestSuite) jobContext(jobID string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/imports/"+jobID, nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(jobID)
	c.Set("user_id", s.userID)
	return c, rec
}

func (s *ImportHandlerTestSuite) TestGetImportJob() {
	jobID := uuid.New()
	s.service.getJobFn = func(ctx context.Context, ownerID, id uuid.UUID) (*models.ImportJob, error) {
		s.Equal(s.userID, ownerID)
		s.Equal(jobID, id)
		return &models.ImportJob{ID: jobID, OwnerID: ownerID, Status: models.ImportJobStatusRunning}, nil
	}

	c, rec := s.jobContext(jobID.String())
	s.Require().NoError(s.handler.GetImportJob(c))

	s.Equal(http.StatusOK, rec.Code)
	var response map[string]interface{}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &response))
	s.Equal(jobID.String(), response["id"])
	s.Equal("running", response["status"])
}

func (s *ImportHandlerTestSuite) TestGetImportJob_NotFound() {
	s.service.getJobFn = func(ctx context.Context, ownerID, id uuid.UUID) (*models.ImportJob, error) {
		return nil, repositories.ErrImportJobNotFound
	}

	c, rec := s.jobContext(uuid.New().String())
	s.Require().NoError(s.handler.GetImportJob(c))

	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal(string(apierrors.IngestJobNotFound), s.decodeError(rec).Error.Code)
}

func (s *ImportHandlerTestSuite) TestGetImportJob_BadID() {
	c, rec := s.jobContext("not-a-uuid")
	s.Require().NoError(s.handler.GetImportJob(c))

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(string(apierrors.ValidationInvalidFormat), s.decodeError(rec).Error.Code)
}

func (s *ImportHandlerTestSuite) TestListImportJobs() {
	s.service.listJobsFn = func(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]models.ImportJob, error) {
		s.Equal(5, offset)
		s.Equal(2, limit)
		return []models.ImportJob{
			{ID: uuid.New(), OwnerID: ownerID, Status: models.ImportJobStatusSucceeded},
			{ID: uuid.New(), OwnerID: ownerID, Status: models.ImportJobStatusFailed},
		}, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/imports?offset=5&limit=2", nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	c.Set("user_id", s.userID)

	s.Require().NoError(s.handler.ListImportJobs(c))

	s.Equal(http.StatusOK, rec.Code)
	var response map[string]interface{}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &response))
	s.Len(response["jobs"], 2)
	pagination := response["pagination"].(map[string]interface{})
	s.Equal(true, pagination["hasMore"])
	s.Equal(float64(5), pagination["offset"])
}

func (s *ImportHandlerTestSuite) TestListImportJobs_InvalidPaging() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/imports?offset=-1", nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	c.Set("user_id", s.userID)

	s.Require().NoError(s.handler.ListImportJobs(c))

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal(string(apierrors.ValidationGeneral), s.decodeError(rec).Error.Code)
}

func (s *ImportHandlerTestSuite) TestListImportJobs_LimitClamped() {
	var gotLimit int
	s.service.listJobsFn = func(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]models.ImportJob, error) {
		gotLimit = limit
		return nil, nil
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/imports?limit=9999", nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)
	c.Set("user_id", s.userID)

	s.Require().NoError(s.handler.ListImportJobs(c))

	s.Equal(http.StatusOK, rec.Code)
	s.Equal(maxJobPageLimit, gotLimit)
}
