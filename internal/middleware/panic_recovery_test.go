package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	apierrors "statement-ingest/internal/errors"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

type PanicRecoveryTestSuite struct {
	suite.Suite
	echo *echo.Echo
}

func TestPanicRecoverySuite(t *testing.T) {
	suite.Run(t, new(PanicRecoveryTestSuite))
}

func (s *PanicRecoveryTestSuite) SetupTest() {
	s.echo = echo.New()
}

func (s *PanicRecoveryTestSuite) invoke(handler echo.HandlerFunc) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports", nil)
	req.Header.Set(TraceIDHeader, "trace-panic-test")
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)

	wrapped := RequestID()(PanicRecovery()(handler))
	s.Require().NoError(wrapped(c))
	return rec
}

func (s *PanicRecoveryTestSuite) TestRecoversPanicAsSystemError() {
	rec := s.invoke(func(c echo.Context) error {
		panic("boom")
	})

	s.Equal(http.StatusInternalServerError, rec.Code)

	var response apierrors.ErrorResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &response))
	s.Equal(string(apierrors.SystemInternalError), response.Error.Code)
	s.Equal("trace-panic-test", response.Error.TraceID)
}

func (s *PanicRecoveryTestSuite) TestPassesThroughWithoutPanic() {
	rec := s.invoke(func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	s.Equal(http.StatusNoContent, rec.Code)
}
