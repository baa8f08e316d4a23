package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

type SecurityHeadersTestSuite struct {
	suite.Suite
	echo *echo.Echo
}

func TestSecurityHeadersSuite(t *testing.T) {
	suite.Run(t, new(SecurityHeadersTestSuite))
}

func (s *SecurityHeadersTestSuite) SetupTest() {
	s.echo = echo.New()
}

func (s *SecurityHeadersTestSuite) invoke(handler echo.HandlerFunc) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	rec := httptest.NewRecorder()
	c := s.echo.NewContext(req, rec)

	s.Require().NoError(SecurityHeaders()(handler)(c))
	return rec
}

func (s *SecurityHeadersTestSuite) TestSetsSecurityHeaders() {
	rec := s.invoke(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	expected := map[string]string{
		"X-Content-Type-Options":    "nosniff",
		"X-Frame-Options":           "DENY",
		"Content-Security-Policy":   "default-src 'self'",
		"Strict-Transport-Security": "max-age=31536000; includeSubDomains",
		"Referrer-Policy":           "strict-origin-when-cross-origin",
		"Cache-Control":             "no-store, no-cache, must-revalidate, private",
		"Pragma":                    "no-cache",
	}
	for header, value := range expected {
		s.Equal(value, rec.Header().Get(header), header)
	}
}

func (s *SecurityHeadersTestSuite) TestHandlerCanOverrideCacheControl() {
	rec := s.invoke(func(c echo.Context) error {
		c.Response().Header().Set("Cache-Control", "private, max-age=30")
		return c.NoContent(http.StatusOK)
	})

	s.Equal("private, max-age=30", rec.Header().Get("Cache-Control"))
}
