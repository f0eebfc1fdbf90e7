package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/ndanilenko/marketplace-server/internal/apperr"
	"github.com/ndanilenko/marketplace-server/internal/testutil"
)

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantCode     int
		wantMessage  string
		wantFieldKey string
	}{
		{
			name:         "api error with fields",
			err:          apperr.NewErrValidation(map[string]string{"price": "price must be a number"}),
			wantCode:     http.StatusBadRequest,
			wantMessage:  "validation failed",
			wantFieldKey: "price",
		},
		{
			name:        "api error wrapped",
			err:         echo.NewHTTPError(http.StatusNotFound).SetInternal(apperr.NewErrNotFound("product")),
			wantCode:    http.StatusNotFound,
			wantMessage: "product not found",
		},
		{
			name:        "echo http error",
			err:         echo.NewHTTPError(http.StatusMethodNotAllowed),
			wantCode:    http.StatusMethodNotAllowed,
			wantMessage: http.StatusText(http.StatusMethodNotAllowed),
		},
		{
			name:        "unexpected error is sanitized",
			err:         errors.New("pq: connection refused"),
			wantCode:    http.StatusInternalServerError,
			wantMessage: "Server Error",
		},
	}

	handle := NewErrorHandler(testutil.MakeNoopLogger())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			handle(tt.err, c)

			assert.Equal(t, tt.wantCode, rec.Code)

			resp := decodeResponse(t, rec)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantMessage, resp.Message)
			if tt.wantFieldKey != "" {
				assert.Contains(t, resp.Errors, tt.wantFieldKey)
			}

			if tt.wantCode == http.StatusInternalServerError {
				assert.NotContains(t, rec.Body.String(), "connection refused")
			}
		})
	}
}

func TestErrorHandler_CommittedResponse(t *testing.T) {
	handle := NewErrorHandler(testutil.MakeNoopLogger())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	c.Response().WriteHeader(http.StatusOK)
	handle(errors.New("late failure"), c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}
