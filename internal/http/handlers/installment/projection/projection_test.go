package projection

import (
	"io"
	"iter"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/installment-tracker/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) MonthlyProjection(now time.Time, monthsAhead int) iter.Seq[models.ProjectionMonth] {
	m.Called(now, monthsAhead)
	return func(yield func(models.ProjectionMonth) bool) {
		for i := range monthsAhead {
			if !yield(models.ProjectionMonth{Index: i, Total: decimal.NewFromInt(100)}) {
				return
			}
		}
	}
}

func TestProjectionHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fixed := time.Date(2024, 11, 20, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		query          string
		wantMonths     int
		expectedStatus int
		expectedBody   string
	}{
		{name: "по умолчанию 6 месяцев", query: "", wantMonths: 6, expectedStatus: http.StatusOK, expectedBody: `"index":5`},
		{name: "явное значение", query: "?months=2", wantMonths: 2, expectedStatus: http.StatusOK, expectedBody: `"index":1`},
		{name: "ноль", query: "?months=0", expectedStatus: http.StatusBadRequest, expectedBody: `between 1 and 60`},
		{name: "больше 60", query: "?months=61", expectedStatus: http.StatusBadRequest, expectedBody: `between 1 and 60`},
		{name: "не число", query: "?months=six", expectedStatus: http.StatusBadRequest, expectedBody: `between 1 and 60`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			if tt.wantMonths > 0 {
				mockService.On("MonthlyProjection", fixed, tt.wantMonths).Once()
			}
			handler := New(logger, mockService, time.UTC)
			handler.now = func() time.Time { return fixed }

			req := httptest.NewRequest(http.MethodGet, "/api/v1/installments/projection"+tt.query, nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
