package monthly

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/solvradar/solvency-radar/internal/http/middlewarectx"
	"github.com/solvradar/solvency-radar/internal/models"
	"github.com/solvradar/solvency-radar/internal/storage/repository"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) MonthlyReport(ctx context.Context, username string) (*models.MonthlyRiskReport, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MonthlyRiskReport), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestMonthlyHandler(t *testing.T) {
	report := &models.MonthlyRiskReport{
		FixedPct: 42.5,
		FixedZone: models.Zone{
			Level: models.ZoneVermelho,
			Label: "High fixed commitment",
		},
		OverallRisk: models.Zone{Level: models.ZoneVermelho, Label: "Critical"},
	}

	tests := []struct {
		name           string
		username       string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "report generated",
			username: "alice",
			setupMock: func(m *MockService) {
				m.On("MonthlyReport", mock.Anything, "alice").Return(report, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"fixed_pct":42.5`,
		},
		{
			name:           "missing username",
			username:       "",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"unauthorized"`,
		},
		{
			name:     "no profile yet",
			username: "bob",
			setupMock: func(m *MockService) {
				m.On("MonthlyReport", mock.Anything, "bob").Return(nil, repository.ErrProfileNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"profile not found"`,
		},
		{
			name:     "aggregation failure",
			username: "bob",
			setupMock: func(m *MockService) {
				m.On("MonthlyReport", mock.Anything, "bob").Return(nil, errors.New("db down"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"could not build report"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(newNoopLogger(), mockService)

			req := httptest.NewRequest(http.MethodGet, "/report/monthly", nil)
			if tt.username != "" {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.User, tt.username))
			}

			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
