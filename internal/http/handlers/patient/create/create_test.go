package create

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/healthadmin-lite/internal/lib/sl"
	"github.com/magabrotheeeer/healthadmin-lite/internal/models"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, in models.PatientInput) (*models.Patient, error) {
	args := m.Called(ctx, in)
	if res := args.Get(0); res != nil {
		return res.(*models.Patient), args.Error(1)
	}
	return nil, args.Error(1)
}

const validBody = `{
	"documentType": "CC",
	"documentNumber": "1020304050",
	"firstNames": "Ana María",
	"lastNames": "Gómez Ruiz",
	"birthDate": "1990-05-01",
	"gender": "F",
	"phone": "3001234567",
	"email": "ana@example.com",
	"address": "Calle 10 # 20-30",
	"city": "Bogotá",
	"healthProvider": "Sura",
	"bloodType": "O+",
	"emergencyContact": {"name": "Luis Gómez", "phone": "3109876543", "relationship": "Hermano"}
}`

func TestCreateHandler(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   []string
	}{
		{
			name: "успешное создание",
			body: validBody,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, mock.MatchedBy(func(in models.PatientInput) bool {
					return in.DocumentNumber == "1020304050" && in.EmergencyContact.Relationship == "Hermano"
				})).Return(&models.Patient{ID: id, DocumentNumber: "1020304050", Status: models.StatusActive}, nil)
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   []string{`"status":"OK"`, `"status":"active"`, id.String()},
		},
		{
			name:           "некорректный JSON",
			body:           `{"documentType":`,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   []string{`{"status":"Error","error":"invalid request body"}`},
		},
		{
			name: "ошибки валидации",
			body: `{"phone":"12"}`,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("patient.Create: %w", &models.ValidationError{
					Fields: []models.FieldError{{Field: "phone", Message: "phone must contain 7 to 10 digits"}},
				}))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   []string{`"fields":[{"field":"phone","message":"phone must contain 7 to 10 digits"}]`},
		},
		{
			name: "дубликат документа",
			body: validBody,
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, mock.Anything).
					Return(nil, fmt.Errorf("patient.Create: %w", &models.DuplicateKeyError{Field: "documentNumber"}))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   []string{`"error":"duplicate key: documentNumber"`, `"field":"documentNumber"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			req := httptest.NewRequest(http.MethodPost, "/patients", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			New(sl.Discard(), mockService).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			for _, want := range tt.expectedBody {
				assert.Contains(t, w.Body.String(), want)
			}
			mockService.AssertExpectations(t)
		})
	}
}
