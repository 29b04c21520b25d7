package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rifasolidaria/rifa/internal/domain"
	"github.com/rifasolidaria/rifa/internal/repository"
	"github.com/rifasolidaria/rifa/internal/service/purchase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockPurchaseUseCase is a mock implementation of purchase.PurchaseUseCase
type MockPurchaseUseCase struct {
	mock.Mock
}

func (m *MockPurchaseUseCase) Reserve(ctx context.Context, input purchase.ReserveInput) (*purchase.Reservation, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchase.Reservation), args.Error(1)
}

func (m *MockPurchaseUseCase) SubmitProof(ctx context.Context, token string, proof purchase.ProofInput) (string, error) {
	args := m.Called(ctx, token, proof)
	return args.String(0), args.Error(1)
}

func (m *MockPurchaseUseCase) ExpireStaleReservations(ctx context.Context) ([]domain.Ticket, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Ticket), args.Error(1)
}

func TestPurchaseHandler_reserve(t *testing.T) {
	mockService := &MockPurchaseUseCase{}
	handler := NewPurchaseHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body := `{"name":"Ana Silva","phone":"(81) 91234-5678","instagram":"@ana","numbers":[12,5]}`
	c.Request = httptest.NewRequest("POST", "/purchases", bytes.NewBufferString(body))
	c.Request.Header.Set("Content-Type", "application/json")

	expiresAt := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	reservation := &purchase.Reservation{
		Token:   "7b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d",
		Numbers: []int{5, 12},
		Buyer: domain.Buyer{
			Name:      "Ana Silva",
			Phone:     "81912345678",
			Instagram: "@ana",
		},
		TotalCents: 2000,
		ExpiresAt:  expiresAt,
	}
	mockService.On("Reserve", c.Request.Context(), mock.AnythingOfType("purchase.ReserveInput")).Return(reservation, nil)

	handler.reserve(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response reservationResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, reservation.Token, response.Token)
	assert.Equal(t, []int{5, 12}, response.Numbers)
	assert.Equal(t, int64(2000), response.TotalCents)
	assert.Equal(t, "2026-03-02T12:00:00Z", response.ExpiresAt)

	mockService.AssertExpectations(t)
}

func TestPurchaseHandler_reserve_invalidJSON(t *testing.T) {
	mockService := &MockPurchaseUseCase{}
	handler := NewPurchaseHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/purchases", bytes.NewBufferString("not json"))
	c.Request.Header.Set("Content-Type", "application/json")

	handler.reserve(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything)
}

func TestPurchaseHandler_reserve_errorStatuses(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"number already taken", &repository.NumberTakenError{Number: 12}, http.StatusConflict},
		{"number locked by another buyer", purchase.ErrNumberLocked, http.StatusConflict},
		{"name too short", purchase.ErrNameTooShort, http.StatusBadRequest},
		{"phone too short", purchase.ErrPhoneTooShort, http.StatusBadRequest},
		{"no numbers selected", purchase.ErrNoNumbersSelected, http.StatusBadRequest},
		{"number out of range", purchase.ErrNumberOutOfRange, http.StatusBadRequest},
		{"storage failure", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockPurchaseUseCase{}
			handler := NewPurchaseHandler(mockService)

			gin.SetMode(gin.TestMode)
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			body := `{"name":"Ana Silva","phone":"81912345678","numbers":[12]}`
			c.Request = httptest.NewRequest("POST", "/purchases", bytes.NewBufferString(body))
			c.Request.Header.Set("Content-Type", "application/json")

			mockService.On("Reserve", c.Request.Context(), mock.AnythingOfType("purchase.ReserveInput")).Return(nil, tt.serviceErr)

			handler.reserve(c)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func proofRequest(t *testing.T, contentType string, payload []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="proof"; filename="comprovante.png"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	assert.NoError(t, err)
	_, err = part.Write(payload)
	assert.NoError(t, err)
	assert.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/purchases/tok/proof", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestPurchaseHandler_submitProof(t *testing.T) {
	mockService := &MockPurchaseUseCase{}
	handler := NewPurchaseHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = proofRequest(t, "image/png", []byte("fake png bytes"))
	c.Params = gin.Params{{Key: "token", Value: "7b1deb4d"}}

	proofURL := "https://minio.example.local:9000/rifa-comprovantes/comprovantes/81912345678-1.png"
	mockService.On("SubmitProof", c.Request.Context(), "7b1deb4d", mock.AnythingOfType("purchase.ProofInput")).Return(proofURL, nil)

	handler.submitProof(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response proofResponse
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(t, err)
	assert.Equal(t, "7b1deb4d", response.Token)
	assert.Equal(t, "paid", response.Status)
	assert.Equal(t, proofURL, response.ProofURL)

	mockService.AssertExpectations(t)

	input := mockService.Calls[0].Arguments.Get(2).(purchase.ProofInput)
	assert.Equal(t, "image/png", input.ContentType)
	assert.Equal(t, "comprovante.png", input.Filename)
	assert.Equal(t, int64(len("fake png bytes")), input.Size)
}

func TestPurchaseHandler_submitProof_missingFile(t *testing.T) {
	mockService := &MockPurchaseUseCase{}
	handler := NewPurchaseHandler(mockService)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("POST", "/purchases/tok/proof", nil)
	c.Params = gin.Params{{Key: "token", Value: "tok"}}

	handler.submitProof(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "SubmitProof", mock.Anything, mock.Anything, mock.Anything)
}

func TestPurchaseHandler_submitProof_errorStatuses(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"unknown token", purchase.ErrReservationNotFound, http.StatusNotFound},
		{"reservation lapsed", purchase.ErrReservationExpired, http.StatusConflict},
		{"file too large", purchase.ErrProofTooLarge, http.StatusBadRequest},
		{"wrong content type", purchase.ErrProofBadType, http.StatusBadRequest},
		{"upload failure", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockPurchaseUseCase{}
			handler := NewPurchaseHandler(mockService)

			gin.SetMode(gin.TestMode)
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = proofRequest(t, "image/png", []byte("fake png bytes"))
			c.Params = gin.Params{{Key: "token", Value: "tok"}}

			mockService.On("SubmitProof", c.Request.Context(), "tok", mock.AnythingOfType("purchase.ProofInput")).Return("", tt.serviceErr)

			handler.submitProof(c)

			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
