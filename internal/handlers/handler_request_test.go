package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/kassenwart/kassenwart_backend/internal/apperrors"
	"github.com/kassenwart/kassenwart_backend/internal/core/domain"
	portssvc "github.com/kassenwart/kassenwart_backend/internal/core/ports/services"
	"github.com/kassenwart/kassenwart_backend/internal/dto"
	"github.com/kassenwart/kassenwart_backend/internal/handlers"
	"github.com/kassenwart/kassenwart_backend/internal/middleware"
)

// --- Mock RequestService ---
type MockRequestService struct {
	mock.Mock
}

func (m *MockRequestService) GetRequestByID(ctx context.Context, requestID string, requestingUserID string) (*domain.ReimbursementRequest, error) {
	args := m.Called(ctx, requestID, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReimbursementRequest), args.Error(1)
}
func (m *MockRequestService) ListRequests(ctx context.Context, filter domain.RequestFilter, requestingUserID string) ([]domain.ReimbursementRequest, error) {
	args := m.Called(ctx, filter, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReimbursementRequest), args.Error(1)
}
func (m *MockRequestService) ListMyRequests(ctx context.Context, requestingUserID string) ([]domain.ReimbursementRequest, error) {
	args := m.Called(ctx, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReimbursementRequest), args.Error(1)
}
func (m *MockRequestService) ListAvailableForCashbook(ctx context.Context, requestingUserID string) ([]domain.ReimbursementRequest, error) {
	args := m.Called(ctx, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReimbursementRequest), args.Error(1)
}
func (m *MockRequestService) CreateRequest(ctx context.Context, req dto.CreateRequestRequest, creatorUserID string) (*domain.ReimbursementRequest, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReimbursementRequest), args.Error(1)
}
func (m *MockRequestService) DeleteRequest(ctx context.Context, requestID string, requestingUserID string) error {
	args := m.Called(ctx, requestID, requestingUserID)
	return args.Error(0)
}
func (m *MockRequestService) AddLineItem(ctx context.Context, requestID string, req dto.CreateLineItemRequest, requestingUserID string) (*domain.LineItem, error) {
	args := m.Called(ctx, requestID, req, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LineItem), args.Error(1)
}
func (m *MockRequestService) RemoveLineItem(ctx context.Context, requestID string, itemID string, requestingUserID string) error {
	args := m.Called(ctx, requestID, itemID, requestingUserID)
	return args.Error(0)
}
func (m *MockRequestService) SetStatus(ctx context.Context, requestID string, newStatus domain.RequestStatus, actorUserID string) (*domain.ReimbursementRequest, error) {
	args := m.Called(ctx, requestID, newStatus, actorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReimbursementRequest), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.RequestSvcFacade = (*MockRequestService)(nil)

// --- Test Suite ---
type RequestHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockRequestService *MockRequestService
	jwtSecret          string
}

// generateTestToken creates a dummy JWT for testing.
func (suite *RequestHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "kassenwart-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *RequestHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"

	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockRequestService = new(MockRequestService)

	v1 := suite.router.Group("/api/v1")
	handlers.RegisterRequestRoutes(v1, suite.mockRequestService)
}

func (suite *RequestHandlerTestSuite) authedRequest(method, url string, body any, userID string) *http.Request {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, _ := http.NewRequest(method, url, reader)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req
}

func sampleRequest(applicantID string) *domain.ReimbursementRequest {
	return &domain.ReimbursementRequest{
		RequestID:     uuid.NewString(),
		ApplicantID:   applicantID,
		Applicant:     &domain.User{UserID: applicantID, Username: "anna", FirstName: "Anna", LastName: "Schmidt"},
		IBAN:          "DE89370400440532013000",
		AccountHolder: "Anna Schmidt",
		Comment:       "Sommerfest Einkauf",
		Status:        domain.StatusPendingDecision,
		SubmittedAt:   time.Now(),
		Items: []domain.LineItem{
			{ItemID: uuid.NewString(), PositionLabel: "1", Description: "Getränke", Amount: decimal.RequireFromString("42.50")},
		},
	}
}

// --- Test Cases ---

func (suite *RequestHandlerTestSuite) TestCreateRequest_Success() {
	userID := uuid.NewString()
	expected := sampleRequest(userID)

	body := dto.CreateRequestRequest{
		IBAN:          "DE89370400440532013000",
		AccountHolder: "Anna Schmidt",
		Comment:       "Sommerfest Einkauf",
		Items: []dto.CreateLineItemRequest{
			{PositionLabel: "1", Description: "Getränke", Amount: "42,50"},
		},
	}

	suite.mockRequestService.On("CreateRequest",
		mock.AnythingOfType("*context.valueCtx"),
		mock.MatchedBy(func(req dto.CreateRequestRequest) bool {
			return req.IBAN == body.IBAN && len(req.Items) == 1
		}),
		userID,
	).Return(expected, nil).Once()

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, suite.authedRequest(http.MethodPost, "/api/v1/requests", body, userID))

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.RequestResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(expected.RequestID, resp.RequestID)
	suite.Equal("42.50", resp.Total)
	suite.mockRequestService.AssertExpectations(suite.T())
}

func (suite *RequestHandlerTestSuite) TestCreateRequest_MissingItemsRejectedByBinding() {
	userID := uuid.NewString()
	body := dto.CreateRequestRequest{
		IBAN:          "DE89370400440532013000",
		AccountHolder: "Anna Schmidt",
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, suite.authedRequest(http.MethodPost, "/api/v1/requests", body, userID))

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockRequestService.AssertNotCalled(suite.T(), "CreateRequest", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RequestHandlerTestSuite) TestCreateRequest_Unauthenticated() {
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/requests", bytes.NewReader(nil))

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockRequestService.AssertNotCalled(suite.T(), "CreateRequest", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RequestHandlerTestSuite) TestGetRequest_Forbidden() {
	userID := uuid.NewString()
	requestID := uuid.NewString()

	suite.mockRequestService.On("GetRequestByID",
		mock.AnythingOfType("*context.valueCtx"), requestID, userID,
	).Return(nil, apperrors.ErrForbidden).Once()

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, suite.authedRequest(http.MethodGet, "/api/v1/requests/"+requestID, nil, userID))

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *RequestHandlerTestSuite) TestGetRequest_NotFound() {
	userID := uuid.NewString()
	requestID := uuid.NewString()

	suite.mockRequestService.On("GetRequestByID",
		mock.AnythingOfType("*context.valueCtx"), requestID, userID,
	).Return(nil, apperrors.ErrNotFound).Once()

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, suite.authedRequest(http.MethodGet, "/api/v1/requests/"+requestID, nil, userID))

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *RequestHandlerTestSuite) TestListRequests_FilterParamsForwarded() {
	userID := uuid.NewString()
	expected := []domain.ReimbursementRequest{*sampleRequest(uuid.NewString())}

	suite.mockRequestService.On("ListRequests",
		mock.AnythingOfType("*context.valueCtx"),
		mock.MatchedBy(func(f domain.RequestFilter) bool {
			return f.ApplicantName == "anna" &&
				f.MinAmount != nil && f.MinAmount.Equal(decimal.RequireFromString("10.00")) &&
				len(f.FundingEventNames) == 2
		}),
		userID,
	).Return(expected, nil).Once()

	url := "/api/v1/requests?applicantName=anna&minAmount=10.00&eventName=Sommerfest&eventName=Winterfeier"
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, suite.authedRequest(http.MethodGet, url, nil, userID))

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListRequestsResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Requests, 1)
	suite.mockRequestService.AssertExpectations(suite.T())
}

func (suite *RequestHandlerTestSuite) TestListRequests_ForbiddenForMember() {
	userID := uuid.NewString()

	suite.mockRequestService.On("ListRequests",
		mock.AnythingOfType("*context.valueCtx"), mock.Anything, userID,
	).Return(nil, apperrors.ErrForbidden).Once()

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, suite.authedRequest(http.MethodGet, "/api/v1/requests", nil, userID))

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *RequestHandlerTestSuite) TestListMyRequests_Success() {
	userID := uuid.NewString()
	expected := []domain.ReimbursementRequest{*sampleRequest(userID)}

	suite.mockRequestService.On("ListMyRequests",
		mock.AnythingOfType("*context.valueCtx"), userID,
	).Return(expected, nil).Once()

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, suite.authedRequest(http.MethodGet, "/api/v1/requests/mine", nil, userID))

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListRequestsResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Requests, 1)
	suite.Equal(expected[0].RequestID, resp.Requests[0].RequestID)
}

func (suite *RequestHandlerTestSuite) TestUpdateStatus_Success() {
	userID := uuid.NewString()
	approved := sampleRequest(uuid.NewString())
	approved.Status = domain.StatusApproved

	suite.mockRequestService.On("SetStatus",
		mock.AnythingOfType("*context.valueCtx"), approved.RequestID, domain.StatusApproved, userID,
	).Return(approved, nil).Once()

	url := fmt.Sprintf("/api/v1/requests/%s/status", approved.RequestID)
	body := dto.UpdateRequestStatusRequest{Status: domain.StatusApproved}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, suite.authedRequest(http.MethodPatch, url, body, userID))

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.RequestResponse
	suite.NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(domain.StatusApproved, resp.Status)
	suite.mockRequestService.AssertExpectations(suite.T())
}

func (suite *RequestHandlerTestSuite) TestUpdateStatus_UnknownStatusRejectedByBinding() {
	userID := uuid.NewString()
	requestID := uuid.NewString()

	url := fmt.Sprintf("/api/v1/requests/%s/status", requestID)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, suite.authedRequest(http.MethodPatch, url, map[string]string{"status": "CANCELLED"}, userID))

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockRequestService.AssertNotCalled(suite.T(), "SetStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RequestHandlerTestSuite) TestDeleteRequest_NoContent() {
	userID := uuid.NewString()
	requestID := uuid.NewString()

	suite.mockRequestService.On("DeleteRequest",
		mock.AnythingOfType("*context.valueCtx"), requestID, userID,
	).Return(nil).Once()

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, suite.authedRequest(http.MethodDelete, "/api/v1/requests/"+requestID, nil, userID))

	suite.Equal(http.StatusNoContent, w.Code)
	suite.mockRequestService.AssertExpectations(suite.T())
}

func (suite *RequestHandlerTestSuite) TestRemoveLineItem_LastItemValidationError() {
	userID := uuid.NewString()
	requestID := uuid.NewString()
	itemID := uuid.NewString()

	suite.mockRequestService.On("RemoveLineItem",
		mock.AnythingOfType("*context.valueCtx"), requestID, itemID, userID,
	).Return(fmt.Errorf("%w: a request must keep at least one line item", apperrors.ErrValidation)).Once()

	url := fmt.Sprintf("/api/v1/requests/%s/items/%s", requestID, itemID)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, suite.authedRequest(http.MethodDelete, url, nil, userID))

	suite.Equal(http.StatusBadRequest, w.Code)
}

// --- Run Test Suite ---
func TestRequestHandler(t *testing.T) {
	suite.Run(t, new(RequestHandlerTestSuite))
}
