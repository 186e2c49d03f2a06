package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/kassenwart/kassenwart_backend/internal/apperrors"
	"github.com/kassenwart/kassenwart_backend/internal/core/domain"
	portssvc "github.com/kassenwart/kassenwart_backend/internal/core/ports/services"
	"github.com/kassenwart/kassenwart_backend/internal/core/services"
	"github.com/kassenwart/kassenwart_backend/internal/dto"
)

type EventServiceTestSuite struct {
	suite.Suite
	mockEventRepo *MockEventRepository
	mockUsers     *MockUserReaderSvc
	service       portssvc.EventSvcFacade
}

func (suite *EventServiceTestSuite) SetupTest() {
	suite.mockEventRepo = new(MockEventRepository)
	suite.mockUsers = new(MockUserReaderSvc)
	suite.service = services.NewEventService(suite.mockEventRepo, suite.mockUsers)
}

func (suite *EventServiceTestSuite) TestCreateEvent_Success() {
	ctx := context.Background()
	admin := adminUser()

	suite.mockUsers.On("GetUserByID", ctx, admin.UserID).Return(admin, nil).Once()
	suite.mockEventRepo.On("SaveEvent", ctx, mock.MatchedBy(func(e domain.FundingEvent) bool {
		return e.Name == "Sommerfest" && e.Date != nil && e.Date.Format("2006-01-02") == "2024-06-15"
	})).Return(nil).Once()

	event, err := suite.service.CreateEvent(ctx, dto.CreateEventRequest{Name: "Sommerfest", Date: "2024-06-15"}, admin.UserID)

	suite.Require().NoError(err)
	suite.NotEmpty(event.EventID)
	suite.Equal(admin.UserID, event.CreatedBy)
	suite.mockEventRepo.AssertExpectations(suite.T())
}

func (suite *EventServiceTestSuite) TestCreateEvent_UndatedAllowed() {
	ctx := context.Background()
	admin := adminUser()

	suite.mockUsers.On("GetUserByID", ctx, admin.UserID).Return(admin, nil).Once()
	suite.mockEventRepo.On("SaveEvent", ctx, mock.MatchedBy(func(e domain.FundingEvent) bool {
		return e.Name == "Laufende Kosten" && e.Date == nil
	})).Return(nil).Once()

	event, err := suite.service.CreateEvent(ctx, dto.CreateEventRequest{Name: "Laufende Kosten"}, admin.UserID)

	suite.Require().NoError(err)
	suite.Nil(event.Date)
}

func (suite *EventServiceTestSuite) TestCreateEvent_ForbiddenForMember() {
	ctx := context.Background()
	member := memberUser()

	suite.mockUsers.On("GetUserByID", ctx, member.UserID).Return(member, nil).Once()

	event, err := suite.service.CreateEvent(ctx, dto.CreateEventRequest{Name: "Sommerfest"}, member.UserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.Nil(event)
	suite.mockEventRepo.AssertNotCalled(suite.T(), "SaveEvent", mock.Anything, mock.Anything)
}

func (suite *EventServiceTestSuite) TestCreateBudgetCategory_Success() {
	ctx := context.Background()
	admin := adminUser()
	event := &domain.FundingEvent{EventID: "event-1", Name: "Sommerfest"}

	suite.mockUsers.On("GetUserByID", ctx, admin.UserID).Return(admin, nil).Once()
	suite.mockEventRepo.On("FindEventByID", ctx, "event-1").Return(event, nil).Once()
	suite.mockEventRepo.On("SaveBudgetCategory", ctx, mock.MatchedBy(func(c domain.BudgetCategory) bool {
		return c.EventID == "event-1" && c.Category == "Getränke" && c.PlannedAmount.Equal(decimal.RequireFromString("200.50"))
	})).Return(nil).Once()

	category, err := suite.service.CreateBudgetCategory(ctx, dto.CreateBudgetCategoryRequest{
		EventID:       "event-1",
		Category:      "Getränke",
		PlannedAmount: "200,50",
	}, admin.UserID)

	suite.Require().NoError(err)
	suite.NotEmpty(category.CategoryID)
	suite.mockEventRepo.AssertExpectations(suite.T())
}

func (suite *EventServiceTestSuite) TestCreateBudgetCategory_InvalidAmount() {
	ctx := context.Background()
	admin := adminUser()
	event := &domain.FundingEvent{EventID: "event-1"}

	suite.mockUsers.On("GetUserByID", ctx, admin.UserID).Return(admin, nil).Once()
	suite.mockEventRepo.On("FindEventByID", ctx, "event-1").Return(event, nil).Once()

	category, err := suite.service.CreateBudgetCategory(ctx, dto.CreateBudgetCategoryRequest{
		EventID:       "event-1",
		Category:      "Getränke",
		PlannedAmount: "not-a-number",
	}, admin.UserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(category)
	suite.mockEventRepo.AssertNotCalled(suite.T(), "SaveBudgetCategory", mock.Anything, mock.Anything)
}

func (suite *EventServiceTestSuite) TestCreateBudgetCategory_UnknownEvent() {
	ctx := context.Background()
	admin := adminUser()

	suite.mockUsers.On("GetUserByID", ctx, admin.UserID).Return(admin, nil).Once()
	suite.mockEventRepo.On("FindEventByID", ctx, "missing").Return(nil, apperrors.ErrNotFound).Once()

	category, err := suite.service.CreateBudgetCategory(ctx, dto.CreateBudgetCategoryRequest{
		EventID:       "missing",
		Category:      "Getränke",
		PlannedAmount: "10.00",
	}, admin.UserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Nil(category)
}

func (suite *EventServiceTestSuite) TestCreateIncomeEntry_Success() {
	ctx := context.Background()
	admin := adminUser()
	event := &domain.FundingEvent{EventID: "event-1"}

	suite.mockUsers.On("GetUserByID", ctx, admin.UserID).Return(admin, nil).Once()
	suite.mockEventRepo.On("FindEventByID", ctx, "event-1").Return(event, nil).Once()
	suite.mockEventRepo.On("SaveIncomeEntry", ctx, mock.MatchedBy(func(e domain.IncomeEntry) bool {
		return e.EventID == "event-1" && e.Source == "Spende Musikverein" &&
			e.Amount.Equal(decimal.RequireFromString("150.00")) &&
			e.ReceivedAt != nil && e.ReceivedAt.Format("2006-01-02") == "2024-05-01"
	})).Return(nil).Once()

	entry, err := suite.service.CreateIncomeEntry(ctx, dto.CreateIncomeEntryRequest{
		EventID:    "event-1",
		Source:     "Spende Musikverein",
		Amount:     "150 €",
		ReceivedAt: "2024-05-01",
	}, admin.UserID)

	suite.Require().NoError(err)
	suite.NotEmpty(entry.IncomeID)
	suite.mockEventRepo.AssertExpectations(suite.T())
}

func (suite *EventServiceTestSuite) TestCreateIncomeEntry_NegativeAmountRejected() {
	ctx := context.Background()
	admin := adminUser()
	event := &domain.FundingEvent{EventID: "event-1"}

	suite.mockUsers.On("GetUserByID", ctx, admin.UserID).Return(admin, nil).Once()
	suite.mockEventRepo.On("FindEventByID", ctx, "event-1").Return(event, nil).Once()

	entry, err := suite.service.CreateIncomeEntry(ctx, dto.CreateIncomeEntryRequest{
		EventID: "event-1",
		Source:  "Spende",
		Amount:  "-20.00",
	}, admin.UserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Nil(entry)
}

func (suite *EventServiceTestSuite) TestDeleteEvent_ForbiddenForMember() {
	ctx := context.Background()
	member := memberUser()

	suite.mockUsers.On("GetUserByID", ctx, member.UserID).Return(member, nil).Once()

	err := suite.service.DeleteEvent(ctx, "event-1", member.UserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockEventRepo.AssertNotCalled(suite.T(), "DeleteEvent", mock.Anything, mock.Anything)
}

func (suite *EventServiceTestSuite) TestDeleteEvent_Success() {
	ctx := context.Background()
	admin := adminUser()
	event := &domain.FundingEvent{EventID: "event-1"}

	suite.mockUsers.On("GetUserByID", ctx, admin.UserID).Return(admin, nil).Once()
	suite.mockEventRepo.On("FindEventByID", ctx, "event-1").Return(event, nil).Once()
	suite.mockEventRepo.On("DeleteEvent", ctx, "event-1").Return(nil).Once()

	err := suite.service.DeleteEvent(ctx, "event-1", admin.UserID)

	suite.Require().NoError(err)
	suite.mockEventRepo.AssertExpectations(suite.T())
}

// --- Run Test Suite ---
func TestEventService(t *testing.T) {
	suite.Run(t, new(EventServiceTestSuite))
}
