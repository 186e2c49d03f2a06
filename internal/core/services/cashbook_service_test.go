package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/kassenwart/kassenwart_backend/internal/apperrors"
	"github.com/kassenwart/kassenwart_backend/internal/core/domain"
	portsrepo "github.com/kassenwart/kassenwart_backend/internal/core/ports/repositories"
	portssvc "github.com/kassenwart/kassenwart_backend/internal/core/ports/services"
	"github.com/kassenwart/kassenwart_backend/internal/core/services"
	"github.com/kassenwart/kassenwart_backend/internal/dto"
	"github.com/kassenwart/kassenwart_backend/internal/utils/pagination"
)

// --- Mock CashbookRepository ---
type MockCashbookRepository struct {
	mock.Mock
}

func (m *MockCashbookRepository) ListEntries(ctx context.Context, limit int, after *portsrepo.CashbookCursor) ([]domain.CashbookEntry, error) {
	args := m.Called(ctx, limit, after)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CashbookEntry), args.Error(1)
}

func (m *MockCashbookRepository) FindLatestEntry(ctx context.Context) (*domain.CashbookEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CashbookEntry), args.Error(1)
}

func (m *MockCashbookRepository) FindEntryByID(ctx context.Context, entryID string) (*domain.CashbookEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CashbookEntry), args.Error(1)
}

func (m *MockCashbookRepository) SaveEntry(ctx context.Context, entry domain.CashbookEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockCashbookRepository) DeleteEntry(ctx context.Context, entryID string) error {
	args := m.Called(ctx, entryID)
	return args.Error(0)
}

var _ portsrepo.CashbookRepositoryFacade = (*MockCashbookRepository)(nil)

// --- Test Suite ---
type CashbookServiceTestSuite struct {
	suite.Suite
	mockCashbookRepo *MockCashbookRepository
	mockRequestRepo  *MockRequestRepository
	mockEventRepo    *MockEventRepository
	mockUsers        *MockUserReaderSvc
	service          portssvc.CashbookSvcFacade
}

func (suite *CashbookServiceTestSuite) SetupTest() {
	suite.mockCashbookRepo = new(MockCashbookRepository)
	suite.mockRequestRepo = new(MockRequestRepository)
	suite.mockEventRepo = new(MockEventRepository)
	suite.mockUsers = new(MockUserReaderSvc)
	suite.service = services.NewCashbookService(suite.mockCashbookRepo, suite.mockRequestRepo, suite.mockEventRepo, suite.mockUsers)
}

// --- AppendIncome / AppendExpense balance chaining ---

func (suite *CashbookServiceTestSuite) TestAppendIncome_EmptyLedgerStartsAtZero() {
	ctx := context.Background()
	admin := adminUser()
	incomeID := uuid.NewString()

	suite.mockUsers.On("GetUserByID", ctx, admin.UserID).Return(admin, nil).Once()
	suite.mockEventRepo.On("FindIncomeEntryByID", ctx, incomeID).Return(&domain.IncomeEntry{IncomeID: incomeID}, nil).Once()
	suite.mockCashbookRepo.On("FindLatestEntry", ctx).Return(nil, apperrors.ErrNotFound).Once()

	var saved domain.CashbookEntry
	suite.mockCashbookRepo.On("SaveEntry", ctx, mock.MatchedBy(func(e domain.CashbookEntry) bool {
		saved = e
		return e.Direction == domain.CashbookIncome
	})).Return(nil).Once()

	entry, err := suite.service.AppendIncome(ctx, dto.CreateCashIncomeRequest{
		Amount:        "100.00",
		BookingDate:   "2024-06-01",
		Comment:       "Spende Sommerfest",
		IncomeEntryID: incomeID,
	}, admin.UserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(entry)
	suite.True(saved.BalanceBefore.IsZero())
	suite.True(saved.BalanceAfter.Equal(decimal.RequireFromString("100.00")), "got %s", saved.BalanceAfter)
	suite.mockCashbookRepo.AssertExpectations(suite.T())
}

func (suite *CashbookServiceTestSuite) TestAppendExpense_ChainsFromLatestBalance() {
	ctx := context.Background()
	admin := adminUser()

	latest := &domain.CashbookEntry{
		EntryID:      uuid.NewString(),
		BookingDate:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		BalanceAfter: decimal.RequireFromString("150.00"),
	}

	suite.mockUsers.On("GetUserByID", ctx, admin.UserID).Return(admin, nil).Once()
	suite.mockCashbookRepo.On("FindLatestEntry", ctx).Return(latest, nil).Once()

	var saved domain.CashbookEntry
	suite.mockCashbookRepo.On("SaveEntry", ctx, mock.MatchedBy(func(e domain.CashbookEntry) bool {
		saved = e
		return e.Direction == domain.CashbookExpense
	})).Return(nil).Once()

	entry, err := suite.service.AppendExpense(ctx, dto.CreateCashExpenseRequest{
		Amount:      "50.00",
		BookingDate: "2024-06-02",
		Comment:     "Pfandrückgabe Becher",
	}, admin.UserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(entry)
	suite.True(saved.BalanceBefore.Equal(decimal.RequireFromString("150.00")))
	suite.True(saved.BalanceAfter.Equal(decimal.RequireFromString("100.00")), "expense subtracts, got %s", saved.BalanceAfter)
}

func (suite *CashbookServiceTestSuite) TestAppendIncome_RechainsAfterConcurrentAppend() {
	ctx := context.Background()
	admin := adminUser()
	incomeID := uuid.NewString()

	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	latest := &domain.CashbookEntry{
		EntryID:      uuid.NewString(),
		BookingDate:  day,
		BalanceAfter: decimal.RequireFromString("100.00"),
	}
	// Another append commits between our read and our save.
	afterRace := &domain.CashbookEntry{
		EntryID:      uuid.NewString(),
		BookingDate:  day,
		BalanceAfter: decimal.RequireFromString("150.00"),
	}

	suite.mockUsers.On("GetUserByID", ctx, admin.UserID).Return(admin, nil).Once()
	suite.mockEventRepo.On("FindIncomeEntryByID", ctx, incomeID).Return(&domain.IncomeEntry{IncomeID: incomeID}, nil).Once()
	suite.mockCashbookRepo.On("FindLatestEntry", ctx).Return(latest, nil).Once()
	suite.mockCashbookRepo.On("SaveEntry", ctx, mock.MatchedBy(func(e domain.CashbookEntry) bool {
		return e.BalanceBefore.Equal(decimal.RequireFromString("100.00"))
	})).Return(apperrors.ErrConflict).Once()
	suite.mockCashbookRepo.On("FindLatestEntry", ctx).Return(afterRace, nil).Once()

	var saved domain.CashbookEntry
	suite.mockCashbookRepo.On("SaveEntry", ctx, mock.MatchedBy(func(e domain.CashbookEntry) bool {
		saved = e
		return e.BalanceBefore.Equal(decimal.RequireFromString("150.00"))
	})).Return(nil).Once()

	entry, err := suite.service.AppendIncome(ctx, dto.CreateCashIncomeRequest{
		Amount:        "50.00",
		BookingDate:   "2024-06-02",
		Comment:       "Nachzahlung",
		IncomeEntryID: incomeID,
	}, admin.UserID)

	suite.Require().NoError(err)
	suite.Require().NotNil(entry)
	// The retried entry chains off the balance the race left behind.
	suite.True(saved.BalanceBefore.Equal(decimal.RequireFromString("150.00")), "got %s", saved.BalanceBefore)
	suite.True(saved.BalanceAfter.Equal(decimal.RequireFromString("200.00")), "got %s", saved.BalanceAfter)
	suite.mockCashbookRepo.AssertExpectations(suite.T())
}

func (suite *CashbookServiceTestSuite) TestAppendIncome_ConflictRetriesBounded() {
	ctx := context.Background()
	admin := adminUser()
	incomeID := uuid.NewString()

	latest := &domain.CashbookEntry{
		EntryID:      uuid.NewString(),
		BookingDate:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		BalanceAfter: decimal.RequireFromString("100.00"),
	}

	suite.mockUsers.On("GetUserByID", ctx, admin.UserID).Return(admin, nil).Once()
	suite.mockEventRepo.On("FindIncomeEntryByID", ctx, incomeID).Return(&domain.IncomeEntry{IncomeID: incomeID}, nil).Once()
	suite.mockCashbookRepo.On("FindLatestEntry", ctx).Return(latest, nil).Times(3)
	suite.mockCashbookRepo.On("SaveEntry", ctx, mock.AnythingOfType("domain.CashbookEntry")).Return(apperrors.ErrConflict).Times(3)

	entry, err := suite.service.AppendIncome(ctx, dto.CreateCashIncomeRequest{
		Amount:        "50.00",
		BookingDate:   "2024-06-02",
		Comment:       "Dauerkonflikt",
		IncomeEntryID: incomeID,
	}, admin.UserID)

	suite.Require().Error(err)
	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrConflict)
	suite.mockCashbookRepo.AssertExpectations(suite.T())
}

func (suite *CashbookServiceTestSuite) TestAppendExpense_BackdatedRejected() {
	ctx := context.Background()
	admin := adminUser()

	latest := &domain.CashbookEntry{
		BookingDate:  time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		BalanceAfter: decimal.RequireFromString("80.00"),
	}

	suite.mockUsers.On("GetUserByID", ctx, admin.UserID).Return(admin, nil).Once()
	suite.mockCashbookRepo.On("FindLatestEntry", ctx).Return(latest, nil).Once()

	entry, err := suite.service.AppendExpense(ctx, dto.CreateCashExpenseRequest{
		Amount:      "10.00",
		BookingDate: "2024-06-05",
		Comment:     "zu spät erfasst",
	}, admin.UserID)

	suite.Require().Error(err)
	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.ErrorContains(err, services.ErrBackdatedEntry.Error())
	suite.mockCashbookRepo.AssertNotCalled(suite.T(), "SaveEntry")
}

func (suite *CashbookServiceTestSuite) TestAppendExpense_SameDayAsLatestAllowed() {
	ctx := context.Background()
	admin := adminUser()

	latest := &domain.CashbookEntry{
		BookingDate:  time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		BalanceAfter: decimal.RequireFromString("80.00"),
	}

	suite.mockUsers.On("GetUserByID", ctx, admin.UserID).Return(admin, nil).Once()
	suite.mockCashbookRepo.On("FindLatestEntry", ctx).Return(latest, nil).Once()
	suite.mockCashbookRepo.On("SaveEntry", ctx, mock.AnythingOfType("domain.CashbookEntry")).Return(nil).Once()

	_, err := suite.service.AppendExpense(ctx, dto.CreateCashExpenseRequest{
		Amount:      "10.00",
		BookingDate: "2024-06-10",
		Comment:     "gleicher Tag",
	}, admin.UserID)

	suite.Require().NoError(err)
	suite.mockCashbookRepo.AssertExpectations(suite.T())
}

func (suite *CashbookServiceTestSuite) TestAppendExpense_ForbiddenForMember() {
	ctx := context.Background()
	member := memberUser()

	suite.mockUsers.On("GetUserByID", ctx, member.UserID).Return(member, nil).Once()

	entry, err := suite.service.AppendExpense(ctx, dto.CreateCashExpenseRequest{
		Amount:      "10.00",
		BookingDate: "2024-06-01",
		Comment:     "nope",
	}, member.UserID)

	suite.Require().Error(err)
	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockCashbookRepo.AssertNotCalled(suite.T(), "SaveEntry")
}

// --- Request link validation ---

func (suite *CashbookServiceTestSuite) TestAppendExpense_UnapprovedRequestRejected() {
	ctx := context.Background()
	admin := adminUser()
	requestID := uuid.NewString()

	suite.mockUsers.On("GetUserByID", ctx, admin.UserID).Return(admin, nil).Once()
	suite.mockRequestRepo.On("FindRequestByID", ctx, requestID).
		Return(&domain.ReimbursementRequest{RequestID: requestID, Status: domain.StatusPendingDecision}, nil).Once()

	entry, err := suite.service.AppendExpense(ctx, dto.CreateCashExpenseRequest{
		Amount:      "25.00",
		BookingDate: "2024-06-01",
		Comment:     "Auszahlung",
		RequestID:   &requestID,
	}, admin.UserID)

	suite.Require().Error(err)
	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.ErrorContains(err, services.ErrRequestNotBooked.Error())
}

func (suite *CashbookServiceTestSuite) TestAppendExpense_AlreadyBookedRequestRejected() {
	ctx := context.Background()
	admin := adminUser()
	requestID := uuid.NewString()

	suite.mockUsers.On("GetUserByID", ctx, admin.UserID).Return(admin, nil).Once()
	suite.mockRequestRepo.On("FindRequestByID", ctx, requestID).
		Return(&domain.ReimbursementRequest{RequestID: requestID, Status: domain.StatusApproved}, nil).Once()
	// The request no longer shows up among the unbooked approved requests.
	suite.mockRequestRepo.On("ListRequestsAvailableForCashbook", ctx).
		Return([]domain.ReimbursementRequest{}, nil).Once()

	entry, err := suite.service.AppendExpense(ctx, dto.CreateCashExpenseRequest{
		Amount:      "25.00",
		BookingDate: "2024-06-01",
		Comment:     "Doppelbuchung",
		RequestID:   &requestID,
	}, admin.UserID)

	suite.Require().Error(err)
	suite.Nil(entry)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.ErrorContains(err, services.ErrAlreadyBooked.Error())
	suite.mockCashbookRepo.AssertNotCalled(suite.T(), "SaveEntry")
}

// --- ListEntries pagination ---

func (suite *CashbookServiceTestSuite) TestListEntries_PagesWithNextToken() {
	ctx := context.Background()
	admin := adminUser()

	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	entries := []domain.CashbookEntry{
		{EntryID: "e1", BookingDate: day, AuditFields: domain.AuditFields{CreatedAt: day.Add(1 * time.Hour)}},
		{EntryID: "e2", BookingDate: day, AuditFields: domain.AuditFields{CreatedAt: day.Add(2 * time.Hour)}},
		{EntryID: "e3", BookingDate: day.AddDate(0, 0, 1), AuditFields: domain.AuditFields{CreatedAt: day.Add(26 * time.Hour)}},
	}

	suite.mockUsers.On("GetUserByID", ctx, admin.UserID).Return(admin, nil).Once()
	// Service fetches one extra row to detect a further page.
	suite.mockCashbookRepo.On("ListEntries", ctx, 3, (*portsrepo.CashbookCursor)(nil)).Return(entries, nil).Once()

	page, nextToken, err := suite.service.ListEntries(ctx, admin.UserID, 2, "")

	suite.Require().NoError(err)
	suite.Len(page, 2)
	suite.Equal("e1", page[0].EntryID)
	suite.Equal("e2", page[1].EntryID)
	suite.Require().NotEmpty(nextToken)

	// The token resumes after the last served entry.
	bookingDate, createdAt, entryID, err := pagination.DecodeToken(nextToken)
	suite.Require().NoError(err)
	suite.True(bookingDate.Equal(entries[1].BookingDate))
	suite.True(createdAt.Equal(entries[1].CreatedAt))
	suite.Equal("e2", entryID)
}

func (suite *CashbookServiceTestSuite) TestListEntries_CursorResumesAfterExactEntry() {
	ctx := context.Background()
	admin := adminUser()

	// Two entries booked and created at the same instant; the cursor must
	// single out e2 so e3 is not skipped on the next page.
	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	createdAt := day.Add(9 * time.Hour)
	token := pagination.EncodeToken(day, createdAt, "e2")

	suite.mockUsers.On("GetUserByID", ctx, admin.UserID).Return(admin, nil).Once()
	suite.mockCashbookRepo.On("ListEntries", ctx, 3, mock.MatchedBy(func(after *portsrepo.CashbookCursor) bool {
		return after != nil && after.BookingDate.Equal(day) && after.CreatedAt.Equal(createdAt) && after.EntryID == "e2"
	})).Return([]domain.CashbookEntry{{EntryID: "e3", BookingDate: day, AuditFields: domain.AuditFields{CreatedAt: createdAt}}}, nil).Once()

	page, nextToken, err := suite.service.ListEntries(ctx, admin.UserID, 2, token)

	suite.Require().NoError(err)
	suite.Len(page, 1)
	suite.Equal("e3", page[0].EntryID)
	suite.Empty(nextToken)
	suite.mockCashbookRepo.AssertExpectations(suite.T())
}

func (suite *CashbookServiceTestSuite) TestListEntries_NoLimitReturnsFullLedger() {
	ctx := context.Background()
	admin := adminUser()

	suite.mockUsers.On("GetUserByID", ctx, admin.UserID).Return(admin, nil).Once()
	suite.mockCashbookRepo.On("ListEntries", ctx, 0, (*portsrepo.CashbookCursor)(nil)).
		Return([]domain.CashbookEntry{{EntryID: "e1"}}, nil).Once()

	page, nextToken, err := suite.service.ListEntries(ctx, admin.UserID, 0, "")

	suite.Require().NoError(err)
	suite.Len(page, 1)
	suite.Empty(nextToken)
}

func (suite *CashbookServiceTestSuite) TestListEntries_InvalidTokenRejected() {
	ctx := context.Background()
	admin := adminUser()

	suite.mockUsers.On("GetUserByID", ctx, admin.UserID).Return(admin, nil).Once()

	_, _, err := suite.service.ListEntries(ctx, admin.UserID, 10, "not a token")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockCashbookRepo.AssertNotCalled(suite.T(), "ListEntries")
}

// --- DeleteEntry ---

func (suite *CashbookServiceTestSuite) TestDeleteEntry_DoesNotRecomputeBalances() {
	ctx := context.Background()
	admin := adminUser()
	entryID := uuid.NewString()

	suite.mockUsers.On("GetUserByID", ctx, admin.UserID).Return(admin, nil).Once()
	suite.mockCashbookRepo.On("FindEntryByID", ctx, entryID).Return(&domain.CashbookEntry{EntryID: entryID}, nil).Once()
	suite.mockCashbookRepo.On("DeleteEntry", ctx, entryID).Return(nil).Once()

	err := suite.service.DeleteEntry(ctx, entryID, admin.UserID)

	suite.Require().NoError(err)
	// Later entries keep their stored balances; no rewrite happens.
	suite.mockCashbookRepo.AssertNotCalled(suite.T(), "SaveEntry")
	suite.mockCashbookRepo.AssertExpectations(suite.T())
}

// --- Run Test Suite ---
func TestCashbookService(t *testing.T) {
	suite.Run(t, new(CashbookServiceTestSuite))
}
