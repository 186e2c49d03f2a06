package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/kassenwart/kassenwart_backend/internal/apperrors"
	"github.com/kassenwart/kassenwart_backend/internal/core/domain"
	portsrepo "github.com/kassenwart/kassenwart_backend/internal/core/ports/repositories"
	portssvc "github.com/kassenwart/kassenwart_backend/internal/core/ports/services"
	"github.com/kassenwart/kassenwart_backend/internal/core/services"
	"github.com/kassenwart/kassenwart_backend/internal/dto"
	"github.com/kassenwart/kassenwart_backend/internal/utils"
)

// --- Mock UserRepository ---

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindUsers(ctx context.Context, limit int, offset int) ([]domain.User, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, expiryTime time.Time) error {
	args := m.Called(ctx, userID, refreshTokenHash, expiryTime)
	return args.Error(0)
}

func (m *MockUserRepository) ClearRefreshToken(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserRepository) MarkUserDeleted(ctx context.Context, userID string, deletedAt time.Time, deletedBy string) error {
	args := m.Called(ctx, userID, deletedAt, deletedBy)
	return args.Error(0)
}

var _ portsrepo.UserRepositoryFacade = (*MockUserRepository)(nil)

// --- Test Suite ---

type UserServiceTestSuite struct {
	suite.Suite
	mockRepo *MockUserRepository
	service  portssvc.UserSvcFacade
}

func (suite *UserServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockUserRepository)
	suite.service = services.NewUserService(suite.mockRepo)
}

func (suite *UserServiceTestSuite) TestCreateUser_Success() {
	ctx := context.Background()
	req := dto.CreateUserRequest{
		Username:  "anna",
		Password:  "correct horse battery",
		FirstName: "Anna",
		LastName:  "Schmidt",
		Email:     "anna@example.com",
	}

	suite.mockRepo.On("FindUserByUsername", ctx, "anna").Return(nil, apperrors.ErrNotFound).Once()

	var saved domain.User
	suite.mockRepo.On("SaveUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		saved = u
		return u.Username == "anna"
	})).Return(nil).Once()

	user, err := suite.service.CreateUser(ctx, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(user)
	suite.Equal(domain.RoleMember, user.Role, "role defaults to MEMBER when the request leaves it empty")
	suite.NotEmpty(user.UserID)
	suite.Equal(user.UserID, saved.CreatedBy, "self-registration: the user is their own creator")
	suite.NotEqual(req.Password, saved.PasswordHash)
	suite.True(utils.CheckPasswordHash(req.Password, saved.PasswordHash))
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestCreateUser_DuplicateUsername() {
	ctx := context.Background()
	existing := memberUser()
	existing.Username = "anna"

	suite.mockRepo.On("FindUserByUsername", ctx, "anna").Return(existing, nil).Once()

	user, err := suite.service.CreateUser(ctx, dto.CreateUserRequest{Username: "anna", Password: "supersecret"})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.Nil(user)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveUser", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestProvisionGoogleUser_CreatesGuest() {
	ctx := context.Background()
	info := domain.GoogleUserInfo{
		Sub:        "google-sub-1",
		Email:      "bernd@example.com",
		GivenName:  "Bernd",
		FamilyName: "Meier",
	}

	var saved domain.User
	suite.mockRepo.On("SaveUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		saved = u
		return u.Email == info.Email
	})).Return(nil).Once()

	user, err := suite.service.ProvisionGoogleUser(ctx, info)

	suite.Require().NoError(err)
	suite.Equal(domain.RoleGuest, user.Role)
	suite.Equal(info.Email, user.Username, "google accounts use the email as username")
	suite.Empty(saved.PasswordHash, "google accounts carry no local password")
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_Success() {
	ctx := context.Background()
	hash, err := utils.HashPassword("open sesame")
	suite.Require().NoError(err)
	stored := memberUser()
	stored.PasswordHash = hash

	suite.mockRepo.On("FindUserByUsername", ctx, stored.Username).Return(stored, nil).Once()

	user, err := suite.service.AuthenticateUser(ctx, stored.Username, "open sesame")

	suite.Require().NoError(err)
	suite.Equal(stored.UserID, user.UserID)
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_WrongPassword() {
	ctx := context.Background()
	hash, err := utils.HashPassword("open sesame")
	suite.Require().NoError(err)
	stored := memberUser()
	stored.PasswordHash = hash

	suite.mockRepo.On("FindUserByUsername", ctx, stored.Username).Return(stored, nil).Once()

	user, err := suite.service.AuthenticateUser(ctx, stored.Username, "wrong")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
	suite.Nil(user)
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_UnknownUserIndistinguishable() {
	ctx := context.Background()

	suite.mockRepo.On("FindUserByUsername", ctx, "nobody").Return(nil, apperrors.ErrNotFound).Once()

	user, err := suite.service.AuthenticateUser(ctx, "nobody", "whatever")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnauthorized, "unknown users yield the same error as a wrong password")
	suite.Nil(user)
}

func (suite *UserServiceTestSuite) TestAuthenticateUser_DeletedUserRejected() {
	ctx := context.Background()
	hash, err := utils.HashPassword("open sesame")
	suite.Require().NoError(err)
	now := time.Now()
	stored := memberUser()
	stored.PasswordHash = hash
	stored.DeletedAt = &now

	suite.mockRepo.On("FindUserByUsername", ctx, stored.Username).Return(stored, nil).Once()

	user, err := suite.service.AuthenticateUser(ctx, stored.Username, "open sesame")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
	suite.Nil(user)
}

func (suite *UserServiceTestSuite) TestUpdateUser_RoleChangeRequiresManager() {
	ctx := context.Background()
	member := memberUser()
	target := memberUser()
	newRole := domain.RoleAdmin

	suite.mockRepo.On("FindUserByID", ctx, target.UserID).Return(target, nil).Once()
	suite.mockRepo.On("FindUserByID", ctx, member.UserID).Return(member, nil).Once()

	user, err := suite.service.UpdateUser(ctx, target.UserID, dto.UpdateUserRequest{Role: &newRole}, member.UserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.Nil(user)
	suite.mockRepo.AssertNotCalled(suite.T(), "UpdateUser", mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestUpdateUser_AdminChangesRole() {
	ctx := context.Background()
	admin := adminUser()
	target := memberUser()
	newRole := domain.RoleAdmin

	suite.mockRepo.On("FindUserByID", ctx, target.UserID).Return(target, nil).Once()
	suite.mockRepo.On("FindUserByID", ctx, admin.UserID).Return(admin, nil).Once()
	suite.mockRepo.On("UpdateUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.UserID == target.UserID && u.Role == domain.RoleAdmin
	})).Return(nil).Once()

	user, err := suite.service.UpdateUser(ctx, target.UserID, dto.UpdateUserRequest{Role: &newRole}, admin.UserID)

	suite.Require().NoError(err)
	suite.Equal(domain.RoleAdmin, user.Role)
	suite.Equal(admin.UserID, user.LastUpdatedBy)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestUpdateUser_ForeignProfileForbiddenForMember() {
	ctx := context.Background()
	member := memberUser()
	target := memberUser()

	suite.mockRepo.On("FindUserByID", ctx, target.UserID).Return(target, nil).Once()
	suite.mockRepo.On("FindUserByID", ctx, member.UserID).Return(member, nil).Once()

	user, err := suite.service.UpdateUser(ctx, target.UserID, dto.UpdateUserRequest{FirstName: stringPtr("Eva")}, member.UserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.Nil(user)
}

func (suite *UserServiceTestSuite) TestUpdateUser_SelfServiceProfileFields() {
	ctx := context.Background()
	member := memberUser()

	suite.mockRepo.On("FindUserByID", ctx, member.UserID).Return(member, nil).Once()
	suite.mockRepo.On("UpdateUser", ctx, mock.MatchedBy(func(u domain.User) bool {
		return u.UserID == member.UserID && u.FirstName == "Eva" && u.Email == "eva@example.com"
	})).Return(nil).Once()

	user, err := suite.service.UpdateUser(ctx, member.UserID, dto.UpdateUserRequest{
		FirstName: stringPtr("Eva"),
		Email:     stringPtr("eva@example.com"),
	}, member.UserID)

	suite.Require().NoError(err)
	suite.Equal("Eva", user.FirstName)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestDeleteUser_ForbiddenForMember() {
	ctx := context.Background()
	member := memberUser()

	suite.mockRepo.On("FindUserByID", ctx, member.UserID).Return(member, nil).Once()

	err := suite.service.DeleteUser(ctx, "some-user", member.UserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockRepo.AssertNotCalled(suite.T(), "MarkUserDeleted", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *UserServiceTestSuite) TestDeleteUser_AdminSoftDeletes() {
	ctx := context.Background()
	admin := adminUser()
	target := memberUser()

	suite.mockRepo.On("FindUserByID", ctx, admin.UserID).Return(admin, nil).Once()
	suite.mockRepo.On("MarkUserDeleted", ctx, target.UserID, mock.AnythingOfType("time.Time"), admin.UserID).Return(nil).Once()

	err := suite.service.DeleteUser(ctx, target.UserID, admin.UserID)

	suite.Require().NoError(err)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *UserServiceTestSuite) TestListUsers_DefaultsLimit() {
	ctx := context.Background()

	suite.mockRepo.On("FindUsers", ctx, 20, 0).Return([]domain.User{*memberUser()}, nil).Once()

	users, err := suite.service.ListUsers(ctx, 0, 0)

	suite.Require().NoError(err)
	suite.Len(users, 1)
	suite.mockRepo.AssertExpectations(suite.T())
}

// --- Run Test Suite ---
func TestUserService(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}
