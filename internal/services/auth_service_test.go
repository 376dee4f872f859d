package services_test

import (
	"fmt"
	"log"
	"os"
	"testing"

	"aportar/internal/models"
	"aportar/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock implementation of repositories.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByUsername(username string) (*models.User, error) {
	args := m.Called(username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func TestMain(m *testing.M) {
	log.SetOutput(os.Stdout)
	code := m.Run()
	os.Exit(code)
}

func notFoundErr(what string) error {
	return fmt.Errorf("%s: %w", what, models.ErrNotFound)
}

func TestAuthService_Register(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, "test_session_secret")

	user := &models.User{
		Username:   "ana",
		Email:      "ana@x.com",
		FirstName:  "Ana",
		LastName:   "Gomez",
		NationalID: "30123456",
		District:   "Centro",
	}

	// Successful registration hashes the password before persisting.
	mockRepo.On("GetByUsername", "ana").Return(nil, notFoundErr("ana")).Once()
	mockRepo.On("GetByEmail", "ana@x.com").Return(nil, notFoundErr("ana@x.com")).Once()
	mockRepo.On("Create", mock.AnythingOfType("*models.User")).Return(nil).Once()

	err := authService.Register(user, "password123")
	assert.NoError(t, err)
	assert.NotEqual(t, "password123", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")))
	mockRepo.AssertExpectations(t)

	// Username already taken.
	mockRepo.On("GetByUsername", "ana").Return(&models.User{ID: "1"}, nil).Once()
	err = authService.Register(user, "password123")
	assert.ErrorIs(t, err, models.ErrDuplicateUsername)
	mockRepo.AssertExpectations(t)

	// Email already registered.
	mockRepo.On("GetByUsername", "ana").Return(nil, notFoundErr("ana")).Once()
	mockRepo.On("GetByEmail", "ana@x.com").Return(&models.User{ID: "1"}, nil).Once()
	err = authService.Register(user, "password123")
	assert.ErrorIs(t, err, models.ErrDuplicateEmail)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_Login(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, "test_session_secret")

	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	user := &models.User{
		ID:           "user-123",
		Username:     "ana",
		Email:        "ana@x.com",
		PasswordHash: string(hashedPassword),
	}

	// Successful login returns a token that validates back to the identity.
	mockRepo.On("GetByUsername", "ana").Return(user, nil).Once()
	token, err := authService.Login("ana", "password123")
	assert.NoError(t, err)
	assert.NotEmpty(t, token)

	userID, username, err := authService.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "user-123", userID)
	assert.Equal(t, "ana", username)
	mockRepo.AssertExpectations(t)

	// Wrong password.
	mockRepo.On("GetByUsername", "ana").Return(user, nil).Once()
	_, err = authService.Login("ana", "wrongpassword")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	mockRepo.AssertExpectations(t)

	// Unknown username surfaces the same error as a wrong password.
	mockRepo.On("GetByUsername", "nobody").Return(nil, notFoundErr("nobody")).Once()
	_, err = authService.Login("nobody", "password123")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	mockRepo.AssertExpectations(t)
}

func TestAuthService_ValidateToken_Invalid(t *testing.T) {
	mockRepo := new(MockUserRepository)
	authService := services.NewAuthService(mockRepo, "test_session_secret")

	_, _, err := authService.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, models.ErrNotAuthenticated)

	// A token signed with a different secret is rejected.
	other := services.NewAuthService(mockRepo, "other_secret")
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("pw123456"), bcrypt.DefaultCost)
	mockRepo.On("GetByUsername", "ana").Return(&models.User{
		ID: "user-123", Username: "ana", PasswordHash: string(hashedPassword),
	}, nil).Once()
	token, err := other.Login("ana", "pw123456")
	assert.NoError(t, err)

	_, _, err = authService.ValidateToken(token)
	assert.ErrorIs(t, err, models.ErrNotAuthenticated)
	mockRepo.AssertExpectations(t)
}
