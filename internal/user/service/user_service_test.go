package service

import (
	"context"
	"testing"

	"github.com/ridloal/toy-store-backend/internal/platform/apperr"
	"github.com/ridloal/toy-store-backend/internal/user/domain"
	"github.com/ridloal/toy-store-backend/internal/user/repository"
	"github.com/ridloal/toy-store-backend/internal/user/repository/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newService(repo repository.UserRepository) *userService {
	s := NewUserService(repo).(*userService)
	s.cost = bcrypt.MinCost
	return s
}

func TestUserService_Register(t *testing.T) {
	ctx := context.TODO()
	req := domain.RegisterRequest{Username: " lucia ", Password: "secret123", Name: "Lucia", Email: "Lucia@Example.com"}

	t.Run("Successful registration", func(t *testing.T) {
		mockRepo := new(mocks.MockUserRepository)
		mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(nil).Once()

		user, err := newService(mockRepo).Register(ctx, req)

		require.NoError(t, err)
		assert.Equal(t, "mock-user-id", user.ID)
		assert.Equal(t, "lucia", user.Username)
		assert.Equal(t, "lucia@example.com", user.Email)
		assert.Equal(t, domain.RoleCustomer, user.Role)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))
		mockRepo.AssertExpectations(t)
	})

	t.Run("Username already taken", func(t *testing.T) {
		mockRepo := new(mocks.MockUserRepository)
		mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.User")).Return(repository.ErrUsernameTaken).Once()

		user, err := newService(mockRepo).Register(ctx, req)

		assert.Nil(t, user)
		assert.Equal(t, 409, apperr.HTTPStatus(err))
	})

	t.Run("Blank name", func(t *testing.T) {
		mockRepo := new(mocks.MockUserRepository)
		blank := req
		blank.Name = "   "

		_, err := newService(mockRepo).Register(ctx, blank)

		assert.ErrorIs(t, err, ErrNameRequired)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestUserService_Login(t *testing.T) {
	ctx := context.TODO()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &domain.User{ID: "u1", Username: "lucia", PasswordHash: string(hash), Role: domain.RoleAdmin}

	t.Run("Valid credentials", func(t *testing.T) {
		mockRepo := new(mocks.MockUserRepository)
		mockRepo.On("GetByUsername", ctx, "lucia").Return(stored, nil).Once()

		user, err := newService(mockRepo).Login(ctx, domain.LoginRequest{Username: "lucia", Password: "secret123"})

		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
	})

	t.Run("Wrong password", func(t *testing.T) {
		mockRepo := new(mocks.MockUserRepository)
		mockRepo.On("GetByUsername", ctx, "lucia").Return(stored, nil).Once()

		_, err := newService(mockRepo).Login(ctx, domain.LoginRequest{Username: "lucia", Password: "nope"})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, 401, apperr.HTTPStatus(err))
	})

	t.Run("Unknown user", func(t *testing.T) {
		mockRepo := new(mocks.MockUserRepository)
		mockRepo.On("GetByUsername", ctx, "ghost").Return(nil, repository.ErrUserNotFound).Once()

		_, err := newService(mockRepo).Login(ctx, domain.LoginRequest{Username: "ghost", Password: "x"})

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.TODO()
	strPtr := func(s string) *string { return &s }

	t.Run("Applies present fields only", func(t *testing.T) {
		mockRepo := new(mocks.MockUserRepository)
		current := &domain.User{ID: "u1", Name: "Lucia", Surname: "Garcia", Phone: "600", Role: domain.RoleCustomer}
		mockRepo.On("GetByID", ctx, "u1").Return(current, nil).Once()
		mockRepo.On("UpdateProfile", ctx, mock.AnythingOfType("*domain.User")).Return(nil).Once()

		user, err := newService(mockRepo).UpdateProfile(ctx, "u1", domain.UpdateProfileRequest{
			Surname: strPtr("Lopez"),
			Email:   strPtr("L@Example.com"),
		})

		require.NoError(t, err)
		assert.Equal(t, "Lucia", user.Name)
		assert.Equal(t, "Lopez", user.Surname)
		assert.Equal(t, "l@example.com", user.Email)
		assert.Equal(t, "600", user.Phone)
		assert.Equal(t, domain.RoleCustomer, user.Role)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Name cannot be cleared", func(t *testing.T) {
		mockRepo := new(mocks.MockUserRepository)
		mockRepo.On("GetByID", ctx, "u1").Return(&domain.User{ID: "u1", Name: "Lucia"}, nil).Once()

		_, err := newService(mockRepo).UpdateProfile(ctx, "u1", domain.UpdateProfileRequest{Name: strPtr("")})

		assert.ErrorIs(t, err, ErrNameRequired)
		mockRepo.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything)
	})
}
