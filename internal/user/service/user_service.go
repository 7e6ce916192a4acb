package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ridloal/toy-store-backend/internal/platform/apperr"
	"github.com/ridloal/toy-store-backend/internal/platform/logger"
	"github.com/ridloal/toy-store-backend/internal/user/domain"
	"github.com/ridloal/toy-store-backend/internal/user/repository"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = apperr.New(apperr.ErrUnauthorized, "invalid credentials")
	ErrNameRequired       = apperr.New(apperr.ErrValidation, "name cannot be empty")
)

type UserService interface {
	Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, req domain.LoginRequest) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id string, req domain.UpdateProfileRequest) (*domain.User, error)
}

type userService struct {
	repo repository.UserRepository
	cost int
}

func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo, cost: bcrypt.DefaultCost}
}

func (s *userService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		logger.Error("Register: failed to hash password", err, nil)
		return nil, fmt.Errorf("could not process registration: %w", err)
	}

	user := &domain.User{
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: string(hashedPassword),
		Name:         strings.TrimSpace(req.Name),
		Surname:      strings.TrimSpace(req.Surname),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        strings.TrimSpace(req.Phone),
		Address:      strings.TrimSpace(req.Address),
		Role:         domain.RoleCustomer,
	}
	if user.Name == "" {
		return nil, ErrNameRequired
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if !errors.Is(err, repository.ErrUsernameTaken) {
			logger.Error("Register: failed to create user in repo", err, nil)
		}
		return nil, err
	}
	logger.Info("User registered", logger.Fields{"userId": user.ID, "username": user.Username})
	return user, nil
}

func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (*domain.User, error) {
	user, err := s.repo.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *userService) UpdateProfile(ctx context.Context, id string, req domain.UpdateProfileRequest) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	apply(&user.Name, req.Name)
	apply(&user.Surname, req.Surname)
	apply(&user.Email, req.Email)
	apply(&user.Phone, req.Phone)
	apply(&user.Address, req.Address)
	user.Email = strings.ToLower(user.Email)
	if user.Name == "" {
		return nil, ErrNameRequired
	}

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
