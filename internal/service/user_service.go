package service

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"github.com/askhat-dev/travel-marketplace/internal/app/config"
	"github.com/askhat-dev/travel-marketplace/internal/domain"
	"github.com/askhat-dev/travel-marketplace/internal/domain/entity"
	"github.com/askhat-dev/travel-marketplace/internal/platform/logger"
	"github.com/askhat-dev/travel-marketplace/internal/repository"
)

type RegisterUserInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Role      entity.Role
	Password  string
}

type UserService interface {
	Register(ctx context.Context, input RegisterUserInput) (*entity.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.User, error)
	List(ctx context.Context, page, limit int64) ([]*entity.User, error)
}

type userService struct {
	userRepo repository.UserRepository
	retrier  storeRetrier
	log      logger.Logger
}

func NewUserService(userRepo repository.UserRepository, storeCfg config.StoreConfig, log logger.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		retrier:  newStoreRetrier(storeCfg, log),
		log:      log,
	}
}

func (s *userService) Register(ctx context.Context, input RegisterUserInput) (*entity.User, error) {
	if len(input.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", domain.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := entity.NewUser(input.Username, input.Email, input.FirstName, input.LastName, input.Role, string(hash))
	if err != nil {
		return nil, err
	}

	if err := s.retrier.write(ctx, func(ctx context.Context) error {
		return s.userRepo.Create(ctx, user)
	}); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return nil, err
		}
		s.log.Errorf("failed to register user %s: %v", input.Username, err)
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.log.Infof("user %s registered with role %s", user.ID.Hex(), user.Role)
	return user, nil
}

func (s *userService) GetByID(ctx context.Context, id primitive.ObjectID) (*entity.User, error) {
	var user *entity.User
	err := s.retrier.read(ctx, "users.find_by_id", func(ctx context.Context) error {
		var readErr error
		user, readErr = s.userRepo.FindByID(ctx, id)
		return readErr
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, id.Hex())
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) List(ctx context.Context, page, limit int64) ([]*entity.User, error) {
	var users []*entity.User
	err := s.retrier.read(ctx, "users.find", func(ctx context.Context) error {
		var readErr error
		users, readErr = s.userRepo.Find(ctx, page, limit)
		return readErr
	})
	if err != nil {
		s.log.Errorf("failed to list users: %v", err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
