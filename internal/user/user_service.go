package user

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"whispr/internal/common"
	"whispr/internal/dbmysql"
)

var (
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNoFields           = errors.New("no fields to update")
)

type UserService interface {
	RegisterUser(ctx context.Context, email, password, name string) (*dbmysql.User, error)
	LoginUser(ctx context.Context, email, password string) (*dbmysql.User, string, error)
	GetProfile(ctx context.Context, userID string) (*dbmysql.User, error)
	UpdateProfile(ctx context.Context, userID, name, image string) (*dbmysql.User, error)
	ListContacts(ctx context.Context, userID string) ([]*dbmysql.User, error)
}

type userService struct {
	userRepo UserRepository
}

func NewUserService(userRepo UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) RegisterUser(ctx context.Context, email, password, name string) (*dbmysql.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if err := common.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := common.ValidatePassword(password); err != nil {
		return nil, err
	}

	// duplicates check
	exists, err := s.userRepo.CheckUserExists(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hashed, err := common.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &dbmysql.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hashed,
		Provider:     "credentials",
	}
	if name = strings.TrimSpace(name); name != "" {
		user.Name = &name
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *userService) LoginUser(ctx context.Context, email, password string) (*dbmysql.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if err := common.CheckPassword(password, user.PasswordHash); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := common.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*dbmysql.User, error) {
	return s.userRepo.GetUserByID(ctx, userID)
}

// UpdateProfile updates name and/or avatar image; empty values mean "leave as is"
func (s *userService) UpdateProfile(ctx context.Context, userID, name, image string) (*dbmysql.User, error) {
	name = strings.TrimSpace(name)
	if name == "" && image == "" {
		return nil, ErrNoFields
	}

	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name != "" {
		user.Name = &name
	}
	if image != "" {
		user.Image = &image
	}

	if err := s.userRepo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *userService) ListContacts(ctx context.Context, userID string) ([]*dbmysql.User, error) {
	return s.userRepo.ListOthers(ctx, userID)
}
