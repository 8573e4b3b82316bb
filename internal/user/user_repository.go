package user

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"whispr/internal/dbmysql"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *dbmysql.User) error
	GetUserByID(ctx context.Context, id string) (*dbmysql.User, error)
	GetUserByEmail(ctx context.Context, email string) (*dbmysql.User, error)
	CheckUserExists(ctx context.Context, email string) (bool, error)
	ListOthers(ctx context.Context, userID string) ([]*dbmysql.User, error)
	UpdateUser(ctx context.Context, user *dbmysql.User) error
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) CreateUser(ctx context.Context, user *dbmysql.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetUserByID(ctx context.Context, id string) (*dbmysql.User, error) {
	var user dbmysql.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetUserByEmail(ctx context.Context, email string) (*dbmysql.User, error) {
	var user dbmysql.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) CheckUserExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&dbmysql.User{}).
		Where("email = ?", email).
		Count(&count).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	return count > 0, nil
}

// ListOthers returns every account except the caller's, ordered by name.
// This is the contact list for starting a new conversation.
func (r *userRepo) ListOthers(ctx context.Context, userID string) ([]*dbmysql.User, error) {
	var users []*dbmysql.User
	err := r.db.WithContext(ctx).
		Where("id <> ?", userID).
		Order("name ASC").
		Find(&users).Error
	return users, err
}

func (r *userRepo) UpdateUser(ctx context.Context, user *dbmysql.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}
