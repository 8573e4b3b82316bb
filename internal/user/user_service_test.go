package user

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"whispr/internal/common"
	"whispr/internal/dbmysql"
	"whispr/internal/user/mocks"
)

func newUserServiceFixture(t *testing.T) (*mocks.MockUserRepository, UserService) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockUserRepository(ctrl)
	return repo, NewUserService(repo)
}

func TestUserService_RegisterUser(t *testing.T) {
	t.Run("successful registration", func(t *testing.T) {
		repo, svc := newUserServiceFixture(t)
		repo.EXPECT().CheckUserExists(gomock.Any(), "alice@example.com").Return(false, nil)
		repo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, u *dbmysql.User) error {
				assert.NotEmpty(t, u.ID)
				assert.Equal(t, "alice@example.com", u.Email)
				assert.NotEqual(t, "hunter22", u.PasswordHash)
				assert.NoError(t, common.CheckPassword("hunter22", u.PasswordHash))
				require.NotNil(t, u.Name)
				assert.Equal(t, "Alice", *u.Name)
				assert.Equal(t, "credentials", u.Provider)
				return nil
			})

		user, err := svc.RegisterUser(context.Background(), "  ALICE@example.com ", "hunter22", " Alice ")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", user.Email)
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo, svc := newUserServiceFixture(t)
		repo.EXPECT().CheckUserExists(gomock.Any(), "alice@example.com").Return(true, nil)

		_, err := svc.RegisterUser(context.Background(), "alice@example.com", "hunter22", "")
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("invalid email", func(t *testing.T) {
		_, svc := newUserServiceFixture(t)
		_, err := svc.RegisterUser(context.Background(), "not-an-email", "hunter22", "")
		assert.Error(t, err)
	})

	t.Run("short password", func(t *testing.T) {
		_, svc := newUserServiceFixture(t)
		_, err := svc.RegisterUser(context.Background(), "alice@example.com", "short", "")
		assert.Error(t, err)
	})

	t.Run("blank name stays nil", func(t *testing.T) {
		repo, svc := newUserServiceFixture(t)
		repo.EXPECT().CheckUserExists(gomock.Any(), "alice@example.com").Return(false, nil)
		repo.EXPECT().CreateUser(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, u *dbmysql.User) error {
				assert.Nil(t, u.Name)
				return nil
			})

		_, err := svc.RegisterUser(context.Background(), "alice@example.com", "hunter22", "   ")
		require.NoError(t, err)
	})
}

func TestUserService_LoginUser(t *testing.T) {
	hash, err := common.HashPassword("hunter22")
	require.NoError(t, err)
	stored := &dbmysql.User{ID: "u1", Email: "alice@example.com", PasswordHash: hash}

	t.Run("successful login returns a token", func(t *testing.T) {
		repo, svc := newUserServiceFixture(t)
		repo.EXPECT().GetUserByEmail(gomock.Any(), "alice@example.com").Return(stored, nil)

		user, token, err := svc.LoginUser(context.Background(), "Alice@Example.com", "hunter22")
		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)

		claims, err := common.ValidToken(token)
		require.NoError(t, err)
		assert.Equal(t, "u1", claims.UserID)
	})

	t.Run("wrong password", func(t *testing.T) {
		repo, svc := newUserServiceFixture(t)
		repo.EXPECT().GetUserByEmail(gomock.Any(), "alice@example.com").Return(stored, nil)

		_, _, err := svc.LoginUser(context.Background(), "alice@example.com", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown account is indistinguishable from bad password", func(t *testing.T) {
		repo, svc := newUserServiceFixture(t)
		repo.EXPECT().GetUserByEmail(gomock.Any(), "ghost@example.com").
			Return(nil, errors.New("record not found"))

		_, _, err := svc.LoginUser(context.Background(), "ghost@example.com", "hunter22")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("empty credentials rejected without a lookup", func(t *testing.T) {
		_, svc := newUserServiceFixture(t)
		_, _, err := svc.LoginUser(context.Background(), "", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestUserService_UpdateProfile(t *testing.T) {
	t.Run("nothing to update", func(t *testing.T) {
		_, svc := newUserServiceFixture(t)
		_, err := svc.UpdateProfile(context.Background(), "u1", "  ", "")
		assert.ErrorIs(t, err, ErrNoFields)
	})

	t.Run("partial update keeps the other field", func(t *testing.T) {
		oldName := "Old Name"
		repo, svc := newUserServiceFixture(t)
		repo.EXPECT().GetUserByID(gomock.Any(), "u1").
			Return(&dbmysql.User{ID: "u1", Name: &oldName}, nil)
		repo.EXPECT().UpdateUser(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, u *dbmysql.User) error {
				require.NotNil(t, u.Name)
				assert.Equal(t, "Old Name", *u.Name)
				require.NotNil(t, u.Image)
				assert.Equal(t, "/media/avatar-1", *u.Image)
				return nil
			})

		user, err := svc.UpdateProfile(context.Background(), "u1", "", "/media/avatar-1")
		require.NoError(t, err)
		assert.Equal(t, "/media/avatar-1", *user.Image)
	})
}

func TestUserService_ListContacts(t *testing.T) {
	repo, svc := newUserServiceFixture(t)
	repo.EXPECT().ListOthers(gomock.Any(), "u1").Return([]*dbmysql.User{
		{ID: "u2", Email: "bob@example.com"},
	}, nil)

	contacts, err := svc.ListContacts(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	assert.Equal(t, "u2", contacts[0].ID)
}
