package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"mshop-be/internal/access"
	"mshop-be/internal/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, u *User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) FindByID(ctx context.Context, id uint) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, filter ListFilter) ([]*User, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*User), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) UpdateRole(ctx context.Context, id uint, role access.Role) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newTestService(repo Repository) Service {
	return NewService(repo, NewTokenManager("testsecret", time.Hour))
}

func TestService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		svc := newTestService(mockRepo)

		mockRepo.On("Create", ctx, mock.MatchedBy(func(u *User) bool {
			return u.Email == "jane@example.com" &&
				u.Name == "Jane" &&
				u.Role == access.RoleUser &&
				CheckPasswordHash("password123", u.PasswordHash)
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*User).ID = 11
			args.Get(1).(*User).IsActive = true
		}).Return(nil)

		res, err := svc.Register(ctx, RegisterInput{
			Name:     " Jane ",
			Email:    "Jane@Example.com",
			Password: "password123",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, res.Token)
		assert.Equal(t, uint(11), res.User.ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Validation", func(t *testing.T) {
		cases := []struct {
			name  string
			input RegisterInput
			want  error
		}{
			{"missing name", RegisterInput{Email: "a@b.co", Password: "secret1"}, ErrNameRequired},
			{"bad email", RegisterInput{Name: "A", Email: "not-an-email", Password: "secret1"}, ErrInvalidEmail},
			{"short password", RegisterInput{Name: "A", Email: "a@b.co", Password: "12345"}, ErrPasswordTooShort},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				mockRepo := new(MockRepository)
				_, err := newTestService(mockRepo).Register(ctx, tc.input)
				assert.ErrorIs(t, err, tc.want)
				mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("EmailTaken", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockRepo.On("Create", ctx, mock.Anything).Return(ErrEmailExists)

		_, err := newTestService(mockRepo).Register(ctx, RegisterInput{Name: "A", Email: "a@b.co", Password: "secret1"})
		assert.ErrorIs(t, err, ErrEmailExists)
		assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	})

	t.Run("RepoFailure", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockRepo.On("Create", ctx, mock.Anything).Return(errors.New("db down"))

		_, err := newTestService(mockRepo).Register(ctx, RegisterInput{Name: "A", Email: "a@b.co", Password: "secret1"})
		assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	})
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()
	hash, _ := HashPassword("password123")

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockRepo.On("FindByEmail", ctx, "jane@example.com").
			Return(&User{ID: 2, Email: "jane@example.com", PasswordHash: hash, Role: access.RoleUser, IsActive: true}, nil)

		res, err := newTestService(mockRepo).Login(ctx, "JANE@example.com ", "password123")
		require.NoError(t, err)
		assert.NotEmpty(t, res.Token)
		assert.Equal(t, uint(2), res.User.ID)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockRepo.On("FindByEmail", ctx, "x@y.z").Return(nil, ErrUserNotFound)

		_, err := newTestService(mockRepo).Login(ctx, "x@y.z", "password123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockRepo.On("FindByEmail", ctx, "jane@example.com").
			Return(&User{ID: 2, PasswordHash: hash, IsActive: true}, nil)

		_, err := newTestService(mockRepo).Login(ctx, "jane@example.com", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Inactive", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockRepo.On("FindByEmail", ctx, "jane@example.com").
			Return(&User{ID: 2, PasswordHash: hash, IsActive: false}, nil)

		_, err := newTestService(mockRepo).Login(ctx, "jane@example.com", "password123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestService_Authenticate(t *testing.T) {
	ctx := context.Background()
	tm := NewTokenManager("testsecret", time.Hour)
	token, err := tm.Generate(&User{ID: 5, Role: access.RoleAdmin})
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockRepo.On("FindByID", ctx, uint(5)).Return(&User{ID: 5, Role: access.RoleAdmin, IsActive: true}, nil)

		u, err := NewService(mockRepo, tm).Authenticate(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, access.RoleAdmin, u.Role)
	})

	t.Run("RoleReadFromStore", func(t *testing.T) {
		// the token still says admin, the account was demoted since
		mockRepo := new(MockRepository)
		mockRepo.On("FindByID", ctx, uint(5)).Return(&User{ID: 5, Role: access.RoleUser, IsActive: true}, nil)

		u, err := NewService(mockRepo, tm).Authenticate(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, access.RoleUser, u.Role)
	})

	t.Run("Garbage", func(t *testing.T) {
		mockRepo := new(MockRepository)
		_, err := NewService(mockRepo, tm).Authenticate(ctx, "not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
		mockRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := NewService(new(MockRepository), tm).Authenticate(ctx, "")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("UserGone", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockRepo.On("FindByID", ctx, uint(5)).Return(nil, ErrUserNotFound)

		_, err := NewService(mockRepo, tm).Authenticate(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Inactive", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockRepo.On("FindByID", ctx, uint(5)).Return(&User{ID: 5, IsActive: false}, nil)

		_, err := NewService(mockRepo, tm).Authenticate(ctx, token)
		assert.ErrorIs(t, err, ErrInactiveUser)
	})
}

func TestService_ListUsers(t *testing.T) {
	ctx := context.Background()

	t.Run("PagesComputed", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockRepo.On("List", ctx, ListFilter{Limit: 10, Offset: 10}).
			Return([]*User{{ID: 1}}, int64(21), nil)

		users, page, err := newTestService(mockRepo).ListUsers(ctx, ListQuery{Page: 2})
		require.NoError(t, err)
		assert.Len(t, users, 1)
		assert.Equal(t, 2, page.Page)
		assert.Equal(t, 10, page.Limit)
		assert.Equal(t, int64(21), page.Total)
		assert.Equal(t, 3, page.Pages)
	})

	t.Run("InvalidRole", func(t *testing.T) {
		role := access.Role("root")
		_, _, err := newTestService(new(MockRepository)).ListUsers(ctx, ListQuery{Role: &role})
		assert.ErrorIs(t, err, ErrInvalidRole)
	})
}

func TestService_ChangeRole(t *testing.T) {
	ctx := context.Background()
	admin := access.Actor{UserID: 1, Role: access.RoleAdmin}
	super := access.Actor{UserID: 2, Role: access.RoleSuperAdmin}

	t.Run("AdminPromotesUser", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockRepo.On("FindByID", ctx, uint(9)).Return(&User{ID: 9, Role: access.RoleUser}, nil)
		mockRepo.On("UpdateRole", ctx, uint(9), access.RoleAdmin).Return(nil)

		u, err := newTestService(mockRepo).ChangeRole(ctx, admin, 9, access.RoleAdmin)
		require.NoError(t, err)
		assert.Equal(t, access.RoleAdmin, u.Role)
		mockRepo.AssertExpectations(t)
	})

	t.Run("AdminCannotGrantSuperAdmin", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockRepo.On("FindByID", ctx, uint(9)).Return(&User{ID: 9, Role: access.RoleUser}, nil)

		_, err := newTestService(mockRepo).ChangeRole(ctx, admin, 9, access.RoleSuperAdmin)
		assert.ErrorIs(t, err, ErrForbidden)
		mockRepo.AssertNotCalled(t, "UpdateRole", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("AdminCannotTouchSuperAdmin", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockRepo.On("FindByID", ctx, uint(2)).Return(&User{ID: 2, Role: access.RoleSuperAdmin}, nil)

		_, err := newTestService(mockRepo).ChangeRole(ctx, admin, 2, access.RoleUser)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("SuperAdminGrantsSuperAdmin", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockRepo.On("FindByID", ctx, uint(9)).Return(&User{ID: 9, Role: access.RoleAdmin}, nil)
		mockRepo.On("UpdateRole", ctx, uint(9), access.RoleSuperAdmin).Return(nil)

		_, err := newTestService(mockRepo).ChangeRole(ctx, super, 9, access.RoleSuperAdmin)
		assert.NoError(t, err)
	})

	t.Run("Self", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockRepo.On("FindByID", ctx, uint(1)).Return(&User{ID: 1, Role: access.RoleAdmin}, nil)

		_, err := newTestService(mockRepo).ChangeRole(ctx, admin, 1, access.RoleUser)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("UnknownRole", func(t *testing.T) {
		_, err := newTestService(new(MockRepository)).ChangeRole(ctx, admin, 9, "owner")
		assert.ErrorIs(t, err, ErrInvalidRole)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockRepo.On("FindByID", ctx, uint(404)).Return(nil, ErrUserNotFound)

		_, err := newTestService(mockRepo).ChangeRole(ctx, admin, 404, access.RoleAdmin)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()
	admin := access.Actor{UserID: 1, Role: access.RoleAdmin}

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockRepo.On("FindByID", ctx, uint(9)).Return(&User{ID: 9, Role: access.RoleUser}, nil)
		mockRepo.On("Delete", ctx, uint(9)).Return(nil)

		assert.NoError(t, newTestService(mockRepo).Delete(ctx, admin, 9))
		mockRepo.AssertExpectations(t)
	})

	t.Run("PlainUserForbidden", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockRepo.On("FindByID", ctx, uint(9)).Return(&User{ID: 9, Role: access.RoleUser}, nil)

		err := newTestService(mockRepo).Delete(ctx, access.Actor{UserID: 3, Role: access.RoleUser}, 9)
		assert.ErrorIs(t, err, ErrForbidden)
		mockRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("RepoFailure", func(t *testing.T) {
		mockRepo := new(MockRepository)
		mockRepo.On("FindByID", ctx, uint(9)).Return(&User{ID: 9, Role: access.RoleUser}, nil)
		mockRepo.On("Delete", ctx, uint(9)).Return(errors.New("fk"))

		err := newTestService(mockRepo).Delete(ctx, admin, 9)
		assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	})
}
