package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, u *User) error {
	args := m.Called(ctx, u)
	if args.Error(0) == nil {
		u.ID = 1
	}
	return args.Error(0)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, u *User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

type fakeTokens struct{}

func (fakeTokens) GenerateToken(userID int64, role string) (string, error) {
	return "token-" + role, nil
}

func TestRegister_CreatesRegularUser(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewService(repo, fakeTokens{})
	ctx := context.Background()

	repo.On("ExistsByEmail", ctx, "Bard@Example.com ").Return(false, nil)
	repo.On("Create", ctx, mock.MatchedBy(func(u *User) bool {
		return u.Email == "bard@example.com" && u.Role == RoleUser && u.PasswordHash != "secret-pass"
	})).Return(nil)

	u, err := svc.Register(ctx, RegisterRequest{Email: "Bard@Example.com ", Username: " bard ", Password: "secret-pass"})
	require.NoError(t, err)
	assert.Equal(t, "bard", u.Username)
	assert.NoError(t, CheckPassword("secret-pass", u.PasswordHash))
	repo.AssertExpectations(t)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewService(repo, fakeTokens{})
	ctx := context.Background()

	repo.On("ExistsByEmail", ctx, "bard@example.com").Return(true, nil)

	_, err := svc.Register(ctx, RegisterRequest{Email: "bard@example.com", Username: "bard", Password: "secret-pass"})
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLogin(t *testing.T) {
	hash, err := HashPassword("secret-pass")
	require.NoError(t, err)
	user := &User{ID: 7, Email: "dm@example.com", PasswordHash: hash, Role: RoleAdmin}

	tests := []struct {
		name     string
		email    string
		password string
		found    *User
		findErr  error
		wantErr  error
		wantTok  string
	}{
		{name: "ok", email: "dm@example.com", password: "secret-pass", found: user, wantTok: "token-admin"},
		{name: "wrong password", email: "dm@example.com", password: "nope", found: user, wantErr: ErrInvalidCredentials},
		{name: "unknown email", email: "who@example.com", password: "secret-pass", findErr: ErrUserNotFound, wantErr: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockUserRepo)
			svc := NewService(repo, fakeTokens{})
			ctx := context.Background()
			if tt.found != nil {
				repo.On("GetByEmail", ctx, tt.email).Return(tt.found, nil)
			} else {
				repo.On("GetByEmail", ctx, tt.email).Return(nil, tt.findErr)
			}

			res, err := svc.Login(ctx, LoginRequest{Email: tt.email, Password: tt.password})
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTok, res.AccessToken)
		})
	}
}

func TestEnsureAdmin_PromotesExistingUser(t *testing.T) {
	repo := new(mockUserRepo)
	svc := NewService(repo, fakeTokens{})
	ctx := context.Background()
	existing := &User{ID: 3, Email: "dm@example.com", Role: RoleUser}

	repo.On("GetByEmail", ctx, "dm@example.com").Return(existing, nil)
	repo.On("Update", ctx, existing).Return(nil)

	u, err := svc.EnsureAdmin(ctx, "dm@example.com", "dm", "secret-pass")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, u.Role)
	repo.AssertExpectations(t)
}

func TestGetMe_Anonymous(t *testing.T) {
	svc := NewService(new(mockUserRepo), fakeTokens{})
	_, err := svc.GetMe(context.Background(), Anonymous)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestActor(t *testing.T) {
	owner := int64(5)
	other := int64(6)

	a := Actor{UserID: 5, Role: RoleUser}
	assert.True(t, a.Owns(&owner))
	assert.False(t, a.Owns(&other))
	assert.False(t, a.Owns(nil))
	assert.False(t, a.IsAdmin())

	assert.True(t, Anonymous.IsAnonymous())
	assert.False(t, Anonymous.Owns(&owner))
	assert.False(t, Actor{Role: RoleAdmin}.IsAdmin())
	assert.True(t, Actor{UserID: 1, Role: RoleAdmin}.IsAdmin())
}
