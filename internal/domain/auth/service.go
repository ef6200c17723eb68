package auth

import (
	"context"
	"errors"
	"strings"
)

// Service contains all business logic for authentication
type Service struct {
	users UserRepositoryInterface
	jwt   tokenIssuer
}

type LoginResult struct {
	User        *User
	AccessToken string
}

func NewService(users UserRepositoryInterface, jwt tokenIssuer) *Service {
	return &Service{users: users, jwt: jwt}
}

// Register creates a regular user account.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	return s.createUser(ctx, req.Email, req.Username, req.Password, RoleUser)
}

// EnsureAdmin creates the admin account if the email is free, or promotes the
// existing account otherwise.
func (s *Service) EnsureAdmin(ctx context.Context, email, username, password string) (*User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return s.createUser(ctx, email, username, password, RoleAdmin)
	case err != nil:
		return nil, err
	}
	if u.Role != RoleAdmin {
		u.Role = RoleAdmin
		if err := s.users.Update(ctx, u); err != nil {
			return nil, err
		}
	}
	return u, nil
}

func (s *Service) createUser(ctx context.Context, email, username, password string, role UserRole) (*User, error) {
	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailAlreadyExists
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Email:        normalizeEmail(email),
		Username:     strings.TrimSpace(username),
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if CheckPassword(req.Password, u.PasswordHash) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(u.ID, string(u.Role))
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: u, AccessToken: token}, nil
}

func (s *Service) GetMe(ctx context.Context, actor Actor) (*User, error) {
	if actor.IsAnonymous() {
		return nil, ErrUnauthorized
	}
	return s.users.GetByID(ctx, actor.UserID)
}
