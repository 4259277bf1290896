// Package auth implements registration, login and JWT validation.
package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/solvradar/solvency-radar/internal/lib/jwt"
	"github.com/solvradar/solvency-radar/internal/lib/password"
	"github.com/solvradar/solvency-radar/internal/models"
)

// ErrInvalidCredentials is returned on a wrong username/password pair.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository is the storage contract for user accounts.
type UserRepository interface {
	RegisterUser(ctx context.Context, user models.User) (string, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// Service handles registration, login and token validation.
type Service struct {
	users    UserRepository
	jwtMaker jwt.Maker
}

// New creates the auth service.
func New(users UserRepository, jwtMaker jwt.Maker) *Service {
	return &Service{
		users:    users,
		jwtMaker: jwtMaker,
	}
}

// Register creates a new user with a hashed password and the default "user"
// role, returning the account UID.
func (s *Service) Register(ctx context.Context, email, username, rawPassword string) (string, error) {
	hashed, err := password.GetHash(rawPassword)
	if err != nil {
		return "", err
	}
	user := models.User{
		UUID:         uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: hashed,
		Role:         "user",
	}
	return s.users.RegisterUser(ctx, user)
}

// Login verifies the password and issues a JWT.
func (s *Service) Login(ctx context.Context, username, rawPassword string) (token, role string, err error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return "", "", err
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", "", ErrInvalidCredentials
	}
	token, err = s.jwtMaker.GenerateToken(user.Username, user.Role, user.UUID)
	if err != nil {
		return "", "", err
	}
	return token, user.Role, nil
}

// ValidateToken parses the JWT and returns the embedded user identity.
func (s *Service) ValidateToken(_ context.Context, token string) (*models.User, string, bool, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return nil, "", false, err
	}
	user := &models.User{
		Username: claims.Username,
		Role:     claims.Role,
		UUID:     claims.UserUID,
	}
	return user, claims.Role, true, nil
}
