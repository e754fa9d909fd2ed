package auth

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/vaccination-registry/internal"
	rbacDatamodel "github.com/frahmantamala/vaccination-registry/internal/core/datamodel/rbac"
	"golang.org/x/crypto/bcrypt"
)

type UserRepository interface {
	GetUserByUsername(ctx context.Context, username string) (*rbacDatamodel.User, error)
}

type Service struct {
	userRepo       UserRepository
	tokenGenerator TokenGenerator
	bcryptCost     int
	logger         *slog.Logger
}

func NewService(userRepo UserRepository, tokenGen TokenGenerator, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		userRepo:       userRepo,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
		logger:         logger,
	}
}

// Authenticate validates credentials and returns tokens. Unknown users and
// wrong passwords are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (AuthTokens, error) {
	if err := dto.Validate(); err != nil {
		return AuthTokens{}, err
	}

	user, err := s.userRepo.GetUserByUsername(ctx, dto.Username)
	if err != nil {
		s.logger.Error("failed to load user for login", "username", dto.Username, "error", err)
		return AuthTokens{}, internal.NewDependencyError("credential store unavailable", err)
	}
	if user == nil {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(dto.Password)); err != nil {
		return AuthTokens{}, internal.ErrInvalidCredentials
	}

	if !user.IsActive {
		return AuthTokens{}, internal.ErrUserInactive
	}

	return s.issue(user.Username)
}

// RefreshTokens exchanges a refresh token for a new pair while the user is
// still active.
func (s *Service) RefreshTokens(ctx context.Context, refreshToken string) (AuthTokens, error) {
	claims, err := s.tokenGenerator.ValidateToken(refreshToken)
	if err != nil {
		return AuthTokens{}, err
	}
	if claims.TokenType != tokenTypeRefresh {
		return AuthTokens{}, internal.ErrInvalidToken
	}

	user, err := s.userRepo.GetUserByUsername(ctx, claims.Username())
	if err != nil {
		return AuthTokens{}, internal.NewDependencyError("credential store unavailable", err)
	}
	if user == nil {
		return AuthTokens{}, internal.ErrInvalidToken
	}
	if !user.IsActive {
		return AuthTokens{}, internal.ErrUserInactive
	}

	return s.issue(user.Username)
}

// ValidateAccessToken rejects refresh tokens presented as bearer tokens.
func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	claims, err := s.tokenGenerator.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokenTypeAccess {
		return nil, internal.ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *Service) issue(username string) (AuthTokens, error) {
	accessToken, expiresAt, err := s.tokenGenerator.GenerateAccessToken(username)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to sign token", err)
	}

	refreshToken, err := s.tokenGenerator.GenerateRefreshToken(username)
	if err != nil {
		return AuthTokens{}, internal.NewInternalError("failed to sign token", err)
	}

	return AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    expiresAt,
	}, nil
}
