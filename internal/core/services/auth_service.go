package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"sacco-ledger/internal/adapters/persistence/models"
	"sacco-ledger/internal/adapters/persistence/repositories"
	"sacco-ledger/internal/core/domain"
	"sacco-ledger/internal/pkg/jwt"
	"sacco-ledger/internal/pkg/password"
)

// AuthConfig carries the token parameters auth needs
type AuthConfig struct {
	JWTSecret         string
	AccessExpiryMins  int
	RefreshExpiryDays int
}

// AuthService handles registration, login and token rotation
type AuthService struct {
	users   repositories.UserRepository
	tokens  repositories.RefreshTokenRepository
	members repositories.MemberRepository
	cfg     AuthConfig
	log     *logrus.Entry
}

// NewAuthService creates a new auth service
func NewAuthService(
	users repositories.UserRepository,
	tokens repositories.RefreshTokenRepository,
	members repositories.MemberRepository,
	cfg AuthConfig,
) *AuthService {
	return &AuthService{
		users:   users,
		tokens:  tokens,
		members: members,
		cfg:     cfg,
		log:     logrus.WithField("service", "auth"),
	}
}

// RegisterInput represents user registration input
type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginInput represents login input
type LoginInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenPair represents an access/refresh token pair
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
}

// Register creates a new user account with the MEMBER role
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*models.User, error) {
	if !password.Validate(input.Password) {
		return nil, domain.ErrPasswordTooWeak
	}

	if _, err := s.users.GetByUsername(ctx, input.Username); err == nil {
		return nil, domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}
	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	hashed, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username: input.Username,
		Email:    input.Email,
		Password: hashed,
		Role:     models.RoleMember,
		IsActive: true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.WithField("username", user.Username).Info("user registered")
	return user, nil
}

// Login verifies credentials and issues a token pair
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*TokenPair, *models.User, error) {
	user, err := s.users.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !user.IsActive {
		return nil, nil, domain.ErrUserInactive
	}
	if !password.Verify(input.Password, user.Password) {
		return nil, nil, domain.ErrInvalidCredentials
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// Refresh rotates a refresh token: the presented token is revoked and
// a fresh pair issued. A revoked or expired token fails.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := jwt.ValidateRefreshToken(refreshToken, s.cfg.JWTSecret)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	hash := password.HashToken(refreshToken)
	stored, err := s.tokens.GetByTokenHash(ctx, hash)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	if stored.IsRevoked() || stored.IsExpired() {
		return nil, domain.ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	if !user.IsActive {
		return nil, domain.ErrUserInactive
	}

	if err := s.tokens.RevokeByTokenHash(ctx, hash); err != nil {
		return nil, err
	}

	return s.issueTokens(ctx, user)
}

// Logout revokes the presented refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.tokens.RevokeByTokenHash(ctx, password.HashToken(refreshToken))
}

// LogoutAll revokes every refresh token for a user
func (s *AuthService) LogoutAll(ctx context.Context, userID uint) error {
	return s.tokens.RevokeAllByUserID(ctx, userID)
}

// GetUser gets a user by id
func (s *AuthService) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*TokenPair, error) {
	var memberID uint
	if member, err := s.members.GetActiveByUserID(ctx, user.ID); err == nil {
		memberID = member.ID
	}

	access, err := jwt.GenerateAccessToken(user.ID, memberID, user.Username, user.Role, s.cfg.JWTSecret, s.cfg.AccessExpiryMins)
	if err != nil {
		return nil, err
	}

	refresh, err := jwt.GenerateRefreshToken(user.ID, uuid.NewString(), s.cfg.JWTSecret, s.cfg.RefreshExpiryDays)
	if err != nil {
		return nil, err
	}

	err = s.tokens.Create(ctx, &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: password.HashToken(refresh),
		ExpiresAt: jwt.GetExpiryTime(s.cfg.RefreshExpiryDays),
	})
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    s.cfg.AccessExpiryMins * 60,
	}, nil
}
