package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/saleledger/backend/internal/domain/identity"
	"github.com/saleledger/backend/internal/domain/shared"
	"github.com/saleledger/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// Error codes returned by the auth service
const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeAccountDeactivated = "ACCOUNT_DEACTIVATED"
)

// AuthService handles authentication operations. A successful login yields
// the token that carries the operator session on every ledger call.
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service. blacklist may be nil,
// in which case logout only succeeds without revoking anything.
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	logger *zap.Logger,
) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		logger:     logger,
	}
}

// Login authenticates a user and returns an access token
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	s.logger.Info("Login attempt", zap.String("username", input.Username))

	user, err := s.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		s.logger.Warn("User not found during login", zap.String("username", input.Username))
		return nil, shared.NewDomainError(CodeInvalidCredentials, "Invalid username or password")
	}

	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt",
			zap.String("username", input.Username),
			zap.String("ip", input.IP))
		return nil, shared.NewDomainError(CodeInvalidCredentials, "Invalid username or password")
	}

	if !user.Active {
		s.logger.Warn("Login attempt for deactivated account", zap.String("username", input.Username))
		return nil, shared.NewDomainError(CodeAccountDeactivated, "Account has been deactivated")
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Username)
	if err != nil {
		s.logger.Error("Failed to generate token", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication token")
	}

	user.RecordLogin()
	if err := s.userRepo.Update(ctx, user); err != nil {
		// The token is already valid; a stale last-login stamp is not worth failing the login
		s.logger.Error("Failed to update user after successful login", zap.Error(err))
	}

	s.logger.Info("User logged in successfully",
		zap.String("username", user.Username),
		zap.String("user_id", user.ID.String()),
		zap.String("ip", input.IP))

	return &LoginResult{
		AccessToken: token.AccessToken,
		ExpiresAt:   token.ExpiresAt,
		TokenType:   token.TokenType,
		User:        toUserInfo(user),
	}, nil
}

// Logout revokes the presented token for the rest of its lifetime
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if input.TokenJTI == "" {
		return shared.NewValidationError(shared.CodeValidation, "Token has no id to revoke")
	}
	if s.blacklist != nil {
		if err := s.blacklist.AddToBlacklist(ctx, input.TokenJTI, input.TokenTTL); err != nil {
			s.logger.Error("Failed to blacklist token",
				zap.String("jti", input.TokenJTI),
				zap.Error(err))
			return shared.NewPersistenceError("Failed to revoke token", err)
		}
	}

	s.logger.Info("User logged out",
		zap.String("user_id", input.UserID.String()),
		zap.String("jti", input.TokenJTI))
	return nil
}

// GetCurrentUser returns the user behind a session
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("user", userID.String())
		}
		return nil, err
	}
	if !user.Active {
		return nil, shared.NewDomainError(CodeAccountDeactivated, "Account has been deactivated")
	}
	info := toUserInfo(user)
	return &info, nil
}

// Bootstrap creates the initial operator unless one with that username exists.
// It reports whether a user was created.
func (s *AuthService) Bootstrap(ctx context.Context, input BootstrapInput) (bool, error) {
	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	user, err := identity.NewUser(input.Username, input.DisplayName, input.Password)
	if err != nil {
		return false, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return false, err
	}

	s.logger.Info("Bootstrap operator created",
		zap.String("username", user.Username),
		zap.String("user_id", user.ID.String()))
	return true, nil
}
