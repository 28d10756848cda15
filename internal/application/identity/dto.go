package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/saleledger/backend/internal/domain/identity"
)

// LoginInput contains the input for user login
type LoginInput struct {
	Username string
	Password string
	IP       string // Client IP for login tracking
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	TokenType   string
	User        UserInfo
}

// UserInfo contains basic user information returned after login
type UserInfo struct {
	ID          uuid.UUID
	Username    string
	DisplayName string
	LastLoginAt *time.Time
}

// LogoutInput identifies the token being revoked
type LogoutInput struct {
	UserID   uuid.UUID
	TokenJTI string
	TokenTTL time.Duration // remaining lifetime of the token
}

// BootstrapInput describes the operator created on first start
type BootstrapInput struct {
	Username    string
	DisplayName string
	Password    string
}

func toUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayNameOrUsername(),
		LastLoginAt: u.LastLoginAt,
	}
}
