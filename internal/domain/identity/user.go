package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/saleledger/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

var usernamePattern = regexp.MustCompile(`^[a-z0-9_.-]{3,50}$`)

// User is an operator that can open a session and record sales
type User struct {
	shared.BaseAggregateRoot
	Username     string
	DisplayName  string
	PasswordHash string
	Active       bool
	LastLoginAt  *time.Time
}

// NewUser creates an active user with a bcrypt password hash
func NewUser(username, displayName, password string) (*User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if !usernamePattern.MatchString(username) {
		return nil, shared.NewValidationError("INVALID_USERNAME",
			"Username must be 3-50 characters of letters, digits, '.', '_' or '-'")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Username:          username,
		DisplayName:       strings.TrimSpace(displayName),
		PasswordHash:      string(hash),
		Active:            true,
	}, nil
}

// VerifyPassword checks the password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// RecordLogin stamps the last login time
func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
	u.UpdatedAt = now
}

// Deactivate prevents further logins
func (u *User) Deactivate() {
	u.Active = false
	u.UpdatedAt = time.Now()
}

// DisplayNameOrUsername returns the display name, falling back to the username
func (u *User) DisplayNameOrUsername() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewValidationError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewValidationError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	return nil
}
