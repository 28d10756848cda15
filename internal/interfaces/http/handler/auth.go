package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/saleledger/backend/internal/application/identity"
	"github.com/saleledger/backend/internal/interfaces/http/middleware"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required,max=100"`
	Password string `json:"password" binding:"required,max=128"`
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	TokenType   string    `json:"token_type"`
}

// AuthUserResponse is the operator as seen by the till front end.
type AuthUserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Username    string     `json:"username"`
	DisplayName string     `json:"display_name"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

type LoginResponse struct {
	Token TokenResponse    `json:"token"`
	User  AuthUserResponse `json:"user"`
}

// AuthHandler serves /auth: login, logout and the current operator.
type AuthHandler struct {
	BaseHandler
	auth *identity.AuthService
}

func NewAuthHandler(auth *identity.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Login exchanges operator credentials for a bearer token.
// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}

	session, err := h.auth.Login(c.Request.Context(), identity.LoginInput{
		Username: req.Username,
		Password: req.Password,
		IP:       c.ClientIP(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, LoginResponse{
		Token: TokenResponse{AccessToken: session.AccessToken, ExpiresAt: session.ExpiresAt, TokenType: session.TokenType},
		User:  authUser(session.User),
	})
}

// Logout revokes the bearer token of the request until it would have expired.
// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	userID, ok := h.sessionUser(c, claims.UserID)
	if !ok {
		return
	}

	if err := h.auth.Logout(c.Request.Context(), identity.LogoutInput{
		UserID:   userID,
		TokenJTI: claims.ID,
		TokenTTL: claims.GetRemainingTTL(),
	}); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": "Logged out"})
}

// Me returns the operator behind the token.
// GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := h.sessionUser(c, middleware.GetJWTUserID(c))
	if !ok {
		return
	}
	user, err := h.auth.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, authUser(*user))
}

func (h *AuthHandler) sessionUser(c *gin.Context, raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return uuid.Nil, false
	}
	return id, true
}

func authUser(u identity.UserInfo) AuthUserResponse {
	return AuthUserResponse{ID: u.ID, Username: u.Username, DisplayName: u.DisplayName, LastLoginAt: u.LastLoginAt}
}
