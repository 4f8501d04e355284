package middleware

import (
	"context"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserIDKey is the gin context key holding the verified caller's UID.
const UserIDKey = "userID"

// ErrorResponse mirrors api.ErrorResponse; it is defined here to avoid an import cycle.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// TokenVerifier verifies Firebase ID tokens. *auth.Client satisfies it.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// AuthMiddleware provides Gin middleware for Firebase token authentication.
type AuthMiddleware struct {
	verifier TokenVerifier
	logger   *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
func NewAuthMiddleware(verifier TokenVerifier, logger *zap.Logger) *AuthMiddleware {
	if verifier == nil {
		panic("AuthMiddleware requires a non-nil TokenVerifier")
	}
	return &AuthMiddleware{verifier: verifier, logger: logger}
}

// VerifyToken rejects requests without a valid "Bearer {token}" header.
func (m *AuthMiddleware) VerifyToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, msg := m.authenticate(c)
		if uid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: msg, Code: "unauthenticated"})
			return
		}
		c.Set(UserIDKey, uid)
		c.Next()
	}
}

// OptionalToken sets the caller's UID when a valid token is present and lets
// the request through either way. Handlers decide what an anonymous caller gets.
func (m *AuthMiddleware) OptionalToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid, _ := m.authenticate(c); uid != "" {
			c.Set(UserIDKey, uid)
		}
		c.Next()
	}
}

// authenticate returns the verified UID, or "" and a client-facing reason.
func (m *AuthMiddleware) authenticate(c *gin.Context) (string, string) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", "Authorization header is required"
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", "Authorization header format must be 'Bearer {token}'"
	}

	token, err := m.verifier.VerifyIDToken(c.Request.Context(), parts[1])
	if err != nil {
		m.logger.Warn("Error verifying Firebase ID token", zap.Error(err))
		return "", "Invalid or expired authentication token"
	}
	return token.UID, ""
}

// UserID returns the UID set by the auth middleware, or "".
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
