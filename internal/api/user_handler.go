package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fitcheck-backend/internal/core"
	"fitcheck-backend/internal/models"
)

// UserHandler handles user profile endpoints.
type UserHandler struct {
	userService core.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(us core.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{userService: us, logger: logger}
}

// InitializeUserProfile handles POST /users/initialize. It is called by the
// client after sign-in and is safe to repeat.
func (h *UserHandler) InitializeUserProfile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req models.InitializeProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	profile, created, err := h.userService.GetOrCreate(c.Request.Context(), userID, req)
	if err != nil {
		writeError(h.logger, c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, InitializeProfileResponse{Profile: profile, Created: created})
}

// GetCurrentUserProfile handles GET /users/me
func (h *UserHandler) GetCurrentUserProfile(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	h.writeProfile(c, userID)
}

// GetUserProfile handles GET /users/:userId
func (h *UserHandler) GetUserProfile(c *gin.Context) {
	h.writeProfile(c, c.Param("userId"))
}

func (h *UserHandler) writeProfile(c *gin.Context, userID string) {
	profile, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		writeError(h.logger, c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
