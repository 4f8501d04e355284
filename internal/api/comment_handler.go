package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fitcheck-backend/internal/core"
	"fitcheck-backend/internal/models"
)

// CommentHandler handles API endpoints related to outfit comments.
type CommentHandler struct {
	commentService core.CommentService
	logger         *zap.Logger
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(cs core.CommentService, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{commentService: cs, logger: logger}
}

// AddComment handles POST /outfits/:outfitId/comments
func (h *CommentHandler) AddComment(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req models.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Comment text is required.")
		return
	}

	comment, err := h.commentService.AddComment(c.Request.Context(), userID, c.Param("outfitId"), req.Text)
	if err != nil {
		writeError(h.logger, c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// ListComments handles GET /outfits/:outfitId/comments
func (h *CommentHandler) ListComments(c *gin.Context) {
	comments, err := h.commentService.ListComments(c.Request.Context(), c.Param("outfitId"))
	if err != nil {
		writeError(h.logger, c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// DeleteComment handles DELETE /outfits/:outfitId/comments/:commentId
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	err := h.commentService.DeleteComment(c.Request.Context(), userID, c.Param("outfitId"), c.Param("commentId"))
	if err != nil {
		writeError(h.logger, c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
