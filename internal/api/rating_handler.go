package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fitcheck-backend/internal/core"
	"fitcheck-backend/internal/models"
)

// RatingHandler handles the caller's own rating of an outfit.
type RatingHandler struct {
	ratingService core.RatingService
	logger        *zap.Logger
}

// NewRatingHandler creates a new RatingHandler.
func NewRatingHandler(rs core.RatingService, logger *zap.Logger) *RatingHandler {
	return &RatingHandler{ratingService: rs, logger: logger}
}

// SubmitRating handles PUT /outfits/:outfitId/rating
func (h *RatingHandler) SubmitRating(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req models.SubmitRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Rating value must be an integer from 1 to 5.")
		return
	}

	rating, err := h.ratingService.SubmitRating(c.Request.Context(), userID, c.Param("outfitId"), req.Value)
	if err != nil {
		writeError(h.logger, c, err)
		return
	}
	c.JSON(http.StatusOK, rating)
}

// GetUserRating handles GET /outfits/:outfitId/rating
func (h *RatingHandler) GetUserRating(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	rating, err := h.ratingService.GetUserRating(c.Request.Context(), userID, c.Param("outfitId"))
	if err != nil {
		writeError(h.logger, c, err)
		return
	}
	c.JSON(http.StatusOK, rating)
}
