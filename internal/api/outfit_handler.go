package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fitcheck-backend/internal/core"
	"fitcheck-backend/internal/models"
)

// OutfitHandler handles API endpoints related to outfits.
type OutfitHandler struct {
	outfitService core.OutfitService
	logger        *zap.Logger
}

// NewOutfitHandler creates a new OutfitHandler.
func NewOutfitHandler(os core.OutfitService, logger *zap.Logger) *OutfitHandler {
	return &OutfitHandler{outfitService: os, logger: logger}
}

// CreateOutfit handles POST /outfits
func (h *OutfitHandler) CreateOutfit(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req models.CreateOutfitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	outfit, err := h.outfitService.CreateOutfit(c.Request.Context(), userID, req)
	if err != nil {
		writeError(h.logger, c, err)
		return
	}
	c.JSON(http.StatusCreated, outfit)
}

// ListFeed handles GET /outfits?startAfter={outfitId}
func (h *OutfitHandler) ListFeed(c *gin.Context) {
	outfits, err := h.outfitService.ListFeed(c.Request.Context(), c.Query("startAfter"))
	if err != nil {
		writeError(h.logger, c, err)
		return
	}
	resp := FeedResponse{Outfits: outfits}
	if len(outfits) == core.FeedPageSize {
		resp.NextCursor = outfits[len(outfits)-1].ID
	}
	c.JSON(http.StatusOK, resp)
}

// GetOutfit handles GET /outfits/:outfitId
func (h *OutfitHandler) GetOutfit(c *gin.Context) {
	outfit, err := h.outfitService.GetOutfit(c.Request.Context(), c.Param("outfitId"))
	if err != nil {
		writeError(h.logger, c, err)
		return
	}
	c.JSON(http.StatusOK, outfit)
}

// DeleteOutfit handles DELETE /outfits/:outfitId
func (h *OutfitHandler) DeleteOutfit(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.outfitService.DeleteOutfit(c.Request.Context(), userID, c.Param("outfitId")); err != nil {
		writeError(h.logger, c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListUserOutfits handles GET /users/:userId/outfits
func (h *OutfitHandler) ListUserOutfits(c *gin.Context) {
	outfits, err := h.outfitService.ListUserOutfits(c.Request.Context(), c.Param("userId"))
	if err != nil {
		writeError(h.logger, c, err)
		return
	}
	c.JSON(http.StatusOK, outfits)
}
