package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"

	"fitcheck-backend/internal/core"
	"fitcheck-backend/internal/middleware"
	"fitcheck-backend/internal/models"
)

// SuggestionHandler serves the AI suggestion gate over the callable protocol and REST.
type SuggestionHandler struct {
	suggestionService core.SuggestionService
	logger            *zap.Logger
}

// NewSuggestionHandler creates a new SuggestionHandler.
func NewSuggestionHandler(ss core.SuggestionService, logger *zap.Logger) *SuggestionHandler {
	return &SuggestionHandler{suggestionService: ss, logger: logger}
}

// GenerateCallable handles POST /callable/generateSuggestion.
// Authentication is optional at the router so that the gate reports it.
// An anonymous caller is rejected before the body is looked at.
func (h *SuggestionHandler) GenerateCallable(c *gin.Context) {
	callerID := middleware.UserID(c)
	var req callableRequest
	if callerID != "" {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, callableErrorBody{Error: callableError{
				Status:  statusTable[codes.InvalidArgument].callable,
				Message: "Request body must be {\"data\": {\"outfitId\": ...}}.",
			}})
			return
		}
	}

	suggestion, err := h.suggestionService.GenerateSuggestion(c.Request.Context(), callerID, req.Data.OutfitID)
	if err != nil {
		writeCallableError(h.logger, c, err)
		return
	}
	c.JSON(http.StatusOK, callableResponse{Result: models.GenerateSuggestionResponse{Suggestion: suggestion}})
}

// Generate handles POST /outfits/:outfitId/suggestion
func (h *SuggestionHandler) Generate(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	suggestion, err := h.suggestionService.GenerateSuggestion(c.Request.Context(), userID, c.Param("outfitId"))
	if err != nil {
		writeError(h.logger, c, err)
		return
	}
	c.JSON(http.StatusOK, models.GenerateSuggestionResponse{Suggestion: suggestion})
}

// Get handles GET /outfits/:outfitId/suggestion
func (h *SuggestionHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	suggestion, err := h.suggestionService.GetSuggestion(c.Request.Context(), userID, c.Param("outfitId"))
	if err != nil {
		writeError(h.logger, c, err)
		return
	}
	c.JSON(http.StatusOK, suggestion)
}
