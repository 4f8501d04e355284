package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fitcheck-backend/internal/core"
	"fitcheck-backend/internal/middleware"
)

// Services are the core services the routes dispatch to.
type Services struct {
	Users       core.UserService
	Outfits     core.OutfitService
	Ratings     core.RatingService
	Comments    core.CommentService
	Suggestions core.SuggestionService
}

// SetupRoutes configures all the application routes with their handlers and middleware.
// Global middleware (logging, recovery, CORS) is applied to router by the caller.
func SetupRoutes(router *gin.Engine, logger *zap.Logger, verifier middleware.TokenVerifier, svc Services) {
	authMW := middleware.NewAuthMiddleware(verifier, logger)

	userHandler := NewUserHandler(svc.Users, logger)
	outfitHandler := NewOutfitHandler(svc.Outfits, logger)
	ratingHandler := NewRatingHandler(svc.Ratings, logger)
	commentHandler := NewCommentHandler(svc.Comments, logger)
	suggestionHandler := NewSuggestionHandler(svc.Suggestions, logger)

	// Firebase callable protocol; the gate itself reports a missing caller.
	router.POST("/callable/generateSuggestion", authMW.OptionalToken(), suggestionHandler.GenerateCallable)

	apiV1 := router.Group("/api/v1", authMW.VerifyToken())
	{
		users := apiV1.Group("/users")
		{
			users.POST("/initialize", userHandler.InitializeUserProfile)
			users.GET("/me", userHandler.GetCurrentUserProfile)
			users.GET("/:userId", userHandler.GetUserProfile)
			users.GET("/:userId/outfits", outfitHandler.ListUserOutfits)
		}

		outfits := apiV1.Group("/outfits")
		{
			outfits.POST("", outfitHandler.CreateOutfit)
			outfits.GET("", outfitHandler.ListFeed)
			outfits.GET("/:outfitId", outfitHandler.GetOutfit)
			outfits.DELETE("/:outfitId", outfitHandler.DeleteOutfit)

			outfits.PUT("/:outfitId/rating", ratingHandler.SubmitRating)
			outfits.GET("/:outfitId/rating", ratingHandler.GetUserRating)

			outfits.GET("/:outfitId/comments", commentHandler.ListComments)
			outfits.POST("/:outfitId/comments", commentHandler.AddComment)
			outfits.DELETE("/:outfitId/comments/:commentId", commentHandler.DeleteComment)

			outfits.POST("/:outfitId/suggestion", suggestionHandler.Generate)
			outfits.GET("/:outfitId/suggestion", suggestionHandler.Get)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "FitCheck backend is healthy."})
	})

	logger.Info("API routes configured under /api/v1, /callable and /health.")
}
