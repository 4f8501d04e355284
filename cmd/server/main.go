package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"fitcheck-backend/internal/api"
	"fitcheck-backend/internal/config"
	"fitcheck-backend/internal/core"
	"fitcheck-backend/internal/db"
	"fitcheck-backend/internal/events"
	"fitcheck-backend/internal/jobs"
	"fitcheck-backend/internal/llm"
	"fitcheck-backend/internal/middleware"
	"fitcheck-backend/internal/trigger"
)

func main() {
	// --- 1. Environment and logger ---
	release := strings.ToLower(os.Getenv("GIN_MODE")) == "release"
	if !release {
		if err := godotenv.Load(); err != nil {
			log.Println("Warning: Error loading .env file:", err)
		}
	}

	var zapLogger *zap.Logger
	var err error
	if release {
		zapLogger, err = zap.NewProduction()
	} else {
		zapLogger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()

	// --- 2. Load Application Configuration ---
	appConfig, err := config.LoadConfig()
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to load application configuration", zap.Error(err))
	}
	zapLogger.Info("Application configuration loaded successfully.",
		zap.String("eventBus", appConfig.EventBus),
		zap.String("storageBackend", appConfig.StorageBackend),
		zap.String("triggerSource", appConfig.TriggerSource))

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	// --- 3. Initialize Firebase Admin SDK (Firestore, Auth) ---
	initCtx, cancelInitCtx := context.WithTimeout(rootCtx, 15*time.Second)
	defer cancelInitCtx()
	clients, err := db.InitFirebase(initCtx, appConfig, zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firebase Admin SDK", zap.Error(err))
	}
	defer clients.Close()

	// --- 4. Infrastructure: object store, message queue, cache, LLM ---
	objectStore, err := newObjectStore(initCtx, appConfig, clients)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize object storage", zap.Error(err))
	}

	mq, err := newMessageQueue(appConfig, zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize message queue", zap.Error(err))
	}
	defer mq.Close()

	suggestionCache, closeCache, err := newCache(initCtx, appConfig, zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize cache", zap.Error(err))
	}
	defer closeCache()

	llmClient, err := llm.NewClient(llm.Config{
		APIKey:        appConfig.AnthropicAPIKey,
		Model:         appConfig.LLMModel,
		MaxTokens:     appConfig.LLMMaxTokens,
		MaxConcurrent: appConfig.LLMMaxConcurrent,
	}, zapLogger)
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize LLM client", zap.Error(err))
	}
	zapLogger.Info("Infrastructure initialized successfully.")

	// --- 5. Initialize Repositories ---
	fs := clients.Firestore
	userRepo := db.NewFirestoreUserRepository(fs, zapLogger)
	outfitRepo := db.NewFirestoreOutfitRepository(fs, zapLogger)
	ratingRepo := db.NewFirestoreRatingRepository(fs, zapLogger)
	commentRepo := db.NewFirestoreCommentRepository(fs, zapLogger)
	suggestionRepo := db.NewFirestoreSuggestionRepository(fs, zapLogger)

	// --- 6. Initialize Services ---
	topics := events.Topics{RatingWritten: appConfig.TopicRatingWritten, OutfitDeleted: appConfig.TopicOutfitDeleted}

	// With TRIGGER_SOURCE=firestore the change listener raises events, so the
	// API must not raise them a second time.
	var apiEvents core.EventPublisher
	if appConfig.TriggerSource == config.TriggerSourceAPI {
		apiEvents = events.NewPublisher(mq, topics, events.SourceAPI, zapLogger)
	}

	aggregator := core.NewRatingAggregator(outfitRepo, ratingRepo, userRepo, zapLogger)
	cleanupService := core.NewCleanupService(objectStore, suggestionRepo, ratingRepo, commentRepo, aggregator, suggestionCache, zapLogger)
	services := api.Services{
		Users:    core.NewUserService(userRepo, zapLogger),
		Outfits:  core.NewOutfitService(outfitRepo, userRepo, apiEvents, zapLogger),
		Ratings:  core.NewRatingService(outfitRepo, ratingRepo, apiEvents, zapLogger),
		Comments: core.NewCommentService(outfitRepo, commentRepo, userRepo, zapLogger),
		Suggestions: core.NewSuggestionService(core.SuggestionServiceConfig{
			Outfits:     outfitRepo,
			Ratings:     ratingRepo,
			Comments:    commentRepo,
			Suggestions: suggestionRepo,
			LLM:         llmClient,
			Cache:       suggestionCache,
			CacheTTL:    appConfig.SuggestionCacheTTL,
			Window:      appConfig.AIRateLimit,
		}, zapLogger),
	}
	zapLogger.Info("Core services initialized successfully.")

	// --- 7. Background workers: consumers, change listener, cron ---
	var workers sync.WaitGroup
	runWorker := func(name string, run func(context.Context) error) {
		workers.Add(1)
		go func() {
			defer workers.Done()
			if err := run(rootCtx); err != nil {
				zapLogger.Error("Background worker stopped with error", zap.String("worker", name), zap.Error(err))
			}
		}()
	}

	dispatcher := trigger.NewDispatcher(mq, topics, aggregator, cleanupService, zapLogger)
	runWorker("dispatcher", dispatcher.Run)

	if appConfig.TriggerSource == config.TriggerSourceFirestore {
		watcher := trigger.NewFirestoreWatcher(fs, events.NewPublisher(mq, topics, events.SourceFirestore, zapLogger), zapLogger)
		runWorker("firestore-watcher", watcher.Run)
	}

	reconcileJob := jobs.NewReconcileJob(outfitRepo, events.NewPublisher(mq, topics, events.SourceReconcile, zapLogger), zapLogger)
	cronManager := jobs.NewManager(appConfig.ReconcileSchedule, reconcileJob, zapLogger)
	if err := cronManager.RegisterJobs(); err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Invalid RECONCILE_SCHEDULE", zap.Error(err))
	}
	cronManager.Start()

	// --- 8. Setup Gin HTTP Engine ---
	if release {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	if appConfig.ClientURL != "" {
		router.Use(middleware.CORSMiddleware(appConfig.ClientURL))
		zapLogger.Info("CORS Middleware enabled", zap.String("clientURL", appConfig.ClientURL))
	} else {
		zapLogger.Warn("CORS Middleware SKIPPED: CLIENT_URL is not configured.")
	}

	api.SetupRoutes(router, zapLogger, clients.Auth, services)

	// --- 9. Configure and Start HTTP Server ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Suggestion generation waits on the LLM.
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	zapLogger.Info("Starting HTTP server...", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// --- 10. Graceful Shutdown Handling ---
	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown due to error during graceful shutdown", zap.Error(err))
	}
	cronManager.Stop()
	cancelRoot()
	workers.Wait()

	zapLogger.Info("Server exiting gracefully.")
}
