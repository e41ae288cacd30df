package main

import (
	"aspireedge/internal/cache"
	"aspireedge/internal/config"
	"aspireedge/internal/logging"
	"aspireedge/internal/repository"
	"aspireedge/internal/service"
	"aspireedge/internal/transport/rest"
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// @title AspireEdge Quiz API
// @version 1.0
// @description Adaptive career interest quiz
// @host localhost:8080
// @BasePath /v1
func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		logger.Fatal("Failed to ping MongoDB", zap.Error(err))
	}
	logger.Info("Connected to MongoDB", zap.String("database", cfg.MongoDatabase))

	db := mongoClient.Database(cfg.MongoDatabase)

	// Redis is optional, it only fronts quiz definitions
	var quizCache cache.QuizCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
		})
		defer rdb.Close()

		if _, err := rdb.Ping(ctx).Result(); err != nil {
			logger.Fatal("Failed to ping Redis", zap.Error(err))
		}
		quizCache = cache.NewQuizCache(rdb, cfg.QuizCacheTTL)
		logger.Info("Connected to Redis", zap.Duration("quizCacheTTL", cfg.QuizCacheTTL))
	} else {
		logger.Warn("REDIS_URI not set, quiz cache disabled")
	}

	// Initialize repositories
	quizRepo := repository.NewQuizRepo(db)
	questionRepo := repository.NewQuestionRepo(db)
	if err := repository.EnsureQuestionIndexes(ctx, db); err != nil {
		logger.Error("Failed to ensure question indexes", zap.Error(err))
	}

	// Initialize services
	selector := service.NewQuestionSelector(questionRepo, service.SelectorConfig{
		ConfidenceThreshold:       cfg.Selector.ConfidenceThreshold,
		MaxQuestions:              cfg.Selector.MaxQuestions,
		MinQuestionsForConfidence: cfg.Selector.MinQuestionsForConfidence,
	}, logger)
	passwordHash := cfg.Admin.PasswordHash
	if passwordHash == "" {
		logger.Warn("ADMIN_PASSWORD_HASH not set, hashing ADMIN_PASSWORD at startup")
		if passwordHash, err = service.HashPassword(cfg.Admin.Password); err != nil {
			logger.Fatal("Failed to hash admin password", zap.Error(err))
		}
	}
	authSvc := service.NewAuthService(cfg.Admin.Username, passwordHash, cfg.Admin.JWTSecret, cfg.Admin.TokenTTL)
	quizSvc := service.NewQuizService(quizRepo, quizCache, selector, cfg.DefaultQuizID, logger)
	questionSvc := service.NewQuestionService(questionRepo, logger)

	logger.Info("Selector thresholds",
		zap.Float64("confidenceThreshold", cfg.Selector.ConfidenceThreshold),
		zap.Int("maxQuestions", cfg.Selector.MaxQuestions),
		zap.Int("minQuestionsForConfidence", cfg.Selector.MinQuestionsForConfidence))

	router := rest.NewRouter(&rest.Container{
		AuthService:     authSvc,
		QuizService:     quizSvc,
		QuestionService: questionSvc,
		CORS:            cfg.CORS,
		Logger:          logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		logger.Info("Server starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down server...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
	}

	logger.Info("Server exited")
}
