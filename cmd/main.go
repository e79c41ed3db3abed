package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yungbote/onboarding-backend/internal/config"
	"github.com/yungbote/onboarding-backend/internal/db"
	httpx "github.com/yungbote/onboarding-backend/internal/http"
	httpH "github.com/yungbote/onboarding-backend/internal/http/handlers"
	"github.com/yungbote/onboarding-backend/internal/jobs"
	"github.com/yungbote/onboarding-backend/internal/platform/gcp"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
	"github.com/yungbote/onboarding-backend/internal/platform/openai"
	"github.com/yungbote/onboarding-backend/internal/platform/redis"
	"github.com/yungbote/onboarding-backend/internal/platform/vision"
	"github.com/yungbote/onboarding-backend/internal/plugins"
	"github.com/yungbote/onboarding-backend/internal/repos"
	"github.com/yungbote/onboarding-backend/internal/services"
)

func main() {
	// Config
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Logger
	log, err := logger.New(cfg.LogMode, cfg.LogRedact, cfg.LogHashSalt)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Postgres
	postgresService, err := db.NewPostgresService(cfg.Postgres, log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	documentRepo := repos.NewDocumentRepo(thePG, log)
	assessmentRepo := repos.NewAssessmentRepo(thePG, log)
	thirdPartyDataRepo := repos.NewThirdPartyDataRepo(thePG, log)
	siftScoreRepo := repos.NewSiftScoreRepo(thePG, log)

	// Platform clients
	log.Info("Setting up platform clients from main...")
	bucketService, err := gcp.NewBucketService(cfg.Bucket, log)
	if err != nil {
		log.Fatal("Could not init BucketService", "error", err)
	}
	openaiClient, err := openai.NewClient(cfg.OpenAI, log)
	if err != nil {
		log.Fatal("Could not init OpenAI client", "error", err)
	}
	ocrProvider, err := vision.NewOCRProvider(cfg.Bucket.CredentialsFile, log)
	if err != nil {
		log.Fatal("Could not init OCR provider", "error", err)
	}
	defer ocrProvider.Close()

	var riskCache *redis.RiskCache
	if cfg.RedisAddr != "" {
		riskCache, err = redis.NewRiskCache(cfg.RedisAddr, cfg.RiskCacheTTL, log)
		if err != nil {
			log.Warn("Risk cache unavailable, continuing without it", "error", err)
			riskCache = nil
		} else {
			defer riskCache.Close()
		}
	}

	// Plugins
	registry := plugins.NewRegistry(cfg.EnabledPlugins, log)

	// Services
	log.Info("Setting up services from main...")
	textExtraction := services.NewTextExtractionService(ocrProvider, log)
	fieldExtraction := services.NewFieldExtractionService(openaiClient, log)
	riskAnalysis := services.NewRiskAnalysisService(openaiClient, log)
	userService := services.NewUserService(userRepo, siftScoreRepo, log)
	documentService := services.NewDocumentService(documentRepo, userRepo, bucketService, log)
	assessmentService := services.NewAssessmentService(
		thePG,
		userRepo,
		documentRepo,
		assessmentRepo,
		thirdPartyDataRepo,
		siftScoreRepo,
		registry,
		riskAnalysis,
		riskCache,
		log,
	)

	// Jobs
	log.Info("Setting up job dispatcher from main...")
	dispatcher := jobs.NewDispatcher(cfg.WorkerConcurrency, cfg.JobQueueSize, log)
	dispatcher.Register(jobs.NewDocumentProcessingHandler(documentRepo, bucketService, textExtraction, fieldExtraction, log))
	dispatcher.Register(jobs.NewAssessmentRequestHandler(assessmentRepo, assessmentService, log))

	jobCtx, stopJobs := context.WithCancel(context.Background())
	dispatcher.Start(jobCtx)

	// Handlers
	log.Info("Setting up handlers from main...")
	userHandler := httpH.NewUserHandler(userService)
	documentHandler := httpH.NewDocumentHandler(documentService, dispatcher, log)
	assessmentHandler := httpH.NewAssessmentHandler(assessmentService, dispatcher, log)
	healthHandler := httpH.NewHealthHandler()

	// Router
	server := httpx.NewServer(httpx.RouterConfig{
		Log:               log,
		CORSOrigins:       cfg.CORSOrigins,
		UserHandler:       userHandler,
		DocumentHandler:   documentHandler,
		AssessmentHandler: assessmentHandler,
		HealthHandler:     healthHandler,
	})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info("Shutdown signal received, draining jobs...")
		stopJobs()
		dispatcher.Wait()
		log.Sync()
		os.Exit(0)
	}()

	log.Info("Server listening", "addr", cfg.HTTPAddr)
	if err := server.Run(cfg.HTTPAddr); err != nil {
		log.Error("Server failed", "error", err)
		stopJobs()
		dispatcher.Wait()
		os.Exit(1)
	}
}
