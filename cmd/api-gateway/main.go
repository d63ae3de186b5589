package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/aethra-press/publishing-api/api/swagger"
	"github.com/aethra-press/publishing-api/internal/handler"
	"github.com/aethra-press/publishing-api/internal/middleware"
	"github.com/aethra-press/publishing-api/internal/repository"
	"github.com/aethra-press/publishing-api/internal/service"
	"github.com/aethra-press/publishing-api/pkg/cache"
	"github.com/aethra-press/publishing-api/pkg/config"
	"github.com/aethra-press/publishing-api/pkg/database"
	"github.com/aethra-press/publishing-api/pkg/jobs"
	"github.com/aethra-press/publishing-api/pkg/logger"
	corsmiddleware "github.com/aethra-press/publishing-api/pkg/middleware/cors"
	reqidmiddleware "github.com/aethra-press/publishing-api/pkg/middleware/requestid"
	"github.com/aethra-press/publishing-api/pkg/storage"
)

// @title Aethra Publishing API
// @version 1.0.0
// @description Manuscript ingestion and publication hierarchy service
// @BasePath /api/v1
// @schemes http https

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, reading views will not be cached", "error", err)
		redisClient = nil
	}

	blobs, err := storage.NewLocalStorage(cfg.Storage.UploadDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init blob storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Storage.SignedURLSecret, cfg.Storage.SignedURLTTL)

	// repositories
	journalRepo := repository.NewJournalRepository(db)
	volumeRepo := repository.NewVolumeRepository(db)
	issueRepo := repository.NewIssueRepository(db)
	articleRepo := repository.NewArticleRepository(db)
	fileRepo := repository.NewArticleFileRepository(db)
	contentRepo := repository.NewContentRepository(db)
	figureRepo := repository.NewFigureRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// services
	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(cfg.JWT.Secret, logr)
	readingSvc := service.NewReadingService(articleRepo, journalRepo, volumeRepo, issueRepo,
		contentRepo, figureRepo, fileRepo, cacheRepo, metricsSvc,
		service.ReadingConfig{BaseURL: cfg.PublicURL, CacheTTL: cfg.Reading.CacheTTL}, logr)
	journalSvc := service.NewJournalService(journalRepo, logr)
	volumeSvc := service.NewVolumeService(volumeRepo, journalRepo, logr)
	issueSvc := service.NewIssueService(issueRepo, volumeRepo, logr)
	hierarchySvc := service.NewHierarchyService(articleRepo, journalRepo, volumeRepo, issueRepo, readingSvc, logr)
	ingestionSvc := service.NewIngestionService(contentRepo, fileRepo, articleRepo, blobs, readingSvc, metricsSvc,
		service.IngestionConfig{ParseTimeout: cfg.Ingestion.ParseTimeout}, logr)
	artifactSvc := service.NewArtifactService(fileRepo, articleRepo, blobs, ingestionSvc, readingSvc,
		cfg.Storage.MaxFileSizeBytes, logr)
	artifactSvc.AttachSigner(signer, cfg.PublicURL)
	figureSvc := service.NewFigureService(figureRepo, articleRepo, blobs, readingSvc, logr)
	exportSvc := service.NewExportService(articleRepo, journalRepo, volumeRepo, issueRepo, cfg.PublicURL, logr)
	exportSvc.AttachArtifacts(fileRepo, blobs)

	parseQueue := jobs.NewQueue("ingestion", ingestionSvc.HandleJob, jobs.QueueConfig{
		Workers:    cfg.Ingestion.WorkerConcurrency,
		BufferSize: cfg.Ingestion.QueueBuffer,
		Logger:     logr,
	})
	ingestionSvc.AttachQueue(parseQueue)

	// handlers
	journalHandler := handler.NewJournalHandler(journalSvc)
	volumeHandler := handler.NewVolumeHandler(volumeSvc)
	issueHandler := handler.NewIssueHandler(issueSvc)
	articleHandler := handler.NewArticleHandler(hierarchySvc)
	artifactHandler := handler.NewArtifactHandler(artifactSvc)
	figureHandler := handler.NewFigureHandler(figureSvc)
	ingestionHandler := handler.NewIngestionHandler(ingestionSvc)
	readingHandler := handler.NewReadingHandler(readingSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	// public reading surface
	api.GET("/reading/:journalSlug/:articleSlug", readingHandler.Read)
	api.GET("/figures/missing/image", figureHandler.MissingImage)
	api.GET("/figures/:locator/image", figureHandler.Image)
	api.GET("/files/shared/:token", artifactHandler.SharedDownload)
	api.GET("/journals", journalHandler.List)
	api.GET("/journals/:id", journalHandler.Get)
	api.GET("/journals/:id/volumes", volumeHandler.ListByJournal)
	api.GET("/journals/:id/contents", articleHandler.Contents)
	api.GET("/volumes/:id", volumeHandler.Get)
	api.GET("/volumes/:id/issues", issueHandler.ListByVolume)
	api.GET("/issues/:id", issueHandler.Get)
	api.GET("/articles", articleHandler.List)
	api.GET("/articles/:id", articleHandler.Get)
	api.GET("/articles/:id/files", artifactHandler.List)
	api.GET("/articles/:id/files/:kind", artifactHandler.Download)
	if cfg.Exports.Enabled {
		api.GET("/articles/:id/citation", exportHandler.Citation)
		api.GET("/issues/:id/toc", exportHandler.IssueTOC)
		api.GET("/issues/:id/articles.csv", exportHandler.IssueCSV)
	}

	// editorial surface
	editorial := api.Group("")
	editorial.Use(middleware.JWT(authSvc))
	editorial.POST("/journals", journalHandler.Create)
	editorial.PUT("/journals/:id", journalHandler.Update)
	editorial.DELETE("/journals/:id", middleware.RequireAdmin(), journalHandler.Delete)
	editorial.POST("/journals/:id/volumes", volumeHandler.Create)
	editorial.PUT("/volumes/:id", volumeHandler.Update)
	editorial.DELETE("/volumes/:id", middleware.RequireAdmin(), volumeHandler.Delete)
	editorial.POST("/volumes/:id/issues", issueHandler.Create)
	editorial.PUT("/issues/:id", issueHandler.Update)
	editorial.DELETE("/issues/:id", middleware.RequireAdmin(), issueHandler.Delete)
	editorial.POST("/articles", articleHandler.Create)
	editorial.PUT("/articles/:id", articleHandler.Update)
	editorial.PUT("/articles/:id/placement", articleHandler.Move)
	editorial.DELETE("/articles/:id", middleware.RequireAdmin(), articleHandler.Delete)
	editorial.PUT("/articles/:id/files/:kind", artifactHandler.Upload)
	editorial.DELETE("/articles/:id/files/:kind", artifactHandler.Delete)
	editorial.POST("/articles/:id/files/:kind/share-link", artifactHandler.ShareLink)
	editorial.GET("/articles/:id/figures", figureHandler.ListByArticle)
	editorial.POST("/articles/:id/figures", figureHandler.Add)
	editorial.GET("/articles/:id/figures/:figureId", figureHandler.Get)
	editorial.PUT("/articles/:id/figures/:figureId", figureHandler.Update)
	editorial.PUT("/articles/:id/figures/:figureId/image", figureHandler.ReplaceImage)
	editorial.DELETE("/articles/:id/figures/:figureId", figureHandler.Delete)
	editorial.GET("/articles/:id/parsing", ingestionHandler.Status)
	editorial.POST("/articles/:id/reparse", ingestionHandler.Reparse)
	editorial.GET("/articles/:id/preview", readingHandler.Preview)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	parseQueue.Start(ctx)
	defer parseQueue.Stop()

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
}
