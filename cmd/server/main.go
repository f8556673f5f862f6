package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"task-tracker/internal/auth"
	"task-tracker/internal/config"
	apphttp "task-tracker/internal/http"
	"task-tracker/internal/notify"
	"task-tracker/internal/repository"
	"task-tracker/internal/repository/mongodb"
	"task-tracker/internal/repository/sqlite"
	"task-tracker/internal/service"
	"task-tracker/internal/storage"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Fatalf("log level: %v", err)
	}
	logger.SetLevel(level)

	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		logger.Fatalf("auth jwt secret is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	if err := store.Init(ctx); err != nil {
		logger.Fatalf("init database: %v", err)
	}
	logger.Infof("using %s store", cfg.Database.Driver)

	signer, err := auth.NewSigner(cfg.Auth.JWTSecret)
	if err != nil {
		logger.Fatalf("setup token signer: %v", err)
	}

	archiver, err := buildArchiver(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup archive: %v", err)
	}

	dispatcher := notify.NewDispatcher(notify.Config{
		Workers:   cfg.Notify.Workers,
		QueueSize: cfg.Notify.QueueSize,
		Logger:    logger,
	}, store.Users, archiver)
	dispatcher.Start(ctx)

	userService := service.NewUserService(store.Users, signer)
	taskService := service.NewTaskService(store.Tasks, store.Users, dispatcher)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	apphttp.NewHandler(userService, taskService, logger).RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	dispatcher.Shutdown()
	if err := store.Close(shutdownCtx); err != nil {
		logger.Warnf("close database: %v", err)
	}

	logger.Info("bye")
}

func openStore(ctx context.Context, cfg config.Config) (*repository.Store, error) {
	switch cfg.Database.Driver {
	case config.DriverMongoDB:
		return mongodb.OpenStore(ctx, cfg.Database.URI, cfg.Database.Name)
	default:
		return sqlite.OpenStore(cfg.Database.Path)
	}
}

// buildArchiver returns nil when no bucket is configured; deleted tasks are then not archived.
func buildArchiver(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Archiver, error) {
	if cfg.Archive.Bucket == "" {
		logger.Info("archive bucket not set, deleted tasks will not be archived")
		return nil, nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Archive.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Archive.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Archive.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("archiving deleted tasks to s3 bucket %s (region %s)", cfg.Archive.Bucket, cfg.Archive.Region)
	return storage.NewS3Archiver(client, cfg.Archive.Bucket, cfg.Archive.KeyPrefix)
}
