package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/api/swagger"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/handler"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/middleware"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/repository"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/internal/service"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/cache"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/config"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/database"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/jobs"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/logger"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/realtime"
	"github.com/adtristoneindustries-ux/erp-tristone-copy-sub002/pkg/storage"
)

// @title School ERP API
// @version 1.0.0
// @description Attendance, exams, finance, timetable, leave, hostel and transport administration.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const (
	documentSweepInterval = time.Hour
	limiterSweepInterval  = 10 * time.Minute
)

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := run(cfg, logr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if cfg.Cache.Enabled || cfg.Realtime.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisClient.Close() //nolint:errcheck
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	users := repository.NewUserRepository(db)
	students := repository.NewStudentRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	examRepo := repository.NewExamRepository(db)
	markRepo := repository.NewMarkRepository(db)
	financeRepo := repository.NewFinanceRepository(db)
	scholarshipRepo := repository.NewScholarshipRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	leaveRepo := repository.NewLeaveRepository(db)
	hostelRepo := repository.NewHostelRepository(db)
	transportRepo := repository.NewTransportRepository(db)

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, "erp")
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.TimetableTTL, logr, cfg.Cache.Enabled && cacheRepo != nil)

	hub := realtime.NewHub(cfg.CORS.AllowedOrigins, logr)
	events, shutdownEvents := buildEventSink(ctx, cfg, redisClient, hub, metrics, logr)
	defer shutdownEvents()

	store, err := storage.NewLocalStorage(cfg.Downloads.StorageDir)
	if err != nil {
		return fmt.Errorf("prepare document storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Downloads.SignedURLSecret, cfg.Downloads.SignedURLTTL)
	documents := service.NewDocumentService(store, signer, service.DocumentConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Downloads.SignedURLTTL,
	}, logr, nil, nil)

	authSvc := service.NewAuthService(users, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	financeSvc := service.NewFinanceService(financeRepo, scholarshipRepo, users, events, metrics, validate, logr)

	loginLimiter := middleware.NewTokenBucket(cfg.RateLimit.LoginPerMinute, cfg.RateLimit.LoginPerMinute)

	handlers := routeHandlers{
		auth:         handler.NewAuthHandler(authSvc),
		attendance:   handler.NewAttendanceHandler(service.NewAttendanceService(attendanceRepo, students, documents, users, events, metrics, validate, logr)),
		exams:        handler.NewExamHandler(service.NewExamService(examRepo, students, documents, users, events, validate, logr)),
		marks:        handler.NewMarkHandler(service.NewMarkService(markRepo, examRepo, events, metrics, validate, logr)),
		finance:      handler.NewFinanceHandler(financeSvc),
		scholarships: handler.NewScholarshipHandler(service.NewScholarshipService(scholarshipRepo, financeSvc, events, metrics, validate, logr)),
		timetable:    handler.NewTimetableHandler(service.NewTimetableService(timetableRepo, cacheSvc, cfg.Timetable.Slots, cfg.Cache.TimetableTTL, events, validate, logr)),
		leaves:       handler.NewLeaveHandler(service.NewLeaveService(leaveRepo, events, validate, logr)),
		hostels:      handler.NewHostelHandler(service.NewHostelService(hostelRepo, users, events, validate, logr)),
		transport:    handler.NewTransportHandler(service.NewTransportService(transportRepo, users, events, validate, logr)),
		students:     handler.NewStudentHandler(service.NewStudentService(students, logr)),
		downloads:    handler.NewDownloadHandler(documents),
		metrics:      handler.NewMetricsHandler(metrics, readinessChecks(db.PingContext, redisClient)),
	}

	r := newRouter(cfg, logr, metrics, authSvc, users, loginLimiter, hub, handlers)

	go sweep(ctx, documentSweepInterval, func() {
		if _, err := documents.Cleanup(0); err != nil {
			logr.Warn("document cleanup failed", zap.Error(err))
		}
	})
	go sweep(ctx, limiterSweepInterval, func() {
		loginLimiter.Sweep(limiterSweepInterval)
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "realtime", cfg.Realtime.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildEventSink returns the sink services publish into. With realtime enabled
// events go through the worker queue to redis, and the hub relays the channel
// to websocket clients on every instance.
func buildEventSink(ctx context.Context, cfg *config.Config, client *redis.Client, hub *realtime.Hub, metrics *service.MetricsService, logr *zap.Logger) (realtime.Sink, func()) {
	if !cfg.Realtime.Enabled || client == nil {
		logr.Info("realtime disabled, events are dropped")
		return realtime.NopSink{}, func() {}
	}
	publisher := realtime.NewRedisPublisher(client, cfg.Realtime.Channel)
	async := realtime.NewAsyncSink(metrics.InstrumentSink(publisher), jobs.QueueConfig{
		Workers:    cfg.Realtime.Workers,
		BufferSize: cfg.Realtime.BufferSize,
		MaxRetries: cfg.Realtime.MaxRetries,
		RetryDelay: 500 * time.Millisecond,
		JobTimeout: 5 * time.Second,
		Logger:     logr,
		DeadLetter: func(job jobs.Job, err error) {
			logr.Warn("event delivery abandoned", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))
		},
	})
	async.Start(ctx)
	hub.Subscribe(ctx, client, publisher.Channel())
	return async, async.Stop
}

func readinessChecks(pingDB func(context.Context) error, client *redis.Client) map[string]handler.Pinger {
	checks := map[string]handler.Pinger{"postgres": handler.PingerFunc(pingDB)}
	if client != nil {
		checks["redis"] = handler.PingerFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	}
	return checks
}

func sweep(ctx context.Context, every time.Duration, fn func()) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}
