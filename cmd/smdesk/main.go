package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bitfantasy/smdesk/internal/config"
	"github.com/bitfantasy/smdesk/internal/middleware"
	"github.com/bitfantasy/smdesk/internal/ops/handler"
	"github.com/bitfantasy/smdesk/internal/ops/repository"
	"github.com/bitfantasy/smdesk/internal/ops/service"
	"github.com/bitfantasy/smdesk/internal/ops/sse"
	"github.com/bitfantasy/smdesk/internal/ops/view"
	"github.com/bitfantasy/smdesk/internal/shared/objectstore"
	"github.com/bitfantasy/smdesk/internal/shared/postgrest"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// pinger 就绪检查依赖
type pinger func(ctx context.Context) error

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting smdesk service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("store", cfg.Store.Backend),
	)

	ready := map[string]pinger{}

	// 记录存储
	var repos *repository.Repositories
	switch cfg.Store.Backend {
	case repository.BackendPostgres:
		db, err := initDatabase(cfg.Database)
		if err != nil {
			zapLogger.Fatal("Failed to connect to database", zap.Error(err))
		}
		if err := repository.AutoMigrate(db); err != nil {
			zapLogger.Warn("AutoMigrate record tables warning", zap.Error(err))
		}
		sqlDB, _ := db.DB()
		ready["database"] = sqlDB.PingContext
		repos = repository.NewDBRepositories(db)
	default:
		client := postgrest.NewClient(cfg.Store.URL, cfg.Store.APIKey,
			postgrest.WithHTTPClient(&http.Client{Timeout: cfg.Store.Timeout}),
			postgrest.WithLogger(zapLogger.Named("postgrest")),
		)
		repos = repository.NewRESTRepositories(client)
	}

	// 视图会话：配置了Redis时跨实例共享
	var sessions view.SessionStore = view.NewMemorySessions()
	if cfg.Redis.Host != "" {
		rdb := initRedis(cfg.Redis)
		ready["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		sessions = view.NewRedisSessions(rdb, cfg.Redis.SessionTTL)
		zapLogger.Info("View sessions stored in redis", zap.String("addr", cfg.Redis.Addr()))
	}

	// 导出链接
	var links handler.LinkPublisher
	if cfg.MinIO.Endpoint != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		publisher, err := objectstore.New(ctx, objectstore.Config{
			Endpoint:   cfg.MinIO.Endpoint,
			AccessKey:  cfg.MinIO.AccessKey,
			SecretKey:  cfg.MinIO.SecretKey,
			Bucket:     cfg.MinIO.Bucket,
			UseSSL:     cfg.MinIO.UseSSL,
			LinkExpiry: cfg.MinIO.LinkExpiry,
		}, zapLogger.Named("objectstore"))
		cancel()
		if err != nil {
			zapLogger.Warn("Object storage unavailable, export links disabled", zap.Error(err))
		} else {
			links = publisher
		}
	}

	hub := sse.NewHub(zapLogger.Named("sse"))
	services := service.NewServices(repos, hub, service.Defaults{
		Activity: cfg.Defaults.Activity,
		Inquiry:  cfg.Defaults.Inquiry,
	}, zapLogger)
	handlers := handler.NewHandlers(services, hub, sessions, links, zapLogger)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/api/v1/events"})))

	registerRoutes(router, handlers, cfg, ready)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: 0, // Disable for SSE long-lived connections
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	if cfg.Output != "file" {
		return zapCfg.Build()
	}

	// 文件输出按大小滚动
	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	})
	var encoder zapcore.Encoder
	if cfg.Format == "json" {
		encoder = zapcore.NewJSONEncoder(zapCfg.EncoderConfig)
	} else {
		encoder = zapcore.NewConsoleEncoder(zapCfg.EncoderConfig)
	}
	core := zapcore.NewCore(encoder, writer, zapCfg.Level)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)), nil
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config, ready map[string]pinger) {
	// 健康检查
	r.GET("/health/live", handler.Health)
	r.GET("/health/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()
		checks := gin.H{}
		status := http.StatusOK
		for name, ping := range ready {
			if err := ping(ctx); err != nil {
				checks[name] = err.Error()
				status = http.StatusServiceUnavailable
				continue
			}
			checks[name] = "ok"
		}
		c.JSON(status, gin.H{"status": http.StatusText(status), "checks": checks})
	})

	// 版本信息
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"instance":   config.GetEnvOrDefault("HOSTNAME", "local"),
		})
	})

	api := r.Group("/api/v1")
	if cfg.JWT.Secret != "" {
		api.Use(middleware.JWTAuth(cfg.JWT.Secret))
	}

	importLimit := middleware.RateLimit(cfg.Import.RatePerSecond, cfg.Import.Burst)

	h.Activity.Register(api.Group("/activities"), importLimit)
	h.Inquiry.Register(api.Group("/inquiries"), importLimit)

	views := api.Group("/views")
	h.ActivityView.Register(views.Group("/activities"))
	h.InquiryView.Register(views.Group("/inquiries"))

	api.GET("/events", h.SSE.Stream)
}
