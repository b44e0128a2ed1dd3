package app

import (
	"context"
	"fmt"
	"learning_dashboard_backend/internal/config"
	"learning_dashboard_backend/internal/controller"
	"learning_dashboard_backend/internal/repository"
	"learning_dashboard_backend/internal/service"
	"learning_dashboard_backend/internal/util"
	"learning_dashboard_backend/pkg/configwatcher"
	"learning_dashboard_backend/pkg/database"
	"learning_dashboard_backend/pkg/logger"
	"learning_dashboard_backend/pkg/monitoring"
	"learning_dashboard_backend/pkg/security"
	"learning_dashboard_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const configFile = "configs/config.yaml"

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	Badger   *badger.DB
	Store    repository.RecordStore
	services *services
	tracer   *sdktrace.TracerProvider

	mu              sync.Mutex
	configCallbacks []func(*config.Config)
}

type repositories struct {
	activity   *repository.ActivityRepository
	quizResult *repository.QuizResultRepository
}

type services struct {
	activity       *service.ActivityService
	quizResult     *service.QuizResultService
	analytics      *service.AnalyticsService
	recommendation *service.RecommendationService
	contentQueue   *service.ContentQueue
	eventHub       *service.EventHub
}

type controllers struct {
	activity       *controller.ActivityController
	quizResult     *controller.QuizResultController
	analytics      *controller.AnalyticsController
	recommendation *controller.RecommendationController
	content        *controller.ContentController
	event          *controller.EventController
	health         *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) applyConfig(cfg *config.Config) {
	a.mu.Lock()
	callbacks := append([]func(*config.Config){}, a.configCallbacks...)
	a.mu.Unlock()
	for _, cb := range callbacks {
		cb(cfg)
	}
}

// openStore 按配置打开记录存储后端
func (a *App) openStore(cfg *config.Config) (repository.RecordStore, error) {
	switch cfg.Store.Backend {
	case util.StoreGorm:
		db, err := database.InitDB(&cfg.Database, cfg.Server.Mode)
		if err != nil {
			return nil, fmt.Errorf("init database: %w", err)
		}
		a.DB = db
		return repository.NewGormRecordStore(db), nil
	case util.StoreBadger:
		db, err := database.InitBadger(&cfg.Badger)
		if err != nil {
			return nil, fmt.Errorf("init badger: %w", err)
		}
		a.Badger = db
		return repository.NewBadgerRecordStore(db), nil
	case util.StoreRedis:
		if a.Redis == nil {
			return nil, fmt.Errorf("redis backend selected but redis is unavailable")
		}
		return repository.NewRedisRecordStore(a.Redis), nil
	case util.StoreMinio:
		client, err := database.InitMinio(context.Background(), &cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("init minio: %w", err)
		}
		return repository.NewMinioRecordStore(client, cfg.Storage.MinioBucket), nil
	case util.StoreMemory:
		logger.Log.Warn("Using in-memory record store, data will be lost on restart")
		return repository.NewMemoryRecordStore(), nil
	default:
		return nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
	}
}

func (a *App) initRepositories(store repository.RecordStore) *repositories {
	return &repositories{
		activity:   repository.NewActivityRepository(store),
		quizResult: repository.NewQuizResultRepository(store),
	}
}

func (a *App) initServices(repos *repositories, searcher service.ContentSearcher, cfg *config.Config) *services {
	s := &services{}
	loc := cfg.Analytics.Location()

	s.eventHub = service.NewEventHub()
	s.activity = service.NewActivityService(repos.activity, s.eventHub, loc)
	s.quizResult = service.NewQuizResultService(repos.quizResult, s.eventHub)
	s.analytics = service.NewAnalyticsService(repos.quizResult, loc)

	s.contentQueue = service.NewContentQueue(searcher,
		service.WithDelays(cfg.Content.Cooldown, cfg.Content.Gap),
		service.WithRequestTimeout(cfg.Content.RequestTimeout),
		service.WithDefaultMaxResults(cfg.Content.DefaultMaxResults),
		service.WithBreaker(cfg.Content.BreakerFailures, cfg.Content.BreakerTimeout),
	)
	s.recommendation = service.NewRecommendationService(repos.quizResult, s.contentQueue)

	return s
}

// newSearcher 外部检索外面包一层缓存，开启 redis 时缓存放在 redis
func (a *App) newSearcher(cfg *config.Config) (service.ContentSearcher, error) {
	yt, err := service.NewYouTubeSearcher(context.Background(), cfg.Content.YouTubeAPIKey)
	if err != nil {
		return nil, err
	}

	var cache service.SearchCache = service.NewMemorySearchCache()
	if a.Redis != nil {
		cache = service.NewRedisSearchCache(a.Redis)
	}
	return service.NewCachedSearcher(yt, cache, cfg.Content.CacheTTL, cfg.Content.StaleTTL), nil
}

func (a *App) healthChecks() map[string]controller.HealthCheck {
	checks := map[string]controller.HealthCheck{
		"store": func(ctx context.Context) error {
			_, _, err := a.Store.Get(ctx, util.ActivityLedgerKey)
			return err
		},
	}
	if a.DB != nil {
		checks["database"] = func(ctx context.Context) error {
			sqlDB, err := a.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	if a.Redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return a.Redis.Ping(ctx).Err()
		}
	}
	return checks
}

func (a *App) initControllers(s *services) *controllers {
	return &controllers{
		activity:       controller.NewActivityController(s.activity),
		quizResult:     controller.NewQuizResultController(s.quizResult, s.activity),
		analytics:      controller.NewAnalyticsController(s.analytics),
		recommendation: controller.NewRecommendationController(s.recommendation, s.analytics),
		content:        controller.NewContentController(s.contentQueue),
		event:          controller.NewEventController(s.eventHub),
		health:         controller.NewHealthController(a.healthChecks(), s.contentQueue),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// build 在存储和检索组件就绪后组装服务、控制器和路由
func (a *App) build(store repository.RecordStore, searcher service.ContentSearcher) {
	cfg := a.Config
	a.Store = store

	repos := a.initRepositories(store)
	a.services = a.initServices(repos, searcher, cfg)
	controllers := a.initControllers(a.services)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Server.Mode == "debug" {
		router.Use(gin.Logger())
	}
	a.Router = router

	a.setupMiddlewares(router, cfg)
	a.registerRoutes(router, controllers)

	// 队列节奏支持热更新
	queue := a.services.contentQueue
	a.RegisterConfigCallback(func(newCfg *config.Config) {
		queue.SetDelays(newCfg.Content.Cooldown, newCfg.Content.Gap, newCfg.Content.RequestTimeout)
		logger.Log.Info("Content queue delays updated",
			zap.Duration("cooldown", newCfg.Content.Cooldown),
			zap.Duration("gap", newCfg.Content.Gap),
			zap.Duration("timeout", newCfg.Content.RequestTimeout))
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	app := &App{Config: cfg}

	if cfg.Redis.Enabled || cfg.Store.Backend == util.StoreRedis {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			if cfg.Store.Backend == util.StoreRedis {
				logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
			}
			logger.Log.Warn("Redis unavailable, falling back to in-memory content cache", zap.Error(err))
		} else {
			app.Redis = rdb
		}
	}

	store, err := app.openStore(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize record store", zap.String("backend", cfg.Store.Backend), zap.Error(err))
		log.Fatalf("Failed to initialize record store: %v", err)
	}
	logger.Log.Info("Record store ready", zap.String("backend", cfg.Store.Backend))

	searcher, err := app.newSearcher(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize content searcher", zap.Error(err))
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("learning-dashboard", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.build(store, searcher)
	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	if _, err := os.Stat(configFile); err == nil {
		go func() {
			if err := configwatcher.Watch(watchCtx, filepath.Clean(configFile), a.applyConfig); err != nil {
				logger.Log.Error("Config watcher stopped", zap.Error(err))
			}
		}()
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// 先拒绝排队中的检索并断开通知连接，避免请求挂住关闭流程
	a.services.contentQueue.Shutdown()
	a.services.eventHub.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	a.Close(ctx)
	log.Println("Server exiting")
}

// Close 释放存储连接和追踪导出器
func (a *App) Close(ctx context.Context) {
	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Badger != nil {
		if err := a.Badger.Close(); err != nil {
			logger.Log.Error("Failed to close badger", zap.Error(err))
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logger.Log.Error("Failed to close redis", zap.Error(err))
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
}
