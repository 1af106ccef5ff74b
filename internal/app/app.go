package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coursehub_backend/internal/config"
	"coursehub_backend/internal/controller"
	"coursehub_backend/internal/repository"
	"coursehub_backend/internal/service"
	"coursehub_backend/pkg/database"
	"coursehub_backend/pkg/logger"
	"coursehub_backend/pkg/monitoring"
	"coursehub_backend/pkg/security"
	"coursehub_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client
}

type repositories struct {
	user       *repository.UserRepository
	course     *repository.CourseRepository
	enrollment *repository.EnrollmentRepository
	quiz       *repository.QuizRepository
	attempt    *repository.QuizAttemptRepository
}

type services struct {
	storage    *service.StorageService
	cache      *service.CourseCache
	auth       *service.AuthService
	course     *service.CourseService
	enrollment *service.EnrollmentService
	quiz       *service.QuizService
}

type controllers struct {
	auth       *controller.AuthController
	course     *controller.CourseController
	enrollment *controller.EnrollmentController
	quiz       *controller.QuizController
	health     *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		course:     repository.NewCourseRepository(db),
		enrollment: repository.NewEnrollmentRepository(db),
		quiz:       repository.NewQuizRepository(db),
		attempt:    repository.NewQuizAttemptRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.cache = service.NewCourseCache(rdb)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.course = service.NewCourseService(repos.course, s.storage, s.cache, db)
	s.enrollment = service.NewEnrollmentService(repos.enrollment, repos.course, s.cache, db)
	s.quiz = service.NewQuizService(repos.quiz, repos.attempt, db)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		course:     controller.NewCourseController(s.course, s.storage),
		enrollment: controller.NewEnrollmentController(s.enrollment, s.course),
		quiz:       controller.NewQuizController(s.quiz),
		health:     controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests == 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window == 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	// Release mode skips automatic migration unless forced.
	if cfg.Server.Mode != "release" || cfg.ForceMigrate {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			// Redis only backs the catalog cache; run degraded without it.
			logger.Log.Warn("Redis unavailable, catalog caching disabled", zap.Error(err))
			rdb = nil
		}
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	controllers := app.initControllers(services, db)

	monitoring.Init()

	gin.SetMode(ginMode(cfg.Server.Mode))
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("coursehub", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

// ReloadConfig applies the runtime-tunable subset of a freshly loaded
// config in place. Handlers reading through the shared config pointer,
// like token verification, pick the new values up on the next request.
// Server address, database, and storage wiring stay fixed.
func (a *App) ReloadConfig(cfg *config.Config) {
	a.Config.JWT = cfg.JWT
	a.Config.CORS = cfg.CORS
	a.Config.RateLimit = cfg.RateLimit
	logger.Log.Info("configuration reloaded")
}

func ginMode(mode string) string {
	switch mode {
	case "release":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
