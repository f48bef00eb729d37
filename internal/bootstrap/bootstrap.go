package bootstrap

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appAuth "github.com/yigit/lms/internal/app/auth"
	appControllers "github.com/yigit/lms/internal/app/controllers"
	appMigrations "github.com/yigit/lms/internal/app/migrations"
	appRepos "github.com/yigit/lms/internal/app/repositories"
	appRoutes "github.com/yigit/lms/internal/app/routes"
	appServices "github.com/yigit/lms/internal/app/services"
	appViews "github.com/yigit/lms/internal/app/views"
	"github.com/yigit/lms/internal/config"
	"github.com/yigit/lms/internal/db"
	appMiddleware "github.com/yigit/lms/internal/middleware"
	pkgAuth "github.com/yigit/lms/internal/pkg/auth"
	"github.com/yigit/lms/internal/pkg/helpers"
	"github.com/yigit/lms/internal/pkg/logger"
	"github.com/yigit/lms/internal/pkg/validation"
	"github.com/yigit/lms/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	CourseService    appServices.CourseService
	LessonService    appServices.LessonService
	CourseController *appControllers.CourseController
	AuthMiddleware   *appMiddleware.AuthMiddleware
	Metrics          *appMiddleware.HTTPMetrics // nil when metrics are disabled
	Repos            *appRepos.Repositories
	JWTService       *pkgAuth.JWTService
	AuthzService     *appAuth.AuthorizationService
	Validator        *validation.FormValidator
	Renderer         appViews.Renderer
	Logger           zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		configPath = p
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool
	lgr.Info().Msg("Database connection successfully established.")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	lgr.Info().Msg("Running database migrations...")
	migrationsDir := cfg.Server.MigrationsPath
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		dbPool.Close()
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	migrator := appMigrations.NewMigrator(dbPool, lgr)
	if err := migrator.MigrateFromDirectory(ctx, migrationsDir); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		dbPool.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if cfg.Server.SeedDemoData {
		if err := seed.CreateDefaultData(ctx, dbPool, lgr); err != nil {
			lgr.Error().Err(err).Msg("Failed to create demo data, proceeding anyway...")
		}
	}

	return dbPool, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 1*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	validator, err := validation.NewFormValidator(cfg.I18n.Locale)
	if err != nil {
		lgr.Error().Err(err).Str("locale", cfg.I18n.Locale).Msg("Failed to initialize form validator")
		return nil, fmt.Errorf("failed to initialize form validator: %w", err)
	}
	deps.Validator = validator
	deps.Renderer = appViews.New(cfg.Server.TemplatesPath)

	deps.AuthzService = appAuth.NewAuthorizationService(deps.Repos.CourseRepository)
	deps.CourseService = appServices.NewCourseService(
		deps.Repos.CourseRepository,
		deps.Repos.LessonRepository,
		deps.Repos.UserRepository,
	)
	deps.LessonService = appServices.NewLessonService(deps.Repos.LessonRepository)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		deps.Metrics = appMiddleware.NewHTTPMetrics(reg)
	}

	deps.CourseController = appControllers.NewCourseController(
		deps.CourseService,
		deps.LessonService,
		deps.AuthzService,
		deps.Validator,
		deps.Renderer,
	)

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(appMiddleware.RequestLogger(lgr))
	router.Use(appMiddleware.CORS(cfg.AllowedOriginList()))
	if deps.Metrics != nil {
		router.Use(deps.Metrics.Middleware())
	}

	if cfg.Server.TemplatesPath != "" {
		router.LoadHTMLGlob(filepath.Join(cfg.Server.TemplatesPath, "*.html"))
		lgr.Info().Str("path", cfg.Server.TemplatesPath).Msg("HTML templates loaded")
	}

	appRoutes.SetupRouter(router, deps.CourseController, deps.AuthMiddleware, deps.Metrics)

	return router
}
