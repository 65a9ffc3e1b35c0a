package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/task-management/api"
	"github.com/frahmantamala/task-management/internal"
	"github.com/frahmantamala/task-management/internal/analytics"
	"github.com/frahmantamala/task-management/internal/analytics/llm"
	analyticsPostgres "github.com/frahmantamala/task-management/internal/analytics/postgres"
	"github.com/frahmantamala/task-management/internal/attachment"
	attachmentPostgres "github.com/frahmantamala/task-management/internal/attachment/postgres"
	attachmentS3 "github.com/frahmantamala/task-management/internal/attachment/s3"
	"github.com/frahmantamala/task-management/internal/auth"
	authPostgres "github.com/frahmantamala/task-management/internal/auth/postgres"
	authRedis "github.com/frahmantamala/task-management/internal/auth/redis"
	"github.com/frahmantamala/task-management/internal/core/events"
	"github.com/frahmantamala/task-management/internal/department"
	departmentPostgres "github.com/frahmantamala/task-management/internal/department/postgres"
	"github.com/frahmantamala/task-management/internal/evaluation"
	evaluationPostgres "github.com/frahmantamala/task-management/internal/evaluation/postgres"
	"github.com/frahmantamala/task-management/internal/task"
	taskPostgres "github.com/frahmantamala/task-management/internal/task/postgres"
	"github.com/frahmantamala/task-management/internal/transport"
	"github.com/frahmantamala/task-management/internal/transport/rest"
	"github.com/frahmantamala/task-management/internal/transport/swagger"
	"github.com/frahmantamala/task-management/internal/user"
	userPostgres "github.com/frahmantamala/task-management/internal/user/postgres"
	"github.com/frahmantamala/task-management/pkg/logger"

	"github.com/go-chi/chi"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config        *internal.Config
	DB            *sqlx.DB
	Gorm          *gorm.DB
	Redis         *goredis.Client
	AnalyticsPool *pgxpool.Pool
	Router        *chi.Mux
	Logger        *slog.Logger
}

func (d *Dependencies) Close() {
	if d.AnalyticsPool != nil {
		d.AnalyticsPool.Close()
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			d.Logger.Error("Redis close error", "error", err)
		}
	}
	if err := d.DB.Close(); err != nil {
		d.Logger.Error("Database close error", "error", err)
	}
}

func startHTTPServer() {
	ctx := context.Background()
	deps, err := initializeDependencies(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(ctx, deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		deps.Close()
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "analytics_enabled", deps.AnalyticsPool != nil)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		deps.Close()
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			deps.Close()
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(ctx context.Context, deps *Dependencies) error {
	cfg := deps.Config
	lg := deps.Logger
	base := transport.NewBaseHandler(lg)

	if _, err := swagger.LoadSpec(ctx, api.OpenAPISpec); err != nil {
		return err
	}

	var blacklist auth.Blacklist = auth.NewMemoryBlacklist()
	checks := map[string]rest.CheckFunc{"postgres": rest.SQLCheck(deps.DB.DB)}
	if deps.Redis != nil {
		blacklist = authRedis.NewBlacklist(deps.Redis)
		checks["redis"] = rest.RedisCheck(deps.Redis)
	}

	tokens := auth.NewJWTTokenGenerator(
		cfg.Security.AccessTokenSecret,
		cfg.Security.RefreshTokenSecret,
		cfg.Security.AccessTokenDuration,
		cfg.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authPostgres.NewRepository(deps.Gorm), tokens, blacklist,
		auth.ServiceConfig{RotateRefreshTokens: cfg.Security.RotateRefreshTokens}, lg)

	bus := events.NewEventBus(lg)
	taskRepo := taskPostgres.NewTaskRepository(deps.Gorm)
	task.NewHistoryRecorder(taskRepo, lg).RegisterEventHandlers(bus)
	taskService := task.NewService(taskRepo, bus, lg)

	handlers := rest.Handlers{
		Health:         rest.NewHealthHandler(checks),
		Auth:           auth.NewHandler(base, authService, cfg.Security.Cookie),
		User:           user.NewHandler(base, user.NewService(userPostgres.NewUserRepository(deps.Gorm), lg)),
		Department:     department.NewHandler(base, department.NewService(departmentPostgres.NewDepartmentRepository(deps.Gorm), lg)),
		Task:           task.NewHandler(base, taskService),
		Evaluation:     evaluation.NewHandler(base, evaluation.NewService(evaluationPostgres.NewEvaluationRepository(deps.Gorm), taskService, lg)),
		OpenAPISpec:    api.OpenAPISpec,
		AllowedOrigins: cfg.Server.Origins(),
	}

	if cfg.Storage.Bucket != "" {
		client, err := attachmentS3.NewClient(ctx, cfg.Storage)
		if err != nil {
			return err
		}
		storage := attachmentS3.NewStorage(client, cfg.Storage.Bucket)
		attachmentService := attachment.NewService(attachmentPostgres.NewAttachmentRepository(deps.Gorm), taskService, storage, lg)
		handlers.Attachment = attachment.NewHandler(base, attachmentService, cfg.Storage.MaxUploadSize)
	} else {
		lg.Warn("storage bucket not configured; attachment routes disabled")
	}

	if deps.AnalyticsPool != nil {
		completer := llm.NewAnthropicClient(llm.Config{
			APIKey:    cfg.Analytics.APIKey,
			BaseURL:   cfg.Analytics.BaseURL,
			Model:     cfg.Analytics.Model,
			MaxTokens: cfg.Analytics.MaxTokens,
		})
		executor := analyticsPostgres.NewExecutor(deps.AnalyticsPool, analyticsPostgres.ExecutorConfig{
			QueryTimeout: cfg.Analytics.QueryTimeout,
			MaxRows:      cfg.Analytics.MaxRows,
		})
		analyticsService := analytics.NewService(
			analytics.Config{ForbiddenMarkers: cfg.Analytics.ForbiddenMarkers},
			analytics.NewQueryGenerator(completer),
			executor,
			analytics.NewResultFormatter(completer),
			lg,
		)
		handlers.Analytics = analytics.NewHandler(base, analyticsService)
	} else {
		lg.Warn("analytics not configured; /analytics/analyze disabled")
	}

	rest.RegisterAllRoutes(deps.Router, handlers, lg)
	return nil
}

func initializeDependencies(ctx context.Context) (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	lg := logger.InitWithOptions(logger.Options{
		Env:    config.Env,
		Level:  config.Logging.Level,
		Format: config.Logging.Format,
	})

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	deps := &Dependencies{
		Config: config,
		Logger: lg,
		DB:     db,
		Gorm:   gormDB,
		Router: chi.NewRouter(),
	}

	if config.Redis.Addr != "" {
		deps.Redis = authRedis.NewClient(config.Redis)
		if err := deps.Redis.Ping(ctx).Err(); err != nil {
			lg.Warn("redis unreachable at startup", "addr", config.Redis.Addr, "error", err)
		}
	} else {
		lg.Warn("redis not configured; token blacklist is process-local")
	}

	if config.Analytics.Enabled() {
		pool, err := analyticsPostgres.NewPool(ctx, config.Analytics.Database)
		if err != nil {
			deps.Close()
			return nil, fmt.Errorf("failed to initialize analytics pool: %w", err)
		}
		deps.AnalyticsPool = pool
	}

	return deps, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm layers gorm over the already-configured pool.
func initGorm(db *sqlx.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Warn),
	})
}
