package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/phrazzld/taskpilot-api/internal/config"
	"github.com/phrazzld/taskpilot-api/internal/platform/gemini"
	"github.com/phrazzld/taskpilot-api/internal/platform/gotrue"
	"github.com/phrazzld/taskpilot-api/internal/platform/logger"
	"github.com/phrazzld/taskpilot-api/internal/platform/sqlstore"
	"github.com/phrazzld/taskpilot-api/internal/service"
	"github.com/phrazzld/taskpilot-api/internal/service/auth"
	"github.com/phrazzld/taskpilot-api/internal/summary"
)

// application holds the wired dependencies of a running server.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	db      *sql.DB
	dialect sqlstore.Dialect

	authService    *auth.Service
	taskService    service.TaskService
	summaryService service.SummaryService
}

// runServe loads configuration, connects to the database and serves HTTP
// until SIGINT or SIGTERM.
func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.LoadFrom(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}
	ctx = logger.WithLogger(ctx, log)

	log.Info("server configuration loaded",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel))

	db, dialect, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}

	if cmd.Bool("migrate") {
		if err := sqlstore.Migrate(ctx, db, dialect); err != nil {
			_ = db.Close()
			return err
		}
	}

	app, err := newApplication(ctx, cfg, log, db, dialect)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return app.Run(ctx)
}

// newApplication wires stores, services and the identity strategy.
// The identity backend is chosen once here and never changes at runtime.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	log *slog.Logger,
	db *sql.DB,
	dialect sqlstore.Dialect,
) (*application, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if log == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if db == nil {
		return nil, errors.New("database connection cannot be nil")
	}

	users := sqlstore.NewUserStore(db, dialect, log)
	tasks := sqlstore.NewTaskStore(db, dialect, log)

	tokens, err := auth.NewTokenCodec(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create token codec: %w", err)
	}

	backend, err := newIdentityBackend(cfg, log)
	if err != nil {
		return nil, err
	}

	authService, err := auth.NewService(db, users, backend, tokens, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth service: %w", err)
	}

	taskService, err := service.NewTaskService(db, tasks, service.TaskServiceOptions{
		DefaultPageSize: cfg.Tasks.DefaultPageSize,
		MaxPageSize:     cfg.Tasks.MaxPageSize,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	summarizer, err := newSummarizer(ctx, cfg.LLM, log)
	if err != nil {
		return nil, err
	}

	summaryService, err := service.NewSummaryService(summarizer, taskService, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create summary service: %w", err)
	}

	return &application{
		config:         cfg,
		logger:         log,
		db:             db,
		dialect:        dialect,
		authService:    authService,
		taskService:    taskService,
		summaryService: summaryService,
	}, nil
}

// newIdentityBackend selects remote mode when a provider is configured and
// local mode otherwise.
func newIdentityBackend(cfg *config.Config, log *slog.Logger) (auth.IdentityBackend, error) {
	if cfg.Identity.Enabled() {
		client, err := gotrue.NewClient(cfg.Identity, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create identity provider client: %w", err)
		}
		log.Info("identity mode: remote", slog.String("provider_url", cfg.Identity.ProviderURL))
		return auth.NewRemoteBackend(client, log), nil
	}

	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	if cfg.Auth.InsecureDevLogin {
		log.Warn("identity mode: local with password checks disabled; never use outside development")
		return auth.NewInsecureLocalBackend(hasher, log), nil
	}
	log.Info("identity mode: local")
	return auth.NewLocalBackend(hasher, log), nil
}

// newSummarizer returns a nil Summarizer when no API key is configured.
// The summary service then answers with a "not configured" error.
func newSummarizer(ctx context.Context, cfg config.LLMConfig, log *slog.Logger) (summary.Summarizer, error) {
	if cfg.GeminiAPIKey == "" {
		log.Info("AI summarization disabled: no Gemini API key configured")
		return nil, nil
	}
	s, err := gemini.NewSummarizer(ctx, log, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create summarizer: %w", err)
	}
	log.Info("AI summarization enabled", slog.String("model", cfg.ModelName))
	return s, nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully and
// releases resources.
func (app *application) Run(ctx context.Context) error {
	defer app.cleanup()
	return app.startHTTPServer(ctx, app.setupRouter())
}

// cleanup releases application resources.
func (app *application) cleanup() {
	if app.db == nil {
		return
	}
	app.logger.Info("closing database connection")
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database connection", slog.String("error", err.Error()))
	}
}
