package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/upb/casting-agency/config"
	"github.com/upb/casting-agency/handlers"
	"github.com/upb/casting-agency/internal/auth"
	"github.com/upb/casting-agency/middleware"
	"github.com/upb/casting-agency/models"
	"github.com/upb/casting-agency/oidc"
	"github.com/upb/casting-agency/repositories"
	"github.com/upb/casting-agency/repositories/sqlstore"
	"github.com/upb/casting-agency/services/catalog"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *sqlstore.DB
	Logger *zap.Logger

	// Repository Factory
	RepoFactory *sqlstore.RepositoryFactory

	// Repositories
	Performers  repositories.PerformerRepository
	Productions repositories.ProductionRepository
	AuditLogs   repositories.AuditRepository
	TxManager   repositories.TransactionManager

	// Services
	Actors *catalog.Service[models.Performer, *models.Performer]
	Movies *catalog.Service[models.Production, *models.Production]

	// Auth
	Verifier       middleware.TokenVerifier
	AuthMiddleware *middleware.AuthMiddleware

	// Handlers
	ActorHandler  *handlers.ResourceHandler
	MovieHandler  *handlers.ResourceHandler
	HealthHandler *handlers.HealthHandler
}

// NewDependencies creates and wires up all application dependencies.
// Schema migrations run before the repositories are handed out.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := deps.RepoFactory.Migrate(ctx, cfg.Database.ResetOnStart); err != nil {
		_ = deps.RepoFactory.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	deps.initRepositories()
	deps.initAuth(cfg)
	deps.initServices()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// Migrate opens the configured database, applies migrations and closes it
func Migrate(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	factory, err := sqlstore.NewRepositoryFactory(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer factory.Close()

	return factory.Migrate(ctx, cfg.Database.ResetOnStart)
}

// initDatabase opens the connection pool and repository factory
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	factory, err := sqlstore.NewRepositoryFactory(ctx, cfg.Database, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}

	d.RepoFactory = factory
	d.DB = factory.GetDB()
	return nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()

	d.Performers = repos.Performers
	d.Productions = repos.Productions
	d.AuditLogs = repos.AuditLogs
	d.TxManager = d.RepoFactory.GetTransactionManager()

	d.Logger.Info("repositories initialized")
}

func (d *Dependencies) initAuth(cfg *config.Config) {
	if !cfg.Auth.Enabled() {
		d.Logger.Warn("token issuer not configured, catalog endpoints will reject every request")
		d.Verifier = middleware.RejectAllVerifier()
		d.AuthMiddleware = middleware.NewAuthMiddleware(d.Verifier, d.Logger)
		return
	}

	d.Verifier = oidc.NewValidator(oidc.Config{
		Issuer:      cfg.Auth.Issuer,
		Audience:    cfg.Auth.Audience,
		JWKSURL:     cfg.Auth.JWKSURL,
		Algorithms:  cfg.Auth.Algorithms,
		CacheTTL:    cfg.Auth.CacheTTL,
		HTTPTimeout: cfg.Auth.HTTPTimeout,
	})
	d.AuthMiddleware = middleware.NewAuthMiddleware(d.Verifier, d.Logger)

	d.Logger.Info("token verification initialized",
		zap.String("issuer", cfg.Auth.Issuer),
		zap.String("audience", cfg.Auth.Audience))
}

func (d *Dependencies) initServices() {
	d.Actors = catalog.NewService[models.Performer, *models.Performer](
		auth.ResourceActors, d.Performers, d.AuditLogs, d.TxManager, d.Logger)
	d.Movies = catalog.NewService[models.Production, *models.Production](
		auth.ResourceMovies, d.Productions, d.AuditLogs, d.TxManager, d.Logger)

	d.ActorHandler = handlers.NewResourceHandler(d.Actors, handlers.ActorKeys, d.Logger)
	d.MovieHandler = handlers.NewResourceHandler(d.Movies, handlers.MovieKeys, d.Logger)
	d.HealthHandler = handlers.NewHealthHandler(d.DB, d.Logger)
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	_ = d.Logger.Sync()

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
