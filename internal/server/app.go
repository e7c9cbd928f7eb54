// Package server assembles the RBAC API: it opens the database, applies
// migrations and seed data, wires services to the HTTP transport and the
// background jobs, and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/punit-mobi/RBAC-project/internal/dbx"
	"github.com/punit-mobi/RBAC-project/internal/logging"
	"github.com/punit-mobi/RBAC-project/internal/server/config"
	"github.com/punit-mobi/RBAC-project/internal/server/jobs"
	"github.com/punit-mobi/RBAC-project/internal/server/mailer"
	"github.com/punit-mobi/RBAC-project/internal/server/repositories/repomanager"
	"github.com/punit-mobi/RBAC-project/internal/server/rest"
	"github.com/punit-mobi/RBAC-project/internal/server/services"
	"github.com/punit-mobi/RBAC-project/internal/server/storage"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager

	authService       *services.AuthService
	userService       *services.UserService
	roleService       *services.RoleService
	postService       *services.PostService
	masterDataService *services.MasterDataService
	seedService       *services.SeedService
	logService        *services.LogService
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	db, err := dbx.Open(ctx, "pgx", c.DatabaseDSN, dbx.PoolOptions{
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
	})
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m, err := mailer.New(mailer.Options{
		Host:       c.SMTPHost,
		Port:       c.SMTPPort,
		User:       c.SMTPUser,
		Password:   c.SMTPPassword,
		From:       c.SMTPFrom,
		SkipVerify: c.SMTPSkipVerify,
	}, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("mailer init error: %w", err)
	}

	// store stays a nil interface when uploads are disabled
	var store services.PhotoStore
	if c.PhotoStorageEnabled() {
		s3, err := storage.NewS3PhotoStore(ctx, storage.Options{
			Region:       c.S3Region,
			RootUser:     c.S3RootUser,
			RootPassword: c.S3RootPassword,
			BaseEndpoint: c.S3BaseEndpoint,
			Bucket:       c.S3Bucket,
		})
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("photo storage init error: %w", err)
		}
		store = s3
	}

	rm := repomanager.NewPostgresRepositoryManager()
	md := services.NewMasterDataService(db, rm)

	return &App{
		config:            c,
		logger:            logger,
		db:                db,
		repomanager:       rm,
		authService:       services.NewAuthService(db, rm, c, m, store, md, logger),
		userService:       services.NewUserService(db, rm, store, logger),
		roleService:       services.NewRoleService(db, rm, logger),
		postService:       services.NewPostService(db, rm),
		masterDataService: md,
		seedService:       services.NewSeedService(db, rm, logger),
		logService:        services.NewLogService(db, rm),
	}, nil
}

// Migrate applies pending schema migrations.
func (app *App) Migrate(ctx context.Context) error {
	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	return nil
}

// Seed installs the default roles and master data.
func (app *App) Seed(ctx context.Context) (*services.SeedReport, error) {
	return app.seedService.Seed(ctx)
}

// CreateAdmin registers an active user holding the admin role.
func (app *App) CreateAdmin(ctx context.Context, email, firstName, password string) (*services.RegisterResult, error) {
	return app.authService.Register(ctx, services.RegisterInput{
		FirstName: firstName,
		Email:     email,
		Password:  password,
		Gender:    "other",
		IsAdmin:   true,
	})
}

// PurgeResetTokens deletes expired password reset tokens.
func (app *App) PurgeResetTokens(ctx context.Context) (int64, error) {
	return app.authService.PurgeExpiredResetTokens(ctx)
}

// SyncMasterData bumps the version of every active master data record.
func (app *App) SyncMasterData(ctx context.Context) (*services.MasterDataSnapshot, error) {
	return app.masterDataService.Sync(ctx)
}

func (app *App) Close() error {
	return app.db.Close()
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) newHandler(limits *rest.Limits) *rest.Handler {
	return rest.NewHandler(rest.Options{
		Auth:        app.authService,
		Users:       app.userService,
		Roles:       app.roleService,
		Posts:       app.postService,
		MasterData:  app.masterDataService,
		ErrorLog:    app.logService,
		DB:          app.db,
		Limits:      limits,
		Logger:      app.logger,
		Development: app.config.IsDevelopment(),
	})
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc, h *rest.Handler) {
	s := rest.NewServer(app.config.HTTPAddr, h.Router(), app.logger, app.config.ShutdownTimeout)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run migrates, optionally seeds, and serves until SIGINT/SIGTERM. The HTTP
// server stops first, then the scheduler. The database pool is closed on
// every return path.
func (app *App) Run(ctx context.Context) (err error) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	defer func() {
		app.logger.Info(ctx, "Closing database...")
		if cerr := app.Close(); err == nil {
			err = cerr
		}
	}()

	app.logger.Info(ctx, "Starting app...", "config", app.config.String())
	app.initSignalHandler(cancelFunc)

	if err := app.Migrate(ctx); err != nil {
		return err
	}
	if app.config.SeedOnStart {
		report, err := app.Seed(ctx)
		if err != nil {
			return fmt.Errorf("seed error: %w", err)
		}
		app.logger.Info(ctx, "seed complete",
			"roles_created", report.RolesCreated,
			"master_data_created", report.MasterDataCreated,
			"users_assigned", report.UsersAssigned)
	}

	limits := rest.NewLimits()
	sweepers := make([]jobs.Sweeper, 0, len(limits.All()))
	for _, l := range limits.All() {
		sweepers = append(sweepers, l)
	}
	scheduler, err := jobs.NewScheduler(ctx, jobs.Options{
		Tokens:             app.authService,
		Limiters:           sweepers,
		MasterData:         app.masterDataService,
		MasterDataSyncSpec: app.config.MasterDataSyncSpec,
	}, app.logger)
	if err != nil {
		return err
	}
	scheduler.Start()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc, app.newHandler(limits))
	}()

	wg.Wait()

	app.logger.Info(ctx, "Stopping scheduler...")
	scheduler.Stop()
	return nil
}
