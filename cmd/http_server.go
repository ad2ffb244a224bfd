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

	"github.com/frahmantamala/asset-management/internal"
	"github.com/frahmantamala/asset-management/internal/allocation"
	allocationPostgres "github.com/frahmantamala/asset-management/internal/allocation/postgres"
	"github.com/frahmantamala/asset-management/internal/asset"
	assetPostgres "github.com/frahmantamala/asset-management/internal/asset/postgres"
	"github.com/frahmantamala/asset-management/internal/auth"
	authPostgres "github.com/frahmantamala/asset-management/internal/auth/postgres"
	"github.com/frahmantamala/asset-management/internal/core/events"
	"github.com/frahmantamala/asset-management/internal/employee"
	employeePostgres "github.com/frahmantamala/asset-management/internal/employee/postgres"
	"github.com/frahmantamala/asset-management/internal/maintenance"
	maintenancePostgres "github.com/frahmantamala/asset-management/internal/maintenance/postgres"
	"github.com/frahmantamala/asset-management/internal/notification"
	"github.com/frahmantamala/asset-management/internal/ticket"
	ticketPostgres "github.com/frahmantamala/asset-management/internal/ticket/postgres"
	"github.com/frahmantamala/asset-management/internal/transfer"
	transferPostgres "github.com/frahmantamala/asset-management/internal/transfer/postgres"
	"github.com/frahmantamala/asset-management/internal/transport/rest"
	"github.com/frahmantamala/asset-management/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
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
	Config   *internal.Config
	DB       *sqlx.DB
	GormDB   *gorm.DB
	Router   *chi.Mux
	Logger   *slog.Logger
	Notifier *notification.Client
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		deps.Notifier.Shutdown()
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) {
	lg := deps.Logger
	eventBus := events.NewEventBus(lg)

	// repositories
	assetRepo := assetPostgres.NewAssetRepository(deps.GormDB)
	allocationRepo := allocationPostgres.NewAllocationRepository(deps.GormDB)
	transferRepo := transferPostgres.NewTransferRepository(deps.GormDB)
	maintenanceRepo := maintenancePostgres.NewMaintenanceRepository(deps.GormDB)
	ticketRepo := ticketPostgres.NewTicketRepository(deps.GormDB)
	employeeRepo := employeePostgres.NewEmployeeRepository(deps.GormDB)
	authRepo := authPostgres.NewRepository(deps.GormDB)

	// services
	assetService := asset.NewService(assetRepo, eventBus, lg)
	allocationService := allocation.NewService(allocationRepo, assetService, eventBus, lg)
	transferService := transfer.NewService(transferRepo, assetService, allocationService, eventBus, lg)
	maintenanceService := maintenance.NewService(maintenanceRepo, assetService, eventBus, lg)
	ticketService := ticket.NewService(ticketRepo, assetService, eventBus, lg)
	employeeService := employee.NewService(employeeRepo, lg)

	tokenGen := auth.NewJWTTokenGenerator(
		deps.Config.Security.AccessTokenSecret,
		deps.Config.Security.RefreshTokenSecret,
		deps.Config.Security.AccessTokenDuration,
		deps.Config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authRepo, tokenGen, deps.Config.Security.BCryptCost)

	// fire and forget notifier
	notifier := notification.NewEventHandler(deps.Notifier, employeeService, lg)
	notifier.RegisterEventHandlers(eventBus)

	handlers := rest.Handlers{
		Auth:        auth.NewHandler(authService),
		Employee:    employee.NewHandler(employeeService),
		Asset:       asset.NewHandler(assetService),
		Allocation:  allocation.NewHandler(allocationService),
		Transfer:    transfer.NewHandler(transferService),
		Maintenance: maintenance.NewHandler(maintenanceService),
		Ticket:      ticket.NewHandler(ticketService),
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, authService, handlers, lg)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Setup(config.Observability.Logging.Level, config.Observability.Logging.Format)

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	notifier := notification.NewClient(notification.Config{
		EmailAPIURL:  config.Notification.EmailAPIURL,
		APIKey:       config.Notification.APIKey,
		FromAddress:  config.Notification.FromAddress,
		SendTimeout:  config.Notification.SendTimeout,
		MaxWorkers:   config.Notification.MaxWorkers,
		JobQueueSize: config.Notification.JobQueueSize,
	}, logger.L())

	return &Dependencies{
		Config:   config,
		Logger:   logger.L(),
		DB:       db,
		GormDB:   gormDB,
		Router:   chi.NewRouter(),
		Notifier: notifier,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
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
