package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/frahmantamala/procurement-inventory/internal"
	"github.com/frahmantamala/procurement-inventory/internal/audit"
	auditPostgres "github.com/frahmantamala/procurement-inventory/internal/audit/postgres"
	"github.com/frahmantamala/procurement-inventory/internal/auth"
	authPostgres "github.com/frahmantamala/procurement-inventory/internal/auth/postgres"
	"github.com/frahmantamala/procurement-inventory/internal/core/events"
	"github.com/frahmantamala/procurement-inventory/internal/mailer"
	"github.com/frahmantamala/procurement-inventory/internal/order"
	orderPostgres "github.com/frahmantamala/procurement-inventory/internal/order/postgres"
	"github.com/frahmantamala/procurement-inventory/internal/product"
	productPostgres "github.com/frahmantamala/procurement-inventory/internal/product/postgres"
	"github.com/frahmantamala/procurement-inventory/internal/report"
	reportPostgres "github.com/frahmantamala/procurement-inventory/internal/report/postgres"
	"github.com/frahmantamala/procurement-inventory/internal/supplier"
	supplierPostgres "github.com/frahmantamala/procurement-inventory/internal/supplier/postgres"
	"github.com/frahmantamala/procurement-inventory/internal/transport/rest"
	"github.com/frahmantamala/procurement-inventory/internal/transport/swagger"
	"github.com/frahmantamala/procurement-inventory/internal/user"
	userPostgres "github.com/frahmantamala/procurement-inventory/internal/user/postgres"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := startHTTPServer(); err != nil {
			fmt.Fprintf(os.Stderr, "server: %v\n", err)
			os.Exit(1)
		}
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *Database
	Bus    *events.EventBus
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() error {
	deps, err := initializeDependencies()
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer func() {
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	}()

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
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
		deps.Logger.Info("starting HTTP server", "address", addr, "env", deps.Config.Env)
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.Bus.Drain(ctx); err != nil {
			deps.Logger.Error("pending notifications dropped", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	deps.Logger.Info("server stopped")
	return nil
}

func initializeDependencies() (*Dependencies, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	lg := initLogger(cfg)

	// fail fast on a broken API document rather than serving it
	if _, err := swagger.Load(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}

	db, err := openDatabase(cfg.Database, !cfg.IsProduction() && cfg.Logging.Level == "debug")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	bus := events.NewEventBus(lg)
	mailer.NewNotifier(mailer.NewSender(cfg.Mail, lg), lg).Subscribe(bus)

	router := buildRouter(cfg, db, bus, lg)

	return &Dependencies{
		Config: cfg,
		DB:     db,
		Bus:    bus,
		Router: router,
		Logger: lg,
	}, nil
}

func buildRouter(cfg *internal.Config, db *Database, bus *events.EventBus, lg *slog.Logger) *chi.Mux {
	// reset links are returned in responses outside production
	exposeLink := !cfg.IsProduction()

	auditRepo := auditPostgres.NewAuditRepository(db.Gorm)
	auditService := audit.NewService(auditRepo, lg, cfg.Reports.AuditLimit)

	authService := auth.NewService(
		authPostgres.NewRepository(db.Gorm),
		auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.AccessTokenDuration),
		auditService,
		bus,
		lg,
		auth.Options{
			BCryptCost:      cfg.Security.BCryptCost,
			ResetTokenTTL:   cfg.Security.ResetTokenDuration,
			FrontendURL:     cfg.Mail.FrontendURL,
			ExposeResetLink: exposeLink,
		},
	)

	userService := user.NewService(userPostgres.NewUserRepository(db.Gorm), authService, auditService, lg, cfg.Security.BCryptCost, exposeLink)

	supplierRepo := supplierPostgres.NewSupplierRepository(db.Gorm)
	productRepo := productPostgres.NewProductRepository(db.Gorm)
	orderRepo := orderPostgres.NewOrderRepository(db.Gorm)

	supplierService := supplier.NewService(supplierRepo, auditService, lg)
	productService := product.NewService(productRepo, supplierRepo, orderRepo, auditService, lg)
	orderService := order.NewService(orderRepo, productRepo, supplierRepo, auditService, lg)
	reportService := report.NewService(reportPostgres.NewReportRepository(db.SQL), auditService, lg)

	handlers := rest.Handlers{
		Health:   rest.NewHealthHandler(db.SQL),
		Auth:     auth.NewHandler(authService, lg),
		User:     user.NewHandler(userService, lg),
		Supplier: supplier.NewHandler(supplierService, lg),
		Product:  product.NewHandler(productService, lg),
		Order:    order.NewHandler(orderService, lg),
		Report:   report.NewHandler(reportService, lg),
	}

	return rest.NewRouter(rest.Routes(handlers), rest.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestTimeout: cfg.Server.RequestTimeout,
		Resolver:       authService,
		Logger:         lg,
	})
}
