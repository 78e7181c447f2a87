package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"

	"github.com/mrlokans/library-catalog/internal/audit"
	"github.com/mrlokans/library-catalog/internal/auth"
	"github.com/mrlokans/library-catalog/internal/config"
	"github.com/mrlokans/library-catalog/internal/database"
	auditrepo "github.com/mrlokans/library-catalog/internal/database/audit"
	"github.com/mrlokans/library-catalog/internal/database/catalog"
	"github.com/mrlokans/library-catalog/internal/database/users"
	http_controllers "github.com/mrlokans/library-catalog/internal/http"
	"github.com/mrlokans/library-catalog/internal/maintenance"
	"github.com/mrlokans/library-catalog/internal/scheduler"
	"github.com/mrlokans/library-catalog/internal/services"
	"github.com/mrlokans/library-catalog/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(handler http.Handler, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	// Stop background work after in-flight requests have drained
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Library Catalog v%s", version)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	auditService := audit.NewService(auditrepo.NewRepository(db.DB))

	templates, err := http_controllers.ParseTemplates()
	if err != nil {
		log.Fatalf("Failed to parse templates: %v", err)
	}

	// Sessions
	sessionStore, err := newSessionStore(db)
	if err != nil {
		log.Fatalf("Failed to initialize session store: %v", err)
	}
	authService := auth.NewService(users.NewRepository(db.DB), cfg.Auth)
	sessionManager := auth.NewSessionManager(sessionStore, cfg.Auth)
	authMiddleware := auth.NewMiddleware(authService, sessionManager)
	authController := auth.NewAuthController(authService, sessionManager, templates, cfg.Auth, auditService)

	secret, err := csrfSecret(cfg.Auth.SessionSecret)
	if err != nil {
		log.Fatalf("Failed to generate CSRF secret: %v", err)
	}

	if hasUsers, _ := authService.HasUsers(); !hasUsers {
		log.Printf("No users found. Visit /register to create the first account.")
	}

	catalogService := services.NewCatalogService(
		catalog.NewRepository(db.DB, cfg.Catalog.EditPolicy),
		auditService,
	)

	maintenanceMiddleware := maintenance.NewMiddleware(cfg.Maintenance.ReadOnly)
	if maintenanceMiddleware.IsEnabled() {
		log.Printf("Read-only mode enabled - catalog changes will be rejected")
	}

	// Background audit retention
	var taskClient *tasks.Client
	var cleanupScheduler *scheduler.AuditCleanupScheduler
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Tasks)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(tasks.NewCleanupAuditEventsQueue(auditService))

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		cleanupScheduler = scheduler.NewAuditCleanupScheduler(taskClient, cfg.Audit.CleanupSchedule, cfg.Audit.RetentionDays)
		if err := cleanupScheduler.Start(taskCtx); err != nil {
			log.Printf("WARNING: audit cleanup scheduler not started: %v", err)
			cleanupScheduler = nil
		} else if next := cleanupScheduler.NextRun(); next != nil {
			log.Printf("Next audit cleanup: %s", next.Format(time.RFC3339))
		}
	} else {
		log.Printf("Task queue disabled - run the cleanup-audit command to prune audit events")
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Catalog:        catalogService,
		Database:       db,
		AuthService:    authService,
		SessionManager: sessionManager,
		AuthMiddleware: authMiddleware,
		AuthController: authController,
		CSRFSecret:     secret,
		SecureCookies:  cfg.Auth.SecureCookies,
		Maintenance:    maintenanceMiddleware,
		Templates:      templates,
		Version:        version,
	})

	onShutdown := func(ctx context.Context) {
		if cleanupScheduler != nil {
			cleanupScheduler.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		authController.Stop()
		auditService.Wait()
	}

	Serve(router, cfg, onShutdown)
}

// newSessionStore keeps sessions next to the catalog when it lives in sqlite
// and in memory otherwise.
func newSessionStore(db *database.Database) (scs.Store, error) {
	if db.Driver != config.DriverSQLite {
		log.Printf("Sessions are kept in memory for the %s driver", db.Driver)
		return memstore.New(), nil
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get SQL DB for sessions: %w", err)
	}
	return auth.NewSQLiteStore(sqlDB)
}

// csrfSecret decodes the configured secret, falling back to the raw bytes
// when it is not hex. An empty secret is generated per process.
func csrfSecret(configured string) ([]byte, error) {
	if configured != "" {
		if secret, err := hex.DecodeString(configured); err == nil {
			return secret, nil
		}
		return []byte(configured), nil
	}

	secret, err := auth.GenerateSessionSecret()
	if err != nil {
		return nil, err
	}
	log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	return hex.DecodeString(secret)
}
