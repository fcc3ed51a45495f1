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

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/booky/internal/actions"
	"github.com/mrlokans/booky/internal/audit"
	"github.com/mrlokans/booky/internal/auth"
	"github.com/mrlokans/booky/internal/community"
	"github.com/mrlokans/booky/internal/config"
	"github.com/mrlokans/booky/internal/database"
	auditrepo "github.com/mrlokans/booky/internal/database/audit"
	"github.com/mrlokans/booky/internal/database/books"
	"github.com/mrlokans/booky/internal/database/profiles"
	"github.com/mrlokans/booky/internal/database/reviews"
	"github.com/mrlokans/booky/internal/database/userbooks"
	http_controllers "github.com/mrlokans/booky/internal/http"
	"github.com/mrlokans/booky/internal/notify"
	"github.com/mrlokans/booky/internal/scheduler"
	"github.com/mrlokans/booky/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill -2 is SIGINT, plain kill sends SIGTERM. SIGKILL can't be caught.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop accepting requests before the background workers go away.
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Booky v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	if cfg.Database.SeedSampleBooks {
		seedCatalog(db)
	}

	bookRepo := books.NewRepository(db.DB)
	shelfRepo := userbooks.NewRepository(db.DB)
	reviewRepo := reviews.NewRepository(db.DB)
	profileRepo := profiles.NewRepository(db.DB)
	auditService := audit.NewService(auditrepo.NewRepository(db.DB))

	authService := auth.NewService(db.DB, cfg.Auth)
	if readers, err := authService.GetUserCount(context.Background()); err == nil && readers == 0 {
		log.Printf("No readers yet. Visit /auth?mode=signup to create the first account.")
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}
	provider := auth.NewProvider(sessionManager)
	provider.Subscribe(auditService.RecordSession)

	csrfSecret, err := csrfSecretFrom(cfg.Auth.SessionSecret)
	if err != nil {
		log.Fatalf("Failed to generate CSRF secret: %v", err)
	}

	flash := notify.NewFlash(sessionManager)

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.ConfigFrom(cfg.Tasks))
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewRefreshBookStatsQueue(bookRepo),
			tasks.NewCleanupAuditEventsQueue(auditService),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)
	}

	deps := actions.Dependencies{
		Sessions:  provider,
		UserBooks: shelfRepo,
		Reviews:   reviewRepo,
		Notifier:  flash,
		Auditor:   auditService,
	}
	// Without a queue the stored aggregates are left as seeded.
	var cleanupQueue scheduler.CleanupQueue
	if taskClient != nil {
		deps.Stats = taskClient
		cleanupQueue = taskClient
	}

	cleanupScheduler := scheduler.NewAuditCleanupScheduler(cfg.Audit, cleanupQueue, auditService)
	schedulerCtx, schedulerCancel := context.WithCancel(context.Background())
	defer schedulerCancel()
	if err := cleanupScheduler.Start(schedulerCtx); err != nil {
		log.Printf("WARNING: audit cleanup disabled: %v", err)
	}

	routerCfg := http_controllers.RouterConfig{
		Database: db,
		Books:    bookRepo,
		Shelves:  shelfRepo,
		Reviews:  reviewRepo,
		Actions:  actions.NewService(deps),
		Community: community.NewService(reviewRepo, profileRepo, bookRepo, community.Config{
			ReviewsLimit:    cfg.Community.ReviewsLimit,
			TopReadersLimit: cfg.Community.TopReadersLimit,
		}),
		Activity:       auditService,
		AuthService:    authService,
		Provider:       provider,
		SessionManager: sessionManager,
		AuthConfig:     cfg.Auth,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Auth.SecureCookies,
		Flash:          flash,
		Throttle:       cfg.Actions,
		Version:        version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		cleanupScheduler.Stop()
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
		auditService.Wait()
	}

	Serve(router, cfg, onShutdown)
}

// Seed opens the configured database and fills an empty catalog with the
// sample books. Used by the "seed" command.
func Seed(cfg *config.Config) error {
	db, err := database.NewQuietDatabase(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	created, err := db.SeedSampleBooks()
	if err != nil {
		return err
	}
	if created == 0 {
		log.Printf("Catalog at %s already has books, nothing to seed", cfg.Database.Path)
		return nil
	}
	log.Printf("Seeded %d sample books into %s", created, cfg.Database.Path)
	return nil
}

func seedCatalog(db *database.Database) {
	created, err := db.SeedSampleBooks()
	if err != nil {
		log.Printf("WARNING: Failed to seed sample books: %v", err)
		return
	}
	if created > 0 {
		log.Printf("Seeded %d sample books", created)
	}
}

// csrfSecretFrom derives the CSRF key from the session secret. A hex secret
// is decoded, anything else is used as raw bytes, and an empty one is
// replaced by a freshly generated key.
func csrfSecretFrom(sessionSecret string) ([]byte, error) {
	if sessionSecret != "" {
		if secret, err := hex.DecodeString(sessionSecret); err == nil {
			return secret, nil
		}
		return []byte(sessionSecret), nil
	}

	secret, err := auth.GenerateSessionSecret()
	if err != nil {
		return nil, err
	}
	decoded, err := hex.DecodeString(secret)
	if err != nil {
		return nil, err
	}
	log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	return decoded, nil
}
