package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"engjobs/internal/config"
	"engjobs/internal/infra/adapter/persistence/postgres"
	"engjobs/internal/infra/db"
	"engjobs/internal/infra/feed"
	"engjobs/internal/observability/logging"
	"engjobs/internal/parse/dateparse"
	"engjobs/internal/parse/mdtable"
	"engjobs/internal/repository"
	"engjobs/internal/resilience/circuitbreaker"
	"engjobs/internal/usecase/ingest"
	"engjobs/internal/usecase/notify"
	"engjobs/internal/usecase/publish"

	hhttp "engjobs/internal/handler/http"
	hingestion "engjobs/internal/handler/http/ingestion"
	hposting "engjobs/internal/handler/http/posting"
	"engjobs/internal/handler/http/requestid"
	hsource "engjobs/internal/handler/http/source"

	pkgconfig "engjobs/pkg/config"
)

func main() {
	// Optional .env for local development; ignored when absent
	_ = godotenv.Load()

	logger := logging.NewLogger()
	slog.SetDefault(logger)

	database := initDatabase(logger)
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	version := getVersion()
	handler := setupServer(logger, database, version)

	runServer(logger, handler, version)
}

// initDatabase opens the database connection and waits for the worker to
// apply migrations. The API never migrates on its own so the two processes
// cannot race on the schema.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	waitForMigrations(logger, database)
	return database
}

func waitForMigrations(logger *slog.Logger, database *sql.DB) {
	const probe = "SELECT 1 FROM postings LIMIT 1"
	for i := 0; i < 10; i++ {
		if _, err := database.Exec(probe); err == nil {
			return
		}
		logger.Info("waiting for migrations, retrying in 3s", slog.Int("attempt", i+1))
		time.Sleep(3 * time.Second)
	}
	logger.Error("migrations did not complete in time")
	os.Exit(1)
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	version := os.Getenv("VERSION")
	if version == "" {
		version = "dev"
	}
	return version
}

// setupServer configures and returns the HTTP handler with all routes and middleware.
func setupServer(logger *slog.Logger, database *sql.DB, version string) http.Handler {
	breaker := circuitbreaker.NewDBCircuitBreaker(database)
	repo := postgres.NewPostingRepo(breaker)

	registry, err := config.LoadSources(os.Getenv("SOURCES_PATH"))
	if err != nil {
		logger.Error("failed to load source registry", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("source registry loaded", slog.Int("sources", len(registry.All())))

	ingestSvc, publishSvc := setupPipeline(logger, repo, registry)

	rootMux := setupRoutes(database, version, repo, registry, ingestSvc, publishSvc)
	return applyMiddleware(logger, rootMux)
}

// setupPipeline wires the ingest and publish services behind the manual
// ingest trigger. The API publishes without notification channels; webhook
// announcements are the worker's job, so a manual run cannot double-post.
func setupPipeline(logger *slog.Logger, repo repository.PostingRepository, registry *config.Registry) (*ingest.Service, *publish.Service) {
	fallbackDays := pkgconfig.GetEnvInt("DATE_FALLBACK_DAYS", dateparse.DefaultFallbackDays)
	maxPostings := pkgconfig.GetEnvInt("MAX_POSTINGS", ingest.DefaultMaxPostings)

	dates := dateparse.New(fallbackDays)
	factory := feed.NewFetcherFactory(createHTTPClient(), mdtable.NewParser(dates))

	ingestSvc := ingest.NewService(registry, factory.CreateFetchers(), ingest.NewNormalizer(dates), maxPostings)
	publishSvc := publish.NewService(repo, notify.NewService(nil, 1), logger)
	return ingestSvc, publishSvc
}

// createHTTPClient creates an HTTP client for fetching upstream sources.
// TLS 1.2+ is enforced for security.
func createHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12, // Enforce TLS 1.2+
			},
		},
	}
}

// setupRoutes registers all HTTP routes.
func setupRoutes(
	database *sql.DB,
	version string,
	repo repository.PostingRepository,
	registry *config.Registry,
	ingestSvc *ingest.Service,
	publishSvc *publish.Service,
) *http.ServeMux {
	// レート制限: 手動取り込みは1分間に5リクエストまで
	ingestLimiter := hhttp.NewRateLimiter(5, 1*time.Minute)

	mux := http.NewServeMux()

	// ヘルスチェックエンドポイント
	mux.Handle("GET /health", &hhttp.HealthHandler{DB: database, Version: version})
	mux.Handle("GET /ready", &hhttp.ReadyHandler{DB: database})
	mux.Handle("GET /live", &hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	hposting.Register(mux, repo)
	hsource.Register(mux, registry)
	hingestion.Register(mux, ingestSvc, publishSvc, ingestLimiter)

	return mux
}

// applyMiddleware wraps the handler with the middleware chain.
// Order: Request ID → Recovery → Logging → Body Limit → Timeout → Input Validation → Metrics
func applyMiddleware(logger *slog.Logger, handler http.Handler) http.Handler {
	requestTimeout := pkgconfig.GetEnvDuration("REQUEST_TIMEOUT", 30*time.Second)

	// Apply in reverse order (innermost to outermost)
	chain := hhttp.MetricsMiddleware(handler)
	chain = hhttp.InputValidation()(chain)
	chain = hhttp.Timeout(requestTimeout)(chain)
	chain = hhttp.LimitRequestBody(1 << 20)(chain) // 1MB limit
	chain = hhttp.Logging(logger)(chain)
	chain = hhttp.Recover(logger)(chain)
	chain = requestid.Middleware(chain)

	return chain
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(logger *slog.Logger, handler http.Handler, version string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	addr := pkgconfig.GetEnvString("API_ADDR", ":8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
