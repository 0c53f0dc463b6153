package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"engjobs/internal/config"
	"engjobs/internal/handler/http/respond"
	"engjobs/internal/infra/adapter/persistence/postgres"
	"engjobs/internal/infra/db"
	"engjobs/internal/infra/feed"
	"engjobs/internal/infra/notifier"
	workerPkg "engjobs/internal/infra/worker"
	"engjobs/internal/observability/logging"
	obsmetrics "engjobs/internal/observability/metrics"
	"engjobs/internal/parse/dateparse"
	"engjobs/internal/parse/mdtable"
	"engjobs/internal/repository"
	"engjobs/internal/resilience/circuitbreaker"
	"engjobs/internal/usecase/ingest"
	"engjobs/internal/usecase/notify"
	"engjobs/internal/usecase/publish"
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

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load worker configuration (fail-open strategy)
	workerMetrics := workerPkg.NewWorkerMetrics()
	workerMetrics.MustRegister()
	workerConfig, err := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err != nil {
		logger.Error("failed to load worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", workerConfig.CronSchedule),
		slog.String("timezone", workerConfig.Timezone),
		slog.Int("ingest_days", workerConfig.IngestDays),
		slog.Int("max_postings", workerConfig.MaxPostings),
		slog.Duration("ingest_timeout", workerConfig.IngestTimeout),
		slog.Int("health_port", workerConfig.HealthPort))

	// Initialize Discord notification channel
	discordConfig := loadDiscordConfig(logger)
	var discordChannel notify.Channel
	if discordConfig.Enabled {
		discordChannel = notify.NewDiscordChannel(discordConfig)
		logger.Info("Discord channel initialized", slog.String("status", "enabled"))
	} else {
		logger.Info("Discord channel disabled")
	}

	// Initialize Slack notification channel
	slackConfig := loadSlackConfig(logger)
	var slackChannel notify.Channel
	if slackConfig.Enabled {
		slackChannel = notify.NewSlackChannel(slackConfig)
		logger.Info("Slack channel initialized", slog.String("status", "enabled"))
	} else {
		logger.Info("Slack channel disabled")
	}

	var channels []notify.Channel
	if discordChannel != nil {
		channels = append(channels, discordChannel)
	}
	if slackChannel != nil {
		channels = append(channels, slackChannel)
	}

	notifyService := notify.NewService(channels, workerConfig.NotifyMaxConcurrent)
	logger.Info("notification service initialized",
		slog.Int("channels", len(channels)),
		slog.Int("max_concurrent", workerConfig.NotifyMaxConcurrent))

	// Start metrics HTTP server
	startMetricsServer(ctx, logger, notifyService)

	// Start health check server
	healthAddr := fmt.Sprintf(":%d", workerConfig.HealthPort)
	healthServer := workerPkg.NewHealthServer(healthAddr, logger)
	go func() {
		if err := healthServer.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("health server failed", slog.Any("error", err))
		}
	}()
	logger.Info("health check server started", slog.String("addr", healthAddr))

	// Report connection pool stats to Prometheus
	go db.ReportPoolStats(ctx, database, time.Minute)

	ingestSvc, publishSvc, repo := setupPipeline(logger, database, notifyService, workerConfig)

	runCronWorker(ctx, logger, ingestSvc, publishSvc, repo, notifyService, workerConfig, workerMetrics, healthServer)
}

// initDatabase opens the database connection and runs migrations.
// The worker owns the schema; the API process waits for it.
func initDatabase(logger *slog.Logger) *sql.DB {
	database := db.Open()
	if err := db.MigrateUp(database); err != nil {
		logger.Error("failed to migrate database", slog.Any("error", err))
		os.Exit(1)
	}
	return database
}

// setupPipeline wires the ingest and publish services with all dependencies.
func setupPipeline(logger *slog.Logger, database *sql.DB, notifyService notify.Service, cfg *workerPkg.WorkerConfig) (*ingest.Service, *publish.Service, repository.PostingRepository) {
	breaker := circuitbreaker.NewDBCircuitBreaker(database)
	repo := postgres.NewPostingRepo(breaker)

	registry, err := config.LoadSources(cfg.SourcesPath)
	if err != nil {
		logger.Error("failed to load source registry", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("source registry loaded", slog.Int("sources", len(registry.All())))
	obsmetrics.UpdateSourcesTotal(len(registry.All()))

	dates := dateparse.New(cfg.DateFallbackDays)
	factory := feed.NewFetcherFactory(createHTTPClient(), mdtable.NewParser(dates))

	ingestSvc := ingest.NewService(registry, factory.CreateFetchers(), ingest.NewNormalizer(dates), cfg.MaxPostings)
	publishSvc := publish.NewService(repo, notifyService, logger)
	return ingestSvc, publishSvc, repo
}

// createHTTPClient creates an HTTP client with timeouts and connection pooling.
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

// loadDiscordConfig loads Discord configuration from environment variables.
//
// Environment variables:
//   - DISCORD_ENABLED: Boolean flag to enable Discord notifications (default: false)
//   - DISCORD_WEBHOOK_URL: Discord webhook URL (required if enabled)
func loadDiscordConfig(logger *slog.Logger) notifier.DiscordConfig {
	enabled := os.Getenv("DISCORD_ENABLED") == "true"
	webhookURL := os.Getenv("DISCORD_WEBHOOK_URL")

	if !enabled {
		return notifier.DiscordConfig{Enabled: false}
	}

	// Validate webhook URL format
	if webhookURL == "" {
		logger.Warn("Discord webhook URL is empty, disabling notifications")
		return notifier.DiscordConfig{Enabled: false}
	}

	u, err := url.Parse(webhookURL)
	if err != nil {
		logger.Warn("Invalid Discord webhook URL format, disabling notifications", slog.Any("error", err))
		return notifier.DiscordConfig{Enabled: false}
	}

	if u.Scheme != "https" {
		logger.Warn("Discord webhook URL must use HTTPS, disabling notifications")
		return notifier.DiscordConfig{Enabled: false}
	}

	if u.Host != "discord.com" {
		logger.Warn("Invalid Discord webhook host, disabling notifications", slog.String("host", u.Host))
		return notifier.DiscordConfig{Enabled: false}
	}

	if !strings.HasPrefix(u.Path, "/api/webhooks/") {
		logger.Warn("Invalid Discord webhook path, disabling notifications", slog.String("path", u.Path))
		return notifier.DiscordConfig{Enabled: false}
	}

	return notifier.DiscordConfig{
		Enabled:    true,
		WebhookURL: webhookURL,
		Timeout:    30 * time.Second,
	}
}

// loadSlackConfig loads Slack configuration from environment variables.
//
// Environment variables:
//   - SLACK_ENABLED: Boolean flag to enable Slack notifications (default: false)
//   - SLACK_WEBHOOK_URL: Slack Incoming Webhook URL (required if enabled)
func loadSlackConfig(logger *slog.Logger) notifier.SlackConfig {
	enabled := os.Getenv("SLACK_ENABLED") == "true"
	webhookURL := os.Getenv("SLACK_WEBHOOK_URL")

	if !enabled {
		return notifier.SlackConfig{Enabled: false}
	}

	// Validate webhook URL format
	if webhookURL == "" {
		logger.Warn("Slack webhook URL is empty, disabling notifications")
		return notifier.SlackConfig{Enabled: false}
	}

	u, err := url.Parse(webhookURL)
	if err != nil {
		logger.Warn("Invalid Slack webhook URL format, disabling notifications", slog.Any("error", err))
		return notifier.SlackConfig{Enabled: false}
	}

	if u.Scheme != "https" {
		logger.Warn("Slack webhook URL must use HTTPS, disabling notifications")
		return notifier.SlackConfig{Enabled: false}
	}

	if u.Host != "hooks.slack.com" {
		logger.Warn("Invalid Slack webhook host, disabling notifications", slog.String("host", u.Host))
		return notifier.SlackConfig{Enabled: false}
	}

	if !strings.HasPrefix(u.Path, "/services/") {
		logger.Warn("Invalid Slack webhook path, disabling notifications", slog.String("path", u.Path))
		return notifier.SlackConfig{Enabled: false}
	}

	return notifier.SlackConfig{
		Enabled:    true,
		WebhookURL: webhookURL,
		Timeout:    30 * time.Second,
	}
}

// runCronWorker starts the cron scheduler, runs one ingest immediately, and
// blocks until a termination signal arrives.
func runCronWorker(
	ctx context.Context,
	logger *slog.Logger,
	ingestSvc *ingest.Service,
	publishSvc *publish.Service,
	repo repository.PostingRepository,
	notifyService notify.Service,
	cfg *workerPkg.WorkerConfig,
	metrics *workerPkg.WorkerMetrics,
	healthServer *workerPkg.HealthServer,
) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Error("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone), slog.Any("error", err))
		loc = time.UTC
	}
	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.CronSchedule, func() {
		runIngestJob(logger, ingestSvc, publishSvc, repo, cfg, metrics)
	})
	if err != nil {
		logger.Error("failed to add cron job", slog.Any("error", err))
		os.Exit(1)
	}
	c.Start()

	// Mark as ready after cron is set up
	healthServer.SetReady(true)
	logger.Info("worker started", slog.String("schedule", cfg.CronSchedule), slog.String("timezone", cfg.Timezone))

	// First run happens immediately so a fresh deployment does not sit idle
	// until the next cron tick.
	go runIngestJob(logger, ingestSvc, publishSvc, repo, cfg, metrics)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down worker...")
	healthServer.SetReady(false)

	// Let a running job finish before stopping
	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(cfg.IngestTimeout):
		logger.Warn("cron jobs did not finish before shutdown timeout")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := notifyService.Shutdown(shutdownCtx); err != nil {
		logger.Error("notification service shutdown failed", slog.Any("error", err))
	}
	logger.Info("worker stopped")
}

// runIngestJob executes a single ingest-and-publish run with timeout and
// error handling.
func runIngestJob(logger *slog.Logger, ingestSvc *ingest.Service, publishSvc *publish.Service, repo repository.PostingRepository, cfg *workerPkg.WorkerConfig, metrics *workerPkg.WorkerMetrics) {
	startTime := time.Now()
	metrics.RecordJobRun("started")
	logger.Info("ingest run started")

	// 実行タイムアウト（設定から取得）
	ctx, cancel := context.WithTimeout(context.Background(), cfg.IngestTimeout)
	defer cancel()

	postings, stats, err := ingestSvc.Run(ctx, cfg.IngestDays)
	if err != nil {
		// 機密情報をマスクしてログ出力
		logger.Error("ingest run failed", slog.Any("error", respond.SanitizeError(err)))
		metrics.RecordJobRun("failure")
		metrics.RecordJobDuration(time.Since(startTime).Seconds())
		return
	}

	pubStats, err := publishSvc.PublishNew(ctx, postings)
	if err != nil {
		logger.Error("publish failed", slog.Any("error", respond.SanitizeError(err)))
		metrics.RecordJobRun("failure")
		metrics.RecordJobDuration(time.Since(startTime).Seconds())
		return
	}

	// Record metrics
	metrics.RecordJobRun("success")
	metrics.RecordJobDuration(time.Since(startTime).Seconds())
	metrics.RecordSourcesProcessed(stats.Sources)
	metrics.RecordPostingsStored(pubStats.Inserted)
	metrics.RecordLastSuccess()

	if storeStats, statsErr := repo.Stats(ctx); statsErr == nil {
		obsmetrics.UpdatePostingsTotal(int(storeStats.Total))
	}

	logger.Info("ingest run completed",
		slog.Int("sources", stats.Sources),
		slog.Int64("sources_failed", stats.SourcesFailed),
		slog.Int64("raw_items", stats.RawItems),
		slog.Int64("too_old", stats.TooOld),
		slog.Int64("duplicated", stats.Duplicated),
		slog.Int("postings", stats.Postings),
		slog.Int("inserted", pubStats.Inserted),
		slog.Int("duplicates", pubStats.Duplicates),
		slog.Int("failed", pubStats.Failed),
		slog.Duration("duration", time.Since(startTime)),
	)
}
