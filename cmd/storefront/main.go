package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"rentacar/internal/api"
	"rentacar/internal/audit"
	"rentacar/internal/auth"
	"rentacar/internal/booking"
	"rentacar/internal/config"
	"rentacar/internal/database"
	"rentacar/internal/events"
	"rentacar/internal/fleet"
	"rentacar/internal/google"
	"rentacar/internal/metrics"
	"rentacar/internal/notify"
	"rentacar/internal/queue"
	"rentacar/internal/scheduler"
	"rentacar/internal/service"
)

func main() {
	output := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	logger := zerolog.New(output).With().Timestamp().Logger()

	cfg, err := config.Load("")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Auth.JWTSecret == "" {
		logger.Fatal().Msg("set auth.jwt_secret in config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDB(ctx, cfg.Database.Path, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("open db error")
	}
	defer db.Close()

	var rdb *redis.Client
	if cfg.Redis.Address != "" && cfg.Redis.CacheTTLSeconds > 0 {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Address, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
	}
	cache := fleet.NewCachedSource(db, rdb, cfg.CacheTTL())

	err = config.WatchFleet(ctx, cfg.Fleet.Path, cfg.FleetWatchInterval(), &logger, func(fc *config.FleetConfig) {
		if err := db.SyncFleet(ctx, fc.Models()); err != nil {
			logger.Error().Err(err).Msg("fleet sync failed")
			return
		}
		if err := cache.Invalidate(ctx); err != nil {
			logger.Warn().Err(err).Msg("fleet cache invalidation failed")
		}
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("load fleet config")
	}

	bus := events.NewEventBus(&logger)
	notifier := subscribeNotifier(cfg, bus, &logger)

	if cfg.AMQP.Enabled {
		publisher, err := queue.Dial(cfg.AMQP.URL, cfg.AMQP.Queue, &logger)
		if err != nil {
			logger.Error().Err(err).Msg("amqp disabled: broker unavailable")
		} else {
			defer publisher.Close()
			publisher.Subscribe(bus)
		}
	}

	if cfg.Google.Enabled {
		sheets, err := google.NewSheetsService(ctx, cfg.Google.CredentialsFile, cfg.Google.SpreadsheetID, cfg.Google.SheetName, &logger)
		if err != nil {
			logger.Error().Err(err).Msg("sheets mirror disabled")
		} else {
			sheets.Subscribe(bus)
		}
	}

	sessions := booking.NewSessionStore(cfg.SessionTimeout(), time.Now)
	reservations := service.NewReservationService(db, bus, &logger)
	exporter := audit.NewExporter(db, audit.NewExcelizeWriter, &logger)

	sched := scheduler.New(&logger)
	registerJobs(cfg, sched, db, sessions, exporter, notifier, &logger)
	sched.Start()
	defer sched.Stop()

	if cfg.Monitoring.HealthCheckPort == 0 {
		cfg.Monitoring.HealthCheckPort = 8081
	}
	go startHealthServer(ctx, cfg.Monitoring.HealthCheckPort, db, rdb, &logger)

	if cfg.Monitoring.PrometheusEnabled {
		if cfg.Monitoring.PrometheusPort == 0 {
			cfg.Monitoring.PrometheusPort = 9090
		}
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, &logger)
	}

	srv := api.NewServer(
		api.Config{
			AllowedOrigins:     cfg.HTTP.AllowedOrigins,
			AdminAPIKey:        cfg.Auth.AdminAPIKey,
			RateLimitPerMinute: cfg.HTTP.RateLimitPerMinute,
			RateLimitBurst:     cfg.HTTP.RateLimitBurst,
		},
		sessions,
		fleet.NewBrowser(cache, &logger),
		reservations,
		exporter,
		auth.NewTokenManager(cfg.Auth.JWTSecret),
		&logger,
	)

	httpServer := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      srv.Routes(),
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctxShutdown); err != nil {
			logger.Error().Err(err).Msg("shutdown error")
		}
	}()

	logger.Info().Str("addr", httpServer.Addr).Msg("Storefront API started")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("http server error")
	}
	logger.Info().Msg("Storefront API stopped")
}

func subscribeNotifier(cfg *config.Config, bus *events.EventBus, logger *zerolog.Logger) *notify.Notifier {
	var channels []notify.Channel

	if cfg.Telegram.Enabled {
		bot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
		if err != nil {
			logger.Error().Err(err).Msg("telegram notifications disabled")
		} else {
			bot.Debug = cfg.Telegram.Debug
			channels = append(channels, notify.NewTelegram(bot, cfg.Telegram.ChatID))
		}
	}
	if cfg.Email.Enabled {
		channels = append(channels, notify.NewSendGridEmail(
			cfg.Email.APIKey, cfg.Email.FromAddress, cfg.Email.FromName, cfg.Email.AdminAddress,
		))
	}
	if len(channels) == 0 {
		return nil
	}

	notifier := notify.NewNotifier(channels, 20, notify.DefaultRetryConfig(), logger)
	notifier.Subscribe(bus)
	return notifier
}

func registerJobs(
	cfg *config.Config,
	sched *scheduler.Scheduler,
	db *database.DB,
	sessions *booking.SessionStore,
	exporter *audit.Exporter,
	notifier *notify.Notifier,
	logger *zerolog.Logger,
) {
	logErr := func(err error) {
		if err != nil {
			logger.Error().Err(err).Msg("failed to register cron job")
		}
	}

	logErr(sched.Add(scheduler.JobSessionCleanup, cfg.Sessions.CleanupSchedule, scheduler.SessionCleanupJob(sessions)))
	if cfg.Backup.Enabled {
		backup := database.NewBackupService(db, cfg.Backup, logger)
		logErr(sched.Add(scheduler.JobBackup, cfg.Backup.Schedule, scheduler.BackupJob(backup)))
	}
	if cfg.Export.Enabled {
		logErr(sched.Add(scheduler.JobMonthlyExport, cfg.Export.Schedule,
			scheduler.MonthlyExportJob(exporter, cfg.Export.Path, time.Now)))
	}
	if cfg.Reminders.Enabled && notifier != nil {
		logErr(sched.Add(scheduler.JobPickupReminder, cfg.Reminders.Schedule,
			scheduler.PickupReminderJob(db, notifier, time.Now)))
	}
}

func startHealthServer(ctx context.Context, port int, db *database.DB, rdb *redis.Client, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ctxPing, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := db.PingContext(ctxPing); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctxPing).Err(); err != nil {
				http.Error(w, "redis not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	serve(ctx, port, mux, "health", logger)
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	serve(ctx, port, mux, "metrics", logger)
}

func serve(ctx context.Context, port int, handler http.Handler, name string, logger *zerolog.Logger) {
	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: handler, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Str("server", name).Msg("server error")
	}
}
