package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"geoguard/internal/app"
	"geoguard/internal/domain/menu"
	"geoguard/internal/domain/observation"
	"geoguard/internal/domain/report"
	"geoguard/internal/domain/zone"
	"geoguard/internal/infra/cache"
	"geoguard/internal/infra/config"
	idb "geoguard/internal/infra/database"
	"geoguard/internal/infra/httpapi"
	"geoguard/internal/infra/logger"
	"geoguard/internal/infra/observability"
	"geoguard/internal/infra/openweather"
	"geoguard/internal/infra/scheduler"
	"geoguard/internal/infra/telegram"
	"geoguard/internal/infra/vision"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func main() {
	fmt.Println("GeoGuard Kenya starting...")

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("FATAL: Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"log_level":   cfg.LogLevel,
		"environment": cfg.Environment,
		"timezone":    cfg.Location.String(),
	}).Info("Configuration loaded")

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// A menu that points at an unknown zone must never reach a caller.
	catalog, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		var integrity *menu.ConfigIntegrityError
		if errors.As(err, &integrity) {
			for _, p := range integrity.Problems {
				mainLogger.WithField("problem", p).Error("Catalog integrity problem")
			}
		}
		mainLogger.WithError(err).Fatal("Could not load zone catalog")
	}
	mainLogger.WithField("zones", catalog.Registry.Len()).Info("Zone catalog loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize Database Connection
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	if err := idb.EnsureSchema(ctx, db); err != nil {
		mainLogger.WithError(err).Fatal("Could not prepare database schema")
	}
	mainLogger.Info("Database connection established successfully")

	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	// Initialize Repositories
	var observations observation.Repository = idb.NewPostgresObservationRepository(db)
	if cfg.RedisAddr != "" {
		redisClient, err := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not connect to Redis")
		}
		defer redisClient.Close()
		observations = cache.NewObservationCache(redisClient, observations, cfg.ObservationCacheTTL, metrics, logger.Component("observation_cache"))
		mainLogger.WithField("ttl", cfg.ObservationCacheTTL).Info("Observation cache enabled")
	}
	var reports report.Repository
	if cfg.PersistReports {
		reports = idb.NewPostgresReportRepository(db)
		mainLogger.Info("Sign reports will be persisted")
	}

	// Initialize Services
	forecasts := app.NewForecastService(observations, cfg.ObservationTimeout, metrics, logger.Component("forecast_service"))
	sessions := app.NewSessionService(catalog.Resolver, catalog.Registry, forecasts, reports, clock, cfg.Location, metrics, logger.Component("session_service"))

	var analyzer app.ImageAnalyzer
	if cfg.GeminiAPIKey != "" {
		gemini, err := vision.NewGeminiAnalyzer(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not create Gemini client")
		}
		defer gemini.Close()
		analyzer = gemini
		mainLogger.WithField("model", cfg.GeminiModel).Info("Image analysis enabled")
	} else {
		mainLogger.Warn("GEMINI_API_KEY not set, photo analysis disabled")
	}

	chat, err := app.NewChatService(catalog.Registry, catalog.Glossary, forecasts, analyzer, zone.ID(cfg.ChatDefaultZone), cfg.Location, metrics, logger.Component("chat_service"))
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not create chat service")
	}

	// Initialize Telegram Bot
	var bot *telebot.Bot
	var notifier app.AlertNotifier
	if cfg.TelegramToken != "" {
		botLogger := logger.Component("telegram")
		pref := telebot.Settings{
			Token:  cfg.TelegramToken,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c telebot.Context) { // Global error handler
				logCtx := botLogger.WithError(err)
				if c != nil && c.Sender() != nil && c.Chat() != nil {
					logCtx = logCtx.WithFields(logrus.Fields{"sender_id": c.Sender().ID, "chat_id": c.Chat().ID})
				}
				logCtx.Error("Telegram handler failed")
			},
		}
		bot, err = telebot.NewBot(pref)
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not create Telegram bot")
		}
		if cfg.TelegramAlertChatID != 0 {
			notifier = app.NewAlertService(telegram.NewTelebotAdapter(bot), cfg.TelegramAlertChatID, metrics, logger.Component("alert_service"))
			mainLogger.WithField("chat_id", cfg.TelegramAlertChatID).Info("Alert broadcasts enabled")
		}
	}

	weather := openweather.NewClient(cfg.OpenWeatherAPIKey, cfg.OpenWeatherBaseURL, 10*time.Second)
	refresher := app.NewRefreshService(catalog.Registry, weather, observations, notifier, clock, metrics, logger.Component("refresh_service"))

	if bot != nil {
		botLogger := logger.Component("telegram")
		telegram.RegisterBotCommands(ctx, bot, chat, botLogger)
		telegram.RegisterAdminHandlers(ctx, bot, refresher, catalog.Registry, cfg.TelegramAdminID, botLogger)
		telegram.RegisterMessageHandlers(ctx, bot, chat, botLogger)
		mainLogger.Info("Telegram handlers registered")
	}

	// Initialize WeatherScheduler
	var weatherScheduler *scheduler.WeatherScheduler
	if cfg.OpenWeatherAPIKey != "" {
		weatherScheduler = scheduler.NewWeatherScheduler(
			refresher,
			logger.Component("scheduler"),
			cfg.CronSpecWeatherRefresh,
			cfg.RefreshTimeout,
			cfg.Location,
			true,
		)
		if err := weatherScheduler.Start(); err != nil {
			mainLogger.WithError(err).Fatal("Could not start weather scheduler")
		}
	} else {
		mainLogger.Warn("OPENWEATHER_API_KEY not set, weather refresh disabled")
	}

	media := vision.NewMediaFetcher(cfg.TwilioAccountSID, cfg.TwilioAuthToken, 20*time.Second)
	server := httpapi.NewServer(cfg.HTTPAddr, idb.NewReadiness(db), logger.Component("http"),
		httpapi.NewUSSDHandler(sessions),
		httpapi.NewWhatsAppHandler(chat, media, logger.Component("whatsapp")),
	)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Start bot in a goroutine so it doesn't block graceful shutdown handling
	if bot != nil {
		go bot.Start()
	}

	mainLogger.Info("Application setup complete")

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		mainLogger.WithError(err).Error("HTTP server failed")
	}

	mainLogger.Info("Shutting down application...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		mainLogger.WithError(err).Error("HTTP server shutdown incomplete")
	}
	if bot != nil {
		bot.Stop()
	}
	if weatherScheduler != nil {
		weatherScheduler.Stop()
	}
	mainLogger.Info("Application shut down gracefully")
}
