package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jordanlanch/outreach/config"
	"github.com/jordanlanch/outreach/pkg/agent"
	"github.com/jordanlanch/outreach/pkg/api/handlers"
	"github.com/jordanlanch/outreach/pkg/billing"
	"github.com/jordanlanch/outreach/pkg/cache"
	"github.com/jordanlanch/outreach/pkg/campaign"
	"github.com/jordanlanch/outreach/pkg/comms"
	"github.com/jordanlanch/outreach/pkg/crm"
	"github.com/jordanlanch/outreach/pkg/export"
	"github.com/jordanlanch/outreach/pkg/jobs"
	"github.com/jordanlanch/outreach/pkg/leads"
	"github.com/jordanlanch/outreach/pkg/logger"
	"github.com/jordanlanch/outreach/pkg/metrics"
	custommiddleware "github.com/jordanlanch/outreach/pkg/middleware"
	"github.com/jordanlanch/outreach/pkg/platform"
	"github.com/jordanlanch/outreach/pkg/telephony"
)

func main() {
	cfg := config.Load()
	appLog := logger.New(cfg.LogLevel, cfg.LogFormat)
	appLog.Info("configuration loaded", "environment", cfg.APIEnvironment)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.SentryEnvironment,
			TracesSampleRate: 1.0,
			AttachStacktrace: true,
		})
		if err != nil {
			appLog.Warn("failed to initialize sentry", "error", err)
		} else {
			appLog.Info("sentry initialized", "environment", cfg.SentryEnvironment)
			defer sentry.Flush(2 * time.Second)
		}
	} else {
		appLog.Info("sentry disabled, no DSN configured")
	}

	// Redis is optional; without it the activity feed is memory only
	var redisClient *cache.Client
	if cfg.RedisURL != "" {
		var err error
		redisClient, err = cache.NewClient(cfg.RedisURL)
		if err != nil {
			appLog.Warn("redis unavailable, activity feed will not persist", "error", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	// Platform state (profile + subscription quota)
	platformManager, err := platform.NewManager(cfg.PlatformDataFile, appLog)
	if err != nil {
		log.Fatalf("failed to load platform state: %v", err)
	}

	// Lead store and exports
	leadStore := leads.NewStore(appLog)
	exportService := export.NewService(leadStore, cfg.ExportPath, appLog)

	// CRM: demo mode backed by the shared activity feed
	activityLog := crm.NewActivityLog(redisClient, appLog)
	crmClient := crm.NewSimulatedClient(activityLog)

	// Telephony: real Vonage when configured, simulation otherwise
	var callProvider telephony.CallProvider
	vonage := telephony.NewVonageProvider(telephony.VonageConfig{
		APIKey:        cfg.VonageAPIKey,
		APISecret:     cfg.VonageAPISecret,
		ApplicationID: cfg.VonageApplicationID,
		FromNumber:    cfg.VonageFromNumber,
	}, appLog)
	if vonage.Configured() {
		appLog.Info("vonage telephony enabled")
		callProvider = vonage
	} else {
		appLog.Info("vonage not configured, using simulated calls")
		callProvider = telephony.NewSimulatedProvider(appLog)
	}

	// Outbound comms
	var emailProvider comms.EmailProvider
	if cfg.SendGridAPIKey != "" {
		emailProvider = comms.NewSendGridEmailProvider(cfg.SendGridAPIKey, cfg.EmailFrom, cfg.EmailFromName)
	}
	orchestrator := comms.NewOrchestrator(nil, emailProvider, nil, cfg.VonageFromNumber, appLog)

	// Prometheus metrics
	prometheusMetrics := metrics.New()

	// Campaign dialer
	campaignService := campaign.NewService(
		callProvider,
		crmClient,
		nil,
		platformManager,
		prometheusMetrics,
		campaign.Config{
			Pacing:      campaign.Pacing{Unit: cfg.PacingUnit},
			CallTimeout: cfg.CallTimeout,
			NCCO: telephony.NCCOConfig{
				EventURL:  cfg.AppURL + "/api/webhooks/vonage/events",
				SocketURL: cfg.WSURL + "/ws/audio",
			},
		},
		appLog,
	)

	// AI agent
	agentEngine := agent.NewEngine(cfg.OpenAIAPIKey, agent.Config{
		Model:       cfg.OpenAIModel,
		Temperature: float32(cfg.OpenAITemperature),
		MaxTokens:   cfg.OpenAIMaxTokens,
	}, platformManager, orchestrator, crmClient, leadStore, prometheusMetrics, appLog)

	// Billing
	billingService := billing.NewService(platformManager, billing.Config{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		PricePremium:  cfg.StripePricePremium,
		SuccessURL:    cfg.StripeSuccessURL,
		CancelURL:     cfg.StripeCancelURL,
	}, appLog)

	// Scheduled maintenance
	cronManager := jobs.NewCronManager(platformManager, leadStore, appLog)
	if err := cronManager.SetupJobs(); err != nil {
		log.Fatalf("failed to set up cron jobs: %v", err)
	}
	cronManager.Start()

	// Echo
	e := echo.New()
	e.HideBanner = true

	globalRateLimiter := custommiddleware.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	webhookRateLimiter := custommiddleware.NewRateLimiter(100, 20)

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			appLog.Info("request", "method", c.Request().Method, "uri", v.URI, "status", v.Status)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	}
	e.Use(prometheusMetrics.Middleware())
	e.Use(middleware.CORSWithConfig(custommiddleware.CORSConfig()))
	e.Use(middleware.Gzip())
	e.Use(middleware.Secure())
	e.Use(globalRateLimiter.Middleware())

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]any{
			"name":        "Outreach API",
			"version":     "0.1.0",
			"status":      "running",
			"environment": cfg.APIEnvironment,
			"timestamp":   time.Now().Unix(),
		})
	})

	e.GET("/health", func(c echo.Context) error {
		cacheStatus := "disabled"
		if redisClient != nil {
			cacheStatus = "up"
			if _, err := redisClient.Redis.Ping(c.Request().Context()).Result(); err != nil {
				cacheStatus = "down"
			}
		}
		return c.JSON(http.StatusOK, map[string]any{
			"status": "healthy",
			"cache":  cacheStatus,
		})
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Handlers
	campaignHandler := handlers.NewCampaignHandler(campaignService)
	chatHandler := handlers.NewChatHandler(agentEngine)
	leadHandler := handlers.NewLeadHandler(leadStore, exportService, cfg.DefaultRegion)
	platformHandler := handlers.NewPlatformHandler(platformManager, billingService)
	dashboardHandler := handlers.NewDashboardHandler(crmClient, activityLog)

	api := e.Group("/api")

	api.POST("/campaign/load", campaignHandler.LoadCSV)
	api.POST("/campaign/load-crm", campaignHandler.LoadFromCRM)
	api.POST("/campaign/start", campaignHandler.Start)
	api.POST("/campaign/stop", campaignHandler.Stop)
	api.GET("/campaign/status", campaignHandler.Status)

	api.POST("/chat", chatHandler.Chat)

	api.GET("/leads", leadHandler.List)
	api.POST("/leads", leadHandler.Save)
	api.GET("/leads/export", leadHandler.Export)
	api.POST("/leads/import", leadHandler.Import)
	api.GET("/leads/:id", leadHandler.Get)
	api.DELETE("/leads/:id", leadHandler.Delete)
	api.GET("/leads/:id/history", leadHandler.History)

	api.GET("/platform/profile", platformHandler.GetProfile)
	api.PUT("/platform/profile", platformHandler.UpdateProfile)
	api.GET("/platform/subscription", platformHandler.GetSubscription)
	api.POST("/platform/upgrade", platformHandler.Upgrade)
	api.POST("/platform/reset-usage", platformHandler.ResetUsage)

	api.POST("/webhooks/stripe", platformHandler.StripeWebhook, webhookRateLimiter.Middleware())

	api.GET("/dashboard/stats", dashboardHandler.Stats)
	api.GET("/dashboard/activity", dashboardHandler.Activity)

	address := cfg.APIHost + ":" + cfg.APIPort
	appLog.Info("outreach api starting", "address", address)

	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLog.Info("shutting down server")

	campaignService.Stop()
	cronManager.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	appLog.Info("server gracefully stopped")
}
