package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/labstack/echo/v4"

	"personapilot/docs"
	"personapilot/internal/auth"
	"personapilot/internal/cache"
	"personapilot/internal/config"
	"personapilot/internal/db"
	"personapilot/internal/handler"
	"personapilot/internal/logging"
	"personapilot/internal/model"
	"personapilot/internal/notify"
	"personapilot/internal/oauth"
	"personapilot/internal/repository"
	"personapilot/internal/router"
	"personapilot/internal/service"
)

// @title PersonaPilot Auth API
// @version 1.0
// @description Accounts, sessions, OAuth login and onboarding for PersonaPilot.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New(os.Stderr, "text", "info").Error(context.Background(), "load config", "error", err)
		os.Exit(1)
	}
	logger := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	ctx := context.Background()

	if err := cfg.Validate(); err != nil {
		fatal(logger, "invalid configuration", err)
	}
	for _, w := range cfg.Warnings() {
		logger.Warn(ctx, w)
	}

	gormDB, err := db.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		fatal(logger, "database init", err)
	}

	// Drop tables if RESET_DB environment variable is set
	if cfg.ResetDB {
		logger.Warn(ctx, "RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			logger.Warn(ctx, "drop tables failed", "error", err)
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		fatal(logger, "auto-migrate", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cacheClient.Ping(ctx); err != nil {
		logger.Warn(ctx, "redis unavailable, continuing without cache", "error", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	roleRepo := repository.NewRoleRepository(gormDB)

	// Initialize auth components
	jwtService, err := auth.NewJWTService(auth.TokenConfig{
		AccessSecret:  cfg.JWTSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	})
	if err != nil {
		fatal(logger, "token service", err)
	}
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	stateStore := auth.NewStateStore(cacheClient, cfg.OAuthStateTTL)

	// Initialize notifications
	renderer, err := notify.NewRenderer(cfg.FrontendURL)
	if err != nil {
		fatal(logger, "email templates", err)
	}
	var notifier notify.Notifier
	if cfg.SMTP.Host != "" {
		notifier = notify.NewSMTPNotifier(notify.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.User,
			Password: cfg.SMTP.Pass,
			From:     cfg.SMTP.From,
			Timeout:  cfg.NotifyTimeout,
		}, renderer)
	} else {
		notifier = notify.NewLogNotifier(renderer, logger, !cfg.IsProduction())
	}
	dispatcher := notify.NewDispatcher(notifier, logger, cfg.NotifyQueueSize, cfg.NotifyTimeout)

	// Initialize services
	authService := service.NewAuthService(service.AuthDeps{
		Users:      userRepo,
		Tokens:     jwtService,
		Hasher:     hasher,
		Notifier:   notifier,
		Background: dispatcher,
		Cache:      cacheClient,
		CacheTTL:   cfg.UserCacheTTL,
		Logger:     logger,
	})
	oauthService := service.NewOAuthService(service.OAuthDeps{
		Users:       userRepo,
		Providers:   providers(cfg),
		States:      stateStore,
		Tokens:      jwtService,
		Background:  dispatcher,
		Cache:       cacheClient,
		FrontendURL: cfg.FrontendURL,
		Logger:      logger,
	})
	onboardingService := service.NewOnboardingService(userRepo, roleRepo, cacheClient, logger)
	usageService := service.NewUsageService(userRepo, cacheClient)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}

	// Register routes
	e := echo.New()
	router.Register(e, logger, jwtService, router.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		OAuth:      handler.NewOAuthHandler(oauthService),
		Onboarding: handler.NewOnboardingHandler(onboardingService),
		Usage:      handler.NewUsageHandler(usageService),
	})

	addr := ":" + cfg.ServerPort
	go func() {
		logger.Info(ctx, "server starting", "addr", addr, "env", cfg.AppEnv, "swagger", cfg.APIURL+"/swagger/index.html")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(logger, "server start", err)
		}
	}()

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()
	logger.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "server shutdown", "error", err)
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		logger.Warn(ctx, "notification queue not drained", "error", err)
	}
	if err := cacheClient.Close(); err != nil {
		logger.Warn(ctx, "redis close", "error", err)
	}
	if err := db.Close(gormDB); err != nil {
		logger.Warn(ctx, "database close", "error", err)
	}
}

// providers registers only the providers that have client credentials.
func providers(cfg *config.Config) oauth.Registry {
	var list []oauth.Provider
	if cfg.Google.Enabled() {
		list = append(list, oauth.NewGoogle(oauthSettings(cfg, cfg.Google, model.ProviderGoogle)))
	}
	if cfg.LinkedIn.Enabled() {
		list = append(list, oauth.NewLinkedIn(oauthSettings(cfg, cfg.LinkedIn, model.ProviderLinkedIn)))
	}
	return oauth.NewRegistry(list...)
}

func oauthSettings(cfg *config.Config, client config.OAuthClient, provider model.Provider) oauth.Settings {
	callback := client.CallbackURL
	if callback == "" {
		callback = strings.TrimRight(cfg.APIURL, "/") + "/api/auth/" + string(provider) + "/callback"
	}
	return oauth.Settings{
		ClientID:     client.ClientID,
		ClientSecret: client.ClientSecret,
		CallbackURL:  callback,
		Timeout:      cfg.OAuthHTTPTimeout,
	}
}

func fatal(logger logging.Logger, msg string, err error) {
	logger.Error(context.Background(), msg, "error", err)
	os.Exit(1)
}
