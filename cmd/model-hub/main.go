package main

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

	"model-hub/internal/adapter/gateway"
	adapterhandler "model-hub/internal/adapter/handler"
	infrasession "model-hub/internal/infrastructure/session"
	"model-hub/internal/usecase"

	"model-hub/config"
	appmiddleware "model-hub/middleware"
	"model-hub/utils/logger"
	"model-hub/utils/otel"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Handle healthcheck subcommand (for Docker healthcheck in distroless image)
	if len(os.Args) > 1 && os.Args[1] == "healthcheck" {
		if err := runHealthcheck(); err != nil {
			fmt.Fprintf(os.Stderr, "Healthcheck failed: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Local development convenience; absence of a .env file is fine.
	_ = godotenv.Load()

	// Initialize OpenTelemetry
	otelCfg := otel.ConfigFromEnv()
	otelShutdown, err := otel.InitProvider(ctx, otelCfg)
	if err != nil {
		slog.Warn("failed to initialize OpenTelemetry, continuing without tracing", "error", err)
		otelCfg.Enabled = false
		otelShutdown = func(context.Context) error { return nil }
	}

	// Initialize structured logger
	logger.Init(otelCfg.Enabled)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.InfoContext(ctx, "configuration loaded",
		"port", cfg.Port,
		"api_base_url", cfg.APIBaseURL,
		"request_timeout", cfg.RequestTimeout,
		"oauth_configured", cfg.ClientID != "" && cfg.ClientSecret != "")

	// Infrastructure
	cookieStore := infrasession.NewCookieStore(cfg.Production())
	oauthGateway := gateway.NewOAuthGateway(gateway.OAuthConfig{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURI:  cfg.RedirectURI,
		TokenURL:     cfg.TokenURL,
		AuthorizeURL: cfg.AuthorizeURL,
	}, cfg.RequestTimeout, slog.Default())
	marketplaceGateway := gateway.NewMarketplaceGateway(cfg.APIBaseURL, cfg.RequestTimeout, slog.Default())

	// Usecases
	exchangeUC := usecase.NewExchangeCode(oauthGateway, slog.Default())
	statusUC := usecase.NewCheckStatus(oauthGateway, slog.Default())
	downloadUC := usecase.NewAuthorizeDownload(marketplaceGateway, nil, slog.Default())

	// Handlers
	loginHandler := adapterhandler.NewLoginHandler(cfg.AuthorizeURL, cfg.PublicClientID, cfg.PublicRedirectURI)
	callbackHandler := adapterhandler.NewCallbackHandler(exchangeUC, cookieStore, cfg.AppRoot)
	statusHandler := adapterhandler.NewStatusHandler(statusUC, cookieStore)
	downloadHandler := adapterhandler.NewDownloadHandler(statusUC, downloadUC, cookieStore)
	healthHandler := adapterhandler.NewHealthHandler()

	// Setup Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Security middleware
	e.Use(appmiddleware.SecurityHeaders())

	// OpenTelemetry tracing
	if otelCfg.Enabled {
		e.Use(otelecho.Middleware(otelCfg.ServiceName))
	}

	// Request logging
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			rctx := c.Request().Context()
			if v.Error == nil {
				slog.InfoContext(rctx, "request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				slog.ErrorContext(rctx, "request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	}))

	e.Use(middleware.Recover())

	// Rate limiters per endpoint group, in requests per minute
	statusRL := appmiddleware.NewRateLimiter(100, 10)
	authRL := appmiddleware.NewRateLimiter(30, 5)
	downloadRL := appmiddleware.NewRateLimiter(30, 5)

	// Routes
	e.GET("/auth/login", loginHandler.Handle, authRL.Middleware())
	e.GET("/auth/callback", callbackHandler.Handle, authRL.Middleware())
	e.GET("/auth/status", statusHandler.Handle, statusRL.Middleware())
	e.GET("/api/download", downloadHandler.Handle, downloadRL.Middleware())
	e.GET("/health", healthHandler.Handle)

	// Start server with errgroup for graceful shutdown
	address := fmt.Sprintf(":%s", cfg.Port)
	slog.InfoContext(ctx, "starting model-hub server", "address", address)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := e.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return otelShutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited properly")
}

// runHealthcheck performs a health check against the local server.
func runHealthcheck() error {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8888"
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://127.0.0.1:%s/health", port))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health endpoint returned status: %d", resp.StatusCode)
	}
	return nil
}
