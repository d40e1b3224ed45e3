package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/SHEHROZFF/ecom-sub000/internal/domain/cart"
	"github.com/SHEHROZFF/ecom-sub000/internal/domain/checkout"
	"github.com/SHEHROZFF/ecom-sub000/internal/domain/progress"
	"github.com/SHEHROZFF/ecom-sub000/internal/gateway"
	"github.com/SHEHROZFF/ecom-sub000/internal/handler"
	"github.com/SHEHROZFF/ecom-sub000/internal/presenter"
	"github.com/SHEHROZFF/ecom-sub000/internal/storage/postgres"
	"github.com/SHEHROZFF/ecom-sub000/pkg/health"
	"github.com/SHEHROZFF/ecom-sub000/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Stores and external collaborators.
	carts := cart.NewStore()
	orderSvc := postgres.NewOrderService(pool)
	apikeyRepo := postgres.NewAPIKeyRepository(pool)
	paymentGateway := gateway.NewClient(gateway.Config{
		BaseURL:   cfg.Payment.BaseURL,
		SecretKey: cfg.Payment.SecretKey,
		Timeout:   cfg.Payment.Timeout,
	})

	// Checkout orchestration.
	orchestrator := checkout.New(checkout.Config{
		Currency:       cfg.Checkout.Currency,
		IntentTimeout:  cfg.Checkout.IntentTimeout,
		ConfirmTimeout: cfg.Checkout.ConfirmTimeout,
		SubmitTimeout:  cfg.Checkout.SubmitTimeout,
		SubmitAttempts: cfg.Checkout.SubmitAttempts,
		SubmitDelay:    cfg.Checkout.SubmitDelay,
	}, carts, paymentGateway, orderSvc, presenter.Log{})

	// Lesson progress.
	progressSvc := progress.NewService(progress.NewStore(), postgres.NewProgressRepository(pool))

	// HTTP surface: health endpoints stay unauthenticated, API routes sit
	// behind API key auth.
	h := handler.New(carts, orchestrator, progressSvc)
	apiMux := http.NewServeMux()
	h.Register(apiMux)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/api/", httpmiddleware.Wrap(apiMux,
		handler.APIKeyAuth(apikeyRepo, []byte(cfg.APIKeyPepper)),
	))

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      3 * time.Minute,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(
			otelhttp.NewHandler(mux, "ecom-api",
				otelhttp.WithTracerProvider(m.TracerProvider()),
				otelhttp.WithMeterProvider(m.MeterProvider()),
			),
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowHeaders:     []string{"Content-Type", "Authorization", "api_key"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(lg),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
