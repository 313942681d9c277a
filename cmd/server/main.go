package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mshop-be/internal/admin"
	"mshop-be/internal/config"
	"mshop-be/internal/db"
	"mshop-be/internal/events"
	"mshop-be/internal/logger"
	"mshop-be/internal/middleware"
	"mshop-be/internal/order"
	"mshop-be/internal/payment"
	"mshop-be/internal/payment/webhook"
	"mshop-be/internal/product"
	"mshop-be/internal/rest"
	"mshop-be/internal/user"

	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

var (
	initDBFunc      = db.InitDB
	startServerFunc = serve
)

func main() {
	if err := run(); err != nil {
		logger.L().Fatal("server exited", zap.Error(err))
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := initDBFunc(cfg)
	defer database.Close()

	publisher := events.NewPublisher(cfg.KafkaBrokers)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.L().Warn("failed to close event publisher", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           newServer(ctx, cfg, database, publisher),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.L().Info("server starting",
		zap.String("addr", srv.Addr),
		zap.String("env", cfg.AppEnv),
		zap.Bool("events_enabled", len(cfg.KafkaBrokers) > 0),
	)
	return startServerFunc(ctx, srv)
}

func newServer(ctx context.Context, cfg *config.Config, database *sql.DB, publisher events.Publisher) http.Handler {
	tokens := user.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)
	userSvc := user.NewService(user.NewRepository(database), tokens)

	productSvc := product.NewService(product.NewRepository(database))

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, publisher, cfg.KafkaOrderTopic)

	gateway := payment.NewStripeGateway(payment.StripeConfig{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		BaseURL:       cfg.StripeAPIBase,
		Timeout:       cfg.PaymentTimeout,
	})
	paymentSvc := payment.NewService(orderRepo, gateway, payment.Options{
		Currency:  cfg.PaymentCurrency,
		Publisher: publisher,
		Topic:     cfg.KafkaPaymentTopic,
	})
	webhookHandler := webhook.NewWebhookHandler(paymentSvc, gateway, payment.NewRepository(database))

	adminSvc := admin.NewService(admin.NewRepository(database), orderRepo)

	limiter := middleware.NewRateLimiter(cfg.InternalSecretKey, rest.WebhookPath)
	go limiter.Run(ctx)

	return rest.NewRouter(rest.Router{
		Handler: rest.NewHandler(userSvc, productSvc, orderSvc, paymentSvc, adminSvc, database),
		Webhook: http.HandlerFunc(webhookHandler.PaymentWebhookHandler),
		Auth:    userSvc,
		Limiter: limiter,
	})
}

// serve runs srv until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.L().Info("shutting down", zap.Duration("timeout", shutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
