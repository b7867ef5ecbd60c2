// cmd/api/main.go
package main

import (
	"context"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/domain/product"
	"github.com/your-org/storefront-backend/internal/domain/promotion"
	"github.com/your-org/storefront-backend/internal/domain/review"
	"github.com/your-org/storefront-backend/internal/domain/user"
	"github.com/your-org/storefront-backend/internal/infrastructure/database"
	"github.com/your-org/storefront-backend/internal/infrastructure/database/redis"
	"github.com/your-org/storefront-backend/internal/interfaces/http"
	"github.com/your-org/storefront-backend/internal/pkg/auth"
	"github.com/your-org/storefront-backend/internal/pkg/email"
	"github.com/your-org/storefront-backend/internal/pkg/logger"
	"github.com/your-org/storefront-backend/internal/pkg/pdf"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg.Logging)
	log.Infof("🚀 Starting %s v%s in %s mode", cfg.App.Name, cfg.App.Version, cfg.App.Environment)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Mongo.ConnectTimeout+5*time.Second)
	repos, err := database.Open(ctx, cfg, log)
	cancel()
	if err != nil {
		log.Fatalf("Failed to open %s storage: %v", cfg.Database.Driver, err)
	}
	log.WithField("driver", repos.Driver).Info("✅ Storage ready")

	dependencies := []http.Dependency{{Name: "storage", Ping: repos.Ping}}
	sessions := repos.Sessions
	var rateCounter *redis.RateCounter
	var redisClient *redis.Client

	if cfg.Redis.Enabled {
		redisClient, err = redis.NewConnection(cfg, log)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		sessions = redisClient.Sessions()
		rateCounter = redisClient.RateCounter()
		dependencies = append(dependencies, http.Dependency{Name: "redis", Ping: redisClient.Ping})
	}
	if sessions == nil {
		log.Warn("⚠️ No session store configured, logout will not revoke tokens")
	}

	evaluator := promotion.NewEvaluator(nil)
	billing := payment.NewAbacatePayService(cfg, log)
	if !billing.SignaturesRequired() {
		log.Warn("⚠️ ABACATEPAY_WEBHOOK_SECRET is empty, billing webhooks are not authenticated")
	}

	carts := cart.NewService(repos.Carts, repos.Products, evaluator, log)
	services := http.Services{
		Users:    user.NewService(repos.Users, auth.NewPasswordManager(cfg), auth.NewJWTManager(cfg), sessions, log),
		Products: product.NewService(repos.Products, evaluator, log),
		Reviews:  review.NewService(repos.Reviews, repos.Products, log),
		Carts:    carts,
		Orders: order.NewService(repos.Orders, carts, billing,
			email.NewEmailService(cfg, log), pdf.NewService(cfg), evaluator, log),
		Webhooks: billing,
	}

	opts := []http.Option{http.WithDependencies(dependencies...)}
	if rateCounter != nil {
		opts = append(opts, http.WithRateCounter(rateCounter))
	}
	server := http.NewServer(cfg, log, services, opts...)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	log.Info("✅ All systems operational!")

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.Server.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"http": func(ctx context.Context) error {
				log.Info("👋 Shutting down gracefully...")
				return server.Stop(ctx)
			},
			"storage": func(ctx context.Context) error {
				return repos.Close()
			},
			"redis": func(ctx context.Context) error {
				if redisClient == nil {
					return nil
				}
				return redisClient.Close()
			},
		},
	)

	exitCode := <-wait
	log.WithField("exit_code", exitCode).Info("✅ Server shutdown completed")
	os.Exit(exitCode)
}
