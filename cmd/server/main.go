package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	httpapi "github.com/freightboard/freightboard/internal/api/http"
	appLoad "github.com/freightboard/freightboard/internal/application/load"
	appNegotiation "github.com/freightboard/freightboard/internal/application/negotiation"
	appOtp "github.com/freightboard/freightboard/internal/application/otp"
	appPricing "github.com/freightboard/freightboard/internal/application/pricing"
	appUser "github.com/freightboard/freightboard/internal/application/user"
	"github.com/freightboard/freightboard/internal/config"
	"github.com/freightboard/freightboard/internal/domain/notification"
	"github.com/freightboard/freightboard/internal/domain/telemetry"
	"github.com/freightboard/freightboard/internal/infrastructure/nsq"
	"github.com/freightboard/freightboard/internal/infrastructure/postgres"
	redisinfra "github.com/freightboard/freightboard/internal/infrastructure/redis"
	"github.com/freightboard/freightboard/internal/infrastructure/sse"
)

func main() {
	_ = godotenv.Load()
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db error: %v", err)
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool, cfg.MigrationsDir); err != nil {
		log.Fatalf("migration error: %v", err)
	}

	// repositories
	userRepo := postgres.NewUserRepository(pool)
	loadRepo := postgres.NewLoadRepository(pool)
	bidRepo := postgres.NewBidRepository(pool)
	threadRepo := postgres.NewNegotiationRepository(pool)
	decisionRepo := postgres.NewDecisionRepository(pool)
	otpRepo := postgres.NewOtpRepository(pool)
	ruleRepo := postgres.NewScreeningRepository(pool)
	creditRepo := postgres.NewCreditRepository(pool)

	// notification sinks: the in-process SSE hub always, NSQ when configured
	sseHub := sse.NewHub()
	sinks := notification.Fanout{sse.NewNotifier(sseHub, logger)}
	var publisher *nsq.Publisher
	if cfg.NSQDAddr != "" {
		publisher, err = nsq.NewPublisher(cfg.NSQDAddr, cfg.NotifyTopic, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("nsq publisher unavailable, continuing without it")
		} else {
			sinks = append(sinks, publisher)
		}
	}
	var notifier notification.Notifier = sinks

	// telemetry collaborator, optional
	var tracker telemetry.Tracker
	if cfg.RedisAddr != "" {
		redisClient, err := redisinfra.NewClient(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Warn().Err(err).Msg("telemetry redis unavailable, tracking disabled")
		} else {
			defer redisClient.Close()
			tracker = redisinfra.NewTracker(redisClient)
		}
	}

	// services
	engine := appLoad.NewService(loadRepo, notifier, []byte(cfg.SigningKey), logger)
	pricingSvc := appPricing.NewService(engine, decisionRepo, userRepo, notifier, logger)
	screener := appNegotiation.NewScreener(ruleRepo, logger)
	negotiationSvc := appNegotiation.NewService(engine, bidRepo, threadRepo, decisionRepo, creditRepo, screener, notifier, logger)
	otpSvc := appOtp.NewService(otpRepo, engine, notifier, cfg.OtpValidity, cfg.OtpMaxAttempts, logger)
	userSvc := appUser.NewService(userRepo, logger)

	if cfg.BootstrapAPIKey != "" {
		if _, err := userSvc.EnsureBootstrapAdmin(ctx, cfg.BootstrapName, cfg.BootstrapAPIKey); err != nil {
			log.Fatalf("bootstrap admin error: %v", err)
		}
	}

	// API server
	apiServer := httpapi.NewServer(engine, pricingSvc, negotiationSvc, otpSvc, userSvc, userSvc, ruleRepo, tracker, sseHub, logger)

	httpServer := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      apiServer.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// background sweep: overdue pending codes expire on the clock, not on
	// first touch
	go func() {
		ticker := time.NewTicker(cfg.OtpSweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			if _, err := otpSvc.ExpireSweep(context.Background()); err != nil {
				logger.Warn().Err(err).Msg("otp expiry sweep failed")
			}
		}
	}()

	// start server
	go func() {
		logger.Info().Str("addr", cfg.ServerAddr).Msg("http server started")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	_ = httpServer.Shutdown(ctxShutdown)
	sseHub.Stop()
	if publisher != nil {
		publisher.Stop()
	}
}
