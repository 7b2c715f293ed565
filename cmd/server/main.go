// Package main is the entry point for the lucky wheel service.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"lucky-wheel/internal/api"
	"lucky-wheel/internal/config"
	"lucky-wheel/internal/pkg/db"
	"lucky-wheel/internal/repository"
	"lucky-wheel/internal/service"
	"lucky-wheel/internal/wheel"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	loc, err := cfg.Region.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to resolve home timezone")
	}

	log.Info().Str("timezone", cfg.Region.Timezone).Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	// Run database migrations
	if err := runMigrations(ctx, dbPool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Initialize repositories
	merchantRepo := repository.NewMerchantRepository(dbPool.Pool)
	couponRepo := repository.NewCouponRepository(dbPool.Pool)
	drawRepo := repository.NewDrawRepository(dbPool.Pool)
	quotaRepo := repository.NewQuotaRepository(dbPool.Pool)
	checkInRepo := repository.NewCheckInRepository(dbPool.Pool)

	// Initialize services
	allocator := wheel.New()
	eligibilitySvc := service.NewEligibilityService(merchantRepo, loc)
	wheelSvc := service.NewWheelService(merchantRepo, couponRepo, allocator)
	quotaSvc := service.NewQuotaService(quotaRepo, cfg.Quota.MaxPerPeriod, cfg.Quota.MaxPerDay, loc)
	drawSvc := service.NewDrawService(merchantRepo, couponRepo, drawRepo, quotaSvc, loc)
	checkInSvc := service.NewCheckInService(checkInRepo, couponRepo, drawRepo, allocator, cfg.Streak.MilestoneDays, loc)

	router := api.NewRouter(&api.Dependencies{
		Config:      cfg,
		DB:          dbPool,
		Eligibility: eligibilitySvc,
		Wheel:       wheelSvc,
		Quota:       quotaSvc,
		Draws:       drawSvc,
		CheckIns:    checkInSvc,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	log.Info().Msg("Server stopped gracefully")
}

// runMigrations executes database migrations.
func runMigrations(ctx context.Context, pool *db.Pool) error {
	log.Info().Msg("Running database migrations...")

	// Migration 1: Create merchants table
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS merchants (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			schedule JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_merchants_active ON merchants(active);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 1: merchants table created")

	// Migration 2: Create coupons table
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS coupons (
			id BIGSERIAL PRIMARY KEY,
			merchant_id BIGINT NOT NULL REFERENCES merchants(id) ON DELETE CASCADE,
			title VARCHAR(255) NOT NULL,
			weight INT NOT NULL DEFAULT 1 CHECK (weight BETWEEN 1 AND 10),
			active BOOLEAN NOT NULL DEFAULT TRUE,
			is_streak_reward BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_coupons_merchant ON coupons(merchant_id);
		CREATE INDEX IF NOT EXISTS idx_coupons_streak ON coupons(is_streak_reward) WHERE is_streak_reward = TRUE;
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 2: coupons table created")

	// Migration 3: Create draws table
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS draws (
			id UUID PRIMARY KEY,
			user_id BIGINT NOT NULL,
			merchant_id BIGINT NOT NULL,
			coupon_id BIGINT,
			period VARCHAR(20),
			is_shared BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_draws_user_time ON draws(user_id, created_at DESC);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 3: draws table created")

	// Migration 4: Create quota counters table
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS quota_counters (
			user_id BIGINT NOT NULL,
			date DATE NOT NULL,
			period VARCHAR(20) NOT NULL,
			used_count INT NOT NULL DEFAULT 0,
			rewarded_count INT NOT NULL DEFAULT 0,
			bonus_count INT NOT NULL DEFAULT 0,
			PRIMARY KEY (user_id, date, period)
		);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 4: quota_counters table created")

	// Migration 5: Create checkins table
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS checkins (
			user_id BIGINT NOT NULL,
			date DATE NOT NULL,
			consecutive_days INT NOT NULL,
			reward_claimed BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, date)
		);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 5: checkins table created")

	log.Info().Msg("All migrations completed successfully")
	return nil
}
