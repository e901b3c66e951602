package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"gitlab.com/yelinaung/event-crm/internal/api"
	"gitlab.com/yelinaung/event-crm/internal/bot"
	"gitlab.com/yelinaung/event-crm/internal/cache"
	"gitlab.com/yelinaung/event-crm/internal/config"
	"gitlab.com/yelinaung/event-crm/internal/crm"
	"gitlab.com/yelinaung/event-crm/internal/database"
	"gitlab.com/yelinaung/event-crm/internal/gemini"
	"gitlab.com/yelinaung/event-crm/internal/logger"
	"gitlab.com/yelinaung/event-crm/internal/repository"
	"gitlab.com/yelinaung/event-crm/internal/service"
	"gitlab.com/yelinaung/event-crm/internal/telemetry"
)

const (
	shutdownTimeout   = 30 * time.Second
	readHeaderTimeout = 10 * time.Second
)

type serveOptions struct {
	skipMigrations bool
	noBot          bool
}

func newServeCmd(info BuildInfo) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard API and, when configured, the Telegram bot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, info, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.skipMigrations, "skip-migrations", false, "Do not run migrations on startup")
	cmd.Flags().BoolVar(&opts.noBot, "no-bot", false, "Do not start the Telegram bot even if a token is set")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, info BuildInfo, opts serveOptions) error {
	logger.Configure(cfg.LogLevel, cfg.LogFormat)
	logger.InitHashSalt()

	shutdownTelemetry, err := telemetry.Setup(ctx, cfg, info.Version)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(sctx); err != nil {
			logger.Log.Warn().Err(err).Msg("Failed to flush telemetry")
		}
	}()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if !opts.skipMigrations {
		if err := database.RunMigrations(ctx, pool); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}
	logger.Log.Info().Msg("Database initialized successfully")

	store, closeStore, err := cacheStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	svc := service.New(
		repository.NewLeadRepository(pool),
		repository.NewExpenseRepository(pool),
		repository.NewInventoryRepository(pool),
		repository.NewNotificationRepository(pool),
		service.Options{
			Cache:              cache.New(store, cfg.CacheStaleTime),
			Thresholds:         crm.Thresholds{WarningDays: cfg.AlertWarningDays, UrgentDays: cfg.AlertUrgentDays},
			Location:           cfg.Location(),
			UseStoreAggregates: cfg.UseStoreAggregates,
		},
	)

	var telegramBot *bot.Bot
	if cfg.BotEnabled() && !opts.noBot {
		telegramBot, err = bot.New(cfg, svc, leadParser(ctx, cfg))
		if err != nil {
			return fmt.Errorf("failed to create bot: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	httpServer := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: api.NewServer(svc, api.Options{
			Token:          cfg.APIToken,
			AllowedOrigins: cfg.CORSAllowedOrigins,
		}).Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	g.Go(func() error {
		logger.Log.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP API listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Log.Info().Msg("Shutting down...")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(sctx)
	})

	if telegramBot != nil {
		g.Go(func() error {
			telegramBot.Start(gctx)
			return nil
		})
	}

	return g.Wait()
}

// cacheStore selects Redis when configured, memory otherwise.
func cacheStore(ctx context.Context, cfg *config.Config) (cache.Store, func(), error) {
	if cfg.RedisURL == "" {
		return cache.NewMemoryStore(), func() {}, nil
	}
	client, err := cache.DialRedis(ctx, cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	logger.Log.Info().Msg("Using Redis cache store")
	return cache.NewRedisStore(client), func() { _ = client.Close() }, nil
}

// leadParser returns the Gemini intake parser, or nil when it is not
// configured or fails to start.
func leadParser(ctx context.Context, cfg *config.Config) bot.LeadParser {
	if cfg.GeminiAPIKey == "" {
		logger.Log.Info().Msg("GEMINI_API_KEY not set, lead intake disabled")
		return nil
	}
	client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Failed to create Gemini client, lead intake disabled")
		return nil
	}
	return client
}
