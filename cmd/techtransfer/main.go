package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/gosuda/techtransfer/internal/api/ws"
	"github.com/gosuda/techtransfer/internal/audit"
	"github.com/gosuda/techtransfer/internal/auth"
	"github.com/gosuda/techtransfer/internal/config"
	"github.com/gosuda/techtransfer/internal/domain"
	"github.com/gosuda/techtransfer/internal/notify"
	"github.com/gosuda/techtransfer/internal/server"
	"github.com/gosuda/techtransfer/internal/store/postgres"
	redisstore "github.com/gosuda/techtransfer/internal/store/redis"
)

// slackQueueSize bounds notifications waiting for delivery.
const slackQueueSize = 256

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func run() error {
	// Initialize structured logging from environment.
	level, parseErr := zerolog.ParseLevel(os.Getenv("TT_LOG_LEVEL"))
	if parseErr != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if os.Getenv("TT_LOG_FORMAT") == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.Database.MaxConns < 0 || cfg.Database.MaxConns > math.MaxInt32 {
		return fmt.Errorf("database max_conns %d out of int32 range", cfg.Database.MaxConns)
	}

	store, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked above
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.Database.Migrate {
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		log.Info().Msg("database migrations applied")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	users := store.Users()
	names := audit.NewActorNames(cfg.Audit.ActorCacheSize, cfg.Audit.ActorCacheTTL,
		func(ctx context.Context, actor domain.Ref) (string, error) {
			if actor.Kind != domain.KindUser {
				return "", nil
			}
			u, err := users.GetByID(ctx, actor.ID)
			if err != nil {
				return "", err
			}
			return u.Name, nil
		})

	opts := []audit.Option{
		audit.WithMetrics(audit.NewMetrics(registry)),
		audit.WithFailurePolicy(cfg.Audit.FailurePolicy),
		audit.WithActorNames(names),
	}

	// The live feed is optional: without Redis the trail is still written,
	// only the /ws streams are unavailable.
	var feed ws.Subscriber
	if cfg.Redis.Enabled() {
		pubsub, err := redisstore.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer pubsub.Close()

		opts = append(opts, audit.WithSinks(audit.NewFeedSink(pubsub)))
		feed = pubsub
		log.Info().Str("addr", cfg.Redis.Addr).Msg("audit feed enabled")
	}

	if cfg.Slack.Enabled() {
		notifier := notify.NewSlackNotifier(notify.NewSlackClient(cfg.Slack.BotToken), cfg.Slack.Channel, cfg.Audit.NotifyActions)
		slack := audit.NewAsyncSink(notifier, slackQueueSize)
		go slack.Run(ctx)
		opts = append(opts, audit.WithSinks(slack))
		log.Info().Str("channel", cfg.Slack.Channel).Msg("slack audit notifications enabled")
	}

	auditor := audit.New(store.Audit(), opts...)

	authSvc := auth.NewService(users, auditor, cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	if cfg.Admin.Email != "" {
		created, err := authSvc.EnsureAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password)
		if err != nil {
			return err
		}
		if created {
			log.Info().Str("email", cfg.Admin.Email).Msg("admin account created")
		}
	}

	srv := server.New(ctx, cfg, server.Deps{
		Store:   store,
		Auth:    authSvc,
		Auditor: auditor,
		Names:   names,
		Feed:    feed,
		Metrics: registry,
	})

	// Start server in background goroutine.
	go func() {
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
			cancel()
		}
	}()

	// Block until shutdown signal.
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	log.Info().Msg("stopped")
	return nil
}
