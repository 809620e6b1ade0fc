package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"

	"github.com/dkeye/Support/internal/adapters/auth"
	router "github.com/dkeye/Support/internal/adapters/http"
	"github.com/dkeye/Support/internal/adapters/natsbus"
	wsignal "github.com/dkeye/Support/internal/adapters/signal"
	"github.com/dkeye/Support/internal/adapters/store/memory"
	"github.com/dkeye/Support/internal/adapters/store/mongo"
	"github.com/dkeye/Support/internal/app"
	"github.com/dkeye/Support/internal/app/orch"
	"github.com/dkeye/Support/internal/config"
	"github.com/dkeye/Support/internal/core"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if cfg.Mode != "debug" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer closeStore()

	policy, err := app.PolicyByName(cfg.Backpressure)
	if err != nil {
		log.Fatal().Err(err).Msg("bad backpressure policy")
	}

	opts := orch.Options{Policy: policy, HistoryLimit: cfg.HistoryLimit}
	if v, err := auth.NewJWTVerifier(cfg.JWTSecret); err == nil {
		opts.Verifier = v
	} else {
		log.Warn().Err(err).Msg("no credential verifier, every connection is a guest")
	}
	o := orch.New(store, store, opts)

	ctrl := wsignal.NewSignalWSController(o, wsignal.Options{
		ReadLimit:      cfg.ReadLimit,
		PingPeriod:     cfg.PingPeriod,
		PongWait:       cfg.PongWait,
		WriteWait:      cfg.WriteWait,
		SendBuffer:     cfg.SendBuffer,
		AllowedOrigins: cfg.AllowedOrigins,
		Limiter:        wsignal.NewMessageRateLimiter(cfg.RateLimit.Messages, cfg.RateLimit.Interval),
	})

	r := router.SetupRouter(ctx, cfg, o, ctrl)
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	var wg conc.WaitGroup
	wg.Go(func() {
		log.Info().Str("addr", addr).Msg("Support gateway started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	})
	if cfg.Nats.URL != "" {
		sub := natsbus.NewStatusSubscriber(natsbus.Config{
			URL:     cfg.Nats.URL,
			Subject: cfg.Nats.Subject,
			Queue:   cfg.Nats.Queue,
		}, o)
		wg.Go(func() {
			if err := sub.Run(ctx); err != nil {
				log.Error().Err(err).Msg("status subscriber")
			}
		})
	}

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	wg.Wait()
	log.Info().Msg("Server exited gracefully")
}

func openStore(ctx context.Context, cfg *config.Config) (core.Store, func(), error) {
	if cfg.Store.Driver != "mongo" {
		return memory.New(), func() {}, nil
	}
	s, err := mongo.Connect(ctx, mongo.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
		MaxRetry:    cfg.Mongo.MaxRetry,
	})
	if err != nil {
		return nil, nil, err
	}
	return s, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Close(ctx); err != nil {
			log.Warn().Err(err).Msg("close mongo")
		}
	}, nil
}
