package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/memory/internal/config"
	"github.com/robalobadob/memory/internal/httpserver"
	"github.com/robalobadob/memory/internal/store"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := config.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to load game settings")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mem := store.NewMemoryStore()
	go sweepIdle(ctx, mem, envDuration("SESSION_IDLE_TIMEOUT", 30*time.Minute))

	srv := httpserver.New(ctx, mem, config.Settings())
	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Int("pairs", len(config.Settings().Symbols)).Msg("starting memory server")
	if err := srv.Run(ctx, ":"+port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// sweepIdle periodically stops sessions nobody has touched for idle.
func sweepIdle(ctx context.Context, st store.Store, idle time.Duration) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if n := st.Sweep(ctx, idle); n > 0 {
				log.Info().Int("sessions", n).Msg("evicted idle sessions")
			}
		case <-ctx.Done():
			return
		}
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envDuration(k string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(k)); err == nil && d > 0 {
		return d
	}
	return def
}
