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

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/songquiz/go/internal/channel"
	"github.com/mcdev12/songquiz/go/internal/game"
	"github.com/mcdev12/songquiz/go/internal/session"
	"github.com/mcdev12/songquiz/go/internal/statehttp"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("no .env file loaded")
	}

	setupLogging()

	cfg, err := loadConfig(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("client exited with error")
	}
}

func setupLogging() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
}

func run(cfg *Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	clock := clockwork.NewRealClock()
	sessions := session.NewFileStore(cfg.Session.Path, clock)

	ch, connect, err := setupChannel(ctx, cfg)
	if err != nil {
		return err
	}
	defer ch.Close()

	machine := game.NewMachine(ch, sessions, clock)
	machine.OnChange = func(st game.State) {
		log.Debug().
			Str("gamestate", st.Gamestate).
			Int("players", len(st.Players)).
			Int("guess_timer", st.GuessTimer).
			Msg("state updated")
	}
	machine.Start()
	defer machine.Stop()

	// Connect only after the machine is subscribed, so the synthetic
	// connect event can trigger session resumption.
	if err := connect(); err != nil {
		return err
	}

	server := &http.Server{
		Addr:    cfg.State.Addr,
		Handler: statehttp.New(machine).Routes(),
	}
	go func() {
		log.Info().Str("addr", cfg.State.Addr).Msg("state endpoint listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("state endpoint failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("state endpoint shutdown failed")
	}
	return nil
}

// setupChannel builds the configured transport. The returned connect func is
// deferred so the machine can subscribe before the first connect event fires.
func setupChannel(ctx context.Context, cfg *Config) (channel.Channel, func() error, error) {
	switch cfg.Server.Transport {
	case "websocket":
		wsCfg := channel.DefaultWebSocketConfig(cfg.Server.URL)
		wsCfg.PingInterval = time.Duration(getEnvAsInt("PING_INTERVAL_SEC", 30)) * time.Second
		ws := channel.NewWebSocket(wsCfg)
		return ws, func() error { return ws.Connect(ctx) }, nil

	case "nats":
		natsCfg := channel.DefaultNATSConfig()
		natsCfg.URL = cfg.Server.NATSURL
		natsCfg.SubjectPrefix = cfg.Server.SubjectPrefix
		nc := channel.NewNATS(natsCfg)
		return nc, nc.Connect, nil

	default:
		return nil, nil, fmt.Errorf("unknown transport %q", cfg.Server.Transport)
	}
}
