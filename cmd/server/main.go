package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/storekeep/storekeep/internal/adapter/llm"
	"github.com/storekeep/storekeep/internal/auth"
	"github.com/storekeep/storekeep/internal/config"
	"github.com/storekeep/storekeep/internal/service"
	"github.com/storekeep/storekeep/internal/session"
	"github.com/storekeep/storekeep/internal/store"
	handler "github.com/storekeep/storekeep/internal/transport/http"
	"github.com/storekeep/storekeep/policy"
)

func main() {
	cfg := config.MustNew[config.Server]("STOREKEEP")
	openaiCfg := config.MustNew[config.OpenAI]("OPENAI")

	setupLogger(cfg)
	log.Info().
		Int("http_port", cfg.HTTPPort).
		Str("database", cfg.DatabaseURL).
		Str("model", openaiCfg.Model).
		Msg("starting storekeep")

	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize store")
	}
	defer db.Close()

	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize policy engine")
	}

	gateway := llm.NewGateway(*openaiCfg)
	sessions := session.NewRegistry()
	tokens := auth.NewTokenManager(cfg.TokenTTL)

	svc := service.New(db, sessions, gateway, policyEngine, tokens)

	server := handler.NewServer(svc, tokens, db)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := server.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.HTTPPort).Msg("API started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shutdown server gracefully")
	}
	log.Info().Msg("stopped")
}

func setupLogger(cfg *config.Server) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.LogDebug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}
