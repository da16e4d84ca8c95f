package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/animaweaver/chatstore/internal/ai"
	"github.com/animaweaver/chatstore/internal/api"
	"github.com/animaweaver/chatstore/internal/config"
	"github.com/animaweaver/chatstore/internal/domain"
	"github.com/animaweaver/chatstore/internal/mode"
	"github.com/animaweaver/chatstore/internal/repository/local"
	"github.com/animaweaver/chatstore/internal/repository/remote"
	"github.com/animaweaver/chatstore/internal/store"
)

func main() {
	// Load .env file - try multiple locations
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	// Setup logger
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.Logging.Level); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("Starting conversation store server")

	// Open the embedded key-value store
	kv, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Store.Dir).Msg("Failed to open store")
	}
	defer kv.Close()

	// Pick the persistence backend
	repo := newRepository(cfg, kv)

	// Mode side table
	modes := mode.NewResolver(kv)

	// Initialize router
	router := api.NewRouter(cfg, repo, modes, kv)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Msgf("Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}

func openStore(cfg *config.Config) (store.KV, error) {
	if cfg.Store.Dir == "" {
		return store.OpenInMemory()
	}
	return store.Open(cfg.Store.Dir)
}

// newRepository selects the persistence backend: remote when a base URL
// is configured, the embedded local store otherwise.
func newRepository(cfg *config.Config, kv store.KV) domain.Repository {
	if cfg.Remote.BaseURL != "" {
		log.Info().Str("base_url", cfg.Remote.BaseURL).Msg("Using remote persistence backend")
		return remote.New(cfg.Remote.BaseURL, remote.StaticToken(cfg.Remote.Token), cfg.Remote.Timeout)
	}

	log.Info().Str("dir", cfg.Store.Dir).Msg("Using local persistence backend")
	return local.New(kv, newResponder(cfg))
}

func newResponder(cfg *config.Config) ai.Responder {
	if cfg.AI.Provider == "openai" && cfg.AI.OpenAI.APIKey != "" {
		log.Info().Str("model", cfg.AI.OpenAI.Model).Msg("Using OpenAI responder")
		return ai.NewOpenAI(cfg.AI.OpenAI.APIKey, cfg.AI.OpenAI.Model)
	}
	return ai.Echo{}
}
