package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/animaweaver/chatstore/internal/api/handler"
	customMiddleware "github.com/animaweaver/chatstore/internal/api/middleware"
	"github.com/animaweaver/chatstore/internal/config"
	"github.com/animaweaver/chatstore/internal/domain"
	"github.com/animaweaver/chatstore/internal/mode"
	"github.com/animaweaver/chatstore/internal/store"
)

// NewRouter creates and configures the HTTP router. The route shapes,
// including the flat rename endpoints, match what existing clients
// already call.
func NewRouter(cfg *config.Config, repo domain.Repository, modes *mode.Resolver, kv store.KV) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.WriteTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	chatHandler := handler.NewChatHandler(repo, modes)
	groupHandler := handler.NewGroupHandler(repo)
	modeHandler := handler.NewModeHandler(modes)

	// Health check (public)
	r.Get("/health", handler.HealthCheck)
	r.Get("/ready", handler.ReadyCheck(kv))

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.Authenticate)

		r.Route("/chats", func(r chi.Router) {
			r.Get("/", chatHandler.List)
			r.Post("/", chatHandler.Create)

			r.Route("/{chatID}", func(r chi.Router) {
				r.Delete("/", chatHandler.Delete)
				r.Get("/messages", chatHandler.Messages)
				r.Post("/messages", chatHandler.AddMessage)
				r.Get("/mode", modeHandler.Get)
				r.Post("/mode", modeHandler.Assign)
			})
		})
		r.Post("/chatsrename", chatHandler.Rename)

		r.Route("/groups", func(r chi.Router) {
			r.Get("/", groupHandler.List)
			r.Post("/", groupHandler.Create)
			r.Post("/rename", groupHandler.Rename)

			r.Route("/{groupID}", func(r chi.Router) {
				r.Get("/", groupHandler.Get)
				r.Delete("/", groupHandler.Delete)
				r.Get("/chats", groupHandler.Chats)
			})
		})

		r.Get("/prompts", modeHandler.Prompts)
	})

	return r
}
