package router

import (
	"github.com/Totarae/recommender/internal/handlers"
	"github.com/Totarae/recommender/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter создаёт и настраивает маршрутизатор
func NewRouter(handler *handlers.Handler, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.LoggingMiddleware(logger)) // Подключаем логирование
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.GzipRequestMiddleware)
	r.Use(chimiddleware.Compress(5, "application/json")) // Gzip-сжатие ответов

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.NotFound)

	r.Get("/ping", handler.Ping)

	r.Route("/recommendations", func(r chi.Router) {
		r.Post("/", handler.CreateRecommendation)
		r.Get("/", handler.List)
		r.Get("/random", handler.Random)
		r.Get("/top/{amount}", handler.Top)
		r.Get("/{id}", handler.GetRecommendation)
		r.Post("/{id}/upvote", handler.Upvote)
		r.Post("/{id}/downvote", handler.Downvote)
	})
	return r
}
