package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"memora-backend/internal/handlers"
	"memora-backend/internal/middleware"
	"memora-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	itemHandler *handlers.ItemHandler,
	reviewHandler *handlers.ReviewHandler,
	quizHandler *handlers.QuizHandler,
	progressHandler *handlers.ProgressHandler,
	wsHub *websocket.Hub,
	redisClient *redis.Client,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Write rate limiter (120 req/min per learner)
	writeLimiter := middleware.NewRateLimiter(120, time.Minute)
	idempotency := middleware.Idempotency(redisClient)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Item Routes ────
		r.Route("/items", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", itemHandler.List)
			r.Get("/{id}", itemHandler.Get)
		})

		// ──── Review Routes ────
		r.Route("/review", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/queue", reviewHandler.Queue)
			r.Get("/preview", reviewHandler.Preview)

			r.Group(func(r chi.Router) {
				r.Use(writeLimiter.Middleware)
				r.Use(idempotency)
				r.Post("/record", reviewHandler.Record)
			})
		})

		// ──── Quiz Routes ────
		r.Route("/quiz", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/{id}", quizHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(writeLimiter.Middleware)
				r.Use(idempotency)
				r.Post("/start", quizHandler.Start)
				r.Post("/{id}/submit", quizHandler.Submit)
				r.Post("/{id}/finish", quizHandler.Finish)
			})
		})

		// ──── Progress Routes ────
		r.Route("/progress", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/overview", progressHandler.Overview)
			r.Get("/forecast", progressHandler.Forecast)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
