package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"quizhub-service/internal/app"
	"quizhub-service/internal/auth"
	"quizhub-service/internal/metrics"
)

// Deps are the collaborators of the HTTP surface. Metrics and Gatherer are
// optional.
type Deps struct {
	Quizzes  *app.QuizService
	Users    *app.UserService
	Tokens   *auth.TokenIssuer
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Log      *zap.Logger
}

// NewRouter mounts the JSON API under /api plus health and metrics endpoints.
func NewRouter(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	h := &Handler{quizzes: d.Quizzes, users: d.Users, tokens: d.Tokens, log: d.Log}
	ws := NewWSHandler(d.Quizzes, d.Log)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(d.Log))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(api chi.Router) {
		api.Post("/users", h.Register)
		api.Post("/sessions", h.Login)

		api.Group(func(secure chi.Router) {
			secure.Use(requireAuth(d.Tokens, d.Log))

			secure.Get("/users/me", h.Me)
			secure.Delete("/users/me", h.DeleteMe)

			secure.Post("/quizzes", h.CreateQuiz)
			secure.Get("/quizzes", h.ListAvailableQuizzes)
			secure.Get("/quizzes/mine", h.ListMyQuizzes)
			secure.Get("/quizzes/{id}", h.GetQuiz)
			secure.Put("/quizzes/{id}", h.EditQuiz)
			secure.Delete("/quizzes/{id}", h.DeleteQuiz)

			secure.Post("/quizzes/{id}/results", h.SubmitAnswers)
			secure.Get("/quizzes/{id}/results", h.ListQuizResults)
			secure.Get("/quizzes/{id}/results/live", ws.ServeLive)

			secure.Get("/results", h.ListMyResults)
			secure.Get("/results/{id}", h.GetResult)
		})
	})
	return r
}
