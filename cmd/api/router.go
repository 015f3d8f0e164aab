package main

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tokeley/researchlog/internal/auth"
	"github.com/tokeley/researchlog/internal/config"
	"github.com/tokeley/researchlog/internal/handlers"
	"github.com/tokeley/researchlog/internal/middleware"
	"github.com/tokeley/researchlog/internal/repo"
)

type routes struct {
	auth   *handlers.AuthHandler
	posts  *handlers.PostHandler
	papers *handlers.PaperHandler

	tokens *auth.Tokens
	login  *middleware.IPRateLimiter
}

// newRouter wires the full HTTP surface. API routes answer both at the root and under /api.
func newRouter(db *sql.DB, cfg config.Config) http.Handler {
	tokens := auth.NewTokens([]byte(cfg.JWTSecret), cfg.TokenTTL())
	users := repo.NewUserRepo(db)

	perMinute := cfg.LoginRatePerMinute
	if perMinute <= 0 {
		perMinute = 10
	}

	rt := routes{
		auth:   &handlers.AuthHandler{Auth: auth.NewService(users, tokens, slog.Default())},
		posts:  &handlers.PostHandler{Repo: repo.NewPostRepo(db)},
		papers: &handlers.PaperHandler{Repo: repo.NewPaperRepo(db)},
		tokens: tokens,
		login:  middleware.LoginRateLimiter(perMinute),
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSEnabled()))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))

	r.Get("/health", handlers.Health)
	r.Get("/ready", handlers.Ready(db))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	rt.mount(r)
	r.Route("/api", rt.mount)

	return r
}

func (rt routes) mount(r chi.Router) {
	r.With(rt.login.Middleware).Post("/auth/login", rt.auth.Login)

	r.Route("/blog", func(r chi.Router) {
		r.With(middleware.OptionalAuth(rt.tokens)).Get("/", rt.posts.ListPosts)
		r.Get("/tags", rt.posts.ListTags)
		r.Get("/{id}", rt.posts.GetPost)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(rt.tokens))
			r.Post("/", rt.posts.CreatePost)
			r.Put("/{id}", rt.posts.UpdatePost)
			r.Delete("/{id}", rt.posts.DeletePost)
		})
	})

	r.Route("/papers", func(r chi.Router) {
		r.Get("/", rt.papers.ListPapers)
		r.Get("/tags", rt.papers.ListTags)
		r.Get("/{id}", rt.papers.GetPaper)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(rt.tokens))
			r.Post("/", rt.papers.CreatePaper)
			r.Put("/{id}", rt.papers.UpdatePaper)
			r.Delete("/{id}", rt.papers.DeletePaper)
			r.Patch("/{id}/toggle-read", rt.papers.ToggleRead)
			r.Put("/{id}/notes", rt.papers.UpdateNotes)
		})
	})
}
