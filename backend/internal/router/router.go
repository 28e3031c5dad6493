package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/itchan-dev/feedback/backend/internal/setup"
	"github.com/itchan-dev/feedback/shared/csrf"
	mw "github.com/itchan-dev/feedback/shared/middleware"
	"github.com/itchan-dev/feedback/shared/middleware/metrics"
	rl "github.com/itchan-dev/feedback/shared/middleware/ratelimiter"
)

// New creates the chi router with all the routes.
// IMPORTANT! ratelimiters set with .Use limit requests for all endpoints combined in that group
func New(deps *setup.Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(mw.AccessLog)
	r.Use(metrics.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	// setup CORS for the page-rendering frontend
	origins := deps.Config.Public.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", csrf.HeaderName},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(mw.SecurityHeaders(deps.Config.Public.SecureCookies))

	h := deps.Handler
	auth := deps.Auth

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(v1 chi.Router) {
		v1.Get("/csrf", csrf.Issue(deps.Config.Public.SecureCookies))

		// Reads are public; a token is still decoded when present
		v1.Group(func(public chi.Router) {
			public.Use(auth.OptionalAuth())
			public.Get("/threads", h.GetAllThreads)
			public.Get("/threads/{thread}", h.GetThread)
			// views: 10 per second by IP
			public.With(mw.RateLimit(rl.Rps10(), mw.GetIP)).Post("/threads/{thread}/views", h.RegisterView)
		})

		v1.Group(func(loggedIn chi.Router) {
			loggedIn.Use(auth.NeedAuth())
			loggedIn.Use(csrf.Protect(mw.AccessTokenCookie))

			// CreateThread: 1 per minute per user
			loggedIn.With(mw.RateLimit(rl.OnceInMinute(), mw.GetUserIDFromContext)).Post("/threads", h.CreateThread)
			// CreateReply: 1 per second per user
			loggedIn.With(mw.RateLimit(rl.OnceInSecond(), mw.GetUserIDFromContext)).Post("/replies", h.CreateReply)

			// edits and deletes share one 10 RPS budget per user
			loggedIn.Group(func(edits chi.Router) {
				edits.Use(mw.RateLimit(rl.Rps10(), mw.GetUserIDFromContext))
				edits.Patch("/threads/{thread}", h.EditThread)
				edits.Delete("/threads/{thread}", h.DeleteThread)
				edits.Patch("/replies/{reply}", h.EditReply)
				edits.Delete("/replies/{reply}", h.DeleteReply)
			})
		})
	})

	return r
}
