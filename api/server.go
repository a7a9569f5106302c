/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the chi router, middleware stack, and route definitions. This
  is the wiring layer connecting URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  unique ID per request for tracing
  2. RealIP:     respect proxy headers
  3. Logger:     request logging
  4. Recoverer:  panic recovery (500 instead of crash)
  5. CORS:       cross-origin requests for the web frontend

SECURITY NOTE:
  There is no authentication. The API trusts the wallet address it is
  given; signature verification lives client-side and is out of scope here.
*/
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a router with all routes configured.
func NewRouter(h *Handler, corsOrigins []string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		r.Route("/ideas", func(r chi.Router) {
			r.Get("/", h.ListIdeas)
			r.Post("/", h.PlantIdea)
			r.Get("/{id}", h.GetIdea)
			r.Post("/{id}/care", h.Care)
			r.Get("/{id}/comments", h.ListComments)
			r.Post("/{id}/comments", h.PostComment)
			r.Get("/{id}/comment-cost", h.CommentCost)
			r.Get("/{id}/join-requests", h.ListJoinRequests)
			r.Post("/{id}/join-requests", h.CreateJoinRequest)
		})

		r.Route("/join-requests", func(r chi.Router) {
			r.Post("/{id}/accept", h.AcceptJoinRequest)
			r.Post("/{id}/decline", h.DeclineJoinRequest)
		})

		r.Route("/gardeners", func(r chi.Router) {
			r.Get("/{address}/sprouts", h.GetStanding)
			r.Get("/{address}/grants", h.ListGrants)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Post("/awards", h.CreateAward)
		})
	})

	return r
}
