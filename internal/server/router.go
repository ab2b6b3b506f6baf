package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/petermazzocco/prompt-image-app/internal/auth"
	"github.com/petermazzocco/prompt-image-app/internal/handlers"
)

// NewRouter mounts every route. Pages behind RequireUser redirect anonymous
// visitors to /login; the JSON endpoints answer 401 instead.
func NewRouter(h *handlers.Handler, sessions *auth.Manager) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(handlers.Static()))))

	r.Get("/register", h.RegisterPage)
	r.Post("/register", h.Register)
	r.Get("/login", h.LoginPage)
	r.Post("/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(sessions.RequireUser)
		r.Get("/", h.Index)
		r.Get("/logout", h.Logout)
		r.Post("/logout", h.Logout)
	})

	r.Group(func(r chi.Router) {
		r.Use(sessions.RequireUserJSON)
		r.Post("/generate", h.Generate)
		r.Get("/get_image/{id}", h.GetImage)
	})

	return r
}
