package handlers

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/petermazzocco/prompt-image-app/internal/archive"
	"github.com/petermazzocco/prompt-image-app/internal/auth"
	"github.com/petermazzocco/prompt-image-app/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Static holds the front-end assets served under /static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

var pages = template.Must(template.ParseFS(templateFS, "templates/*.html"))

var validate = validator.New(validator.WithRequiredStructEnabled())

// ImageFetcher returns the bytes of one image from the upstream service.
type ImageFetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// Handler serves the HTML pages and the JSON image endpoints.
type Handler struct {
	users    *store.Users
	prompts  *store.Prompts
	sessions *auth.Manager
	images   ImageFetcher
	archiver archive.Archiver
}

func New(users *store.Users, prompts *store.Prompts, sessions *auth.Manager, images ImageFetcher, archiver archive.Archiver) *Handler {
	if archiver == nil {
		archiver = archive.Nop{}
	}
	return &Handler{
		users:    users,
		prompts:  prompts,
		sessions: sessions,
		images:   images,
		archiver: archiver,
	}
}

func render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pages.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("rendering template", "template", name, "error", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
