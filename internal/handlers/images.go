package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/petermazzocco/prompt-image-app/internal/auth"
	"github.com/petermazzocco/prompt-image-app/internal/imagefetch"
	"github.com/petermazzocco/prompt-image-app/internal/store"
	"github.com/petermazzocco/prompt-image-app/models"
)

type indexPage struct {
	User    *models.User
	Prompts []models.Prompt
	Flashes []string
}

// Index lists the caller's prompts, newest first.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	prompts, err := h.prompts.ListForUser(r.Context(), user.ID)
	if err != nil {
		slog.Error("failed to list prompts", "user_id", user.ID, "error", err)
		http.Error(w, "Failed to load prompts", http.StatusInternalServerError)
		return
	}

	render(w, "index.html", indexPage{
		User:    user,
		Prompts: prompts,
		Flashes: h.sessions.Flashes(w, r),
	})
}

type generateRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

type generateResponse struct {
	Image    string `json:"image"`
	PromptID uint   `json:"prompt_id"`
}

// Generate fetches an image, stores it with the prompt text and returns it
// base64 encoded. No row is written unless the fetch succeeds.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Prompt is required.")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Prompt is required.")
		return
	}

	image, err := h.images.Fetch(r.Context())
	if err != nil {
		var statusErr *imagefetch.StatusError
		switch {
		case errors.As(err, &statusErr):
			slog.Error("image service returned an error", "status", statusErr.StatusCode, "body", statusErr.Body)
			writeError(w, http.StatusBadGateway, "Failed to generate image due to an API error.")
		case errors.Is(err, imagefetch.ErrUpstream):
			slog.Error("error calling image service", "error", err)
			writeError(w, http.StatusBadGateway, "Failed to generate image due to an API error.")
		case errors.Is(err, imagefetch.ErrEmptyImage):
			slog.Error("image service returned no data")
			writeError(w, http.StatusInternalServerError, "Image data could not be retrieved from the image service.")
		default:
			slog.Error("unexpected error during image generation", "error", err)
			writeError(w, http.StatusInternalServerError, "An unexpected error occurred: "+err.Error())
		}
		return
	}

	prompt, err := h.prompts.Create(r.Context(), user, req.Prompt, image)
	if err != nil {
		slog.Error("failed to save prompt", "user_id", user.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred: failed to save prompt")
		return
	}

	if err := h.archiver.Archive(r.Context(), prompt); err != nil {
		slog.Error("failed to archive image", "prompt_id", prompt.ID, "error", err)
	}

	writeJSON(w, http.StatusOK, generateResponse{
		Image:    base64.StdEncoding.EncodeToString(image),
		PromptID: prompt.ID,
	})
}

// GetImage returns the stored image of one of the caller's prompts.
func (h *Handler) GetImage(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Prompt not found.")
		return
	}

	prompt, err := h.prompts.Get(r.Context(), uint(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Prompt not found.")
			return
		}
		slog.Error("failed to fetch prompt", "prompt_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	if prompt.UserID != user.ID {
		writeError(w, http.StatusForbidden, "Unauthorized")
		return
	}

	if len(prompt.ImageData) == 0 {
		writeError(w, http.StatusNotFound, "Image not found.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"image": base64.StdEncoding.EncodeToString(prompt.ImageData),
	})
}
