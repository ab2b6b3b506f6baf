package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/petermazzocco/prompt-image-app/internal/auth"
	"github.com/petermazzocco/prompt-image-app/internal/store"
)

type credentialsForm struct {
	Username string `validate:"required,max=100"`
	Password string `validate:"required"`
}

func readCredentials(r *http.Request) (credentialsForm, error) {
	form := credentialsForm{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	return form, validate.Struct(form)
}

type loginPage struct {
	Register bool
	Flashes  []string
}

func (h *Handler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	render(w, "login.html", loginPage{Register: true, Flashes: h.sessions.Flashes(w, r)})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	form, err := readCredentials(r)
	if err != nil {
		h.flashRedirect(w, r, "Username and password are required.", "/register")
		return
	}

	user, err := h.users.Register(r.Context(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			h.flashRedirect(w, r, "Username already exists.", "/register")
			return
		}
		slog.Error("failed to register user", "username", form.Username, "error", err)
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	if err := h.sessions.Login(w, r, user); err != nil {
		slog.Error("failed to save session", "error", err)
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}

	slog.Info("user registered", "user_id", user.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) LoginPage(w http.ResponseWriter, r *http.Request) {
	render(w, "login.html", loginPage{Flashes: h.sessions.Flashes(w, r)})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	form, err := readCredentials(r)
	if err != nil {
		h.invalidLogin(w)
		return
	}

	user, err := h.users.Authenticate(r.Context(), form.Username, form.Password)
	if err != nil {
		if !errors.Is(err, store.ErrInvalidCredentials) {
			slog.Error("failed to authenticate", "username", form.Username, "error", err)
		}
		h.invalidLogin(w)
		return
	}

	if err := h.sessions.Login(w, r, user); err != nil {
		slog.Error("failed to save session", "error", err)
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) invalidLogin(w http.ResponseWriter) {
	render(w, "login.html", loginPage{Flashes: []string{"Invalid username or password."}})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if user, ok := auth.UserFromContext(r.Context()); ok {
		slog.Info("user logged out", "user_id", user.ID)
	}
	if err := h.sessions.Logout(w, r); err != nil {
		slog.Error("failed to clear session", "error", err)
		http.Error(w, "Failed to clear session", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) flashRedirect(w http.ResponseWriter, r *http.Request, msg, to string) {
	if err := h.sessions.AddFlash(w, r, msg); err != nil {
		slog.Error("failed to save flash", "error", err)
	}
	http.Redirect(w, r, to, http.StatusSeeOther)
}
