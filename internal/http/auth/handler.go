package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budgetapp/internal/http/ratelimit"
	"github.com/MrJamesThe3rd/budgetapp/internal/http/respond"
	"github.com/MrJamesThe3rd/budgetapp/internal/session"
	"github.com/MrJamesThe3rd/budgetapp/internal/user"
)

const msgUnauthenticated = "You need to sign in before continuing"

type CookieConfig struct {
	Name   string
	Secure bool
}

type Handler struct {
	users    *user.Service
	sessions *session.Manager
	rs       *respond.Responder
	cookie   CookieConfig
	limiter  *ratelimit.Limiter
}

// NewHandler returns the session endpoints. limiter may be nil to disable throttling
// of register and login.
func NewHandler(
	users *user.Service,
	sessions *session.Manager,
	rs *respond.Responder,
	cookie CookieConfig,
	limiter *ratelimit.Limiter,
) *Handler {
	return &Handler{users: users, sessions: sessions, rs: rs, cookie: cookie, limiter: limiter}
}

func (h *Handler) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		if h.limiter != nil {
			r.Use(h.limiter.Middleware(h.rs))
		}

		r.Post("/register", h.register)
		r.Post("/login", h.login)
	})

	r.Delete("/logout", h.logout)
	r.With(h.Require).Get("/me", h.me)
}

// Require rejects requests without a valid session with 401 and puts the user id of
// the others in the request context.
func (h *Handler) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.token(r)
		if token == "" {
			h.rs.Status(w, http.StatusUnauthorized, msgUnauthenticated)
			return
		}

		userID, err := h.sessions.Parse(token)
		if err != nil {
			slog.Debug("rejected session", "error", err)
			h.rs.Status(w, http.StatusUnauthorized, msgUnauthenticated)

			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// token reads the session cookie, falling back to a bearer token for API clients.
func (h *Handler) token(r *http.Request) string {
	if c, err := r.Cookie(h.cookie.Name); err == nil && c.Value != "" {
		return c.Value
	}

	if v, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(v)
	}

	return ""
}

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func toResponse(u *user.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

type registerRequest struct {
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"passwordConfirmation"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.rs.Status(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.users.Register(r.Context(), user.RegisterParams{
		Email:                req.Email,
		Password:             req.Password,
		PasswordConfirmation: req.PasswordConfirmation,
	})
	if err != nil {
		h.rs.Error(w, r, "user", err)
		return
	}

	if err := h.signIn(w, u); err != nil {
		h.rs.Error(w, r, "user", err)
		return
	}

	slog.Info("registered user", "user_id", u.ID)
	h.rs.Data(w, "user", toResponse(u))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.rs.Status(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		h.rs.Error(w, r, "user", err)
		return
	}

	if err := h.signIn(w, u); err != nil {
		h.rs.Error(w, r, "user", err)
		return
	}

	h.rs.Data(w, "user", toResponse(u))
}

func (h *Handler) logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	h.rs.Data(w, "logout", true)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	u, err := h.users.Get(r.Context(), UserID(r.Context()))
	if err != nil {
		h.rs.Error(w, r, "user", err)
		return
	}

	h.rs.Data(w, "user", toResponse(u))
}

func (h *Handler) signIn(w http.ResponseWriter, u *user.User) error {
	token, err := h.sessions.Issue(u.ID)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.Name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.sessions.TTL().Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}
