package api

import (
	"net/http"
	"strings"

	"github.com/afflux-io/afflux/internal/auth"
	"github.com/afflux-io/afflux/internal/store"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string      `json:"token"`
	User  *store.User `json:"user"`
}

// Register creates a user and issues a session token.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" || req.Username == "" {
		fail(w, http.StatusBadRequest, "email and username are required")
		return
	}
	if len(req.Password) < 8 {
		fail(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	existing, err := h.store.UserByEmail(r.Context(), req.Email)
	if err != nil {
		fail(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if existing != nil {
		fail(w, http.StatusConflict, "email already registered")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		fail(w, http.StatusInternalServerError, "hashing failed")
		return
	}
	user := &store.User{Email: req.Email, PasswordHash: hash, Username: req.Username}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		fail(w, http.StatusInternalServerError, "could not create user")
		return
	}

	h.issueSession(w, http.StatusCreated, user)
}

// Login verifies credentials and issues a session token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.store.UserByEmail(r.Context(), strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil {
		fail(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if user == nil || !auth.CheckPassword(req.Password, user.PasswordHash) {
		fail(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	h.issueSession(w, http.StatusOK, user)
}

// Me returns the authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	id := identity(r)
	user, err := h.store.UserByID(r.Context(), id.UserID)
	if err != nil || user == nil {
		fail(w, http.StatusUnauthorized, "unknown user")
		return
	}
	respond(w, http.StatusOK, user)
}

func (h *Handler) issueSession(w http.ResponseWriter, status int, user *store.User) {
	token, err := h.sessions.Issue(auth.Identity{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
	})
	if err != nil {
		fail(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	respond(w, status, sessionResponse{Token: token, User: user})
}
