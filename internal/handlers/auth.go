package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/lucahenggart/sportbox-backend/internal/middleware"
	"github.com/lucahenggart/sportbox-backend/internal/services"
)

// LoginRequest is the login form body.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the registration form body. PasswordConfirm and
// AcceptedRules are presentation-side gates enforced here, at the edge,
// before the auth service is called.
type RegisterRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	FullName        string `json:"full_name"`
	Kontakt         string `json:"kontakt"`
	AcceptedRules   bool   `json:"accepted_rules"`
}

// SessionUser is the identity block returned to the client.
type SessionUser struct {
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
	IsAdmin  bool   `json:"is_admin"`
	Approved bool   `json:"approved"`
}

// AuthResponse is returned by login and me.
type AuthResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	User    *SessionUser `json:"user,omitempty"`
	State   string       `json:"state"`
}

// Login authenticates a user and starts a session. All authentication
// failures get the same generic message so the response does not reveal
// whether the username, password or account state was wrong.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, false, "Username and password are required")
		return
	}

	user, err := h.Auth.Authenticate(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) ||
			errors.Is(err, services.ErrUserDeactivated) ||
			errors.Is(err, services.ErrBadPassword) {
			h.Log.Info().Str("username", req.Username).Err(err).Msg("login rejected")
			writeMessage(w, http.StatusUnauthorized, false, "Login failed")
			return
		}
		h.Log.Error().Err(err).Msg("login failed against credential store")
		writeMessage(w, http.StatusInternalServerError, false, "Login is temporarily unavailable")
		return
	}

	// A login over an existing session replaces it wholesale.
	if old := middleware.TokenFromContext(r.Context()); old != "" {
		h.Sessions.Destroy(old)
	}

	token, err := h.Sessions.Create(req.Username, user.IsAdmin, user.Approved)
	if err != nil {
		h.Log.Error().Err(err).Msg("failed to create session")
		writeMessage(w, http.StatusInternalServerError, false, "Login is temporarily unavailable")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	sess := services.Session{Username: req.Username, IsAdmin: user.IsAdmin, IsApproved: user.Approved}
	writeJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Message: "Logged in as " + req.Username,
		User: &SessionUser{
			Username: req.Username,
			FullName: user.FullName,
			IsAdmin:  user.IsAdmin,
			Approved: user.Approved,
		},
		State: string(sess.State()),
	})
}

// Register creates a new account. The account starts unapproved and the
// caller is never logged in by registering.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid request body")
		return
	}

	if !req.AcceptedRules {
		writeMessage(w, http.StatusBadRequest, false, "You must accept the usage rules")
		return
	}
	if req.Username == "" {
		writeMessage(w, http.StatusBadRequest, false, "Username must not be empty")
		return
	}
	if req.Password == "" {
		writeMessage(w, http.StatusBadRequest, false, "Password must not be empty")
		return
	}
	if req.Password != req.PasswordConfirm {
		writeMessage(w, http.StatusBadRequest, false, "Passwords do not match")
		return
	}

	if err := h.Auth.Register(req.Username, req.Password, req.FullName, req.Kontakt); err != nil {
		if errors.Is(err, services.ErrUsernameTaken) {
			writeMessage(w, http.StatusConflict, false, "Username is already taken")
			return
		}
		h.Log.Error().Err(err).Msg("registration failed against credential store")
		writeMessage(w, http.StatusInternalServerError, false, "Registration is temporarily unavailable")
		return
	}

	writeMessage(w, http.StatusCreated, true,
		"Registration successful. Your account must be approved before you can see the code.")
}

// Logout destroys the session and clears the cookie. The session is reset
// fully, not just the identity.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.TokenFromContext(r.Context()); token != "" {
		h.Sessions.Destroy(token)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeMessage(w, http.StatusOK, true, "Logged out")
}

// Me reports the current session identity and authorization tier.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	resp := AuthResponse{Success: true, State: string(sess.State())}
	if sess.Username != "" {
		resp.User = &SessionUser{
			Username: sess.Username,
			IsAdmin:  sess.IsAdmin,
			Approved: sess.IsApproved,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
