package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/lucahenggart/sportbox-backend/internal/models"
	"github.com/lucahenggart/sportbox-backend/internal/services"
)

var errAdminAccount = errors.New("admin account cannot be modified")

// ManagedUser is one row of the admin user listing. Password hashes are
// never exposed.
type ManagedUser struct {
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Kontakt   string    `json:"kontakt"`
	Approved  bool      `json:"approved"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserListResponse is the admin user listing.
type UserListResponse struct {
	Success bool          `json:"success"`
	Users   []ManagedUser `json:"users"`
	Count   int           `json:"count"`
}

// SetApprovalRequest toggles the approval flag of one account.
type SetApprovalRequest struct {
	Username string `json:"username"`
	Approved bool   `json:"approved"`
}

// SetActiveRequest toggles the active flag of one account.
type SetActiveRequest struct {
	Username string `json:"username"`
	Active   bool   `json:"active"`
}

// ListUsers returns every non-admin account. The admin record itself is
// not managed through these endpoints.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	table, err := h.Users.Load()
	if err != nil {
		h.Log.Error().Err(err).Msg("failed to load users")
		writeMessage(w, http.StatusInternalServerError, false, "Failed to load users")
		return
	}

	users := make([]ManagedUser, 0, len(table.Users))
	for name, u := range table.Users {
		if u.IsAdmin {
			continue
		}
		users = append(users, ManagedUser{
			Username:  name,
			FullName:  u.FullName,
			Kontakt:   u.Kontakt,
			Approved:  u.Approved,
			IsActive:  u.Active(),
			CreatedAt: u.CreatedAt,
		})
	}
	sort.Slice(users, func(i, j int) bool { return users[i].Username < users[j].Username })

	writeJSON(w, http.StatusOK, UserListResponse{Success: true, Users: users, Count: len(users)})
}

// SetUserApproval grants or revokes the approval flag that lets an account
// see the box code.
func (h *Handler) SetUserApproval(w http.ResponseWriter, r *http.Request) {
	var req SetApprovalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid request body")
		return
	}
	if req.Username == "" {
		writeMessage(w, http.StatusBadRequest, false, "Username is required")
		return
	}

	err := h.Users.Update(func(table *models.UserTable) error {
		user, ok := table.Users[req.Username]
		if !ok {
			return services.ErrUserNotFound
		}
		if user.IsAdmin {
			return errAdminAccount
		}
		user.Approved = req.Approved
		table.Users[req.Username] = user
		return nil
	})
	if err != nil {
		h.respondUserUpdateError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, true, "User approval updated")
}

// SetUserActive activates or deactivates an account. A deactivated account
// cannot authenticate at all.
func (h *Handler) SetUserActive(w http.ResponseWriter, r *http.Request) {
	var req SetActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, false, "Invalid request body")
		return
	}
	if req.Username == "" {
		writeMessage(w, http.StatusBadRequest, false, "Username is required")
		return
	}

	err := h.Users.Update(func(table *models.UserTable) error {
		user, ok := table.Users[req.Username]
		if !ok {
			return services.ErrUserNotFound
		}
		if user.IsAdmin {
			return errAdminAccount
		}
		user.IsActive = models.BoolPtr(req.Active)
		table.Users[req.Username] = user
		return nil
	})
	if err != nil {
		h.respondUserUpdateError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, true, "User active flag updated")
}

func (h *Handler) respondUserUpdateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		writeMessage(w, http.StatusNotFound, false, "User not found")
	case errors.Is(err, errAdminAccount):
		writeMessage(w, http.StatusBadRequest, false, "The admin account cannot be modified here")
	default:
		h.Log.Error().Err(err).Msg("failed to update user")
		writeMessage(w, http.StatusInternalServerError, false, "Failed to update user")
	}
}
