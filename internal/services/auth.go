package services

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/lucahenggart/sportbox-backend/internal/models"
	"github.com/lucahenggart/sportbox-backend/internal/storage"
	"github.com/lucahenggart/sportbox-backend/pkg/utils"
)

// AuthService authenticates credentials and registers new accounts against
// the credential store. The store is re-read on every call, so edits made
// by another process are picked up immediately.
type AuthService struct {
	users *storage.UserStore
	log   zerolog.Logger
}

func NewAuthService(users *storage.UserStore, log zerolog.Logger) *AuthService {
	return &AuthService{
		users: users,
		log:   log.With().Str("service", "auth").Logger(),
	}
}

// Authenticate checks username and password and returns the matching
// record. Deactivated accounts fail before the password is checked.
func (s *AuthService) Authenticate(username, password string) (models.User, error) {
	table, err := s.users.Load()
	if err != nil {
		return models.User{}, err
	}

	user, ok := table.Users[username]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	if !user.Active() {
		return models.User{}, ErrUserDeactivated
	}
	if !utils.VerifyPassword(password, user.PasswordHash) {
		return models.User{}, ErrBadPassword
	}
	return user, nil
}

// Register creates a new unapproved, active, non-admin account. Usernames
// are case-sensitive and must be unique; "admin" is as taken as any other
// name. Registration never authenticates the new account.
func (s *AuthService) Register(username, password, fullName, kontakt string) error {
	err := s.users.Update(func(table *models.UserTable) error {
		if _, exists := table.Users[username]; exists {
			return ErrUsernameTaken
		}
		table.Users[username] = models.User{
			PasswordHash: utils.HashPassword(password),
			Approved:     false,
			IsAdmin:      false,
			FullName:     fullName,
			Kontakt:      kontakt,
			CreatedAt:    time.Now().UTC(),
			IsActive:     models.BoolPtr(true),
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info().Str("username", username).Msg("registered new account, pending approval")
	return nil
}
