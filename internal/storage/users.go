package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/lucahenggart/sportbox-backend/internal/models"
	"github.com/lucahenggart/sportbox-backend/pkg/utils"
)

// AdminUsername is the reserved bootstrap account. It always exists.
const AdminUsername = "admin"

// PlaceholderAdminPassword is the compiled-in placeholder. When the
// configured default admin password differs from it, a stored admin record
// still carrying the placeholder digest is rotated to the configured
// default on load, so operators never have to hand-edit users.json.
const PlaceholderAdminPassword = "CHANGE_ME_ADMIN"

// UserStore owns users.json. The file is read and written whole; the store
// serializes its own read-modify-write cycles with a mutex, and concurrent
// processes race last-writer-wins.
type UserStore struct {
	path                 string
	defaultAdminPassword string
	mu                   sync.Mutex
	log                  zerolog.Logger
}

func NewUserStore(path, defaultAdminPassword string, log zerolog.Logger) *UserStore {
	return &UserStore{
		path:                 path,
		defaultAdminPassword: defaultAdminPassword,
		log:                  log.With().Str("store", "users").Logger(),
	}
}

// Load reads the credential table, runs the repair passes, and persists the
// result if any pass changed anything. A missing or unreadable file is
// recreated from defaults rather than failing the request.
func (s *UserStore) Load() (*models.UserTable, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// Update runs fn on the loaded table and persists the result if fn returns
// nil. The whole read-modify-write cycle holds the store lock.
func (s *UserStore) Update(fn func(*models.UserTable) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := s.loadLocked()
	if err != nil {
		return err
	}
	if err := fn(table); err != nil {
		return err
	}
	return s.saveLocked(table)
}

func (s *UserStore) loadLocked() (*models.UserTable, error) {
	table := &models.UserTable{}

	data, err := os.ReadFile(s.path)
	switch {
	case os.IsNotExist(err):
		// First start; the repair passes below create the admin record.
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	default:
		if uerr := json.Unmarshal(data, table); uerr != nil {
			// Self-heal: an unreadable table is replaced by a fresh one
			// rather than taking the whole tool down.
			s.log.Error().Err(uerr).Str("path", s.path).
				Msg("users file is unreadable, recreating from defaults")
			table = &models.UserTable{}
		}
	}

	if table.Users == nil {
		table.Users = make(map[string]models.User)
	}

	dirty := false
	now := time.Now().UTC()
	for _, pass := range []func(*models.UserTable, time.Time) bool{
		s.ensureAdmin,
		backfillDefaults,
	} {
		if pass(table, now) {
			dirty = true
		}
	}

	if dirty {
		if err := s.saveLocked(table); err != nil {
			return nil, err
		}
	}
	return table, nil
}

// ensureAdmin guarantees the bootstrap admin record exists, and rotates a
// still-placeholder admin password to the configured default.
func (s *UserStore) ensureAdmin(table *models.UserTable, now time.Time) bool {
	admin, ok := table.Users[AdminUsername]
	if !ok {
		table.Users[AdminUsername] = models.User{
			PasswordHash: utils.HashPassword(s.defaultAdminPassword),
			Approved:     true,
			IsAdmin:      true,
			FullName:     "Administrator",
			Kontakt:      "",
			CreatedAt:    now,
			IsActive:     models.BoolPtr(true),
		}
		s.log.Info().Msg("created bootstrap admin account")
		return true
	}

	placeholderHash := utils.HashPassword(PlaceholderAdminPassword)
	if admin.PasswordHash == placeholderHash && s.defaultAdminPassword != PlaceholderAdminPassword {
		admin.PasswordHash = utils.HashPassword(s.defaultAdminPassword)
		admin.Approved = true
		admin.IsAdmin = true
		if admin.FullName == "" {
			admin.FullName = "Administrator"
		}
		if admin.CreatedAt.IsZero() {
			admin.CreatedAt = now
		}
		if admin.IsActive == nil {
			admin.IsActive = models.BoolPtr(true)
		}
		table.Users[AdminUsername] = admin
		s.log.Info().Msg("rotated admin password from placeholder to configured default")
		return true
	}
	return false
}

// backfillDefaults fills created_at and is_active on records written before
// those fields existed.
func backfillDefaults(table *models.UserTable, now time.Time) bool {
	dirty := false
	for name, u := range table.Users {
		changed := false
		if u.CreatedAt.IsZero() {
			u.CreatedAt = now
			changed = true
		}
		if u.IsActive == nil {
			u.IsActive = models.BoolPtr(true)
			changed = true
		}
		if changed {
			table.Users[name] = u
			dirty = true
		}
	}
	return dirty
}

// Save persists the full table, replacing whatever is on disk.
func (s *UserStore) Save(table *models.UserTable) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(table)
}

func (s *UserStore) saveLocked(table *models.UserTable) error {
	data, err := json.MarshalIndent(table, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal users: %w", err)
	}
	return writeFileAtomic(s.path, append(data, '\n'))
}

// writeFileAtomic writes data to a temp file in the target directory and
// renames it into place, so readers never see a partial file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
