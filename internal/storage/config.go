package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/lucahenggart/sportbox-backend/internal/models"
)

// DefaultCode is the box code a fresh config.json starts with.
const DefaultCode = "0000"

// ConfigStore owns config.json, the single mutable shared secret.
type ConfigStore struct {
	path string
	mu   sync.Mutex
	log  zerolog.Logger
}

func NewConfigStore(path string, log zerolog.Logger) *ConfigStore {
	return &ConfigStore{
		path: path,
		log:  log.With().Str("store", "config").Logger(),
	}
}

// Load returns the persisted config, bootstrapping a default one when the
// file is missing or unreadable.
func (s *ConfigStore) Load() (models.BoxConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *ConfigStore) loadLocked() (models.BoxConfig, error) {
	var cfg models.BoxConfig

	data, err := os.ReadFile(s.path)
	switch {
	case os.IsNotExist(err):
		cfg.CurrentCode = DefaultCode
		if err := s.saveLocked(cfg); err != nil {
			return models.BoxConfig{}, err
		}
		return cfg, nil
	case err != nil:
		return models.BoxConfig{}, fmt.Errorf("read %s: %w", s.path, err)
	}

	if uerr := json.Unmarshal(data, &cfg); uerr != nil {
		s.log.Error().Err(uerr).Str("path", s.path).
			Msg("config file is unreadable, recreating from defaults")
		cfg = models.BoxConfig{CurrentCode: DefaultCode}
		if err := s.saveLocked(cfg); err != nil {
			return models.BoxConfig{}, err
		}
	}
	return cfg, nil
}

// SetCode trims surrounding whitespace and persists the code verbatim.
// Any string is accepted, including an empty one.
func (s *ConfigStore) SetCode(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.loadLocked()
	if err != nil {
		return err
	}
	cfg.CurrentCode = strings.TrimSpace(code)
	return s.saveLocked(cfg)
}

func (s *ConfigStore) saveLocked(cfg models.BoxConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return writeFileAtomic(s.path, append(data, '\n'))
}
