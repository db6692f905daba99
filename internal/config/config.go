package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/lucahenggart/sportbox-backend/internal/storage"
)

type Config struct {
	Port                 string
	DataDir              string   // directory holding users.json, config.json and the report logs
	AdminDefaultPassword string   // rotated onto a placeholder admin record on load
	AllowedOrigins       []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL
	Environment          string   // ENV: production, development, etc.
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{getEnv("FRONTEND_URL", "http://localhost:3000")}
	}

	return &Config{
		Port:                 getEnv("PORT", "8080"),
		DataDir:              getEnv("DATA_DIR", "data"),
		AdminDefaultPassword: getEnv("ADMIN_DEFAULT_PASSWORD", storage.PlaceholderAdminPassword),
		AllowedOrigins:       allowedOrigins,
		Environment:          env,
	}
}

// UsersPath returns the location of the credential store.
func (c *Config) UsersPath() string {
	return filepath.Join(c.DataDir, "users.json")
}

// ConfigPath returns the location of the box-code store.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.DataDir, "config.json")
}

// DefectsPath returns the location of the defect/loss log.
func (c *Config) DefectsPath() string {
	return filepath.Join(c.DataDir, "defekte_verluste.csv")
}

// WishesPath returns the location of the material wish log.
func (c *Config) WishesPath() string {
	return filepath.Join(c.DataDir, "materialwuensche.csv")
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
