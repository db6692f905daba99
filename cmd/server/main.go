package main

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/lucahenggart/sportbox-backend/internal/config"
	"github.com/lucahenggart/sportbox-backend/internal/handlers"
	"github.com/lucahenggart/sportbox-backend/internal/middleware"
	"github.com/lucahenggart/sportbox-backend/internal/routes"
	"github.com/lucahenggart/sportbox-backend/internal/services"
	"github.com/lucahenggart/sportbox-backend/internal/storage"
	"github.com/lucahenggart/sportbox-backend/pkg/logger"
)

func main() {
	// Load env before anything reads it; a missing .env file is fine.
	_ = godotenv.Load()

	log := logger.New()
	cfg := config.Load()

	if cfg.AdminDefaultPassword == storage.PlaceholderAdminPassword {
		log.Warn().Msg("ADMIN_DEFAULT_PASSWORD is not set; the admin account uses the compiled-in placeholder")
	}

	if err := os.MkdirAll(cfg.DataDir, 0o750); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.DataDir).Msg("failed to create data directory")
	}

	users := storage.NewUserStore(cfg.UsersPath(), cfg.AdminDefaultPassword, log)
	box := storage.NewConfigStore(cfg.ConfigPath(), log)
	reports := storage.NewReportLog(cfg.DefectsPath(), cfg.WishesPath(), log)

	// Prime the credential store so the bootstrap admin and any pending
	// repairs are persisted at startup, not on the first request.
	if _, err := users.Load(); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize credential store")
	}
	if _, err := box.Load(); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize box config")
	}

	auth := services.NewAuthService(users, log)
	sessions := services.NewSessionManager()
	h := handlers.New(auth, sessions, users, box, reports, log)

	// Setup router
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.SessionLoader(sessions))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	routes.SetupRoutes(r, h)

	log.Info().Str("port", cfg.Port).Str("data_dir", cfg.DataDir).Msg("sportbox backend running")
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
