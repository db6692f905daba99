package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/lucahenggart/sportbox-backend/internal/handlers"
	"github.com/lucahenggart/sportbox-backend/internal/middleware"
)

func SetupRoutes(r chi.Router, h *handlers.Handler) {
	// Auth routes
	r.Post("/api/auth/login", h.Login)
	r.Post("/api/auth/register", h.Register)
	r.Post("/api/auth/logout", h.Logout)
	r.Get("/api/auth/me", h.Me)

	// Material catalog (static, used by the defect form)
	r.Get("/api/materials", h.ListMaterials)

	// Report routes (open to anonymous submitters)
	r.Post("/api/reports/defects", h.SubmitDefect)
	r.Post("/api/reports/wishes", h.SubmitWish)

	// Box code (approved members and admin)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireApproved)
		r.Get("/api/code", h.GetCurrentCode)
	})

	// Admin routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin)
		r.Get("/api/admin/users", h.ListUsers)
		r.Put("/api/admin/users/approval", h.SetUserApproval)
		r.Put("/api/admin/users/active", h.SetUserActive)
		r.Put("/api/admin/code", h.SetCode)
		r.Get("/api/admin/reports/defects", h.ListDefects)
		r.Get("/api/admin/reports/wishes", h.ListWishes)
	})
}
