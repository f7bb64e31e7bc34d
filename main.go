package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"timeclock/config"
	"timeclock/database"
	"timeclock/handlers"
	"timeclock/logging"
	"timeclock/middleware"
	"timeclock/models"
	"timeclock/timesheet"
)

func main() {
	// Load configuration
	cfg := config.Load()
	logging.Init(cfg.LogLevel)

	// Initialize JWT secret
	middleware.SetJWTSecret(cfg.JWTSecret)

	// Initialize database
	if err := database.Init(cfg.DatabaseURL); err != nil {
		logging.Logger.WithError(err).Fatal("Failed to initialize database")
	}

	// Initialize service and handlers
	repo := timesheet.NewGormRepository(database.GetDB())
	service := timesheet.NewService(repo)

	authHandler := handlers.NewAuthHandler(cfg)
	adminHandler := handlers.NewAdminHandler(cfg)
	timesheetHandler := handlers.NewTimesheetHandler(cfg, service)

	// Setup router
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)

	// Public routes
	router.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	router.Post("/api/login", authHandler.Login)
	router.Post("/api/register", authHandler.Register)

	// Protected routes
	router.Group(func(r chi.Router) {
		r.Use(middleware.AuthMiddleware)

		r.Post("/api/logout", authHandler.Logout)

		// Accessible even when a password change is pending
		r.Post("/api/change-password", authHandler.ChangePassword)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequirePasswordChange)

			// Timesheet (all authenticated users; per-employee access is
			// checked inside the handler)
			r.Get("/api/timesheet", timesheetHandler.PeriodView)
			r.Post("/api/timesheet/times", timesheetHandler.SetTimes)
			r.Post("/api/timesheet/times/clear", timesheetHandler.ClearTimes)
			r.Post("/api/timesheet/pto", timesheetHandler.SetPTO)
			r.Post("/api/timesheet/pto/clear", timesheetHandler.ClearPTO)
			r.Post("/api/timesheet/holiday", timesheetHandler.SetHoliday)
			r.Post("/api/timesheet/holiday/clear", timesheetHandler.ClearHoliday)
			r.Post("/api/timesheet/bulk", timesheetHandler.Bulk)
			r.Post("/api/timesheet/clock-in", timesheetHandler.ClockIn)
			r.Post("/api/timesheet/clock-out", timesheetHandler.ClockOut)

			// Manager and admin
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin, models.RoleManager))
				r.Get("/api/timesheet/export.csv", timesheetHandler.ExportCSV)
			})

			// Admin only
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin))
				r.Get("/api/invites", authHandler.ListInvites)
				r.Post("/api/invites", authHandler.CreateInvite)
				r.Get("/api/users", adminHandler.ListUsers)
				r.Patch("/api/users/{id}", adminHandler.UpdateUser)
				r.Delete("/api/users/{id}", adminHandler.DeleteUser)
				r.Get("/api/stores", adminHandler.ListStores)
				r.Post("/api/stores", adminHandler.CreateStore)
				r.Delete("/api/stores/{id}", adminHandler.DeleteStore)
				r.Get("/api/departments", adminHandler.ListDepartments)
				r.Post("/api/departments", adminHandler.CreateDepartment)
				r.Delete("/api/departments/{id}", adminHandler.DeleteDepartment)
				r.Get("/api/managers", adminHandler.ListManagerAssignments)
				r.Post("/api/managers", adminHandler.AssignManager)
				r.Delete("/api/managers/{id}", adminHandler.RemoveManagerAssignment)
			})
		})
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	logging.Logger.Infof("Server starting on port %s", cfg.ServerPort)
	logging.Logger.Fatal(http.ListenAndServe(":"+cfg.ServerPort, corsHandler.Handler(router)))
}
