package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "github.com/fkhayef/statuswise/docs"
	"github.com/fkhayef/statuswise/internal/authz"
	"github.com/fkhayef/statuswise/internal/config"
	"github.com/fkhayef/statuswise/internal/database"
	"github.com/fkhayef/statuswise/internal/group"
	"github.com/fkhayef/statuswise/internal/incident"
	"github.com/fkhayef/statuswise/internal/project"
	"github.com/fkhayef/statuswise/internal/user"
	mw "github.com/fkhayef/statuswise/pkg/middleware"
	"github.com/fkhayef/statuswise/pkg/response"
)

// @title           StatusWise API
// @version         1.0
// @description     Incident tracking and status pages with multi-tenant groups
// @BasePath        /api/v1
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		// Fall back to real environment variables
	}

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	// Load configuration
	cfg := config.Load()

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("connected to database")

	// User feature
	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo, cfg.JWTSecret)
	userHandler := user.NewHandler(userService)

	// Project and incident repositories back the authorization gate
	projectRepo := project.NewRepository(db)
	incidentRepo := incident.NewRepository(db)
	gate := authz.NewService(projectRepo, incidentRepo)

	// Project feature
	projectService := project.NewService(projectRepo, gate)
	projectHandler := project.NewHandler(projectService)

	// Incident feature (project repo injected for public status pages)
	incidentService := incident.NewService(incidentRepo, projectRepo, gate)
	incidentHandler := incident.NewHandler(incidentService)

	// Group feature
	groupRepo := group.NewRepository(db)
	groupService := group.NewService(groupRepo, logger)
	groupHandler := group.NewHandler(groupService, cfg.EnableAdmin)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.Handler())

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints
		r.Post("/signup", userHandler.Signup)
		r.Post("/login", userHandler.Login)
		r.Mount("/public", incidentHandler.PublicRoutes())

		r.Get("/config", func(w http.ResponseWriter, req *http.Request) {
			response.JSON(w, http.StatusOK, map[string]interface{}{
				"billing_enabled": cfg.EnableBilling,
				"admin_enabled":   cfg.EnableAdmin,
				"features":        cfg.Features(),
			})
		})

		// Authenticated endpoints
		r.Group(func(r chi.Router) {
			r.Use(mw.Auth(cfg.JWTSecret))

			r.Get("/me", userHandler.Me)
			r.Mount("/groups", groupHandler.Routes())
			r.Mount("/projects", projectHandler.Routes())
			r.Mount("/incidents", incidentHandler.Routes())
		})
	})

	// Start server
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	logger.Info("server starting", zap.String("port", port))
	if err := http.ListenAndServe(":"+port, r); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}
