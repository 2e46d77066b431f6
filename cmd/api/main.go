package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"clusterdeck/internal/audit"
	"clusterdeck/internal/config"
	"clusterdeck/internal/database"
	"clusterdeck/internal/domain"
	"clusterdeck/internal/middleware"
	"clusterdeck/internal/modules/admin"
	"clusterdeck/internal/modules/apikey"
	"clusterdeck/internal/modules/auth"
	"clusterdeck/internal/modules/events"
	"clusterdeck/internal/pkg/token"
	"clusterdeck/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadAuthRuntimeConfig()
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "clusterdeck.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Role{},
		&domain.RefreshToken{},
		&domain.APIKey{},
		&domain.AuditEntry{},
	); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	refreshRepo := repository.NewRefreshTokenRepository(db)
	apiKeyRepo := repository.NewAPIKeyRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	codec := token.NewCodec(cfg.JWTSecret, cfg.Issuer)

	hub := events.NewHub()
	defer hub.Close()
	recorder := audit.NewRecorder(auditRepo, hub)

	authService := auth.NewService(userRepo, roleRepo, refreshRepo, codec, recorder, cfg.AccessTTL, cfg.RefreshTTL)
	authHandler := auth.NewHandler(authService)

	apiKeyService := apikey.NewService(apiKeyRepo, userRepo, recorder)
	apiKeyHandler := apikey.NewHandler(apiKeyService)

	adminService := admin.NewService(auditRepo, userRepo, recorder)
	adminHandler := admin.NewHandler(adminService)

	eventsHandler := events.NewHandler(hub)

	resolver := middleware.NewIdentityResolver(codec, apiKeyService, userRepo)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("/")
		protected.Use(resolver.Require())
		{
			authHandler.RegisterProtectedRoutes(protected)
			apiKeyHandler.RegisterProtectedRoutes(protected)

			adminGroup := protected.Group("/admin")
			adminGroup.Use(middleware.AdminOnly())
			{
				adminHandler.RegisterAdminRoutes(adminGroup)
				eventsHandler.RegisterAdminRoutes(adminGroup)
			}
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
