package main

import (
	"context"
	"log"
	"os"

	"clusterdeck/internal/database"
	"clusterdeck/internal/domain"
	"clusterdeck/internal/pkg/password"
	"clusterdeck/internal/repository"

	"github.com/joho/godotenv"
)

// Bootstraps the schema, the canonical roles and an initial admin account.
// Safe to run repeatedly: roles are ensured idempotently and the admin is
// only created when absent.
func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "clusterdeck.db"
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	log.Println("Running AutoMigrate...")
	if err := db.AutoMigrate(
		&domain.User{},
		&domain.Role{},
		&domain.RefreshToken{},
		&domain.APIKey{},
		&domain.AuditEntry{},
	); err != nil {
		log.Fatalf("AutoMigrate failed: %v", err)
	}

	ctx := context.Background()
	roleRepo := repository.NewRoleRepository(db)
	userRepo := repository.NewUserRepository(db)

	var adminRole *domain.Role
	for _, name := range []string{domain.RoleViewer, domain.RoleOperator, domain.RoleAdmin} {
		role, err := roleRepo.Ensure(ctx, name)
		if err != nil {
			log.Fatalf("ensure role %s failed: %v", name, err)
		}
		if name == domain.RoleAdmin {
			adminRole = role
		}
		log.Printf("role ensured: %s", name)
	}

	adminUsername := os.Getenv("SEED_ADMIN_USERNAME")
	if adminUsername == "" {
		adminUsername = "admin"
	}
	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminPassword == "" {
		log.Println("SEED_ADMIN_PASSWORD not set, skipping admin account")
		return
	}

	exists, err := userRepo.ExistsByUsername(ctx, adminUsername)
	if err != nil {
		log.Fatalf("admin lookup failed: %v", err)
	}
	if exists {
		log.Printf("admin account %q already present", adminUsername)
		return
	}

	hash, err := password.Hash(adminPassword)
	if err != nil {
		log.Fatalf("password hash failed: %v", err)
	}

	adminUser := &domain.User{
		Username:     adminUsername,
		PasswordHash: hash,
		DisplayName:  "Administrator",
		Active:       true,
		Roles:        []domain.Role{*adminRole},
	}
	if err := userRepo.Create(ctx, adminUser); err != nil {
		log.Fatalf("admin create failed: %v", err)
	}

	log.Printf("admin account created: %s", adminUsername)
}
