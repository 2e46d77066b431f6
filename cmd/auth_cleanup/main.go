package main

import (
	"context"
	"log"
	"os"
	"strings"
	"time"

	"clusterdeck/internal/database"
	"clusterdeck/internal/repository"

	"github.com/joho/godotenv"
)

const defaultRetention = 30 * 24 * time.Hour

// Retention-only cleanup for the auth storage. Refresh token rows are kept
// for the full retention window after expiry so revocations and reuse
// attempts stay inspectable; only rows past the window are purged, along
// with audit entries of the same age.
func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is required")
	}

	retention := defaultRetention
	if raw := strings.TrimSpace(os.Getenv("AUTH_RETENTION")); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("invalid AUTH_RETENTION %q: %v", raw, err)
		}
		retention = parsed
	}

	db, err := database.Connect(dsn)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	ctx := context.Background()
	cutoff := time.Now().UTC().Add(-retention)

	refreshRepo := repository.NewRefreshTokenRepository(db)
	purgedTokens, err := refreshRepo.PurgeExpiredBefore(ctx, cutoff)
	if err != nil {
		log.Fatalf("refresh token purge failed: %v", err)
	}

	auditRepo := repository.NewAuditRepository(db)
	purgedAudit, err := auditRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		log.Fatalf("audit purge failed: %v", err)
	}

	log.Printf("auth cleanup completed: refresh_tokens=%d audit_entries=%d cutoff=%s", purgedTokens, purgedAudit, cutoff.Format(time.RFC3339))
}
