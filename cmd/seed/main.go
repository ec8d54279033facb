// seed inserts a demo user into the local dev database and mints a
// session+refresh pair for it.
// Run: go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/sessionforge/sessionforge/internal/infrastructure/postgres"
	"github.com/sessionforge/sessionforge/internal/password"
)

const (
	seedEmail    = "seed@test.local"
	seedName     = "Seed User"
	seedPassword = "P@ssw0rd"
)

func main() {
	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set — run: direnv allow")
	}

	pool, err := postgres.NewPool(ctx, dbURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	hash, err := password.Hash(seedPassword)
	if err != nil {
		log.Fatalf("hash password: %v", err)
	}

	// Upsert the demo user (idempotent re-runs; password is reset each time)
	var userID int64
	err = pool.QueryRow(ctx, `
		INSERT INTO users (email, name, password_hash)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash, updated_at = NOW()
		RETURNING id`,
		seedEmail, seedName, hash,
	).Scan(&userID)
	if err != nil {
		log.Fatalf("upsert user: %v", err)
	}

	tokenRepo := postgres.NewTokenRepository(pool)
	pair, err := tokenRepo.CreatePair(ctx, userID)
	if err != nil {
		log.Fatalf("create session pair: %v", err)
	}

	fmt.Println("Seed complete")
	fmt.Println()
	fmt.Printf("  User:          %s\n", seedEmail)
	fmt.Printf("  User ID:       %d\n", userID)
	fmt.Printf("  Password:      %s\n", seedPassword)
	fmt.Printf("  Session token: %s\n", pair.Session.Value)
	fmt.Printf("  Refresh token: %s\n", pair.Refresh.Value)
	fmt.Printf("  Expires at:    %s\n", pair.Session.ExpiresAt)
	fmt.Println()
	fmt.Println("How to test:")
	fmt.Println()
	fmt.Println("  Inspect the minted session:")
	fmt.Println()
	fmt.Printf("    curl -s http://localhost:8080/auth/inspect \\\n")
	fmt.Printf("      -H 'Authorization: Bearer %s'\n", pair.Session.Value)
	fmt.Println()
	fmt.Println("  Or log in from scratch (rotates the session):")
	fmt.Println()
	fmt.Printf("    curl -s -X POST http://localhost:8080/auth/login \\\n")
	fmt.Printf("      -H 'Content-Type: application/json' \\\n")
	fmt.Printf("      -d '{\"email\":\"%s\",\"password\":\"%s\"}'\n", seedEmail, seedPassword)
	fmt.Println()
	fmt.Println("  Refresh (cookie is scoped to /auth/refresh):")
	fmt.Println()
	fmt.Printf("    curl -s -X POST http://localhost:8080/auth/refresh \\\n")
	fmt.Printf("      --cookie 'refreshToken=%s'\n", pair.Refresh.Value)
}
