// Package main provides role management utilities for the board.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"amateurs/internal/cache"
	"amateurs/internal/config"
	"amateurs/internal/database"
	"amateurs/internal/models"
	"amateurs/internal/repository"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin/main.go promote <user_id>     - Grant the ADMIN role")
	fmt.Println("  go run ./cmd/admin/main.go demote <user_id>      - Revert to the USER role")
	fmt.Println("  go run ./cmd/admin/main.go list-admins           - List all admins")
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Role changes must evict the cached profile the server reads roles from.
	users := repository.NewUserRepository(db, cache.InitRedis(cfg.RedisURL))
	ctx := context.Background()

	switch os.Args[1] {
	case "promote":
		setRole(ctx, users, models.RoleAdmin)
	case "demote":
		setRole(ctx, users, models.RoleUser)
	case "list-admins":
		listAdmins(ctx, users)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		usage()
	}
}

func setRole(ctx context.Context, users repository.UserRepository, role models.Role) {
	if len(os.Args) < 3 {
		usage()
	}
	id, err := strconv.ParseUint(os.Args[2], 10, 64)
	if err != nil || id == 0 {
		log.Fatalf("Invalid user ID %q", os.Args[2])
	}

	user, err := users.GetByID(ctx, uint(id))
	if err != nil {
		log.Fatalf("Failed to load user %d: %v", id, err)
	}
	if user.Role == role {
		fmt.Printf("User %s (ID: %d) already has role %s\n", user.Nickname, user.ID, role)
		return
	}

	if err := users.UpdateRole(ctx, user.ID, role); err != nil {
		log.Fatalf("Failed to update role: %v", err)
	}
	fmt.Printf("✅ %s (ID: %d) is now %s\n", user.Nickname, user.ID, role)
}

func listAdmins(ctx context.Context, users repository.UserRepository) {
	admins, err := users.ListByRole(ctx, models.RoleAdmin)
	if err != nil {
		log.Fatalf("Failed to fetch admins: %v", err)
	}

	if len(admins) == 0 {
		fmt.Println("No admins found in the system")
		return
	}

	fmt.Println("\n📋 Current Admins:")
	fmt.Println("─────────────────────────────────────")
	for _, admin := range admins {
		fmt.Printf("ID: %d | Nickname: %s | Email: %s\n", admin.ID, admin.Nickname, admin.Email)
	}
	fmt.Println("─────────────────────────────────────")
}
