// Command createadmin bootstraps a super admin account so the first
// login is possible on a fresh database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/storekeep/storekeep/internal/auth"
	"github.com/storekeep/storekeep/internal/config"
	"github.com/storekeep/storekeep/internal/domain"
	"github.com/storekeep/storekeep/internal/store"
)

func main() {
	username := flag.String("username", "admin", "admin username")
	password := flag.String("password", "", "admin password (required)")
	fullName := flag.String("full-name", "Store Admin", "admin full name")
	email := flag.String("email", "", "admin email (required)")
	flag.Parse()

	if *password == "" {
		fmt.Fprintln(os.Stderr, "error: -password is required")
		flag.Usage()
		os.Exit(2)
	}
	if *email == "" {
		fmt.Fprintln(os.Stderr, "error: -email is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.MustNew[config.Server]("STOREKEEP")
	db, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx := context.Background()
	if existing, err := db.GetUserByUsername(ctx, *username); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	} else if existing != nil {
		fmt.Fprintf(os.Stderr, "error: user '%s' already exists\n", *username)
		os.Exit(1)
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	user := &domain.User{
		Username:     *username,
		PasswordHash: hash,
		FullName:     *fullName,
		Email:        *email,
		Role:         domain.RoleSuperAdmin,
		IsActive:     true,
	}
	if err := db.CreateUser(ctx, user); err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to create user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("super admin '%s' created (id %d)\n", user.Username, user.ID)
}
