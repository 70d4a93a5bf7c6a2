package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/stemsi/lms-admin-mock/internal/access"
	"github.com/stemsi/lms-admin-mock/internal/config"
	"github.com/stemsi/lms-admin-mock/internal/database"
	"github.com/stemsi/lms-admin-mock/internal/logger"
	"github.com/stemsi/lms-admin-mock/internal/service"
	"github.com/stemsi/lms-admin-mock/internal/store"
	"golang.org/x/term"
)

// create-admin bootstraps the first admin account in the configured storage.
// It refuses once an admin exists; later accounts are created through the API.
func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	if cfg.StorageBackend == config.StorageMemory {
		log.Fatal().Msg("create-admin needs a persistent STORAGE_BACKEND (redis or postgres)")
	}

	// ─── Connect Storage ───────────────────────────────────────────────
	backend, err := database.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer backend.Close()

	keys := config.NewStoreKeyStruct(cfg.StorageNamespace)
	users := store.NewCollection(backend.Storage, keys.Users(), cfg.StorageQuotaBytes, log)
	userService := service.NewUserService(users, access.Default(), service.NewAuthService(cfg), nil, log)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create First Admin ===")

	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Error: Name is required")
		os.Exit(1)
	}

	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if email == "" {
		fmt.Println("Error: Email is required")
		os.Exit(1)
	}

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Println("Error reading password")
		os.Exit(1)
	}
	password := string(bytePassword)
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		os.Exit(1)
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	admin, err := userService.Bootstrap(ctx, name, email, password)
	if err != nil {
		if errors.Is(err, service.ErrAlreadyBootstrapped) {
			fmt.Println("Error: an admin already exists, create further accounts through the API")
			os.Exit(1)
		}
		log.Fatal().Err(err).Msg("Failed to create admin")
	}

	fmt.Printf("\nSuccess! Admin '%s' (%s) created with ID: %s\n", admin.Name, admin.Email, admin.ID)
}
