package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/tutorpaes/tutor-backend/internal/config"
	"github.com/tutorpaes/tutor-backend/internal/database"
	"github.com/tutorpaes/tutor-backend/internal/logger"
	"github.com/tutorpaes/tutor-backend/internal/model"
	"github.com/tutorpaes/tutor-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New User ===")

	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		fmt.Println("Error: A valid email is required")
		return
	}

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println()
	if len(password) < 6 {
		fmt.Println("Error: Password must be at least 6 characters")
		return
	}

	fmt.Print("Administrator? [y/N]: ")
	adminAnswer, _ := reader.ReadString('\n')
	isAdmin := strings.EqualFold(strings.TrimSpace(adminAnswer), "y")

	// ─── Logic ─────────────────────────────────────────────────────────
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	user := &model.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hashedPassword),
		IsActive:     true,
		IsAdmin:      isAdmin,
	}

	if err := userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			// Existing account: treat the run as a password reset.
			existing, getErr := userRepo.GetByEmail(ctx, email)
			if getErr != nil {
				log.Fatal().Err(getErr).Msg("Failed to load existing user")
			}
			if err := userRepo.UpdatePassword(ctx, existing.ID, user.PasswordHash); err != nil {
				log.Fatal().Err(err).Msg("Failed to update password")
			}
			fmt.Printf("\nUser '%s' already existed (ID %d); password updated.\n", existing.Email, existing.ID)
			return
		}
		log.Fatal().Err(err).Msg("Failed to create user")
	}

	role := "learner"
	if user.IsAdmin {
		role = "admin"
	}
	fmt.Printf("\nSuccess! %s '%s' (%s) created with ID: %d\n", role, user.Name, user.Email, user.ID)
}
