package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/gsmp/mentorship-backend/internal/config"
	"github.com/gsmp/mentorship-backend/internal/database"
	"github.com/gsmp/mentorship-backend/internal/logger"
	"github.com/gsmp/mentorship-backend/internal/model"
	"github.com/gsmp/mentorship-backend/internal/repository"
	"github.com/gsmp/mentorship-backend/internal/service"
	"golang.org/x/term"
)

const minAdminPasswordLen = 8

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

	// ─── Initialize Service ────────────────────────────────────────────
	accountRepo := repository.NewAccountRepository(pool)
	accounts := service.NewAccountService(accountRepo, service.NewPasswordHasher(cfg.BcryptCost), log)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Admin Account ===")

	fmt.Print("Enter First Name: ")
	firstName, _ := reader.ReadString('\n')
	firstName = strings.TrimSpace(firstName)

	fmt.Print("Enter Last Name: ")
	lastName, _ := reader.ReadString('\n')
	lastName = strings.TrimSpace(lastName)

	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if email == "" {
		fmt.Println("Error: Email is required")
		return
	}

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println() // Newline after password input
	if len(password) < minAdminPasswordLen {
		fmt.Printf("Error: Password must be at least %d characters\n", minAdminPasswordLen)
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	admin, _, err := accounts.Create(ctx, service.NewAccount{
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		IsActive:  true,
		Profile:   &model.AdminProfile{},
		Password:  password,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create admin")
	}

	fmt.Printf("\nSuccess! Admin '%s' (%s) created with ID: %d\n", admin.FullName(), admin.Email, admin.ID)
}
