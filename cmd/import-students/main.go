package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/gsmp/mentorship-backend/internal/config"
	"github.com/gsmp/mentorship-backend/internal/database"
	"github.com/gsmp/mentorship-backend/internal/importer"
	"github.com/gsmp/mentorship-backend/internal/logger"
	"github.com/gsmp/mentorship-backend/internal/mailer"
	"github.com/gsmp/mentorship-backend/internal/model"
	"github.com/gsmp/mentorship-backend/internal/repository"
	"github.com/gsmp/mentorship-backend/internal/service"
)

func main() {
	var (
		file   string
		expiry time.Duration
	)
	flag.StringVar(&file, "file", "", "Roster to import (.csv or .xlsx)")
	flag.DurationVar(&expiry, "expiry", 0, "Lifetime of the temporary passwords, e.g. 72h (0 = no expiry)")
	flag.Parse()

	if file == "" {
		fmt.Println("Usage: import-students -file roster.xlsx [-expiry 72h]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	f, err := os.Open(file)
	if err != nil {
		log.Fatal().Err(err).Str("file", file).Msg("Failed to open roster")
	}
	defer f.Close()

	rows, err := importer.Parse(file, f)
	if err != nil {
		log.Fatal().Err(err).Str("file", file).Msg("Failed to parse roster")
	}

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	accountRepo := repository.NewAccountRepository(pool)
	accounts := service.NewAccountService(accountRepo, service.NewPasswordHasher(cfg.BcryptCost), log)
	imports := service.NewStudentImportService(accountRepo, accounts, mailer.New(cfg.SMTP, log), log)

	fmt.Printf("=== Importing %d students from %s ===\n", len(rows), file)

	report, err := imports.Import(ctx, rows, expiry)
	if err != nil {
		log.Error().Err(err).Msg("Import interrupted")
	}
	if report == nil {
		os.Exit(1)
	}

	for _, res := range report.Results {
		if res.Outcome == model.ImportFailed || res.Outcome == model.ImportCreatedNoEmail {
			fmt.Printf("line %d %s: %s (%s)\n", res.Line, res.Email, res.Outcome, res.Error)
		}
	}
	fmt.Printf("\nImport completed! created=%d skipped=%d failed=%d\n", report.Created, report.Skipped, report.Failed)
	if report.Failed > 0 {
		os.Exit(1)
	}
}
