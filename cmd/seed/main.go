// Command seed writes a fixture file into the database and prints development
// tokens for every role.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/sjperalta/bufete-api/internal/config"
	"github.com/sjperalta/bufete-api/internal/database"
	"github.com/sjperalta/bufete-api/internal/fixtures"
	"github.com/sjperalta/bufete-api/internal/middleware"
	"github.com/sjperalta/bufete-api/internal/models"
	"github.com/sjperalta/bufete-api/internal/repository"
	"github.com/sjperalta/bufete-api/pkg/logger"
)

func main() {
	file := flag.String("file", "fixtures/demo.yaml", "fixture file to load")
	tokens := flag.Bool("tokens", false, "print a development token per role and exit")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Setup(cfg.Environment, cfg.LogLevel)

	if *tokens {
		printTokens(cfg.JWTSecret, *ttl)
		return
	}

	if !cfg.HasDatabase() {
		log.Fatal("DATABASE_URL is required to seed")
	}

	set, err := fixtures.Load(*file)
	if err != nil {
		log.Fatalf("Failed to load fixtures: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL, cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	repos := repository.NewRepositories(db)
	ctx := context.Background()

	var created, skipped int
	count := func(err error) error {
		switch {
		case err == nil:
			created++
		case errors.Is(err, repository.ErrDuplicateKey):
			skipped++
		default:
			return err
		}
		return nil
	}

	for i := range set.Audits {
		if err := count(repos.Audit.Create(ctx, &set.Audits[i])); err != nil {
			log.Fatalf("Failed to seed audit record %s: %v", set.Audits[i].ID, err)
		}
	}
	for i := range set.Expenses {
		if err := count(repos.Expense.Create(ctx, &set.Expenses[i])); err != nil {
			log.Fatalf("Failed to seed expense %s: %v", set.Expenses[i].ID, err)
		}
	}
	for i := range set.TimeEntries {
		if err := count(repos.TimeEntry.Create(ctx, &set.TimeEntries[i])); err != nil {
			log.Fatalf("Failed to seed time entry %s: %v", set.TimeEntries[i].ID, err)
		}
	}

	logger.Info("Seed completed", "file", *file, "created", created, "skipped", skipped)
}

var demoActors = []models.Actor{
	{ID: "u-admin", Name: "Carmen Ruiz", Role: models.RoleAdmin},
	{ID: "u-partner", Name: "Lucía Ferrer", Role: models.RolePartner},
	{ID: "u-senior", Name: "Diego Paredes", Role: models.RoleSeniorAssociate},
	{ID: "u-junior", Name: "Marcos Gil", Role: models.RoleJuniorAssociate},
	{ID: "u-accountant", Name: "Sofía Mena", Role: models.RoleAccountant},
	{ID: "u-assistant", Name: "Elena Ríos", Role: models.RoleAssistant},
	{ID: "sys", Name: "Sistema", Role: models.RoleSystem},
}

func printTokens(secret string, ttl time.Duration) {
	for _, actor := range demoActors {
		token, err := middleware.SignToken(secret, actor, ttl)
		if err != nil {
			log.Fatalf("Failed to sign token for %s: %v", actor.ID, err)
		}
		fmt.Printf("%-18s %s\n", actor.Role, token)
	}
}
