package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/iamankun/studio-sub000/internal/models"
	"github.com/iamankun/studio-sub000/internal/repositories"
	"github.com/iamankun/studio-sub000/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = shared.DefaultConfig()
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
			config = shared.DefaultConfig()
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = shared.DefaultConfig()
			}
		}
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if cmd.Bool("seed") {
		if err := r.seedAccounts(ctx, db); err != nil {
			return fmt.Errorf("failed to seed accounts: %w", err)
		}
	}

	r.logger.Infof("setup complete for database: %v", config.Database.Path)
	return nil
}

// seedAccounts creates one artist and one label manager with fresh API
// tokens, printing the tokens so the caller can start using the CLI.
func (r *Runner) seedAccounts(ctx context.Context, db *sql.DB) error {
	users := repositories.NewUserRepository(db)

	seeds := []struct {
		email string
		name  string
		role  models.Role
	}{
		{"artist@sub000.local", "Demo Artist", models.RoleArtist},
		{"manager@sub000.local", "Demo Manager", models.RoleLabelManager},
	}

	r.writePlainHeader("Seeded accounts")
	for _, seed := range seeds {
		if existing, err := users.GetByEmail(ctx, seed.email); err == nil {
			r.writePlain("%s (%s) already exists, token: %s\n", seed.email, seed.role, existing.APIToken())
			continue
		}

		user := models.NewUser(0, seed.email, seed.name, seed.role)
		user.SetAPIToken(shared.GenerateToken())
		if err := users.Create(ctx, user); err != nil {
			return err
		}
		r.logger.Info("account created", "email", seed.email, "role", seed.role)
		r.writePlain("%s (%s) token: %s\n", seed.email, seed.role, user.APIToken())
	}
	return nil
}
