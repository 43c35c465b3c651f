package main

import (
	"context"
	"fmt"

	"github.com/iamankun/studio-sub000/internal/models"
	"github.com/iamankun/studio-sub000/internal/shared"
	"github.com/urfave/cli/v3"
)

// UserAdd creates an account and prints its API token.
func (r *Runner) UserAdd(ctx context.Context, cmd *cli.Command) error {
	role, err := models.ParseRole(cmd.String("role"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}

	email := cmd.String("email")
	name := cmd.String("name")
	if name == "" {
		name = email
	}

	env, err := r.openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	user := models.NewUser(0, email, name, role)
	user.SetAPIToken(shared.GenerateToken())
	if err := env.users.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	r.logger.Info("account created", "email", email, "role", role)
	r.writePlain("%s (%s) token: %s\n", user.Email(), user.Role(), user.APIToken())
	return nil
}

// UserList lists accounts, optionally filtered by role.
func (r *Runner) UserList(ctx context.Context, cmd *cli.Command) error {
	env, err := r.openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	criteria := map[string]any{}
	if role := cmd.String("role"); role != "" {
		if _, err := models.ParseRole(role); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
		}
		criteria["role"] = role
	}

	users, err := env.users.List(ctx, criteria)
	if err != nil {
		return fmt.Errorf("failed to list accounts: %w", err)
	}

	if cmd.Bool("json") {
		payload := make([]map[string]any, len(users))
		for i, user := range users {
			payload[i] = map[string]any{
				"id":           user.ID(),
				"email":        user.Email(),
				"display_name": user.DisplayName(),
				"role":         user.Role(),
			}
		}
		return r.writeJSON(payload, cmd.Bool("pretty"))
	}

	r.writePlainHeader(fmt.Sprintf("Accounts (%d)", len(users)))
	for _, user := range users {
		r.writePlain("%s  %-14s %s\n", user.ID(), user.Role(), user.Email())
	}
	return nil
}
