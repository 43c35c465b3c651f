package main

import (
	"context"
	"fmt"

	"github.com/iamankun/studio-sub000/internal/formatter"
	"github.com/iamankun/studio-sub000/internal/models"
	"github.com/iamankun/studio-sub000/internal/shared"
	"github.com/urfave/cli/v3"
)

// ReviewApprove approves a pending submission. Track codes are allocated as
// part of the transition.
func (r *Runner) ReviewApprove(ctx context.Context, cmd *cli.Command) error {
	env, err := r.openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	user, err := r.actor(ctx, env, cmd)
	if err != nil {
		return err
	}

	sub, err := env.service.ChangeStatus(ctx, user, cmd.StringArg("id"), models.StatusApproved, "")
	if err != nil {
		return err
	}

	r.logger.Info("submission approved", "id", sub.ID(), "title", sub.Title())
	r.writePlain("✓ approved %s - %s\n", sub.ArtistName(), sub.Title())
	return nil
}

// ReviewReject rejects a pending submission with a reason.
func (r *Runner) ReviewReject(ctx context.Context, cmd *cli.Command) error {
	env, err := r.openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	user, err := r.actor(ctx, env, cmd)
	if err != nil {
		return err
	}

	sub, err := env.service.ChangeStatus(ctx, user, cmd.StringArg("id"), models.StatusRejected, cmd.String("reason"))
	if err != nil {
		return err
	}

	r.logger.Info("submission rejected", "id", sub.ID(), "title", sub.Title())
	r.writePlain("✗ rejected %s - %s\n", sub.ArtistName(), sub.Title())
	return nil
}

// ReviewQueue lists submissions awaiting a decision.
func (r *Runner) ReviewQueue(ctx context.Context, cmd *cli.Command) error {
	env, err := r.openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	user, err := r.actor(ctx, env, cmd)
	if err != nil {
		return err
	}

	subs, err := env.service.List(ctx, user)
	if err != nil {
		return err
	}

	pending := subs[:0]
	for _, sub := range subs {
		if sub.Status() == models.StatusPending {
			pending = append(pending, sub)
		}
	}

	if len(pending) == 0 {
		return r.writePlainln("Queue is empty")
	}

	r.writePlainHeader(fmt.Sprintf("Pending submissions (%d)", len(pending)))
	for _, sub := range pending {
		r.writePlain("%s  %s - %s\n", sub.ID(), sub.ArtistName(), sub.Title())
	}
	return nil
}

// changeStatus runs one review transition and prints the outcome.
func (r *Runner) changeStatus(ctx context.Context, cmd *cli.Command, to models.Status, mark string) error {
	env, err := r.openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	user, err := r.actor(ctx, env, cmd)
	if err != nil {
		return err
	}

	sub, err := env.service.ChangeStatus(ctx, user, cmd.StringArg("id"), to, cmd.String("reason"))
	if err != nil {
		return err
	}

	r.logger.Info("status changed", "id", sub.ID(), "to", sub.Status())
	r.writePlain("%s %s %s - %s\n", mark, sub.Status(), sub.ArtistName(), sub.Title())
	return nil
}

// ReviewProcess moves an approved submission into processing.
func (r *Runner) ReviewProcess(ctx context.Context, cmd *cli.Command) error {
	return r.changeStatus(ctx, cmd, models.StatusProcessing, "→")
}

// ReviewPublish publishes a processing submission.
func (r *Runner) ReviewPublish(ctx context.Context, cmd *cli.Command) error {
	return r.changeStatus(ctx, cmd, models.StatusPublished, "✓")
}

// ReviewCancel cancels a submission from any non-terminal state.
func (r *Runner) ReviewCancel(ctx context.Context, cmd *cli.Command) error {
	return r.changeStatus(ctx, cmd, models.StatusCancelled, "✗")
}

// ReviewSummary prints per-status counts over the visible catalog.
func (r *Runner) ReviewSummary(ctx context.Context, cmd *cli.Command) error {
	env, err := r.openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	user, err := r.actor(ctx, env, cmd)
	if err != nil {
		return err
	}

	summary, err := env.service.Summary(ctx, user)
	if err != nil {
		return err
	}

	r.writePlainHeader(fmt.Sprintf("Catalog summary (%d submissions)", summary.Total))
	for _, status := range models.AllStatuses() {
		if count := summary.StatusCounts[status]; count > 0 {
			r.writePlain("%-12s %d\n", status, count)
		}
	}
	if user.Role() == models.RoleLabelManager {
		r.writePlain("%-12s %d\n", "owners", summary.DistinctOwners)
		if len(summary.Recent) > 0 {
			r.writePlainln("")
			r.writePlainln("Recent:")
			for _, sub := range summary.Recent {
				r.writePlain("  %s  %s - %s (%s)\n", sub.ID(), sub.ArtistName(), sub.Title(), sub.Status())
			}
		}
	}
	return nil
}

// ReviewDigest generates a catalog digest in the requested format, written
// to a file with --output or printed to stdout.
func (r *Runner) ReviewDigest(ctx context.Context, cmd *cli.Command) error {
	env, err := r.openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	user, err := r.actor(ctx, env, cmd)
	if err != nil {
		return err
	}

	digest, err := env.engine.Digest(ctx, nil, user)
	if err != nil {
		return err
	}

	format := cmd.String("format")
	if output := cmd.String("output"); output != "" {
		path, err := formatter.WriteDigest(digest, format, output)
		if err != nil {
			return fmt.Errorf("failed to write digest: %w", err)
		}
		r.logger.Info("digest written", "path", path, "format", format)
		return r.writePlain("✓ digest written to %s\n", path)
	}

	var data []byte
	switch format {
	case "csv":
		data, err = formatter.DigestToCSV(digest)
	case "markdown", "md":
		data, err = formatter.DigestToMarkdown(digest)
	case "txt", "text":
		data, err = formatter.DigestToText(digest)
	case "json":
		data, err = formatter.DigestToJSON(digest)
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
	if err != nil {
		return fmt.Errorf("failed to render digest: %w", err)
	}

	return r.writePlain("%s", data)
}
