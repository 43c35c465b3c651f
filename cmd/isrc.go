package main

import (
	"context"
	"fmt"
	"sync"

	"github.com/iamankun/studio-sub000/internal/models"
	"github.com/iamankun/studio-sub000/internal/shared"
	"github.com/iamankun/studio-sub000/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ISRCAllocate backfills missing codes on one submission.
func (r *Runner) ISRCAllocate(ctx context.Context, cmd *cli.Command) error {
	env, err := r.openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	user, err := r.actor(ctx, env, cmd)
	if err != nil {
		return err
	}

	id := cmd.StringArg("id")
	allocated, err := env.service.AllocateMissingCodes(ctx, user, id)
	if err != nil {
		return err
	}

	r.logger.Info("codes allocated", "id", id, "count", allocated)
	return r.writePlain("✓ allocated %d codes for %s\n", allocated, id)
}

// ISRCBulk backfills missing codes across submissions through the review
// engine's worker pool, streaming progress to the terminal.
func (r *Runner) ISRCBulk(ctx context.Context, cmd *cli.Command) error {
	env, err := r.openEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	user, err := r.actor(ctx, env, cmd)
	if err != nil {
		return err
	}

	ids := cmd.Args().Slice()
	if cmd.Bool("all-pending") {
		subs, err := env.service.List(ctx, user)
		if err != nil {
			return err
		}
		for _, sub := range subs {
			if sub.Status() == models.StatusPending {
				ids = append(ids, sub.ID())
			}
		}
	}
	if len(ids) == 0 {
		return fmt.Errorf("%w: pass submission ids or --all-pending", shared.ErrMissingArgument)
	}

	prog := make(chan tasks.ProgressUpdate, 50)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for update := range prog {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := env.engine.BulkAllocate(ctx, prog, user, ids, tasks.BulkAllocateOpts{
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
	})
	close(prog)
	wg.Wait()
	if err != nil {
		return err
	}

	r.writePlainHeader("Bulk allocation")
	r.writePlain("Submissions: %d\n", result.TotalSubmissions)
	r.writePlain("Succeeded:   %d\n", result.Succeeded)
	r.writePlain("Failed:      %d\n", result.Failed)
	r.writePlain("Codes:       %d\n", result.TotalAllocated)
	for _, item := range result.Results {
		if !item.Success {
			r.writePlain("  ✗ %s: %v\n", item.SubmissionID, item.Error)
		}
	}
	return nil
}
